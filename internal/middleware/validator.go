package middleware

import (
	"strings"

	"github.com/google/uuid"
)

// ValidSessionID reports whether id looks like a session id the server
// issued. Anything else is treated as a fresh visitor.
func ValidSessionID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 64 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
