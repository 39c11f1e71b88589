package mysql

import "strings"

// normalizeAddress lower-cases and trims an address for corpus lookups;
// the corpus may hold checksummed or lower-case forms.
func normalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
