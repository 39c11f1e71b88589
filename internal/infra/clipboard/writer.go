package clipboard

import (
	"context"
	"io"
)

// Writer is a clipboard that writes copied text to an io.Writer verbatim,
// with no trailing newline. The CLI points it at stdout so the snippet can
// be piped.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (c *Writer) WriteText(_ context.Context, text string) {
	io.WriteString(c.w, text) //nolint:errcheck
}
