package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippetLiteral(t *testing.T) {
	assert.Equal(t,
		`<iframe src="https://smartmemorandum.netlify.app/embed" width="100%" height="600" frameborder="0"></iframe>`,
		Snippet)
}
