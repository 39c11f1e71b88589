package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/embed"
)

type memClipboard struct{ text string }

func (m *memClipboard) WriteText(_ context.Context, text string) { m.text = text }

func TestCopyEmbedCode(t *testing.T) {
	clip := &memClipboard{text: "something else"}
	var got []domain.Notification
	svc := NewService(clip, domain.NotifierFunc(func(_ context.Context, n domain.Notification) {
		got = append(got, n)
	}))

	svc.CopyEmbedCode(context.Background())
	svc.CopyEmbedCode(context.Background())

	assert.Equal(t, embed.Snippet, clip.text)
	assert.Equal(t, embed.Snippet, svc.Snippet())
	assert.Equal(t, []domain.Notification{domain.CopiedNotification, domain.CopiedNotification}, got)
}
