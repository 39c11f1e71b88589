package embed

import (
	"context"

	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/embed"
)

type Service struct {
	clipboard embed.Clipboard
	notifier  domain.Notifier
}

func NewService(clipboard embed.Clipboard, notifier domain.Notifier) *Service {
	if notifier == nil {
		notifier = domain.Notifiers{}
	}
	return &Service{clipboard: clipboard, notifier: notifier}
}

// Snippet returns the embed markup
func (s *Service) Snippet() string { return embed.Snippet }

// CopyEmbedCode puts the snippet on the clipboard and confirms it.
func (s *Service) CopyEmbedCode(ctx context.Context) {
	s.clipboard.WriteText(ctx, embed.Snippet)
	s.notifier.Notify(ctx, domain.CopiedNotification)
}
