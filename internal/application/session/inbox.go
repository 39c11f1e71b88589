package session

import (
	"context"
	"sync"

	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
)

// maxPending bounds the inbox; the oldest notifications are dropped first.
const maxPending = 32

// Inbox queues notifications until the client drains them, like a toast list.
type Inbox struct {
	mu      sync.Mutex
	pending []domain.Notification
}

func (i *Inbox) Notify(_ context.Context, n domain.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pending = append(i.pending, n)
	if len(i.pending) > maxPending {
		i.pending = i.pending[len(i.pending)-maxPending:]
	}
}

// Drain returns pending notifications in order and empties the inbox.
func (i *Inbox) Drain() []domain.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.pending
	i.pending = nil
	if out == nil {
		return []domain.Notification{}
	}
	return out
}

// Clipboard holds the last copied text of a session.
type Clipboard struct {
	mu   sync.Mutex
	text string
}

func (c *Clipboard) WriteText(_ context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

func (c *Clipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
