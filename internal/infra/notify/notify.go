package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
)

// Logger records every notification on a zap logger.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log}
}

func (l *Logger) Notify(_ context.Context, n domain.Notification) {
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("description", n.Description),
		zap.String("variant", string(n.Variant)),
	}
	if n.Variant == domain.VariantDestructive {
		l.log.Warn("notification", fields...)
		return
	}
	l.log.Info("notification", fields...)
}

// Writer prints notifications as "[title] description" lines, one per
// notification. Used by the CLI with stderr.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (p *Writer) Notify(_ context.Context, n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefix := ""
	if n.Variant == domain.VariantDestructive {
		prefix = "! "
	}
	fmt.Fprintf(p.w, "%s[%s] %s\n", prefix, n.Title, n.Description)
}
