// Package lognotify provides a Notifier for local development that writes
// deliveries to the logger instead of sending them.
package lognotify

import (
	"context"
	"log/slog"

	"github.com/go-verification-api/internal/application/verification"
)

type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// Send logs the delivery. The plain-text body is included so the code can be
// read from the console while developing.
func (n *Notifier) Send(ctx context.Context, d verification.Delivery) error {
	n.logger.InfoContext(ctx, "verification message",
		"to", d.To,
		"from", d.From,
		"subject", d.Subject,
		"body", d.PlainText,
	)
	return nil
}
