package smtp

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-verification-api/internal/application/verification"
	"github.com/go-verification-api/internal/config"
	"github.com/go-verification-api/internal/domain"
	"gopkg.in/gomail.v2"
)

// dialer is the part of *gomail.Dialer the notifier uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier sends verification emails over SMTP as multipart/alternative
// messages (plain text with an HTML alternative).
type Notifier struct {
	dialer dialer
	from   string
}

func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SenderAddress,
	}
}

func (n *Notifier) Send(ctx context.Context, d verification.Delivery) error {
	from := d.From
	if from == "" {
		from = n.from
	}
	if d.To == "" {
		return fmt.Errorf("empty recipient: %w", domain.ErrBadRequest)
	}
	if strings.EqualFold(d.To, from) {
		return fmt.Errorf("recipient is the sender address: %w", domain.ErrBadRequest)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", d.To)
	m.SetHeader("Subject", d.Subject)
	m.SetBody("text/plain", d.PlainText)
	if d.HTML != "" {
		m.AddAlternative("text/html", d.HTML)
	}

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}
