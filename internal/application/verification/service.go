package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-verification-api/internal/domain"
)

// DefaultTTL is how long a delivered code stays valid.
const DefaultTTL = 5 * time.Minute

// Delivery is one outbound verification message.
type Delivery struct {
	To        string
	From      string
	Subject   string
	PlainText string
	HTML      string
}

// Notifier delivers a message to its destination. A nil error means the
// channel accepted the message, not that the user received it.
type Notifier interface {
	Send(ctx context.Context, d Delivery) error
}

// CodeStore is the minimal interface the service requires from a code store.
type CodeStore interface {
	Put(identifier, code string, ttl time.Duration) domain.PendingVerification
	ConsumeIfMatch(identifier, code string) (domain.PendingVerification, bool)
}

type Service interface {
	RequestCode(ctx context.Context, req domain.SendCodeRequest) domain.Outcome
	Confirm(ctx context.Context, req domain.VerifyCodeRequest) domain.Outcome
}

// ServiceDeps groups the collaborators of the verification service.
type ServiceDeps struct {
	Store    CodeStore
	Notifier Notifier
	Renderer *Renderer
	Random   Random // defaults to NewCryptoRandom()
	Sender   string
	TTL      time.Duration // defaults to DefaultTTL
	// DeliveryTimeout bounds a single Notifier.Send; zero means no bound.
	DeliveryTimeout time.Duration
	Logger          *slog.Logger
}

type service struct {
	store           CodeStore
	notifier        Notifier
	renderer        *Renderer
	sender          string
	ttl             time.Duration
	deliveryTimeout time.Duration
	logger          *slog.Logger

	randMu sync.Mutex
	random Random
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:           deps.Store,
		notifier:        deps.Notifier,
		renderer:        deps.Renderer,
		sender:          deps.Sender,
		ttl:             deps.TTL,
		deliveryTimeout: deps.DeliveryTimeout,
		logger:          deps.Logger,
		random:          deps.Random,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.random == nil {
		s.random = NewCryptoRandom()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.renderer == nil {
		// The embedded templates are fixed, so this only fails on a broken build.
		r, err := NewRenderer(RendererConfig{})
		if err != nil {
			panic(err)
		}
		s.renderer = r
	}
	return s
}

// Normalize folds an address into the key codes are stored under.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// RequestCode generates a code, delivers it and, only once the notifier has
// accepted it, stores it for TTL. Failures are returned as outcomes.
func (s *service) RequestCode(ctx context.Context, req domain.SendCodeRequest) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("verification code request panicked", "panic", r)
			out = domain.Failed(domain.FailureDelivery, fmt.Sprintf("internal error: %v", r))
		}
	}()

	address := strings.TrimSpace(req.Email)
	if address == "" {
		return domain.Failed(domain.FailureInvalidInput, domain.MsgInvalidRequest)
	}
	identifier := Normalize(address)

	code := s.nextCode()
	msg, err := s.renderer.Render(address, code, s.ttl)
	if err != nil {
		s.logger.Error("failed to render verification message", "identifier", identifier, "err", err)
		return domain.Failed(domain.FailureDelivery, err.Error())
	}

	err = s.deliver(ctx, Delivery{
		To:        address,
		From:      s.sender,
		Subject:   msg.Subject,
		PlainText: msg.PlainText,
		HTML:      msg.HTML,
	})
	if err != nil {
		return s.deliveryFailure(identifier, err)
	}

	p := s.store.Put(identifier, code, s.ttl)
	s.logger.Info("verification code issued",
		"verification_id", p.ID,
		"identifier", p.Identifier,
		"expires_at", p.ExpiresAt,
	)
	return domain.Succeeded(domain.MsgCodeSent)
}

// Confirm consumes the pending code for the address when req.Code matches it.
// Absent, expired and wrong codes produce the same failure, and a wrong code
// leaves the pending one usable.
func (s *service) Confirm(_ context.Context, req domain.VerifyCodeRequest) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("verification code confirmation panicked", "panic", r)
			out = domain.Failed(domain.FailureNoMatch, domain.MsgInvalidOrExpired)
		}
	}()

	identifier := Normalize(req.Email)
	if identifier == "" || req.Code == "" {
		return domain.Failed(domain.FailureNoMatch, domain.MsgInvalidOrExpired)
	}

	p, ok := s.store.ConsumeIfMatch(identifier, req.Code)
	if !ok {
		s.logger.Info("verification code rejected", "identifier", identifier)
		return domain.Failed(domain.FailureNoMatch, domain.MsgInvalidOrExpired)
	}
	s.logger.Info("verification code confirmed", "verification_id", p.ID, "identifier", identifier)
	return domain.Succeeded(domain.MsgCodeValid)
}

// deliveryFailure turns a notifier error into an outcome. A destination the
// channel refuses outright is the caller's input, anything else is delivery.
func (s *service) deliveryFailure(identifier string, err error) domain.Outcome {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		s.logger.Info("verification destination rejected", "identifier", identifier, "err", err)
		return domain.Failed(domain.FailureInvalidInput, err.Error())
	case errors.Is(err, domain.ErrDelivery):
		s.logger.Warn("verification code delivery failed", "identifier", identifier, "err", err)
	default:
		s.logger.Error("notifier returned an unclassified error", "identifier", identifier, "err", err)
	}
	return domain.Failed(domain.FailureDelivery, err.Error())
}

func (s *service) nextCode() string {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return generateCode(s.random)
}

// deliver runs the notifier in its own goroutine so a notifier that ignores
// ctx still cannot hold the request past the delivery timeout.
func (s *service) deliver(ctx context.Context, d Delivery) error {
	if s.deliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deliveryTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("notifier panicked: %v: %w", r, domain.ErrDelivery)
			}
		}()
		done <- s.notifier.Send(ctx, d)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("delivery timed out after %s: %w", s.deliveryTimeout, domain.ErrDelivery)
		}
		return fmt.Errorf("delivery cancelled: %w", ctx.Err())
	}
}
