// Package memory holds the process-local stores used by the service.
package memory

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"sync"
	"time"

	"github.com/go-verification-api/internal/domain"
	"github.com/go-verification-api/internal/pkg/id"
)

// CodeStore maps an identifier to its single pending code. Entries past their
// expiry are treated as absent and removed when read.
type CodeStore struct {
	mu      sync.Mutex
	entries map[string]*domain.PendingVerification
	now     func() time.Time
}

// Option configures a CodeStore.
type Option func(*CodeStore)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *CodeStore) { s.now = now }
}

func NewCodeStore(opts ...Option) *CodeStore {
	s := &CodeStore{
		entries: make(map[string]*domain.PendingVerification),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Put stores code for identifier, replacing any pending entry.
func (s *CodeStore) Put(identifier, code string, ttl time.Duration) domain.PendingVerification {
	now := s.now()
	p := &domain.PendingVerification{
		ID:         id.New(),
		Identifier: identifier,
		Code:       code,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	s.mu.Lock()
	s.entries[identifier] = p
	s.mu.Unlock()
	return *p
}

// Get returns the pending code for identifier if it exists and has not expired.
func (s *CodeStore) Get(identifier string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.live(identifier)
	if !ok {
		return "", false
	}
	return p.Code, true
}

// Delete removes identifier's entry. Missing entries are ignored.
func (s *CodeStore) Delete(identifier string) {
	s.mu.Lock()
	delete(s.entries, identifier)
	s.mu.Unlock()
}

// ConsumeIfMatch deletes identifier's entry and returns it when code equals the
// stored code. A mismatch leaves the entry in place.
func (s *CodeStore) ConsumeIfMatch(identifier, code string) (domain.PendingVerification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.live(identifier)
	if !ok || code == "" {
		return domain.PendingVerification{}, false
	}
	if subtle.ConstantTimeCompare([]byte(p.Code), []byte(code)) != 1 {
		return domain.PendingVerification{}, false
	}
	delete(s.entries, identifier)
	return *p, true
}

// Len counts entries that have not expired.
func (s *CodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, p := range s.entries {
		if !p.Expired(now) {
			n++
		}
	}
	return n
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *CodeStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, p := range s.entries {
		if p.Expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *CodeStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Debug("code sweeper attached", "tick_every", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("swept expired verification codes", "count", n)
			}
		}
	}
}

// live must be called with mu held.
func (s *CodeStore) live(identifier string) (*domain.PendingVerification, bool) {
	p, ok := s.entries[identifier]
	if !ok {
		return nil, false
	}
	if p.Expired(s.now()) {
		delete(s.entries, identifier)
		return nil, false
	}
	return p, true
}
