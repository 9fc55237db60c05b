// Package otp issues and validates the short-lived numeric codes that gate
// the password-setup flow. Codes live in a pluggable store keyed by email;
// expiry is checked lazily at use time, never swept.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/expodesk/expodesk/internal/settings"
)

// Validation failures surfaced by Verify.
var (
	// ErrNotFound indicates no code exists for the email.
	ErrNotFound = errors.New("otp: not found")
	// ErrExpired indicates the code outlived its validity window.
	ErrExpired = errors.New("otp: expired")
	// ErrMismatch indicates the supplied code is wrong.
	ErrMismatch = errors.New("otp: mismatch")
)

// Entry is a stored one-time code.
type Entry struct {
	Code     string    `json:"code"`      // Six-digit numeric code.
	IssuedAt time.Time `json:"issued_at"` // Issue timestamp, UTC.
}

// Store persists at most one entry per email. A Put overwrites any prior
// entry; last writer wins.
type Store interface {
	Put(ctx context.Context, email string, entry Entry) error
	Get(ctx context.Context, email string) (Entry, bool, error)
	Delete(ctx context.Context, email string) error
}

// Service generates, verifies, and consumes one-time codes.
type Service struct {
	store    Store
	lifetime time.Duration
	now      func() time.Time
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store:    store,
		lifetime: settings.OTPLifetime,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Request generates a uniformly random six-digit code for the email,
// overwriting any previous entry, and returns the code for delivery.
func (s *Service) Request(ctx context.Context, email string) (string, error) {
	code, errGen := generateCode()
	if errGen != nil {
		return "", errGen
	}
	entry := Entry{Code: code, IssuedAt: s.now()}
	if errPut := s.store.Put(ctx, email, entry); errPut != nil {
		return "", fmt.Errorf("otp: store code: %w", errPut)
	}
	return code, nil
}

// Verify checks the code for the email. Expired entries are evicted on this
// path. Successful verification does not consume the entry; password setup
// re-verifies and then calls Consume as its final step.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	entry, ok, errGet := s.store.Get(ctx, email)
	if errGet != nil {
		return fmt.Errorf("otp: read code: %w", errGet)
	}
	if !ok {
		return ErrNotFound
	}
	if s.now().After(entry.IssuedAt.Add(s.lifetime)) {
		_ = s.store.Delete(ctx, email)
		return ErrExpired
	}
	if entry.Code != code {
		return ErrMismatch
	}
	return nil
}

// Consume removes the entry for the email.
func (s *Service) Consume(ctx context.Context, email string) error {
	return s.store.Delete(ctx, email)
}

// generateCode draws a uniformly random code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
