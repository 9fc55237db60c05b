package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := Entry{Code: "111111", IssuedAt: time.Now().UTC()}
	second := Entry{Code: "222222", IssuedAt: time.Now().UTC()}
	if err := store.Put(ctx, "a@b.com", first); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "a@b.com", second); err != nil {
		t.Fatalf("put: %v", err)
	}

	entry, ok, err := store.Get(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry to exist")
	}
	if entry.Code != "222222" {
		t.Fatalf("expected latest code, got %q", entry.Code)
	}
}

func TestService_RequestAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	code, err := svc.Request(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected six-digit code, got %q", code)
	}

	if errVerify := svc.Verify(ctx, "a@b.com", code); errVerify != nil {
		t.Fatalf("verify: %v", errVerify)
	}
	// Verification leaves the code in place for the final setup step.
	if errAgain := svc.Verify(ctx, "a@b.com", code); errAgain != nil {
		t.Fatalf("second verify: %v", errAgain)
	}

	if errWrong := svc.Verify(ctx, "a@b.com", "000000"); !errors.Is(errWrong, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", errWrong)
	}
	if errMissing := svc.Verify(ctx, "nobody@b.com", code); !errors.Is(errMissing, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errMissing)
	}
}

func TestService_VerifyExpiredEvicts(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryStore()).WithClock(func() time.Time { return current })

	code, err := svc.Request(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	current = current.Add(6 * time.Minute)
	if errVerify := svc.Verify(ctx, "a@b.com", code); !errors.Is(errVerify, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", errVerify)
	}
	// Expired entries are evicted; the next attempt sees nothing.
	if errAfter := svc.Verify(ctx, "a@b.com", code); !errors.Is(errAfter, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after eviction, got %v", errAfter)
	}
}

func TestService_Consume(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	code, err := svc.Request(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if errConsume := svc.Consume(ctx, "a@b.com"); errConsume != nil {
		t.Fatalf("consume: %v", errConsume)
	}
	if errVerify := svc.Verify(ctx, "a@b.com", code); !errors.Is(errVerify, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after consume, got %v", errVerify)
	}
}
