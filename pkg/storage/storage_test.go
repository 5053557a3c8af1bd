package storage

import (
	"context"
	"errors"
	"testing"
)

// storeContract runs the behavior every Store must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, LocaleKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty store error = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, LocaleKey, "lt-LT"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, LocaleKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "lt-LT" {
		t.Errorf("Get() = %q, want lt-LT", got)
	}

	if err := s.Set(ctx, LocaleKey, "en-US"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _ := s.Get(ctx, LocaleKey); got != "en-US" {
		t.Errorf("Get() after overwrite = %q, want en-US", got)
	}

	if err := s.Delete(ctx, LocaleKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, LocaleKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestPrefixed(t *testing.T) {
	base := NewMemoryStore()
	storeContract(t, Prefixed(base, "visitor:a:"))

	ctx := context.Background()
	a := Prefixed(base, "visitor:a:")
	b := Prefixed(base, "visitor:b:")
	if err := a.Set(ctx, LocaleKey, "lt-LT"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := b.Get(ctx, LocaleKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("other prefix Get error = %v, want ErrNotFound", err)
	}
	if got, _ := base.Get(ctx, "visitor:a:"+LocaleKey); got != "lt-LT" {
		t.Errorf("underlying key = %q, want lt-LT", got)
	}
}
