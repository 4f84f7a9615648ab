package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGet_Default(t *testing.T) {
	s := Open(t.TempDir(), WithDefault(KeyContactURL, "https://t.me/agency"))
	defer s.Close() //nolint:errcheck // test cleanup

	if got := s.Get(context.Background(), KeyContactURL); got != "https://t.me/agency" {
		t.Errorf("Get() = %q, want default", got)
	}
	if got := s.Get(context.Background(), "missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestSet_Persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := Open(dir, WithDefault(KeyContactURL, "https://t.me/agency"))
	if !s.Persistent() {
		t.Fatal("Persistent() = false for a writable directory")
	}
	if err := s.Set(ctx, KeyContactURL, "  https://wa.me/15550100  "); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Get(ctx, KeyContactURL); got != "https://wa.me/15550100" {
		t.Errorf("Get() = %q after Set", got)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := Open(dir, WithDefault(KeyContactURL, "https://t.me/agency"))
	defer reopened.Close() //nolint:errcheck // test cleanup
	if got := reopened.Get(ctx, KeyContactURL); got != "https://wa.me/15550100" {
		t.Errorf("Get() after reopen = %q, want persisted value", got)
	}
}

func TestSet_Validation(t *testing.T) {
	s := Open(t.TempDir())
	defer s.Close() //nolint:errcheck // test cleanup

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"unknown key", "theme", "dark", ErrUnknownKey},
		{"empty", KeyContactURL, "   ", ErrInvalidValue},
		{"relative", KeyContactURL, "/contact", ErrInvalidValue},
		{"javascript", KeyContactURL, "javascript:alert(1)", ErrInvalidValue},
		{"no host", KeyContactURL, "https://", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Set(context.Background(), tt.key, tt.value); !errors.Is(err, tt.wantErr) {
				t.Errorf("Set(%q, %q) error = %v, want %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestOpen_MemoryFallback(t *testing.T) {
	ctx := context.Background()

	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{"", blocker} {
		s := Open(dir, WithDefault(KeyContactURL, "https://t.me/agency"))
		if s.Persistent() {
			t.Errorf("Open(%q).Persistent() = true", dir)
		}
		if got := s.Get(ctx, KeyContactURL); got != "https://t.me/agency" {
			t.Errorf("Open(%q).Get() = %q, want default", dir, got)
		}
		if err := s.Set(ctx, KeyContactURL, "https://wa.me/1"); err != nil {
			t.Errorf("Open(%q).Set() error = %v", dir, err)
		}
		if got := s.Get(ctx, KeyContactURL); got != "https://wa.me/1" {
			t.Errorf("Open(%q).Get() after Set = %q", dir, got)
		}
		_ = s.Close() //nolint:errcheck // test cleanup
	}
}
