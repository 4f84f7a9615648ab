package profile

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTypes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrProfileNotFound", ErrProfileNotFound, "profile not found"},
		{"ErrFetchFailed", ErrFetchFailed, "fetch failed"},
		{"ErrParseFailed", ErrParseFailed, "parse failure"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid channel input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("got %q, want %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: dial tcp: connection refused", ErrFetchFailed)

	if !errors.Is(wrapped, ErrFetchFailed) {
		t.Error("wrapped error should match ErrFetchFailed")
	}
	if errors.Is(wrapped, ErrProfileNotFound) {
		t.Error("fetch failure should not match ErrProfileNotFound")
	}
}

func TestWithPlaceholders(t *testing.T) {
	p := &Profile{DisplayName: "Test Channel"}

	got := p.WithPlaceholders()
	if got.AvatarURL != PlaceholderAvatarURL {
		t.Errorf("AvatarURL = %q, want %q", got.AvatarURL, PlaceholderAvatarURL)
	}
	if got.FollowerCountText != FollowersUnavailable {
		t.Errorf("FollowerCountText = %q, want %q", got.FollowerCountText, FollowersUnavailable)
	}
	if p.AvatarURL != "" || p.FollowerCountText != "" {
		t.Error("WithPlaceholders modified the receiver")
	}

	full := &Profile{
		DisplayName:       "Full",
		AvatarURL:         "https://yt3.ggpht.com/x",
		FollowerCountText: "1.2M",
	}
	got = full.WithPlaceholders()
	if got.AvatarURL != full.AvatarURL || got.FollowerCountText != full.FollowerCountText {
		t.Errorf("WithPlaceholders replaced present fields: %+v", got)
	}
}
