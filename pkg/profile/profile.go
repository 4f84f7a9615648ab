// Package profile defines the common types for channel profile extraction.
package profile

import (
	"errors"
)

// Common errors returned by the fetch and extraction packages.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrFetchFailed     = errors.New("fetch failed")
	ErrParseFailed     = errors.New("parse failure")
	ErrInvalidInput    = errors.New("invalid channel input")
)

// Placeholders used when a field could not be extracted and the caller renders
// the profile for a visitor.
const (
	PlaceholderAvatarURL = "/static/img/avatar-placeholder.png"
	FollowersUnavailable = "N/A"
)

// Verification indicates which kind of verification badge a channel carries.
type Verification string

// Verification categories, from most to least specific.
const (
	VerificationNone     Verification = ""
	VerificationArtist   Verification = "artist"
	VerificationMusic    Verification = "music"
	VerificationStandard Verification = "standard"
)

// Profile represents data extracted from a public channel page.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Profile struct {
	URL    string `json:"url,omitempty"`    // Page that was fetched
	Handle string `json:"handle,omitempty"` // Identifier from the canonical URL (without @ prefix)

	DisplayName       string `json:"displayName"`
	AvatarURL         string `json:"avatarUrl,omitempty"`         // Always an allow-listed image host
	FollowerCountText string `json:"followerCountText,omitempty"` // Raw display text such as "1.2M"

	Verified     bool         `json:"verified"`
	Verification Verification `json:"verification,omitempty"`
}

// WithPlaceholders returns a copy of p with absent display fields replaced by
// PlaceholderAvatarURL and FollowersUnavailable.
func (p *Profile) WithPlaceholders() Profile {
	out := *p
	if out.AvatarURL == "" {
		out.AvatarURL = PlaceholderAvatarURL
	}
	if out.FollowerCountText == "" {
		out.FollowerCountText = FollowersUnavailable
	}
	return out
}
