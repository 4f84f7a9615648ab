// Package channelurl turns whatever a visitor typed into a canonical YouTube
// channel URL.
package channelurl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/chanscope/pkg/profile"
)

// Kind identifies how a channel is addressed.
type Kind string

// Channel identifier kinds.
const (
	KindHandle    Kind = "handle"
	KindChannelID Kind = "channel"
	KindCustom    Kind = "custom"
	KindUser      Kind = "user"
)

const baseURL = "https://www.youtube.com/"

// Channel is a classified channel reference.
type Channel struct {
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

var (
	handlePattern    = regexp.MustCompile(`^[A-Za-z0-9._-]{3,30}$`)
	channelIDPattern = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
	namePattern      = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
)

var hosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// Normalize classifies input as a handle, channel ID, custom URL or legacy user
// URL and returns its canonical form. Unsupported input yields an error
// matching profile.ErrInvalidInput.
func Normalize(input string) (Channel, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Channel{}, fmt.Errorf("%w: empty", profile.ErrInvalidInput)
	}

	if strings.HasPrefix(s, "@") || (!strings.Contains(s, "/") && !strings.Contains(s, ".")) {
		return fromBare(s)
	}
	return fromURL(s)
}

func fromBare(s string) (Channel, error) {
	if channelIDPattern.MatchString(s) {
		return build(KindChannelID, s), nil
	}
	handle := strings.TrimPrefix(s, "@")
	if !handlePattern.MatchString(handle) {
		return Channel{}, fmt.Errorf("%w: %q is not a channel handle", profile.ErrInvalidInput, s)
	}
	return build(KindHandle, handle), nil
}

func fromURL(s string) (Channel, error) {
	raw := s
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Channel{}, fmt.Errorf("%w: %w", profile.ErrInvalidInput, err)
	}
	if !hosts[strings.ToLower(u.Hostname())] {
		return Channel{}, fmt.Errorf("%w: %q is not a YouTube address", profile.ErrInvalidInput, u.Host)
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	first := segs[0]
	switch {
	case strings.HasPrefix(first, "@"):
		return fromBare(first)
	case len(segs) < 2:
	case first == "channel" && channelIDPattern.MatchString(segs[1]):
		return build(KindChannelID, segs[1]), nil
	case first == "c" && namePattern.MatchString(segs[1]):
		return build(KindCustom, segs[1]), nil
	case first == "user" && namePattern.MatchString(segs[1]):
		return build(KindUser, segs[1]), nil
	default:
	}
	return Channel{}, fmt.Errorf("%w: %q is not a channel address", profile.ErrInvalidInput, s)
}

func build(kind Kind, id string) Channel {
	var path string
	switch kind {
	case KindHandle:
		path = "@" + id
	case KindChannelID:
		path = "channel/" + id
	case KindCustom:
		path = "c/" + id
	case KindUser:
		path = "user/" + id
	}
	return Channel{URL: baseURL + path, Kind: kind, ID: id}
}
