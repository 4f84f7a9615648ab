package youtube

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/chanscope/pkg/fetch"
	"github.com/codeGROOVE-dev/chanscope/pkg/htmlutil"
	"github.com/codeGROOVE-dev/chanscope/pkg/profile"
)

// rule extracts one candidate value for a field from a document.
type rule struct {
	name    string
	extract func(doc string) (string, bool)
}

// patternRule returns the first capture group of re.
func patternRule(name string, re *regexp.Regexp) rule {
	return rule{name: name, extract: func(doc string) (string, bool) {
		if m := re.FindStringSubmatch(doc); len(m) > 1 {
			return m[1], true
		}
		return "", false
	}}
}

// jsonStringRule is patternRule for a capture that is the body of a JSON
// string literal; the capture is decoded before it is returned.
func jsonStringRule(name string, re *regexp.Regexp) rule {
	inner := patternRule(name, re)
	return rule{name: name, extract: func(doc string) (string, bool) {
		raw, ok := inner.extract(doc)
		if !ok {
			return "", false
		}
		var v string
		if err := json.Unmarshal([]byte(`"`+raw+`"`), &v); err != nil {
			return Unescape(raw), true
		}
		return v, true
	}}
}

// firstMatch walks rules in order and returns the first value accepted by
// accept, along with the name of the rule that produced it.
func firstMatch(doc string, rules []rule, accept func(string) (string, bool)) (value, ruleName string) {
	for _, r := range rules {
		raw, ok := r.extract(doc)
		if !ok {
			continue
		}
		if v, ok := accept(raw); ok {
			return v, r.name
		}
	}
	return "", ""
}

var nameRules = []rule{
	jsonStringRule("channel-metadata", regexp.MustCompile(`"channelMetadataRenderer":\{"title":"((?:[^"\\]|\\.)*)"`)),
	{name: "og-title", extract: func(doc string) (string, bool) {
		v := htmlutil.MetaContent(doc, "og:title")
		return v, v != ""
	}},
	{name: "title-convention", extract: func(doc string) (string, bool) {
		return strings.CutSuffix(htmlutil.Title(doc), " - YouTube")
	}},
	jsonStringRule("name-field", regexp.MustCompile(`"name":"((?:[^"\\]|\\.)*)"`)),
}

var avatarRules = []rule{
	patternRule("avatar-thumbnail", regexp.MustCompile(`"avatar":\{"thumbnails":\[\{"url":"([^"]+)"`)),
	patternRule("thumbnail", regexp.MustCompile(`"thumbnail":\{"thumbnails":\[\{"url":"([^"]+)"`)),
	patternRule("raw-googleusercontent", regexp.MustCompile(`(yt3\.googleusercontent\.com(?:\\/|/)[^"'\s<>()]+)`)),
	patternRule("raw-ggpht", regexp.MustCompile(`(yt3\.ggpht\.com(?:\\/|/)[^"'\s<>()]+)`)),
}

var followerRules = []rule{
	patternRule("subscriber-simple-text", regexp.MustCompile(`"subscriberCountText":\{"simpleText":"([^"]+)"`)),
	patternRule("subscriber-string", regexp.MustCompile(`"subscriberCountText":"([^"]+)"`)),
	patternRule("subscriber-free-text", regexp.MustCompile(`(?i)(\d[\d.,]*\s?[KMB]?)\s*subscribers?\b`)),
}

var unitSuffix = regexp.MustCompile(`(?i)\s*subscribers?\s*$`)

// avatarHosts are the only image hosts an extracted avatar may point at.
var avatarHosts = map[string]bool{
	"yt3.googleusercontent.com": true,
	"yt3.ggpht.com":             true,
}

// verificationChecks are evaluated in priority order; the first hit decides
// the category.
var verificationChecks = []struct {
	kind    profile.Verification
	markers []string
}{
	{profile.VerificationArtist, []string{
		`"BADGE_STYLE_TYPE_VERIFIED_ARTIST"`,
		`"OFFICIAL_ARTIST_BADGE"`,
		`"tooltip":"Official Artist Channel"`,
	}},
	{profile.VerificationMusic, []string{
		`"AUDIO_BADGE"`,
		`"musicVerifiedBadge"`,
	}},
	{profile.VerificationStandard, []string{
		`"isVerified":true`,
		`"verified":true`,
		`"BADGE_STYLE_TYPE_VERIFIED"`,
		`"tooltip":"Verified"`,
	}},
	// Checkmark icon: icon type name or the check-circle SVG path.
	{profile.VerificationStandard, []string{
		`CHECK_CIRCLE_THICK`,
		`M9.8 17.3l-4.2-4.1L7 11.8l2.8 2.7L17 7.4l1.4 1.4-8.6 8.5z`,
	}},
}

var unescaper = strings.NewReplacer(
	"\\u003d", "=",
	"\\u003D", "=",
	"\\u0026", "&",
	"\\u002f", "/",
	"\\u002F", "/",
	"\\u0022", `"`,
	"\\u0027", "'",
	`\/`, "/",
	`\"`, `"`,
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x2F;", "/",
	"&#x2f;", "/",
)

// Unescape reverses the escape sequences used for '=', '/', '&' and quotes in
// script-embedded JSON and HTML attributes. Strings without such sequences are
// returned unchanged.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// Extract reads channel metadata out of a fetched channel page.
// It returns profile.ErrParseFailed when no display name can be found.
func Extract(doc string) (*profile.Profile, error) {
	name, _ := firstMatch(doc, nameRules, acceptName)
	if name == "" {
		return nil, profile.ErrParseFailed
	}

	avatar, _ := firstMatch(doc, avatarRules, acceptAvatar)
	followers, _ := firstMatch(doc, followerRules, acceptFollowers)
	kind := verification(doc)

	return &profile.Profile{
		DisplayName:       name,
		AvatarURL:         avatar,
		FollowerCountText: followers,
		Verified:          kind != profile.VerificationNone,
		Verification:      kind,
	}, nil
}

func acceptName(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, v != ""
}

// acceptAvatar normalizes a candidate image URL and rejects it unless it is
// served from an allow-listed host. A rejection lets the next rule run.
func acceptAvatar(raw string) (string, bool) {
	v := strings.TrimRight(Unescape(strings.TrimSpace(raw)), `\`)
	if v == "" {
		return "", false
	}
	v = fetch.EnsureScheme(v)

	u, err := url.Parse(v)
	if err != nil || u.User != nil {
		return "", false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", false
	}
	if !avatarHosts[strings.ToLower(u.Hostname())] {
		return "", false
	}
	return v, true
}

func acceptFollowers(raw string) (string, bool) {
	v := strings.TrimSpace(unitSuffix.ReplaceAllString(raw, ""))
	return v, v != ""
}

func verification(doc string) profile.Verification {
	for _, check := range verificationChecks {
		for _, m := range check.markers {
			if strings.Contains(doc, m) {
				return check.kind
			}
		}
	}
	return profile.VerificationNone
}
