// Package estimate produces the earnings estimate shown on the channel
// verification page. Estimates are deterministic: the same channel always gets
// the same numbers.
package estimate

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Estimate is a projected monthly performance for a channel.
type Estimate struct {
	Subscribers    int64   `json:"subscribers"`
	Estimated      bool    `json:"subscribersEstimated,omitempty"` // Subscribers was derived from the seed
	MonthlyViews   int64   `json:"monthlyViews"`
	CPMLow         float64 `json:"cpmLow"`
	CPMHigh        float64 `json:"cpmHigh"`
	MonthlyLowUSD  int64   `json:"monthlyLowUsd"`
	MonthlyHighUSD int64   `json:"monthlyHighUsd"`
	SponsorRateUSD int64   `json:"sponsorRateUsd"`
	EngagementPct  float64 `json:"engagementPct"`
}

// creatorShare is the fraction of ad revenue paid out to the channel.
const creatorShare = 0.55

// MaxCount is the largest follower count accepted. Larger values would
// overflow the derived view and revenue figures.
const MaxCount = 10_000_000_000

var countPattern = regexp.MustCompile(`(?i)^([\d][\d,]*(?:\.\d+)?)\s*([KMB])?$`)

// ParseCount converts follower display text such as "1.2M", "12,345" or
// "45K subscribers" into a number. Counts above MaxCount are rejected.
func ParseCount(text string) (int64, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(s), "subscribers"), "subscriber"))
	m := countPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		n *= 1e3
	case "M":
		n *= 1e6
	case "B":
		n *= 1e9
	default:
	}
	if n > MaxCount {
		return 0, false
	}
	return int64(math.Round(n)), true
}

// Generate returns the estimate for seed, typically a channel ID or handle.
// If subscribers is not positive a plausible count is derived from the seed;
// counts above MaxCount are clamped.
func Generate(seed string, subscribers int64) Estimate {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(seed)))) //nolint:errcheck // hash writes never fail
	sum := h.Sum64()
	rng := rand.New(rand.NewPCG(sum, sum>>32|1)) //nolint:gosec // not security sensitive

	est := Estimate{Subscribers: min(subscribers, MaxCount)}
	if est.Subscribers <= 0 {
		est.Subscribers = 1_000 + rng.Int64N(250_000)
		est.Estimated = true
	}

	viewsPerSub := 0.8 + rng.Float64()*2.2
	est.MonthlyViews = int64(float64(est.Subscribers) * viewsPerSub)

	est.CPMLow = round2(1.5 + rng.Float64()*2.5)
	est.CPMHigh = round2(est.CPMLow * (1.6 + rng.Float64()*0.8))

	thousands := float64(est.MonthlyViews) / 1000
	est.MonthlyLowUSD = roundTo(thousands*est.CPMLow*creatorShare, 10)
	est.MonthlyHighUSD = roundTo(thousands*est.CPMHigh*creatorShare, 10)

	est.SponsorRateUSD = roundTo(float64(est.Subscribers)*(0.01+rng.Float64()*0.02), 50)
	est.EngagementPct = round2(2 + rng.Float64()*7)
	return est
}

// Summary formats the monthly earnings range for display.
func (e Estimate) Summary() string {
	return fmt.Sprintf("$%s-$%s / month from %s views (sponsorships from $%s)",
		humanize.Comma(e.MonthlyLowUSD),
		humanize.Comma(e.MonthlyHighUSD),
		humanize.Comma(e.MonthlyViews),
		humanize.Comma(e.SponsorRateUSD))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func roundTo(f float64, step int64) int64 {
	return int64(math.Round(f/float64(step))) * step
}
