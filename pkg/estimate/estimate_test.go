package estimate

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"1.2M", 1_200_000, true},
		{"45K", 45_000, true},
		{"45k subscribers", 45_000, true},
		{"2.5B", 2_500_000_000, true},
		{"12,345", 12_345, true},
		{"1 subscriber", 1, true},
		{" 980 ", 980, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"many", 0, false},
		{"10B", MaxCount, true},
		{"9000000000B", 0, false},
		{"99999999999B", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCount(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseCount(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("UCBR8-60-B28hp2BmDPdntcQ", 120_000)
	b := Generate("UCBR8-60-B28hp2BmDPdntcQ", 120_000)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Generate() not deterministic (-first +second):\n%s", diff)
	}

	// Seeds are normalized before hashing.
	c := Generate("  ucbr8-60-b28hp2bmdpdntcq ", 120_000)
	if diff := cmp.Diff(a, c); diff != "" {
		t.Errorf("Generate() differs for normalized seed (-want +got):\n%s", diff)
	}

	other := Generate("some-other-channel", 120_000)
	if cmp.Equal(a, other) {
		t.Error("Generate() returned identical estimates for different seeds")
	}
}

func TestGenerate_Invariants(t *testing.T) {
	seeds := []string{"", "a", "techchannel", "UC1234567890123456789012", "music.fan"}
	counts := []int64{-5, 0, 1, 999, 1_200_000, 2_500_000_000}

	for _, seed := range seeds {
		for _, subs := range counts {
			e := Generate(seed, subs)
			if subs > 0 && (e.Subscribers != subs || e.Estimated) {
				t.Errorf("Generate(%q, %d): Subscribers = %d, Estimated = %v", seed, subs, e.Subscribers, e.Estimated)
			}
			if subs <= 0 && (e.Subscribers < 1_000 || !e.Estimated) {
				t.Errorf("Generate(%q, %d): derived Subscribers = %d, Estimated = %v", seed, subs, e.Subscribers, e.Estimated)
			}
			if e.CPMLow <= 0 || e.CPMHigh < e.CPMLow {
				t.Errorf("Generate(%q, %d): CPM range %v-%v", seed, subs, e.CPMLow, e.CPMHigh)
			}
			if e.MonthlyLowUSD < 0 || e.MonthlyHighUSD < e.MonthlyLowUSD {
				t.Errorf("Generate(%q, %d): monthly range %d-%d", seed, subs, e.MonthlyLowUSD, e.MonthlyHighUSD)
			}
			if e.EngagementPct < 2 || e.EngagementPct > 9 {
				t.Errorf("Generate(%q, %d): EngagementPct = %v", seed, subs, e.EngagementPct)
			}
		}
	}
}

func TestGenerate_ClampsHugeCounts(t *testing.T) {
	for _, subs := range []int64{MaxCount + 1, 9_000_000_000_000_000_000, math.MaxInt64} {
		e := Generate("seed", subs)
		if e.Subscribers != MaxCount || e.Estimated {
			t.Errorf("Generate(%d): Subscribers = %d, Estimated = %v", subs, e.Subscribers, e.Estimated)
		}
		if e.MonthlyViews <= 0 || e.MonthlyLowUSD <= 0 || e.MonthlyHighUSD < e.MonthlyLowUSD || e.SponsorRateUSD <= 0 {
			t.Errorf("Generate(%d) = %+v, want positive figures", subs, e)
		}
	}
}

func TestSummary(t *testing.T) {
	e := Estimate{MonthlyLowUSD: 1230, MonthlyHighUSD: 4560, MonthlyViews: 1_500_000, SponsorRateUSD: 2500}
	got := e.Summary()
	for _, want := range []string{"$1,230-$4,560", "1,500,000 views", "$2,500"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() = %q, missing %q", got, want)
		}
	}
}
