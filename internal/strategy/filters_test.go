package strategy

import (
	"testing"

	"covered-call-strategist/internal/domain"
)

func TestFilterWindowLiquidity(t *testing.T) {
	cfg := DefaultFilterConfig()
	options := []domain.OptionContract{
		{Strike: 105, DaysToExpiry: 30, Bid: 1.0, OpenInterest: 100}, // keeps
		{Strike: 105, DaysToExpiry: 5, Bid: 1.0, OpenInterest: 100},  // too soon
		{Strike: 105, DaysToExpiry: 60, Bid: 1.0, OpenInterest: 100}, // too late
		{Strike: 105, DaysToExpiry: 30, Bid: 0, OpenInterest: 100},   // no bid
		{Strike: 105, DaysToExpiry: 30, Bid: 1.0, OpenInterest: 5},   // illiquid
	}

	got := FilterWindowLiquidity(options, cfg)
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving option, got %d", len(got))
	}
	if got[0].DaysToExpiry != 30 || got[0].OpenInterest != 100 {
		t.Fatalf("wrong survivor: %+v", got[0])
	}
}

func TestFilterSaneDropsArtifacts(t *testing.T) {
	cfg := DefaultFilterConfig()
	options := []domain.OptionContract{
		{Strike: 105, Bid: 1.0},   // normal
		{Strike: 105, Bid: 150},   // bid above stock price
		{Strike: 1650, Bid: 188},  // pre-split artifact: far OTM, huge bid
		{Strike: 1650, Bid: 0.05}, // far OTM with a tiny bid is fine
	}

	got := FilterSane(options, 100, cfg)
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving options, got %d", len(got))
	}
	for _, opt := range got {
		if opt.Bid > 100 {
			t.Fatalf("insane bid survived: %+v", opt)
		}
	}
}

func TestFilterOTM(t *testing.T) {
	options := []domain.OptionContract{
		{Strike: 95},
		{Strike: 100},
		{Strike: 105},
	}
	got := FilterOTM(options, 100)
	if len(got) != 2 {
		t.Fatalf("expected 2 OTM options, got %d", len(got))
	}
	if got[0].Strike != 100 {
		t.Fatalf("strike equal to price must be kept, got %.2f", got[0].Strike)
	}
}

// The window/liquidity and OTM filters are independent predicates, so
// applying them in either order must give the same surviving set.
func TestFilterCompositionOrderIndependent(t *testing.T) {
	cfg := DefaultFilterConfig()
	options := []domain.OptionContract{
		{Strike: 95, DaysToExpiry: 30, Bid: 2.0, OpenInterest: 50},
		{Strike: 102, DaysToExpiry: 30, Bid: 1.0, OpenInterest: 50},
		{Strike: 104, DaysToExpiry: 3, Bid: 0.8, OpenInterest: 50},
		{Strike: 106, DaysToExpiry: 20, Bid: 0.5, OpenInterest: 2},
		{Strike: 108, DaysToExpiry: 44, Bid: 0.3, OpenInterest: 11},
	}

	ab := FilterOTM(FilterWindowLiquidity(options, cfg), 100)
	ba := FilterWindowLiquidity(FilterOTM(options, 100), cfg)

	if len(ab) != len(ba) {
		t.Fatalf("filter order changed survivor count: %d vs %d", len(ab), len(ba))
	}
	for i := range ab {
		if ab[i].Strike != ba[i].Strike {
			t.Fatalf("filter order changed survivors at %d: %.2f vs %.2f", i, ab[i].Strike, ba[i].Strike)
		}
	}
	if len(ab) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(ab))
	}
}
