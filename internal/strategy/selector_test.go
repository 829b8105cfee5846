package strategy

import (
	"strings"
	"testing"

	"covered-call-strategist/internal/domain"
)

func chain(strikes ...float64) []domain.OptionContract {
	options := make([]domain.OptionContract, 0, len(strikes))
	for _, s := range strikes {
		options = append(options, domain.OptionContract{
			Strike:       s,
			Expiration:   "2026-10-16",
			DaysToExpiry: 30,
			Bid:          1.0,
			OpenInterest: 100,
		})
	}
	return options
}

func TestSelectStrikeHighRiskPrefersDefensiveBand(t *testing.T) {
	snap := &domain.TechnicalSnapshot{
		Sentiment:      domain.SentimentBullish,
		AssignmentRisk: domain.RiskHigh,
	}
	// 3-10% OTM band on a $100 stock is [103, 110].
	selection := SelectStrike(chain(101, 104, 108, 115), 100, snap)

	if selection.Strategy != domain.StrategyDefensive {
		t.Fatalf("expected defensive, got %s", selection.Strategy)
	}
	if selection.UseLayered {
		t.Fatal("high risk must not layer")
	}
	if selection.Option == nil {
		t.Fatal("expected a selected option")
	}
	// Same bid everywhere, so the lower strike has the better yield.
	if selection.Option.Strike != 104 {
		t.Fatalf("expected strike 104 inside band, got %.2f", selection.Option.Strike)
	}
}

func TestSelectStrikeModerateRiskLayers(t *testing.T) {
	snap := &domain.TechnicalSnapshot{
		Sentiment:      domain.SentimentSlightlyBullish,
		AssignmentRisk: domain.RiskModerate,
	}
	selection := SelectStrike(chain(102, 104), 100, snap)

	if selection.Strategy != domain.StrategyBalanced {
		t.Fatalf("expected balanced, got %s", selection.Strategy)
	}
	if !selection.UseLayered {
		t.Fatal("moderate risk must flag layering")
	}
}

func TestSelectStrikeOversoldSentimentWinsOverRisk(t *testing.T) {
	// Sentiment rules are checked before risk rules.
	snap := &domain.TechnicalSnapshot{
		Sentiment:       domain.SentimentOversoldBounceRisk,
		AssignmentRisk:  domain.RiskHigh,
		BouncePotential: domain.OversoldBounce,
	}
	selection := SelectStrike(chain(103, 105), 100, snap)

	if selection.Strategy != domain.StrategyBalanced {
		t.Fatalf("expected balanced for oversold, got %s", selection.Strategy)
	}
	if !selection.UseLayered {
		t.Fatal("oversold must flag layering")
	}
	if selection.BouncePotential != domain.OversoldBounce {
		t.Fatalf("bounce flag not echoed: %q", selection.BouncePotential)
	}
}

func TestSelectStrikeExpandsEmptyBand(t *testing.T) {
	snap := &domain.TechnicalSnapshot{
		Sentiment:      domain.SentimentBullish,
		AssignmentRisk: domain.RiskHigh,
	}
	// Nothing in [103, 110]: expands to the full candidate set.
	selection := SelectStrike(chain(101, 120), 100, snap)

	if selection.Option == nil {
		t.Fatal("expected fallback selection")
	}
	if !strings.Contains(selection.Reason, "No options in preferred range") {
		t.Fatalf("expected expanded-range notice, got %q", selection.Reason)
	}
	if selection.Option.Strike != 101 {
		t.Fatalf("expected best-yield fallback 101, got %.2f", selection.Option.Strike)
	}
}

func TestSelectStrikeDefaultRuleAggressive(t *testing.T) {
	snap := &domain.TechnicalSnapshot{
		Sentiment:      domain.SentimentBearish,
		AssignmentRisk: domain.RiskVeryLow,
	}
	selection := SelectStrike(chain(101, 105), 100, snap)

	if selection.Strategy != domain.StrategyAggressive {
		t.Fatalf("expected aggressive default, got %s", selection.Strategy)
	}
	if selection.UseLayered {
		t.Fatal("default rule must not layer")
	}
	if selection.Option.Strike != 101 {
		t.Fatalf("expected ATM-ish strike 101, got %.2f", selection.Option.Strike)
	}
}

func TestSelectStrikeNoCandidates(t *testing.T) {
	snap := &domain.TechnicalSnapshot{
		Sentiment:      domain.SentimentNeutral,
		AssignmentRisk: domain.RiskLow,
	}
	selection := SelectStrike(nil, 100, snap)
	if selection.Option != nil {
		t.Fatal("expected nil option for empty chain")
	}
}
