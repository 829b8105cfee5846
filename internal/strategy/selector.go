package strategy

import (
	"fmt"

	"covered-call-strategist/internal/domain"
	"covered-call-strategist/internal/metrics"
)

// strikeRule maps a technical classification to an OTM band. Rules are
// evaluated in order and the first match wins; the final rule has no
// condition and always matches.
type strikeRule struct {
	sentiments []domain.Sentiment
	risk       domain.AssignmentRisk
	minOTM     float64
	maxOTM     float64
	strategy   domain.StrategyLabel
	reason     string
	useLayered bool
}

var strikeRules = []strikeRule{
	{
		sentiments: []domain.Sentiment{domain.SentimentOversoldBounceRisk, domain.SentimentOversoldWithBullish},
		minOTM:     0.02,
		maxOTM:     0.06,
		strategy:   domain.StrategyBalanced,
		reason:     "Stock is oversold (RSI < 30) with potential bounce. Using balanced strike to hedge bounce risk.",
		useLayered: true,
	},
	{
		sentiments: []domain.Sentiment{domain.SentimentOverboughtPullbackRisk, domain.SentimentOverboughtWithBearish},
		minOTM:     0.0,
		maxOTM:     0.03,
		strategy:   domain.StrategyAggressive,
		reason:     "Stock is overbought with pullback potential. ATM strike is appropriate.",
	},
	{
		risk:     domain.RiskHigh,
		minOTM:   0.03,
		maxOTM:   0.10,
		strategy: domain.StrategyDefensive,
		reason:   "Due to bullish momentum, recommending a higher strike to reduce assignment risk while still collecting premium.",
	},
	{
		risk:       domain.RiskModerate,
		minOTM:     0.01,
		maxOTM:     0.05,
		strategy:   domain.StrategyBalanced,
		reason:     "With mixed technical signals, recommending a slightly OTM strike for balanced risk/reward.",
		useLayered: true,
	},
	{
		minOTM:   0.0,
		maxOTM:   0.03,
		strategy: domain.StrategyAggressive,
		reason:   "With low assignment risk, recommending an ATM strike to maximize premium income.",
	},
}

func (r strikeRule) matches(snap *domain.TechnicalSnapshot) bool {
	for _, s := range r.sentiments {
		if snap.Sentiment == s {
			return true
		}
	}
	if len(r.sentiments) > 0 {
		return false
	}
	if r.risk != "" {
		return snap.AssignmentRisk == r.risk
	}
	return true
}

// SelectStrike maps the technical snapshot onto an OTM band and picks the
// highest-annualized-yield contract inside it. An empty band widens to the
// full candidate set with an explicit notice in the reason.
func SelectStrike(options []domain.OptionContract, stockPrice float64, snap *domain.TechnicalSnapshot) domain.StrikeSelection {
	rule := strikeRules[len(strikeRules)-1]
	for _, r := range strikeRules {
		if r.matches(snap) {
			rule = r
			break
		}
	}

	minStrike := stockPrice * (1 + rule.minOTM)
	maxStrike := stockPrice * (1 + rule.maxOTM)

	preferred := make([]domain.OptionContract, 0, len(options))
	for _, opt := range options {
		if opt.Strike >= minStrike && opt.Strike <= maxStrike {
			preferred = append(preferred, opt)
		}
	}

	reason := rule.reason
	if len(preferred) == 0 {
		preferred = options
		reason = fmt.Sprintf(
			"No options in preferred range (%.0f-%.0f%% OTM). Selecting best available option.",
			rule.minOTM*100, rule.maxOTM*100,
		)
	}

	selection := domain.StrikeSelection{
		Strategy:        rule.strategy,
		Reason:          reason,
		AssignmentRisk:  snap.AssignmentRisk,
		Sentiment:       snap.Sentiment,
		BouncePotential: snap.BouncePotential,
		UseLayered:      rule.useLayered,
	}

	best, err := metrics.FindBestByYield(preferred, stockPrice)
	if err == nil {
		selection.Option = best
	}
	return selection
}
