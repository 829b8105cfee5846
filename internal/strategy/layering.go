package strategy

import (
	"covered-call-strategist/internal/domain"
	"covered-call-strategist/internal/metrics"
)

// minLayerContracts is the floor below which splitting a position across
// three strikes is pointless.
const minLayerContracts = 3

type allocation struct {
	name   string
	pct    float64
	minOTM float64
	maxOTM float64
}

var (
	// Oversold: hedge heavily against the bounce with a conservative tilt.
	oversoldAllocations = []allocation{
		{name: "Conservative", pct: 0.40, minOTM: 0.04, maxOTM: 0.08},
		{name: "Balanced", pct: 0.40, minOTM: 0.02, maxOTM: 0.04},
		{name: "Aggressive", pct: 0.20, minOTM: 0.00, maxOTM: 0.02},
	}

	// Bounce flagged either way: near-even thirds.
	bounceAllocations = []allocation{
		{name: "Conservative", pct: 0.33, minOTM: 0.03, maxOTM: 0.06},
		{name: "Balanced", pct: 0.34, minOTM: 0.01, maxOTM: 0.03},
		{name: "Aggressive", pct: 0.33, minOTM: 0.00, maxOTM: 0.01},
	}

	defaultAllocations = []allocation{
		{name: "Conservative", pct: 0.30, minOTM: 0.03, maxOTM: 0.06},
		{name: "Balanced", pct: 0.40, minOTM: 0.01, maxOTM: 0.03},
		{name: "Aggressive", pct: 0.30, minOTM: 0.00, maxOTM: 0.01},
	}
)

func allocationsFor(snap *domain.TechnicalSnapshot) []allocation {
	switch {
	case snap.Sentiment == domain.SentimentOversoldBounceRisk,
		snap.Sentiment == domain.SentimentOversoldWithBullish:
		return oversoldAllocations
	case snap.BouncePotential != domain.BounceNone:
		return bounceAllocations
	default:
		return defaultAllocations
	}
}

// BuildLayered splits the position's contracts across three risk tiers, each
// independently optimized by annualized yield within its own OTM band.
// Returns nil when the position is too small or no tier finds a contract.
func BuildLayered(options []domain.OptionContract, stockPrice float64, shares int, snap *domain.TechnicalSnapshot) *domain.LayeredStrategy {
	contracts := shares / 100
	if contracts < minLayerContracts {
		return nil
	}

	layers := make([]domain.Layer, 0, 3)
	totalPremium := 0.0

	for _, alloc := range allocationsFor(snap) {
		layerContracts := int(float64(contracts) * alloc.pct)
		if layerContracts < 1 {
			layerContracts = 1
		}

		minStrike := stockPrice * (1 + alloc.minOTM)
		maxStrike := stockPrice * (1 + alloc.maxOTM)

		inBand := make([]domain.OptionContract, 0, len(options))
		for _, opt := range options {
			if opt.Strike >= minStrike && opt.Strike <= maxStrike {
				inBand = append(inBand, opt)
			}
		}
		if len(inBand) == 0 {
			inBand = options
		}

		best, err := metrics.FindBestByYield(inBand, stockPrice)
		if err != nil {
			continue
		}

		layerPremium := best.Premium * float64(layerContracts) * 100
		totalPremium += layerPremium
		layers = append(layers, domain.Layer{
			Name:      alloc.name,
			Contracts: layerContracts,
			Option:    *best,
			Premium:   layerPremium,
		})
	}

	if len(layers) == 0 {
		return nil
	}

	total := 0
	for _, l := range layers {
		total += l.Contracts
	}
	return &domain.LayeredStrategy{
		Layers:         layers,
		TotalContracts: total,
		TotalPremium:   totalPremium,
	}
}
