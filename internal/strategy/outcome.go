package strategy

import (
	"errors"
	"math"

	"covered-call-strategist/internal/domain"
)

var errInvalidStockPrice = errors.New("stock price must be positive")

// ComputeBreakeven returns the effective cost basis after collecting the
// premium and the downside protection it buys.
func ComputeBreakeven(stockPrice, premium float64) (domain.Breakeven, error) {
	if stockPrice <= 0 {
		return domain.Breakeven{}, errInvalidStockPrice
	}
	return domain.Breakeven{
		Price:              round2(stockPrice - premium),
		DownsideProtection: round2(premium / stockPrice * 100),
	}, nil
}

// ComputeMaxProfit models the assignment scenario: shares called away at the
// strike, premium kept. Shares must already be validated as a positive
// multiple of 100.
func ComputeMaxProfit(stockPrice, strike, premium float64, shares int) (domain.MaxProfit, error) {
	if stockPrice <= 0 {
		return domain.MaxProfit{}, errInvalidStockPrice
	}

	capitalGainPerShare := strike - stockPrice
	totalCapitalGain := capitalGainPerShare * float64(shares)
	totalPremium := premium * float64(shares)
	totalMaxProfit := totalCapitalGain + totalPremium

	return domain.MaxProfit{
		Contracts:           shares / 100,
		Shares:              shares,
		CapitalGainPerShare: round2(capitalGainPerShare),
		TotalCapitalGain:    round2(totalCapitalGain),
		PremiumPerShare:     round2(premium),
		TotalPremium:        round2(totalPremium),
		TotalMaxProfit:      round2(totalMaxProfit),
		MaxReturnPercent:    round2(totalMaxProfit / (stockPrice * float64(shares)) * 100),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
