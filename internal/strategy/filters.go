package strategy

import "covered-call-strategist/internal/domain"

// FilterConfig holds the chain-filtering knobs. The far-OTM ratios guard
// against stale or pre-split chain artifacts (a $1650 strike quoting a $188
// bid after a 10:1 split) and are heuristics, not financial rules.
type FilterConfig struct {
	MinDays           int
	MaxDays           int
	MinOpenInterest   int
	FarOTMStrikeRatio float64
	FarOTMBidRatio    float64
}

func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinDays:           7,
		MaxDays:           45,
		MinOpenInterest:   10,
		FarOTMStrikeRatio: 1.5,
		FarOTMBidRatio:    0.2,
	}
}

// FilterWindowLiquidity keeps contracts inside the expiration window with
// enough open interest and a live bid.
func FilterWindowLiquidity(options []domain.OptionContract, cfg FilterConfig) []domain.OptionContract {
	out := make([]domain.OptionContract, 0, len(options))
	for _, opt := range options {
		if opt.DaysToExpiry < cfg.MinDays || opt.DaysToExpiry > cfg.MaxDays {
			continue
		}
		if opt.OpenInterest < cfg.MinOpenInterest {
			continue
		}
		if opt.Bid <= 0 {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// FilterSane drops quotes that cannot be real: a bid above the stock price,
// or a far-OTM strike still bidding a large fraction of the stock price.
func FilterSane(options []domain.OptionContract, stockPrice float64, cfg FilterConfig) []domain.OptionContract {
	out := make([]domain.OptionContract, 0, len(options))
	for _, opt := range options {
		if opt.Bid > stockPrice {
			continue
		}
		if opt.Strike > stockPrice*cfg.FarOTMStrikeRatio && opt.Bid > stockPrice*cfg.FarOTMBidRatio {
			continue
		}
		out = append(out, opt)
	}
	return out
}

// FilterOTM keeps only strikes at or above the stock price, so an assigned
// position is never sold below cost basis.
func FilterOTM(options []domain.OptionContract, stockPrice float64) []domain.OptionContract {
	out := make([]domain.OptionContract, 0, len(options))
	for _, opt := range options {
		if opt.Strike >= stockPrice {
			out = append(out, opt)
		}
	}
	return out
}
