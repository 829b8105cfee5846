package metrics

import (
	"errors"
	"math"

	"covered-call-strategist/internal/domain"
)

var (
	// ErrInvalidOption marks a malformed chain record (non-positive strike,
	// negative bid or expiry). Callers skip the candidate rather than abort.
	ErrInvalidOption = errors.New("invalid option data")

	// ErrNoCandidates is returned when the candidate set is empty or no
	// candidate produced valid metrics.
	ErrNoCandidates = errors.New("no options available after filtering")
)

// Compute derives premium yield, annualized return, and moneyness for a
// single contract. Rounding happens here, at the boundary, so upstream
// comparisons never compound rounding error.
func Compute(opt domain.OptionContract, stockPrice float64) (domain.OptionMetrics, error) {
	if opt.Strike <= 0 || opt.Bid < 0 || opt.DaysToExpiry < 0 || stockPrice <= 0 {
		return domain.OptionMetrics{}, ErrInvalidOption
	}

	premiumYield := (opt.Bid / opt.Strike) * 100
	annualized := 0.0
	if opt.DaysToExpiry > 0 {
		annualized = (premiumYield / float64(opt.DaysToExpiry)) * 365
	}

	return domain.OptionMetrics{
		Strike:            opt.Strike,
		Expiration:        opt.Expiration,
		Premium:           opt.Bid,
		PremiumYield:      round(premiumYield, 4),
		AnnualizedReturn:  round(annualized, 2),
		IsITM:             opt.Strike < stockPrice,
		Moneyness:         round((opt.Strike-stockPrice)/stockPrice*100, 2),
		DaysToExpiry:      opt.DaysToExpiry,
		OpenInterest:      opt.OpenInterest,
		ImpliedVolatility: opt.ImpliedVolatility,
	}, nil
}

// FindBestByYield picks the candidate with the strictly greatest annualized
// return. Ties keep the first encountered, so input order is the tie-break.
// Candidates that fail Compute are skipped; if everything is skipped the
// whole call errors.
func FindBestByYield(options []domain.OptionContract, stockPrice float64) (*domain.OptionMetrics, error) {
	if len(options) == 0 {
		return nil, ErrNoCandidates
	}

	var best *domain.OptionMetrics
	bestAnnualized := math.Inf(-1)
	for _, opt := range options {
		m, err := Compute(opt, stockPrice)
		if err != nil {
			continue
		}
		if m.AnnualizedReturn > bestAnnualized {
			bestAnnualized = m.AnnualizedReturn
			mCopy := m
			best = &mCopy
		}
	}
	if best == nil {
		return nil, ErrNoCandidates
	}
	return best, nil
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
