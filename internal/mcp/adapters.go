package mcp

import (
	"context"

	"covered-call-strategist/internal/domain"
)

// StrategyRunner exposes the recommendation pipeline and the standalone
// technical snapshot.
type StrategyRunner interface {
	Run(ctx context.Context, ticker string, shares int, otmOnly bool) domain.Recommendation
	Technical(ctx context.Context, ticker string) (*domain.TechnicalSnapshot, error)
}

// MarketReader exposes raw market data reads.
type MarketReader interface {
	GetStockPrice(ctx context.Context, ticker string) (float64, error)
	GetOptionsChain(ctx context.Context, ticker string, minDays, maxDays int) ([]domain.OptionContract, error)
}
