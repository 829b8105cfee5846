package service

import (
	"context"
	"fmt"
	"strings"

	"covered-call-strategist/internal/domain"
	"covered-call-strategist/internal/metrics"
	"covered-call-strategist/internal/render"
	"covered-call-strategist/internal/strategy"

	"go.opentelemetry.io/otel/trace"
)

const (
	// layeredActivationShares gates the layered alternative on position
	// size. BuildLayered applies its own 3-contract floor independently.
	layeredActivationShares = 300

	historyLookbackDays = 90
)

type TickerValidator interface {
	ValidateTicker(ctx context.Context, ticker string) (*domain.TickerValidation, error)
}

type PriceSource interface {
	GetStockPrice(ctx context.Context, ticker string) (float64, error)
}

type ChainSource interface {
	GetOptionsChain(ctx context.Context, ticker string, minDays, maxDays int) ([]domain.OptionContract, error)
}

type HistorySource interface {
	GetPriceHistory(ctx context.Context, ticker string, lookbackDays int) ([]domain.PriceBar, error)
}

type TechnicalAnalyzer interface {
	Analyze(ticker string, bars []domain.PriceBar) (*domain.TechnicalSnapshot, error)
}

// StrategyService is the top-level covered-call pipeline. Each stage either
// produces its payload or short-circuits into a typed, rendered error; no
// partial recommendation is ever emitted.
type StrategyService struct {
	tracer    trace.Tracer
	validator TickerValidator
	prices    PriceSource
	chains    ChainSource
	history   HistorySource
	engine    TechnicalAnalyzer
	filters   strategy.FilterConfig
}

func NewStrategyService(
	tracer trace.Tracer,
	validator TickerValidator,
	prices PriceSource,
	chains ChainSource,
	history HistorySource,
	engine TechnicalAnalyzer,
) *StrategyService {
	return &StrategyService{
		tracer:    tracer,
		validator: validator,
		prices:    prices,
		chains:    chains,
		history:   history,
		engine:    engine,
		filters:   strategy.DefaultFilterConfig(),
	}
}

// WithFilters overrides the default chain-filtering knobs.
func (s *StrategyService) WithFilters(cfg strategy.FilterConfig) *StrategyService {
	s.filters = cfg
	return s
}

// Run executes the whole pipeline for one position. The returned
// Recommendation always carries user-readable text, error path included.
func (s *StrategyService) Run(ctx context.Context, ticker string, shares int, otmOnly bool) domain.Recommendation {
	ctx, span := s.tracer.Start(ctx, "strategy-service.run")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if shares <= 0 || shares%100 != 0 {
		return fail(domain.ErrInvalidShares, fmt.Sprintf("You provided %d shares.", shares))
	}

	validation, err := s.validator.ValidateTicker(ctx, ticker)
	if err != nil {
		return fail(domain.ErrInvalidTicker, fmt.Sprintf("Error validating ticker '%s': %v.", ticker, err))
	}
	if !validation.Valid {
		return fail(domain.ErrInvalidTicker, fmt.Sprintf("Ticker '%s' not found.", ticker))
	}
	if !validation.HasOptions {
		return fail(domain.ErrNoOptions, fmt.Sprintf("Ticker '%s' exists but has no options available.", ticker))
	}

	stockPrice, err := s.prices.GetStockPrice(ctx, ticker)
	if err != nil || stockPrice <= 0 {
		return fail(domain.ErrAPIError, fmt.Sprintf("Could not fetch price for '%s'.", ticker))
	}

	options, err := s.chains.GetOptionsChain(ctx, ticker, s.filters.MinDays, s.filters.MaxDays)
	if err != nil {
		return fail(domain.ErrAPIError, fmt.Sprintf("Error fetching options for '%s': %v.", ticker, err))
	}
	if len(options) == 0 {
		return fail(domain.ErrNoOptions, fmt.Sprintf("No call options returned for '%s'.", ticker))
	}

	filtered := strategy.FilterSane(options, stockPrice, s.filters)
	filtered = strategy.FilterWindowLiquidity(filtered, s.filters)
	if len(filtered) == 0 {
		return fail(domain.ErrNoLiquidOptions, fmt.Sprintf("No options met the %d-%d day and liquidity criteria.", s.filters.MinDays, s.filters.MaxDays))
	}
	if otmOnly {
		filtered = strategy.FilterOTM(filtered, stockPrice)
		if len(filtered) == 0 {
			return fail(domain.ErrNoLiquidOptions, fmt.Sprintf("No options met the %d-%d day, liquidity, and moneyness criteria.", s.filters.MinDays, s.filters.MaxDays))
		}
	}

	// Technical failure is informational, never fatal: the pipeline falls
	// back to plain yield ranking.
	snapshot, techErr := s.technicalSnapshot(ctx, ticker)

	var selection domain.StrikeSelection
	var layered *domain.LayeredStrategy
	if techErr != nil {
		best, err := metrics.FindBestByYield(filtered, stockPrice)
		if err != nil {
			return fail(domain.ErrCalculationError, "No suitable options found.")
		}
		selection = domain.StrikeSelection{
			Option:         best,
			Strategy:       domain.StrategyStandard,
			Reason:         "Technical analysis unavailable. Selecting highest yield option.",
			AssignmentRisk: domain.RiskUnknown,
			Sentiment:      domain.SentimentUnknown,
		}
	} else {
		selection = strategy.SelectStrike(filtered, stockPrice, snapshot)
		if selection.Option == nil {
			return fail(domain.ErrCalculationError, "No suitable options found for current market conditions.")
		}
		if selection.UseLayered && shares >= layeredActivationShares {
			layered = strategy.BuildLayered(filtered, stockPrice, shares, snapshot)
		}
	}
	best := selection.Option

	breakeven, err := strategy.ComputeBreakeven(stockPrice, best.Premium)
	if err != nil {
		return fail(domain.ErrCalculationError, err.Error())
	}
	maxProfit, err := strategy.ComputeMaxProfit(stockPrice, best.Strike, best.Premium, shares)
	if err != nil {
		return fail(domain.ErrCalculationError, err.Error())
	}

	text := render.Recommendation(ticker, stockPrice, *best, shares, breakeven, maxProfit)
	if warning, itm := render.ITMWarning(best.Strike, stockPrice); itm {
		text += "\n\n" + warning
	}
	if layered != nil {
		text += "\n\n" + render.LayeredSection(*layered, stockPrice)
	}
	if techErr == nil {
		text += "\n\n" + render.TechnicalSection(*snapshot, selection, stockPrice, *best)
	}

	return domain.Recommendation{Text: text}
}

// Technical exposes the standalone snapshot for the HTTP and MCP surfaces.
func (s *StrategyService) Technical(ctx context.Context, ticker string) (*domain.TechnicalSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "strategy-service.technical")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	return s.technicalSnapshot(ctx, ticker)
}

func (s *StrategyService) technicalSnapshot(ctx context.Context, ticker string) (*domain.TechnicalSnapshot, error) {
	if s.history == nil || s.engine == nil {
		return nil, fmt.Errorf("technical analysis not configured")
	}
	bars, err := s.history.GetPriceHistory(ctx, ticker, historyLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", ticker, err)
	}
	return s.engine.Analyze(ticker, bars)
}

func fail(code domain.ErrorCode, details string) domain.Recommendation {
	return domain.Recommendation{
		Text:      render.ErrorMessage(code, details),
		ErrorCode: code,
	}
}
