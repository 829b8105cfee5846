package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"covered-call-strategist/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	priceTTL      = time.Minute
	chainTTL      = 5 * time.Minute
	historyTTL    = 15 * time.Minute
	validationTTL = time.Hour
)

// Source is the full market-data surface consumed by the strategy service.
type Source interface {
	ValidateTicker(ctx context.Context, ticker string) (*domain.TickerValidation, error)
	GetStockPrice(ctx context.Context, ticker string) (float64, error)
	GetOptionsChain(ctx context.Context, ticker string, minDays, maxDays int) ([]domain.OptionContract, error)
	GetPriceHistory(ctx context.Context, ticker string, lookbackDays int) ([]domain.PriceBar, error)
}

// CachedSource is a read-through Redis cache in front of a Source. Cache
// failures are logged and fall through to the upstream; a nil client
// disables caching entirely.
type CachedSource struct {
	inner  Source
	redis  *redis.Client
	tracer trace.Tracer
}

func NewCachedSource(inner Source, client *redis.Client, tracer trace.Tracer) *CachedSource {
	return &CachedSource{inner: inner, redis: client, tracer: tracer}
}

func (s *CachedSource) ValidateTicker(ctx context.Context, ticker string) (*domain.TickerValidation, error) {
	ctx, span := s.tracer.Start(ctx, "market-cache.validate-ticker")
	defer span.End()

	key := "validation:" + ticker
	var cached domain.TickerValidation
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	v, err := s.inner.ValidateTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, v, validationTTL)
	return v, nil
}

func (s *CachedSource) GetStockPrice(ctx context.Context, ticker string) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "market-cache.stock-price")
	defer span.End()

	key := "price:" + ticker
	var cached float64
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	price, err := s.inner.GetStockPrice(ctx, ticker)
	if err != nil {
		return 0, err
	}
	s.store(ctx, key, price, priceTTL)
	return price, nil
}

func (s *CachedSource) GetOptionsChain(ctx context.Context, ticker string, minDays, maxDays int) ([]domain.OptionContract, error) {
	ctx, span := s.tracer.Start(ctx, "market-cache.options-chain")
	defer span.End()

	key := fmt.Sprintf("chain:%s:%d:%d", ticker, minDays, maxDays)
	var cached []domain.OptionContract
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	chain, err := s.inner.GetOptionsChain(ctx, ticker, minDays, maxDays)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, chain, chainTTL)
	return chain, nil
}

func (s *CachedSource) GetPriceHistory(ctx context.Context, ticker string, lookbackDays int) ([]domain.PriceBar, error) {
	ctx, span := s.tracer.Start(ctx, "market-cache.price-history")
	defer span.End()

	key := fmt.Sprintf("history:%s:%d", ticker, lookbackDays)
	var cached []domain.PriceBar
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}
	bars, err := s.inner.GetPriceHistory(ctx, ticker, lookbackDays)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, bars, historyTTL)
	return bars, nil
}

func (s *CachedSource) lookup(ctx context.Context, key string, out interface{}) bool {
	if s.redis == nil {
		return false
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("market cache get %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("market cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (s *CachedSource) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("market cache encode %s: %v", key, err)
		return
	}
	if err := s.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("market cache set %s: %v", key, err)
	}
}
