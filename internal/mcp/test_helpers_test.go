package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"covered-call-strategist/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubStrategyRunner struct {
	rec  domain.Recommendation
	snap *domain.TechnicalSnapshot

	lastTicker  string
	lastShares  int
	lastOTMOnly bool
}

func (s *stubStrategyRunner) Run(ctx context.Context, ticker string, shares int, otmOnly bool) domain.Recommendation {
	s.lastTicker = ticker
	s.lastShares = shares
	s.lastOTMOnly = otmOnly
	return s.rec
}

func (s *stubStrategyRunner) Technical(ctx context.Context, ticker string) (*domain.TechnicalSnapshot, error) {
	s.lastTicker = ticker
	if s.snap == nil {
		return nil, fmt.Errorf("no history for %s", ticker)
	}
	return s.snap, nil
}

type stubMarketReader struct {
	price float64
	calls []domain.OptionContract

	lastMinDays int
	lastMaxDays int
}

func (s *stubMarketReader) GetStockPrice(ctx context.Context, ticker string) (float64, error) {
	return s.price, nil
}

func (s *stubMarketReader) GetOptionsChain(ctx context.Context, ticker string, minDays, maxDays int) ([]domain.OptionContract, error) {
	s.lastMinDays = minDays
	s.lastMaxDays = maxDays
	return append([]domain.OptionContract(nil), s.calls...), nil
}

func testServer() (*sdkmcp.Server, *stubStrategyRunner, *stubMarketReader) {
	strategies := &stubStrategyRunner{
		rec: domain.Recommendation{Text: "**Recommendation: Sell 5 AAPL $103.00 Calls expiring 2026-10-16**"},
		snap: &domain.TechnicalSnapshot{
			Sentiment:      domain.SentimentNeutral,
			AssignmentRisk: domain.RiskLow,
		},
	}
	market := &stubMarketReader{
		price: 187.42,
		calls: []domain.OptionContract{
			{Strike: 190, Expiration: "2026-10-16", DaysToExpiry: 45, Bid: 2.3, OpenInterest: 150},
		},
	}

	srv := NewServer(nil, strategies, market, ServerConfig{RequestTimeout: time.Second})
	return srv, strategies, market
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
