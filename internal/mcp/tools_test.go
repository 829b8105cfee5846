package mcp

import (
	"context"
	"testing"
	"time"

	"covered-call-strategist/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestToolsListAndInvoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, strategies, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	if len(tools.Tools) < 4 {
		t.Fatalf("expected at least 4 tools, got %d", len(tools.Tools))
	}

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "strategy_run",
		Arguments: map[string]any{"ticker": "aapl", "shares": 500},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if strategies.lastTicker != "AAPL" || strategies.lastShares != 500 {
		t.Fatalf("unexpected run args: %s %d", strategies.lastTicker, strategies.lastShares)
	}
	if !strategies.lastOTMOnly {
		t.Fatal("expected otm_only to default to true")
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "technical_analysis_get",
		Arguments: map[string]any{"ticker": "MSFT"},
	})
	if err != nil {
		t.Fatalf("technical tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected technical tool error: %+v", res.Content)
	}
}

func TestStrategyRunSurfacesPipelineErrorCode(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, strategies, _ := testServer()
	strategies.rec = domain.Recommendation{
		Text:      "Invalid share count.",
		ErrorCode: domain.ErrInvalidShares,
	}

	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "strategy_run",
		Arguments: map[string]any{"ticker": "AAPL", "shares": 250},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	// Pipeline failures are data, not protocol errors.
	if res.IsError {
		t.Fatalf("expected structured output, got tool error: %+v", res.Content)
	}
}

func TestToolsValidationFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "options_chain_list",
		Arguments: map[string]any{"ticker": "TOOLONGNAME"},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool-level validation error")
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "options_chain_list",
		Arguments: map[string]any{"ticker": "AAPL", "min_days": 60, "max_days": 30},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected window validation error")
	}
}

func TestOptionsChainDefaults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _, market := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "options_chain_list",
		Arguments: map[string]any{"ticker": "AAPL"},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if market.lastMinDays != defaultMinExpiryDays || market.lastMaxDays != defaultMaxExpiryDays {
		t.Fatalf("expected default window, got %d-%d", market.lastMinDays, market.lastMaxDays)
	}
}
