package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, strategies StrategyRunner, market MarketReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "strategy_run",
		Description: "Run the full covered call strategy pipeline for a ticker and share count",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in strategyRunInput) (*mcp.CallToolResult, strategyRunOutput, error) {
		if strategies == nil {
			return nil, strategyRunOutput{}, fmt.Errorf("strategy service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, strategyRunOutput{}, err
		}

		otmOnly := true
		if in.OTMOnly != nil {
			otmOnly = *in.OTMOnly
		}

		rec := strategies.Run(ctx, ticker, in.Shares, otmOnly)
		return nil, strategyRunOutput{
			Ticker:         ticker,
			Shares:         in.Shares,
			Recommendation: rec.Text,
			ErrorCode:      string(rec.ErrorCode),
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "technical_analysis_get",
		Description: "Get RSI, MACD, moving average, and volume readings with sentiment classification",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in technicalGetInput) (*mcp.CallToolResult, technicalGetOutput, error) {
		if strategies == nil {
			return nil, technicalGetOutput{}, fmt.Errorf("strategy service unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, technicalGetOutput{}, err
		}
		snapshot, err := strategies.Technical(ctx, ticker)
		if err != nil {
			return nil, technicalGetOutput{}, err
		}
		return nil, technicalGetOutput{Ticker: ticker, Technical: snapshot}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "price_get",
		Description: "Get the current stock price for a ticker",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in priceGetInput) (*mcp.CallToolResult, priceGetOutput, error) {
		if market == nil {
			return nil, priceGetOutput{}, fmt.Errorf("market data unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, priceGetOutput{}, err
		}
		price, err := market.GetStockPrice(ctx, ticker)
		if err != nil {
			return nil, priceGetOutput{}, err
		}
		return nil, priceGetOutput{Ticker: ticker, Price: price}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "options_chain_list",
		Description: "List call option contracts for a ticker within an expiration window",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in optionsChainInput) (*mcp.CallToolResult, optionsChainOutput, error) {
		if market == nil {
			return nil, optionsChainOutput{}, fmt.Errorf("market data unavailable")
		}
		ticker, err := normalizeTicker(in.Ticker)
		if err != nil {
			return nil, optionsChainOutput{}, err
		}
		minDays, maxDays, err := normalizeExpiryWindow(in.MinDays, in.MaxDays)
		if err != nil {
			return nil, optionsChainOutput{}, err
		}

		calls, err := market.GetOptionsChain(ctx, ticker, minDays, maxDays)
		if err != nil {
			return nil, optionsChainOutput{}, err
		}
		return nil, optionsChainOutput{
			Ticker:  ticker,
			Calls:   calls,
			MinDays: minDays,
			MaxDays: maxDays,
		}, nil
	})
}
