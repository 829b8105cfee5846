package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"covered-call-strategist/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, strategies StrategyRunner, market MarketReader) {
	server.AddResource(&mcp.Resource{
		URI:         "strategy://error-codes",
		Name:        "error-codes",
		Description: "Error codes the strategy pipeline can return",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		codes := []domain.ErrorCode{
			domain.ErrInvalidShares,
			domain.ErrInvalidTicker,
			domain.ErrNoOptions,
			domain.ErrNoLiquidOptions,
			domain.ErrAPIError,
			domain.ErrCalculationError,
		}
		return jsonResource(req.Params.URI, codes)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "price://{ticker}",
		Name:        "price-by-ticker",
		Description: "Current stock price for a ticker",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if market == nil {
			return nil, fmt.Errorf("market data unavailable")
		}
		ticker, err := tickerFromURI(req.Params.URI, "price")
		if err != nil {
			return nil, err
		}
		price, err := market.GetStockPrice(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, priceGetOutput{Ticker: ticker, Price: price})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "technical://{ticker}",
		Name:        "technical-by-ticker",
		Description: "Technical analysis snapshot for a ticker",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if strategies == nil {
			return nil, fmt.Errorf("strategy service unavailable")
		}
		ticker, err := tickerFromURI(req.Params.URI, "technical")
		if err != nil {
			return nil, err
		}
		snapshot, err := strategies.Technical(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, technicalGetOutput{Ticker: ticker, Technical: snapshot})
	})
}

func tickerFromURI(uri, scheme string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != scheme {
		return "", mcp.ResourceNotFoundError(uri)
	}
	raw := parsed.Host
	if raw == "" {
		raw = strings.Trim(strings.TrimSpace(parsed.Path), "/")
	}
	return normalizeTicker(raw)
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
