package mcp

import (
	"context"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestResourcesStaticAndTemplated(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, strategies, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	list, err := session.ListResources(ctx, &sdkmcp.ListResourcesParams{})
	if err != nil {
		t.Fatalf("list resources failed: %v", err)
	}
	if len(list.Resources) < 1 {
		t.Fatalf("expected at least 1 static resource, got %d", len(list.Resources))
	}

	templates, err := session.ListResourceTemplates(ctx, &sdkmcp.ListResourceTemplatesParams{})
	if err != nil {
		t.Fatalf("list templates failed: %v", err)
	}
	if len(templates.ResourceTemplates) < 2 {
		t.Fatalf("expected at least 2 resource templates, got %d", len(templates.ResourceTemplates))
	}

	readRes, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "strategy://error-codes"})
	if err != nil {
		t.Fatalf("read static resource failed: %v", err)
	}
	var codes []string
	if err := decodeResourceJSON(readRes, &codes); err != nil {
		t.Fatalf("decode codes failed: %v", err)
	}
	if len(codes) != 6 {
		t.Fatalf("expected 6 error codes, got %d", len(codes))
	}

	readRes, err = session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "price://AAPL"})
	if err != nil {
		t.Fatalf("read price resource failed: %v", err)
	}
	var price priceGetOutput
	if err := decodeResourceJSON(readRes, &price); err != nil {
		t.Fatalf("decode price failed: %v", err)
	}
	if price.Ticker != "AAPL" || price.Price != 187.42 {
		t.Fatalf("unexpected price payload: %+v", price)
	}

	readRes, err = session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "technical://aapl"})
	if err != nil {
		t.Fatalf("read technical resource failed: %v", err)
	}
	var tech technicalGetOutput
	if err := decodeResourceJSON(readRes, &tech); err != nil {
		t.Fatalf("decode technical failed: %v", err)
	}
	if tech.Ticker != "AAPL" {
		t.Fatalf("expected normalized ticker AAPL, got %s", tech.Ticker)
	}
	if strategies.lastTicker != "AAPL" {
		t.Fatalf("expected service call with AAPL, got %s", strategies.lastTicker)
	}
}

func TestUnknownResourceURI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	if _, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "chains://AAPL"}); err == nil {
		t.Fatal("expected resource not found error for chains://AAPL")
	}
}
