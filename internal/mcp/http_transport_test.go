package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestHTTPTransportEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, _, _ := testServer()
	handler := NewHTTPTransportHandler(srv, HTTPHandlerConfig{
		AuthToken:       "secret",
		RateLimitPerMin: 60,
		MaxBodyBytes:    1 << 20,
	})
	ts := httptest.NewServer(handler)
	defer ts.Close()

	transport := &sdkmcp.StreamableClientTransport{
		Endpoint: ts.URL,
		HTTPClient: &http.Client{
			Transport: &authRoundTripper{token: "secret"},
		},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "http-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		t.Fatalf("connect over http failed: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools over http failed: %v", err)
	}
	if len(tools.Tools) < 4 {
		t.Fatalf("expected at least 4 tools, got %d", len(tools.Tools))
	}
}

func TestHTTPTransportRejectsBadToken(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, _, _ := testServer()
	handler := NewHTTPTransportHandler(srv, HTTPHandlerConfig{
		AuthToken:       "secret",
		RateLimitPerMin: 60,
		MaxBodyBytes:    1 << 20,
	})
	ts := httptest.NewServer(handler)
	defer ts.Close()

	transport := &sdkmcp.StreamableClientTransport{
		Endpoint: ts.URL,
		HTTPClient: &http.Client{
			Transport: &authRoundTripper{token: "wrong"},
		},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "http-test-client", Version: "1.0.0"}, nil)
	if _, err := client.Connect(ctx, transport, nil); err == nil {
		t.Fatal("expected connect to fail with a bad token")
	}
}
