package mcp

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultMCPMaxBodyBytes int64 = 1 << 20 // 1MiB

// HTTPHandlerConfig hardens the MCP HTTP transport: bearer auth, per-client
// rate limiting, and a request body cap.
type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// transportGuard fronts the streamable HTTP handler and rejects requests
// before they reach the MCP session layer.
type transportGuard struct {
	next      http.Handler
	token     string
	limiter   *clientRateLimiter
	bodyLimit int64
}

func wrapHTTPHandler(base http.Handler, cfg HTTPHandlerConfig) http.Handler {
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMCPMaxBodyBytes
	}
	return &transportGuard{
		next:      base,
		token:     cfg.AuthToken,
		limiter:   newClientRateLimiter(cfg.RateLimitPerMin, time.Minute),
		bodyLimit: limit,
	}
}

func (g *transportGuard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	provided, ok := bearerToken(r)
	if !ok {
		g.reject(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if g.token == "" || provided == "" || provided != g.token {
		g.reject(w, http.StatusForbidden, "invalid bearer token")
		return
	}
	if !g.limiter.Allow(clientKey(r)) {
		g.reject(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, g.bodyLimit)
	}
	g.next.ServeHTTP(w, r)
}

func (g *transportGuard) reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authz, prefix) {
		return "", false
	}
	return strings.TrimSpace(authz[len(prefix):]), true
}

// clientKey buckets requests by token and remote host so one client cannot
// starve the others.
func clientKey(r *http.Request) string {
	token, _ := bearerToken(r)
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	if token == "" {
		return host
	}
	return token + "|" + host
}

// clientRateLimiter is a per-client sliding window limiter, the string-keyed
// sibling of the bot package's per-user limiter. A zero max or zero window
// disables limiting.
type clientRateLimiter struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu       sync.Mutex
	requests map[string][]time.Time
}

func newClientRateLimiter(maxRequests int, window time.Duration) *clientRateLimiter {
	return &clientRateLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		requests:    make(map[string][]time.Time),
	}
}

func (l *clientRateLimiter) Allow(key string) bool {
	if l == nil || l.maxRequests <= 0 || l.window <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.requests[key][:0]
	for _, t := range l.requests[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.maxRequests {
		l.requests[key] = kept
		return false
	}

	l.requests[key] = append(kept, now)
	return true
}
