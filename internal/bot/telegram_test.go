package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"covered-call-strategist/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	if b := StartTelegramBot("", nil, nil, nil, nil); b != nil {
		t.Fatal("expected nil bot without token")
	}
}

func TestParseStockRequest(t *testing.T) {
	cases := []struct {
		in     string
		ticker string
		shares int
		ok     bool
	}{
		{"AAPL 500 shares", "AAPL", 500, true},
		{"aapl 500", "AAPL", 500, true},
		{"500 shares of AAPL", "AAPL", 500, true},
		{"I have 200 shares of MSFT", "MSFT", 200, true},
		{"NVDA 1000", "NVDA", 1000, true},
		{"500 AAPL", "AAPL", 500, true},
		{"what should I do", "", 0, false},
		{"", "", 0, false},
	}

	for _, tc := range cases {
		ticker, shares, ok := ParseStockRequest(tc.in)
		if ok != tc.ok || ticker != tc.ticker || shares != tc.shares {
			t.Fatalf("ParseStockRequest(%q) = (%s, %d, %v), want (%s, %d, %v)",
				tc.in, ticker, shares, ok, tc.ticker, tc.shares, tc.ok)
		}
	}
}

func TestCheckAccessOpenWithoutAllowlist(t *testing.T) {
	allowed, err := checkAccess(context.Background(), nil, 42)
	if err != nil || !allowed {
		t.Fatalf("expected open access without checker, got (%v, %v)", allowed, err)
	}

	allowed, err = checkAccess(context.Background(), &stubAccess{count: 0}, 42)
	if err != nil || !allowed {
		t.Fatalf("expected open access with empty allowlist, got (%v, %v)", allowed, err)
	}
}

func TestCheckAccessEnforcesAllowlist(t *testing.T) {
	access := &stubAccess{count: 2, allowed: map[int64]bool{42: true}}

	allowed, err := checkAccess(context.Background(), access, 42)
	if err != nil || !allowed {
		t.Fatalf("expected user 42 allowed, got (%v, %v)", allowed, err)
	}

	allowed, err = checkAccess(context.Background(), access, 99)
	if err != nil || allowed {
		t.Fatalf("expected user 99 denied, got (%v, %v)", allowed, err)
	}
}

func TestCheckAccessPropagatesError(t *testing.T) {
	access := &stubAccess{err: errors.New("db down")}

	if _, err := checkAccess(context.Background(), access, 42); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildHistoryReply(t *testing.T) {
	store := &stubConversations{
		messages: []domain.ConversationMessage{
			{Role: "user", Content: "AAPL 500 shares", CreatedAt: time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)},
			{Role: "assistant", Content: "Recommended strike: $190", CreatedAt: time.Date(2026, 8, 30, 14, 5, 3, 0, time.UTC)},
		},
	}

	reply, err := buildHistoryReply(context.Background(), store, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastUserID != 42 || store.lastLimit != historyLimit {
		t.Fatalf("unexpected query: userID=%d limit=%d", store.lastUserID, store.lastLimit)
	}
	if !strings.Contains(reply, "AAPL 500 shares") || !strings.Contains(reply, "Recommended strike: $190") {
		t.Fatalf("reply missing message content: %q", reply)
	}
	if !strings.Contains(reply, "You, Aug 30 14:05") || !strings.Contains(reply, "Bot, Aug 30 14:05") {
		t.Fatalf("reply missing role labels: %q", reply)
	}
}

func TestBuildHistoryReplyEmpty(t *testing.T) {
	reply, err := buildHistoryReply(context.Background(), &stubConversations{}, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "No conversation history yet") {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestBuildHistoryReplyPropagatesError(t *testing.T) {
	store := &stubConversations{err: errors.New("db down")}
	if _, err := buildHistoryReply(context.Background(), store, 42); err == nil {
		t.Fatal("expected error")
	}
}

type stubConversations struct {
	messages   []domain.ConversationMessage
	err        error
	lastUserID int64
	lastLimit  int
}

func (s *stubConversations) AppendMessage(ctx context.Context, userID int64, role, content string) error {
	return s.err
}

func (s *stubConversations) ClearHistory(ctx context.Context, userID int64) error {
	return s.err
}

func (s *stubConversations) RecentMessages(ctx context.Context, userID int64, limit int) ([]domain.ConversationMessage, error) {
	s.lastUserID = userID
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.messages, nil
}

type stubAccess struct {
	count   int64
	allowed map[int64]bool
	err     error
}

func (s *stubAccess) IsAllowed(ctx context.Context, telegramID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[telegramID], nil
}

func (s *stubAccess) Count(ctx context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.count, nil
}
