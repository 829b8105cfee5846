package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"covered-call-strategist/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type Strategist interface {
	Run(ctx context.Context, ticker string, shares int, otmOnly bool) domain.Recommendation
}

type ConversationStore interface {
	AppendMessage(ctx context.Context, userID int64, role, content string) error
	ClearHistory(ctx context.Context, userID int64) error
	RecentMessages(ctx context.Context, userID int64, limit int) ([]domain.ConversationMessage, error)
}

// AccessChecker gates bot usage. An empty allowlist (Count == 0) means the
// gate is open.
type AccessChecker interface {
	IsAllowed(ctx context.Context, telegramID int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

const welcomeMessage = "*Welcome to the Covered Call Strategist!*\n\n" +
	"I help you find the optimal covered call options strategy to maximize premium income.\n\n" +
	"*How to use:*\n" +
	"Just tell me your stock ticker and number of shares.\n\n" +
	"*Examples:*\n" +
	"- `AAPL 500 shares`\n" +
	"- `I have 200 shares of MSFT`\n" +
	"- `NVDA 1000`\n\n" +
	"*Commands:*\n" +
	"- /help - Show this help message\n" +
	"- /history - Show your recent requests\n" +
	"- /clear - Clear conversation history\n\n" +
	"*Note:* Shares must be a multiple of 100 (each option contract = 100 shares)."

const unparsedMessage = "I couldn't understand your request.\n\n" +
	"*Please try one of these formats:*\n" +
	"- `AAPL 500 shares`\n" +
	"- `I have 200 shares of MSFT`\n" +
	"- `NVDA 1000`\n\n" +
	"Remember: shares must be a multiple of 100."

func StartTelegramBot(token string, strategist Strategist, conversations ConversationStore, access AccessChecker, limiter *RateLimiter) *tele.Bot {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/start", func(c tele.Context) error {
		return c.Send(welcomeMessage, tele.ModeMarkdown)
	})

	b.Handle("/help", func(c tele.Context) error {
		return c.Send(welcomeMessage, tele.ModeMarkdown)
	})

	b.Handle("/history", func(c tele.Context) error {
		return handleHistoryRequest(c, conversations)
	})

	b.Handle("/clear", func(c tele.Context) error {
		if conversations == nil {
			return c.Send("Conversation history is not enabled.")
		}
		if err := conversations.ClearHistory(context.Background(), c.Sender().ID); err != nil {
			log.Printf("clear history for user %d: %v", c.Sender().ID, err)
			return c.Send("Could not clear history right now. Try again later.")
		}
		return c.Send("Conversation history cleared. Send a new stock analysis request!")
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		return handleStockRequest(c, strategist, conversations, access, limiter)
	})

	log.Println("Telegram bot started")
	go b.Start()
	return b
}

func handleStockRequest(c tele.Context, strategist Strategist, conversations ConversationStore, access AccessChecker, limiter *RateLimiter) error {
	ctx := context.Background()
	userID := c.Sender().ID
	text := c.Text()

	allowed, err := checkAccess(ctx, access, userID)
	if err != nil {
		log.Printf("allowlist check for user %d: %v", userID, err)
		return c.Send("Something went wrong. Please try again later.")
	}
	if !allowed {
		log.Printf("unauthorized access attempt from user %d", userID)
		return c.Send("Sorry, you are not authorized to use this bot.\n\nPlease contact the administrator to request access.")
	}

	if ok, wait := limiter.Allow(userID); !ok {
		log.Printf("rate limit exceeded for user %d", userID)
		return c.Send(fmt.Sprintf(
			"Rate limit exceeded. Please wait %d seconds before trying again.\n\nLimit: %d requests per minute.",
			int(wait.Seconds())+1, limiter.maxRequests,
		))
	}

	recordMessage(ctx, conversations, userID, "user", text)
	_ = c.Notify(tele.Typing)

	ticker, shares, ok := ParseStockRequest(text)
	if !ok {
		recordMessage(ctx, conversations, userID, "assistant", unparsedMessage)
		return c.Send(unparsedMessage, tele.ModeMarkdown)
	}

	rec := strategist.Run(ctx, ticker, shares, true)
	recordMessage(ctx, conversations, userID, "assistant", rec.Text)

	for _, part := range SplitMessage(rec.Text, telegramMessageLimit) {
		if err := c.Send(part, tele.ModeMarkdown); err != nil {
			return err
		}
	}
	return nil
}

// historyLimit caps how many stored messages /history replays.
const historyLimit = 10

func handleHistoryRequest(c tele.Context, conversations ConversationStore) error {
	if conversations == nil {
		return c.Send("Conversation history is not enabled.")
	}
	userID := c.Sender().ID
	reply, err := buildHistoryReply(context.Background(), conversations, userID)
	if err != nil {
		log.Printf("load history for user %d: %v", userID, err)
		return c.Send("Could not load history right now. Try again later.")
	}
	for _, part := range SplitMessage(reply, telegramMessageLimit) {
		if err := c.Send(part, tele.ModeMarkdown); err != nil {
			return err
		}
	}
	return nil
}

func buildHistoryReply(ctx context.Context, conversations ConversationStore, userID int64) (string, error) {
	messages, err := conversations.RecentMessages(ctx, userID, historyLimit)
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "No conversation history yet. Send a stock analysis request to get started!", nil
	}
	return formatHistory(messages), nil
}

func formatHistory(messages []domain.ConversationMessage) string {
	var sb strings.Builder
	sb.WriteString("*Recent conversation:*\n")
	for _, m := range messages {
		label := "You"
		if m.Role == "assistant" {
			label = "Bot"
		}
		fmt.Fprintf(&sb, "\n_%s, %s:_\n%s\n", label, m.CreatedAt.Format("Jan 2 15:04"), m.Content)
	}
	return sb.String()
}

// checkAccess treats a missing or empty allowlist as open access.
func checkAccess(ctx context.Context, access AccessChecker, userID int64) (bool, error) {
	if access == nil {
		return true, nil
	}
	n, err := access.Count(ctx)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return true, nil
	}
	return access.IsAllowed(ctx, userID)
}

func recordMessage(ctx context.Context, conversations ConversationStore, userID int64, role, content string) {
	if conversations == nil {
		return
	}
	if err := conversations.AppendMessage(ctx, userID, role, content); err != nil {
		log.Printf("record %s message for user %d: %v", role, userID, err)
	}
}
