package mcp

import (
	"fmt"
	"regexp"
	"strings"

	"covered-call-strategist/internal/domain"
)

const (
	defaultMinExpiryDays = 7
	defaultMaxExpiryDays = 45
	maxExpiryDays        = 365
)

// tickerRe matches US equity symbols, including class shares like BRK.B.
var tickerRe = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z])?$`)

type strategyRunInput struct {
	Ticker  string `json:"ticker" jsonschema:"stock ticker (e.g. AAPL, MSFT)"`
	Shares  int    `json:"shares" jsonschema:"shares held, must be a positive multiple of 100"`
	OTMOnly *bool  `json:"otm_only,omitempty" jsonschema:"restrict to out-of-the-money strikes (default true)"`
}

type strategyRunOutput struct {
	Ticker         string `json:"ticker"`
	Shares         int    `json:"shares"`
	Recommendation string `json:"recommendation"`
	ErrorCode      string `json:"error_code,omitempty"`
}

type technicalGetInput struct {
	Ticker string `json:"ticker" jsonschema:"stock ticker (e.g. AAPL, MSFT)"`
}

type technicalGetOutput struct {
	Ticker    string                    `json:"ticker"`
	Technical *domain.TechnicalSnapshot `json:"technical"`
}

type priceGetInput struct {
	Ticker string `json:"ticker" jsonschema:"stock ticker (e.g. AAPL, MSFT)"`
}

type priceGetOutput struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}

type optionsChainInput struct {
	Ticker  string `json:"ticker" jsonschema:"stock ticker (e.g. AAPL, MSFT)"`
	MinDays int    `json:"min_days,omitempty" jsonschema:"minimum days to expiration (default 7)"`
	MaxDays int    `json:"max_days,omitempty" jsonschema:"maximum days to expiration (default 45)"`
}

type optionsChainOutput struct {
	Ticker  string                  `json:"ticker"`
	Calls   []domain.OptionContract `json:"calls"`
	MinDays int                     `json:"min_days"`
	MaxDays int                     `json:"max_days"`
}

func normalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if !tickerRe.MatchString(ticker) {
		return "", fmt.Errorf("invalid ticker: %s", ticker)
	}
	return ticker, nil
}

func normalizeExpiryWindow(minDays, maxDays int) (int, int, error) {
	if minDays <= 0 {
		minDays = defaultMinExpiryDays
	}
	if maxDays <= 0 {
		maxDays = defaultMaxExpiryDays
	}
	if maxDays > maxExpiryDays {
		maxDays = maxExpiryDays
	}
	if minDays > maxDays {
		return 0, 0, fmt.Errorf("min_days (%d) must not exceed max_days (%d)", minDays, maxDays)
	}
	return minDays, maxDays, nil
}
