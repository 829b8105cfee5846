package bot

import (
	"regexp"
	"strconv"
	"strings"
)

// Request patterns, tried in order. The shares-first form goes first so that
// "I have 500 shares of AAPL" binds AAPL as the ticker rather than a filler
// word preceding the number.
var (
	sharesOfTickerRe = regexp.MustCompile(`(\d+)\s*SHARES?\s+(?:OF\s+)?([A-Z]{1,5})\b`)
	tickerSharesRe   = regexp.MustCompile(`\b([A-Z]{1,5})\s+(\d+)\s*(?:SHARES?)?\b`)
	sharesTickerRe   = regexp.MustCompile(`\b(\d+)\s+([A-Z]{1,5})\b`)
)

// ParseStockRequest extracts (ticker, shares) from a free-text message.
// Supported forms: "AAPL 500 shares", "500 shares of AAPL", "AAPL 500",
// "I have 500 shares of AAPL".
func ParseStockRequest(text string) (string, int, bool) {
	text = strings.ToUpper(strings.TrimSpace(text))

	if m := sharesOfTickerRe.FindStringSubmatch(text); m != nil {
		return twoGroups(m[2], m[1])
	}
	if m := tickerSharesRe.FindStringSubmatch(text); m != nil {
		return twoGroups(m[1], m[2])
	}
	if m := sharesTickerRe.FindStringSubmatch(text); m != nil {
		return twoGroups(m[2], m[1])
	}
	return "", 0, false
}

func twoGroups(ticker, shares string) (string, int, bool) {
	n, err := strconv.Atoi(shares)
	if err != nil {
		return "", 0, false
	}
	return ticker, n, true
}
