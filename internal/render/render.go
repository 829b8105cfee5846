// Package render turns engine output into user-facing markdown. Everything
// here is a pure function over domain values.
package render

import (
	"fmt"
	"strings"

	"covered-call-strategist/internal/domain"
)

// Recommendation renders the base covered-call recommendation body.
func Recommendation(
	ticker string,
	stockPrice float64,
	best domain.OptionMetrics,
	shares int,
	be domain.Breakeven,
	mp domain.MaxProfit,
) string {
	contracts := shares / 100

	moneynessLabel := "OTM"
	if best.IsITM {
		moneynessLabel = "ITM"
	} else if abs(best.Moneyness) < 1 {
		moneynessLabel = "ATM"
	}
	direction := "above"
	if best.IsITM {
		direction = "below"
	}

	totalPremium := best.Premium * float64(shares)

	var b strings.Builder
	fmt.Fprintf(&b, "**Recommendation: Sell %d %s $%.2f Calls expiring %s**\n\n",
		contracts, ticker, best.Strike, best.Expiration)
	fmt.Fprintf(&b, "- **Current Stock Price:** $%.2f\n", stockPrice)
	fmt.Fprintf(&b, "- **Strike Price:** $%.2f (%s, %.1f%% %s current price)\n",
		best.Strike, moneynessLabel, abs(best.Moneyness), direction)
	fmt.Fprintf(&b, "- **Premium:** $%.2f per share ($%.2f per contract)\n",
		best.Premium, best.Premium*100)
	fmt.Fprintf(&b, "- **Total Premium Income:** $%s\n", comma(totalPremium))
	fmt.Fprintf(&b, "- **Days to Expiration:** %d\n", best.DaysToExpiry)
	fmt.Fprintf(&b, "- **Annualized Return:** %.1f%%\n", best.AnnualizedReturn)
	fmt.Fprintf(&b, "- **Breakeven Price:** $%.2f (%.1f%% downside protection)\n\n",
		be.Price, be.DownsideProtection)

	b.WriteString("**If Assigned (Max Profit Scenario):**\n")
	fmt.Fprintf(&b, "- Capital Gain: $%s\n", comma(mp.TotalCapitalGain))
	fmt.Fprintf(&b, "- Premium Income: $%s\n", comma(mp.TotalPremium))
	fmt.Fprintf(&b, "- Total Profit: $%s (%.1f%% return)\n\n",
		comma(mp.TotalMaxProfit), mp.MaxReturnPercent)

	b.WriteString("**Why This Option?**\n")
	fmt.Fprintf(&b, "This strike offers the highest annualized premium yield (%.1f%%) among all liquid options in the 7-45 day window. ",
		best.AnnualizedReturn)
	if best.IsITM {
		b.WriteString("Note: this is an ITM option, which has a higher probability of assignment.")
	} else {
		fmt.Fprintf(&b, "If %s stays below $%.2f by %s, you keep the full $%s premium.",
			ticker, best.Strike, best.Expiration, comma(totalPremium))
	}
	return b.String()
}

// ITMWarning returns a warning block when the strike sits below the stock
// price; ok is false when there is nothing to warn about.
func ITMWarning(strike, stockPrice float64) (string, bool) {
	if strike >= stockPrice || stockPrice <= 0 {
		return "", false
	}

	itmAmount := stockPrice - strike
	itmPercent := itmAmount / stockPrice * 100

	var b strings.Builder
	fmt.Fprintf(&b, "**ITM Warning:** This option is $%.2f (%.1f%%) in-the-money.\n\n",
		itmAmount, itmPercent)
	b.WriteString("- **Higher Assignment Risk:** ITM options are more likely to be exercised early, especially near ex-dividend dates.\n")
	fmt.Fprintf(&b, "- **Intrinsic Value:** $%.2f of the premium is intrinsic value (not time value).\n", itmAmount)
	fmt.Fprintf(&b, "- **Early Assignment:** You may be assigned before expiration, resulting in selling your shares at $%.2f.\n\n", strike)
	b.WriteString("Consider this if you're willing to sell your shares at the strike price.")
	return b.String(), true
}

// LayeredSection renders the multi-strike alternative as a markdown table.
func LayeredSection(layered domain.LayeredStrategy, stockPrice float64) string {
	var b strings.Builder
	b.WriteString("---\n\n")
	b.WriteString("**Alternative: Layered Strategy (Recommended for Uncertainty)**\n\n")
	b.WriteString("Given the market uncertainty, consider splitting your contracts across multiple strikes:\n\n")
	b.WriteString("| Layer | Contracts | Strike | Premium/Share | Total Premium | OTM % |\n")
	b.WriteString("|-------|-----------|--------|---------------|---------------|-------|\n")

	for _, layer := range layered.Layers {
		otmPct := (layer.Option.Strike - stockPrice) / stockPrice * 100
		fmt.Fprintf(&b, "| %s | %d | $%.2f | $%.2f | $%s | %.1f%% |\n",
			layer.Name, layer.Contracts, layer.Option.Strike,
			layer.Option.Premium, comma(layer.Premium), otmPct)
	}

	fmt.Fprintf(&b, "\n**Total Premium:** $%s (%d contracts)\n\n",
		comma(layered.TotalPremium), layered.TotalContracts)
	b.WriteString("**Why Layered?**\n")
	b.WriteString("- Hedges against unpredictable bounces or reversals\n")
	b.WriteString("- Conservative layer protects upside if stock surges\n")
	b.WriteString("- Aggressive layer maximizes premium if stock stays flat\n")
	b.WriteString("- Better risk-adjusted returns in uncertain conditions")
	return b.String()
}

// TechnicalSection renders the indicator table and explains why the strike
// was chosen, plus sentiment-specific advisories.
func TechnicalSection(
	snap domain.TechnicalSnapshot,
	selection domain.StrikeSelection,
	stockPrice float64,
	best domain.OptionMetrics,
) string {
	otmPct := (best.Strike - stockPrice) / stockPrice * 100

	var b strings.Builder
	b.WriteString("---\n\n")
	b.WriteString("**Technical Analysis & Strike Selection**\n\n")
	fmt.Fprintf(&b, "**Market Sentiment:** %s | **Assignment Risk:** %s\n\n",
		title(string(selection.Sentiment)), title(string(selection.AssignmentRisk)))
	b.WriteString("| Indicator | Value | Signal |\n")
	b.WriteString("|-----------|-------|--------|\n")
	fmt.Fprintf(&b, "| RSI(14) | %.1f | %s |\n", snap.RSI.Value, title(string(snap.RSI.Signal)))
	fmt.Fprintf(&b, "| MACD | %+.4f | %s |\n", snap.MACD.Histogram, title(string(snap.MACD.Trend)))
	fmt.Fprintf(&b, "| vs SMA20 | $%.2f | %s |\n", snap.MovingAverages.SMA20, aboveBelow(snap.MovingAverages.AboveSMA20))
	fmt.Fprintf(&b, "| vs SMA50 | $%.2f | %s |\n", snap.MovingAverages.SMA50, aboveBelow(snap.MovingAverages.AboveSMA50))
	fmt.Fprintf(&b, "| Volume | %.2fx avg | %s |\n\n", snap.Volume.VolumeRatio, title(string(snap.Volume.Signal)))
	fmt.Fprintf(&b, "**Strategy: %s** (%.1f%% OTM)\n\n", title(string(selection.Strategy)), otmPct)
	fmt.Fprintf(&b, "**Why this strike?** %s", selection.Reason)

	switch {
	case selection.BouncePotential == domain.OversoldBounce:
		b.WriteString("\n\n**Oversold Alert (RSI < 35):** Stock may bounce up!\n")
		b.WriteString("- Historically, oversold conditions often precede reversals\n")
		b.WriteString("- Consider the layered strategy above to hedge bounce risk\n")
		b.WriteString("- Or wait for confirmation before selling calls")
	case selection.BouncePotential == domain.OverboughtPull:
		b.WriteString("\n\n**Overbought Note (RSI > 70):** Pullback possible.\n")
		b.WriteString("- Stock may consolidate or pull back from overbought levels\n")
		b.WriteString("- ATM strikes are appropriate as upside may be limited")
	case selection.AssignmentRisk == domain.RiskHigh:
		b.WriteString("\n\n**Caution:** Strong bullish momentum detected. Consider:\n")
		b.WriteString("- Waiting for a pullback before selling calls\n")
		b.WriteString("- Using an even higher strike if available\n")
		b.WriteString("- Being prepared for early assignment")
	case (selection.AssignmentRisk == domain.RiskLow || selection.AssignmentRisk == domain.RiskVeryLow) &&
		selection.Sentiment == domain.SentimentBearish:
		b.WriteString("\n\n**Note:** Bearish signals detected. While assignment risk is low,\n")
		b.WriteString("the stock may decline, affecting your unrealized gains on shares.")
	}
	return b.String()
}

// ErrorMessage renders a user-facing explanation for a typed failure.
func ErrorMessage(code domain.ErrorCode, details string) string {
	switch code {
	case domain.ErrInvalidTicker:
		return fmt.Sprintf("I couldn't find the stock ticker you provided. %s Please check the symbol and try again.", details)
	case domain.ErrNoOptions:
		return fmt.Sprintf("No options are available for this stock. %s", details)
	case domain.ErrNoLiquidOptions:
		return fmt.Sprintf("No liquid options found in the 7-45 day window. %s Try a more actively traded stock.", details)
	case domain.ErrInvalidShares:
		return fmt.Sprintf("Invalid share count. %s Shares must be a positive multiple of 100 for covered calls.", details)
	case domain.ErrAPIError:
		return fmt.Sprintf("There was an error fetching market data. %s Please try again in a moment.", details)
	case domain.ErrCalculationError:
		return fmt.Sprintf("There was an error calculating the recommendation. %s", details)
	default:
		return fmt.Sprintf("An unexpected error occurred. %s", details)
	}
}

// title converts a snake_case enum value into Title Case for display.
func title(s string) string {
	parts := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func aboveBelow(above bool) string {
	if above {
		return "Above"
	}
	return "Below"
}

// comma formats a dollar amount with thousands separators, two decimals.
func comma(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
