package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"covered-call-strategist/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches quotes, daily history, and call option chains from the
// public Yahoo Finance endpoints. It implements the strategy service's
// TickerValidator, PriceSource, ChainSource, and HistorySource.
type YahooClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	now     func() time.Time
}

func NewYahooClient(tracer trace.Tracer) *YahooClient {
	return &YahooClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
		tracer:  tracer,
		now:     time.Now,
	}
}

// NewYahooClientWithBaseURL points the client at an alternate host, used by
// tests and by proxy deployments.
func NewYahooClientWithBaseURL(tracer trace.Tracer, baseURL string) *YahooClient {
	c := NewYahooClient(tracer)
	c.baseURL = baseURL
	return c
}

// yahooChart is the v8 chart API response, shared by price and history calls.
// Quote arrays use interface{} because Yahoo emits null for holiday sessions.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ShortName          string  `json:"shortName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooOptions is the v7 options API response.
type yahooOptions struct {
	OptionChain struct {
		Result []struct {
			Quote struct {
				Symbol             string  `json:"symbol"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64             `json:"expirationDate"`
				Calls          []yahooOptionLeaf `json:"calls"`
			} `json:"options"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

type yahooOptionLeaf struct {
	Strike            float64 `json:"strike"`
	Expiration        int64   `json:"expiration"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	OpenInterest      int     `json:"openInterest"`
	Volume            int     `json:"volume"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

func (c *YahooClient) ValidateTicker(ctx context.Context, ticker string) (*domain.TickerValidation, error) {
	ctx, span := c.tracer.Start(ctx, "yahoo.validate-ticker")
	defer span.End()

	var chain yahooOptions
	status, err := c.getJSON(ctx, fmt.Sprintf("/v7/finance/options/%s", url.PathEscape(ticker)), &chain)
	if status == http.StatusNotFound {
		return &domain.TickerValidation{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}
	if chain.OptionChain.Error != nil || len(chain.OptionChain.Result) == 0 {
		return &domain.TickerValidation{Valid: false}, nil
	}

	result := chain.OptionChain.Result[0]
	return &domain.TickerValidation{
		Valid:      result.Quote.Symbol != "",
		HasOptions: len(result.ExpirationDates) > 0,
		Name:       result.Quote.ShortName,
	}, nil
}

func (c *YahooClient) GetStockPrice(ctx context.Context, ticker string) (float64, error) {
	ctx, span := c.tracer.Start(ctx, "yahoo.stock-price")
	defer span.End()

	chart, err := c.fetchChart(ctx, ticker, "1d", "1d")
	if err != nil {
		return 0, err
	}
	result := chart.Chart.Result[0]
	if result.Meta.RegularMarketPrice > 0 {
		return result.Meta.RegularMarketPrice, nil
	}

	// Fall back to the last non-null close when the meta block is stale.
	for _, q := range result.Indicators.Quote {
		for i := len(q.Close) - 1; i >= 0; i-- {
			if v := toFloat(q.Close[i]); v > 0 {
				return v, nil
			}
		}
	}
	return 0, fmt.Errorf("yahoo: no price data for %s", ticker)
}

func (c *YahooClient) GetPriceHistory(ctx context.Context, ticker string, lookbackDays int) ([]domain.PriceBar, error) {
	ctx, span := c.tracer.Start(ctx, "yahoo.price-history")
	defer span.End()

	chart, err := c.fetchChart(ctx, ticker, "1d", rangeForDays(lookbackDays))
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no history for %s", ticker)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]domain.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		closePrice := toFloat(quote.Close[i])
		if closePrice == 0 {
			continue // null bar, market holiday
		}
		var volume float64
		if i < len(quote.Volume) {
			volume = toFloat(quote.Volume[i])
		}
		bars = append(bars, domain.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Close:  closePrice,
			Volume: volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	if len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
	}
	return bars, nil
}

// GetOptionsChain returns every call contract expiring inside the window.
// One request lists the expirations, then one request per expiration in
// range fetches its calls.
func (c *YahooClient) GetOptionsChain(ctx context.Context, ticker string, minDays, maxDays int) ([]domain.OptionContract, error) {
	ctx, span := c.tracer.Start(ctx, "yahoo.options-chain")
	defer span.End()

	var index yahooOptions
	if _, err := c.getJSON(ctx, fmt.Sprintf("/v7/finance/options/%s", url.PathEscape(ticker)), &index); err != nil {
		return nil, err
	}
	if index.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", index.OptionChain.Error.Description)
	}
	if len(index.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no option chain for %s", ticker)
	}

	now := c.now().UTC()
	var contracts []domain.OptionContract
	for _, expiry := range index.OptionChain.Result[0].ExpirationDates {
		dte := daysUntil(now, expiry)
		if dte < minDays || dte > maxDays {
			continue
		}

		var page yahooOptions
		path := fmt.Sprintf("/v7/finance/options/%s?date=%d", url.PathEscape(ticker), expiry)
		if _, err := c.getJSON(ctx, path, &page); err != nil {
			return nil, err
		}
		if len(page.OptionChain.Result) == 0 {
			continue
		}
		for _, block := range page.OptionChain.Result[0].Options {
			for _, call := range block.Calls {
				contracts = append(contracts, domain.OptionContract{
					Strike:            call.Strike,
					Expiration:        time.Unix(call.Expiration, 0).UTC().Format("2006-01-02"),
					DaysToExpiry:      daysUntil(now, call.Expiration),
					Bid:               call.Bid,
					Ask:               call.Ask,
					LastPrice:         call.LastPrice,
					OpenInterest:      call.OpenInterest,
					Volume:            call.Volume,
					ImpliedVolatility: call.ImpliedVolatility,
					FetchedAt:         now,
				})
			}
		}
	}
	return contracts, nil
}

func (c *YahooClient) fetchChart(ctx context.Context, ticker, interval, rng string) (*yahooChart, error) {
	path := fmt.Sprintf("/v8/finance/chart/%s?interval=%s&range=%s", url.PathEscape(ticker), interval, rng)

	var chart yahooChart
	if _, err := c.getJSON(ctx, path, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", ticker)
	}
	return &chart, nil
}

func (c *YahooClient) getJSON(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("yahoo: status 404")
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("yahoo decode: %w", err)
	}
	return resp.StatusCode, nil
}

func rangeForDays(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func daysUntil(now time.Time, unixTS int64) int {
	return int(time.Unix(unixTS, 0).UTC().Sub(now).Hours() / 24)
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
