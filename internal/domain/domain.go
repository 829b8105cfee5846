package domain

import "time"

// OptionContract is one call option as returned by the chain source.
// (strike, expiration) is unique within a chain.
type OptionContract struct {
	Strike            float64   `json:"strike"`
	Expiration        string    `json:"expiration"`
	DaysToExpiry      int       `json:"days_to_expiry"`
	Bid               float64   `json:"bid"`
	Ask               float64   `json:"ask"`
	LastPrice         float64   `json:"last_price"`
	OpenInterest      int       `json:"open_interest"`
	Volume            int       `json:"volume"`
	ImpliedVolatility float64   `json:"implied_volatility"`
	FetchedAt         time.Time `json:"-"`
}

// OptionMetrics extends a contract with derived yield figures.
// AnnualizedReturn is only meaningful when DaysToExpiry > 0 and Strike > 0.
type OptionMetrics struct {
	Strike            float64 `json:"strike"`
	Expiration        string  `json:"expiration"`
	Premium           float64 `json:"premium"`
	PremiumYield      float64 `json:"premium_yield"`
	AnnualizedReturn  float64 `json:"annualized_return"`
	IsITM             bool    `json:"is_itm"`
	Moneyness         float64 `json:"moneyness"`
	DaysToExpiry      int     `json:"days_to_expiry"`
	OpenInterest      int     `json:"open_interest"`
	ImpliedVolatility float64 `json:"implied_volatility"`
}

type Trend string

const (
	TrendStrongBullish Trend = "strong_bullish"
	TrendBullish       Trend = "bullish"
	TrendNeutral       Trend = "neutral"
	TrendBearish       Trend = "bearish"
	TrendStrongBearish Trend = "strong_bearish"
)

type VolumeSignal string

const (
	VolumeBullish VolumeSignal = "bullish_volume"
	VolumeBearish VolumeSignal = "bearish_volume"
	VolumeLow     VolumeSignal = "low_volume"
	VolumeNormal  VolumeSignal = "normal"
)

type RSISignal string

const (
	RSIOverbought     RSISignal = "overbought"
	RSIOversold       RSISignal = "oversold"
	RSINearOverbought RSISignal = "near_overbought"
	RSIBullish        RSISignal = "bullish"
	RSIBearish        RSISignal = "bearish"
	RSINeutral        RSISignal = "neutral"
)

type Sentiment string

const (
	SentimentOversoldBounceRisk     Sentiment = "oversold_bounce_risk"
	SentimentOversoldWithBullish    Sentiment = "oversold_with_bullish"
	SentimentOverboughtPullbackRisk Sentiment = "overbought_pullback_risk"
	SentimentOverboughtWithBearish  Sentiment = "overbought_with_bearish"
	SentimentBullish                Sentiment = "bullish"
	SentimentSlightlyBullish        Sentiment = "slightly_bullish"
	SentimentNeutral                Sentiment = "neutral"
	SentimentBearish                Sentiment = "bearish"
	SentimentUnknown                Sentiment = "unknown"
)

type AssignmentRisk string

const (
	RiskHigh     AssignmentRisk = "high"
	RiskModerate AssignmentRisk = "moderate"
	RiskLow      AssignmentRisk = "low"
	RiskVeryLow  AssignmentRisk = "very_low"
	RiskUnknown  AssignmentRisk = "unknown"
)

type BouncePotential string

const (
	BounceNone     BouncePotential = ""
	OversoldBounce BouncePotential = "oversold_bounce"
	OverboughtPull BouncePotential = "overbought_pullback"
)

type RSIReading struct {
	Value  float64   `json:"value"`
	Signal RSISignal `json:"signal"`
}

type MACDReading struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	Trend     Trend   `json:"trend"`
}

type MovingAverages struct {
	CurrentPrice float64 `json:"current_price"`
	SMA20        float64 `json:"sma20"`
	SMA50        float64 `json:"sma50"`
	AboveSMA20   bool    `json:"above_sma20"`
	AboveSMA50   bool    `json:"above_sma50"`
	Trend        Trend   `json:"trend"`
}

type VolumeReading struct {
	CurrentVolume int64        `json:"current_volume"`
	AvgVolume20   int64        `json:"avg_volume_20"`
	VolumeRatio   float64      `json:"volume_ratio"`
	Signal        VolumeSignal `json:"signal"`
}

// TechnicalSnapshot is the rolled-up technical view that drives strike
// selection. BullishSignals/BearishSignals are weighted scores, not counts.
type TechnicalSnapshot struct {
	Ticker          string          `json:"ticker"`
	CurrentPrice    float64         `json:"current_price"`
	RSI             RSIReading      `json:"rsi"`
	MACD            MACDReading     `json:"macd"`
	MovingAverages  MovingAverages  `json:"moving_averages"`
	Volume          VolumeReading   `json:"volume"`
	Sentiment       Sentiment       `json:"sentiment"`
	AssignmentRisk  AssignmentRisk  `json:"assignment_risk"`
	BouncePotential BouncePotential `json:"bounce_potential,omitempty"`
	BullishSignals  float64         `json:"bullish_signals"`
	BearishSignals  float64         `json:"bearish_signals"`
	Recommendation  string          `json:"recommendation"`
}

type StrategyLabel string

const (
	StrategyDefensive  StrategyLabel = "defensive"
	StrategyBalanced   StrategyLabel = "balanced"
	StrategyAggressive StrategyLabel = "aggressive"
	StrategyStandard   StrategyLabel = "standard"
)

// StrikeSelection is the outcome of mapping a technical snapshot onto the
// filtered chain. Option is nil when no candidate survived.
type StrikeSelection struct {
	Option          *OptionMetrics  `json:"option"`
	Strategy        StrategyLabel   `json:"strategy"`
	Reason          string          `json:"reason"`
	AssignmentRisk  AssignmentRisk  `json:"assignment_risk"`
	Sentiment       Sentiment       `json:"sentiment"`
	BouncePotential BouncePotential `json:"bounce_potential,omitempty"`
	UseLayered      bool            `json:"use_layered"`
}

type Layer struct {
	Name      string        `json:"name"`
	Contracts int           `json:"contracts"`
	Option    OptionMetrics `json:"option"`
	Premium   float64       `json:"premium"`
}

type LayeredStrategy struct {
	Layers         []Layer `json:"layers"`
	TotalContracts int     `json:"total_contracts"`
	TotalPremium   float64 `json:"total_premium"`
}

type Breakeven struct {
	Price              float64 `json:"breakeven_price"`
	DownsideProtection float64 `json:"downside_protection_percent"`
}

type MaxProfit struct {
	Contracts           int     `json:"contracts"`
	Shares              int     `json:"shares"`
	CapitalGainPerShare float64 `json:"capital_gain_per_share"`
	TotalCapitalGain    float64 `json:"total_capital_gain"`
	PremiumPerShare     float64 `json:"premium_per_share"`
	TotalPremium        float64 `json:"total_premium"`
	TotalMaxProfit      float64 `json:"total_max_profit"`
	MaxReturnPercent    float64 `json:"max_return_percent"`
}

type ErrorCode string

const (
	ErrInvalidShares    ErrorCode = "invalid_shares"
	ErrInvalidTicker    ErrorCode = "invalid_ticker"
	ErrNoOptions        ErrorCode = "no_options"
	ErrNoLiquidOptions  ErrorCode = "no_liquid_options"
	ErrAPIError         ErrorCode = "api_error"
	ErrCalculationError ErrorCode = "calculation_error"
)

// Recommendation is the orchestrator's output: rendered text, plus an error
// code when the pipeline short-circuited. Text is user-facing either way.
type Recommendation struct {
	Text      string    `json:"text"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
}

func (r Recommendation) Failed() bool { return r.ErrorCode != "" }

// PriceBar is one daily price/volume observation from the history source.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

type TickerValidation struct {
	Valid      bool   `json:"valid"`
	HasOptions bool   `json:"has_options"`
	Name       string `json:"name,omitempty"`
}

type ConversationMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}
