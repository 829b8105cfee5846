package technical

import (
	"errors"
	"math"
	"strings"

	"covered-call-strategist/internal/domain"
)

const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	smaShortPeriod   = 20
	smaLongPeriod    = 50
	volumeWindow     = 20
	volumeHighRatio  = 1.5
	volumeLowRatio   = 0.5
	priceChangeLag   = 5

	// minSessions is a hard floor: fewer daily bars than this and the
	// snapshot is not computed at all.
	minSessions = 50
)

// ErrInsufficientHistory means the price series is too short to compute a
// trustworthy snapshot. The orchestrator treats this as non-fatal and
// degrades to yield-only selection.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Engine rolls a daily close/volume series into a TechnicalSnapshot.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Analyze computes RSI, MACD, moving averages, and the volume signal, then
// aggregates them into sentiment and covered-call assignment risk.
func (e *Engine) Analyze(ticker string, bars []domain.PriceBar) (*domain.TechnicalSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if len(bars) < minSessions {
		return nil, ErrInsufficientHistory
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	rsi := rsiValue(closes, rsiPeriod)
	macd := macdReading(closes)
	mas := movingAverages(closes)
	vol := volumeReading(closes, volumes)

	snapshot := &domain.TechnicalSnapshot{
		Ticker:         ticker,
		CurrentPrice:   mas.CurrentPrice,
		MACD:           macd,
		MovingAverages: mas,
		Volume:         vol,
	}
	classify(snapshot, rsi)
	return snapshot, nil
}

// rsiValue is the simple-rolling-mean variant of RSI: plain means of gains
// and losses over the last `period` deltas, not Wilder's exponential
// smoothing. Returns 50 when the ratio is undefined.
func rsiValue(closes []float64, period int) float64 {
	if len(closes) <= period {
		return 50
	}

	var gainSum, lossSum float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	rsi := 100 - 100/(1+rs)
	if math.IsNaN(rsi) {
		return 50
	}
	return rsi
}

func macdReading(closes []float64) domain.MACDReading {
	fastEMA := emaSeries(closes, macdFastPeriod)
	slowEMA := emaSeries(closes, macdSlowPeriod)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := emaSeries(macdLine, macdSignalPeriod)

	last := len(closes) - 1
	macd := macdLine[last]
	signal := signalLine[last]
	hist := macd - signal
	prevHist := 0.0
	if last > 0 {
		prevHist = macdLine[last-1] - signalLine[last-1]
	}

	trend := domain.TrendNeutral
	if macd > signal && hist > prevHist {
		trend = domain.TrendBullish
	} else if macd < signal && hist < prevHist {
		trend = domain.TrendBearish
	}

	return domain.MACDReading{
		MACD:      round(macd, 4),
		Signal:    round(signal, 4),
		Histogram: round(hist, 4),
		Trend:     trend,
	}
}

func movingAverages(closes []float64) domain.MovingAverages {
	current := closes[len(closes)-1]
	sma20 := sma(closes, smaShortPeriod)
	sma50 := sma(closes, smaLongPeriod)

	above20 := current > sma20
	above50 := current > sma50
	shortAboveLong := sma20 > sma50

	var trend domain.Trend
	switch {
	case above20 && above50 && shortAboveLong:
		trend = domain.TrendStrongBullish
	case above20 && above50:
		trend = domain.TrendBullish
	case !above20 && !above50 && !shortAboveLong:
		trend = domain.TrendStrongBearish
	case !above20 && !above50:
		trend = domain.TrendBearish
	default:
		trend = domain.TrendNeutral
	}

	return domain.MovingAverages{
		CurrentPrice: round(current, 2),
		SMA20:        round(sma20, 2),
		SMA50:        round(sma50, 2),
		AboveSMA20:   above20,
		AboveSMA50:   above50,
		Trend:        trend,
	}
}

func volumeReading(closes, volumes []float64) domain.VolumeReading {
	current := volumes[len(volumes)-1]
	avg20 := sma(volumes, volumeWindow)

	ratio := 1.0
	if avg20 > 0 {
		ratio = current / avg20
	}

	priceChange := closes[len(closes)-1] - closes[len(closes)-priceChangeLag]

	signal := domain.VolumeNormal
	switch {
	case ratio > volumeHighRatio && priceChange > 0:
		signal = domain.VolumeBullish
	case ratio > volumeHighRatio && priceChange < 0:
		signal = domain.VolumeBearish
	case ratio < volumeLowRatio:
		signal = domain.VolumeLow
	}

	return domain.VolumeReading{
		CurrentVolume: int64(current),
		AvgVolume20:   int64(avg20),
		VolumeRatio:   round(ratio, 2),
		Signal:        signal,
	}
}

// classify runs the fixed-order scoring rules. The order matters: RSI first
// (it also sets bounce potential), then MACD, moving averages, volume.
func classify(s *domain.TechnicalSnapshot, rsi float64) {
	var bullish, bearish float64
	bounce := domain.BounceNone

	var rsiSignal domain.RSISignal
	switch {
	case rsi > 70:
		rsiSignal = domain.RSIOverbought
		bearish += 0.5
		bounce = domain.OverboughtPull
	case rsi < 35:
		rsiSignal = domain.RSIOversold
		bullish += 0.5
		bounce = domain.OversoldBounce
	case rsi > 65:
		rsiSignal = domain.RSINearOverbought
		bearish += 0.3
	case rsi > 55:
		rsiSignal = domain.RSIBullish
		bullish += 1
	case rsi < 45:
		rsiSignal = domain.RSIBearish
		bearish += 1
	default:
		rsiSignal = domain.RSINeutral
	}

	switch s.MACD.Trend {
	case domain.TrendBullish:
		bullish += 1
	case domain.TrendBearish:
		bearish += 1
	}

	switch s.MovingAverages.Trend {
	case domain.TrendStrongBullish, domain.TrendBullish:
		bullish += 1
	case domain.TrendStrongBearish, domain.TrendBearish:
		bearish += 1
	}

	switch s.Volume.Signal {
	case domain.VolumeBullish:
		bullish += 1
	case domain.VolumeBearish:
		bearish += 1
	}

	ratio := 0.5
	if total := bullish + bearish; total > 0 {
		ratio = bullish / total
	}

	s.RSI = domain.RSIReading{Value: round(rsi, 1), Signal: rsiSignal}
	s.BullishSignals = bullish
	s.BearishSignals = bearish
	s.BouncePotential = bounce

	switch {
	case bounce == domain.OversoldBounce && ratio < 0.4:
		s.AssignmentRisk = domain.RiskModerate
		s.Sentiment = domain.SentimentOversoldBounceRisk
		s.Recommendation = "Stock is oversold - potential bounce. Consider layered strikes or wait for confirmation."
	case bounce == domain.OversoldBounce:
		s.AssignmentRisk = domain.RiskModerate
		s.Sentiment = domain.SentimentOversoldWithBullish
		s.Recommendation = "Oversold with bullish signals - high bounce probability. Use defensive strikes."
	case bounce == domain.OverboughtPull && ratio > 0.6:
		s.AssignmentRisk = domain.RiskModerate
		s.Sentiment = domain.SentimentOverboughtPullbackRisk
		s.Recommendation = "Stock is overbought - potential pullback. ATM strikes may be safe."
	case bounce == domain.OverboughtPull:
		s.AssignmentRisk = domain.RiskLow
		s.Sentiment = domain.SentimentOverboughtWithBearish
		s.Recommendation = "Overbought with bearish signals - pullback likely. Good for covered calls."
	case ratio >= 0.7:
		s.AssignmentRisk = domain.RiskHigh
		s.Sentiment = domain.SentimentBullish
		s.Recommendation = "Consider higher strike or wait for pullback"
	case ratio >= 0.5:
		s.AssignmentRisk = domain.RiskModerate
		s.Sentiment = domain.SentimentSlightlyBullish
		s.Recommendation = "ATM or slightly OTM strike appropriate"
	case ratio >= 0.3:
		s.AssignmentRisk = domain.RiskLow
		s.Sentiment = domain.SentimentNeutral
		s.Recommendation = "Good environment for covered calls"
	default:
		s.AssignmentRisk = domain.RiskVeryLow
		s.Sentiment = domain.SentimentBearish
		s.Recommendation = "Caution: stock may decline, reducing call premium value"
	}
}

func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func sma(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
