package handler

import (
	"net/http"
	"strconv"
	"strings"

	"covered-call-strategist/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Health godoc
// @Summary      Health check
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStrategy godoc
// @Summary      Get a covered call recommendation
// @Description  Runs the full strategy pipeline for a ticker and share count
// @Tags         strategy
// @Produce      json
// @Param        ticker    path   string  true   "Stock ticker (e.g., AAPL)"
// @Param        shares    query  int     true   "Shares held, multiple of 100"
// @Param        otm_only  query  bool    false  "Restrict to out-of-the-money strikes"  default(true)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/strategy/{ticker} [get]
func (h *Handler) GetStrategy(c *gin.Context) {
	if h.strategyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "strategy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-strategy")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	span.SetAttributes(attribute.String("ticker", ticker))

	shares, err := strconv.Atoi(strings.TrimSpace(c.Query("shares")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shares must be an integer multiple of 100"})
		return
	}
	span.SetAttributes(attribute.Int("shares", shares))

	otmOnly := true
	if raw := strings.TrimSpace(c.Query("otm_only")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "otm_only must be a boolean"})
			return
		}
		otmOnly = v
	}

	rec := h.strategyService.Run(ctx, ticker, shares, otmOnly)
	if rec.Failed() {
		c.JSON(statusForError(rec.ErrorCode), gin.H{
			"error":   string(rec.ErrorCode),
			"message": rec.Text,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":         ticker,
		"shares":         shares,
		"recommendation": rec.Text,
	})
}

// GetTechnical godoc
// @Summary      Get a technical analysis snapshot
// @Description  Returns RSI, MACD, moving average, and volume readings with classification
// @Tags         strategy
// @Produce      json
// @Param        ticker  path  string  true  "Stock ticker (e.g., AAPL)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/technical/{ticker} [get]
func (h *Handler) GetTechnical(c *gin.Context) {
	if h.strategyService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "strategy service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-technical")
	defer span.End()

	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticker is required"})
		return
	}
	span.SetAttributes(attribute.String("ticker", ticker))

	snapshot, err := h.strategyService.Technical(ctx, ticker)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker":    ticker,
		"technical": snapshot,
	})
}

func statusForError(code domain.ErrorCode) int {
	switch code {
	case domain.ErrInvalidShares, domain.ErrInvalidTicker:
		return http.StatusBadRequest
	case domain.ErrNoOptions, domain.ErrNoLiquidOptions:
		return http.StatusNotFound
	case domain.ErrAPIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
