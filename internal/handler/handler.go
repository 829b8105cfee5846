package handler

import (
	"covered-call-strategist/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer          trace.Tracer
	strategyService *service.StrategyService
}

func New(tracer trace.Tracer, strategyService *service.StrategyService) *Handler {
	return &Handler{
		tracer:          tracer,
		strategyService: strategyService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/strategy/:ticker", h.GetStrategy)
	r.GET("/api/technical/:ticker", h.GetTechnical)
}
