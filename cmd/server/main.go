package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"covered-call-strategist/internal/bot"
	"covered-call-strategist/internal/cache"
	"covered-call-strategist/internal/config"
	"covered-call-strategist/internal/db"
	"covered-call-strategist/internal/handler"
	"covered-call-strategist/internal/job"
	"covered-call-strategist/internal/market"
	"covered-call-strategist/internal/repository"
	"covered-call-strategist/internal/service"
	"covered-call-strategist/internal/strategy"
	"covered-call-strategist/internal/technical"
	"covered-call-strategist/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newConvRepoFunc     = repository.NewConversationRepository
	newAllowedRepoFunc  = repository.NewAllowedUserRepository
	newMarketSourceFunc = func(tracer trace.Tracer) market.Source {
		return market.NewYahooClient(tracer)
	}
	newCachedSourceFunc    = market.NewCachedSource
	newTechnicalEngineFunc = technical.NewEngine
	newStrategyServiceFunc = service.NewStrategyService
	newConversationJobFunc = job.NewConversationMaintenance
	startConversationJob   = func(j *job.ConversationMaintenance, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Covered Call Strategist API
// @version         1.0
// @description     Covered call strike recommendations with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	if cfg.RedisURL != "" {
		initRedisFunc(ctx, cfg.RedisURL)
	}

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Market data: Yahoo behind the Redis read-through cache.
	source := newMarketSourceFunc(tracer)
	cached := newCachedSourceFunc(source, cache.Client, tracer)

	filters := strategy.DefaultFilterConfig()
	filters.MinDays = cfg.MinExpiryDays
	filters.MaxDays = cfg.MaxExpiryDays
	filters.MinOpenInterest = cfg.MinOpenInterest

	engine := newTechnicalEngineFunc()
	strategyService := newStrategyServiceFunc(tracer, cached, cached, cached, cached, engine).WithFilters(filters)

	// Persistence-backed features only run with a database attached.
	var conversations bot.ConversationStore
	var access bot.AccessChecker
	if db.Pool != nil {
		convRepo := newConvRepoFunc(db.Pool, tracer)
		allowRepo := newAllowedRepoFunc(db.Pool, tracer)
		if err := convRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run conversation migrations: %v", err)
		}
		if err := allowRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run allowlist migrations: %v", err)
		}
		conversations = convRepo
		access = allowRepo

		retention := time.Duration(cfg.ConversationRetentionDays) * 24 * time.Hour
		maintenance := newConversationJobFunc(tracer, convRepo, retention)
		startConversationJob(maintenance, ctx)
	}

	limiter := bot.NewRateLimiter(cfg.BotRateLimitPerMin, time.Minute)
	startTelegramBotFunc(cfg.TelegramBotToken, strategyService, conversations, access, limiter)

	h := newHandlerFunc(tracer, strategyService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("covered-call-strategist"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
