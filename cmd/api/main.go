package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/barbearia-labs/barber-ai-platform/cmd/mainconfig"
	"github.com/barbearia-labs/barber-ai-platform/internal/api/router"
	"github.com/barbearia-labs/barber-ai-platform/internal/appointments"
	"github.com/barbearia-labs/barber-ai-platform/internal/booking"
	"github.com/barbearia-labs/barber-ai-platform/internal/catalog"
	"github.com/barbearia-labs/barber-ai-platform/internal/clients"
	appconfig "github.com/barbearia-labs/barber-ai-platform/internal/config"
	"github.com/barbearia-labs/barber-ai-platform/internal/conversation"
	"github.com/barbearia-labs/barber-ai-platform/internal/observability/metrics"
	"github.com/barbearia-labs/barber-ai-platform/pkg/logging"
)

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barber-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres: catalog, appointments and client profiles.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis: chat sessions.
	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() { _ = redisClient.Close() }()

	loc := conversation.BusinessLocation(cfg.BusinessTimezone)
	sessions := conversation.NewSessionStore(redisClient, cfg.SessionMaxIdle, loc)

	catalogRepo := catalog.NewRepository(pool)
	apptRepo := appointments.NewRepository(pool)
	apptService := appointments.NewService(apptRepo, logger)
	clientsRepo := clients.NewRepository(pool)

	checker := booking.NewChecker()
	if cfg.SlotStepMinutes > 0 {
		checker.StepMinutes = cfg.SlotStepMinutes
	}
	if cfg.MaxAlternatives > 0 {
		checker.MaxAlternatives = cfg.MaxAlternatives
	}

	// The narrative layer is optional; without a key the engine answers
	// with structured replies only.
	var llm conversation.LLMClient
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = geminiClient.Close() }()
		llm = geminiClient
	} else {
		logger.Warn("GEMINI_API_KEY not set, narrative replies disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := metrics.NewChatMetrics(registry)

	engine := conversation.NewEngine(conversation.EngineConfig{
		Catalog:      catalogRepo,
		Appointments: apptRepo,
		Committer:    apptService,
		Profiles:     clientsRepo,
		Sessions:     sessions,
		Checker:      checker,
		LLM:          llm,
		Location:     loc,
		Logger:       logger,
		Metrics:      chatMetrics,
	})

	var queue conversation.QueueClient
	if cfg.UseMemoryQueue {
		queue = conversation.NewMemoryQueue(64)
		logger.Info("using in-memory conversation queue")
	} else {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		queue = conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ConversationQueueURL)
		logger.Info("using SQS conversation queue", "queue_url", cfg.ConversationQueueURL)
	}

	orchestrator := conversation.NewOrchestrator(engine, queue, logger,
		conversation.WithWorkerCount(cfg.WorkerCount),
	)

	conversationHandler := conversation.NewHandler(orchestrator, sessions, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversationHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminJWTSecret:      cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ChatRateLimit:       cfg.ChatRateLimit,
		ChatRateBurst:       cfg.ChatRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		logger.Error("orchestrator shutdown", "error", err)
	}

	logger.Info("server stopped")
}
