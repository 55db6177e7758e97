package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/database"
	"github.com/focusflow/focusflow/internal/handlers"
	"github.com/focusflow/focusflow/internal/logger"
	"github.com/focusflow/focusflow/internal/middleware"
	"github.com/focusflow/focusflow/internal/planner"
	"github.com/focusflow/focusflow/internal/services/ai"
	googlesvc "github.com/focusflow/focusflow/internal/services/google"
	"github.com/focusflow/focusflow/internal/telemetry"
)

const serviceName = "focusflow-api"

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_provider", cfg.AIProvider),
		zap.Bool("google_configured", cfg.GoogleConfigured()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry is optional; a missing collector should not stop the server.
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Repositories
	taskRepo := database.NewTaskRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	planRepo := database.NewDailyPlanRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	// AI provider is optional; without it the planner degrades to the
	// deterministic fallback and reports carry no insights.
	aiProvider, err := createAIProvider(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_ai_features_disabled", zap.Error(err))
		aiProvider = nil
	}

	// Planner components
	ranker := planner.NewRanker(taskRepo, planRepo, settingsRepo, aiProvider, zapLogger)
	assembler := planner.NewAssembler(taskRepo, planRepo, sessionRepo, settingsRepo, zapLogger)
	rollover := planner.NewRollover(taskRepo, zapLogger)
	tracker := planner.NewTracker(taskRepo, sessionRepo, zapLogger)
	reporter := planner.NewReporter(taskRepo, sessionRepo, aiProvider, zapLogger)

	// Google integration
	var googleService *googlesvc.Service
	if cfg.GoogleConfigured() {
		googleService = googlesvc.NewService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			taskRepo,
			settingsRepo,
			zapLogger,
		)
	}

	// Handlers
	taskHandler := handlers.NewTaskHandler(taskRepo, rollover, zapLogger)
	planHandler := handlers.NewPlanHandler(ranker, assembler, rollover, zapLogger)
	pomodoroHandler := handlers.NewPomodoroHandler(tracker, zapLogger)
	statsHandler := handlers.NewStatsHandler(assembler, reporter, zapLogger)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, zapLogger)
	healthChecker := handlers.NewHealthChecker(map[string]handlers.Pinger{
		"database": handlers.NewDBPinger(db.PingContext),
		"redis":    redisLimiter,
	})
	versionHandler := &handlers.VersionHandler{Version: Version}

	rateLimitMW, err := middleware.RateLimit(redisLimiter, cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	r := mux.NewRouter()

	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.Handle("/version", versionHandler).Methods(http.MethodGet)

	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))
	openAPIHandler.RegisterRoutes(r)

	// API routes, rate limited per client IP
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(rateLimitMW)

	taskHandler.RegisterRoutes(apiRouter)
	planHandler.RegisterRoutes(apiRouter)
	pomodoroHandler.RegisterRoutes(apiRouter)
	statsHandler.RegisterRoutes(apiRouter)
	settingsHandler.RegisterRoutes(apiRouter)

	if googleService != nil {
		googleHandler := handlers.NewGoogleHandler(googleService, cfg.FrontendURL, zapLogger)
		googleHandler.RegisterRoutes(apiRouter)
	} else {
		zapLogger.Info("google_integration_disabled")
	}

	// Catch-all for preflight requests. The CORS middleware has already set
	// the response headers by the time this runs.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// createAIProvider builds the configured AI provider.
func createAIProvider(cfg *config.Config, logger *zap.Logger, debugMode bool) (ai.AIProvider, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	providerType := cfg.AIProvider
	if providerType == "" {
		providerType = "openai"
	}

	if providerType == "openai" {
		return ai.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			logger,
			debugMode,
		), nil
	}

	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry)

	return registry.GetProvider(providerType, map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
}
