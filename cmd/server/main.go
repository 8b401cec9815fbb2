package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/nexusquery/auth-gateway/api"
	"github.com/nexusquery/auth-gateway/internal/account"
	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/nexusquery/auth-gateway/internal/config"
	"github.com/nexusquery/auth-gateway/internal/database"
	"github.com/nexusquery/auth-gateway/internal/handlers"
	"github.com/nexusquery/auth-gateway/internal/identity/firebase"
	"github.com/nexusquery/auth-gateway/internal/logger"
	"github.com/nexusquery/auth-gateway/internal/middleware"
	"github.com/nexusquery/auth-gateway/internal/profile"
	"github.com/nexusquery/auth-gateway/internal/queue"
	"github.com/nexusquery/auth-gateway/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const (
	serviceName        = "auth-gateway"
	trustInitTimeout   = 30 * time.Second
	dlqGCInterval      = 1 * time.Hour
	dlqRetention       = 24 * time.Hour
	shutdownTimeout    = 30 * time.Second
	writeTimeoutMargin = 5 * time.Second
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(logger.Options{Level: cfg.LogLevel, Debug: debugMode})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.Strings("frontend_origins", cfg.FrontendOrigins()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
				ServiceName:    serviceName,
				ServiceVersion: handlers.ServiceVersion,
				Endpoint:       cfg.OTELEndpoint,
				Insecure:       true,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
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

	// Trust material must load before the first request is served.
	provider := firebase.NewProvider(firebase.Config{
		ServiceAccountPath: cfg.FirebaseServiceAccountPath,
		ProjectID:          cfg.FirebaseProjectID,
		JWKSURL:            cfg.FirebaseJWKSURL,
	}, firebase.WithLogger(zapLogger))
	trust := auth.NewTrustMaterial(provider.Init)
	initCtx, initCancel := context.WithTimeout(context.Background(), trustInitTimeout)
	err = trust.Ensure(initCtx)
	initCancel()
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_trust_material",
			zap.String("service_account_path", cfg.FirebaseServiceAccountPath),
			zap.Error(err),
		)
	}
	zapLogger.Info("trust_material_initialized", zap.String("project_id", provider.ProjectID()))

	checks := map[string]handlers.Checker{
		"database": nil,
		"redis":    nil,
		"rabbitmq": nil,
	}

	// Profile store: Postgres when configured, otherwise in memory
	var store profile.Store = profile.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		if err := db.Migrate(context.Background()); err != nil {
			zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
		}
		store = database.NewProfileRepository(db)
		checks["database"] = db
		zapLogger.Info("connected_to_database")
	} else {
		zapLogger.Warn("database_not_configured_using_memory_profiles")
	}

	// Rate limiting for the anonymous account routes
	limit := middleware.Passthrough
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("invalid_redis_url", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		limit, err = middleware.RateLimit(redisClient, cfg.RateLimit)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
		checks["redis"] = handlers.CheckFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		zapLogger.Info("connected_to_redis", zap.String("rate", cfg.RateLimit))
	} else {
		zapLogger.Warn("redis_not_configured_rate_limiting_disabled")
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Verification links go to the worker through RabbitMQ when configured
	var dispatcher account.LinkDispatcher
	if cfg.RabbitMQURL != "" {
		jobQueue, err := queue.ConnectWithRetry(bgCtx, cfg.RabbitMQURL, 0, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		dispatcher = queue.NewDispatcher(jobQueue, queue.DefaultJobTTL, zapLogger)
		checks["rabbitmq"] = jobQueue
		zapLogger.Info("connected_to_rabbitmq")

		dlqGC := queue.NewGarbageCollector(jobQueue, dlqGCInterval, dlqRetention, zapLogger)
		go func() {
			if err := dlqGC.Start(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
	} else {
		zapLogger.Warn("rabbitmq_not_configured_verification_links_logged_only")
	}

	// Authentication core
	verifier := auth.NewVerifier(provider, trust, zapLogger, auth.WithVerifyTimeout(cfg.VerifyTimeout))
	gate := auth.NewGate(verifier, profile.NewSyncer(store, zapLogger, 0), zapLogger)
	revoker := auth.NewSessionRevoker(provider, zapLogger, cfg.RevokeTimeout)
	accounts := account.NewService(provider, dispatcher, zapLogger)

	guard := func(policy auth.Policy) func(http.Handler) http.Handler {
		return middleware.Auth(gate, policy, zapLogger)
	}

	projectID := cfg.FirebaseProjectID
	if projectID == "" {
		projectID = provider.ProjectID()
	}

	// Setup router
	r := mux.NewRouter()

	if tracingEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.MaxRequestSize(cfg.MaxRequestBytes, zapLogger))
	r.Use(middleware.ContentType(zapLogger))
	r.Use(middleware.Timeout(cfg.RequestTimeout, zapLogger))

	handlers.NewHealthChecker(checks).RegisterRoutes(r)
	handlers.NewPublicHandler(handlers.ClientConfig{
		APIKey:     cfg.FirebaseAPIKey,
		AuthDomain: cfg.FirebaseAuthDomain,
		ProjectID:  projectID,
	}).RegisterRoutes(r)
	handlers.NewOpenAPIHandler(api.OpenAPIYAML).RegisterRoutes(r)

	handlers.NewAuthHandler(accounts, revoker, zapLogger).
		RegisterRoutes(r.PathPrefix("/auth").Subrouter(), guard, limit)
	handlers.NewProtectedHandler().
		RegisterRoutes(r.PathPrefix("/api").Subrouter(), guard)

	// CORS wraps the router so preflight requests never need a matching route
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        middleware.CORS(cfg.FrontendOrigins(), zapLogger)(r),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   cfg.RequestTimeout + writeTimeoutMargin,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	bgCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
