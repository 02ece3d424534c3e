package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fcaqualink/aqualink-monitor/internal/auth"
	"github.com/fcaqualink/aqualink-monitor/internal/clock"
	"github.com/fcaqualink/aqualink-monitor/internal/config"
	"github.com/fcaqualink/aqualink-monitor/internal/handler"
	"github.com/fcaqualink/aqualink-monitor/internal/history"
	"github.com/fcaqualink/aqualink-monitor/internal/middleware"
	"github.com/fcaqualink/aqualink-monitor/internal/pipeline"
	"github.com/fcaqualink/aqualink-monitor/internal/telemetry"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	logger := initLogger(cfg.Logging)
	defer logger.Sync()

	logger.Info("Starting AquaLink monitor",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", os.Getenv("GO_ENV")),
	)

	// Create JWT manager and auth middleware
	jwtManager := auth.NewJWTManager(&cfg.JWT)
	authMiddleware := auth.NewAuthMiddleware(jwtManager, logger)

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Create middleware
	metricsMiddleware := middleware.NewMetricsMiddleware(registry)
	loggingMiddleware := middleware.NewLoggingMiddleware(logger)
	corsMiddleware := middleware.NewCORSMiddleware([]string{
		"http://localhost:5173", // Vite default dev server
		"http://localhost:3000",
		"http://localhost:4173", // Vite preview
		"http://127.0.0.1:5173",
		"http://127.0.0.1:3000",
	}, logger)

	clk := clock.New()

	// History store and remote-preferred query view
	store := history.NewStore(history.NewFileStorage(cfg.History.StoragePath), cfg.History.MaxRecords, logger)
	view := newHistoryView(cfg, store, logger)

	// Ingestion pipeline over the live feed
	pipelineMetrics := pipeline.NewMetrics(registry)
	pipe := pipeline.New(cfg, store, pipelineMetrics, clk, logger)

	dialer := telemetry.NewWebsocketDialer(10 * time.Second)
	connector := telemetry.NewConnector(cfg.Telemetry, dialer, clk, logger)

	runCtx, stopPipeline := context.WithCancel(context.Background())
	defer stopPipeline()

	connector.Start(runCtx)
	go pipe.Run(runCtx, connector.Messages(), connector.Statuses())

	// Create router
	router := mux.NewRouter()

	// Apply common middleware - ORDER IS IMPORTANT!
	// CORS must come first to handle preflight requests
	router.Use(corsMiddleware.EnableCORS)
	router.Use(loggingMiddleware.LogRequest)
	router.Use(metricsMiddleware.CollectMetrics)

	// Health check endpoint (no auth)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy"}`)
	}).Methods("GET")

	// Metrics endpoint (no auth)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Login endpoint (no auth)
	loginHandler := handler.NewLoginHandler(cfg.Auth, jwtManager, logger)
	loginHandler.RegisterRoutes(router)

	// API v1 subrouter with auth
	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(authMiddleware.Authenticate)

	sensorHandler := handler.NewSensorHandler(pipe, view, logger)
	sensorHandler.RegisterRoutes(apiV1)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the feed first so no more records land during shutdown
	connector.Stop()
	stopPipeline()
	<-connector.Done()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

// newHistoryView wires the remote historial client when enabled; the
// broker's HTTP API lives on the same host as the websocket feed.
func newHistoryView(cfg *config.Config, store *history.Store, logger *zap.Logger) *history.View {
	if !cfg.History.RemoteEnabled {
		return history.NewView(store, nil, logger)
	}

	candidates := telemetry.ResolveCandidates(cfg.Telemetry)
	if len(candidates) == 0 {
		return history.NewView(store, nil, logger)
	}

	baseURL, err := history.BaseURLFromWS(candidates[0])
	if err != nil {
		logger.Warn("could not derive remote history URL, queries stay local", zap.Error(err))
		return history.NewView(store, nil, logger)
	}

	client := history.NewRemoteClient(baseURL, &http.Client{Timeout: 10 * time.Second}, logger)
	logger.Info("Remote history enabled", zap.String("base_url", baseURL))
	return history.NewView(store, client, logger)
}

// initLogger initializes the logger based on configuration
func initLogger(cfg config.LoggingConfig) *zap.Logger {
	var zapConfig zap.Config

	// Choose log level
	level := zap.InfoLevel
	_ = level.Set(cfg.Level)

	// Choose log format: json or console
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		// Fall back to a basic logger if there's an error
		fmt.Printf("Failed to create logger: %v. Using default logger.\n", err)
		return zap.NewExample()
	}

	return logger
}
