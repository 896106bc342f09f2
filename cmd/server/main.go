// Hirelane - recruitment platform server with a conversational assistant.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/hirelane/hirelane/internal/agent"
	"github.com/hirelane/hirelane/internal/ai/gemini"
	"github.com/hirelane/hirelane/internal/api"
	"github.com/hirelane/hirelane/internal/ats"
	"github.com/hirelane/hirelane/internal/config"
	"github.com/hirelane/hirelane/internal/identity"
	"github.com/hirelane/hirelane/internal/middleware"
	"github.com/hirelane/hirelane/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Initialize the completion service (optional).
	var completer agent.Completer
	if cfg.AIEnabled() {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("Failed to initialize Gemini client, AI features will be degraded", "error", err)
		} else {
			completer = client
			slog.Info("Gemini client initialized", "model", client.Model())
		}
	}
	if completer == nil {
		slog.Info("AI features disabled (GEMINI_API_KEY not set or client init failed)")
	}

	auditLogger, err := agent.NewAuditLogger(agent.AuditLogConfig{
		Enabled:   cfg.AuditLog.Enabled,
		Dir:       cfg.AuditLog.Dir,
		QueueSize: cfg.AuditLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize audit logger", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	kv := agent.NewMemoryKV()
	defer kv.Close()
	sessions := agent.NewSessionCache(kv, cfg.Agent.SessionTTL)
	ranker := ats.NewRanker(repo, completer)
	agentService := agent.NewService(cfg, repo, sessions, completer, ranker, auditLogger)
	defer agentService.Close()

	// Initialize handlers.
	baseHandler := api.NewHandler(repo)
	healthHandler := api.NewHealthHandler(repo)
	jobsHandler := api.NewJobsHandler(baseHandler)
	applicationsHandler := api.NewApplicationsHandler(baseHandler)
	atsHandler := api.NewATSHandler(baseHandler, ranker)
	agentHandler := api.NewAgentHandler(baseHandler, agentService)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS([]string{cfg.FrontendURL, "*"}))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	// Routes. All use anonymous identity middleware (no auth needed).
	healthHandler.RegisterHealth(r)
	jobsHandler.RegisterRoutes(r)
	applicationsHandler.RegisterRoutes(r)
	atsHandler.RegisterRoutes(r)
	agentHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
