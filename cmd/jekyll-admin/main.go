// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Command jekyll-admin serves the headless admin API for a Jekyll site
// whose content lives in a GitHub repository. All content reads and
// writes go through the GitHub Contents API; a local SQLite database
// holds only operational data (event log, comments, analytics).
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/circleseven/jekyll-admin/internal/bin"
	"github.com/circleseven/jekyll-admin/internal/cache"
	"github.com/circleseven/jekyll-admin/internal/config"
	"github.com/circleseven/jekyll-admin/internal/github"
	"github.com/circleseven/jekyll-admin/internal/handler/api"
	"github.com/circleseven/jekyll-admin/internal/logging"
	"github.com/circleseven/jekyll-admin/internal/middleware"
	"github.com/circleseven/jekyll-admin/internal/scheduler"
	"github.com/circleseven/jekyll-admin/internal/store"
	"github.com/circleseven/jekyll-admin/internal/version"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "jekyll-admin - Headless admin API for Jekyll sites\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GITHUB_TOKEN                    GitHub token for content mutations (required for writes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_GITHUB_OWNER       GitHub repository owner (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_GITHUB_REPO        GitHub repository name (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_GITHUB_BRANCH      Branch to read and write (default: main)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_DB_PATH            SQLite database path (default: ./data/jekyll-admin.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_REDIS_URL          Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JEKYLL_ADMIN_ALLOWED_ORIGINS    Comma-separated CORS origins (default: *)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("jekyll-admin %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Blob cache for GitHub reads. Redis when configured, in-process
	// memory otherwise; a failed Redis connection falls back to memory
	// so the server always starts.
	blobCache, fellBack := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.ListTTL(),
		MaxEntries: cfg.CacheMaxSize,
	}, logger)
	defer func() {
		if err := blobCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() && !fellBack {
		slog.Info("cache backend ready", "backend", "redis")
	} else {
		slog.Info("cache backend ready", "backend", "memory")
	}

	// GitHub content client
	gh := github.New(github.Options{
		Owner:         cfg.GitHubOwner,
		Repo:          cfg.GitHubRepo,
		Branch:        cfg.GitHubBranch,
		Token:         cfg.GitHubToken,
		RatePerSecond: cfg.GitHubRateLimit,
	})
	if !cfg.GitHubConfigured() {
		slog.Warn("GITHUB_TOKEN is not set, content mutations will be rejected")
	}

	// Bin service for soft deletes
	binSvc := bin.NewService(gh, blobCache, logger, bin.Options{
		PostsDir: cfg.PostsDir,
		PagesDir: cfg.PagesDir,
		BinDir:   cfg.BinDir,
	})

	// API handlers
	h := api.NewHandler(cfg, gh, blobCache, binSvc, db, logger)

	// Background jobs: analytics rollup and retention pruning
	sched := scheduler.New(db, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	r := newRouter(cfg, h)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newRouter builds the chi router with the full middleware stack and
// all API routes mounted under /api.
func newRouter(cfg *config.Config, h *api.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.NewRateLimiter(20, 40).Middleware)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.PostsGet)
			r.Post("/", h.PostsCreate)
			r.Put("/", h.PostsUpdate)
			r.Delete("/", h.PostsDelete)
		})

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", h.PagesGet)
			r.Post("/", h.PagesCreate)
			r.Put("/", h.PagesUpdate)
			r.Delete("/", h.PagesDelete)
		})

		r.Route("/bin", func(r chi.Router) {
			r.Get("/", h.BinList)
			r.Post("/", h.BinMove)
			r.Put("/", h.BinRestore)
			r.Delete("/", h.BinPurge)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.SettingsGet)
			r.Put("/", h.SettingsUpdate)
		})

		r.Route("/taxonomy", func(r chi.Router) {
			r.Get("/", h.TaxonomyGet)
			r.Put("/", h.TaxonomyUpdate)
		})

		r.Route("/menus", func(r chi.Router) {
			r.Get("/", h.MenusGet)
			r.Put("/", h.MenusUpdate)
		})

		r.Post("/preview", h.Preview)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", h.CommentsList)
			r.Post("/", h.CommentsSubmit)
			r.Put("/", h.CommentsModerate)
			r.Delete("/", h.CommentsDelete)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Post("/track", h.AnalyticsTrack)
			r.Get("/summary", h.AnalyticsSummary)
		})

		r.Get("/events", h.EventsList)

		r.Get("/status", h.Status)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "The requested endpoint does not exist")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteMethodNotAllowed(w)
	})

	return r
}
