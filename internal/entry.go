// Package internal provides the main application initialization and runtime
// logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/halvard/skald/internal/api"
	"github.com/halvard/skald/internal/auth"
	"github.com/halvard/skald/internal/builder"
	"github.com/halvard/skald/internal/mcpserver"
	"github.com/halvard/skald/internal/poststore"
	"github.com/halvard/skald/internal/render"
	"github.com/halvard/skald/internal/userstore"
	"github.com/halvard/skald/internal/watcher"
)

// Run starts the admin server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("users_path", cfg.Users.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the content root and the user file's directory exist.
	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Users.Path), 0o755); err != nil {
		return fmt.Errorf("create users dir: %w", err)
	}

	posts, err := poststore.New(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("init post store: %w", err)
	}
	users, err := userstore.New(cfg.Users.Path)
	if err != nil {
		return fmt.Errorf("init user store: %w", err)
	}

	build := builder.New(cfg.Build.Command, cfg.Build.Args, cfg.Build.Dir,
		cfg.Build.Timeout(), cfg.Build.MaxOutputBytes())

	sessions := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionName, cfg.Auth.SessionMaxAge)
	gate := auth.NewGate(sessions, users, cfg.Auth.AuthEnabled())

	deps := api.Deps{
		Posts:    posts,
		Build:    build,
		Renderer: render.New(),
		Gate:     gate,
		Sessions: sessions,
	}
	if cfg.Auth.AuthEnabled() {
		deps.OAuth = auth.NewOAuth(users, cfg.Auth.Google.ClientID,
			cfg.Auth.Google.ClientSecret, cfg.Auth.Google.RedirectURL)
	}
	if cfg.RateLimit.Enabled() {
		deps.Limiter = api.NewRateLimiter(ctx, cfg.RateLimit.Requests, cfg.RateLimit.Window())
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(deps))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the content root for posts written through the independent
	// CMS/git path and rebuild the public site when they change.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			if err := watcher.Watch(gCtx, posts.Root(), build, cfg.Watch.Debounce()); err != nil {
				logger.Warn("content watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio against the configured content
// root. Logs go to stderr so stdout stays clean for the protocol.
func RunMCP(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	posts, err := poststore.New(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("init post store: %w", err)
	}
	return mcpserver.New(posts).ServeStdio()
}
