// Package internal provides the main application initialization and runtime logic.
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

	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/boardservice"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/registry"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/sync"
	"github.com/starford/dagaz/internal/watch"

	// Sync providers register themselves from init().
	_ "github.com/starford/dagaz/internal/sync/gcs"
	_ "github.com/starford/dagaz/internal/sync/git"
)

// openBoardStorage ensures the board directory exists and opens the file
// storage over it. Both entry points go through it so a fresh board path
// works the same under the HTTP server and the MCP subcommand.
func openBoardStorage(path string) (storage.Provider, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	store, err := storage.NewFS(path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// Run starts the application with the given options.
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
		slog.String("board_path", cfg.Board.Path),
		slog.String("registry_path", cfg.Registry.Path),
		slog.String("sync_mode", cfg.Sync.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage.
	store, err := openBoardStorage(cfg.Board.Path)
	if err != nil {
		return err
	}

	// Record this board in the recent-boards catalog.
	reg, err := registry.Open(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}
	defer reg.Close()

	boardDir, err := filepath.Abs(cfg.Board.Path)
	if err != nil {
		boardDir = cfg.Board.Path
	}
	if err := reg.Touch(boardDir); err != nil {
		logger.Warn("registry touch failed", slog.String("error", err.Error()))
	}

	// Sync provider, if configured.
	provider := app.provider
	if provider == nil && cfg.Sync.Enabled() {
		provider, err = sync.New(cfg.Sync.Kind(), boardDir, cfg.Sync.Options())
		if err != nil {
			return fmt.Errorf("init sync provider: %w", err)
		}
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build the board service and API router.
	svc := boardservice.NewService(store, logger, provider)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Watch the board directory for out-of-band edits.
	watcher := watch.New(boardDir, logger,
		func(changed, deleted []string) {
			for _, p := range changed {
				broker.PublishCardEvent("updated", p)
			}
			for _, stem := range deleted {
				broker.PublishCardEvent("deleted", stem)
			}
		},
		func() {
			broker.Publish(sse.Event{Type: "board.updated", Data: map[string]string{}})
		})

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
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher.
	g.Go(func() error {
		if err := watcher.Start(gCtx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		<-gCtx.Done()
		watcher.Stop()
		return nil
	})

	// Verify the sync configuration in the background; the board stays
	// usable when the remote is down.
	if provider != nil {
		g.Go(func() error {
			if err := provider.CheckConfiguration(gCtx); err != nil {
				logger.Warn("sync configuration check failed",
					slog.String("error", err.Error()))
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

// RunMCP serves board tools over MCP stdio. Logs go to stderr so they do
// not corrupt the protocol stream on stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := openBoardStorage(cfg.Board.Path)
	if err != nil {
		return err
	}

	boardDir, err := filepath.Abs(cfg.Board.Path)
	if err != nil {
		boardDir = cfg.Board.Path
	}

	provider := app.provider
	if provider == nil && cfg.Sync.Enabled() {
		provider, err = sync.New(cfg.Sync.Kind(), boardDir, cfg.Sync.Options())
		if err != nil {
			return fmt.Errorf("init sync provider: %w", err)
		}
		if err := provider.CheckConfiguration(ctx); err != nil {
			logger.Warn("sync configuration check failed", slog.String("error", err.Error()))
		}
	}

	svc := boardservice.NewService(store, logger, provider)

	logger.Info("MCP server starting", slog.String("board_path", boardDir))
	return mcpserver.New(svc).ServeStdio()
}
