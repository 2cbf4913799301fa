// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/grille/internal/api"
	"github.com/starford/grille/internal/puzzleservice"
	"github.com/starford/grille/internal/session"
	"github.com/starford/grille/internal/sse"
	"github.com/starford/grille/internal/storage"
	"github.com/starford/grille/internal/store"
)

// core is the wiring shared by the HTTP server and the MCP server.
type core struct {
	files    *storage.FS
	db       *store.DB
	puzzles  *puzzleservice.Service
	sessions *session.Manager
}

func newCore(cfg *Config, logger *slog.Logger, opts ...session.Option) (*core, error) {
	// Ensure puzzles directory exists.
	if err := os.MkdirAll(cfg.Puzzles.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create puzzles dir: %w", err)
	}

	files, err := storage.NewFS(cfg.Puzzles.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	// Run initial sync.
	if err := store.Sync(db, files, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := puzzleservice.NewService(files, db)
	opts = append([]session.Option{
		session.WithStateStore(store.NewGridStates(db, logger)),
		session.WithMoveLog(db),
		session.WithLogger(logger),
	}, opts...)

	return &core{
		files:    files,
		db:       db,
		puzzles:  svc,
		sessions: session.NewManager(svc, opts...),
	}, nil
}

func (c *core) Close() error {
	return c.db.Close()
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(os.Stdout, opts)
	if err != nil {
		return err
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(app.logOutput, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("puzzles_path", cfg.Puzzles.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("progress_throttle", cfg.Events.ProgressThrottle.String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.ProgressThrottle)
	defer broker.Close()

	c, err := newCore(cfg, logger, session.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer c.Close()

	apiRouter := api.NewRouter(c.puzzles, c.sessions, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Start file watcher with SSE callback.
	g.Go(func() error {
		err := store.Watch(gCtx, c.db, c.files, cfg.Puzzles.Path, logger, func(kind, path string) {
			broker.PublishPuzzleEvent(kind, path)
		})
		if err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

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
