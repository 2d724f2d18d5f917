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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/calllog"
	"github.com/opsdeck/opsdeck/internal/event"
	"github.com/opsdeck/opsdeck/internal/graphview"
	"github.com/opsdeck/opsdeck/internal/mcpserver"
	"github.com/opsdeck/opsdeck/internal/scenario"
	"github.com/opsdeck/opsdeck/internal/sse"
	"github.com/opsdeck/opsdeck/internal/stream"
)

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

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("upstream_events", cfg.Upstream.EventsURL),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("scenario_dir", cfg.Scenarios.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the call log store.
	db, err := calllog.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init call log: %w", err)
	}
	defer db.Close()
	recorder := calllog.NewRecorder(db, logger)

	// Event buffer and SSE fan-out.
	buffer := stream.NewBuffer(cfg.Stream.Limit)
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	buffer.OnChange(func(e event.Event) {
		recorder.Record(e)
		broker.PublishStreamEvent(e)
	})

	// Graph snapshot holder; polled from upstream when configured.
	holder := graphview.NewHolder()

	// Load demo scenarios. A missing directory is not fatal.
	registry := scenario.NewRegistry()
	scenariosAvailable := true
	if err := registry.LoadDir(cfg.Scenarios.Dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			scenariosAvailable = false
			logger.Warn("scenario dir missing, playback disabled",
				slog.String("dir", cfg.Scenarios.Dir))
		} else {
			logger.Warn("scenario load failed", slog.String("error", err.Error()))
		}
	}
	runner := scenario.NewRunner(registry, buffer.Ingest, logger)

	g, gCtx := errgroup.WithContext(ctx)

	// Start the upstream SSE consumer.
	if cfg.Upstream.EventsURL != "" {
		client := stream.NewClient(cfg.Upstream.EventsURL, buffer, logger)
		g.Go(func() error {
			return client.Run(gCtx)
		})
	} else {
		logger.Info("no upstream events URL, running scenario-only")
	}

	// Start the graph snapshot poller.
	if cfg.Upstream.GraphURL != "" {
		fetcher := graphview.NewFetcher(cfg.Upstream.GraphURL, cfg.Upstream.GraphPollInterval(),
			holder, logger, broker.PublishGraphRefreshed)
		g.Go(func() error {
			return fetcher.Run(gCtx)
		})
	}

	// Start the scenario file watcher.
	if scenariosAvailable {
		g.Go(func() error {
			return scenario.Watch(gCtx, registry, cfg.Scenarios.Dir, logger)
		})
	}

	if app.mcpMode {
		// MCP mode: no HTTP server, serve tools over stdio. The pipeline
		// above keeps running so the tools see live data.
		srv := mcpserver.New(gCtx, buffer, holder, db, registry, runner)
		logger.Info("MCP server starting on stdio")
		g.Go(func() error {
			return srv.ServeStdio()
		})
		return g.Wait()
	}

	// Build API handler and router.
	h := api.NewHandler(gCtx, buffer, holder, db, registry, runner, buffer.Ingest)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
