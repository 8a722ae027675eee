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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/frankmd/internal/api"
	"github.com/starford/frankmd/internal/mcpserver"
	"github.com/starford/frankmd/internal/metrics"
	"github.com/starford/frankmd/internal/noteservice"
	"github.com/starford/frankmd/internal/sse"
	"github.com/starford/frankmd/internal/storage"
	"github.com/starford/frankmd/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option, defaultLog io.Writer) (*application, *slog.Logger, error) {
	app := &application{version: "dev", logOut: defaultLog}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// openNotes creates the notes root if needed and builds the service over it.
func openNotes(cfg *Config) (*storage.FS, *noteservice.Service, error) {
	store, err := storage.NewFS(cfg.Notes.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	return store, noteservice.NewService(store, cfg.Search.Options()), nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_path", cfg.Notes.Path),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, svc, err := openNotes(cfg)
	if err != nil {
		return err
	}

	broker := sse.NewBroker(cfg.Watch.TreeThrottle)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	m.TrackSSEClients(broker.ClientCount)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRouter(store, svc, broker, m, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the notes root and forward changes to SSE clients.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			if err := watcher.Watch(gCtx, store.Root(), logger, broker.PublishChange); err != nil {
				// Editing still works without live refresh.
				logger.Warn("watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Event streams only end when their channel closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

func newRouter(store storage.Provider, svc *noteservice.Service, broker *sse.Broker, m *metrics.Metrics, reg prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !store.IsDir("") {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"notes root unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler(reg))

	r.Mount("/", api.NewRouter(svc, broker))
	return r
}

// RunMCP serves the MCP tools over stdin/stdout until ctx is done or stdin
// closes. Logs go to stderr so stdout carries only protocol messages.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config

	_, svc, err := openNotes(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server starting", slog.String("notes_path", cfg.Notes.Path))
	srv := mcpserver.New(svc, app.version)
	errLog := slog.NewLogLogger(logger.Handler(), slog.LevelError)
	if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout, errLog); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	logger.Info("MCP server stopped")
	return nil
}
