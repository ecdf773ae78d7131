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

	"github.com/fiorelli/daytrip/internal/api"
	"github.com/fiorelli/daytrip/internal/countdown"
	"github.com/fiorelli/daytrip/internal/geo"
	"github.com/fiorelli/daytrip/internal/itinerary"
	"github.com/fiorelli/daytrip/internal/mcpserver"
	"github.com/fiorelli/daytrip/internal/narration"
	"github.com/fiorelli/daytrip/internal/sse"
	"github.com/fiorelli/daytrip/internal/state"
	"github.com/fiorelli/daytrip/internal/timeline"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := bootstrap(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("itinerary_path", cfg.Itinerary.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	core, err := buildCore(app, logger)
	if err != nil {
		return err
	}
	defer core.db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	tracker := geo.NewTracker()
	positions := geo.NewChanSource()

	apiRouter := api.NewRouter(api.Deps{
		Logger:         logger,
		Store:          core.store,
		State:          core.db,
		Timeline:       core.coord,
		Countdown:      core.cd,
		Session:        narration.NewSession(app.engine, cfg.Narration.Language, cfg.Narration.Rate),
		Tracker:        tracker,
		Positions:      positions,
		Events:         broker,
		PhraseLanguage: cfg.Narration.PhraseLanguage,
		PhraseRate:     cfg.Narration.PhraseRate,
	}, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Timeline recompute tick pushes throttled refresh hints.
	g.Go(func() error {
		core.coord.Run(gCtx, func(view timeline.View) {
			broker.Publish(sse.Event{Type: "timeline.updated", Data: view})
		})
		return nil
	})

	// Countdown tick.
	g.Go(func() error {
		core.cd.Run(gCtx, time.Second, func(st countdown.Status) {
			broker.Publish(sse.Event{Type: "countdown.tick", Data: st})
		})
		return nil
	})

	// Position stream consumer.
	g.Go(func() error {
		tracker.Follow(gCtx, positions, logger)
		return nil
	})

	// Itinerary hot reload: re-validate, re-merge persisted completion
	// state, and tell clients to refetch.
	g.Go(func() error {
		return itinerary.Watch(gCtx, cfg.Itinerary.Path, logger, func() error {
			doc, loadErr := itinerary.Load(cfg.Itinerary.Path)
			if loadErr != nil {
				return loadErr
			}
			recs, stateErr := core.db.LoadCompletion()
			if stateErr != nil {
				logger.Warn("persisted completion unreadable, using canonical defaults",
					slog.String("error", stateErr.Error()))
				recs = nil
			}
			doc.Activities = itinerary.MergeWithPersisted(doc.Activities, recs)
			core.store.Replace(doc)
			broker.Publish(sse.Event{Type: "itinerary.reloaded", Data: map[string]string{}})
			return nil
		})
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

// RunMCP starts the MCP stdio server over the same core as Run.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := bootstrap(opts)
	if err != nil {
		return err
	}

	core, err := buildCore(app, logger)
	if err != nil {
		return err
	}
	defer core.db.Close()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(core.store, core.db, core.coord, core.cd).ServeStdio()
}

// coreState bundles the shared engine pieces both run modes need.
type coreState struct {
	store *itinerary.Store
	db    *state.DB
	coord *timeline.Coordinator
	cd    *countdown.Service
}

func bootstrap(opts []Option) (*application, *slog.Logger, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

func buildCore(app *application, logger *slog.Logger) (*coreState, error) {
	cfg := app.config

	// The canonical itinerary is authoritative; failing to load it at
	// startup is fatal.
	doc, err := itinerary.Load(cfg.Itinerary.Path)
	if err != nil {
		return nil, fmt.Errorf("load itinerary: %w", err)
	}

	db, err := state.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init state db: %w", err)
	}

	// Persisted completion is best effort: corruption degrades to the
	// canonical defaults instead of refusing to start.
	recs, err := db.LoadCompletion()
	if err != nil {
		logger.Warn("persisted completion unreadable, using canonical defaults",
			slog.String("error", err.Error()))
		recs = nil
	}
	doc.Activities = itinerary.MergeWithPersisted(doc.Activities, recs)

	store := itinerary.NewStore(doc)
	return &coreState{
		store: store,
		db:    db,
		coord: timeline.NewCoordinator(store, time.Minute, app.clock),
		cd:    countdown.New(cfg.Countdown.Target, cfg.Countdown.ReachedDisplay, app.clock),
	}, nil
}
