// Package main is the entry point for the growth logbook API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/growth-logbook/backend/internal/app"
	"github.com/pkordes/growth-logbook/backend/internal/config"
	"github.com/pkordes/growth-logbook/backend/internal/handler"
	"github.com/pkordes/growth-logbook/backend/internal/mapview"
	"github.com/pkordes/growth-logbook/backend/internal/mapview/headless"
	"github.com/pkordes/growth-logbook/backend/internal/metrics"
	"github.com/pkordes/growth-logbook/backend/internal/middleware"
	"github.com/pkordes/growth-logbook/backend/internal/region"
	"github.com/pkordes/growth-logbook/backend/internal/repo"
	"github.com/pkordes/growth-logbook/backend/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Storage ----------------------------------------------------------
	kv, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Services ---------------------------------------------------------
	regions := region.Default()
	trips := service.NewTripService(repo.NewTripRepo(kv), regions,
		service.WithLogger(logger),
		service.WithRecorder(m),
	)
	exports := service.NewExportService(trips, regions)

	if cfg.SeedDemoTrips {
		n, err := trips.SeedDemo(ctx)
		if err != nil {
			slog.Error("failed to seed demo trips", "error", err)
		} else if n > 0 {
			slog.Info("demo trips seeded", "count", n)
		}
	}

	// --- Map binding ------------------------------------------------------
	// The headless engine records what would be drawn; browsers fetch it
	// from /map and post interaction events back to /map/events. Clicks on
	// regions without a trip are kept for the new-trip form at /map/selections.
	selections := mapview.NewDispatcher(20)
	selections.Subscribe(func(ctx context.Context, sel mapview.RegionSelected) {
		slog.InfoContext(ctx, "region selected for new trip",
			"selection_id", sel.ID.String(),
			"label", sel.Label,
			"region", string(sel.RegionID),
			"resolved", sel.Resolved,
		)
	})
	binding := mapview.NewBinding(&headless.Engine{}, trips, regions,
		mapview.Config{MapName: cfg.MapName, DetailPage: cfg.DetailPage},
		mapview.WithGeometry(mapview.NewRemoteGeometry(cfg.GeometryURL, cfg.GeometryTimeout)),
		mapview.WithNotifier(selections),
		mapview.WithNavigator(mapview.NavigatorFunc(func(ctx context.Context, target string) {
			slog.DebugContext(ctx, "map navigation", "target", target)
		})),
		mapview.WithLogger(logger),
		mapview.WithRecorder(m),
	)

	// Geometry may take a while to fetch; serve requests meanwhile.
	initCtx, cancelInit := context.WithCancel(ctx)
	defer cancelInit()
	go func() {
		st := binding.Initialize(initCtx, headless.NewContainer("china-map"))
		slog.Info("map initialised", "state", string(st), "tier", string(binding.Snapshot().GeometryTier))
	}()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// CORS → MaxBodySize → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetrics(m))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(chimiddleware.Recoverer)

	srv := handler.NewServer(trips, regions, exports, binding,
		handler.WithLogger(logger),
		handler.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		handler.WithSelections(selections),
	)
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr, "store", cfg.StoreDriver)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	cancelInit()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	binding.Destroy(shutdownCtx)
	slog.Info("server stopped")
}
