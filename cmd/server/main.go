// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/stockpulse/internal/aggregate"
	"github.com/tomtom215/stockpulse/internal/api"
	"github.com/tomtom215/stockpulse/internal/cache"
	"github.com/tomtom215/stockpulse/internal/config"
	"github.com/tomtom215/stockpulse/internal/detector"
	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/snapshot"
	"github.com/tomtom215/stockpulse/internal/source"
	"github.com/tomtom215/stockpulse/internal/supervisor"
	"github.com/tomtom215/stockpulse/internal/supervisor/services"
	ws "github.com/tomtom215/stockpulse/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		File:      cfg.Logging.File,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("source", cfg.Source.Path).
		Dur("poll_interval", cfg.Source.PollInterval).
		Bool("watch", cfg.Source.WatchEnabled).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Stockpulse with supervisor tree")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS to restrict browser access")
	}

	// Snapshot pipeline: reader -> aggregator -> store -> subscribers
	store := snapshot.NewStore()
	subs := snapshot.NewSubscribers()
	reader := source.NewReader(source.Options{
		Delimiter: cfg.Source.DelimiterRune(),
		Attempts:  cfg.Source.ReadAttempts,
		Backoff:   cfg.Source.ReadBackoff,
	})

	wsHub := ws.NewHub(store)
	subs.Subscribe(wsHub.SnapshotSubscriber())

	det := detector.New(detector.Config{
		Path:             cfg.Source.Path,
		PollInterval:     cfg.Source.PollInterval,
		WatchEnabled:     cfg.Source.WatchEnabled,
		WatchDebounce:    cfg.Source.WatchDebounce,
		WatchStopTimeout: cfg.Source.WatchStopTimeout,
	}, reader, aggregate.New(), store, subs)

	// History requests re-read the file; reuse the parse while it is unchanged
	var historyReader api.TableReader = reader
	if cfg.API.HistoryCacheTTL > 0 {
		historyReader = cache.NewTableCache(reader, 4, cfg.API.HistoryCacheTTL)
	}

	handler := api.NewHandler(cfg, store, historyReader, wsHub, det)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg))

	server := &http.Server{
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	for layer, svc := range map[supervisor.Layer]suture.Service{
		supervisor.LayerIngest:    services.NewDetectorService(det),
		supervisor.LayerMessaging: services.NewWebSocketHubService(wsHub),
		supervisor.LayerAPI:       services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.ShutdownTimeout),
	} {
		if _, err := tree.Add(layer, svc); err != nil {
			logging.Fatal().Err(err).Msg("Failed to add service to supervisor tree")
		}
	}
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Interface("services", tree.Services()).
		Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// errCh delivers exactly one value and is never closed
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
