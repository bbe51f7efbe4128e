// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

// Command server runs the Factorserve HTTP service: precomputed
// collaborative-filtering models served over a REST API, one route group
// per enabled recommendation domain.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/factorserve/factorserve/internal/api"
	"github.com/factorserve/factorserve/internal/config"
	"github.com/factorserve/factorserve/internal/logging"
	"github.com/factorserve/factorserve/internal/recommend"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger := logging.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := recommend.Options{
		DefaultTopN: cfg.Engine.DefaultTopN,
		MaxTopN:     cfg.Engine.MaxTopN,
	}

	var dining, rooms *recommend.Engine
	if cfg.Dining.Enabled {
		store := recommend.NewStore("dining", cfg.Dining.ArtifactPath, logger)
		dining = recommend.NewEngine(store, recommend.NewDiningPolicy(cfg.Dining.GlobalMeanDefault), opts, logger)
		eagerLoad(ctx, store, cfg.Dining)
	}
	if cfg.Rooms.Enabled {
		store := recommend.NewStore("rooms", cfg.Rooms.ArtifactPath, logger)
		rooms = recommend.NewEngine(store, recommend.NewRoomsPolicy(), opts, logger)
		eagerLoad(ctx, store, cfg.Rooms)
	}
	if dining == nil && rooms == nil {
		return errors.New("no recommendation domain enabled")
	}

	handler := api.NewRouter(cfg, dining, rooms).Setup()
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}

// eagerLoad loads a domain's artifact at startup when configured. Failure
// is not fatal: the domain starts degraded and a load can be retried via
// the API.
func eagerLoad(ctx context.Context, store *recommend.Store, dc config.DomainConfig) {
	if !dc.EagerLoad {
		return
	}
	if err := store.Load(ctx); err != nil {
		logging.Warn().Err(err).Str("path", dc.ArtifactPath).Msg("Startup model load failed, serving degraded")
	}
}
