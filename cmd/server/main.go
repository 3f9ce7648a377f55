// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package main is the entry point for the EstateSync server.
//
// EstateSync is a property listing catalog with real-time change
// streaming. The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 sources (defaults, config file,
//     environment variables)
//  2. Database: DuckDB catalog store (file-backed or in-memory)
//  3. Change hub: fan-out of listing change events to NDJSON and
//     WebSocket viewers
//  4. Quota ledger: per-account publication allowances scoped to waves
//  5. Authentication: HS256 bearer token verification (issuance is
//     external)
//  6. Authorization: Casbin RBAC model for role capabilities
//  7. NATS bridge (optional): cross-instance event relay, requires a
//     build with -tags nats
//  8. HTTP server: chi-routed REST API under /api/v1
//
// All long-running components run under a suture supervisor tree and are
// restarted with backoff if they fail. Shutdown on SIGINT or SIGTERM is
// graceful: the HTTP server drains in-flight requests before the
// broadcast layer stops.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kardolabs/estatesync/internal/api"
	"github.com/kardolabs/estatesync/internal/auth"
	"github.com/kardolabs/estatesync/internal/authz"
	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/logging"
	"github.com/kardolabs/estatesync/internal/quota"
	"github.com/kardolabs/estatesync/internal/stream"
	"github.com/kardolabs/estatesync/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, the default logger has to do.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("auth_disabled", cfg.Auth.Disabled).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	hub := stream.NewHub()
	ledger := quota.NewLedger(db)

	var verifier *auth.Verifier
	if cfg.Auth.Disabled {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED")
		logging.Warn().Msg("  Every request is treated as a super-admin actor.")
		logging.Warn().Msg("  Use this mode only for local development!")
		logging.Warn().Msg("============================================================")
	} else {
		verifier, err = auth.NewVerifier(&cfg.Auth)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize token verifier")
		}
		logging.Info().Msg("Bearer token verification enabled")
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	authzSvc := authz.NewService(enforcer)
	defer authzSvc.Close()

	if cfg.RateLimit.Disabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(treeCfg)

	tree.AddBroadcastService(supervisor.NewHubService(hub))
	logging.Info().Msg("Change hub added to supervisor tree")

	if err := initNATSBridge(cfg, hub, tree); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS bridge")
	}

	router := api.NewRouter(cfg, db, hub, ledger, verifier, authzSvc)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     router.Handler(),
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays at the configured value; the default of zero
		// keeps long-lived NDJSON and WebSocket connections open.
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}
