// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/pkg/errutil"
)

// shutdownTimeout bounds graceful shutdown of the observability server.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand. It holds the database pool
// open and exposes metrics and health probes; the HTTP request layer
// consuming the auth facade is deployed separately and is not part of
// this core.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the service with metrics and health endpoints",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildServices(ctx, cmd)
	if err != nil {
		return err
	}
	defer deps.close()

	// Readiness follows the database: probes flip to 503 when it goes away.
	ready := func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return deps.pool.Ping(pingCtx) == nil
	}

	server := observability.NewServer(deps.cfg.MetricsAddr, ready)
	errCh, err := server.Start()
	if err != nil {
		return err
	}

	slog.Info("authgate running",
		"metrics_addr", server.Addr(),
		"verification_enabled", deps.cfg.Auth.VerificationEnabled,
	)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr := <-errCh:
		if serveErr != nil {
			errutil.LogError(slog.Default(), "observability server failed", serveErr)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(stopCtx)
}
