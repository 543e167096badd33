// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth"
	authpg "github.com/authgate/authgate/internal/auth/postgres"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/mail"
	"github.com/authgate/authgate/internal/store"
)

// services bundles everything a subcommand needs to run auth operations.
type services struct {
	cfg      config.Config
	pool     *pgxpool.Pool
	accounts auth.AccountRepository
	sessions auth.SessionRepository
	svc      *auth.Service
}

// close releases the connection pool.
func (s *services) close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// buildServices wires config, store, repositories, mailer and the auth
// facade for a subcommand invocation.
func buildServices(ctx context.Context, cmd *cobra.Command) (*services, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("database_url is required (config file or DATABASE_URL)")
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	mailer, err := buildMailer(cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	accounts := authpg.NewAccountRepository(pool)
	sessions := authpg.NewSessionRepository(pool)

	svc, err := auth.NewService(accounts, sessions, auth.NewArgon2idHasher(), mailer, cfg.AuthConfig())
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &services{
		cfg:      cfg,
		pool:     pool,
		accounts: accounts,
		sessions: sessions,
		svc:      svc,
	}, nil
}

// buildMailer selects the SMTP mailer when a host is configured, the
// logging dev mailer otherwise.
func buildMailer(cfg config.Config) (auth.Mailer, error) {
	if cfg.SMTP.Host == "" {
		return mail.NewDevMailer(slog.Default()), nil
	}
	return mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)
}
