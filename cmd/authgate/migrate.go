// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  runMigrate(func(m *store.Migrator) error { return m.Up() }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations (destructive)",
			RunE:  runMigrate(func(m *store.Migrator) error { return m.Down() }),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			RunE: runMigrate(func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if dirty {
					return oops.Code("MIGRATION_DIRTY").
						With("version", version).
						Errorf("migration version %d is dirty, manual intervention required", version)
				}
				return nil
			}),
		},
	)

	return cmd
}

// runMigrate wraps a migrator operation with config loading and cleanup.
func runMigrate(op func(*store.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("database_url is required (config file or DATABASE_URL)")
		}

		migrator, err := store.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer migrator.Close() //nolint:errcheck // close failure cannot undo the applied operation

		if err := op(migrator); err != nil {
			return err
		}

		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		cmd.Printf("migration version: %d (dirty: %v)\n", version, dirty)
		return nil
	}
}
