// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authgate",
		Short: "authgate - account and session authentication service",
		Long: `authgate is an account-and-session authentication core: it creates
accounts, verifies email ownership, issues and revokes sessions, and
drives email-change handshakes against a PostgreSQL store.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg, err := config.Load(configPath(), nil)
			format := "json"
			if err == nil {
				format = cfg.LogFormat
			}
			logging.SetDefault("authgate", cmd.Root().Version, format)
		},
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewAccountCmd())
	cmd.AddCommand(NewSessionCmd())

	return cmd
}

// configPath resolves the config file: the --config flag when given,
// otherwise the XDG default location if a file exists there.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	return xdg.DefaultConfigFile()
}

// loadConfig reads the configuration honoring the global --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(configPath(), cmd.Flags())
}
