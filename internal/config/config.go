// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package config loads service configuration from a YAML file and
// command-line flags, producing an explicit value that is passed into
// constructors rather than read from ambient globals.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/authgate/authgate/internal/auth"
)

// Config is the full service configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. The DATABASE_URL
	// environment variable overrides the file value.
	DatabaseURL string `koanf:"database_url"`

	// MetricsAddr is the observability listen address.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	Auth AuthConfig `koanf:"auth"`
	SMTP SMTPConfig `koanf:"smtp"`
}

// AuthConfig mirrors auth.Config in file form.
type AuthConfig struct {
	VerificationEnabled     bool          `koanf:"verification_enabled"`
	VerificationTokenLength int           `koanf:"verification_token_length"`
	SessionTokenLength      int           `koanf:"session_token_length"`
	VerificationExpiry      time.Duration `koanf:"verification_expiry"`
}

// SMTPConfig configures the outbound mailer. With an empty Host the
// dev mailer is used and tokens are logged instead of sent.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Sender   string `koanf:"sender"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		Auth: AuthConfig{
			VerificationEnabled:     true,
			VerificationTokenLength: auth.DefaultVerificationTokenLength,
			SessionTokenLength:      auth.DefaultSessionTokenLength,
			VerificationExpiry:      auth.DefaultVerificationExpiry,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
	}
}

// Load builds the configuration from, in order of precedence:
// command-line flags, the DATABASE_URL environment variable, the YAML
// file at path (optional) and the defaults.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	return cfg, nil
}

// AuthConfig converts the file form into the core's explicit config value.
func (c Config) AuthConfig() auth.Config {
	return auth.Config{
		VerificationEnabled:     c.Auth.VerificationEnabled,
		VerificationTokenLength: c.Auth.VerificationTokenLength,
		SessionTokenLength:      c.Auth.SessionTokenLength,
		VerificationExpiry:      c.Auth.VerificationExpiry,
	}
}
