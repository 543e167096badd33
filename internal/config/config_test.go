// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.Auth.VerificationEnabled)
	assert.Equal(t, auth.DefaultVerificationTokenLength, cfg.Auth.VerificationTokenLength)
	assert.Equal(t, auth.DefaultSessionTokenLength, cfg.Auth.SessionTokenLength)
	assert.Equal(t, auth.DefaultVerificationExpiry, cfg.Auth.VerificationExpiry)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoad(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, Default().MetricsAddr, cfg.MetricsAddr)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yaml", nil)
		require.Error(t, err)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
database_url: postgres://localhost/authgate
metrics_addr: ":9200"
log_format: text
auth:
  verification_enabled: false
  verification_expiry: 1h
smtp:
  host: smtp.example.com
  sender: noreply@example.com
`)

		cfg, err := Load(path, nil)
		require.NoError(t, err)

		assert.Equal(t, "postgres://localhost/authgate", cfg.DatabaseURL)
		assert.Equal(t, ":9200", cfg.MetricsAddr)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.False(t, cfg.Auth.VerificationEnabled)
		assert.Equal(t, time.Hour, cfg.Auth.VerificationExpiry)
		assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)

		// Unset file values keep their defaults.
		assert.Equal(t, auth.DefaultSessionTokenLength, cfg.Auth.SessionTokenLength)
		assert.Equal(t, 587, cfg.SMTP.Port)
	})

	t.Run("flags override file values", func(t *testing.T) {
		path := writeConfigFile(t, `metrics_addr: ":9200"`)

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("metrics_addr", "", "")
		require.NoError(t, flags.Parse([]string{"--metrics_addr", ":9300"}))

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, ":9300", cfg.MetricsAddr)
	})

	t.Run("DATABASE_URL env overrides file", func(t *testing.T) {
		path := writeConfigFile(t, `database_url: postgres://file/db`)
		t.Setenv("DATABASE_URL", "postgres://env/db")

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	})
}

func TestAuthConfig(t *testing.T) {
	cfg := Default()
	cfg.Auth.VerificationEnabled = false
	cfg.Auth.VerificationExpiry = 2 * time.Hour

	ac := cfg.AuthConfig()
	assert.False(t, ac.VerificationEnabled)
	assert.Equal(t, 2*time.Hour, ac.VerificationExpiry)
	assert.Equal(t, auth.DefaultSessionTokenLength, ac.SessionTokenLength)
}
