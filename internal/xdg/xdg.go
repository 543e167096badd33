// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package xdg provides XDG Base Directory paths for authgate.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "authgate"

// ConfigDir returns the XDG config directory for authgate.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// StateDir returns the XDG state directory for authgate.
// Checks XDG_STATE_HOME first, falls back to ~/.local/state.
func StateDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the path of the config file the CLI reads
// when no --config flag is given, or "" when the file does not exist.
func DefaultConfigFile() string {
	path := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// EnsureDir creates a directory and all parent directories if they
// don't exist. Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.Code("XDG_MKDIR_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
