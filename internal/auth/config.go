// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import "time"

// Default token and expiry parameters.
const (
	DefaultVerificationTokenLength = 32
	DefaultSessionTokenLength      = 64
	DefaultVerificationExpiry      = 24 * time.Hour
)

// Config carries the authentication policy knobs. It is passed
// explicitly into NewService so the core can be exercised with varied
// configurations in isolation; nothing is read from ambient globals.
type Config struct {
	// VerificationEnabled controls whether new accounts must confirm
	// their email. When false, accounts are created Verified and email
	// changes commit immediately without a token handshake.
	VerificationEnabled bool

	// VerificationTokenLength is the length of verification codes.
	VerificationTokenLength int

	// SessionTokenLength is the length of session bearer tokens.
	SessionTokenLength int

	// VerificationExpiry is the window during which a pending
	// email-change token stays valid.
	VerificationExpiry time.Duration
}

// DefaultConfig returns the default authentication configuration with
// email verification enabled.
func DefaultConfig() Config {
	return Config{
		VerificationEnabled:     true,
		VerificationTokenLength: DefaultVerificationTokenLength,
		SessionTokenLength:      DefaultSessionTokenLength,
		VerificationExpiry:      DefaultVerificationExpiry,
	}
}

// withDefaults fills in zero values so a partially populated Config is
// still usable.
func (c Config) withDefaults() Config {
	if c.VerificationTokenLength <= 0 {
		c.VerificationTokenLength = DefaultVerificationTokenLength
	}
	if c.SessionTokenLength <= 0 {
		c.SessionTokenLength = DefaultSessionTokenLength
	}
	if c.VerificationExpiry <= 0 {
		c.VerificationExpiry = DefaultVerificationExpiry
	}
	return c
}
