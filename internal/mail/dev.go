// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package mail

import (
	"context"
	"log/slog"

	"github.com/authgate/authgate/internal/auth"
)

// DevMailer logs verification tokens instead of sending them. For
// local development only; tokens in logs are a credential leak in any
// other environment.
type DevMailer struct {
	logger *slog.Logger
}

// NewDevMailer creates a logging mailer. A nil logger uses the default.
func NewDevMailer(logger *slog.Logger) *DevMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DevMailer{logger: logger}
}

// SendVerification logs the token.
func (m *DevMailer) SendVerification(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "verification email (dev mode, not sent)",
		"email", email,
		"token", token,
	)
	return nil
}

// Compile-time interface check.
var _ auth.Mailer = (*DevMailer)(nil)
