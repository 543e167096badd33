// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailer(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		m, err := NewSMTPMailer("smtp.example.com", 587, "user", "pass", "noreply@example.com")
		require.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("open relay without credentials", func(t *testing.T) {
		m, err := NewSMTPMailer("smtp.example.com", 25, "", "", "noreply@example.com")
		require.NoError(t, err)
		assert.Nil(t, m.auth)
	})

	t.Run("requires host", func(t *testing.T) {
		_, err := NewSMTPMailer("", 587, "", "", "noreply@example.com")
		assert.Error(t, err)
	})

	t.Run("rejects invalid port", func(t *testing.T) {
		_, err := NewSMTPMailer("smtp.example.com", 0, "", "", "noreply@example.com")
		assert.Error(t, err)

		_, err = NewSMTPMailer("smtp.example.com", 70000, "", "", "noreply@example.com")
		assert.Error(t, err)
	})

	t.Run("rejects invalid sender", func(t *testing.T) {
		_, err := NewSMTPMailer("smtp.example.com", 587, "", "", "")
		assert.Error(t, err)

		_, err = NewSMTPMailer("smtp.example.com", 587, "", "", "not-an-address")
		assert.Error(t, err)
	})
}

func TestSMTPMailer_SendVerification_CancelledContext(t *testing.T) {
	m, err := NewSMTPMailer("smtp.example.com", 587, "", "", "noreply@example.com")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = m.SendVerification(ctx, "user@example.com", "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSMTPMailer_BuildMessage(t *testing.T) {
	m, err := NewSMTPMailer("smtp.example.com", 587, "", "", "noreply@example.com")
	require.NoError(t, err)

	msg := string(m.buildMessage("user@example.com", "the-token"))

	assert.Contains(t, msg, "From: noreply@example.com\r\n")
	assert.Contains(t, msg, "To: user@example.com\r\n")
	assert.Contains(t, msg, "Subject: Verify your email address\r\n")
	assert.Contains(t, msg, "the-token")
	assert.Contains(t, msg, "\r\n\r\n", "headers must be separated from the body")
}
