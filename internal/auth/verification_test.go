// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func TestVerificationIsVerified(t *testing.T) {
	assert.False(t, auth.Unverified("tok").IsVerified())
	assert.True(t, auth.VerifiedState().IsVerified())

	// A Moving account keeps its verified standing until the change
	// commits.
	moving := auth.Moving("new@example.com", "tok", time.Now().Add(time.Hour))
	assert.True(t, moving.IsVerified())
}

func TestVerificationRequestEmailChange(t *testing.T) {
	now := time.Now()
	window := 24 * time.Hour

	t.Run("verified transitions to moving", func(t *testing.T) {
		next, err := auth.VerifiedState().RequestEmailChange("new@example.com", "tok", now, window)
		require.NoError(t, err)

		assert.Equal(t, auth.StatusMoving, next.Status)
		assert.Equal(t, "new@example.com", next.NewEmail)
		assert.Equal(t, "tok", next.Token)
		assert.Equal(t, now.Add(window), next.ExpiresAt)
	})

	t.Run("unverified cannot start an email change", func(t *testing.T) {
		_, err := auth.Unverified("tok").RequestEmailChange("new@example.com", "tok2", now, window)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "before the account is verified")
	})

	t.Run("moving re-request supersedes the pending change", func(t *testing.T) {
		moving := auth.Moving("first@example.com", "tok", now.Add(window))

		next, err := moving.RequestEmailChange("second@example.com", "tok2", now, window)
		require.NoError(t, err)
		assert.Equal(t, auth.StatusMoving, next.Status)
		assert.Equal(t, "second@example.com", next.NewEmail)
		assert.Equal(t, "tok2", next.Token)
		assert.Equal(t, now.Add(window), next.ExpiresAt)
	})

	t.Run("expired move can be re-requested", func(t *testing.T) {
		// A lost or expired token must not wedge the account: the old
		// token stays dead, the fresh one confirms.
		stale := auth.Moving("new@example.com", "old-tok", now.Add(-time.Hour))
		_, _, err := stale.Confirm("old@example.com", "old-tok", now)
		require.ErrorIs(t, err, auth.ErrExpiredToken)

		next, err := stale.RequestEmailChange("new@example.com", "fresh-tok", now, window)
		require.NoError(t, err)

		email, committed, err := next.Confirm("old@example.com", "fresh-tok", now)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", email)
		assert.Equal(t, auth.StatusVerified, committed.Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		corrupt := auth.Verification{Status: "bogus"}
		_, err := corrupt.RequestEmailChange("new@example.com", "tok", now, window)
		assert.Error(t, err)
	})
}

func TestVerificationConfirm(t *testing.T) {
	now := time.Now()

	t.Run("unverified confirms with matching token", func(t *testing.T) {
		v := auth.Unverified("the-token")

		email, next, err := v.Confirm("user@example.com", "the-token", now)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", email)
		assert.Equal(t, auth.StatusVerified, next.Status)
	})

	t.Run("unverified rejects wrong token", func(t *testing.T) {
		v := auth.Unverified("the-token")

		_, _, err := v.Confirm("user@example.com", "wrong", now)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("moving commits the new email", func(t *testing.T) {
		v := auth.Moving("new@example.com", "the-token", now.Add(time.Hour))

		email, next, err := v.Confirm("old@example.com", "the-token", now)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", email)
		assert.Equal(t, auth.StatusVerified, next.Status)
	})

	t.Run("moving rejects wrong token", func(t *testing.T) {
		v := auth.Moving("new@example.com", "the-token", now.Add(time.Hour))

		_, _, err := v.Confirm("old@example.com", "wrong", now)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("moving rejects expired token", func(t *testing.T) {
		v := auth.Moving("new@example.com", "the-token", now.Add(-time.Minute))

		_, _, err := v.Confirm("old@example.com", "the-token", now)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong token reported before expiry", func(t *testing.T) {
		// An expired state must not leak through the error when the
		// token itself is wrong.
		v := auth.Moving("new@example.com", "the-token", now.Add(-time.Minute))

		_, _, err := v.Confirm("old@example.com", "wrong", now)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("token valid exactly at expiry instant", func(t *testing.T) {
		v := auth.Moving("new@example.com", "the-token", now)

		email, _, err := v.Confirm("old@example.com", "the-token", now)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", email)
	})

	t.Run("already verified has no token to match", func(t *testing.T) {
		_, _, err := auth.VerifiedState().Confirm("user@example.com", "anything", now)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		corrupt := auth.Verification{Status: "bogus"}
		_, _, err := corrupt.Confirm("user@example.com", "tok", now)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidToken)
	})
}
