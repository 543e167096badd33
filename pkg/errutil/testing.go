// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode fails the test unless err is an oops error carrying
// the given code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "want an oops error with code %q, got %T: %v", code, err, err)
	assert.Equal(t, code, oopsErr.Code())
}

// AssertErrorContext fails the test unless err is an oops error whose
// context map holds value under key.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()

	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "want an oops error with context %q, got %T: %v", key, err, err)

	errCtx := oopsErr.Context()
	require.Contains(t, errCtx, key)
	assert.Equal(t, value, errCtx[key])
}
