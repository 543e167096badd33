// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import "errors"

// Sentinel errors forming the authentication error taxonomy. Callers
// branch with errors.Is; the oops codes wrapping them carry structured
// context for logging and transport mapping.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail is returned when a normalised email is already
	// claimed by another account.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrInvalidToken is returned when a presented verification or
	// session token does not match.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when an email-change token is
	// presented after its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrForbidden is returned when a session operation targets a
	// session owned by a different account.
	ErrForbidden = errors.New("forbidden")
)
