// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Account represents a registered user identity.
type Account struct {
	ID ulid.ULID

	// Email is the address as the user supplied it. EmailNormalised is
	// the canonical form used solely for uniqueness comparison; a
	// unique index on it backs the global invariant that no two
	// accounts ever claim the same normalised address.
	Email           string
	EmailNormalised string

	PasswordHash string
	Verification Verification

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount creates a validated Account in the given initial
// verification state. The password hash must already be produced by a
// PasswordHasher; plaintext never reaches this constructor.
func NewAccount(email, passwordHash string, verification Verification) (*Account, error) {
	if email == "" {
		return nil, oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &Account{
		ID:              ulid.Make(),
		Email:           email,
		EmailNormalised: NormaliseEmail(email),
		PasswordHash:    passwordHash,
		Verification:    verification,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NormaliseEmail canonicalises an email address for uniqueness
// comparison: surrounding whitespace is trimmed, the address is
// lowercased and a "+tag" subaddress is stripped from the local part.
// The stored Email keeps the user-supplied form.
func NormaliseEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	local, domain := email[:at], email[at+1:]
	if plus := strings.Index(local, "+"); plus >= 0 {
		local = local[:plus]
	}
	return local + "@" + domain
}

// AccountRepository manages account persistence. Implementations must
// provide per-row atomic writes and enforce normalised-email
// uniqueness at write time, surfacing violations as ErrDuplicateEmail.
type AccountRepository interface {
	// Create stores a new account. Fails with ErrDuplicateEmail when
	// the normalised email is already claimed.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByNormalisedEmail retrieves an account by its normalised email.
	GetByNormalisedEmail(ctx context.Context, email string) (*Account, error)

	// GetByVerificationToken retrieves the single account whose pending
	// verification token equals the given token.
	GetByVerificationToken(ctx context.Context, token string) (*Account, error)

	// UpdateVerification atomically replaces the verification state of
	// an account without touching its email.
	UpdateVerification(ctx context.Context, id ulid.ULID, v Verification) error

	// CommitEmail atomically installs a confirmed email together with
	// the resulting verification state. Fails with ErrDuplicateEmail
	// when the normalised form was claimed by another account in the
	// interim, leaving the row unchanged.
	CommitEmail(ctx context.Context, id ulid.ULID, email, normalised string, v Verification) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}
