// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
// The verification variant is persisted as a status column plus
// nullable payload columns; the unique index on email_normalised
// enforces the global email-uniqueness invariant at write time.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, email_normalised, password_hash,
	       verification_status, verification_token, verification_new_email, verification_expires_at,
	       created_at, updated_at`

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	token, newEmail, expiresAt := verificationColumns(account.Verification)

	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (
			id, email, email_normalised, password_hash,
			verification_status, verification_token, verification_new_email, verification_expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		account.ID.String(),
		account.Email,
		account.EmailNormalised,
		account.PasswordHash,
		string(account.Verification.Status),
		token,
		newEmail,
		expiresAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ACCOUNT_DUPLICATE_EMAIL").
				With("email_normalised", account.EmailNormalised).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByNormalisedEmail retrieves an account by its normalised email.
func (r *AccountRepository) GetByNormalisedEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email_normalised = $1
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by normalised email").
			Wrap(err)
	}
	return account, nil
}

// GetByVerificationToken retrieves the single account whose pending
// verification token equals the given token. The partial index on
// verification_token makes this a point lookup, not a scan.
func (r *AccountRepository) GetByVerificationToken(ctx context.Context, token string) (*auth.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE verification_token = $1
	`, token)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_TOKEN_FAILED").
			With("operation", "get account by verification token").
			Wrap(err)
	}
	return account, nil
}

// UpdateVerification atomically replaces the verification state of an
// account without touching its email.
func (r *AccountRepository) UpdateVerification(ctx context.Context, id ulid.ULID, v auth.Verification) error {
	token, newEmail, expiresAt := verificationColumns(v)

	result, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET verification_status = $2,
		    verification_token = $3,
		    verification_new_email = $4,
		    verification_expires_at = $5,
		    updated_at = $6
		WHERE id = $1
	`, id.String(), string(v.Status), token, newEmail, expiresAt, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_VERIFICATION_FAILED").
			With("operation", "update verification").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// CommitEmail installs a confirmed email together with the resulting
// verification state in a single row update. The unique index rejects
// the write when the normalised form was claimed by another account in
// the interim, leaving the row unchanged.
func (r *AccountRepository) CommitEmail(ctx context.Context, id ulid.ULID, email, normalised string, v auth.Verification) error {
	token, newEmail, expiresAt := verificationColumns(v)

	result, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET email = $2,
		    email_normalised = $3,
		    verification_status = $4,
		    verification_token = $5,
		    verification_new_email = $6,
		    verification_expires_at = $7,
		    updated_at = $8
		WHERE id = $1
	`, id.String(), email, normalised, string(v.Status), token, newEmail, expiresAt, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ACCOUNT_DUPLICATE_EMAIL").
				With("email_normalised", normalised).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("ACCOUNT_COMMIT_EMAIL_FAILED").
			With("operation", "commit email").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces only the password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordHash, time.Now())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// verificationColumns flattens a Verification variant into its
// nullable column values.
func verificationColumns(v auth.Verification) (token, newEmail *string, expiresAt *time.Time) {
	if v.Token != "" {
		token = &v.Token
	}
	if v.NewEmail != "" {
		newEmail = &v.NewEmail
	}
	if !v.ExpiresAt.IsZero() {
		expiresAt = &v.ExpiresAt
	}
	return token, newEmail, expiresAt
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr      string
		email      string
		normalised string
		hash       string
		status     string
		token      *string
		newEmail   *string
		expiresAt  *time.Time
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&idStr, &email, &normalised, &hash, &status, &token, &newEmail, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}

	v := auth.Verification{Status: auth.VerificationStatus(status)}
	if token != nil {
		v.Token = *token
	}
	if newEmail != nil {
		v.NewEmail = *newEmail
	}
	if expiresAt != nil {
		v.ExpiresAt = *expiresAt
	}

	return &auth.Account{
		ID:              id,
		Email:           email,
		EmailNormalised: normalised,
		PasswordHash:    hash,
		Verification:    v,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
