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

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, friendly_name, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.TokenHash,
		session.FriendlyName,
		session.CreatedAt,
		session.LastSeenAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash resolves a bearer token hash to its session.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, friendly_name, created_at, last_seen_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	return session, nil
}

// GetByUser retrieves all sessions owned by an account, newest first.
func (r *SessionRepository) GetByUser(ctx context.Context, userID ulid.ULID) ([]*auth.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, token_hash, friendly_name, created_at, last_seen_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_USER_FAILED").
			With("operation", "get sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var sessions []*auth.Session
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, oops.Code("SESSION_SCAN_FAILED").
				With("operation", "scan session row").
				Wrap(err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("SESSION_ROWS_ERROR").
			With("operation", "iterate session rows").
			Wrap(err)
	}

	return sessions, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (r *SessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	result, err := r.db.Exec(ctx, `
		UPDATE sessions SET last_seen_at = $2
		WHERE id = $1
	`, id.String(), lastSeen)
	if err != nil {
		return oops.Code("SESSION_UPDATE_LAST_SEEN_FAILED").
			With("operation", "update last_seen_at").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a session by ID regardless of owner.
func (r *SessionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteOwned removes a session only if it belongs to the given
// account. A session under another account fails with ErrForbidden and
// the record is left in place; an absent session fails with
// ErrNotFound.
func (r *SessionRepository) DeleteOwned(ctx context.Context, id, userID ulid.ULID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete owned session").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	// Nothing deleted: distinguish a foreign session from a missing one.
	var exists bool
	err = r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)
	`, id.String()).Scan(&exists)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "check session ownership").
			With("id", id.String()).
			Wrap(err)
	}
	if exists {
		return oops.Code("SESSION_FORBIDDEN").
			With("id", id.String()).
			With("user_id", userID.String()).
			Wrap(auth.ErrForbidden)
	}
	return oops.Code("SESSION_NOT_FOUND").
		With("id", id.String()).
		Wrap(auth.ErrNotFound)
}

// DeleteByUser removes all sessions for an account and returns the count.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1
	`, userID.String())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_BY_USER_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanSession scans a single row into a Session.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr        string
		userIDStr    string
		tokenHash    string
		friendlyName string
		createdAt    time.Time
		lastSeenAt   time.Time
	)

	err := row.Scan(&idStr, &userIDStr, &tokenHash, &friendlyName, &createdAt, &lastSeenAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session").
			Wrap(err)
	}

	return buildSession(idStr, userIDStr, tokenHash, friendlyName, createdAt, lastSeenAt)
}

// scanSessionRow scans a row from a rows iterator into a Session.
func scanSessionRow(rows pgx.Rows) (*auth.Session, error) {
	var (
		idStr        string
		userIDStr    string
		tokenHash    string
		friendlyName string
		createdAt    time.Time
		lastSeenAt   time.Time
	)

	if err := rows.Scan(&idStr, &userIDStr, &tokenHash, &friendlyName, &createdAt, &lastSeenAt); err != nil {
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session row").
			Wrap(err)
	}

	return buildSession(idStr, userIDStr, tokenHash, friendlyName, createdAt, lastSeenAt)
}

// buildSession constructs a Session from scanned values.
func buildSession(idStr, userIDStr, tokenHash, friendlyName string, createdAt, lastSeenAt time.Time) (*auth.Session, error) {
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").
			With("operation", "parse session id").
			With("id", idStr).
			Wrap(err)
	}

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_USER_ID").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}

	return &auth.Session{
		ID:           id,
		UserID:       userID,
		TokenHash:    tokenHash,
		FriendlyName: friendlyName,
		CreatedAt:    createdAt,
		LastSeenAt:   lastSeenAt,
	}, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
