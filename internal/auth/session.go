// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session represents one authenticated client or device. The bearer
// token is never stored; only its SHA256 hash is persisted, and the
// plaintext is returned exactly once at creation. Sessions carry no
// expiry: revocation and logout are the only ends of life.
type Session struct {
	ID           ulid.ULID
	UserID       ulid.ULID
	TokenHash    string
	FriendlyName string
	CreatedAt    time.Time
	LastSeenAt   time.Time
}

// SessionInfo is the metadata exposed when listing sessions. The token
// hash deliberately never leaves the store layer.
type SessionInfo struct {
	ID           ulid.ULID `json:"id"`
	FriendlyName string    `json:"friendly_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// NewSession creates a validated Session owned by the given account.
func NewSession(userID ulid.ULID, tokenHash, friendlyName string) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}

	now := time.Now()
	return &Session{
		ID:           ulid.Make(),
		UserID:       userID,
		TokenHash:    tokenHash,
		FriendlyName: friendlyName,
		CreatedAt:    now,
		LastSeenAt:   now,
	}, nil
}

// Info returns the listing metadata for the session.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:           s.ID,
		FriendlyName: s.FriendlyName,
		CreatedAt:    s.CreatedAt,
		LastSeenAt:   s.LastSeenAt,
	}
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash resolves a bearer token hash to its session.
	// Returns ErrNotFound when no session matches, so callers can
	// uniformly map absence to an authorization failure.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// GetByUser retrieves all sessions owned by an account, newest first.
	GetByUser(ctx context.Context, userID ulid.ULID) ([]*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// Delete removes a session by ID regardless of owner.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteOwned removes a session only if it belongs to the given
	// account. Fails with ErrForbidden when the session exists under a
	// different account and ErrNotFound when it does not exist, so
	// cross-account revocation can never silently no-op.
	DeleteOwned(ctx context.Context, id, userID ulid.ULID) error

	// DeleteByUser removes all sessions for an account and returns the
	// count of deleted records.
	DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error)
}
