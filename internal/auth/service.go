// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/observability"
)

// Service is the authentication facade. It validates invariants,
// delegates persistence to the account and session repositories, uses
// the hasher and token generator for cryptographic primitives, and
// drives the verification state machine on account records. It holds
// no mutable state of its own and is safe for concurrent use.
type Service struct {
	accounts AccountRepository
	sessions SessionRepository
	hasher   PasswordHasher
	mailer   Mailer
	cfg      Config
	logger   *slog.Logger
}

// NewService creates a new Service. All dependencies are required.
func NewService(accounts AccountRepository, sessions SessionRepository, hasher PasswordHasher, mailer Mailer, cfg Config) (*Service, error) {
	return NewServiceWithLogger(accounts, sessions, hasher, mailer, cfg, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(accounts AccountRepository, sessions SessionRepository, hasher PasswordHasher, mailer Mailer, cfg Config, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("accounts repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("password hasher is required")
	}
	if mailer == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("mailer is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("logger is required")
	}

	return &Service{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		mailer:   mailer,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}, nil
}

// dummyPasswordHash is used when an account doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CreateAccount registers a new account and, when verification is
// enabled, dispatches the confirmation token through the mailer. Only
// the new account's ID is returned; neither the password nor the token
// ever leave the core.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (ulid.ULID, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return ulid.ULID{}, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	var verification Verification
	var token string
	if s.cfg.VerificationEnabled {
		token, err = GenerateToken(s.cfg.VerificationTokenLength)
		if err != nil {
			return ulid.ULID{}, oops.Code("ACCOUNT_CREATE_FAILED").
				With("operation", "generate verification token").
				Wrap(err)
		}
		verification = Unverified(token)
	} else {
		verification = VerifiedState()
	}

	account, err := NewAccount(email, passwordHash, verification)
	if err != nil {
		return ulid.ULID{}, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return ulid.ULID{}, oops.Code("ACCOUNT_DUPLICATE_EMAIL").
				With("email_normalised", account.EmailNormalised).
				Wrap(ErrDuplicateEmail)
		}
		return ulid.ULID{}, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "persist account").
			Wrap(err)
	}

	observability.RecordAccountCreated()
	s.logger.InfoContext(ctx, "account created",
		"account_id", account.ID.String(),
		"verification_enabled", s.cfg.VerificationEnabled,
	)

	if s.cfg.VerificationEnabled {
		if err := s.mailer.SendVerification(ctx, email, token); err != nil {
			// The account exists but the token never left; the owner
			// must re-request verification.
			return ulid.ULID{}, oops.Code("ACCOUNT_EMAIL_SEND_FAILED").
				With("account_id", account.ID.String()).
				Wrap(err)
		}
	}

	return account.ID, nil
}

// VerifyAccount confirms ownership of an email address. The code must
// match exactly one pending account, whether the account is awaiting
// its initial confirmation or completing an email change.
func (s *Service) VerifyAccount(ctx context.Context, code string) error {
	if code == "" {
		return oops.Code("VERIFICATION_INVALID_TOKEN").Wrap(ErrInvalidToken)
	}

	account, err := s.accounts.GetByVerificationToken(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			observability.RecordVerification("invalid")
			return oops.Code("VERIFICATION_INVALID_TOKEN").Wrap(ErrInvalidToken)
		}
		return oops.Code("VERIFICATION_FAILED").
			With("operation", "get account by verification token").
			Wrap(err)
	}

	committedEmail, next, err := account.Verification.Confirm(account.Email, code, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrExpiredToken):
			observability.RecordVerification("expired")
		case errors.Is(err, ErrInvalidToken):
			observability.RecordVerification("invalid")
		}
		return err
	}

	// The commit itself must respect the global uniqueness invariant:
	// the new address may have been claimed while the token was in
	// flight, in which case the database rejects it.
	err = s.accounts.CommitEmail(ctx, account.ID, committedEmail, NormaliseEmail(committedEmail), next)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return oops.Code("ACCOUNT_DUPLICATE_EMAIL").
				With("account_id", account.ID.String()).
				Wrap(ErrDuplicateEmail)
		}
		return oops.Code("VERIFICATION_FAILED").
			With("operation", "commit email").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	observability.RecordVerification("confirmed")
	s.logger.InfoContext(ctx, "account verified", "account_id", account.ID.String())
	return nil
}

// Login authenticates an account by email and password and creates a
// session. Unknown email and wrong password fail identically with
// ErrInvalidCredentials, and the hasher runs on both paths to keep
// response time flat. Unverified accounts may log in; only the
// email-change flow requires a confirmed address.
// Returns the session and its plaintext bearer token.
func (s *Service) Login(ctx context.Context, email, password, friendlyName string) (*Session, string, error) {
	account, lookupErr := s.accounts.GetByNormalisedEmail(ctx, NormaliseEmail(email))

	targetHash := dummyPasswordHash
	accountExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// For dummy hash verification errors, just treat as invalid.
		if !accountExists {
			observability.RecordLogin("failure")
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !accountExists || !valid {
		observability.RecordLogin("failure")
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	session, token, err := s.CreateSession(ctx, account, friendlyName)
	if err != nil {
		return nil, "", err
	}

	observability.RecordLogin("success")
	return session, token, nil
}

// CreateSession mints a session for an already-authenticated account.
// The plaintext bearer token is returned here and never again.
func (s *Service) CreateSession(ctx context.Context, account *Account, friendlyName string) (*Session, string, error) {
	token, err := GenerateToken(s.cfg.SessionTokenLength)
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(account.ID, HashToken(token), friendlyName)
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "build session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "session created",
		"account_id", account.ID.String(),
		"session_id", session.ID.String(),
	)
	return session, token, nil
}

// Authenticate resolves a bearer token to its session. This is the
// explicit capability check handlers invoke at the top of each
// authenticated request; an absent or unknown token fails with
// ErrInvalidToken rather than a store error.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, oops.Code("AUTH_SESSION_INVALID").Wrap(ErrInvalidToken)
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_SESSION_INVALID").Wrap(ErrInvalidToken)
		}
		return nil, oops.Code("AUTH_SESSION_LOOKUP_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	// Update last seen timestamp (best effort, authentication succeeds regardless).
	_ = s.sessions.UpdateLastSeen(ctx, session.ID, time.Now()) //nolint:errcheck

	return session, nil
}

// VerifyPassword re-authenticates an already-logged-in user before a
// sensitive operation. Fails with ErrInvalidCredentials on mismatch.
func (s *Service) VerifyPassword(ctx context.Context, session *Session, password string) error {
	account, err := s.accounts.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return oops.Code("AUTH_REAUTH_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_REAUTH_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}
	return nil
}

// CheckEmailInUse returns the normalised form of the email, or
// ErrDuplicateEmail when an account already claims it.
func (s *Service) CheckEmailInUse(ctx context.Context, email string) (string, error) {
	normalised := NormaliseEmail(email)

	_, err := s.accounts.GetByNormalisedEmail(ctx, normalised)
	if err == nil {
		return "", oops.Code("ACCOUNT_DUPLICATE_EMAIL").
			With("email_normalised", normalised).
			Wrap(ErrDuplicateEmail)
	}
	if !errors.Is(err, ErrNotFound) {
		return "", oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}
	return normalised, nil
}

// RequestEmailChange starts the email-change handshake for the
// session's account: the password is re-proven, the new address is
// checked for uniqueness, the Moving state is persisted and the token
// is mailed. A re-request while a change is pending supersedes it with
// a fresh token and expiry. The current email stays authoritative
// until the token is confirmed. With verification disabled the new
// address commits immediately.
func (s *Service) RequestEmailChange(ctx context.Context, session *Session, password, newEmail string) error {
	if err := s.VerifyPassword(ctx, session, password); err != nil {
		return err
	}

	normalised, err := s.CheckEmailInUse(ctx, newEmail)
	if err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, session.UserID)
	if err != nil {
		return oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	if !s.cfg.VerificationEnabled {
		err := s.accounts.CommitEmail(ctx, account.ID, newEmail, normalised, VerifiedState())
		if errors.Is(err, ErrDuplicateEmail) {
			return oops.Code("ACCOUNT_DUPLICATE_EMAIL").
				With("email_normalised", normalised).
				Wrap(ErrDuplicateEmail)
		}
		return err
	}

	token, err := GenerateToken(s.cfg.VerificationTokenLength)
	if err != nil {
		return oops.Code("EMAIL_CHANGE_FAILED").
			With("operation", "generate verification token").
			Wrap(err)
	}

	next, err := account.Verification.RequestEmailChange(newEmail, token, time.Now(), s.cfg.VerificationExpiry)
	if err != nil {
		return err
	}

	// Persist before mailing, as on the create path: a mailed token
	// that never reached the store would be dead on arrival.
	if err := s.accounts.UpdateVerification(ctx, account.ID, next); err != nil {
		return oops.Code("EMAIL_CHANGE_FAILED").
			With("operation", "persist verification state").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	if err := s.mailer.SendVerification(ctx, newEmail, token); err != nil {
		return oops.Code("EMAIL_CHANGE_FAILED").
			With("operation", "send verification email").
			With("account_id", account.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "email change requested", "account_id", account.ID.String())
	return nil
}

// ChangePassword replaces the account's password after re-proving the
// current one. Existing sessions stay valid.
func (s *Service) ChangePassword(ctx context.Context, session *Session, current, newPassword string) error {
	if err := s.VerifyPassword(ctx, session, current); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("PASSWORD_CHANGE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	if err := s.accounts.UpdatePassword(ctx, session.UserID, passwordHash); err != nil {
		return oops.Code("PASSWORD_CHANGE_FAILED").
			With("operation", "update password").
			With("account_id", session.UserID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password changed", "account_id", session.UserID.String())
	return nil
}

// FetchAllSessions lists the metadata of every session owned by the
// session's account. Token hashes never leave the store layer.
func (s *Service) FetchAllSessions(ctx context.Context, session *Session) ([]SessionInfo, error) {
	sessions, err := s.sessions.GetByUser(ctx, session.UserID)
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("operation", "get sessions by user").
			With("account_id", session.UserID.String()).
			Wrap(err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}
	return infos, nil
}

// DeauthSession revokes the named session. Revoking the caller's own
// session is an ordinary logout; a session owned by a different
// account fails with ErrForbidden and the record is left in place.
func (s *Service) DeauthSession(ctx context.Context, session *Session, targetID ulid.ULID) error {
	err := s.sessions.DeleteOwned(ctx, targetID, session.UserID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return oops.Code("SESSION_FORBIDDEN").
				With("session_id", targetID.String()).
				Wrap(ErrForbidden)
		}
		if errors.Is(err, ErrNotFound) {
			return oops.Code("SESSION_NOT_FOUND").
				With("session_id", targetID.String()).
				Wrap(ErrNotFound)
		}
		return oops.Code("SESSION_REVOKE_FAILED").
			With("operation", "delete session").
			With("session_id", targetID.String()).
			Wrap(err)
	}

	observability.RecordSessionRevoked()
	s.logger.InfoContext(ctx, "session revoked",
		"account_id", session.UserID.String(),
		"session_id", targetID.String(),
	)
	return nil
}
