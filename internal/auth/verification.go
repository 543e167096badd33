// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"time"

	"github.com/samber/oops"
)

// VerificationStatus discriminates the Verification variants.
type VerificationStatus string

// Verification lifecycle states.
const (
	// StatusUnverified: account created, awaiting initial email confirmation.
	StatusUnverified VerificationStatus = "unverified"

	// StatusVerified: the account's current email is confirmed.
	StatusVerified VerificationStatus = "verified"

	// StatusMoving: an email change is pending; the current email stays
	// authoritative until the new one is confirmed.
	StatusMoving VerificationStatus = "moving"
)

// Verification is a tagged variant over the email-verification
// lifecycle. Which fields are meaningful depends on Status:
//
//	Unverified: Token
//	Verified:   no payload
//	Moving:     NewEmail, Token, ExpiresAt
//
// Every transition site switches exhaustively on Status so illegal
// transitions fail loudly instead of silently corrupting state.
type Verification struct {
	Status    VerificationStatus
	Token     string
	NewEmail  string
	ExpiresAt time.Time
}

// Unverified constructs the initial pending state with its confirmation token.
func Unverified(token string) Verification {
	return Verification{Status: StatusUnverified, Token: token}
}

// VerifiedState constructs the confirmed, terminal-stable state.
func VerifiedState() Verification {
	return Verification{Status: StatusVerified}
}

// Moving constructs the pending email-change state.
func Moving(newEmail, token string, expiresAt time.Time) Verification {
	return Verification{Status: StatusMoving, NewEmail: newEmail, Token: token, ExpiresAt: expiresAt}
}

// IsVerified reports whether the account's current email is confirmed.
// A Moving account keeps its verified standing for login purposes.
func (v Verification) IsVerified() bool {
	return v.Status == StatusVerified || v.Status == StatusMoving
}

// RequestEmailChange transitions Verified -> Moving. A re-request from
// Moving supersedes the pending change with the new address, token and
// expiry, so a lost or expired token never wedges the account. The
// returned state carries the supplied token and an expiry of
// now+window. The caller is responsible for the password re-proof and
// uniqueness check before invoking this.
func (v Verification) RequestEmailChange(newEmail, token string, now time.Time, window time.Duration) (Verification, error) {
	switch v.Status {
	case StatusVerified, StatusMoving:
		return Moving(newEmail, token, now.Add(window)), nil
	case StatusUnverified:
		return Verification{}, oops.Code("VERIFICATION_INVALID_STATE").
			With("status", string(v.Status)).
			Errorf("cannot change email before the account is verified")
	default:
		return Verification{}, oops.Code("VERIFICATION_CORRUPT_STATE").
			With("status", string(v.Status)).
			Errorf("unknown verification status")
	}
}

// Confirm drives Unverified -> Verified or Moving -> Verified.
//
// currentEmail is the account's email at the time of the call; on
// success the returned committedEmail is the address that should now
// become canonical (the existing one for Unverified, NewEmail for
// Moving) together with the resulting Verified state.
//
// A mismatched token fails with ErrInvalidToken and an expired Moving
// token with ErrExpiredToken; in both cases the stored state must be
// left untouched by the caller. Confirming an already-Verified account
// fails with ErrInvalidToken: there is no pending token to match.
func (v Verification) Confirm(currentEmail, presented string, now time.Time) (committedEmail string, next Verification, err error) {
	switch v.Status {
	case StatusUnverified:
		if !TokensEqual(presented, v.Token) {
			return "", Verification{}, oops.Code("VERIFICATION_INVALID_TOKEN").Wrap(ErrInvalidToken)
		}
		return currentEmail, VerifiedState(), nil

	case StatusMoving:
		if !TokensEqual(presented, v.Token) {
			return "", Verification{}, oops.Code("VERIFICATION_INVALID_TOKEN").Wrap(ErrInvalidToken)
		}
		if now.After(v.ExpiresAt) {
			return "", Verification{}, oops.Code("VERIFICATION_TOKEN_EXPIRED").
				With("expired_at", v.ExpiresAt).
				Wrap(ErrExpiredToken)
		}
		return v.NewEmail, VerifiedState(), nil

	case StatusVerified:
		return "", Verification{}, oops.Code("VERIFICATION_INVALID_TOKEN").
			With("status", string(v.Status)).
			Wrap(ErrInvalidToken)

	default:
		return "", Verification{}, oops.Code("VERIFICATION_CORRUPT_STATE").
			With("status", string(v.Status)).
			Errorf("unknown verification status")
	}
}
