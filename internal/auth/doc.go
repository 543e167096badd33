// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package auth provides the account and session authentication core.
//
// # Domain Types
//
// Domain types (Account, Session, Verification) should be created
// using their respective constructors:
//   - NewAccount - creates an Account with normalised email and hashed password
//   - NewSession - creates a Session bound to an owning account
//   - Unverified/VerifiedState/Moving - construct Verification states
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Service
//
// Service is the facade external callers invoke: account creation,
// email verification, login, session listing and revocation. It owns no
// state beyond references to the two repositories, the hasher, the
// mailer and its configuration, so it is safe for concurrent use.
//
// All durable state lives in the repositories; the database is the sole
// synchronization point. Email uniqueness is enforced by a unique index
// on the normalised email, so a racing create and email-change commit
// resolve with exactly one winner.
package auth
