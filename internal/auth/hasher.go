// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides credential hashing and verification. Hashing
// is CPU-bound and every call is independent; implementations must not
// serialize calls behind a shared lock.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password. The salt is
	// embedded in the returned artifact so Verify is self-contained.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an
	// error on a malformed artifact. A malformed stored artifact is an
	// internal-invariant violation, never a user-facing outcome.
	Verify(password, hash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id in PHC string
// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password with a fresh random salt.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify checks if the password matches the encoded hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	salt, expected, memory, time, threads, err := parseArtifact(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// parseArtifact decodes a PHC-format argon2id artifact into its salt,
// key and cost parameters.
func parseArtifact(encoded string) (salt, key []byte, memory, time uint32, threads uint8, err error) {
	fail := func(e error) ([]byte, []byte, uint32, uint32, uint8, error) {
		return nil, nil, 0, 0, 0, e
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return fail(oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format"))
	}
	if parts[1] != "argon2id" {
		return fail(oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1]))
	}

	var version int
	if _, e := fmt.Sscanf(parts[2], "v=%d", &version); e != nil {
		return fail(oops.Code("AUTH_INVALID_HASH").Wrap(e))
	}

	var m, t, p uint32
	if _, e := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); e != nil {
		return fail(oops.Code("AUTH_INVALID_HASH").Wrap(e))
	}
	// Threads must fit in uint8 to prevent silent truncation.
	if p == 0 || p > 255 {
		return fail(oops.Code("AUTH_INVALID_HASH").Errorf("invalid parallelism: %d", p))
	}

	salt, e := base64.RawStdEncoding.DecodeString(parts[4])
	if e != nil {
		return fail(oops.Code("AUTH_INVALID_HASH").Wrap(e))
	}
	key, e = base64.RawStdEncoding.DecodeString(parts[5])
	if e != nil {
		return fail(oops.Code("AUTH_INVALID_HASH").Wrap(e))
	}
	if len(key) == 0 || len(key) > 1<<30 {
		return fail(oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", len(key)))
	}

	return salt, key, m, t, uint8(p), nil
}
