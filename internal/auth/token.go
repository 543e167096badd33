// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/samber/oops"
)

// tokenAlphabet is the URL-safe alphabet tokens are drawn from.
// Exactly 64 characters, so a masked random byte indexes it without
// modulo bias.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// GenerateToken produces a cryptographically random token of the given
// length over the URL-safe alphabet. A 32-character token carries 192
// bits of entropy.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", oops.Code("TOKEN_INVALID_LENGTH").Errorf("token length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", length).
			Wrap(err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = tokenAlphabet[b&63]
	}
	return string(out), nil
}

// HashToken computes the SHA256 hash of a bearer token. Only the hash
// is ever persisted; the plaintext stays client-side.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TokensEqual compares two tokens in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
