// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import "context"

// Mailer is the outbound email collaborator. The core hands it a
// recipient and a plaintext verification token; transport, templating
// and delivery are its concern entirely.
type Mailer interface {
	// SendVerification delivers a verification token to the address.
	// Failing to deliver fails the surrounding operation.
	SendVerification(ctx context.Context, email, token string) error
}
