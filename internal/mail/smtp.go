// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package mail implements the outbound email collaborator.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// SMTPMailer delivers verification tokens over plain SMTP with
// STARTTLS negotiated by the server. It is safe for concurrent use;
// each send opens its own connection.
type SMTPMailer struct {
	host   string
	port   int
	sender string
	auth   smtp.Auth
}

// NewSMTPMailer creates an SMTP-backed mailer. Host, port and sender
// are required; username and password may be empty for an open relay.
func NewSMTPMailer(host string, port int, username, password, sender string) (*SMTPMailer, error) {
	if host == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if port <= 0 || port > 65535 {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp port must be between 1 and 65535, got %d", port)
	}
	if sender == "" || !strings.Contains(sender, "@") {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("sender must be a valid email address")
	}

	var a smtp.Auth
	if username != "" {
		a = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPMailer{
		host:   host,
		port:   port,
		sender: sender,
		auth:   a,
	}, nil
}

// SendVerification delivers a verification token to the address.
func (m *SMTPMailer) SendVerification(ctx context.Context, email, token string) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").Wrap(err)
	}

	msg := m.buildMessage(email, token)
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	if err := smtp.SendMail(addr, m.auth, m.sender, []string{email}, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("operation", "smtp send").
			With("host", m.host).
			Wrap(err)
	}
	return nil
}

func (m *SMTPMailer) buildMessage(email, token string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.sender)
	fmt.Fprintf(&b, "To: %s\r\n", email)
	b.WriteString("Subject: Verify your email address\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your verification code is: %s\r\n", token)
	return []byte(b.String())
}

// Compile-time interface check.
var _ auth.Mailer = (*SMTPMailer)(nil)
