// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth"
)

// NewSessionCmd creates the session subcommand. These are operator
// primitives working directly on the repositories; the owner-scoped
// revocation rules live in the auth facade consumed by the request
// layer.
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and revoke sessions",
	}

	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionRevokeCmd())

	return cmd
}

func newSessionListCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions for an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			deps, err := buildServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.close()

			account, err := deps.accounts.GetByNormalisedEmail(ctx, auth.NormaliseEmail(email))
			if err != nil {
				return err
			}

			sessions, err := deps.sessions.GetByUser(ctx, account.ID)
			if err != nil {
				return err
			}

			if len(sessions) == 0 {
				cmd.Println("no sessions")
				return nil
			}
			for _, s := range sessions {
				name := s.FriendlyName
				if name == "" {
					name = "(unnamed)"
				}
				cmd.Printf("%s  %s  created=%s last_seen=%s\n",
					s.ID.String(), name,
					s.CreatedAt.Format("2006-01-02 15:04:05"),
					s.LastSeenAt.Format("2006-01-02 15:04:05"),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	_ = cmd.MarkFlagRequired("email") //nolint:errcheck // flag exists

	return cmd
}

func newSessionRevokeCmd() *cobra.Command {
	var email string
	var all bool

	cmd := &cobra.Command{
		Use:   "revoke [session-id]",
		Short: "Revoke one session by ID, or all sessions for an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := buildServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.close()

			if all {
				if email == "" {
					return oops.Code("CONFIG_INVALID").Errorf("--email is required with --all")
				}
				account, err := deps.accounts.GetByNormalisedEmail(ctx, auth.NormaliseEmail(email))
				if err != nil {
					return err
				}
				count, err := deps.sessions.DeleteByUser(ctx, account.ID)
				if err != nil {
					return err
				}
				cmd.Printf("revoked %d session(s)\n", count)
				return nil
			}

			if len(args) != 1 {
				return oops.Code("CONFIG_INVALID").Errorf("a session ID is required unless --all is given")
			}
			id, err := ulid.Parse(args[0])
			if err != nil {
				return oops.Code("SESSION_INVALID_ID").With("id", args[0]).Wrap(err)
			}
			if err := deps.sessions.Delete(ctx, id); err != nil {
				return err
			}
			cmd.Println("session revoked")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	cmd.Flags().BoolVar(&all, "all", false, "revoke every session for the account")

	return cmd
}
