// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth"
)

// NewAccountCmd creates the account subcommand.
func NewAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountVerifyCmd())
	cmd.AddCommand(newAccountCheckEmailCmd())

	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			deps, err := buildServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.close()

			id, err := deps.svc.CreateAccount(ctx, email, password)
			if err != nil {
				return err
			}

			cmd.Printf("account created: %s\n", id.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email address")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // flag exists

	return cmd
}

func newAccountVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <code>",
		Short: "Confirm an email verification code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := buildServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.close()

			if err := deps.svc.VerifyAccount(ctx, args[0]); err != nil {
				return err
			}

			cmd.Println("account verified")
			return nil
		},
	}
}

func newAccountCheckEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-email <email>",
		Short: "Check whether an email address is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			deps, err := buildServices(ctx, cmd)
			if err != nil {
				return err
			}
			defer deps.close()

			normalised, err := deps.svc.CheckEmailInUse(ctx, args[0])
			if err != nil {
				if errors.Is(err, auth.ErrDuplicateEmail) {
					cmd.Println("email is already in use")
					return nil
				}
				return err
			}

			cmd.Printf("email is available (normalised: %s)\n", normalised)
			return nil
		},
	}
}
