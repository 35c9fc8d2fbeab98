package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ams-studio/ams/pkg/screen"
)

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var mail, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: run(flags, false, func(cmd *cobra.Command, a *app, _ []string) error {
			if password == "" {
				password = os.Getenv("AMS_PASSWORD")
			}
			profile, err := a.auth.Login(cmd.Context(), mail, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (%s).\n", profile.FirstName, profile.Role)
			return nil
		}),
	}

	cmd.Flags().StringVar(&mail, "mail", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $AMS_PASSWORD)")
	_ = cmd.MarkFlagRequired("mail")
	return cmd
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: run(flags, false, func(cmd *cobra.Command, a *app, _ []string) error {
			p := screen.NewProfile(a.store, a.auth, nil, a.printer(cmd))
			return shown(p.Logout(cmd.Context()))
		}),
	}
}

func newProfileCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the logged-in user",
		RunE: run(flags, true, func(cmd *cobra.Command, a *app, _ []string) error {
			p := screen.NewProfile(a.store, a.auth, nil, a.printer(cmd))
			return shown(p.Load(cmd.Context()))
		}),
	}
}
