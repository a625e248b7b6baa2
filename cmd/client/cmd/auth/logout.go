package auth

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
)

// LogoutCmd drops the session, wipes the decrypted cache and forgets
// saved logins.
var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget saved logins",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cmdutil.AppFrom(cmd)
		if err != nil {
			return err
		}

		app.Repo().Logout()
		if err := app.ForgetLogins(); err != nil {
			color.Yellow("Could not clear login history: %v", err)
		}

		color.Green("✓ Logged out")
		return nil
	},
}
