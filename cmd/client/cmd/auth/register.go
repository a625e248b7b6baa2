package auth

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
)

var registerUser string

// RegisterCmd creates a new account and a new vault.
var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new PassKeeper account",
	Long: `Create an account on the server and generate the secret key for the
new vault. The key is shown once; store it in a safe place. The server
never sees it, and without it your records cannot be decrypted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cmdutil.AppFrom(cmd)
		if err != nil {
			return err
		}

		username := registerUser
		if username == "" {
			username = cmdutil.ReadLine("Username: ")
		}

		password, err := cmdutil.ReadSecret("Password: ")
		if err != nil {
			return err
		}
		confirm, err := cmdutil.ReadSecret("Repeat password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		key, err := app.Repo().Register(cmd.Context(), username, password, "")
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		color.Green("✓ Account %s created", username)
		fmt.Println()
		fmt.Println("Your secret key:")
		color.Cyan("  %s", key)
		fmt.Println()
		color.Yellow("Write it down now. It cannot be recovered if lost.")
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVarP(&registerUser, "user", "u", "", "username")
}
