package auth

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
	"passkeeper/internal/app/client/crypto"
)

var (
	loginUser  string
	rememberMe bool
	silently   bool
)

// LoginCmd authenticates against the server and rebuilds the local
// record cache.
var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the PassKeeper server",
	Long: `Authenticate with username and password, then fetch and decrypt your
vault with the secret key. With --remember the login is saved locally so
later commands can re-authenticate silently.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cmdutil.AppFrom(cmd)
		if err != nil {
			return err
		}

		username := loginUser
		if username == "" {
			username = cmdutil.ReadLine("Username: ")
		}

		password, err := cmdutil.ReadSecret("Password: ")
		if err != nil {
			return err
		}

		secretKey, err := cmdutil.ReadSecret("Secret key (base64): ")
		if err != nil {
			return err
		}

		err = app.Repo().Login(cmd.Context(), username, password, secretKey)
		switch {
		case errors.Is(err, crypto.ErrInvalidKeyOrData):
			// Authenticated, but some records did not decrypt with this
			// key. Do not show ciphertext; tell the user instead.
			color.Yellow("Logged in, but some records cannot be decrypted with this key.")
		case err != nil:
			return fmt.Errorf("login failed: %w", err)
		}

		if rememberMe {
			if err := app.RememberLogin(username, password, secretKey, silently); err != nil {
				color.Yellow("Could not save login: %v", err)
			}
		}

		records := len(app.Repo().Cache().AllRecords())
		groups := len(app.Repo().Cache().Groups())
		color.Green("✓ Logged in as %s (%d groups, %d records)", username, groups, records)
		return nil
	},
}

func init() {
	LoginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "username")
	LoginCmd.Flags().BoolVar(&rememberMe, "remember", false, "save this login locally")
	LoginCmd.Flags().BoolVar(&silently, "silent", false, "with --remember: log in automatically next time")
}
