// Package auth implements the login, register and logout commands.
package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd is the parent command for account operations.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Account management",
	Long:  `Log in, register a new account or log out.`,
}
