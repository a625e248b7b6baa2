// Package cmdutil holds helpers shared by the command packages.
package cmdutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"passkeeper/cmd/client/cmd/types"
	"passkeeper/internal/app/client"
)

// AppFrom extracts the wired App from the command context.
func AppFrom(cmd *cobra.Command) (*client.App, error) {
	a, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return a, nil
}

// RequireSession returns the App with an authenticated session,
// attempting a silent login from the saved history first.
func RequireSession(cmd *cobra.Command) (*client.App, error) {
	a, err := AppFrom(cmd)
	if err != nil {
		return nil, err
	}

	if _, ok := a.Repo().Session().Current(); ok {
		return a, nil
	}
	if a.TrySilentLogin(cmd.Context()) {
		return a, nil
	}

	return nil, fmt.Errorf("not logged in: run `passkeeper auth login` first")
}

// ReadSecret prompts for a value with terminal echo disabled.
func ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(value), nil
}

// ReadLine prompts for a plain value.
func ReadLine(prompt string) string {
	fmt.Print(prompt)
	var value string
	_, _ = fmt.Scanln(&value)
	return strings.TrimSpace(value)
}

// ParseID parses a positional id argument.
func ParseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
