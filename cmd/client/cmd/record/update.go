package record

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
)

var keepSecret bool

// UpdateCmd rewrites a record's fields. Unset flags keep the current
// value; the secret is re-prompted unless --keep-secret is given.
var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}

		id, err := cmdutil.ParseID(args[0])
		if err != nil {
			return err
		}

		current, ok := app.Repo().Cache().Record(id)
		if !ok {
			return fmt.Errorf("record %d not found", id)
		}

		if cmd.Flags().Changed("title") {
			current.Title = recTitle
		}
		if cmd.Flags().Changed("user") {
			current.Username = recUser
		}
		if cmd.Flags().Changed("link") {
			current.Link = recLink
		}
		if cmd.Flags().Changed("note") {
			current.Note = recNote
		}
		if !keepSecret {
			secret, err := cmdutil.ReadSecret("New secret (empty to keep): ")
			if err != nil {
				return err
			}
			if secret != "" {
				current.Secret = secret
			}
		}

		updated, err := app.Repo().UpdateRecord(cmd.Context(), current)
		if err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}

		color.Green("✓ Record %d updated (%s)", updated.ID, updated.Title)
		return nil
	},
}

func init() {
	UpdateCmd.Flags().StringVarP(&recTitle, "title", "t", "", "record title")
	UpdateCmd.Flags().StringVarP(&recUser, "user", "u", "", "username stored in the record")
	UpdateCmd.Flags().StringVarP(&recLink, "link", "l", "", "related link")
	UpdateCmd.Flags().StringVarP(&recNote, "note", "n", "", "free-form note")
	UpdateCmd.Flags().BoolVar(&keepSecret, "keep-secret", false, "do not prompt for a new secret")
}
