package record

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
)

// DeleteCmd deletes a record.
var DeleteCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a record",
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

		if err := app.Repo().DeleteRecord(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		color.Green("✓ Record %d deleted", id)
		return nil
	},
}
