package record

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
	"passkeeper/internal/model"
)

// CreateCmd creates a record. The secret is prompted with echo off and
// encrypted locally before anything leaves the process.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a record",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		if recGroupID == 0 {
			return fmt.Errorf("--group is required")
		}

		title := recTitle
		if title == "" {
			title = cmdutil.ReadLine("Title: ")
		}
		username := recUser
		if username == "" {
			username = cmdutil.ReadLine("Username: ")
		}
		secret, err := cmdutil.ReadSecret("Secret: ")
		if err != nil {
			return err
		}

		created, err := app.Repo().NewRecord(cmd.Context(), model.Record{
			GroupID:  recGroupID,
			Title:    title,
			Username: username,
			Secret:   secret,
			Link:     recLink,
			Note:     recNote,
		})
		if err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}

		color.Green("✓ Record %q created (id %d)", created.Title, created.ID)
		return nil
	},
}

func init() {
	CreateCmd.Flags().Int64VarP(&recGroupID, "group", "g", 0, "group id")
	CreateCmd.Flags().StringVarP(&recTitle, "title", "t", "", "record title")
	CreateCmd.Flags().StringVarP(&recUser, "user", "u", "", "username stored in the record")
	CreateCmd.Flags().StringVarP(&recLink, "link", "l", "", "related link")
	CreateCmd.Flags().StringVarP(&recNote, "note", "n", "", "free-form note")
}
