// Package group implements the group management commands.
package group

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
)

// GroupCmd is the parent command for group operations.
var GroupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage record groups",
}

var (
	groupName    string
	groupComment string
)

// ListCmd prints the visible groups.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}

		groups := app.Repo().Cache().Groups()
		if len(groups) == 0 {
			fmt.Println("No groups yet. Create one with `passkeeper group create`.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOMMENT\tRECORDS")
		for _, g := range groups {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", g.ID, g.Name, g.Comment, len(app.Repo().Cache().RecordsOf(g.ID)))
		}
		return w.Flush()
	},
}

// CreateCmd creates a group on the server.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}

		name := groupName
		if name == "" {
			name = cmdutil.ReadLine("Group name: ")
		}

		g, err := app.Repo().NewGroup(cmd.Context(), name, groupComment)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		color.Green("✓ Group %q created (id %d)", g.Name, g.ID)
		return nil
	},
}

// RenameCmd renames a group.
var RenameCmd = &cobra.Command{
	Use:   "rename <id>",
	Short: "Rename a group",
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

		name := groupName
		if name == "" {
			name = cmdutil.ReadLine("New name: ")
		}

		g, err := app.Repo().RenameGroup(cmd.Context(), id, name, groupComment)
		if err != nil {
			return fmt.Errorf("failed to rename group: %w", err)
		}

		color.Green("✓ Group %d renamed to %q", g.ID, g.Name)
		return nil
	},
}

// DeleteCmd deletes a group and all its records.
var DeleteCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a group and all records in it",
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

		n := len(app.Repo().Cache().RecordsOf(id))
		if err := app.Repo().DeleteGroup(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}

		color.Green("✓ Group %d deleted (%d records removed)", id, n)
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&groupName, "name", "n", "", "group name")
	CreateCmd.Flags().StringVarP(&groupComment, "comment", "c", "", "group comment")
	RenameCmd.Flags().StringVarP(&groupName, "name", "n", "", "new group name")
	RenameCmd.Flags().StringVarP(&groupComment, "comment", "c", "", "new group comment")
}
