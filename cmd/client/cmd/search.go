package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
)

// searchCmd filters cached records by title or username.
var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search records by title or username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}

		matches := app.Repo().Search(args[0])
		if len(matches) == 0 {
			fmt.Println("No records match.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tGROUP\tTITLE\tUSERNAME")
		for _, r := range matches {
			title := r.Title
			if r.Corrupted {
				title = "<cannot decrypt>"
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", r.ID, r.GroupID, title, r.Username)
		}
		w.Flush()
		return nil
	},
}
