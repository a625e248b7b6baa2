// Package record implements the credential record commands.
package record

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"passkeeper/cmd/client/cmd/cmdutil"
	"passkeeper/internal/model"
)

// RecordCmd is the parent command for record operations.
var RecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage credential records",
}

var (
	recGroupID int64
	recTitle   string
	recUser    string
	recLink    string
	recNote    string
	showSecret bool
)

// ListCmd prints the records of a group.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records of a group",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cmdutil.RequireSession(cmd)
		if err != nil {
			return err
		}
		if recGroupID == 0 {
			return fmt.Errorf("--group is required")
		}

		app.Repo().Cache().SelectGroup(recGroupID)
		records := app.Repo().Cache().VisibleRecords()
		if len(records) == 0 {
			fmt.Println("No records in this group.")
			return nil
		}

		printRecords(records)
		return nil
	},
}

// GetCmd prints one record.
var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a record",
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

		r, ok := app.Repo().Cache().Record(id)
		if !ok {
			return fmt.Errorf("record %d not found", id)
		}
		if r.Corrupted {
			return fmt.Errorf("record %d cannot be decrypted with the current key", id)
		}

		fmt.Printf("Title:    %s\n", r.Title)
		fmt.Printf("Username: %s\n", r.Username)
		if showSecret {
			fmt.Printf("Secret:   %s\n", r.Secret)
		} else {
			fmt.Printf("Secret:   ******** (use --show-secret)\n")
		}
		if r.Link != "" {
			fmt.Printf("Link:     %s\n", r.Link)
		}
		if r.Note != "" {
			fmt.Printf("Note:     %s\n", r.Note)
		}
		fmt.Printf("Updated:  %s\n", r.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func printRecords(records []model.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUSERNAME\tLINK")
	for _, r := range records {
		title := r.Title
		if r.Corrupted {
			title = "<cannot decrypt>"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, title, r.Username, r.Link)
	}
	w.Flush()
}

func init() {
	ListCmd.Flags().Int64VarP(&recGroupID, "group", "g", 0, "group id")
	GetCmd.Flags().BoolVar(&showSecret, "show-secret", false, "print the secret in clear text")
}
