package cmd

import (
	"passkeeper/cmd/client/cmd/auth"
	"passkeeper/cmd/client/cmd/group"
	"passkeeper/cmd/client/cmd/record"
)

func init() {
	// Authentication commands
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	// Group commands
	rootCmd.AddCommand(group.GroupCmd)
	group.GroupCmd.AddCommand(group.ListCmd)
	group.GroupCmd.AddCommand(group.CreateCmd)
	group.GroupCmd.AddCommand(group.RenameCmd)
	group.GroupCmd.AddCommand(group.DeleteCmd)

	// Record commands
	rootCmd.AddCommand(record.RecordCmd)
	record.RecordCmd.AddCommand(record.ListCmd)
	record.RecordCmd.AddCommand(record.GetCmd)
	record.RecordCmd.AddCommand(record.CreateCmd)
	record.RecordCmd.AddCommand(record.UpdateCmd)
	record.RecordCmd.AddCommand(record.DeleteCmd)

	rootCmd.AddCommand(searchCmd)
}
