package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "librecords",
	Short:         "Library records service: books, borrowers and loans",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error { return rootCmd.Execute() }

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}
