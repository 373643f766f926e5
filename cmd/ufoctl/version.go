package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ufotracker/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "ufoctl", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
