package cmd

import (
	"rosterlink/internal/pipeline"
	"rosterlink/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Builds the nickname index from the leaderboard pages and writes the reconciled roster.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		report, err := pipeline.Resolve(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("failed to resolve roster", err)
		}
		printResolve(report)
	},
}
