package cmd

import (
	"rosterlink/internal/pipeline"
	"rosterlink/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolves the roster and then downloads the avatars of every matched contestant.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		report, err := pipeline.Run(cmd.Context(), cfg)
		if err != nil {
			serviceutil.Fatal("run failed", err)
		}
		printResolve(report.Resolve)
		printAvatars(report.Avatars)
	},
}
