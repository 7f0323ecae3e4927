package cmd

import (
	"errors"
	"log/slog"

	"rosterlink/internal/avatar"
	"rosterlink/internal/pipeline"
	"rosterlink/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(avatarsCmd)
}

var avatarsCmd = &cobra.Command{
	Use:   "avatars [identifier...]",
	Short: "Downloads the avatars of the given identifiers, or of every identifier in the identifier list.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var summary avatar.Summary
		var err error
		if len(args) > 0 {
			summary, err = pipeline.Avatars(cmd.Context(), cfg, args)
		} else {
			summary, err = pipeline.AvatarsFromList(cmd.Context(), cfg)
		}
		if errors.Is(err, pipeline.ErrNoIdentifiers) {
			slog.Warn("nothing to download", "err", err)
			return
		}
		if err != nil {
			serviceutil.Fatal("failed to download avatars", err)
		}
		printAvatars(summary)
	},
}
