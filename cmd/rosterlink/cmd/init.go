package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"rosterlink/internal/config"
	"rosterlink/lib/serviceutil"

	"github.com/spf13/cobra"
)

var force bool

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes a configuration template.",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := os.Stat(configPath)
		if err == nil && !force {
			serviceutil.Fatal("refusing to overwrite configuration", fmt.Errorf("%s exists, pass --force", configPath))
		}
		err = config.WriteTemplate(configPath)
		if err != nil {
			serviceutil.Fatal("failed to write configuration template", err)
		}
		slog.Info("configuration template written", "path", configPath)
	},
}
