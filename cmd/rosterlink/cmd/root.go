package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"rosterlink/internal/config"
	"rosterlink/internal/telemetry"
	"rosterlink/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var shutdownTelemetry telemetry.Shutdown

var rootCmd = &cobra.Command{
	Use:   "rosterlink",
	Short: "rosterlink matches a contest roster against leaderboard pages and downloads the avatars of the matched contestants.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		shutdown, err := telemetry.SetupFromEnv(cmd.Context(), "rosterlink")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		shutdownTelemetry = shutdown
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdownTelemetry == nil {
			return
		}
		err := shutdownTelemetry(context.Background())
		if err != nil {
			slog.Warn("failed to flush traces", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the json5 configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if errors.Is(err, config.ErrTemplateCreated) {
		slog.Warn("no configuration found, a template was written", "path", configPath)
		os.Exit(1)
	}
	if err != nil {
		serviceutil.Fatal("failed to load configuration", err)
	}
	return cfg
}
