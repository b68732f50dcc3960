package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zsprackett/morty-dashboard/internal/ui"
)

var watchURL string

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "", "hub WebSocket URL (default from config)")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the terminal dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		url := watchURL
		if url == "" {
			url = cfg.SubscriberURL()
		}
		// The screen belongs to tview, so logs go to the file.
		logger, closeLog := setupLogging(cfg, cfg.LogDir)
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()

		return ui.NewApp(url, cfg.ReconnectDelayDuration(), logger).Run(ctx)
	},
}
