package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zsprackett/morty-dashboard/internal/events"
	"github.com/zsprackett/morty-dashboard/internal/transport"
)

var tailURL string

func init() {
	tailCmd.Flags().StringVar(&tailURL, "url", "", "hub WebSocket URL (default from config)")
	rootCmd.AddCommand(tailCmd)
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print hub events as they arrive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		url := tailURL
		if url == "" {
			url = cfg.SubscriberURL()
		}
		logger, closeLog := setupLogging(cfg, "")
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		c := transport.New(transport.Options{
			URL:            url,
			ReconnectDelay: cfg.ReconnectDelayDuration(),
			Logger:         logger,
			OnEvent:        func(e events.Event) { printEvent(out, e) },
			OnStateChange: func(s transport.State) {
				fmt.Fprintf(os.Stderr, "-- %s (%s)\n", s, url)
			},
		})
		// A failed first dial is retried in the background.
		c.Connect()
		defer c.Disconnect()

		<-ctx.Done()
		return nil
	},
}

func printEvent(w io.Writer, e events.Event) {
	fmt.Fprintf(w, "%s  %-14s %s\n", e.Time().Format(time.TimeOnly), e.Type, events.Describe(e))
}
