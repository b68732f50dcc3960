package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/zsprackett/morty-dashboard/internal/config"
	"github.com/zsprackett/morty-dashboard/internal/webserver"
)

var statusURL string

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "hub WebSocket URL (default from config)")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running hub's status endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		target := cfg.StatusURL()
		if statusURL != "" {
			target = config.StatusURL(statusURL)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		report, err := fetchStatus(ctx, http.DefaultClient, target)
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), report)
		return nil
	},
}

func fetchStatus(ctx context.Context, client *http.Client, url string) (webserver.StatusReport, error) {
	var report webserver.StatusReport
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return report, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return report, fmt.Errorf("hub not reachable at %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return report, fmt.Errorf("status %s from %s", resp.Status, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return report, fmt.Errorf("decode status: %w", err)
	}
	return report, nil
}

func printStatus(w io.Writer, r webserver.StatusReport) {
	fmt.Fprintf(w, "status:  %s\nclients: %d\nat:      %s\n",
		r.Status, r.Clients, time.UnixMilli(r.Timestamp).Format(time.RFC3339))
}
