package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zsprackett/morty-dashboard/internal/applog"
	"github.com/zsprackett/morty-dashboard/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "morty",
	Short:         "Live dashboard for morty agent sessions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
}

// loadConfig reads the config file. Errors are only warned about; whatever
// Load managed to read is kept.
func loadConfig() config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: config: %v\n", err)
	}
	return cfg
}

// setupLogging routes slog to the rotating log file. Interactive commands
// must not log to the terminal they draw on, so callers choose logDir.
func setupLogging(cfg config.Config, logDir string) (*slog.Logger, func()) {
	logger, closer, err := applog.Init(applog.InitConfig{
		LogDir:   logDir,
		LogLevel: cfg.LogLevel,
		Format:   cfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not init log file: %v\n", err)
		return slog.Default(), func() {}
	}
	return logger, func() { closer.Close() }
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
