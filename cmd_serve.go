package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zsprackett/morty-dashboard/internal/events"
	"github.com/zsprackett/morty-dashboard/internal/hub"
	"github.com/zsprackett/morty-dashboard/internal/notify"
	"github.com/zsprackett/morty-dashboard/internal/progress"
	"github.com/zsprackett/morty-dashboard/internal/webserver"
)

var (
	serveDashboard bool
	servePort      int
	serveDemo      bool
	serveDemoPace  time.Duration
)

func init() {
	serveCmd.Flags().BoolVar(&serveDashboard, "dashboard", false, "enable the dashboard server regardless of config")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config, 3847)")
	serveCmd.Flags().BoolVar(&serveDemo, "demo", false, "drive a scripted agent session through the hub")
	serveCmd.Flags().DurationVar(&serveDemoPace, "demo-pace", 800*time.Millisecond, "delay between demo events")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard hub and WebSocket server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveDashboard {
		cfg.Dashboard.Enabled = true
	}
	if cmd.Flags().Changed("port") {
		cfg.Dashboard.Port = servePort
	}
	if !cfg.Dashboard.Enabled && !serveDemo {
		return errors.New("dashboard disabled: pass --dashboard or set MORTY_DASHBOARD=1")
	}

	logger, closeLog := setupLogging(cfg, "")
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var observers []events.Emitter
	if cfg.Progress.Enabled {
		observers = append(observers, progress.New(cfg.Progress.WorkDir, logger))
	}
	notifier := notify.New(notify.Config{
		Enabled: cfg.Notifications.Enabled,
		Webhook: cfg.Notifications.Webhook,
		NtfyURL: cfg.Notifications.NtfyURL,
	}, logger)
	defer notifier.Wait()
	observers = append(observers, notifier)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Dashboard.Enabled {
		h := hub.New(logger)
		srv := webserver.New(h, webserver.Config{Host: cfg.Dashboard.Host, Port: cfg.Dashboard.Port}, logger)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start dashboard: %w", err)
		}
		fmt.Printf("dashboard listening on ws://%s\n", displayAddr(srv.Addr()))
		observers = append([]events.Emitter{h}, observers...)

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.Close()
			return srv.Stop(shutdownCtx)
		})
	} else {
		logger.Info("dashboard disabled, demo events go to local observers only")
	}

	reporter := events.NewReporter(events.Tee(observers...))
	if serveDemo {
		g.Go(func() error {
			return runDemo(ctx, reporter, cfg.Progress.WorkDir, serveDemoPace)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func displayAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return addr.String()
	}
	host := "localhost"
	if !tcp.IP.IsUnspecified() {
		host = tcp.IP.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(tcp.Port))
}
