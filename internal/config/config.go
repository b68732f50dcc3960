package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort           = 3847
	DefaultReconnectDelay = 3 * time.Second
)

type DashboardConfig struct {
	Enabled        bool   `json:"enabled"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	URL            string `json:"url"`            // subscriber URL; derived from host/port when empty
	ReconnectDelay string `json:"reconnectDelay"` // Go duration, e.g. "3s"
}

type ProgressConfig struct {
	Enabled bool   `json:"enabled"`
	WorkDir string `json:"workDir"`
}

type NotificationsConfig struct {
	Enabled bool   `json:"enabled"`
	Webhook string `json:"webhook"`
	NtfyURL string `json:"ntfy"`
}

type Config struct {
	LogDir        string              `json:"logDir"`
	LogLevel      string              `json:"logLevel"`
	LogFormat     string              `json:"logFormat"`
	Dashboard     DashboardConfig     `json:"dashboard"`
	Progress      ProgressConfig      `json:"progress"`
	Notifications NotificationsConfig `json:"notifications"`
}

func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		LogDir:    filepath.Join(home, ".morty", "logs"),
		LogLevel:  "info",
		LogFormat: "text",
		Dashboard: DashboardConfig{
			Host:           "localhost",
			Port:           DefaultPort,
			ReconnectDelay: DefaultReconnectDelay.String(),
		},
		Progress: ProgressConfig{
			Enabled: true,
			WorkDir: ".",
		},
	}
}

func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".morty", "dashboard.json")
}

// Load reads path over the defaults and then applies environment
// overrides. A missing file is not an error. On an invalid override the
// returned Config still carries the file and every valid override.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	var parseErr error
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			parseErr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, errors.Join(parseErr, cfg.applyEnv(os.LookupEnv))
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	if v, ok := lookup("MORTY_DASHBOARD"); ok {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			c.Dashboard.Enabled = true
		case "0", "false", "no", "off", "":
			c.Dashboard.Enabled = false
		default:
			errs = append(errs, fmt.Errorf("MORTY_DASHBOARD: invalid value %q", v))
		}
	}
	if v, ok := lookup("MORTY_DASHBOARD_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("MORTY_DASHBOARD_PORT: invalid port %q", v))
		} else {
			c.Dashboard.Port = port
		}
	}
	if v, ok := lookup("MORTY_DASHBOARD_URL"); ok && v != "" {
		c.Dashboard.URL = v
	}
	if v, ok := lookup("MORTY_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	return errors.Join(errs...)
}

// SubscriberURL is the WebSocket URL observers dial.
func (c Config) SubscriberURL() string {
	if c.Dashboard.URL != "" {
		return c.Dashboard.URL
	}
	host := c.Dashboard.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "ws://" + net.JoinHostPort(host, strconv.Itoa(c.Dashboard.Port))
}

// StatusURL is the HTTP form of SubscriberURL with /status appended.
func (c Config) StatusURL() string {
	return StatusURL(c.SubscriberURL())
}

// StatusURL maps a ws:// or wss:// subscriber URL to its /status endpoint.
func StatusURL(wsURL string) string {
	u := wsURL
	switch {
	case strings.HasPrefix(u, "wss://"):
		u = "https://" + strings.TrimPrefix(u, "wss://")
	case strings.HasPrefix(u, "ws://"):
		u = "http://" + strings.TrimPrefix(u, "ws://")
	}
	return strings.TrimRight(u, "/") + "/status"
}

// ReconnectDelayDuration parses Dashboard.ReconnectDelay, falling back to
// the default when it is empty or invalid.
func (c Config) ReconnectDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.Dashboard.ReconnectDelay)
	if err != nil || d <= 0 {
		return DefaultReconnectDelay
	}
	return d
}
