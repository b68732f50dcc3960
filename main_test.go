package main

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zsprackett/morty-dashboard/internal/dashboard"
	"github.com/zsprackett/morty-dashboard/internal/events"
	"github.com/zsprackett/morty-dashboard/internal/hub"
	"github.com/zsprackett/morty-dashboard/internal/progress"
	"github.com/zsprackett/morty-dashboard/internal/webserver"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type storeEmitter struct{ s *dashboard.Store }

func (e storeEmitter) Emit(ev events.Event) { e.s.Dispatch(ev) }

func TestRunDemoProducesCompleteSession(t *testing.T) {
	st := dashboard.NewStore()
	dir := t.TempDir()
	log := progress.New(dir, discardLogger())

	r := events.NewReporter(events.Tee(storeEmitter{st}, log))
	if err := runDemo(context.Background(), r, dir, 0); err != nil {
		t.Fatal(err)
	}

	s := st.Snapshot()
	if s.Session != nil {
		t.Error("session should have ended")
	}
	done, total, _ := s.Progress()
	if total != len(demoTasks) || done != len(demoTasks)-1 {
		t.Errorf("progress: %d/%d", done, total)
	}
	if s.Tokens.InputTokens == 0 || s.Tokens.EstimatedCost == 0 {
		t.Errorf("tokens not reported: %+v", s.Tokens)
	}
	if s.RecentFiles.Len() == 0 {
		t.Error("no recent files")
	}
}

func TestRunDemoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runDemo(ctx, events.NewReporter(nil), ".", time.Hour)
	if err != context.Canceled {
		t.Errorf("got %v want context.Canceled", err)
	}
}

func TestFetchStatus(t *testing.T) {
	h := hub.New(discardLogger())
	srv := webserver.New(h, webserver.Config{}, discardLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	report, err := fetchStatus(context.Background(), ts.Client(), ts.URL+"/status")
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != "running" || report.Clients != 0 {
		t.Errorf("unexpected report: %+v", report)
	}

	var b strings.Builder
	printStatus(&b, report)
	if !strings.Contains(b.String(), "clients: 0") {
		t.Errorf("output: %q", b.String())
	}
}

func TestFetchStatusNotFound(t *testing.T) {
	h := hub.New(discardLogger())
	ts := httptest.NewServer(webserver.New(h, webserver.Config{}, discardLogger()).Handler())
	defer ts.Close()

	if _, err := fetchStatus(context.Background(), ts.Client(), ts.URL+"/nope"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestPrintEvent(t *testing.T) {
	var b strings.Builder
	printEvent(&b, events.New(events.TaskStart, map[string]any{"id": "t1", "title": "Ship"}))
	if !strings.Contains(b.String(), "task:start") || !strings.Contains(b.String(), "Started: Ship") {
		t.Errorf("output: %q", b.String())
	}
}

func TestLoadConfigKeepsFileOnBadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.json")
	if err := os.WriteFile(path, []byte(`{"dashboard":{"host":"127.0.0.1","port":4100}}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MORTY_DASHBOARD", "sometimes")

	prev := cfgPath
	cfgPath = path
	defer func() { cfgPath = prev }()

	cfg := loadConfig()
	if cfg.Dashboard.Host != "127.0.0.1" || cfg.Dashboard.Port != 4100 {
		t.Errorf("config from file dropped: %+v", cfg.Dashboard)
	}
}
