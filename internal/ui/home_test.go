package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/zsprackett/morty-dashboard/internal/dashboard"
	"github.com/zsprackett/morty-dashboard/internal/events"
)

var now = time.UnixMilli(1_700_000_000_000)

func stateWith(evs ...events.Event) dashboard.State {
	s := dashboard.Initial()
	for _, e := range evs {
		s = dashboard.Apply(s, e, now)
	}
	return s
}

func ev(t events.Type, ms int64, data map[string]any) events.Event {
	return events.Event{ID: "evt", Type: t, Timestamp: ms, Data: data}
}

func TestFormatTokens(t *testing.T) {
	cases := map[int64]string{
		0:         "0",
		999:       "999",
		1500:      "1.5K",
		2_345_678: "2.3M",
	}
	for n, want := range cases {
		if got := FormatTokens(n); got != want {
			t.Errorf("FormatTokens(%d): got %q want %q", n, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                     "0s",
		42 * time.Second:                      "42s",
		3*time.Minute + 7*time.Second:         "3m 7s",
		61*time.Minute + 500*time.Millisecond: "61m 0s",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%v): got %q want %q", d, got, want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	if got := FormatCost(0.01234); got != "$0.0123" {
		t.Errorf("got %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	if got := FormatAge(now.UnixMilli(), now); got != "now" {
		t.Errorf("same instant: got %q", got)
	}
	if got := FormatAge(now.Add(-2*time.Minute).UnixMilli(), now); !strings.Contains(got, "ago") {
		t.Errorf("two minutes back: got %q", got)
	}
}

func TestHeaderText(t *testing.T) {
	s := stateWith(
		ev(events.TaskStart, 1, map[string]any{"id": "t1"}),
		ev(events.TaskComplete, 2, map[string]any{"id": "t1"}),
		ev(events.TaskStart, 3, map[string]any{"id": "t2"}),
	)
	got := headerText(s, "ws://localhost:3847")
	if !strings.Contains(got, "Disconnected") || !strings.Contains(got, "1/2 tasks (50%)") {
		t.Errorf("header: %q", got)
	}
	s.Connected = true
	if !strings.Contains(headerText(s, ""), "● Connected") {
		t.Error("expected connected marker")
	}
}

func TestAgentText(t *testing.T) {
	if got := agentText(dashboard.Initial(), now); !strings.Contains(got, "No active session") {
		t.Errorf("idle: %q", got)
	}
	s := stateWith(
		ev(events.SessionStart, now.UnixMilli()-65_000, map[string]any{"id": "session_1", "engine": "claude", "mode": "single", "workDir": "/w"}),
		ev(events.TaskStart, now.UnixMilli(), map[string]any{"id": "t1", "title": "Ship it"}),
	)
	got := agentText(s, now)
	for _, want := range []string{"claude", "session_1", "up 1m 5s", "Ship it", "Starting task..."} {
		if !strings.Contains(got, want) {
			t.Errorf("agent text missing %q: %q", want, got)
		}
	}
}

func TestTimelineTextNewestFirst(t *testing.T) {
	s := stateWith(
		ev(events.TaskStart, 1, map[string]any{"id": "t1", "title": "First"}),
		ev(events.CommandRun, 2, map[string]any{"command": "go test ./..."}),
	)
	lines := strings.Split(timelineText(s.Events.Items()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: %v", lines)
	}
	if !strings.Contains(lines[0], "Running: go test ./...") || !strings.Contains(lines[1], "Started: First") {
		t.Errorf("order: %v", lines)
	}
	if got := timelineText(nil); !strings.Contains(got, "No activity yet") {
		t.Errorf("empty: %q", got)
	}
}

func TestFilesText(t *testing.T) {
	s := stateWith(ev(events.FileWrite, 1, map[string]any{"path": "/repo/internal/hub/hub.go"}))
	got := filesText(s.RecentFiles.Items(), now)
	if !strings.Contains(got, "hub.go") || !strings.Contains(got, "/repo/internal/hub") {
		t.Errorf("files: %q", got)
	}
}

func TestHomeUpdateRendersTasks(t *testing.T) {
	h := NewHome("ws://localhost:3847")
	s := stateWith(
		ev(events.TaskStart, 1, map[string]any{"id": "t1", "title": "Old"}),
		ev(events.TaskFail, 2, map[string]any{"id": "t1", "error": "boom"}),
		ev(events.TaskStart, 3, map[string]any{"id": "t2", "title": "New"}),
	)
	h.Update(s, now)

	if got := h.tasks.GetRowCount(); got != 2 {
		t.Fatalf("rows: got %d want 2", got)
	}
	if got := h.tasks.GetCell(0, 1).Text; got != "New" {
		t.Errorf("first row: got %q want New", got)
	}
	if got := h.tasks.GetCell(1, 1).Text; !strings.Contains(got, "boom") {
		t.Errorf("failed row should show error, got %q", got)
	}
	if got := h.tokens.GetText(true); !strings.Contains(got, "$0.0000") {
		t.Errorf("tokens panel: %q", got)
	}
}

// drawn renders markup the way the panels do and returns the visible rows.
func drawn(t *testing.T, markup string) string {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(100, 10)

	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false).SetText(markup)
	tv.SetRect(0, 0, 100, 10)
	tv.Draw(screen)
	screen.Show()

	cells, width, height := screen.GetContents()
	rows := make([]string, 0, height)
	for y := 0; y < height; y++ {
		var b strings.Builder
		for x := 0; x < width; x++ {
			r := cells[y*width+x].Runes
			if len(r) == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(string(r))
		}
		rows = append(rows, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(rows, "\n")
}

func TestBracketedPayloadTextIsShownVerbatim(t *testing.T) {
	s := stateWith(
		ev(events.SessionStart, now.UnixMilli(), map[string]any{"id": "session_[1]", "engine": "claude", "mode": "single", "workDir": "/w/[app]"}),
		ev(events.TaskStart, now.UnixMilli(), map[string]any{"id": "t1", "title": "Fix [blue] route"}),
		ev(events.StepUpdate, now.UnixMilli(), map[string]any{"step": "Editing [red] handler"}),
		ev(events.FileWrite, now.UnixMilli(), map[string]any{"path": "app/[id]/page.tsx"}),
	)

	agent := drawn(t, agentText(s, now))
	for _, want := range []string{"session_[1]", "/w/[app]", "Fix [blue] route", "Editing [red] handler"} {
		if !strings.Contains(agent, want) {
			t.Errorf("agent panel lost %q:\n%s", want, agent)
		}
	}
	files := drawn(t, filesText(s.RecentFiles.Items(), now))
	if !strings.Contains(files, "page.tsx  app/[id]") {
		t.Errorf("files panel lost brackets:\n%s", files)
	}

	h := NewHome("ws://localhost:3847")
	h.Update(s, now)
	if got := h.tasks.GetCell(0, 1).Text; got != tview.Escape("Fix [blue] route") {
		t.Errorf("task cell: got %q", got)
	}
}
