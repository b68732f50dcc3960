package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/zsprackett/morty-dashboard/internal/dashboard"
	"github.com/zsprackett/morty-dashboard/internal/events"
)

// Home is the main screen: connection header, agent panel, task list,
// token stats, recent files and the event timeline.
type Home struct {
	*tview.Flex
	header   *tview.TextView
	agent    *tview.TextView
	tasks    *tview.Table
	tokens   *tview.TextView
	files    *tview.TextView
	timeline *tview.TextView
	footer   *tview.TextView

	url string
}

func panel(title string) *tview.TextView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	tv.SetBorder(true).
		SetTitle(" " + title + " ").
		SetTitleAlign(tview.AlignLeft).
		SetBorderColor(ColorBorder)
	tv.SetBackgroundColor(ColorBackground)
	return tv
}

func NewHome(url string) *Home {
	h := &Home{url: url}

	h.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	h.header.SetBackgroundColor(ColorBackgroundPanel)

	h.agent = panel("Agent")
	h.tokens = panel("Token Usage")
	h.files = panel("Recent Files")
	h.timeline = panel("Activity")
	h.timeline.SetScrollable(true)

	h.tasks = tview.NewTable().SetSelectable(false, false)
	h.tasks.SetBorder(true).
		SetTitle(" Tasks ").
		SetTitleAlign(tview.AlignLeft).
		SetBorderColor(ColorBorder)
	h.tasks.SetBackgroundColor(ColorBackground)

	h.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	h.footer.SetBackgroundColor(ColorBackgroundPanel)
	h.footer.SetText("[green]r[-] reset  [green]?[-] help  [green]q[-] quit")

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(h.agent, 6, 0, false).
		AddItem(h.tasks, 0, 1, false).
		AddItem(h.tokens, 5, 0, false)
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(h.timeline, 0, 2, true).
		AddItem(h.files, 0, 1, false)
	content := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 0, 45, false).
		AddItem(right, 0, 55, true)

	h.Flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(h.header, 1, 0, false).
		AddItem(content, 0, 1, true).
		AddItem(h.footer, 1, 0, false)
	return h
}

// Update redraws every widget from s. now drives running durations and
// file ages. Must be called on the tview event goroutine once running.
func (h *Home) Update(s dashboard.State, now time.Time) {
	h.header.SetText(headerText(s, h.url))
	h.agent.SetText(agentText(s, now))
	h.renderTasks(s, now)
	h.tokens.SetText(tokensText(s.Tokens))
	h.files.SetText(filesText(s.RecentFiles.Items(), now))
	h.timeline.SetText(timelineText(s.Events.Items()))
}

func headerText(s dashboard.State, url string) string {
	conn := "[red]○ Disconnected[-]"
	if s.Connected {
		conn = "[green]● Connected[-]"
	}
	done, total, pct := s.Progress()
	return fmt.Sprintf("[blue]MORTY DASHBOARD[-]   %s  [gray]%s[-]   %d/%d tasks (%.0f%%)",
		conn, tview.Escape(url), done, total, pct)
}

func agentText(s dashboard.State, now time.Time) string {
	if s.Session == nil {
		return "[gray]No active session[-]"
	}
	// Everything below comes from event payloads and may contain brackets.
	esc := tview.Escape
	var b strings.Builder
	fmt.Fprintf(&b, "[blue]%s[-]  %s · %s\n", esc(s.Session.Engine), esc(string(s.Session.Mode)), esc(s.Session.ID))
	fmt.Fprintf(&b, "[gray]%s[-]  up %s\n", esc(s.Session.WorkDir),
		FormatDuration(now.Sub(time.UnixMilli(s.Session.StartTime))))
	if s.CurrentTask != nil {
		fmt.Fprintf(&b, "%s %s\n", IconRunning, esc(s.CurrentTask.Title))
	} else {
		b.WriteString("[gray]Waiting for task...[-]\n")
	}
	fmt.Fprintf(&b, "[yellow]%s[-]", esc(s.CurrentStep))
	return b.String()
}

func (h *Home) renderTasks(s dashboard.State, now time.Time) {
	h.tasks.Clear()
	if len(s.Tasks) == 0 {
		h.tasks.SetCell(0, 0, tview.NewTableCell("No tasks yet").SetTextColor(ColorTextMuted))
		return
	}
	// Newest first, like the timeline.
	for i := range s.Tasks {
		t := s.Tasks[len(s.Tasks)-1-i]
		icon, color := StatusIcon(t.Status)
		title := t.Title
		if title == "" {
			title = t.ID
		}
		titleColor := ColorText
		if t.Error != nil {
			title += "  " + *t.Error
			titleColor = ColorError
		}
		h.tasks.SetCell(i, 0, tview.NewTableCell(" "+icon).SetTextColor(color))
		h.tasks.SetCell(i, 1, tview.NewTableCell(tview.Escape(title)).
			SetTextColor(titleColor).
			SetExpansion(1).
			SetMaxWidth(40))
		h.tasks.SetCell(i, 2, tview.NewTableCell(FormatDuration(t.Duration(now))).
			SetTextColor(ColorTextMuted).
			SetAlign(tview.AlignRight))
	}
}

func tokensText(t dashboard.TokenStats) string {
	return fmt.Sprintf("[blue]in[-]   %s\n[green]out[-]  %s\n[yellow]cost[-] %s",
		FormatTokens(t.InputTokens), FormatTokens(t.OutputTokens), FormatCost(t.EstimatedCost))
}

func filesText(files []dashboard.RecentFile, now time.Time) string {
	if len(files) == 0 {
		return "[gray]No file activity[-]"
	}
	lines := make([]string, 0, len(files))
	for _, f := range files {
		icon, _ := FileIcon(f.Action)
		color := "blue"
		if f.Action == dashboard.FileActionWrite {
			color = "yellow"
		}
		lines = append(lines, fmt.Sprintf("[%s]%s[-] %s  [gray]%s · %s[-]",
			color, icon, tview.Escape(filepath.Base(f.Path)), tview.Escape(filepath.Dir(f.Path)), FormatAge(f.Timestamp, now)))
	}
	return strings.Join(lines, "\n")
}

func timelineText(evs []events.Event) string {
	if len(evs) == 0 {
		return "[gray]No activity yet[-]"
	}
	lines := make([]string, 0, len(evs))
	for _, e := range evs {
		lines = append(lines, fmt.Sprintf("[gray]%s[-] [%s]%s[-]",
			FormatClock(e.Timestamp), EventColor(e.Type), tview.Escape(events.Describe(e))))
	}
	return strings.Join(lines, "\n")
}
