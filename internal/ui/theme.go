package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/zsprackett/morty-dashboard/internal/dashboard"
	"github.com/zsprackett/morty-dashboard/internal/events"
)

// Theme colors for the TUI.
var (
	ColorBackground      = tcell.NewHexColor(0x1e1e2e)
	ColorBackgroundPanel = tcell.NewHexColor(0x181825)
	ColorBackgroundElem  = tcell.NewHexColor(0x313244)
	ColorPrimary         = tcell.NewHexColor(0x89b4fa) // blue
	ColorAccent          = tcell.NewHexColor(0xcba6f7) // mauve
	ColorText            = tcell.NewHexColor(0xcdd6f4)
	ColorTextMuted       = tcell.NewHexColor(0x6c7086)
	ColorSuccess         = tcell.NewHexColor(0xa6e3a1) // green
	ColorWarning         = tcell.NewHexColor(0xf9e2af) // yellow
	ColorError           = tcell.NewHexColor(0xf38ba8) // red
	ColorBorder          = tcell.NewHexColor(0x45475a)
)

// Status icons
const (
	IconRunning   = "●"
	IconPending   = "○"
	IconCompleted = "✓"
	IconFailed    = "✗"
	IconRead      = "◁"
	IconWrite     = "▶"
)

func StatusIcon(status dashboard.TaskStatus) (string, tcell.Color) {
	switch status {
	case dashboard.TaskRunning:
		return IconRunning, ColorPrimary
	case dashboard.TaskCompleted:
		return IconCompleted, ColorSuccess
	case dashboard.TaskFailed:
		return IconFailed, ColorError
	default:
		return IconPending, ColorTextMuted
	}
}

func FileIcon(action dashboard.FileAction) (string, tcell.Color) {
	if action == dashboard.FileActionWrite {
		return IconWrite, ColorWarning
	}
	return IconRead, ColorPrimary
}

// EventColor picks the tview color tag used for a timeline row.
func EventColor(t events.Type) string {
	switch t {
	case events.TaskComplete, events.SessionStart:
		return "green"
	case events.TaskFail:
		return "red"
	case events.FileWrite, events.CommandRun:
		return "yellow"
	case events.TokensUpdate, events.SessionEnd:
		return "gray"
	default:
		return "blue"
	}
}
