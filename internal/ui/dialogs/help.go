package dialogs

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const helpText = `[yellow]Dashboard Keys[-]

  [green]↑/↓[-]      Scroll activity
  [green]r[-]        Reset dashboard state
  [green]?[-]        This help
  [green]q[-]        Quit

[yellow]Panels[-]

  [green]Agent[-]         Session, current task and step
  [green]Tasks[-]         Newest first with run time
  [green]Token Usage[-]   Running totals from the agent
  [green]Recent Files[-]  Last 20 reads and writes
  [green]Activity[-]      Last 100 events

Press [green]Escape[-] or [green]?[-] to close.`

func HelpDialog(onClose func()) *tview.TextView {
	tv := tview.NewTextView()
	tv.SetBorder(true).SetTitle(" Help ").SetTitleAlign(tview.AlignLeft)
	tv.SetDynamicColors(true)
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetText(helpText)
	tv.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == '?' {
			onClose()
			return nil
		}
		return event
	})
	return tv
}
