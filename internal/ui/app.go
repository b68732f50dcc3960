package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/zsprackett/morty-dashboard/internal/dashboard"
	"github.com/zsprackett/morty-dashboard/internal/transport"
	"github.com/zsprackett/morty-dashboard/internal/ui/dialogs"
)

const refreshInterval = time.Second

// App is the terminal dashboard. It renders a dashboard.Store that is fed
// by a transport.Client.
type App struct {
	tapp   *tview.Application
	pages  *tview.Pages
	home   *Home
	store  *dashboard.Store
	client *transport.Client
	logger *slog.Logger
}

// NewApp wires a transport client for url into a fresh Store.
func NewApp(url string, reconnectDelay time.Duration, logger *slog.Logger) *App {
	a := &App{
		store:  dashboard.NewStore(),
		logger: logger,
	}
	a.client = transport.New(transport.Options{
		URL:            url,
		ReconnectDelay: reconnectDelay,
		Logger:         logger,
		OnEvent:        a.store.Dispatch,
		OnStateChange: func(s transport.State) {
			a.store.SetConnected(s == transport.StateConnected)
		},
	})

	a.tapp = tview.NewApplication()
	a.pages = tview.NewPages()
	a.home = NewHome(url)

	a.pages.AddPage("home", a.home, true, true)
	a.tapp.SetRoot(a.pages, true).EnableMouse(false)
	a.tapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if name, _ := a.pages.GetFrontPage(); name != "home" {
			return event
		}
		switch event.Rune() {
		case '?':
			a.showHelp()
			return nil
		case 'r':
			a.confirmReset()
			return nil
		case 'q':
			a.tapp.Stop()
			return nil
		}
		return event
	})
	return a
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.home.Update(a.store.Snapshot(), time.Now())

	// Store changes only mark the view dirty; redrawLoop paints.
	dirty := make(chan struct{}, 1)
	unsub := a.store.Subscribe(func(dashboard.State) {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})
	defer unsub()

	if err := a.client.Connect(); err != nil {
		a.logger.Warn("dashboard: initial connect failed, retrying", "err", err)
	}
	defer a.client.Disconnect()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.redrawLoop(ctx, dirty)

	return a.tapp.Run()
}

// redrawLoop repaints on store changes and once a second so running
// durations advance. It stops the app when ctx ends.
func (a *App) redrawLoop(ctx context.Context, dirty <-chan struct{}) {
	t := time.NewTicker(refreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			a.tapp.Stop()
			return
		case <-dirty:
		case <-t.C:
		}
		s := a.store.Snapshot()
		a.tapp.QueueUpdateDraw(func() {
			a.home.Update(s, time.Now())
		})
	}
}

func (a *App) showDialog(name string, widget tview.Primitive, width, height int) {
	modal := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(widget, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)
	a.pages.AddPage(name, modal, true, true)
	a.tapp.SetFocus(widget)
}

func (a *App) closeDialog(name string) {
	a.pages.RemovePage(name)
	a.tapp.SetFocus(a.home)
}

func (a *App) showHelp() {
	help := dialogs.HelpDialog(func() {
		a.closeDialog("help")
	})
	a.showDialog("help", help, 60, 20)
}

func (a *App) confirmReset() {
	modal := dialogs.ConfirmDialog(dialogs.ResetMessage,
		func() {
			a.closeDialog("reset")
			a.store.Reset()
		},
		func() { a.closeDialog("reset") },
	)
	a.pages.AddPage("reset", modal, true, true)
	a.tapp.SetFocus(modal)
}
