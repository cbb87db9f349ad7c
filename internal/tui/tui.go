// Package tui is the interactive terminal console. It owns the
// bubbletea program loop and keyboard handling; all data state lives in
// the console controllers, which the views snapshot on every render.
// Terminal focus drives the poll gate, so background refresh pauses
// while the console is not visible.
package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/prefs"
	"github.com/DragonRuins/life-hub-sub001/internal/view"
)

// Options wires the console to the rest of the process.
type Options struct {
	Client *client.Client
	Prefs  *prefs.Store
	Theme  view.Theme
	Logger *slog.Logger

	// RefreshInterval is the dashboard LIVE poll period.
	RefreshInterval time.Duration

	// SmartHomeRefreshInterval is the fallback poll covering missed
	// stream events.
	SmartHomeRefreshInterval time.Duration
}

// Run starts the console and blocks until the user quits.
func Run(o Options) error {
	m := newApp(o)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())

	if o.Prefs != nil {
		// Theme changes arrive from any writer of the prefs file,
		// including another running console.
		o.Prefs.Subscribe(func(ev prefs.Event) {
			if ev.Name == prefs.EventThemeChanged {
				p.Send(themeMsg(view.ByName(ev.Value)))
			}
		})
	}

	_, err := p.Run()
	return err
}

// tickMsg drives the once-a-second repaint and the LIVE badge pulse.
type tickMsg time.Time

// refreshMsg reports that a controller operation finished; the next
// render picks up the new snapshot.
type refreshMsg struct{}

// themeMsg swaps the active theme.
type themeMsg view.Theme

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// do runs a controller operation off the UI goroutine. Controllers are
// safe for concurrent use; a refreshMsg afterwards forces a repaint.
func do(fn func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(context.Background())
		return refreshMsg{}
	}
}
