package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/apollo67/dash/internal/dashboard"
)

// SelectSymbol returns a command that selects sym through the controller.
func SelectSymbol(ctl *dashboard.Controller, sym string, force bool) tea.Cmd {
	return func() tea.Msg {
		ctl.OnSelectSymbol(context.Background(), sym, force)
		return SymbolLoadedMsg{Symbol: sym}
	}
}

// WarmVisible returns a command that fetches visible symbols missing from
// the cache and waits for them.
func WarmVisible(ctl *dashboard.Controller) tea.Cmd {
	return func() tea.Msg {
		fetched, done := ctl.WarmVisible(context.Background())
		<-done
		return WarmedMsg{Symbols: fetched}
	}
}

// Refresh returns a command that force-refreshes every visible symbol.
func Refresh(ctl *dashboard.Controller) tea.Cmd {
	return func() tea.Msg {
		ctl.OnRefresh(context.Background())
		return RefreshedMsg{}
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
