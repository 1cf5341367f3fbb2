package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/apollo67/dash/internal/portfolio"
	"github.com/apollo67/dash/internal/store"
)

// addWatchlist adds sym and warms it so the row fills in.
func (m *Model) addWatchlist(sym string) tea.Cmd {
	added, err := m.ctl.OnAddWatchlist(sym)
	if !added && err == nil {
		m.flash = fmt.Sprintf("%s is already on the watchlist", sym)
		return nil
	}
	return tea.Batch(saved(store.KeyWatchlist, err), WarmVisible(m.ctl))
}

func (m *Model) removeWatchlist(sym string) tea.Cmd {
	removed, err := m.ctl.OnRemoveWatchlist(sym)
	if !removed {
		return nil
	}
	m.clampCursor()
	return saved(store.KeyWatchlist, err)
}

func (m *Model) addLot(lot portfolio.Lot) tea.Cmd {
	if err := m.ctl.OnAddLot(lot); err != nil {
		m.flash = err.Error()
	}
	return WarmVisible(m.ctl)
}

func (m *Model) removeLots(sym string) tea.Cmd {
	n, err := m.ctl.OnRemoveLot(sym)
	if n == 0 {
		return nil
	}
	m.clampCursor()
	return saved(store.KeyPortfolio, err)
}

// saved reports a persistence outcome as a message.
func saved(what string, err error) tea.Cmd {
	return func() tea.Msg {
		return SavedMsg{What: what, Err: err}
	}
}
