package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/apollo67/dash/internal/portfolio"
)

// InputMode is what the prompt is collecting.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeSymbol
	ModeAddWatchlist
	ModeConfirmDelete
	ModeAddLot
)

func newInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 40
	ti.Width = 30
	return ti
}

// startInput switches to mode and focuses the prompt.
func (m *Model) startInput(mode InputMode, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.Focus()
	return textinput.Blink
}

func (m *Model) endInput() {
	m.mode = ModeNormal
	m.input.Reset()
	m.input.Blur()
	m.pending = ""
}

// updateInput handles keys while a prompt is active. It consumes all keys.
func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	if m.mode == ModeConfirmDelete {
		switch msg.String() {
		case "y", "Y":
			sym := m.pending
			m.endInput()
			return m.removeWatchlist(sym)
		case "n", "N", "esc":
			m.endInput()
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		m.endInput()
		return nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.endInput()
		if value == "" {
			return nil
		}
		return m.submit(mode, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) submit(mode InputMode, value string) tea.Cmd {
	switch mode {
	case ModeSymbol:
		m.currentView = ViewDashboard
		return SelectSymbol(m.ctl, value, true)
	case ModeAddWatchlist:
		return m.addWatchlist(value)
	case ModeAddLot:
		lot, err := portfolio.ParseLot(value)
		if err != nil {
			m.flash = err.Error()
			return nil
		}
		return m.addLot(lot)
	}
	return nil
}

// inputView renders the active prompt.
func (m Model) inputView() string {
	var b strings.Builder
	switch m.mode {
	case ModeConfirmDelete:
		b.WriteString(NoticeStyle.Render(fmt.Sprintf("Delete %s from watchlist?", m.pending)))
		b.WriteString("\n\n")
		b.WriteString(LabelStyle.Render("Press Y to confirm, N to cancel"))
		return b.String()
	case ModeSymbol:
		b.WriteString(SummaryStyle.Render("Select Symbol"))
	case ModeAddWatchlist:
		b.WriteString(SummaryStyle.Render("Add Symbol"))
	case ModeAddLot:
		b.WriteString(SummaryStyle.Render("Add Lot"))
	}
	b.WriteString("\n\n")
	b.WriteString(InputStyle.Render(m.input.View()))
	b.WriteString("\n\n")
	b.WriteString(LabelStyle.Render("Press Enter to submit, Esc to cancel"))
	return b.String()
}
