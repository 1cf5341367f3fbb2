package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apollo67/dash/internal/dashboard"
	"github.com/apollo67/dash/internal/panel"
)

// View represents the current active view in the TUI.
type View int

const (
	ViewDashboard View = iota
	ViewScanner
	ViewWatchlist
	ViewPortfolio
)

// DefaultRefreshInterval is used when none is configured.
const DefaultRefreshInterval = 30 * time.Second

// Model is the main bubbletea model for the TUI.
type Model struct {
	currentView View
	width       int
	height      int
	ready       bool

	ctl *dashboard.Controller

	cursor  map[View]int
	mode    InputMode
	input   textinput.Model
	pending string
	spinner spinner.Model
	flash   string

	refreshInterval time.Duration
}

// New creates a new TUI model driving ctl.
func New(ctl *dashboard.Controller, refreshInterval time.Duration) Model {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		currentView:     ViewDashboard,
		ctl:             ctl,
		cursor:          map[View]int{},
		input:           newInput(),
		spinner:         sp,
		refreshInterval: refreshInterval,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		SelectSymbol(m.ctl, m.ctl.Selected(), false),
		WarmVisible(m.ctl),
		m.spinner.Tick,
		tick(m.refreshInterval),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Input modes consume all keys
		if m.mode != ModeNormal {
			return m, m.updateInput(msg)
		}
		m.flash = ""
		cmds = append(cmds, m.handleKey(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		chartHeight := m.height/3 - 2
		if chartHeight < 5 {
			chartHeight = 5
		}
		m.ctl.ResizeChart(m.width-16, chartHeight)

	case SymbolLoadedMsg:
		// Selecting may reveal rows that were never fetched
		cmds = append(cmds, WarmVisible(m.ctl))

	case WarmedMsg, RefreshedMsg:
		// Rows are read from the controller on every render

	case SavedMsg:
		if msg.Err != nil {
			m.flash = fmt.Sprintf("Failed to save %s: %v", msg.What, msg.Err)
		}

	case TickMsg:
		cmds = append(cmds, Refresh(m.ctl), tick(m.refreshInterval))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey handles keys in normal mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "1":
		m.currentView = ViewDashboard
	case "2":
		m.currentView = ViewScanner
	case "3":
		m.currentView = ViewWatchlist
	case "4":
		m.currentView = ViewPortfolio
	case "tab":
		m.currentView = (m.currentView + 1) % 4
	case "shift+tab":
		m.currentView = (m.currentView + 3) % 4
	case "up", "k":
		if m.cursor[m.currentView] > 0 {
			m.cursor[m.currentView]--
		}
	case "down", "j":
		if m.cursor[m.currentView] < len(m.rows())-1 {
			m.cursor[m.currentView]++
		}
	case "/":
		return m.startInput(ModeSymbol, "Symbol (e.g., AAPL)")
	case "a":
		switch m.currentView {
		case ViewWatchlist:
			return m.startInput(ModeAddWatchlist, "Enter symbol (e.g., AAPL)")
		case ViewPortfolio:
			return m.startInput(ModeAddLot, "SYMBOL QTY [AVG_COST]")
		}
	case "d", "x":
		sym := m.cursorSymbol()
		if sym == "" {
			return nil
		}
		switch m.currentView {
		case ViewWatchlist:
			m.mode = ModeConfirmDelete
			m.pending = sym
		case ViewPortfolio:
			return m.removeLots(sym)
		}
	case "s":
		if m.currentView == ViewWatchlist {
			m.ctl.OnCycleSort()
		}
	case "m":
		if m.currentView == ViewScanner {
			m.ctl.OnToggleScanner()
			m.clampCursor()
			return WarmVisible(m.ctl)
		}
	case "enter", " ":
		name := m.panelName()
		sym := m.cursorSymbol()
		if name == "" || sym == "" {
			return nil
		}
		m.ctl.OnToggleExpand(name, sym)
		return SelectSymbol(m.ctl, sym, false)
	case "r":
		return Refresh(m.ctl)
	}
	return nil
}

// panelName maps the current view to its panel.
func (m Model) panelName() string {
	switch m.currentView {
	case ViewScanner:
		return panel.Scanner
	case ViewWatchlist:
		return panel.Watchlist
	case ViewPortfolio:
		return panel.Portfolio
	}
	return ""
}

// rows returns the rows of the current panel in display order.
func (m Model) rows() []panel.Row {
	snap := m.ctl.Panels()
	switch m.currentView {
	case ViewScanner:
		return snap.Scanner
	case ViewWatchlist:
		return snap.Watchlist
	case ViewPortfolio:
		return snap.Portfolio
	}
	return nil
}

func (m Model) cursorSymbol() string {
	rows := m.rows()
	i := m.cursor[m.currentView]
	if i < 0 || i >= len(rows) {
		return ""
	}
	return rows[i].Symbol
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.cursor[m.currentView] >= n {
		m.cursor[m.currentView] = n - 1
	}
	if m.cursor[m.currentView] < 0 {
		m.cursor[m.currentView] = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	content := m.renderContent()

	// Calculate content height
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight

	// Pad content to fill available space
	contentLines := strings.Split(content, "\n")
	for len(contentLines) < contentHeight {
		contentLines = append(contentLines, "")
	}
	if contentHeight > 0 && len(contentLines) > contentHeight {
		contentLines = contentLines[:contentHeight]
	}
	content = strings.Join(contentLines, "\n")

	return header + "\n" + content + "\n" + footer
}

// renderHeader renders the header bar.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("dash")

	tabs := []struct {
		name   string
		key    string
		active bool
	}{
		{"Dashboard", "1", m.currentView == ViewDashboard},
		{"Scanner", "2", m.currentView == ViewScanner},
		{"Watchlist", "3", m.currentView == ViewWatchlist},
		{"Portfolio", "4", m.currentView == ViewPortfolio},
	}

	var tabStrs []string
	for _, tab := range tabs {
		style := TabStyle
		if tab.active {
			style = ActiveTabStyle
		}
		tabStrs = append(tabStrs, style.Render(fmt.Sprintf("[%s] %s", tab.key, tab.name)))
	}

	headerContent := title + "  " + strings.Join(tabStrs, " ")

	// Pad to full width
	padding := m.width - lipgloss.Width(headerContent)
	if padding > 0 {
		headerContent += strings.Repeat(" ", padding)
	}

	return BarStyle.
		Width(m.width).
		Render(headerContent)
}

// renderContent renders the main content area.
func (m Model) renderContent() string {
	if m.mode != ModeNormal {
		return ContentStyle.Render(m.inputView())
	}

	snap := m.ctl.Panels()
	var content string
	switch m.currentView {
	case ViewDashboard:
		content = renderDashboard(snap)
	case ViewScanner:
		content = panel.Render(snap.Scanner, panel.Options{
			Title:  fmt.Sprintf("Scanner (%d of %d)", len(snap.Scanner), snap.ScannerTotal),
			Cursor: m.cursor[ViewScanner],
			Footer: "m: " + panel.ToggleLabel(snap.ScannerExpanded),
		})
	case ViewWatchlist:
		content = panel.Render(snap.Watchlist, panel.Options{
			Title:  fmt.Sprintf("Watchlist (%d symbols, sort: %s)", len(snap.Watchlist), snap.Sort),
			Cursor: m.cursor[ViewWatchlist],
		})
	case ViewPortfolio:
		content = panel.Render(snap.Portfolio, panel.Options{
			Title:  "Portfolio",
			Cursor: m.cursor[ViewPortfolio],
			Footer: panel.PortfolioSummary(snap.Portfolio),
		})
	}

	if status := m.renderStatus(snap.Status); status != "" {
		content += "\n" + status
	}
	return ContentStyle.Render(content)
}

// renderStatus renders the loading, error or flash line.
func (m Model) renderStatus(st dashboard.Status) string {
	switch {
	case m.flash != "":
		return NoticeStyle.Render(m.flash)
	case st.Err != nil:
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", st.Err)) + LabelStyle.Render("  (r to retry)")
	case st.Loading:
		return m.spinner.View() + " " + LabelStyle.Render(st.Message)
	case !st.UpdatedAt.IsZero():
		return LabelStyle.Render(fmt.Sprintf("Updated: %s", st.UpdatedAt.Format("3:04:05 PM")))
	}
	return ""
}

// renderFooter renders the footer bar with key hints.
func (m Model) renderFooter() string {
	type hint struct{ key, desc string }

	keys := []hint{{"1-4", "switch view"}, {"/", "symbol"}}

	switch m.currentView {
	case ViewScanner:
		keys = append(keys, hint{"↑/↓", "navigate"}, hint{"enter", "expand"}, hint{"m", "more/less"})
	case ViewWatchlist:
		keys = append(keys, hint{"↑/↓", "navigate"}, hint{"enter", "expand"}, hint{"a", "add"}, hint{"d", "delete"}, hint{"s", "sort"})
	case ViewPortfolio:
		keys = append(keys, hint{"↑/↓", "navigate"}, hint{"enter", "expand"}, hint{"a", "add lot"}, hint{"d", "remove"})
	}
	keys = append(keys, hint{"r", "refresh"}, hint{"q", "quit"})

	switch m.mode {
	case ModeConfirmDelete:
		keys = []hint{{"y", "confirm"}, {"n", "cancel"}}
	case ModeSymbol, ModeAddWatchlist, ModeAddLot:
		keys = []hint{{"enter", "submit"}, {"esc", "cancel"}}
	}

	var parts []string
	for _, k := range keys {
		parts = append(parts, KeyStyle.Render(k.key)+" "+DescStyle.Render(k.desc))
	}

	footerContent := strings.Join(parts, "  •  ")

	// Pad to full width
	padding := m.width - lipgloss.Width(footerContent)
	if padding > 0 {
		footerContent += strings.Repeat(" ", padding)
	}

	return BarStyle.
		Width(m.width).
		Render(footerContent)
}
