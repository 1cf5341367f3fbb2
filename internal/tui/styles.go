package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/apollo67/dash/internal/view"
)

// Palette (256-color codes).
const (
	ColorAccent  = lipgloss.Color("39")
	ColorMuted   = lipgloss.Color("241")
	ColorBar     = lipgloss.Color("236")
	ColorBullish = lipgloss.Color("82")
	ColorBearish = lipgloss.Color("196")
	ColorNotice  = lipgloss.Color("220")
)

var (
	// Header and footer bars
	BarStyle   = lipgloss.NewStyle().Background(ColorBar)
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Background(ColorBar).
			Padding(0, 1)
	TabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorMuted)
	ActiveTabStyle = TabStyle.Bold(true).Foreground(ColorAccent)
	KeyStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	DescStyle      = lipgloss.NewStyle().Foreground(ColorMuted)

	ContentStyle = lipgloss.NewStyle().Padding(1, 2)
	SummaryStyle = lipgloss.NewStyle().Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle   = lipgloss.NewStyle().Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorBearish)
	NoticeStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorNotice)
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)
)

// sentimentStyle colors trend and momentum text by class.
func sentimentStyle(value string) lipgloss.Style {
	switch view.Sentiment(value) {
	case view.Bullish:
		return lipgloss.NewStyle().Foreground(ColorBullish)
	case view.Bearish:
		return lipgloss.NewStyle().Foreground(ColorBearish)
	}
	return LabelStyle
}
