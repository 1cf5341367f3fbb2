package tui

import (
	"fmt"
	"strings"

	"github.com/apollo67/dash/internal/dashboard"
	"github.com/apollo67/dash/internal/view"
)

// renderDashboard renders the selected symbol's quote, signal and chart.
func renderDashboard(snap dashboard.Snapshot) string {
	var b strings.Builder
	q, s := snap.Quote, snap.Signal

	b.WriteString(SummaryStyle.Render(snap.Selected))
	b.WriteString("  ")
	b.WriteString(ValueStyle.Render("$" + view.QuoteLast(q)))
	if q.Timestamp != "" {
		b.WriteString("  ")
		b.WriteString(LabelStyle.Render("as of " + q.Timestamp))
	}
	b.WriteString("  ")
	b.WriteString(LabelStyle.Render("via " + q.Provider))
	b.WriteString("\n")
	if q.Error != "" {
		b.WriteString(ErrorStyle.Render("Quote error: " + q.Error))
		b.WriteString("\n")
	}

	b.WriteString(LabelStyle.Render("Score: "))
	b.WriteString(ValueStyle.Render(view.SignalScore(s)))
	b.WriteString("  ")
	b.WriteString(sentimentBadge("trend", s.Trend))
	b.WriteString("  ")
	b.WriteString(sentimentBadge("momentum", s.Momentum))
	b.WriteString("  ")
	b.WriteString(LabelStyle.Render("Confidence: "))
	b.WriteString(ValueStyle.Render(view.FormatConfidence(s.Confidence)))
	b.WriteString("\n")
	if s.Error != "" {
		b.WriteString(ErrorStyle.Render("Signal error: " + s.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(LabelStyle.Render(snap.ChartMeta))
	if snap.ChartPlot != "" {
		b.WriteString("\n\n")
		b.WriteString(snap.ChartPlot)
	}
	b.WriteString("\n")
	return b.String()
}

func sentimentBadge(label, value string) string {
	return sentimentStyle(value).Render(fmt.Sprintf("%s: %s", label, value))
}
