package panel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/apollo67/dash/internal/portfolio"
	"github.com/apollo67/dash/internal/view"
)

// EmptyText is rendered for a panel without symbols.
const EmptyText = "No symbols."

// Options controls how a panel renders.
type Options struct {
	Title string
	// Cursor is the index of the highlighted row, or -1.
	Cursor int
	// Footer is appended below the rows, e.g. the scanner toggle hint.
	Footer string
	Width  int
}

var (
	colorMuted    = lipgloss.Color("241")
	colorPrimary  = lipgloss.Color("39")
	colorSelected = lipgloss.Color("57")
	colorGreen    = lipgloss.Color("82")
	colorRed      = lipgloss.Color("196")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	symbolStyle   = lipgloss.NewStyle().Bold(true).Width(7)
	metricStyle   = lipgloss.NewStyle().Width(11)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	cursorStyle   = lipgloss.NewStyle().Background(colorSelected)
	selectedStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	detailStyle   = lipgloss.NewStyle().PaddingLeft(4).Foreground(colorMuted)

	badgeStyles = map[string]lipgloss.Style{
		view.Bullish: lipgloss.NewStyle().Foreground(colorGreen),
		view.Bearish: lipgloss.NewStyle().Foreground(colorRed),
		view.Neutral: lipgloss.NewStyle().Foreground(colorMuted),
	}
)

// Render draws rows as a styled list.
func Render(rows []Row, opts Options) string {
	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(titleStyle.Render(opts.Title))
		b.WriteString("\n")
	}

	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render(EmptyText))
		b.WriteString("\n")
	}

	for i, row := range rows {
		line := renderLine(row)
		if i == opts.Cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if row.Expanded {
			b.WriteString(detailStyle.Render(Details(row)))
			b.WriteString("\n")
		}
	}

	if opts.Footer != "" {
		b.WriteString(mutedStyle.Render(opts.Footer))
		b.WriteString("\n")
	}
	return b.String()
}

func renderLine(row Row) string {
	marker := "  "
	if row.Selected {
		marker = selectedStyle.Render("▸ ")
	}

	parts := []string{
		marker + symbolStyle.Render(row.Symbol),
		metricStyle.Render("$" + view.QuoteLast(row.Quote)),
		metricStyle.Render("score " + view.SignalScore(row.Signal)),
		badge(row.Signal.Trend),
		badge(row.Signal.Momentum),
	}

	if row.Holding != nil {
		parts = append(parts, "qty "+row.Holding.Qty.String())
		parts = append(parts, "P/L "+positionPL(row))
	}

	line := strings.Join(parts, " ")
	if msg := rowError(row); msg != "" {
		line += "  " + errorStyle.Render(msg)
	}
	return line
}

func badge(text string) string {
	style, ok := badgeStyles[view.Sentiment(text)]
	if !ok {
		style = badgeStyles[view.Neutral]
	}
	return style.Render(fmt.Sprintf("%-8s", text))
}

// rowError returns the inline error for a failed quote or signal.
func rowError(row Row) string {
	switch {
	case row.Quote.Error != "":
		return row.Quote.Error
	case row.Signal.Error != "":
		return row.Signal.Error
	default:
		return ""
	}
}

func positionPL(row Row) string {
	val, ok := row.Holding.Value(row.Quote.Last)
	if !ok {
		return view.Placeholder
	}
	pl := portfolio.Float(val.PL)
	pct := portfolio.Float(val.PLPercent)
	return fmt.Sprintf("%s (%s)", view.FormatGainLoss(pl), view.FormatPercent(pct))
}

// Details renders the expanded block for a row.
func Details(row Row) string {
	q, s := row.Quote, row.Signal
	ts := q.Timestamp
	if ts == "" {
		ts = view.Placeholder
	}

	lines := []string{
		"Quote summary",
		"  last: " + view.FormatPrice(q.Last),
		"  ts_event: " + ts,
		"  provider: " + q.Provider,
		"Signal summary",
		"  score: " + view.FormatScore(s.Score),
		"  confidence: " + view.FormatConfidence(s.Confidence),
		"  ma10: " + view.FormatIndicator(s.Debug.MA10),
		"  ma20: " + view.FormatIndicator(s.Debug.MA20),
		"  rsi14: " + view.FormatIndicator(s.Debug.RSI14),
	}

	if row.Holding != nil {
		h := row.Holding
		lines = append(lines,
			"Position",
			fmt.Sprintf("  qty: %s (%d lots)", h.Qty.String(), h.Lots),
			"  avg cost: "+h.AvgCost.StringFixed(2),
		)
		if val, ok := h.Value(q.Last); ok {
			lines = append(lines,
				"  market value: "+val.MarketValue.StringFixed(2),
				"  P/L: "+positionPL(row),
			)
		}
	}

	if q.Error != "" {
		lines = append(lines, "quote error: "+q.Error)
	}
	if s.Error != "" {
		lines = append(lines, "signal error: "+s.Error)
	}

	lines = append(lines, "Raw JSON", RawJSON(row))
	return strings.Join(lines, "\n")
}

// RawJSON renders the cached quote and signal bodies as indented JSON.
func RawJSON(row Row) string {
	payload := struct {
		Quote  json.RawMessage `json:"quote"`
		Signal json.RawMessage `json:"signal"`
	}{
		Quote:  json.RawMessage("{}"),
		Signal: json.RawMessage("{}"),
	}
	if row.Quote.Raw != nil && len(row.Quote.Raw.Body) > 0 {
		payload.Quote = row.Quote.Raw.Body
	}
	if row.Signal.Raw != nil && len(row.Signal.Raw.Body) > 0 {
		payload.Signal = row.Signal.Raw.Body
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return strings.TrimRight(view.PrettyJSON(data), "\n")
}

// PortfolioSummary renders total cost basis, value and P/L for rows that
// carry holdings.
func PortfolioSummary(rows []Row) string {
	holdings := make([]portfolio.Holding, 0, len(rows))
	last := make(map[string]*float64, len(rows))
	for _, row := range rows {
		if row.Holding == nil {
			continue
		}
		holdings = append(holdings, *row.Holding)
		last[row.Symbol] = row.Quote.Last
	}
	if len(holdings) == 0 {
		return ""
	}

	total, priced := portfolio.Totals(holdings, last)
	if !priced {
		return fmt.Sprintf("Cost basis $%s  Value -  P/L -", total.CostBasis.StringFixed(2))
	}
	return fmt.Sprintf("Cost basis $%s  Value $%s  P/L %s (%s)",
		total.CostBasis.StringFixed(2),
		total.MarketValue.StringFixed(2),
		view.FormatGainLoss(portfolio.Float(total.PL)),
		view.FormatPercent(portfolio.Float(total.PLPercent.Round(2))),
	)
}

// HoldingsBySymbol indexes holdings for State.Holdings.
func HoldingsBySymbol(holdings []portfolio.Holding) map[string]portfolio.Holding {
	out := make(map[string]portfolio.Holding, len(holdings))
	for _, h := range holdings {
		out[h.Symbol] = h
	}
	return out
}
