// Package panel builds and renders the scanner, watchlist and portfolio
// symbol lists from cached market data.
package panel

import (
	"sort"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/portfolio"
	"github.com/apollo67/dash/internal/symbol"
	"github.com/apollo67/dash/internal/view"
)

// Panel names.
const (
	Scanner   = "scanner"
	Watchlist = "watchlist"
	Portfolio = "portfolio"
)

// Watchlist sort modes.
const (
	SortSymbol  = "symbol"
	SortPrice   = "price"
	SortByScore = "score"
)

// SortModes lists the watchlist sort modes in cycle order.
var SortModes = []string{SortSymbol, SortPrice, SortByScore}

// ScannerPreview is how many scanner symbols show while collapsed.
const ScannerPreview = 15

// Lookup reads cached entries without fetching.
type Lookup interface {
	Get(sym string) (*cache.Entry, bool)
}

// Row is one symbol line in a panel. Rows are rebuilt on every render.
type Row struct {
	Symbol   string
	Quote    view.QuoteView
	Signal   view.SignalView
	Cached   bool
	Selected bool
	Expanded bool
	Holding  *portfolio.Holding
}

// State is the slice of application state a panel needs.
type State struct {
	Selected string
	// Expanded is the symbol expanded in this panel, if any.
	Expanded string
	Provider string
	Holdings map[string]portfolio.Holding
}

// Rows builds one row per symbol from the cache. Symbols without a cache
// entry get placeholder rows and are returned as misses.
func Rows(symbols []string, src Lookup, st State) (rows []Row, misses []string) {
	rows = make([]Row, 0, len(symbols))
	for _, sym := range symbol.Unique(symbols) {
		row := Row{
			Symbol:   sym,
			Selected: sym == st.Selected,
			Expanded: sym == st.Expanded,
		}

		entry, ok := src.Get(sym)
		if ok {
			row.Cached = true
			row.Quote = view.ProjectQuote(sym, &entry.Quote, st.Provider)
			row.Signal = view.ProjectSignal(&entry.Signal)
		} else {
			row.Quote = view.ProjectQuote(sym, nil, st.Provider)
			row.Signal = view.ProjectSignal(nil)
			misses = append(misses, sym)
		}

		if h, ok := st.Holdings[sym]; ok {
			row.Holding = &h
		}
		rows = append(rows, row)
	}
	return rows, misses
}

// ScannerSymbols returns the visible part of the scanner universe.
func ScannerSymbols(universe []string, expanded bool) []string {
	if expanded || len(universe) <= ScannerPreview {
		return universe
	}
	return universe[:ScannerPreview]
}

// ToggleLabel is the scanner expand/collapse hint.
func ToggleLabel(expanded bool) string {
	if expanded {
		return "Show less"
	}
	return "Show more"
}

// SortScore orders rows by score descending. Rows without a score go last;
// ties break alphabetically.
func SortScore(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessDesc(rows[i].Signal.Score, rows[j].Signal.Score, rows[i].Symbol, rows[j].Symbol)
	})
}

// SortWatchlist orders rows by mode. Unknown modes sort by symbol.
func SortWatchlist(rows []Row, mode string) {
	switch mode {
	case SortPrice:
		sort.SliceStable(rows, func(i, j int) bool {
			return lessDesc(rows[i].Quote.Last, rows[j].Quote.Last, rows[i].Symbol, rows[j].Symbol)
		})
	case SortByScore:
		SortScore(rows)
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Symbol < rows[j].Symbol
		})
	}
}

// NormalizeSort returns mode if known, otherwise SortSymbol.
func NormalizeSort(mode string) string {
	for _, m := range SortModes {
		if m == mode {
			return m
		}
	}
	return SortSymbol
}

// NextSort returns the mode after mode in SortModes.
func NextSort(mode string) string {
	mode = NormalizeSort(mode)
	for i, m := range SortModes {
		if m == mode {
			return SortModes[(i+1)%len(SortModes)]
		}
	}
	return SortSymbol
}

// lessDesc compares two optional values descending, missing last, then by
// symbol.
func lessDesc(a, b *float64, symA, symB string) bool {
	switch {
	case a == nil && b == nil:
		return symA < symB
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		return *a > *b
	default:
		return symA < symB
	}
}
