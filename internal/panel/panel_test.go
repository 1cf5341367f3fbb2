package panel

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/portfolio"
	"github.com/apollo67/dash/pkg/marketdata"
)

type mapLookup map[string]*cache.Entry

func (m mapLookup) Get(sym string) (*cache.Entry, bool) {
	e, ok := m[sym]
	return e, ok
}

func entry(quote, signal string) *cache.Entry {
	return &cache.Entry{
		Quote:  marketdata.NewResult(200, quote),
		Signal: marketdata.NewResult(200, signal),
	}
}

func ptr(f float64) *float64 { return &f }

func rowsWith(vals map[string]*float64, price bool) []Row {
	var rows []Row
	for sym, v := range vals {
		r := Row{Symbol: sym}
		if price {
			r.Quote.Last = v
		} else {
			r.Signal.Score = v
		}
		rows = append(rows, r)
	}
	return rows
}

func symbols(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Symbol
	}
	return out
}

func TestRows_ReportsMisses(t *testing.T) {
	src := mapLookup{
		"AAPL": entry(`{"symbol":"AAPL","quote":{"last":190.5}}`, `{"score":72,"trend":"bullish"}`),
	}

	rows, misses := Rows([]string{"aapl", "MSFT", "AAPL"}, src, State{Selected: "MSFT", Expanded: "AAPL"})
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"MSFT"}, misses)

	assert.True(t, rows[0].Cached)
	assert.True(t, rows[0].Expanded)
	assert.Equal(t, 190.5, *rows[0].Quote.Last)
	assert.Equal(t, 72.0, *rows[0].Signal.Score)

	assert.False(t, rows[1].Cached)
	assert.True(t, rows[1].Selected)
	assert.Nil(t, rows[1].Quote.Last)
	assert.Equal(t, "neutral", rows[1].Signal.Trend)
}

func TestRows_AttachesHoldings(t *testing.T) {
	holdings := HoldingsBySymbol(portfolio.Aggregate([]portfolio.Lot{{Symbol: "TSLA", Qty: 5, AvgCost: 200}}))
	rows, _ := Rows([]string{"TSLA", "AAPL"}, mapLookup{}, State{Holdings: holdings})

	require.NotNil(t, rows[0].Holding)
	assert.True(t, rows[0].Holding.Qty.Equal(decimal.NewFromInt(5)))
	assert.Nil(t, rows[1].Holding)
}

func TestSortWatchlist_Price(t *testing.T) {
	rows := rowsWith(map[string]*float64{"A": ptr(10), "B": nil, "C": ptr(5)}, true)
	SortWatchlist(rows, SortPrice)
	assert.Equal(t, []string{"A", "C", "B"}, symbols(rows))
}

func TestSortWatchlist_Score(t *testing.T) {
	rows := rowsWith(map[string]*float64{"A": ptr(-5), "B": nil, "C": ptr(40), "D": ptr(40)}, false)
	SortWatchlist(rows, SortByScore)
	assert.Equal(t, []string{"C", "D", "A", "B"}, symbols(rows))
}

func TestSortWatchlist_SymbolAndUnknown(t *testing.T) {
	for _, mode := range []string{SortSymbol, "volume", ""} {
		rows := []Row{{Symbol: "MSFT"}, {Symbol: "AAPL"}, {Symbol: "NVDA"}}
		SortWatchlist(rows, mode)
		assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, symbols(rows), mode)
	}
}

func TestSortScore_MissingLastAlphabetical(t *testing.T) {
	rows := rowsWith(map[string]*float64{"Z": nil, "Y": nil, "X": ptr(1)}, false)
	SortScore(rows)
	assert.Equal(t, []string{"X", "Y", "Z"}, symbols(rows))
}

func TestSortCycle(t *testing.T) {
	assert.Equal(t, SortPrice, NextSort(SortSymbol))
	assert.Equal(t, SortByScore, NextSort(SortPrice))
	assert.Equal(t, SortSymbol, NextSort(SortByScore))
	assert.Equal(t, SortPrice, NextSort("bogus"))
	assert.Equal(t, SortSymbol, NormalizeSort("bogus"))
}

func TestScannerSymbols(t *testing.T) {
	universe := make([]string, 30)
	for i := range universe {
		universe[i] = string(rune('A' + i%26))
	}

	assert.Len(t, ScannerSymbols(universe, false), ScannerPreview)
	assert.Len(t, ScannerSymbols(universe, true), 30)
	assert.Len(t, ScannerSymbols(universe[:3], false), 3)
	assert.Equal(t, "Show more", ToggleLabel(false))
	assert.Equal(t, "Show less", ToggleLabel(true))
}

func TestRender_Empty(t *testing.T) {
	out := Render(nil, Options{Title: "Watchlist", Cursor: -1})
	assert.Contains(t, out, "Watchlist")
	assert.Contains(t, out, EmptyText)
}

func TestRender_RowsAndDetails(t *testing.T) {
	src := mapLookup{
		"AAPL": entry(
			`{"symbol":"AAPL","provider":"twelvedata","quote":{"last":190.5,"ts_event":"2024-05-01T00:00:00Z"}}`,
			`{"score":72.4,"trend":"bullish","momentum":"negative","confidence":0.64,"debug":{"ma10":188.1,"ma20":185,"rsi14":61.2}}`,
		),
	}
	rows, _ := Rows([]string{"AAPL"}, src, State{Expanded: "AAPL"})

	out := Render(rows, Options{Cursor: 0, Footer: ToggleLabel(false)})
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "$190.50")
	assert.Contains(t, out, "score 72")
	assert.Contains(t, out, "bullish")
	assert.Contains(t, out, "negative")
	assert.Contains(t, out, "Show more")

	assert.Contains(t, out, "ts_event: 2024-05-01T00:00:00Z")
	assert.Contains(t, out, "confidence: 64%")
	assert.Contains(t, out, "ma10: 188.1")
	assert.Contains(t, out, "rsi14: 61.2")
	assert.Contains(t, out, `"quote"`)
	assert.Contains(t, out, `"signal"`)
}

func TestRender_ErrorRow(t *testing.T) {
	src := mapLookup{
		"BAD": {
			Quote:  marketdata.NewResult(503, `{"status":"error","message":"provider down"}`),
			Signal: marketdata.NewResult(200, `{"error":"not enough bars"}`),
		},
	}
	rows, _ := Rows([]string{"BAD"}, src, State{})

	out := Render(rows, Options{Cursor: -1})
	assert.Contains(t, out, "$Error")
	assert.Contains(t, out, "score ERR")
	assert.Contains(t, out, "provider down")
	assert.Contains(t, out, "neutral")
}

func TestDetails_Position(t *testing.T) {
	holdings := HoldingsBySymbol(portfolio.Aggregate([]portfolio.Lot{
		{Symbol: "AAPL", Qty: 10, AvgCost: 100},
		{Symbol: "AAPL", Qty: 10, AvgCost: 120},
	}))
	src := mapLookup{"AAPL": entry(`{"quote":{"last":121}}`, `{}`)}
	rows, _ := Rows([]string{"AAPL"}, src, State{Holdings: holdings, Expanded: "AAPL"})

	details := Details(rows[0])
	assert.Contains(t, details, "qty: 20 (2 lots)")
	assert.Contains(t, details, "avg cost: 110.00")
	assert.Contains(t, details, "market value: 2420.00")
	assert.Contains(t, details, "+$220.00 (+10.00%)")
}

func TestRawJSON_Placeholders(t *testing.T) {
	out := RawJSON(Row{Symbol: "AAPL"})
	assert.Contains(t, out, `"quote": {}`)
	assert.Contains(t, out, `"signal": {}`)
}

func TestPortfolioSummary(t *testing.T) {
	holdings := HoldingsBySymbol(portfolio.Aggregate([]portfolio.Lot{
		{Symbol: "AAPL", Qty: 10, AvgCost: 100},
		{Symbol: "MSFT", Qty: 1, AvgCost: 50},
	}))
	src := mapLookup{
		"AAPL": entry(`{"quote":{"last":110}}`, `{}`),
		"MSFT": entry(`{"quote":{"last":50}}`, `{}`),
	}
	rows, _ := Rows([]string{"AAPL", "MSFT"}, src, State{Holdings: holdings})
	assert.Equal(t, "Cost basis $1050.00  Value $1150.00  P/L +$100.00 (+9.52%)", PortfolioSummary(rows))

	rows, _ = Rows([]string{"AAPL", "MSFT"}, mapLookup{}, State{Holdings: holdings})
	assert.Equal(t, "Cost basis $1050.00  Value -  P/L -", PortfolioSummary(rows))

	assert.Empty(t, PortfolioSummary(nil))
}
