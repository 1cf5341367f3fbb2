// Package portfolio aggregates user-entered lots into holdings and values
// them against the latest quote.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/apollo67/dash/internal/symbol"
)

// Lot is one user-entered purchase.
type Lot struct {
	Symbol  string  `json:"symbol" yaml:"symbol"`
	Qty     float64 `json:"qty" yaml:"qty"`
	AvgCost float64 `json:"avg_cost" yaml:"avg_cost"`
}

// DefaultLots seeds the portfolio panel when nothing has been stored yet.
var DefaultLots = []Lot{
	{Symbol: "AAPL", Qty: 10},
	{Symbol: "TSLA", Qty: 5},
	{Symbol: "MSFT", Qty: 8},
}

// Holding is the aggregate of every lot for one symbol.
type Holding struct {
	Symbol  string
	Qty     decimal.Decimal
	AvgCost decimal.Decimal
	Lots    int
}

// Aggregate groups lots by normalized symbol in first-seen order. Quantity
// is summed and cost is the quantity-weighted average; a zero total
// quantity yields a zero average cost.
func Aggregate(lots []Lot) []Holding {
	type acc struct {
		qty  decimal.Decimal
		cost decimal.Decimal
		lots int
	}

	order := make([]string, 0, len(lots))
	bySymbol := make(map[string]*acc, len(lots))
	for _, lot := range lots {
		sym := symbol.Normalize(lot.Symbol)
		if sym == "" {
			continue
		}
		a, ok := bySymbol[sym]
		if !ok {
			a = &acc{}
			bySymbol[sym] = a
			order = append(order, sym)
		}
		qty := decimal.NewFromFloat(lot.Qty)
		a.qty = a.qty.Add(qty)
		a.cost = a.cost.Add(qty.Mul(decimal.NewFromFloat(lot.AvgCost)))
		a.lots++
	}

	holdings := make([]Holding, 0, len(order))
	for _, sym := range order {
		a := bySymbol[sym]
		avg := decimal.Zero
		if !a.qty.IsZero() {
			avg = a.cost.DivRound(a.qty, 8)
		}
		holdings = append(holdings, Holding{
			Symbol:  sym,
			Qty:     a.qty,
			AvgCost: avg,
			Lots:    a.lots,
		})
	}
	return holdings
}

// Symbols returns the holding symbols in order.
func Symbols(holdings []Holding) []string {
	out := make([]string, len(holdings))
	for i, h := range holdings {
		out[i] = h.Symbol
	}
	return out
}

// Valuation is a holding priced at the last trade.
type Valuation struct {
	CostBasis   decimal.Decimal
	MarketValue decimal.Decimal
	PL          decimal.Decimal
	PLPercent   decimal.Decimal
}

// Value prices the holding at last. ok is false when last is unknown.
func (h Holding) Value(last *float64) (Valuation, bool) {
	basis := h.Qty.Mul(h.AvgCost)
	if last == nil {
		return Valuation{CostBasis: basis}, false
	}
	market := h.Qty.Mul(decimal.NewFromFloat(*last))
	pl := market.Sub(basis)
	pct := decimal.Zero
	if !basis.IsZero() {
		pct = pl.Div(basis).Mul(decimal.NewFromInt(100))
	}
	return Valuation{
		CostBasis:   basis,
		MarketValue: market,
		PL:          pl,
		PLPercent:   pct,
	}, true
}

// Totals sums valuations across holdings. Holdings without a price count
// toward cost basis only; priced reports whether every holding had one.
func Totals(holdings []Holding, lastBySymbol map[string]*float64) (total Valuation, priced bool) {
	priced = true
	for _, h := range holdings {
		v, ok := h.Value(lastBySymbol[h.Symbol])
		total.CostBasis = total.CostBasis.Add(v.CostBasis)
		if !ok {
			priced = false
			continue
		}
		total.MarketValue = total.MarketValue.Add(v.MarketValue)
		total.PL = total.PL.Add(v.PL)
	}
	if !total.CostBasis.IsZero() {
		total.PLPercent = total.PL.Div(total.CostBasis).Mul(decimal.NewFromInt(100))
	}
	return total, priced
}

// Float converts a decimal for display formatting.
func Float(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
