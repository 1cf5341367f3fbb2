package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/apollo67/dash/internal/portfolio"
	"github.com/apollo67/dash/internal/symbol"
)

// DefaultWatchlist is used when no usable watchlist is stored.
var DefaultWatchlist = []string{"AAPL", "MSFT", "NVDA"}

// Parsed is the outcome of decoding a stored value. When Fallback is set,
// Value holds the documented default and Reason says why.
type Parsed[T any] struct {
	Value    T
	Fallback bool
	Reason   string
	// Missing is set when nothing was stored at all.
	Missing bool
	// Dropped counts array elements discarded as invalid.
	Dropped int
}

func defaultWatchlist() []string {
	out := make([]string, len(DefaultWatchlist))
	copy(out, DefaultWatchlist)
	return out
}

// ParseWatchlist decodes a stored watchlist. Missing, malformed or
// non-array values fall back to DefaultWatchlist. Entries are normalized
// and de-duplicated; non-string entries are dropped.
func ParseWatchlist(raw string) Parsed[[]string] {
	if raw == "" {
		return Parsed[[]string]{Value: defaultWatchlist(), Fallback: true, Missing: true, Reason: "no stored watchlist"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return Parsed[[]string]{Value: defaultWatchlist(), Fallback: true, Reason: "stored watchlist is not a JSON array"}
	}

	symbols := make([]string, 0, len(items))
	dropped := 0
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil || symbol.Normalize(s) == "" {
			dropped++
			continue
		}
		symbols = append(symbols, s)
	}
	return Parsed[[]string]{Value: symbol.Unique(symbols), Dropped: dropped}
}

// ParsePortfolio decodes stored lots. Missing, malformed or non-array
// values fall back to an empty portfolio. Lots without a symbol, with a
// non-positive quantity or a negative cost are dropped.
func ParsePortfolio(raw string) Parsed[[]portfolio.Lot] {
	empty := []portfolio.Lot{}
	if raw == "" {
		return Parsed[[]portfolio.Lot]{Value: empty, Fallback: true, Missing: true, Reason: "no stored portfolio"}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return Parsed[[]portfolio.Lot]{Value: empty, Fallback: true, Reason: "stored portfolio is not a JSON array"}
	}

	lots := make([]portfolio.Lot, 0, len(items))
	dropped := 0
	for _, item := range items {
		var lot portfolio.Lot
		if err := json.Unmarshal(item, &lot); err != nil {
			dropped++
			continue
		}
		lot.Symbol = symbol.Normalize(lot.Symbol)
		if lot.Symbol == "" || lot.Qty <= 0 || lot.AvgCost < 0 {
			dropped++
			continue
		}
		lots = append(lots, lot)
	}
	return Parsed[[]portfolio.Lot]{Value: lots, Dropped: dropped}
}

// read returns the raw value for key, treating ErrNotFound as empty.
func read(s Store, key string) (string, error) {
	raw, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return raw, err
}

// LoadWatchlist reads and parses the watchlist. A store error falls back
// to the default like any other unusable value.
func LoadWatchlist(s Store) Parsed[[]string] {
	raw, err := read(s, KeyWatchlist)
	if err != nil {
		return Parsed[[]string]{Value: defaultWatchlist(), Fallback: true, Reason: fmt.Sprintf("failed to read watchlist: %v", err)}
	}
	return ParseWatchlist(raw)
}

// SaveWatchlist stores the normalized, de-duplicated watchlist.
func SaveWatchlist(s Store, symbols []string) error {
	encoded, err := json.Marshal(symbol.Unique(symbols))
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	if err := s.Set(KeyWatchlist, string(encoded)); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	return nil
}

// LoadPortfolio reads and parses the portfolio lots.
func LoadPortfolio(s Store) Parsed[[]portfolio.Lot] {
	raw, err := read(s, KeyPortfolio)
	if err != nil {
		return Parsed[[]portfolio.Lot]{Value: []portfolio.Lot{}, Fallback: true, Reason: fmt.Sprintf("failed to read portfolio: %v", err)}
	}
	return ParsePortfolio(raw)
}

// SavePortfolio stores the lots.
func SavePortfolio(s Store, lots []portfolio.Lot) error {
	if lots == nil {
		lots = []portfolio.Lot{}
	}
	encoded, err := json.Marshal(lots)
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}
	if err := s.Set(KeyPortfolio, string(encoded)); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}
