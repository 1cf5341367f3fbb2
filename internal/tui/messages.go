package tui

import "time"

// Message types for async operations

// SymbolLoadedMsg is sent when a symbol selection finished loading.
type SymbolLoadedMsg struct {
	Symbol string
}

// WarmedMsg is sent when background fetches for cache misses finished.
type WarmedMsg struct {
	Symbols []string
}

// RefreshedMsg is sent when a forced refresh finished.
type RefreshedMsg struct{}

// SavedMsg reports the outcome of persisting the watchlist or portfolio.
type SavedMsg struct {
	What string
	Err  error
}

// TickMsg is sent periodically for auto-refresh.
type TickMsg time.Time
