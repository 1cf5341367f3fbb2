// Package dashboard owns the interactive application state and turns user
// actions into cache fetches, projections and rendered panels.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/chart"
	"github.com/apollo67/dash/internal/panel"
	"github.com/apollo67/dash/internal/portfolio"
	"github.com/apollo67/dash/internal/store"
	"github.com/apollo67/dash/internal/symbol"
	"github.com/apollo67/dash/internal/view"
	"github.com/apollo67/dash/pkg/marketdata"
)

// DefaultSymbol is selected on start-up.
const DefaultSymbol = "AAPL"

// Fetcher is the request cache as seen by the controller.
type Fetcher interface {
	Fetch(ctx context.Context, sym string, force bool) (*cache.Entry, error)
	Get(sym string) (*cache.Entry, bool)
	Warm(ctx context.Context, symbols []string) ([]string, <-chan struct{})
}

// BarsSource loads historical bars for the chart.
type BarsSource interface {
	BarsResult(ctx context.Context, symbol, interval string, outputSize int) marketdata.Result
}

// Options configures a Controller.
type Options struct {
	Store          store.Store
	Scanner        []string
	Provider       string
	Interval       string
	BarsOutputSize int
	ChartWidth     int
	ChartHeight    int
	Logger         *zap.Logger
}

// Status describes the last action's outcome.
type Status struct {
	Loading   bool
	Err       error
	Message   string
	UpdatedAt time.Time
}

// Snapshot is a consistent copy of everything the UI draws.
type Snapshot struct {
	Selected        string
	Quote           view.QuoteView
	Signal          view.SignalView
	ChartMeta       string
	ChartPlot       string
	Scanner         []panel.Row
	Watchlist       []panel.Row
	Portfolio       []panel.Row
	Misses          []string
	Sort            string
	ScannerExpanded bool
	ScannerTotal    int
	Status          Status
}

// Controller holds application state. All methods are safe for concurrent
// use; network calls run without the lock held.
type Controller struct {
	mu     sync.Mutex
	cache  Fetcher
	bars   BarsSource
	store  store.Store
	logger *zap.Logger
	opts   Options

	selected        string
	watchlist       []string
	sortMode        string
	expanded        map[string]string
	scannerExpanded bool
	lots            []portfolio.Lot
	quote           view.QuoteView
	signal          view.SignalView
	chart           *chart.Chart
	status          Status
}

// New creates a controller and loads persisted watchlist and lots.
func New(c Fetcher, bars BarsSource, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Interval == "" {
		opts.Interval = marketdata.DefaultInterval
	}
	if opts.BarsOutputSize <= 0 {
		opts.BarsOutputSize = marketdata.DefaultOutputSize
	}
	if opts.Provider == "" {
		opts.Provider = marketdata.DefaultProvider
	}
	opts.Scanner = symbol.Unique(opts.Scanner)

	ctl := &Controller{
		cache:    c,
		bars:     bars,
		store:    opts.Store,
		logger:   opts.Logger,
		opts:     opts,
		selected: DefaultSymbol,
		sortMode: panel.SortSymbol,
		expanded: map[string]string{},
		chart:    chart.New(opts.ChartWidth, opts.ChartHeight),
	}
	ctl.quote = view.ProjectQuote(DefaultSymbol, nil, opts.Provider)
	ctl.signal = view.ProjectSignal(nil)

	wl := store.LoadWatchlist(ctl.store)
	if wl.Fallback && !wl.Missing {
		ctl.logger.Warn("using default watchlist", zap.String("reason", wl.Reason))
	}
	ctl.watchlist = wl.Value

	lots := store.LoadPortfolio(ctl.store)
	switch {
	case lots.Missing:
		ctl.lots = append([]portfolio.Lot(nil), portfolio.DefaultLots...)
	case lots.Fallback:
		ctl.logger.Warn("ignoring stored portfolio", zap.String("reason", lots.Reason))
		ctl.lots = lots.Value
	default:
		ctl.lots = lots.Value
	}
	if lots.Dropped > 0 {
		ctl.logger.Warn("dropped invalid portfolio lots", zap.Int("count", lots.Dropped))
	}
	return ctl
}

// OnSelectSymbol selects sym, fetches its quote and signal, then loads the
// chart. Failures and panics end up in Status.Err; nothing propagates.
func (c *Controller) OnSelectSymbol(ctx context.Context, sym string, force bool) {
	key := symbol.Normalize(sym)
	if key == "" {
		return
	}

	c.mu.Lock()
	c.selected = key
	c.status = Status{Loading: true, Message: "Loading " + key + "..."}
	c.chart.Loading(key)
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("select symbol panicked", zap.String("symbol", key), zap.Any("panic", r))
			c.fail(key, fmt.Errorf("failed to load %s: %v", key, r))
		}
	}()

	entry, err := c.cache.Fetch(ctx, key, force)
	if err != nil {
		c.fail(key, fmt.Errorf("failed to load %s: %w", key, err))
		return
	}

	c.applyEntry(key, entry)

	var res marketdata.Result
	if c.bars != nil {
		res = c.bars.BarsResult(ctx, key, c.opts.Interval, c.opts.BarsOutputSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != key {
		return
	}
	c.chart.RenderResult(key, res)
	c.status = Status{Message: key + " updated", UpdatedAt: entry.FetchedAt}
}

// applyEntry projects entry into the quote and signal views unless the
// selection moved on while it was loading.
func (c *Controller) applyEntry(key string, entry *cache.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != key {
		return
	}
	c.quote = view.ProjectQuote(key, &entry.Quote, c.opts.Provider)
	c.signal = view.ProjectSignal(&entry.Signal)
}

func (c *Controller) fail(key string, err error) {
	c.logger.Warn("select symbol failed", zap.String("symbol", key), zap.Error(err))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != key {
		return
	}
	c.chart.Clear(key)
	c.status = Status{Err: err}
}

// OnToggleExpand expands sym in panelName, or collapses it if it already
// was. It reports whether sym is now expanded.
func (c *Controller) OnToggleExpand(panelName, sym string) bool {
	key := symbol.Normalize(sym)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expanded[panelName] == key {
		delete(c.expanded, panelName)
		return false
	}
	c.expanded[panelName] = key
	return true
}

// OnSortChange sets the watchlist sort mode. Unknown modes sort by symbol.
func (c *Controller) OnSortChange(mode string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortMode = panel.NormalizeSort(mode)
	return c.sortMode
}

// OnCycleSort advances to the next watchlist sort mode.
func (c *Controller) OnCycleSort() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortMode = panel.NextSort(c.sortMode)
	return c.sortMode
}

// OnToggleScanner flips between the scanner preview and the full universe.
func (c *Controller) OnToggleScanner() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scannerExpanded = !c.scannerExpanded
	return c.scannerExpanded
}

// OnAddWatchlist appends sym to the watchlist and persists it. added is
// false when sym was already present.
func (c *Controller) OnAddWatchlist(sym string) (added bool, err error) {
	key := symbol.Normalize(sym)
	if key == "" {
		return false, cache.ErrEmptySymbol
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if symbol.Contains(c.watchlist, key) {
		return false, nil
	}
	c.watchlist = append(c.watchlist, key)
	return true, c.saveWatchlistLocked()
}

// OnRemoveWatchlist drops sym from the watchlist and persists it.
func (c *Controller) OnRemoveWatchlist(sym string) (removed bool, err error) {
	key := symbol.Normalize(sym)

	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]string, 0, len(c.watchlist))
	for _, s := range c.watchlist {
		if s == key {
			removed = true
			continue
		}
		next = append(next, s)
	}
	if !removed {
		return false, nil
	}
	c.watchlist = next
	if c.expanded[panel.Watchlist] == key {
		delete(c.expanded, panel.Watchlist)
	}
	return true, c.saveWatchlistLocked()
}

func (c *Controller) saveWatchlistLocked() error {
	if err := store.SaveWatchlist(c.store, c.watchlist); err != nil {
		c.logger.Warn("watchlist not saved", zap.Error(err))
		return err
	}
	return nil
}

// OnAddLot records a purchase and persists the portfolio.
func (c *Controller) OnAddLot(lot portfolio.Lot) error {
	lot.Symbol = symbol.Normalize(lot.Symbol)
	switch {
	case lot.Symbol == "":
		return cache.ErrEmptySymbol
	case lot.Qty <= 0:
		return errors.New("quantity must be positive")
	case lot.AvgCost < 0:
		return errors.New("average cost cannot be negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lots = append(c.lots, lot)
	return c.savePortfolioLocked()
}

// OnRemoveLot removes every lot of sym and returns how many were removed.
func (c *Controller) OnRemoveLot(sym string) (int, error) {
	key := symbol.Normalize(sym)

	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]portfolio.Lot, 0, len(c.lots))
	for _, lot := range c.lots {
		if lot.Symbol != key {
			next = append(next, lot)
		}
	}
	removed := len(c.lots) - len(next)
	if removed == 0 {
		return 0, nil
	}
	c.lots = next
	if c.expanded[panel.Portfolio] == key {
		delete(c.expanded, panel.Portfolio)
	}
	return removed, c.savePortfolioLocked()
}

func (c *Controller) savePortfolioLocked() error {
	if err := store.SavePortfolio(c.store, c.lots); err != nil {
		c.logger.Warn("portfolio not saved", zap.Error(err))
		return err
	}
	return nil
}

// OnRefresh force-fetches every visible symbol, then reloads the selected
// one including its chart.
func (c *Controller) OnRefresh(ctx context.Context) {
	selected := c.Selected()
	visible := c.visibleSymbols()

	var g errgroup.Group
	g.SetLimit(8)
	for _, sym := range visible {
		if sym == selected {
			continue
		}
		g.Go(func() error {
			if _, err := c.cache.Fetch(ctx, sym, true); err != nil {
				c.logger.Debug("refresh fetch failed", zap.String("symbol", sym), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	c.OnSelectSymbol(ctx, selected, true)
}

// WarmVisible starts background fetches for visible symbols missing from
// the cache. The channel closes when they finished.
func (c *Controller) WarmVisible(ctx context.Context) ([]string, <-chan struct{}) {
	return c.cache.Warm(ctx, c.visibleSymbols())
}

func (c *Controller) visibleSymbols() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := make([]string, 0, len(c.opts.Scanner)+len(c.watchlist)+len(c.lots))
	all = append(all, panel.ScannerSymbols(c.opts.Scanner, c.scannerExpanded)...)
	all = append(all, c.watchlist...)
	for _, lot := range c.lots {
		all = append(all, lot.Symbol)
	}
	return symbol.Unique(all)
}

// Panels builds the rows of all three panels from the current cache.
func (c *Controller) Panels() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	holdings := portfolio.Aggregate(c.lots)
	snap := Snapshot{
		Selected:        c.selected,
		Quote:           c.quote,
		Signal:          c.signal,
		ChartMeta:       c.chart.Meta(),
		ChartPlot:       c.chart.Plot(),
		Sort:            c.sortMode,
		ScannerExpanded: c.scannerExpanded,
		ScannerTotal:    len(c.opts.Scanner),
		Status:          c.status,
	}

	var misses []string
	state := func(name string) panel.State {
		return panel.State{Selected: c.selected, Expanded: c.expanded[name], Provider: c.opts.Provider}
	}

	rows, m := panel.Rows(panel.ScannerSymbols(c.opts.Scanner, c.scannerExpanded), c.cache, state(panel.Scanner))
	panel.SortScore(rows)
	snap.Scanner = rows
	misses = append(misses, m...)

	rows, m = panel.Rows(c.watchlist, c.cache, state(panel.Watchlist))
	panel.SortWatchlist(rows, c.sortMode)
	snap.Watchlist = rows
	misses = append(misses, m...)

	pst := state(panel.Portfolio)
	pst.Holdings = panel.HoldingsBySymbol(holdings)
	rows, m = panel.Rows(portfolio.Symbols(holdings), c.cache, pst)
	panel.SortScore(rows)
	snap.Portfolio = rows
	misses = append(misses, m...)

	snap.Misses = symbol.Unique(misses)
	return snap
}

// Selected returns the selected symbol.
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Watchlist returns a copy of the watchlist in insertion order.
func (c *Controller) Watchlist() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.watchlist...)
}

// Lots returns a copy of the portfolio lots.
func (c *Controller) Lots() []portfolio.Lot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]portfolio.Lot(nil), c.lots...)
}

// Expanded returns the symbol expanded in panelName, if any.
func (c *Controller) Expanded(panelName string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded[panelName]
}

// ResizeChart changes the plot area used by later renders.
func (c *Controller) ResizeChart(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chart.Width = width
	c.chart.Height = height
}
