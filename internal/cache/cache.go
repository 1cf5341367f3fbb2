// Package cache memoizes quote and signal results per symbol and coalesces
// concurrent fetches for the same symbol into a single pair of requests.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/apollo67/dash/internal/symbol"
	"github.com/apollo67/dash/pkg/marketdata"
)

// ErrEmptySymbol is returned when a symbol normalizes to "".
var ErrEmptySymbol = errors.New("symbol is required")

// Lookup results reported to the Recorder.
const (
	LookupHit       = "hit"
	LookupMiss      = "miss"
	LookupCoalesced = "coalesced"
)

// Source issues the two requests that make up an entry.
// *marketdata.Client satisfies it.
type Source interface {
	Quote(ctx context.Context, symbol string) marketdata.Result
	Signal(ctx context.Context, symbol string) marketdata.Result
}

// Recorder observes cache activity.
type Recorder interface {
	RecordLookup(result string)
	FetchStarted()
	FetchFinished()
}

// Entry is the last fetched quote and signal for a symbol.
type Entry struct {
	Quote     marketdata.Result
	Signal    marketdata.Result
	FetchedAt time.Time
}

// Cache is a memoizing, request-coalescing store of entries keyed by
// normalized symbol. Entries never expire; they are replaced only by a
// forced fetch. It is safe for concurrent use.
type Cache struct {
	source   Source
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time

	mu       sync.RWMutex
	entries  map[string]*Entry
	inFlight map[string]struct{}

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Cache) { c.recorder = r }
}

// WithClock overrides the time source used for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache backed by source.
func New(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:   source,
		logger:   zap.NewNop(),
		now:      time.Now,
		entries:  make(map[string]*Entry),
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached entry for sym without fetching.
func (c *Cache) Get(sym string) (*Entry, bool) {
	key := symbol.Normalize(sym)
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// InFlight reports whether a fetch for sym is currently running.
func (c *Cache) InFlight(sym string) bool {
	key := symbol.Normalize(sym)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.inFlight[key]
	return ok
}

// Len returns the number of cached symbols.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch returns the entry for sym. Without force a cached entry is returned
// with no network call. If a fetch for sym is already running, the caller
// shares its outcome instead of starting another, even when force is set.
//
// The shared fetch is detached from ctx: a caller whose context ends stops
// waiting, but the fetch runs to completion and still populates the cache.
func (c *Cache) Fetch(ctx context.Context, sym string, force bool) (*Entry, error) {
	key := symbol.Normalize(sym)
	if key == "" {
		return nil, ErrEmptySymbol
	}

	if !force {
		if e, ok := c.Get(key); ok {
			c.record(LookupHit)
			return e, nil
		}
	}

	if c.InFlight(key) {
		c.record(LookupCoalesced)
	} else {
		c.record(LookupMiss)
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(detached, key), nil
	})

	select {
	case res := <-ch:
		return res.Val.(*Entry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load issues the quote and signal requests concurrently and stores the
// combined entry. Failures live inside the results, so both always finish.
func (c *Cache) load(ctx context.Context, key string) *Entry {
	c.mu.Lock()
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.FetchStarted()
		defer c.recorder.FetchFinished()
	}
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	entry := &Entry{}
	var g errgroup.Group
	g.Go(func() error {
		entry.Quote = c.source.Quote(ctx, key)
		return nil
	})
	g.Go(func() error {
		entry.Signal = c.source.Signal(ctx, key)
		return nil
	})
	_ = g.Wait()
	entry.FetchedAt = c.now()

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	c.logger.Debug("symbol fetched",
		zap.String("symbol", key),
		zap.Bool("quote_ok", entry.Quote.OK),
		zap.Bool("signal_ok", entry.Signal.OK),
	)
	return entry
}

// Missing returns the normalized, unique symbols that are neither cached
// nor in flight.
func (c *Cache) Missing(symbols []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []string
	for _, sym := range symbol.Unique(symbols) {
		if _, ok := c.entries[sym]; ok {
			continue
		}
		if _, ok := c.inFlight[sym]; ok {
			continue
		}
		out = append(out, sym)
	}
	return out
}

// Warm starts background fetches for every symbol in symbols that is not
// cached or in flight. The returned channel closes once they all finished;
// it is already closed when there was nothing to fetch. The fetched
// symbols are returned so callers can decide whether to re-render.
func (c *Cache) Warm(ctx context.Context, symbols []string) ([]string, <-chan struct{}) {
	missing := c.Missing(symbols)
	done := make(chan struct{})
	if len(missing) == 0 {
		close(done)
		return nil, done
	}

	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for _, sym := range missing {
			wg.Add(1)
			go func(sym string) {
				defer wg.Done()
				if _, err := c.Fetch(ctx, sym, false); err != nil {
					c.logger.Warn("warm fetch failed", zap.String("symbol", sym), zap.Error(err))
				}
			}(sym)
		}
		wg.Wait()
	}()
	return missing, done
}

func (c *Cache) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordLookup(result)
	}
}
