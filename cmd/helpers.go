package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/internal/panel"
	"github.com/apollo67/dash/pkg/marketdata"
)

// defaultTimeout bounds one-shot commands.
const defaultTimeout = 30 * time.Second

// loadRows fetches every symbol through a request cache, waits for them
// all and returns their panel rows.
func loadRows(ctx context.Context, c *cache.Cache, symbols []string, st panel.State) []panel.Row {
	_, done := c.Warm(ctx, symbols)
	select {
	case <-done:
	case <-ctx.Done():
	}
	rows, _ := panel.Rows(symbols, c, st)
	return rows
}

// rowStatus is the status column for a row: the first error or "ok".
func rowStatus(row panel.Row) string {
	switch {
	case !row.Cached:
		return "not loaded"
	case row.Quote.Error != "":
		return row.Quote.Error
	case row.Signal.Error != "":
		return row.Signal.Error
	default:
		return "ok"
	}
}


// printRaw writes each result body and fails if any result did.
func printRaw(f *output.Formatter, results []marketdata.Result) error {
	failed := 0
	for i := range results {
		if err := f.Raw(results[i].Body); err != nil {
			return err
		}
		if !results[i].OK {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(results))
	}
	return nil
}
