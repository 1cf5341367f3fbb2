package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/dashboard"
	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/internal/panel"
	"github.com/apollo67/dash/internal/store"
	"github.com/apollo67/dash/internal/symbol"
	"github.com/apollo67/dash/internal/view"
	"github.com/apollo67/dash/pkg/marketdata"
)

// watchlistOptions holds dependencies for the watchlist commands.
type watchlistOptions struct {
	client   *marketdata.Client
	store    store.Store
	jsonMode bool
	sort     string
}

// controller builds a dashboard controller over the stored state.
func (o *watchlistOptions) controller() *dashboard.Controller {
	c := cache.New(o.client, cache.WithLogger(o.client.Logger))
	return dashboard.New(c, o.client, dashboard.Options{
		Store:    o.store,
		Provider: o.client.Provider,
		Logger:   o.client.Logger,
	})
}

// newWatchlistCmd creates the watchlist command and its subcommands.
func newWatchlistCmd(opts *watchlistOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Show and edit the watchlist",
		Long: `Show the watchlist with quotes and signals, or add and remove symbols.
The watchlist is shared with the dashboard.

Examples:
  dash watchlist                  # List, sorted by symbol
  dash watchlist --sort score     # Highest score first
  dash watchlist add coin         # Symbols are upper-cased
  dash watchlist remove NVDA`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchlistList(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.sort, "sort", panel.SortSymbol, "Sort by symbol, price or score")

	cmd.AddCommand(newWatchlistListCmd(opts))
	cmd.AddCommand(newWatchlistAddCmd(opts))
	cmd.AddCommand(newWatchlistRemoveCmd(opts))

	cmd.SilenceUsage = true

	return cmd
}

func newWatchlistListCmd(opts *watchlistOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List watchlist symbols with quotes and signals",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchlistList(cmd, opts)
		},
	}
}

func newWatchlistAddCmd(opts *watchlistOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "add SYMBOL [SYMBOL...]",
		Short:        "Add symbols to the watchlist",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := opts.controller()
			for _, arg := range args {
				added, err := ctl.OnAddWatchlist(arg)
				if err != nil {
					return fmt.Errorf("failed to add %q: %w", arg, err)
				}
				if added {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to watchlist\n", symbol.Normalize(arg))
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is already on the watchlist\n", symbol.Normalize(arg))
				}
			}
			return nil
		},
	}
}

func newWatchlistRemoveCmd(opts *watchlistOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "remove SYMBOL [SYMBOL...]",
		Aliases:      []string{"rm"},
		Short:        "Remove symbols from the watchlist",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := opts.controller()
			for _, arg := range args {
				removed, err := ctl.OnRemoveWatchlist(arg)
				if err != nil {
					return fmt.Errorf("failed to remove %q: %w", arg, err)
				}
				if !removed {
					return fmt.Errorf("%s is not on the watchlist", symbol.Normalize(arg))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from watchlist\n", symbol.Normalize(arg))
			}
			return nil
		},
	}
}

func runWatchlistList(cmd *cobra.Command, opts *watchlistOptions) error {
	ctl := opts.controller()
	symbols := ctl.Watchlist()

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Symbol", "Last", "Score", "Trend", "Momentum", "Status"}
	if len(symbols) == 0 {
		if opts.jsonMode {
			return formatter.Table(headers, nil)
		}
		return formatter.Print(panel.EmptyText)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	c := cache.New(opts.client, cache.WithLogger(opts.client.Logger))
	rows := loadRows(ctx, c, symbols, panel.State{Provider: opts.client.Provider})
	panel.SortWatchlist(rows, panel.NormalizeSort(opts.sort))

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			row.Symbol,
			view.QuoteLast(row.Quote),
			view.SignalScore(row.Signal),
			row.Signal.Trend,
			row.Signal.Momentum,
			rowStatus(row),
		})
	}
	return formatter.Table(headers, table)
}

func init() {
	opts := &watchlistOptions{}
	watchlistCmd := newWatchlistCmd(opts)
	watchlistCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.store = a.store
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(watchlistCmd)
}
