package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/dashboard"
	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/internal/panel"
	"github.com/apollo67/dash/internal/portfolio"
	"github.com/apollo67/dash/internal/store"
	"github.com/apollo67/dash/internal/symbol"
	"github.com/apollo67/dash/internal/view"
	"github.com/apollo67/dash/pkg/marketdata"
)

// portfolioOptions holds dependencies for the portfolio commands.
type portfolioOptions struct {
	client   *marketdata.Client
	store    store.Store
	jsonMode bool
}

func (o *portfolioOptions) controller() *dashboard.Controller {
	c := cache.New(o.client, cache.WithLogger(o.client.Logger))
	return dashboard.New(c, o.client, dashboard.Options{
		Store:    o.store,
		Provider: o.client.Provider,
		Logger:   o.client.Logger,
	})
}

// newPortfolioCmd creates the portfolio command and its subcommands.
func newPortfolioCmd(opts *portfolioOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show and edit local portfolio lots",
		Long: `Show holdings valued at the latest quote, or record and remove lots.
Lots of the same symbol are combined into one holding with a
quantity-weighted average cost. Lots are stored locally; nothing is traded.

Examples:
  dash portfolio                      # Holdings with value and P/L
  dash portfolio add AAPL 10 182.50   # 10 shares at $182.50
  dash portfolio add TSLA 2           # Cost defaults to 0
  dash portfolio remove TSLA          # Drop every TSLA lot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortfolioList(cmd, opts)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "list",
		Short:        "List holdings with value and P/L",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortfolioList(cmd, opts)
		},
	})
	cmd.AddCommand(newPortfolioAddCmd(opts))
	cmd.AddCommand(newPortfolioRemoveCmd(opts))

	cmd.SilenceUsage = true

	return cmd
}

func newPortfolioAddCmd(opts *portfolioOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "add SYMBOL QTY [AVG_COST]",
		Short:        "Record a lot",
		Args:         cobra.RangeArgs(2, 3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lot, err := portfolio.ParseLotFields(args)
			if err != nil {
				return err
			}
			if err := opts.controller().OnAddLot(lot); err != nil {
				return fmt.Errorf("failed to add lot: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %g %s at $%.2f\n", lot.Qty, symbol.Normalize(lot.Symbol), lot.AvgCost)
			return nil
		},
	}
}

func newPortfolioRemoveCmd(opts *portfolioOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "remove SYMBOL",
		Aliases:      []string{"rm"},
		Short:        "Remove every lot of a symbol",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sym := symbol.Normalize(args[0])
			n, err := opts.controller().OnRemoveLot(sym)
			if err != nil {
				return fmt.Errorf("failed to remove lots: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("no lots for %s", sym)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s lot(s)\n", n, sym)
			return nil
		},
	}
}

func runPortfolioList(cmd *cobra.Command, opts *portfolioOptions) error {
	holdings := portfolio.Aggregate(opts.controller().Lots())

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Symbol", "Qty", "Lots", "Avg Cost", "Last", "Value", "P/L", "P/L %"}
	if len(holdings) == 0 {
		if opts.jsonMode {
			return formatter.Table(headers, nil)
		}
		return formatter.Print("No lots.")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	c := cache.New(opts.client, cache.WithLogger(opts.client.Logger))
	rows := loadRows(ctx, c, portfolio.Symbols(holdings), panel.State{
		Provider: opts.client.Provider,
		Holdings: panel.HoldingsBySymbol(holdings),
	})

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		h := row.Holding
		value, pl, pct := view.Placeholder, view.Placeholder, view.Placeholder
		if v, ok := h.Value(row.Quote.Last); ok {
			value = "$" + v.MarketValue.StringFixed(2)
			pl = view.FormatGainLoss(portfolio.Float(v.PL))
			pct = view.FormatPercent(portfolio.Float(v.PLPercent.Round(2)))
		}
		table = append(table, []string{
			row.Symbol,
			h.Qty.String(),
			fmt.Sprintf("%d", h.Lots),
			"$" + h.AvgCost.StringFixed(2),
			view.QuoteLast(row.Quote),
			value,
			pl,
			pct,
		})
	}

	if err := formatter.Table(headers, table); err != nil {
		return err
	}
	if !opts.jsonMode {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", panel.PortfolioSummary(rows))
	}
	return nil
}

func init() {
	opts := &portfolioOptions{}
	portfolioCmd := newPortfolioCmd(opts)
	portfolioCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.store = a.store
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(portfolioCmd)
}
