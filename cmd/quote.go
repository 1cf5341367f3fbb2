package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/internal/symbol"
	"github.com/apollo67/dash/internal/view"
	"github.com/apollo67/dash/pkg/marketdata"
)

// quoteOptions holds dependencies for the quote command.
type quoteOptions struct {
	client   *marketdata.Client
	jsonMode bool
	raw      bool
}

// newQuoteCmd creates the quote command with the given options.
func newQuoteCmd(opts *quoteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote SYMBOL [SYMBOL...]",
		Short: "Get latest quotes",
		Long: `Get the latest quote for one or more symbols.

Examples:
  dash quote AAPL              # Quote for Apple
  dash quote aapl msft nvda    # Several symbols, case-insensitive
  dash quote AAPL --json       # Output in JSON format`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the backend response bodies unchanged")

	cmd.SilenceUsage = true

	return cmd
}

func runQuote(cmd *cobra.Command, opts *quoteOptions, args []string) error {
	symbols := symbol.Unique(args)
	if len(symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	results := make([]marketdata.Result, len(symbols))
	var g errgroup.Group
	for i, sym := range symbols {
		g.Go(func() error {
			results[i] = opts.client.Quote(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.raw {
		return printRaw(formatter, results)
	}

	headers := []string{"Symbol", "Last", "As Of", "Provider", "Status"}
	rows := make([][]string, 0, len(symbols))

	failed := 0
	for i, sym := range symbols {
		q := view.ProjectQuote(sym, &results[i], opts.client.Provider)
		status := "ok"
		if !q.OK {
			failed++
			status = q.Error
		}
		rows = append(rows, []string{
			q.Symbol,
			view.QuoteLast(q),
			orPlaceholder(q.Timestamp),
			q.Provider,
			status,
		})
	}

	if err := formatter.Table(headers, rows); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("failed to fetch %d of %d quotes", failed, len(symbols))
	}
	return nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return view.Placeholder
	}
	return s
}

func init() {
	opts := &quoteOptions{}
	quoteCmd := newQuoteCmd(opts)
	quoteCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(quoteCmd)
}
