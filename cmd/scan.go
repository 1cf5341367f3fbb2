package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/internal/panel"
	"github.com/apollo67/dash/internal/view"
	"github.com/apollo67/dash/pkg/marketdata"
)

// scanOptions holds dependencies for the scan command.
type scanOptions struct {
	client   *marketdata.Client
	symbols  []string
	jsonMode bool
	all      bool
}

// newScanCmd creates the scan command with the given options.
func newScanCmd(opts *scanOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Rank the scanner universe by signal score",
		Long: `Fetch quotes and signals for the scanner universe and list them by
signal score, highest first. Symbols without a score sort last.

By default only the first 15 symbols of the universe are scanned; use --all
for the full list. The universe is set by scanner_symbols in the config.

Examples:
  dash scan
  dash scan --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Scan the whole universe")

	cmd.SilenceUsage = true

	return cmd
}

func runScan(cmd *cobra.Command, opts *scanOptions) error {
	symbols := panel.ScannerSymbols(opts.symbols, opts.all)
	if len(symbols) == 0 {
		return fmt.Errorf("no scanner symbols configured")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	c := cache.New(opts.client, cache.WithLogger(opts.client.Logger))
	rows := loadRows(ctx, c, symbols, panel.State{Provider: opts.client.Provider})
	panel.SortScore(rows)

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Symbol", "Last", "Score", "Trend", "Momentum", "Confidence", "Status"}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			row.Symbol,
			view.QuoteLast(row.Quote),
			view.SignalScore(row.Signal),
			row.Signal.Trend,
			row.Signal.Momentum,
			view.FormatConfidence(row.Signal.Confidence),
			rowStatus(row),
		})
	}

	return formatter.Table(headers, table)
}

func init() {
	opts := &scanOptions{}
	scanCmd := newScanCmd(opts)
	scanCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.symbols = a.cfg.ScannerSymbols
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(scanCmd)
}
