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

// signalOptions holds dependencies for the signal command.
type signalOptions struct {
	client   *marketdata.Client
	jsonMode bool
	raw      bool
}

// newSignalCmd creates the signal command with the given options.
func newSignalCmd(opts *signalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signal SYMBOL [SYMBOL...]",
		Short: "Get technical signals",
		Long: `Get the basic technical signal for one or more symbols: score,
trend, momentum, confidence and the MA10 / MA20 / RSI14 inputs.

Examples:
  dash signal AAPL
  dash signal AAPL TSLA --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignal(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the backend response bodies unchanged")

	cmd.SilenceUsage = true

	return cmd
}

func runSignal(cmd *cobra.Command, opts *signalOptions, args []string) error {
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
			results[i] = opts.client.Signal(ctx, sym)
			return nil
		})
	}
	_ = g.Wait()

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.raw {
		return printRaw(formatter, results)
	}

	headers := []string{"Symbol", "Score", "Trend", "Momentum", "Confidence", "MA10", "MA20", "RSI14", "Status"}
	rows := make([][]string, 0, len(symbols))

	failed := 0
	for i, sym := range symbols {
		s := view.ProjectSignal(&results[i])
		status := "ok"
		if !s.OK {
			failed++
			status = s.Error
		}
		rows = append(rows, []string{
			sym,
			view.SignalScore(s),
			s.Trend,
			s.Momentum,
			view.FormatConfidence(s.Confidence),
			view.FormatIndicator(s.Debug.MA10),
			view.FormatIndicator(s.Debug.MA20),
			view.FormatIndicator(s.Debug.RSI14),
			status,
		})
	}

	if err := formatter.Table(headers, rows); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("failed to fetch %d of %d signals", failed, len(symbols))
	}
	return nil
}

func init() {
	opts := &signalOptions{}
	signalCmd := newSignalCmd(opts)
	signalCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(signalCmd)
}
