package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apollo67/dash/internal/chart"
	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/internal/symbol"
	"github.com/apollo67/dash/pkg/marketdata"
)

// chartOptions holds dependencies for the chart command.
type chartOptions struct {
	client   *marketdata.Client
	jsonMode bool
	interval string
	size     int
	width    int
	height   int
}

// chartPoint is one row of the JSON series output.
type chartPoint struct {
	Date  string   `json:"date"`
	Close float64  `json:"close"`
	MA10  *float64 `json:"ma10"`
	MA20  *float64 `json:"ma20"`
}

// newChartCmd creates the chart command with the given options.
func newChartCmd(opts *chartOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart SYMBOL",
		Short: "Plot recent closes with moving averages",
		Long: `Plot closing prices for a symbol together with its 10 and 20 bar
moving averages.

Examples:
  dash chart AAPL                       # 60 daily bars
  dash chart AAPL --interval 1h --size 120
  dash chart AAPL --json                # Print the series instead`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.interval, "interval", marketdata.DefaultInterval, "Bar interval")
	cmd.Flags().IntVar(&opts.size, "size", marketdata.DefaultOutputSize, "Number of bars")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Plot width (0 fits the data)")
	cmd.Flags().IntVar(&opts.height, "height", 15, "Plot height")

	cmd.SilenceUsage = true

	return cmd
}

func runChart(cmd *cobra.Command, opts *chartOptions, raw string) error {
	sym := symbol.Normalize(raw)
	if sym == "" {
		return fmt.Errorf("symbol is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	res := opts.client.BarsResult(ctx, sym, opts.interval, opts.size)
	if err := res.Err(); err != nil {
		return fmt.Errorf("failed to fetch bars for %s: %w", sym, err)
	}

	c := chart.New(opts.width, opts.height)
	c.RenderResult(sym, res)

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		points := []chartPoint{}
		if s := c.Series(); s != nil {
			for i := range s.Close {
				points = append(points, chartPoint{
					Date:  s.Labels[i],
					Close: s.Close[i],
					MA10:  s.MA10[i],
					MA20:  s.MA20[i],
				})
			}
		}
		return formatter.Print(map[string]any{
			"symbol":   sym,
			"interval": opts.interval,
			"bars":     points,
		})
	}

	return formatter.Print(c.View())
}

func init() {
	opts := &chartOptions{}
	chartCmd := newChartCmd(opts)
	chartCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(chartCmd)
}
