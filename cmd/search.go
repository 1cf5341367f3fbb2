package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/pkg/marketdata"
)

// searchOptions holds dependencies for the search command.
type searchOptions struct {
	client   *marketdata.Client
	jsonMode bool
	limit    int
}

// newSearchCmd creates the search command with the given options.
func newSearchCmd(opts *searchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search for symbols",
		Long: `Search the provider's symbol directory by ticker or name.

Examples:
  dash search apple
  dash search "bank of" --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum number of results")

	cmd.SilenceUsage = true

	return cmd
}

func runSearch(cmd *cobra.Command, opts *searchOptions, query string) error {
	query = strings.TrimSpace(query)

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	matches, err := opts.client.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if opts.limit > 0 && len(matches) > opts.limit {
		matches = matches[:opts.limit]
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if len(matches) == 0 && !opts.jsonMode {
		return formatter.Print(fmt.Sprintf("No matches for %q.", query))
	}

	headers := []string{"Symbol", "Name", "Exchange", "Type", "Country", "Currency"}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{m.Symbol, m.InstrumentName, m.Exchange, m.InstrumentType, m.Country, m.Currency})
	}
	return formatter.Table(headers, rows)
}

func init() {
	opts := &searchOptions{}
	searchCmd := newSearchCmd(opts)
	searchCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(searchCmd)
}
