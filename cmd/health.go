package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apollo67/dash/internal/output"
	"github.com/apollo67/dash/pkg/marketdata"
)

// healthOptions holds dependencies for the health command.
type healthOptions struct {
	client   *marketdata.Client
	jsonMode bool
}

// newHealthCmd creates the health command with the given options.
func newHealthCmd(opts *healthOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the market-data backend",
		Long: `Query the backend health endpoint and report the application and
database status. Exits non-zero when the backend is degraded or unreachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd, opts)
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runHealth(cmd *cobra.Command, opts *healthOptions) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	resp, err := opts.client.Health(ctx)
	if resp == nil || resp.Status == "" {
		if err == nil {
			err = fmt.Errorf("empty health response")
		}
		return fmt.Errorf("backend at %s is unreachable: %w", opts.client.BaseURL, err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	db := "ok"
	if !resp.DB.OK {
		db = resp.DB.Message
		if db == "" {
			db = "down"
		}
	}
	headers := []string{"Backend", "Status", "App", "Database"}
	rows := [][]string{{opts.client.BaseURL, resp.Status, resp.App, db}}
	if ferr := formatter.Table(headers, rows); ferr != nil {
		return ferr
	}

	if err != nil {
		return fmt.Errorf("backend is %s: %w", resp.Status, err)
	}
	return nil
}

func init() {
	opts := &healthOptions{}
	healthCmd := newHealthCmd(opts)
	healthCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("")
		if err != nil {
			return err
		}
		opts.client = a.client
		opts.jsonMode = GetJSONMode()
		return nil
	}

	rootCmd.AddCommand(healthCmd)
}
