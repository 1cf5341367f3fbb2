package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apollo67/dash/internal/cache"
	"github.com/apollo67/dash/internal/config"
	"github.com/apollo67/dash/internal/dashboard"
	"github.com/apollo67/dash/internal/tui"
)

// uiOptions holds dependencies for the ui command.
type uiOptions struct {
	app         *app
	terminal    terminal
	metricsAddr string
}

// newUICmd creates the ui command with the given options.
func newUICmd(opts *uiOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Interactive terminal dashboard",
		Long: `Launch the full-screen market dashboard.

The dashboard shows the selected symbol's quote, signal and price chart,
plus three panels:
  - Scanner: the scanner universe ranked by signal score
  - Watchlist: your symbols, sortable by symbol, price or score
  - Portfolio: local lots valued at the latest quote

Quotes and signals are fetched once per symbol and shared by every panel;
press r to refresh them.

Keyboard shortcuts:
  1-4       Switch between views
  ↑/↓       Navigate rows
  enter     Expand a row and select its symbol
  /         Select a symbol
  a / d     Add or delete (watchlist and portfolio)
  s         Cycle watchlist sort
  m         Show more or fewer scanner symbols
  r         Refresh
  q         Quit

Logs go to ` + config.DefaultLogPath() + ` unless --log-file is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9100)")

	cmd.SilenceUsage = true

	return cmd
}

// newController wires the request cache and dashboard controller.
func newController(a *app) *dashboard.Controller {
	c := cache.New(a.client,
		cache.WithLogger(a.logger),
		cache.WithRecorder(a.metrics),
	)
	return dashboard.New(c, a.client, dashboard.Options{
		Store:          a.store,
		Scanner:        a.cfg.ScannerSymbols,
		Provider:       a.cfg.Provider,
		BarsOutputSize: a.cfg.BarsOutputSize,
		Logger:         a.logger,
	})
}

// metricsMux serves the registry at /metrics.
func metricsMux(a *app) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	return mux
}

func runUI(cmd *cobra.Command, opts *uiOptions) error {
	if !opts.terminal.IsTerminal() {
		return fmt.Errorf("ui requires an interactive terminal")
	}

	a := opts.app
	addr := opts.metricsAddr
	if addr == "" {
		addr = a.cfg.MetricsAddr
	}
	if addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(a), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		a.logger.Info("serving metrics", zap.String("addr", addr))
	}
	defer func() { _ = a.logger.Sync() }()

	ctl := newController(a)
	p := tea.NewProgram(tui.New(ctl, a.cfg.RefreshInterval()), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	return err
}

func init() {
	opts := &uiOptions{terminal: newTerminalReader(int(os.Stdout.Fd()))}
	uiCmd := newUICmd(opts)
	uiCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(config.DefaultLogPath())
		if err != nil {
			return err
		}
		opts.app = a
		return nil
	}

	rootCmd.AddCommand(uiCmd)
}
