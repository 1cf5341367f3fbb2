package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apollo67/dash/internal/config"
	"github.com/apollo67/dash/internal/logger"
	"github.com/apollo67/dash/internal/metrics"
	"github.com/apollo67/dash/internal/store"
	"github.com/apollo67/dash/pkg/marketdata"
)

var Version = "dev"

var (
	// jsonOutput controls whether output is formatted as JSON
	jsonOutput bool
	configPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "dash",
	Short: "Terminal market dashboard",
	Long: `A terminal client for a market-data backend: quotes, technical
signals, bar charts, a scanner, a watchlist and a local portfolio.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

// GetJSONMode returns whether JSON output mode is enabled.
func GetJSONMode() bool {
	return jsonOutput
}

// resolvedConfigPath returns --config or the default location.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

// app bundles what a command needs once config is loaded.
type app struct {
	cfg     *config.Config
	client  *marketdata.Client
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Registry
}

// loadApp loads config and builds the logger, client and store. When
// defaultLogFile is set it is used unless --log-file or the config names
// another file, so full-screen commands keep stderr clean.
func loadApp(defaultLogFile string) (*app, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	file := defaultLogFile
	if cfg.LogFile != "" {
		file = cfg.LogFile
	}
	if logFile != "" {
		file = logFile
	}
	log, err := logger.New(logger.Options{Level: level, File: file})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.StorageBackend, cfg.ResolvedStatePath())
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	client := marketdata.NewClient(cfg.APIBaseURL).
		WithProvider(cfg.Provider).
		WithTimeout(cfg.RequestTimeout()).
		WithLogger(log).
		WithRecorder(reg)

	return &app{cfg: cfg, client: client, store: st, logger: log, metrics: reg}, nil
}

func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
