// Package config loads and saves the dash configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBaseURL is the market-data backend used when none is configured.
	DefaultAPIBaseURL = "http://localhost:8000"

	// DefaultProvider is the upstream provider path segment.
	DefaultProvider = "twelvedata"

	// DefaultStorageBackend keeps state in a YAML file next to the config.
	DefaultStorageBackend = "file"

	DefaultRefreshIntervalSeconds = 30
	DefaultBarsOutputSize         = 60
	DefaultRequestTimeoutSeconds  = 30
	DefaultLogLevel               = "warn"

	// EnvAPIBaseURL overrides the configured base URL.
	EnvAPIBaseURL = "DASH_API_BASE_URL"

	appDir = "dash"
)

// DefaultScannerSymbols is the scanner universe.
var DefaultScannerSymbols = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "TSLA", "AVGO", "AMD", "NFLX",
	"CRM", "ORCL", "INTC", "ADBE", "QCOM", "SHOP", "PLTR", "UBER", "COIN", "PANW",
	"SNOW", "MU", "CRWD", "ASML", "TSM", "PYPL", "ABNB", "DIS", "JPM", "V",
}

// Config holds the CLI configuration.
type Config struct {
	APIBaseURL             string   `yaml:"api_base_url"`
	Provider               string   `yaml:"provider"`
	StorageBackend         string   `yaml:"storage_backend"`
	StatePath              string   `yaml:"state_path,omitempty"`
	RefreshIntervalSeconds int      `yaml:"refresh_interval_seconds"`
	BarsOutputSize         int      `yaml:"bars_outputsize"`
	RequestTimeoutSeconds  int      `yaml:"request_timeout_seconds"`
	ScannerSymbols         []string `yaml:"scanner_symbols,omitempty"`
	LogFile                string   `yaml:"log_file,omitempty"`
	LogLevel               string   `yaml:"log_level"`
	MetricsAddr            string   `yaml:"metrics_addr,omitempty"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	scanner := make([]string, len(DefaultScannerSymbols))
	copy(scanner, DefaultScannerSymbols)
	return &Config{
		APIBaseURL:             DefaultAPIBaseURL,
		Provider:               DefaultProvider,
		StorageBackend:         DefaultStorageBackend,
		RefreshIntervalSeconds: DefaultRefreshIntervalSeconds,
		BarsOutputSize:         DefaultBarsOutputSize,
		RequestTimeoutSeconds:  DefaultRequestTimeoutSeconds,
		ScannerSymbols:         scanner,
		LogLevel:               DefaultLogLevel,
	}
}

// ConfigDir returns the dash config directory, honoring XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appDir)
	}
	return filepath.Join(home, ".config", appDir)
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultStatePath returns where the file store keeps state.
func DefaultStatePath() string {
	return filepath.Join(ConfigDir(), "state.yaml")
}

// DefaultLogPath returns the TUI log file path.
func DefaultLogPath() string {
	return filepath.Join(ConfigDir(), "dash.log")
}

// Load reads the config at path. A missing file yields defaults; missing
// keys keep their defaults. DASH_API_BASE_URL overrides the base URL.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if env := os.Getenv(EnvAPIBaseURL); env != "" {
		cfg.APIBaseURL = env
	}
	return cfg, nil
}

// applyDefaults fills zero values left by an explicit empty key.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.APIBaseURL == "" {
		c.APIBaseURL = d.APIBaseURL
	}
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.StorageBackend == "" {
		c.StorageBackend = d.StorageBackend
	}
	if c.RefreshIntervalSeconds <= 0 {
		c.RefreshIntervalSeconds = d.RefreshIntervalSeconds
	}
	if c.BarsOutputSize <= 0 {
		c.BarsOutputSize = d.BarsOutputSize
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = d.RequestTimeoutSeconds
	}
	if len(c.ScannerSymbols) == 0 {
		c.ScannerSymbols = d.ScannerSymbols
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ResolvedStatePath returns StatePath or the default state file.
func (c *Config) ResolvedStatePath() string {
	if c.StatePath != "" {
		return c.StatePath
	}
	return DefaultStatePath()
}

// RefreshInterval returns the auto-refresh period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// RequestTimeout returns the HTTP client timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
