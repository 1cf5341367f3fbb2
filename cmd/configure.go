package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/apollo67/dash/internal/config"
	"github.com/apollo67/dash/internal/store"
	"github.com/apollo67/dash/pkg/marketdata"
)

// terminal abstracts the interactive terminal check for testing.
type terminal interface {
	IsTerminal() bool
}

// terminalReader reports on a file descriptor using golang.org/x/term.
type terminalReader struct {
	fd int
}

// newTerminalReader creates a reader for the given file descriptor.
func newTerminalReader(fd int) *terminalReader {
	return &terminalReader{fd: fd}
}

func (r *terminalReader) IsTerminal() bool {
	return term.IsTerminal(r.fd)
}

// prompter abstracts interactive menu selection for testing.
type prompter interface {
	SelectOption(options []string) (int, error)
	ReadLine(prompt string) (string, error)
}

// terminalPrompter implements prompter using stdin.
type terminalPrompter struct {
	scanner *bufio.Scanner
	writer  io.Writer
}

func newTerminalPrompter(r io.Reader, w io.Writer) *terminalPrompter {
	return &terminalPrompter{scanner: bufio.NewScanner(r), writer: w}
}

func (p *terminalPrompter) SelectOption(options []string) (int, error) {
	for {
		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no input")
		}
		input := strings.TrimSpace(p.scanner.Text())
		idx, err := strconv.Atoi(input)
		if err != nil || idx < 1 || idx > len(options) {
			_, _ = fmt.Fprintf(p.writer, "Please enter a number between 1 and %d: ", len(options))
			continue
		}
		return idx - 1, nil
	}
}

func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.writer, prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// configureOptions holds dependencies for the configure command.
type configureOptions struct {
	configPath string
	terminal   terminal
	prompt     prompter
	openStore  func(cfg *config.Config) (store.Store, error)
}

// configureFlags are the non-interactive settings.
type configureFlags struct {
	apiURL   string
	provider string
	storage  string
	refresh  int
	show     bool
}

func (f configureFlags) changed() bool {
	return f.apiURL != "" || f.provider != "" || f.storage != "" || f.refresh != 0
}

// newConfigureCmd creates the configure command with the given options.
func newConfigureCmd(opts *configureOptions) *cobra.Command {
	var flags configureFlags

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure the backend and local storage",
		Long: `Configure the market-data backend URL, the provider and where the
watchlist and portfolio are stored.

Run without flags for an interactive setup, or pass flags to change
individual settings.

Examples:
  dash configure
  dash configure --api-url http://localhost:8000 --provider twelvedata
  dash configure --storage keyring
  dash configure --show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.apiURL, "api-url", "", "Market-data backend base URL")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "Upstream provider name")
	cmd.Flags().StringVar(&flags.storage, "storage", "", "State storage: file, keyring or memory")
	cmd.Flags().IntVar(&flags.refresh, "refresh", 0, "Dashboard refresh interval in seconds")
	cmd.Flags().BoolVar(&flags.show, "show", false, "Print the current configuration")

	// Don't show usage info on validation errors - just show the error
	cmd.SilenceUsage = true

	return cmd
}

// reconfigureMenuOptions defines the menu options when already configured.
var reconfigureMenuOptions = []string{
	"Edit settings",
	"View current configuration",
	"Reset to defaults",
	"Clear saved watchlist and portfolio",
}

func runConfigure(cmd *cobra.Command, opts *configureOptions, flags configureFlags) error {
	if flags.show {
		return runViewConfiguration(cmd, opts)
	}
	if flags.changed() {
		return runApplyFlags(cmd, opts, flags)
	}

	// Verify we're running in an interactive terminal
	if !opts.terminal.IsTerminal() {
		return fmt.Errorf("configure requires an interactive terminal\nPass --api-url, --provider, --storage or --refresh to configure non-interactively")
	}

	if _, err := os.Stat(opts.configPath); err == nil {
		return runReconfigureMenu(cmd, opts)
	}
	return runInteractiveSetup(cmd, opts)
}

// runReconfigureMenu shows the reconfigure menu when a config file exists.
func runReconfigureMenu(cmd *cobra.Command, opts *configureOptions) error {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "dash is already configured. What would you like to do?")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for i, opt := range reconfigureMenuOptions {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Select option: ")

	choice, err := opts.prompt.SelectOption(reconfigureMenuOptions)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}

	switch choice {
	case 0:
		return runInteractiveSetup(cmd, opts)
	case 1:
		return runViewConfiguration(cmd, opts)
	case 2:
		return runResetConfiguration(cmd, opts)
	case 3:
		return runClearState(cmd, opts)
	default:
		return fmt.Errorf("invalid selection")
	}
}

// loadConfig loads the config, falling back to defaults on error.
func (o *configureOptions) loadConfig() *config.Config {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// runInteractiveSetup prompts for each setting, keeping the current value
// on an empty answer.
func runInteractiveSetup(cmd *cobra.Command, opts *configureOptions) error {
	cfg := opts.loadConfig()

	apiURL, err := opts.prompt.ReadLine(fmt.Sprintf("Backend URL [%s]: ", cfg.APIBaseURL))
	if err != nil {
		return fmt.Errorf("failed to read backend URL: %w", err)
	}
	if apiURL != "" {
		if err := validateBaseURL(apiURL); err != nil {
			return err
		}
		cfg.APIBaseURL = strings.TrimSuffix(apiURL, "/")
	}

	provider, err := opts.prompt.ReadLine(fmt.Sprintf("Provider [%s]: ", cfg.Provider))
	if err != nil {
		return fmt.Errorf("failed to read provider: %w", err)
	}
	if provider != "" {
		cfg.Provider = provider
	}

	backends := []string{store.BackendFile, store.BackendKeyring, store.BackendMemory}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Where should the watchlist and portfolio be stored? (current: %s)\n", cfg.StorageBackend)
	for i, b := range backends {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, b)
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Select storage: ")
	choice, err := opts.prompt.SelectOption(backends)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}
	cfg.StorageBackend = backends[choice]

	refresh, err := opts.prompt.ReadLine(fmt.Sprintf("Refresh interval in seconds [%d]: ", cfg.RefreshIntervalSeconds))
	if err != nil {
		return fmt.Errorf("failed to read refresh interval: %w", err)
	}
	if refresh != "" {
		n, err := strconv.Atoi(refresh)
		if err != nil || n <= 0 {
			return fmt.Errorf("refresh interval must be a positive number of seconds")
		}
		cfg.RefreshIntervalSeconds = n
	}

	return saveAndCheck(cmd, opts, cfg)
}

// runApplyFlags updates only the settings passed as flags.
func runApplyFlags(cmd *cobra.Command, opts *configureOptions, flags configureFlags) error {
	cfg := opts.loadConfig()

	if flags.apiURL != "" {
		if err := validateBaseURL(flags.apiURL); err != nil {
			return err
		}
		cfg.APIBaseURL = strings.TrimSuffix(flags.apiURL, "/")
	}
	if flags.provider != "" {
		cfg.Provider = flags.provider
	}
	if flags.storage != "" {
		switch flags.storage {
		case store.BackendFile, store.BackendKeyring, store.BackendMemory:
			cfg.StorageBackend = flags.storage
		default:
			return fmt.Errorf("unknown storage backend %q (want file, keyring or memory)", flags.storage)
		}
	}
	if flags.refresh < 0 {
		return fmt.Errorf("refresh interval must be a positive number of seconds")
	}
	if flags.refresh > 0 {
		cfg.RefreshIntervalSeconds = flags.refresh
	}

	return saveAndCheck(cmd, opts, cfg)
}

// saveAndCheck writes cfg and then probes the backend. An unreachable
// backend is reported but does not fail the command.
func saveAndCheck(cmd *cobra.Command, opts *configureOptions, cfg *config.Config) error {
	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved successfully!")

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	client := marketdata.NewClient(cfg.APIBaseURL).WithProvider(cfg.Provider)
	resp, err := client.Health(ctx)
	switch {
	case err == nil:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backend at %s is %s.\n", cfg.APIBaseURL, resp.Status)
	case resp != nil && resp.Status != "":
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Note: backend at %s is %s.\n", cfg.APIBaseURL, resp.Status)
	default:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Note: could not reach backend: %v\n", err)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend URL %q: expected http(s)://host[:port]", raw)
	}
	return nil
}

// runViewConfiguration displays the current configuration.
func runViewConfiguration(cmd *cobra.Command, opts *configureOptions) error {
	cfg := opts.loadConfig()
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Current Configuration:")
	_, _ = fmt.Fprintln(out, "----------------------")
	_, _ = fmt.Fprintf(out, "Config file: %s\n", opts.configPath)
	_, _ = fmt.Fprintf(out, "API base URL: %s\n", cfg.APIBaseURL)
	_, _ = fmt.Fprintf(out, "Provider: %s\n", cfg.Provider)
	_, _ = fmt.Fprintf(out, "Storage: %s", cfg.StorageBackend)
	if cfg.StorageBackend == store.BackendFile {
		_, _ = fmt.Fprintf(out, " (%s)", cfg.ResolvedStatePath())
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Refresh interval: %d seconds\n", cfg.RefreshIntervalSeconds)
	_, _ = fmt.Fprintf(out, "Scanner symbols: %d\n", len(cfg.ScannerSymbols))
	_, _ = fmt.Fprintf(out, "Log level: %s\n", cfg.LogLevel)

	return nil
}

// runResetConfiguration writes the default configuration.
func runResetConfiguration(cmd *cobra.Command, opts *configureOptions) error {
	if err := config.Save(opts.configPath, config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runClearState removes the stored watchlist and portfolio.
func runClearState(cmd *cobra.Command, opts *configureOptions) error {
	st, err := opts.openStore(opts.loadConfig())
	if err != nil {
		return err
	}
	for _, key := range []string{store.KeyWatchlist, store.KeyPortfolio} {
		if err := st.Delete(key); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to clear saved state: %w", err)
		}
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Saved watchlist and portfolio cleared.")
	return nil
}

func init() {
	opts := &configureOptions{
		terminal: newTerminalReader(int(os.Stdin.Fd())),
		prompt:   newTerminalPrompter(os.Stdin, os.Stdout),
		openStore: func(cfg *config.Config) (store.Store, error) {
			return store.Open(cfg.StorageBackend, cfg.ResolvedStatePath())
		},
	}
	configureCmd := newConfigureCmd(opts)
	configureCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		opts.configPath = resolvedConfigPath()
		return nil
	}
	rootCmd.AddCommand(configureCmd)
}
