package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo67/dash/internal/config"
	"github.com/apollo67/dash/internal/store"
)

// mockTerminal is a test double for the interactive terminal check.
type mockTerminal bool

func (m mockTerminal) IsTerminal() bool { return bool(m) }

// mockPrompt is a test double for interactive menu prompts.
type mockPrompt struct {
	selections []int    // Which option to select for each call
	callIndex  int      // Current call index
	lines      []string // Lines to return for ReadLine calls
	lineIndex  int      // Current line index
}

func newMockPrompt(selections ...int) *mockPrompt {
	return &mockPrompt{selections: selections}
}

func (m *mockPrompt) WithLines(lines ...string) *mockPrompt {
	m.lines = lines
	return m
}

func (m *mockPrompt) SelectOption(options []string) (int, error) {
	if m.callIndex >= len(m.selections) {
		return 0, errors.New("no more mock selections")
	}
	idx := m.selections[m.callIndex]
	m.callIndex++
	return idx, nil
}

func (m *mockPrompt) ReadLine(prompt string) (string, error) {
	if m.lineIndex >= len(m.lines) {
		return "", nil
	}
	line := m.lines[m.lineIndex]
	m.lineIndex++
	return line, nil
}

func healthyServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","app":"up","db":{"ok":true}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func runConfigureCmd(t *testing.T, opts *configureOptions, args ...string) (string, error) {
	t.Helper()
	cmd := newConfigureCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigureCmd_InteractiveSetup(t *testing.T) {
	server := healthyServer(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	opts := &configureOptions{
		configPath: configPath,
		terminal:   mockTerminal(true),
		prompt:     newMockPrompt(1).WithLines(server.URL+"/", "", "15"),
	}

	out, err := runConfigureCmd(t, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved successfully!")
	assert.Contains(t, out, "is ok.")

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, server.URL, cfg.APIBaseURL)
	assert.Equal(t, config.DefaultProvider, cfg.Provider)
	assert.Equal(t, store.BackendKeyring, cfg.StorageBackend)
	assert.Equal(t, 15, cfg.RefreshIntervalSeconds)
}

func TestConfigureCmd_NotTerminal(t *testing.T) {
	opts := &configureOptions{
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
		terminal:   mockTerminal(false),
		prompt:     newMockPrompt(),
	}

	_, err := runConfigureCmd(t, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestConfigureCmd_InvalidURL(t *testing.T) {
	opts := &configureOptions{
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
		terminal:   mockTerminal(true),
		prompt:     newMockPrompt().WithLines("localhost:8000"),
	}

	_, err := runConfigureCmd(t, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backend URL")
}

func TestConfigureCmd_Flags(t *testing.T) {
	server := healthyServer(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	opts := &configureOptions{configPath: configPath, terminal: mockTerminal(false)}

	out, err := runConfigureCmd(t, opts, "--api-url", server.URL, "--storage", "memory", "--refresh", "45")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved successfully!")

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, server.URL, cfg.APIBaseURL)
	assert.Equal(t, store.BackendMemory, cfg.StorageBackend)
	assert.Equal(t, 45, cfg.RefreshIntervalSeconds)
	assert.Equal(t, config.DefaultScannerSymbols, cfg.ScannerSymbols)
}

func TestConfigureCmd_FlagsUnknownStorage(t *testing.T) {
	opts := &configureOptions{configPath: filepath.Join(t.TempDir(), "config.yaml"), terminal: mockTerminal(false)}

	_, err := runConfigureCmd(t, opts, "--storage", "s3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestConfigureCmd_BackendUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	opts := &configureOptions{configPath: configPath, terminal: mockTerminal(false)}

	out, err := runConfigureCmd(t, opts, "--api-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Note: could not reach backend")
}

func TestConfigureCmd_Show(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Provider = "polygon"
	require.NoError(t, config.Save(configPath, cfg))

	opts := &configureOptions{configPath: configPath, terminal: mockTerminal(false)}
	out, err := runConfigureCmd(t, opts, "--show")
	require.NoError(t, err)

	assert.Contains(t, out, "Current Configuration:")
	assert.Contains(t, out, "Provider: polygon")
	assert.Contains(t, out, "Refresh interval: 30 seconds")
	assert.Contains(t, out, "Scanner symbols: 30")
}

func TestConfigureCmd_MenuReset(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Provider = "polygon"
	require.NoError(t, config.Save(configPath, cfg))

	opts := &configureOptions{
		configPath: configPath,
		terminal:   mockTerminal(true),
		prompt:     newMockPrompt(2),
	}

	out, err := runConfigureCmd(t, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "already configured")
	assert.Contains(t, out, "Configuration reset to defaults.")

	loaded, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultProvider, loaded.Provider)
}

func TestConfigureCmd_MenuClearState(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.Save(configPath, config.DefaultConfig()))

	st := store.NewMemoryStore().
		WithData(store.KeyWatchlist, `["AAPL"]`).
		WithData(store.KeyPortfolio, `[]`)

	opts := &configureOptions{
		configPath: configPath,
		terminal:   mockTerminal(true),
		prompt:     newMockPrompt(3),
		openStore:  func(*config.Config) (store.Store, error) { return st, nil },
	}

	out, err := runConfigureCmd(t, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved watchlist and portfolio cleared.")

	_, err = st.Get(store.KeyWatchlist)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(store.KeyPortfolio)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTerminalPrompter(t *testing.T) {
	var out bytes.Buffer
	p := newTerminalPrompter(strings.NewReader("x\n9\n2\nhello  \n"), &out)

	idx, err := p.SelectOption([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "Please enter a number between 1 and 2")

	line, err := p.ReadLine("Name: ")
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = p.ReadLine("Again: ")
	require.NoError(t, err)
	assert.Empty(t, line)
}
