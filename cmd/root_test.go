package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo67/dash/internal/store"
)

func TestRootCmd_JSONFlagExists(t *testing.T) {
	// Reset the flag for testing
	jsonOutput = false

	flag := rootCmd.PersistentFlags().Lookup("json")

	assert.NotNil(t, flag, "--json flag should exist")
	assert.Equal(t, "false", flag.DefValue)
	assert.Equal(t, "Output in JSON format", flag.Usage)
}

func TestRootCmd_JSONFlagShorthand(t *testing.T) {
	flag := rootCmd.PersistentFlags().ShorthandLookup("j")

	assert.NotNil(t, flag, "-j shorthand should exist")
	assert.Equal(t, "json", flag.Name)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "log-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_GetJSONMode(t *testing.T) {
	jsonOutput = false
	assert.False(t, GetJSONMode())

	jsonOutput = true
	assert.True(t, GetJSONMode())

	jsonOutput = false
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})

	_ = rootCmd.Execute()

	assert.Contains(t, out.String(), "dash version")
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"quote", "signal", "chart", "scan", "watchlist", "portfolio", "search", "health", "configure", "ui"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestLoadApp(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := "api_base_url: http://backend:9000\nprovider: polygon\nstorage_backend: memory\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0600))
	t.Setenv("DASH_API_BASE_URL", "")

	configPath = cfgFile
	logFile = filepath.Join(dir, "dash.log")
	defer func() { configPath, logFile = "", "" }()

	a, err := loadApp("")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", a.client.BaseURL)
	assert.Equal(t, "polygon", a.client.Provider)
	assert.IsType(t, &store.MemoryStore{}, a.store.(*store.EnvStore).Underlying())
	assert.NotNil(t, a.metrics)
}

func TestLoadApp_BadLogLevel(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	logLevel = "loud"
	defer func() { configPath, logLevel = "", "" }()

	_, err := loadApp("")
	assert.Error(t, err)
}
