package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/apollo67/dash/internal/config"
	"github.com/apollo67/dash/internal/metrics"
	"github.com/apollo67/dash/internal/store"
	"github.com/apollo67/dash/pkg/marketdata"
)

func testApp(t *testing.T, baseURL string) *app {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ScannerSymbols = []string{"NVDA", "AAPL"}
	reg := metrics.NewRegistry()
	return &app{
		cfg:     cfg,
		client:  marketdata.NewClient(baseURL).WithRecorder(reg),
		store:   store.NewMemoryStore(),
		logger:  zap.NewNop(),
		metrics: reg,
	}
}

func TestUICommandExists(t *testing.T) {
	var found bool
	for _, c := range rootCmd.Commands() {
		if c.Use == "ui" {
			found = true
			break
		}
	}
	assert.True(t, found, "ui command should be registered")
}

func TestUICommandDescription(t *testing.T) {
	cmd := newUICmd(&uiOptions{})
	assert.Equal(t, "Interactive terminal dashboard", cmd.Short)
	assert.Contains(t, cmd.Long, "Scanner")
	assert.Contains(t, cmd.Long, "Watchlist")
	assert.Contains(t, cmd.Long, "Portfolio")
	assert.NotNil(t, cmd.Flags().Lookup("metrics-addr"))
}

func TestUICmd_RequiresTerminal(t *testing.T) {
	cmd := newUICmd(&uiOptions{app: testApp(t, "http://localhost"), terminal: mockTerminal(false)})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestNewController(t *testing.T) {
	backend, server := newFakeBackend(t,
		map[string]float64{"AAPL": 190, "MSFT": 410, "NVDA": 900, "TSLA": 170},
		map[string]float64{"AAPL": 40, "NVDA": 80},
	)
	a := testApp(t, server.URL)
	ctl := newController(a)

	snap := ctl.Panels()
	assert.Equal(t, 2, snap.ScannerTotal)
	assert.Equal(t, store.DefaultWatchlist, ctl.Watchlist())

	_, done := ctl.WarmVisible(context.Background())
	<-done

	snap = ctl.Panels()
	assert.Empty(t, snap.Misses)
	require.Len(t, snap.Scanner, 2)
	assert.Equal(t, "NVDA", snap.Scanner[0].Symbol)
	// AAPL, MSFT, NVDA and TSLA are each fetched once across panels
	assert.Equal(t, 4, backend.count("/provider/twelvedata/quote"))
}

func TestMetricsMux(t *testing.T) {
	_, server := newFakeBackend(t, map[string]float64{"AAPL": 190}, map[string]float64{})
	a := testApp(t, server.URL)
	ctl := newController(a)
	ctl.OnSelectSymbol(context.Background(), "AAPL", false)

	rec := httptest.NewRecorder()
	metricsMux(a).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "dash_fetches_total")
	assert.Contains(t, body, `dash_cache_lookups_total{result="miss"} 1`)
}
