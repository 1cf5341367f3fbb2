package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo67/dash/pkg/marketdata"
)

func barsBody(n int) string {
	bars := make([]string, n)
	for i := range bars {
		// Newest first; the chart sorts by time
		day := n - i
		bars[i] = fmt.Sprintf(`{"ts_event":"2024-03-%02dT00:00:00Z","open":1,"high":1,"low":1,"close":%d}`, day, 100+day)
	}
	return `{"provider":"twelvedata","symbol":"AAPL","interval":"1day","bars":[` + strings.Join(bars, ",") + `]}`
}

func TestChartCmd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/provider/twelvedata/bars", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1day", r.URL.Query().Get("interval"))
		assert.Equal(t, "25", r.URL.Query().Get("outputsize"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(barsBody(25)))
	}))
	defer server.Close()

	cmd := newChartCmd(&chartOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"aapl", "--size", "25", "--height", "8"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "AAPL • 25 bars • Close / MA10 / MA20")
	assert.Contains(t, output, "2024-03-01 → 2024-03-25")
}

func TestChartCmd_JSONSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(barsBody(12)))
	}))
	defer server.Close()

	opts := &chartOptions{client: marketdata.NewClient(server.URL), jsonMode: true}
	cmd := newChartCmd(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Symbol string       `json:"symbol"`
		Bars   []chartPoint `json:"bars"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	require.Len(t, resp.Bars, 12)

	assert.Equal(t, "2024-03-01", resp.Bars[0].Date)
	assert.Equal(t, 101.0, resp.Bars[0].Close)
	assert.Nil(t, resp.Bars[8].MA10)
	require.NotNil(t, resp.Bars[9].MA10)
	assert.InDelta(t, 105.5, *resp.Bars[9].MA10, 1e-9)
	assert.Nil(t, resp.Bars[11].MA20)
}

func TestChartCmd_NoBars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bars":[]}`))
	}))
	defer server.Close()

	cmd := newChartCmd(&chartOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "AAPL: no bar data")
}

func TestChartCmd_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"provider timeout"}`))
	}))
	defer server.Close()

	cmd := newChartCmd(&chartOptions{client: marketdata.NewClient(server.URL)})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"AAPL"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider timeout")
}
