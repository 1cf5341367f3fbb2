package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo67/dash/pkg/marketdata"
)

func newQuoteServer(t *testing.T, prices map[string]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/provider/twelvedata/quote", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		sym := r.URL.Query().Get("symbol")
		price, ok := prices[sym]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprintf(w, `{"detail":"unknown symbol %s"}`, sym)
			return
		}
		_, _ = fmt.Fprintf(w, `{"provider":"twelvedata","symbol":%q,"quote":{"last":%g,"ts_event":"2024-05-01T20:00:00Z","source_provider":"twelvedata"}}`, sym, price)
	}))
}

func TestQuoteCmd_SingleSymbol(t *testing.T) {
	server := newQuoteServer(t, map[string]float64{"AAPL": 175.5})
	defer server.Close()

	cmd := newQuoteCmd(&quoteOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"aapl"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "Symbol")
	assert.Contains(t, output, "AAPL")
	assert.Contains(t, output, "175.50")
	assert.Contains(t, output, "2024-05-01T20:00:00Z")
	assert.Contains(t, output, "twelvedata")
	assert.Contains(t, output, "ok")
}

func TestQuoteCmd_MultipleSymbols(t *testing.T) {
	server := newQuoteServer(t, map[string]float64{"AAPL": 175.5, "MSFT": 380, "NVDA": 900.25})
	defer server.Close()

	cmd := newQuoteCmd(&quoteOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL", "msft", "NVDA", "aapl"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "175.50")
	assert.Contains(t, output, "380.00")
	assert.Contains(t, output, "900.25")
	// Duplicates collapse to one row
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("AAPL")))
}

func TestQuoteCmd_JSONOutput(t *testing.T) {
	server := newQuoteServer(t, map[string]float64{"AAPL": 175.5})
	defer server.Close()

	cmd := newQuoteCmd(&quoteOptions{client: marketdata.NewClient(server.URL), jsonMode: true})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL"})

	err := cmd.Execute()
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0]["Symbol"])
	assert.Equal(t, "175.50", rows[0]["Last"])
	assert.Equal(t, "ok", rows[0]["Status"])
}

func TestQuoteCmd_PartialFailure(t *testing.T) {
	server := newQuoteServer(t, map[string]float64{"AAPL": 175.5})
	defer server.Close()

	cmd := newQuoteCmd(&quoteOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"AAPL", "ZZZZ"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")

	output := out.String()
	assert.Contains(t, output, "175.50")
	assert.Contains(t, output, "Error")
	assert.Contains(t, output, "unknown symbol ZZZZ")
}

func TestQuoteCmd_RequiresSymbol(t *testing.T) {
	cmd := newQuoteCmd(&quoteOptions{client: marketdata.NewClient("http://localhost")})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	assert.Error(t, err)
}

func TestQuoteCmd_Raw(t *testing.T) {
	server := newQuoteServer(t, map[string]float64{"AAPL": 175.5})
	defer server.Close()

	cmd := newQuoteCmd(&quoteOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"AAPL", "--raw"})

	require.NoError(t, cmd.Execute())

	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, "AAPL", body["symbol"])
	assert.Contains(t, out.String(), "\n  \"quote\": {")
}
