package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apollo67/dash/pkg/marketdata"
)

func TestSignalCmd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signal/basic", r.URL.Path)
		assert.Equal(t, "TSLA", r.URL.Query().Get("symbol"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"score": 63.6,
			"trend": "bullish",
			"momentum": "neutral",
			"confidence": 0.814,
			"debug": {"ma10": 181.2, "ma20": 176.45, "rsi14": 58.3, "bars_count": 60}
		}`))
	}))
	defer server.Close()

	cmd := newSignalCmd(&signalOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tsla"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "TSLA")
	assert.Contains(t, output, "64")
	assert.Contains(t, output, "bullish")
	assert.Contains(t, output, "81%")
	assert.Contains(t, output, "181.2")
	assert.Contains(t, output, "176.45")
	assert.Contains(t, output, "58.3")
}

func TestSignalCmd_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A 200 carrying an error field is still a failure
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"not enough bars"}`))
	}))
	defer server.Close()

	cmd := newSignalCmd(&signalOptions{client: marketdata.NewClient(server.URL)})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"AAPL"})

	err := cmd.Execute()
	require.Error(t, err)

	output := out.String()
	assert.Contains(t, output, "ERR")
	assert.Contains(t, output, "neutral")
	assert.Contains(t, output, "0%")
	assert.Contains(t, output, "not enough bars")
}
