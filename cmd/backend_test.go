package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeBackend serves quote and signal endpoints from fixed tables and
// counts requests per path.
type fakeBackend struct {
	prices map[string]float64
	scores map[string]float64

	mu    sync.Mutex
	calls map[string]int
}

func newFakeBackend(t *testing.T, prices, scores map[string]float64) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{prices: prices, scores: scores, calls: map[string]int{}}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)
	return b, server
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls[r.URL.Path]++
	b.mu.Unlock()

	sym := r.URL.Query().Get("symbol")
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/provider/twelvedata/quote":
		price, ok := b.prices[sym]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprintf(w, `{"detail":"no quote for %s"}`, sym)
			return
		}
		_, _ = fmt.Fprintf(w, `{"symbol":%q,"quote":{"last":%g,"ts_event":"2024-05-01T20:00:00Z"}}`, sym, price)
	case "/signal/basic":
		score, ok := b.scores[sym]
		if !ok {
			_, _ = w.Write([]byte(`{"error":"insufficient bars"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"score":%g,"trend":"bullish","momentum":"neutral","confidence":0.5}`, score)
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}
