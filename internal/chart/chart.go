// Package chart renders close prices and moving averages as a terminal
// line chart.
package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/apollo67/dash/pkg/marketdata"
)

// Moving average windows drawn over the close series.
const (
	FastWindow = 10
	SlowWindow = 20
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a bar timestamp. ok is false when no layout matches.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// barTime returns the sort key of a bar: ts_event, then ts_ingest, then
// the Unix epoch.
func barTime(b marketdata.Bar) time.Time {
	raw := b.TsEvent
	if raw == "" {
		raw = b.TsIngest
	}
	if t, ok := ParseTime(raw); ok {
		return t
	}
	return time.Unix(0, 0).UTC()
}

// SortBars returns a copy of bars ordered by ascending event time.
func SortBars(bars []marketdata.Bar) []marketdata.Bar {
	out := make([]marketdata.Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool {
		return barTime(out[i]).Before(barTime(out[j]))
	})
	return out
}

// MovingAverage returns the simple moving average of values over window.
// Positions without a full window of history are nil; the rest are
// rounded to 4 decimal places.
func MovingAverage(values []float64, window int) []*float64 {
	out := make([]*float64, len(values))
	if window <= 0 {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i+1 < window {
			continue
		}
		avg := math.Round(sum/float64(window)*1e4) / 1e4
		out[i] = &avg
	}
	return out
}

// Series is the data behind one rendered chart.
type Series struct {
	Labels []string
	Close  []float64
	MA10   []*float64
	MA20   []*float64
}

// BuildSeries sorts bars and derives the close and moving-average series.
func BuildSeries(bars []marketdata.Bar) Series {
	ordered := SortBars(bars)
	s := Series{
		Labels: make([]string, len(ordered)),
		Close:  make([]float64, len(ordered)),
	}
	for i, b := range ordered {
		label := b.TsEvent
		if label == "" {
			label = b.TsIngest
		}
		if len(label) > 10 {
			label = label[:10]
		}
		s.Labels[i] = label
		s.Close[i] = b.Close
	}
	s.MA10 = MovingAverage(s.Close, FastWindow)
	s.MA20 = MovingAverage(s.Close, SlowWindow)
	return s
}

// Chart holds the most recently rendered plot. Render replaces it
// wholesale; Clear drops it and leaves a "no data" caption.
type Chart struct {
	Width  int
	Height int

	symbol string
	series *Series
	plot   string
	meta   string
}

// New creates a chart with the given plot size.
func New(width, height int) *Chart {
	return &Chart{Width: width, Height: height}
}

// Render draws close, MA10 and MA20 for bars. An empty bar list clears the
// chart.
func (c *Chart) Render(symbol string, bars []marketdata.Bar) {
	if len(bars) == 0 {
		c.Clear(symbol)
		return
	}

	series := BuildSeries(bars)
	c.symbol = symbol
	c.series = &series
	c.plot = plot(series, c.Width, c.Height)
	c.meta = fmt.Sprintf("%s • %d bars • Close / MA10 / MA20", symbol, len(series.Close))
}

// Clear removes any plot and shows the no-data state for symbol.
func (c *Chart) Clear(symbol string) {
	c.symbol = symbol
	c.series = nil
	c.plot = ""
	c.meta = fmt.Sprintf("%s: no bar data", symbol)
}

// Loading marks the chart as waiting for bars.
func (c *Chart) Loading(symbol string) {
	c.symbol = symbol
	c.meta = fmt.Sprintf("%s: loading bars...", symbol)
}

// RenderResult renders a bars result; a failed result renders as empty.
func (c *Chart) RenderResult(symbol string, res marketdata.Result) {
	if !res.OK {
		c.Clear(symbol)
		return
	}
	var resp marketdata.BarsResponse
	if err := json.Unmarshal(res.Body, &resp); err != nil {
		c.Clear(symbol)
		return
	}
	c.Render(symbol, resp.Bars)
}

// Symbol returns the symbol last rendered or cleared.
func (c *Chart) Symbol() string { return c.symbol }

// Meta returns the caption line.
func (c *Chart) Meta() string { return c.meta }

// Plot returns the rendered plot, or "" when empty.
func (c *Chart) Plot() string { return c.plot }

// Series returns the data behind the current plot, or nil.
func (c *Chart) Series() *Series { return c.series }

// View returns the caption followed by the plot.
func (c *Chart) View() string {
	if c.plot == "" {
		return c.meta
	}
	return c.meta + "\n\n" + c.plot
}

func plot(s Series, width, height int) string {
	data := [][]float64{s.Close}
	colors := []asciigraph.AnsiColor{asciigraph.Blue}
	if ma := toNaN(s.MA10); ma != nil {
		data = append(data, ma)
		colors = append(colors, asciigraph.Green)
	}
	if ma := toNaN(s.MA20); ma != nil {
		data = append(data, ma)
		colors = append(colors, asciigraph.Red)
	}

	opts := []asciigraph.Option{
		asciigraph.Precision(2),
		asciigraph.SeriesColors(colors...),
	}
	if height > 0 {
		opts = append(opts, asciigraph.Height(height))
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	if n := len(s.Labels); n > 0 {
		opts = append(opts, asciigraph.Caption(fmt.Sprintf("%s → %s", s.Labels[0], s.Labels[n-1])))
	}
	return asciigraph.PlotMany(data, opts...)
}

// toNaN converts a sparse series to asciigraph's gap convention. It
// returns nil when no point is defined.
func toNaN(values []*float64) []float64 {
	out := make([]float64, len(values))
	defined := false
	for i, v := range values {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
		defined = true
	}
	if !defined {
		return nil
	}
	return out
}
