// Package view projects raw backend results into display-ready values.
package view

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/apollo67/dash/pkg/marketdata"
)

// Sentiment classes used for trend and momentum badges.
const (
	Bullish = "bullish"
	Bearish = "bearish"
	Neutral = "neutral"
)

// QuoteView is the display projection of a quote result.
type QuoteView struct {
	Symbol    string
	Last      *float64
	Timestamp string
	Provider  string
	OK        bool
	Error     string
	Loaded    bool
	Raw       *marketdata.Result
}

// SignalView is the display projection of a signal result.
type SignalView struct {
	Score      *float64
	Trend      string
	Momentum   string
	Confidence float64
	Debug      Debug
	OK         bool
	Error      string
	Loaded     bool
	Raw        *marketdata.Result
}

// Debug holds the indicator values shown in expanded rows.
type Debug struct {
	MA10      *float64
	MA20      *float64
	RSI14     *float64
	BarsCount *int
}

// ProjectQuote builds a QuoteView. A nil result yields placeholders.
func ProjectQuote(sym string, res *marketdata.Result, defaultProvider string) QuoteView {
	if defaultProvider == "" {
		defaultProvider = marketdata.DefaultProvider
	}
	v := QuoteView{Symbol: sym, Provider: defaultProvider, Raw: res}
	if res == nil {
		return v
	}
	v.Loaded = true
	v.OK = res.OK

	v.Symbol = firstString(res, "symbol", "quote.instrument_id")
	if v.Symbol == "" {
		v.Symbol = sym
	}
	v.Last = number(res.Get("quote.last"))
	v.Timestamp = firstString(res, "quote.ts_event", "quote.ts_ingest")
	if p := firstString(res, "quote.source_provider", "provider"); p != "" {
		v.Provider = p
	}
	if !res.OK {
		v.Error = res.ErrorMessage()
	}
	return v
}

// ProjectSignal builds a SignalView. A nil result yields placeholders.
// Confidence is clamped to [0, 1].
func ProjectSignal(res *marketdata.Result) SignalView {
	v := SignalView{Trend: Neutral, Momentum: Neutral, Raw: res}
	if res == nil {
		return v
	}
	v.Loaded = true
	v.OK = res.OK
	if !res.OK {
		// Failed signals render neutral with zero confidence.
		v.Error = res.ErrorMessage()
		return v
	}

	v.Score = number(res.Get("score"))
	if t := res.Get("trend").String(); t != "" {
		v.Trend = t
	}
	if m := res.Get("momentum").String(); m != "" {
		v.Momentum = m
	}
	if c := number(res.Get("confidence")); c != nil {
		v.Confidence = clamp(*c, 0, 1)
	}

	v.Debug = Debug{
		MA10:  number(res.Get("debug.ma10")),
		MA20:  number(res.Get("debug.ma20")),
		RSI14: number(res.Get("debug.rsi14")),
	}
	if n := number(res.Get("debug.bars_count")); n != nil {
		count := int(*n)
		v.Debug.BarsCount = &count
	}
	return v
}

// Sentiment maps trend or momentum text to a badge class.
func Sentiment(value string) string {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "bullish"), strings.Contains(v, "positive"):
		return Bullish
	case strings.Contains(v, "bearish"), strings.Contains(v, "negative"):
		return Bearish
	default:
		return Neutral
	}
}

// firstString returns the first non-empty string among paths.
func firstString(res *marketdata.Result, paths ...string) string {
	for _, p := range paths {
		v := res.Get(p)
		if v.Exists() && v.Type != gjson.Null {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

// number reads a JSON number or numeric string. Null, missing, non-numeric
// and non-finite values yield nil.
func number(v gjson.Result) *float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
