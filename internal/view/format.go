package view

import (
	"fmt"
	"math"

	"github.com/tidwall/pretty"
)

// Placeholder is shown for missing values.
const Placeholder = "-"

// FormatPrice formats a price with two decimals.
func FormatPrice(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatScore rounds a score to an integer.
func FormatScore(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%d", int64(math.Round(*v)))
}

// FormatConfidence renders a [0,1] confidence as a whole percentage.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%d%%", ConfidencePercent(c))
}

// ConfidencePercent returns the confidence as a rounded percentage.
func ConfidencePercent(c float64) int {
	return int(math.Round(clamp(c, 0, 1) * 100))
}

// FormatIndicator formats a debug indicator or returns the placeholder.
func FormatIndicator(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%g", *v)
}

// FormatGainLoss formats a gain/loss value with +/- prefix.
func FormatGainLoss(v *float64) string {
	if v == nil {
		return Placeholder
	}
	if *v >= 0 {
		return fmt.Sprintf("+$%.2f", *v)
	}
	return fmt.Sprintf("-$%.2f", -*v)
}

// FormatPercent formats a signed percentage.
func FormatPercent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

// QuoteLast returns the last-price cell: "Error" for failed quotes.
func QuoteLast(q QuoteView) string {
	if q.Loaded && !q.OK {
		return "Error"
	}
	return FormatPrice(q.Last)
}

// SignalScore returns the score cell: "ERR" for failed signals.
func SignalScore(s SignalView) string {
	if s.Loaded && !s.OK {
		return "ERR"
	}
	return FormatScore(s.Score)
}

// PrettyJSON indents raw JSON for display.
func PrettyJSON(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(pretty.Pretty(raw))
}
