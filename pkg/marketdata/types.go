package marketdata

// =============================================================================
// Quote Types
// =============================================================================

// QuoteResponse is the payload of /provider/{provider}/quote.
type QuoteResponse struct {
	Provider string `json:"provider"`
	Symbol   string `json:"symbol"`
	Quote    Quote  `json:"quote"`
}

// Quote is a canonical last-trade quote.
type Quote struct {
	InstrumentID   string   `json:"instrument_id"`
	TsEvent        string   `json:"ts_event"`
	TsIngest       string   `json:"ts_ingest"`
	Last           *float64 `json:"last"`
	Bid            *float64 `json:"bid,omitempty"`
	Ask            *float64 `json:"ask,omitempty"`
	SourceProvider string   `json:"source_provider"`
	QualityFlags   []string `json:"quality_flags,omitempty"`
}

// =============================================================================
// Bar Types
// =============================================================================

// BarsResponse is the payload of /provider/{provider}/bars.
type BarsResponse struct {
	Provider   string `json:"provider"`
	Symbol     string `json:"symbol"`
	Interval   string `json:"interval"`
	OutputSize int    `json:"outputsize"`
	Bars       []Bar  `json:"bars"`
}

// Bar is one OHLC interval record.
type Bar struct {
	InstrumentID   string   `json:"instrument_id"`
	TsEvent        string   `json:"ts_event"`
	TsIngest       string   `json:"ts_ingest"`
	Open           float64  `json:"open"`
	High           float64  `json:"high"`
	Low            float64  `json:"low"`
	Close          float64  `json:"close"`
	Volume         float64  `json:"volume"`
	SourceProvider string   `json:"source_provider"`
	QualityFlags   []string `json:"quality_flags,omitempty"`
}

// =============================================================================
// Signal Types
// =============================================================================

// SignalResponse is the payload of /signal/basic.
type SignalResponse struct {
	Score      *float64    `json:"score"`
	Trend      string      `json:"trend"`
	Momentum   string      `json:"momentum"`
	Confidence *float64    `json:"confidence"`
	Debug      SignalDebug `json:"debug"`
	Error      string      `json:"error,omitempty"`
}

// SignalDebug carries the indicator values behind a signal.
type SignalDebug struct {
	BarsCount    *int     `json:"bars_count"`
	FirstTS      *string  `json:"first_ts"`
	LastTS       *string  `json:"last_ts"`
	FirstClose   *float64 `json:"first_close"`
	LastClose    *float64 `json:"last_close"`
	MA10         *float64 `json:"ma10"`
	MA20         *float64 `json:"ma20"`
	RSI14        *float64 `json:"rsi14"`
	ClampedScore *float64 `json:"clamped_score,omitempty"`
	RawScore     *float64 `json:"raw_score,omitempty"`
}

// =============================================================================
// Search / Health Types
// =============================================================================

// SearchResponse is the payload of /provider/{provider}/search.
type SearchResponse struct {
	Provider string        `json:"provider"`
	Query    string        `json:"query"`
	Results  []SearchMatch `json:"results"`
}

// SearchMatch is one symbol search hit.
type SearchMatch struct {
	Symbol         string `json:"symbol"`
	InstrumentName string `json:"instrument_name"`
	Exchange       string `json:"exchange"`
	MICCode        string `json:"mic_code"`
	InstrumentType string `json:"instrument_type"`
	Country        string `json:"country"`
	Currency       string `json:"currency"`
}

// HealthResponse is the payload of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
	DB     struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	} `json:"db"`
}
