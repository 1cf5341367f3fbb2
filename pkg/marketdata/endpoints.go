package marketdata

import (
	"context"
	"fmt"
	"strconv"
)

// DefaultInterval and DefaultOutputSize match the dashboard chart request.
const (
	DefaultInterval   = "1day"
	DefaultOutputSize = 60
)

// Quote fetches the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) Result {
	path := fmt.Sprintf("/provider/%s/quote", c.Provider)
	return c.FetchJSON(ctx, path, map[string]string{"symbol": symbol})
}

// Signal fetches the basic technical signal for symbol.
func (c *Client) Signal(ctx context.Context, symbol string) Result {
	return c.FetchJSON(ctx, "/signal/basic", map[string]string{"symbol": symbol})
}

// BarsResult fetches historical bars as a raw Result.
func (c *Client) BarsResult(ctx context.Context, symbol, interval string, outputSize int) Result {
	if interval == "" {
		interval = DefaultInterval
	}
	if outputSize <= 0 {
		outputSize = DefaultOutputSize
	}
	path := fmt.Sprintf("/provider/%s/bars", c.Provider)
	return c.FetchJSON(ctx, path, map[string]string{
		"symbol":     symbol,
		"interval":   interval,
		"outputsize": strconv.Itoa(outputSize),
	})
}

// Bars fetches and decodes historical bars.
func (c *Client) Bars(ctx context.Context, symbol, interval string, outputSize int) ([]Bar, error) {
	res := c.BarsResult(ctx, symbol, interval, outputSize)
	var resp BarsResponse
	if err := decode(res, &resp); err != nil {
		return nil, err
	}
	return resp.Bars, nil
}

// Search looks up symbols matching query.
func (c *Client) Search(ctx context.Context, query string) ([]SearchMatch, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	path := fmt.Sprintf("/provider/%s/search", c.Provider)
	res := c.FetchJSON(ctx, path, map[string]string{"q": query})
	var resp SearchResponse
	if err := decode(res, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Health queries the backend health endpoint. A degraded backend answers
// 503 with a body, so the decoded response is returned alongside the error.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	res := c.FetchJSON(ctx, "/healthz", nil)
	var resp HealthResponse
	if res.Status != 0 {
		if v := res.Get("status"); v.Exists() {
			resp.Status = v.String()
			resp.App = res.Get("app").String()
			resp.DB.OK = res.Get("db.ok").Bool()
			resp.DB.Message = res.Get("db.message").String()
		}
	}
	if err := res.Err(); err != nil {
		return &resp, err
	}
	return &resp, nil
}
