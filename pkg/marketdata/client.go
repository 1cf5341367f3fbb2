// Package marketdata provides a Go client for the market-data backend.
//
// Every call resolves to a Result envelope regardless of how it failed, so
// callers branch only on Result.OK rather than on transport, HTTP, parse,
// or application errors.
package marketdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultProvider is the upstream provider used when none is configured.
const DefaultProvider = "twelvedata"

// Recorder receives one observation per completed request.
type Recorder interface {
	RecordFetch(endpoint, outcome string, seconds float64)
}

// Client handles HTTP requests to the market-data backend.
type Client struct {
	BaseURL    string
	Provider   string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Recorder   Recorder
}

// NewClient creates a new API client with the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Provider: DefaultProvider,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: zap.NewNop(),
	}
}

// WithProvider sets the upstream provider segment used in provider paths.
func (c *Client) WithProvider(provider string) *Client {
	if provider != "" {
		c.Provider = provider
	}
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.Logger = logger
	}
	return c
}

// WithRecorder sets the metrics recorder.
func (c *Client) WithRecorder(r Recorder) *Client {
	c.Recorder = r
	return c
}

// WithTimeout overrides the HTTP client timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.HTTPClient.Timeout = d
	}
	return c
}

// FetchJSON performs a GET request and normalizes the outcome into a Result.
// It never returns an error: transport failures, non-2xx statuses, bodies
// that are not JSON and bodies carrying an "error" field all produce a
// Result with OK set to false.
func (c *Client) FetchJSON(ctx context.Context, path string, params map[string]string) Result {
	start := time.Now()
	requestID := uuid.NewString()

	res := c.fetch(ctx, path, params, requestID)

	c.Logger.Debug("fetch completed",
		zap.String("request_id", requestID),
		zap.String("path", path),
		zap.Int("status", res.Status),
		zap.Bool("ok", res.OK),
		zap.String("outcome", res.outcome),
		zap.Duration("elapsed", time.Since(start)),
	)
	if c.Recorder != nil {
		c.Recorder.RecordFetch(path, res.outcome, time.Since(start).Seconds())
	}
	return res
}

func (c *Client) fetch(ctx context.Context, path string, params map[string]string, requestID string) Result {
	target := c.BaseURL + path
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		target = target + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return networkFailure(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return networkFailure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		res := networkFailure(err)
		res.Status = resp.StatusCode
		return res
	}

	return newResult(resp.StatusCode, text)
}

// decode unmarshals a successful result body into target.
func decode(res Result, target any) error {
	if err := res.Err(); err != nil {
		return err
	}
	if err := json.Unmarshal(res.Body, target); err != nil {
		return &APIError{StatusCode: res.Status, Message: "failed to decode response: " + err.Error()}
	}
	return nil
}
