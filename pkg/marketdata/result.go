package marketdata

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Fetch outcomes reported to the Recorder.
const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
	OutcomeHTTPError    = "http_error"
	OutcomeInvalidJSON  = "invalid_json"
	OutcomeAppError     = "app_error"
)

// InvalidJSONMessage is the error text stored when a body does not parse.
const InvalidJSONMessage = "Invalid JSON response"

// Result is the uniform envelope for every backend call.
// Body is always valid JSON: either the server payload or an
// {"error": ...} wrapper describing the failure.
type Result struct {
	OK     bool            `json:"ok"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`

	outcome string
}

// NewResult builds a Result from a status code and JSON body, applying the
// same success rules as FetchJSON. It is exported for tests and fakes.
func NewResult(status int, body string) Result {
	return newResult(status, []byte(body))
}

func newResult(status int, text []byte) Result {
	res := Result{
		OK:      status >= 200 && status < 300,
		Status:  status,
		outcome: OutcomeOK,
	}

	if !json.Valid(text) {
		wrapped, _ := json.Marshal(map[string]string{
			"error": InvalidJSONMessage,
			"raw":   string(text),
		})
		res.Body = wrapped
		res.OK = false
		res.outcome = OutcomeInvalidJSON
		return res
	}
	res.Body = json.RawMessage(text)

	if !res.OK {
		res.outcome = OutcomeHTTPError
		return res
	}
	if hasBodyError(res.Body) {
		res.OK = false
		res.outcome = OutcomeAppError
	}
	return res
}

func networkFailure(err error) Result {
	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	return Result{
		OK:      false,
		Status:  0,
		Body:    body,
		outcome: OutcomeNetworkError,
	}
}

// hasBodyError reports whether the body carries a truthy top-level "error".
func hasBodyError(body []byte) bool {
	v := gjson.GetBytes(body, "error")
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.True, gjson.JSON:
		return true
	case gjson.Number:
		return v.Num != 0
	default:
		return false
	}
}

// Outcome classifies how the request ended.
func (r *Result) Outcome() string {
	if r.outcome == "" {
		if r.OK {
			return OutcomeOK
		}
		return OutcomeHTTPError
	}
	return r.outcome
}

// Get returns the value at a gjson path in the body.
func (r *Result) Get(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}

// ErrorMessage returns a human readable failure message, trying the body's
// "error", "message" and "detail" fields before falling back to the status.
// It returns "" for successful results.
func (r *Result) ErrorMessage() string {
	if r == nil {
		return "no data"
	}
	if r.OK {
		return ""
	}
	for _, path := range []string{"error", "message", "detail"} {
		v := r.Get(path)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	if r.Status == 0 {
		return "request failed"
	}
	return fmt.Sprintf("HTTP %d", r.Status)
}

// Err converts a failed Result into an *APIError. It returns nil when OK.
func (r *Result) Err() error {
	if r.OK {
		return nil
	}
	return &APIError{StatusCode: r.Status, Message: r.ErrorMessage()}
}
