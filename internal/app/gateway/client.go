// Package gateway is the sole network boundary of the data layer. It maps a
// (path, method, body) triple onto a parsed JSON response or a typed failure.
// No retry policy lives here; that belongs to callers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

const maxBodyBytes = 8 << 20

// Client issues JSON requests against the API root URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      func() string
	limiter    *rate.Limiter
	log        *logger.Logger
}

// Config configures a gateway client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RatePerSecond caps outbound request rate when positive. Zero disables
	// limiting.
	RatePerSecond float64

	// Token supplies the bearer token for authenticated calls. May be nil or
	// return "" when no session is active.
	Token func() string

	Logger *logger.Logger
}

// New constructs a gateway client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("gateway base URL required")
	}
	base = strings.TrimRight(base, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("gateway")
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    base,
		token:      cfg.Token,
		limiter:    limiter,
		log:        log,
	}, nil
}

// Request performs a single API call and returns the raw JSON document.
// Non-2xx responses yield *HTTPError, transport failures *NetworkError, and
// undecodable 2xx bodies *ParseError.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Err: err}
		}
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	c.log.WithField("method", method).
		WithField("path", path).
		WithField("status", resp.StatusCode).
		WithField("elapsed", time.Since(started).String()).
		Debug("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.StatusCode),
		}
	}

	// Logout and deletes answer 200 with an empty body.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, &ParseError{Err: fmt.Errorf("invalid JSON in %d response", resp.StatusCode)}
	}
	return json.RawMessage(raw), nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, path, nil)
}

// Decode unmarshals a raw response into target.
func Decode(raw json.RawMessage, target interface{}) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// errorMessage pulls a human-readable message out of an API error body. The
// API answers either {"message": ...} or {"error": ...}; anything else falls
// back to the status line.
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
		if msg := gjson.GetBytes(body, "error"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
	}
	text := strings.TrimSpace(string(body))
	if text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}
