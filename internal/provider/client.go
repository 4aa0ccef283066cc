package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// AuthStyle selects where the API key is sent.
type AuthStyle int

const (
	AuthQuery  AuthStyle = iota // ?<param>=<key>
	AuthHeader                  // <param>: <key>
)

// ClientConfig configures a provider HTTP client.
type ClientConfig struct {
	Provider          Name
	BaseURL           string
	APIKey            string
	AuthStyle         AuthStyle
	AuthParam         string // query parameter or header name
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client is the shared HTTP client used by every provider adapter.
//
// It performs exactly one request per call. Every transport, status or decode
// problem is returned as a *Failure so callers never see raw transport errors.
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a provider HTTP client with rate limiting.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	rps := float64(cfg.RequestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger.With("provider", string(cfg.Provider)),
	}
}

// Provider returns the provider this client talks to.
func (c *Client) Provider() Name { return c.cfg.Provider }

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// GetJSON performs a rate-limited GET and decodes the body into a generic
// JSON object.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	return c.decode(path, body)
}

// PostJSON performs a rate-limited POST with a JSON body and decodes the
// response into a generic JSON object.
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (map[string]interface{}, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, Malformed(c.cfg.Provider, "encode request", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, nil, buf)
	if err != nil {
		return nil, err
	}
	return c.decode(path, body)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, error) {
	if !c.Configured() {
		return nil, Unavailable(c.cfg.Provider, "API key not configured", nil)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, Unavailable(c.cfg.Provider, "rate limit wait", err)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	if c.cfg.AuthStyle == AuthQuery {
		q.Set(c.cfg.AuthParam, c.cfg.APIKey)
	}

	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, Unavailable(c.cfg.Provider, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.AuthStyle == AuthHeader {
		req.Header.Set(c.cfg.AuthParam, c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		reason := "http request " + path
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout " + path
		}
		c.logger.Warn("Provider request failed", "path", path, "error", err)
		return nil, Unavailable(c.cfg.Provider, reason, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Unavailable(c.cfg.Provider, "read response body", err)
	}

	c.logger.Debug("Provider request",
		"method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Unavailable(c.cfg.Provider,
			fmt.Sprintf("%s returned %d: %s", path, resp.StatusCode, truncate(body, 200)), nil)
	}
	return body, nil
}

func (c *Client) decode(path string, body []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, Malformed(c.cfg.Provider, "decode response "+path, err)
	}
	if out == nil {
		return nil, Malformed(c.cfg.Provider, "empty response "+path, nil)
	}
	return out, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
