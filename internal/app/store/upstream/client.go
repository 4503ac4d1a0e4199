// internal/app/store/upstream/client.go
//
// Package upstream is the client for the program's REST API. It returns
// domain models or typed errors and never retries; callers decide whether to
// keep stale state or fall back to the static data source.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/pactomapa/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrBadEnvelope is returned when a response is not {status:"success", data:...}.
var ErrBadEnvelope = errors.New("upstream: unexpected response shape")

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// HTTPError is a non-2xx response.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream: %s returned %d", e.URL, e.Status)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}

// Client talks to the program API rooted at BaseURL (".../api").
type Client struct {
	base  string
	http  *http.Client
	log   *zap.Logger
	group singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for baseURL.
func New(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 60 * time.Second},
		log:  logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string { return c.base }

// get issues GET {base}{path}?query and returns the raw body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("upstream: new request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("upstream response",
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, URL: u}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("upstream: read body: %w", err)
	}
	return body, nil
}

// getData issues a GET and decodes the envelope's data into out.
func (c *Client) getData(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("upstream: decode %s: %w", path, err)
	}
	if !env.ok() {
		return fmt.Errorf("%w: %s status=%q", ErrBadEnvelope, path, env.Status)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("upstream: decode %s data: %w", path, err)
	}
	return nil
}

// Ping checks the API is reachable by listing municipalities under the ping
// timeout. Any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), c.log, "ping")
	defer cancel()
	_, err := c.get(ctx, "/municipios", nil)
	var he *HTTPError
	if errors.As(err, &he) {
		return nil
	}
	return err
}
