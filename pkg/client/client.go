// Package client talks to the worldclock API server.
package client

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
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/worldclock/pkg/httpcache"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
)

// Retry defaults: three attempts starting one second apart.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// WallClockLayout is how Convert sends times to the server.
const WallClockLayout = "2006-01-02T15:04:05"

// APIError is a non-2xx answer from the server.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	Details    string `json:"details"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("worldclock API %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("worldclock API %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// SearchResult is one page of city search results.
type SearchResult struct {
	Message string              `json:"message"`
	Cities  []worldclock.Record `json:"data"`
	Total   int                 `json:"total"`
}

// Conversion is a converted wall-clock time.
type Conversion struct {
	Source     string  `json:"source"`
	Result     string  `json:"result"`
	Formatted  string  `json:"formatted"`
	Difference float64 `json:"difference"`
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. The default has a 30 second timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCache serves repeated searches, lookups and conversions from cache.
func WithCache(cache *httpcache.Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithRetry overrides the retry attempts and base delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// Client is a worldclock API client. It is safe for concurrent use.
type Client struct {
	http     *http.Client
	cache    *httpcache.Cache
	cached   *httpcache.CachedClient
	logger   *slog.Logger
	baseURL  string
	delay    time.Duration
	attempts uint
}

// New returns a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
		baseURL:  strings.TrimRight(u.String(), "/"),
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts == 0 {
		c.attempts = 1
	}
	if c.cache != nil {
		c.cached = httpcache.NewCachedClient(c.cache, c.http, c.logger)
	}
	return c, nil
}

// Search finds cities matching keyword, optionally restricted to a region.
// A non-positive limit lets the server pick its default.
func (c *Client) Search(ctx context.Context, keyword string, region worldclock.Region, limit int) (SearchResult, error) {
	q := url.Values{}
	if keyword != "" {
		q.Set("keyword", keyword)
	}
	if region != "" {
		q.Set("region", string(region))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out SearchResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/cities?"+q.Encode(), nil, true, &out); err != nil {
		return SearchResult{}, err
	}
	return out, nil
}

// City looks up the catalog record for an IANA id.
func (c *Client) City(ctx context.Context, iana string) (worldclock.Record, error) {
	var out envelope[worldclock.Record]
	if err := c.do(ctx, http.MethodGet, "/api/v1/cities/"+iana, nil, true, &out); err != nil {
		return worldclock.Record{}, err
	}
	return out.Data, nil
}

// WorldTime returns the current time in each zone. With no zones the server reports UTC.
func (c *Client) WorldTime(ctx context.Context, zones ...string) ([]worldclock.ZoneInfo, error) {
	switch len(zones) {
	case 0, 1:
		body := map[string]string{}
		if len(zones) == 1 {
			body["timezone"] = zones[0]
		}
		var out envelope[worldclock.ZoneInfo]
		if err := c.do(ctx, http.MethodPost, "/api/v1/world-time", body, false, &out); err != nil {
			return nil, err
		}
		return []worldclock.ZoneInfo{out.Data}, nil
	default:
		var out envelope[[]worldclock.ZoneInfo]
		if err := c.do(ctx, http.MethodPost, "/api/v1/world-time", map[string][]string{"timezones": zones}, false, &out); err != nil {
			return nil, err
		}
		return out.Data, nil
	}
}

// Convert asks the server to convert the wall-clock fields of t from one zone to another.
func (c *Client) Convert(ctx context.Context, t time.Time, from, to string) (Conversion, error) {
	body := map[string]string{
		"time": t.Format(WallClockLayout),
		"from": from,
		"to":   to,
	}
	var out envelope[Conversion]
	if err := c.do(ctx, http.MethodPost, "/api/v1/convert", body, true, &out); err != nil {
		return Conversion{}, err
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, cacheable bool, out any) error {
	start := time.Now()
	target := c.baseURL + path

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	var doer httpcache.HTTPClient = c.http
	if cacheable && c.cached != nil {
		doer = c.cached
	}

	var lastErr error
	err := retry.Do(
		func() error {
			var reqBody io.Reader = http.NoBody
			if payload != nil {
				reqBody = bytes.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
			if err != nil {
				lastErr = err
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			if payload != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := doer.Do(req)
			if err != nil {
				c.logger.Warn("API request failed", "url", target, "error", err, "duration", time.Since(start))
				lastErr = err
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					c.logger.Debug("failed to close response body", "error", closeErr)
				}
			}()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				lastErr = fmt.Errorf("reading response: %w", err)
				return lastErr
			}

			if resp.StatusCode != http.StatusOK {
				apiErr := &APIError{StatusCode: resp.StatusCode}
				if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
					apiErr.Message = strings.TrimSpace(string(data))
				}
				lastErr = apiErr
				if apiErr.Temporary() {
					return apiErr
				}
				return retry.Unrecoverable(apiErr)
			}

			if err := json.Unmarshal(data, out); err != nil {
				lastErr = fmt.Errorf("decoding response: %w", err)
				return retry.Unrecoverable(lastErr)
			}
			c.logger.Debug("API request completed",
				"method", method,
				"url", target,
				"cache", resp.Header.Get("X-From-Cache") == "true",
				"duration", time.Since(start))
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying API request", "url", target, "attempt", n+1, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Temporary()
			}
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		c.logger.Debug("API request gave up", "url", target, "error", lastErr, "duration", time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, lastErr)
	}
	return nil
}
