// Package provider wraps every outbound call to the sports data provider.
//
// It is the only component allowed to talk to the provider directly: bounded
// retries, exponential backoff on rate limiting, and the pagination loop all
// live here, and raw provider JSON never crosses the package boundary.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout     = 20 * time.Second
	defaultMaxAttempts = 3
	defaultBackoffBase = 1 * time.Second
	defaultPageSize    = 25
	defaultUserAgent   = "ffa-sync/1.0"

	maxErrorBodyBytes = 512
)

// Response is the outcome of a successful provider call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client calls the provider API with bounded retries and backoff.
type Client struct {
	http        *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	backoffBase time.Duration
	pageSize    int
	logger      logger.Logger
}

// NewClient creates a provider client with configuration options.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: defaultTimeout},
		baseURL:     baseURL,
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		pageSize:    defaultPageSize,
		logger:      logger.Get().Named("provider"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call issues one authenticated GET against path (relative to the base URL),
// retrying up to maxAttempts times after the initial try. Policy: 429 waits
// backoffBase<<retry and retries; other 4xx return immediately with no
// retry; 5xx and transport errors retry with the same backoff; exhausting
// the retry budget returns the last observed error. With the default budget
// of 3 a call rate-limited three times and then served succeeds.
func (c *Client) Call(ctx context.Context, cred *model.Credential, path string) (*Response, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := c.do(ctx, cred, path)
		switch {
		case err != nil:
			// Transport error: retryable.
			metrics.RecordProviderCall("transport_error")
			lastErr = fmt.Errorf("GET %s: %w", path, err)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			metrics.RecordProviderCall("ok")
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			metrics.RecordProviderCall("rate_limited")
			metrics.RecordProviderRateLimited()
			lastErr = newStatusError(path, resp)
		case resp.StatusCode >= 500:
			metrics.RecordProviderCall("server_error")
			lastErr = newStatusError(path, resp)
		default:
			// Client error other than 429: the caller's problem, no retry.
			metrics.RecordProviderCall("client_error")
			return nil, newStatusError(path, resp)
		}

		if attempt == c.maxAttempts {
			break
		}
		metrics.RecordProviderRetry()
		delay := c.backoffBase << (attempt + 1)
		c.logger.Warn(ctx, "provider call failed; backing off",
			logger.String("path", path),
			logger.Int("retry", attempt+1),
			logger.Duration("delay", delay),
			logger.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrCallAborted, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%w after %d retries: %w", ErrRetriesExhausted, c.maxAttempts, lastErr)
}

func (c *Client) do(ctx context.Context, cred *model.Credential, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if cred != nil {
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// pageEnvelope is the provider's cursor page shape.
type pageEnvelope struct {
	Items []json.RawMessage `json:"items"`
	Total int               `json:"total"`
}

// Pages repeatedly requests path with a start/count cursor until a page
// comes back short or empty, accumulating every item.
func (c *Client) Pages(ctx context.Context, cred *model.Credential, path string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for offset := 0; ; offset += c.pageSize {
		resp, err := c.Call(ctx, cred, withCursor(path, offset, c.pageSize))
		if err != nil {
			return nil, err
		}
		var page pageEnvelope
		if err := json.Unmarshal(bytes.TrimSpace(resp.Body), &page); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		items = append(items, page.Items...)
		metrics.RecordProviderPage()
		if len(page.Items) < c.pageSize {
			return items, nil
		}
	}
}

// withCursor appends the start/count cursor to a relative path that may
// already carry query parameters.
func withCursor(path string, start, count int) string {
	sep := "?"
	if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return path + sep + "start=" + strconv.Itoa(start) + "&count=" + strconv.Itoa(count)
}
