package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/crateup/pkg/httputil"
	"github.com/matzehuels/crateup/pkg/observability"
)

// Client provides shared HTTP functionality for registry API clients.
// It handles retry logic, common request headers, and HTTP hooks.
//
// Client holds no per-request state and is safe for concurrent use.
type Client struct {
	http    *http.Client
	retry   httputil.Policy
	headers map[string]string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = NewHTTPClient(d)
		}
	}
}

// WithRetry sets the retry policy applied to every request.
func WithRetry(p httputil.Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithHeader adds a default header, replacing any existing value for key.
// The caller's header map is not modified.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		headers := make(map[string]string, len(c.headers)+1)
		for k, v := range c.headers {
			headers[k] = v
		}
		headers[key] = value
		c.headers = headers
	}
}

// NewClient creates a Client with default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
// Without options the client makes one attempt per request and times out
// after [DefaultTimeout].
func NewClient(headers map[string]string, opts ...Option) *Client {
	c := &Client{
		http:    NewHTTPClient(DefaultTimeout),
		retry:   httputil.Once,
		headers: headers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and decodes the JSON body into v. headers are merged over
// the client defaults for this request only and may be nil.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, v any) error {
	return c.retry.Do(ctx, func() error {
		body, err := c.doRequest(ctx, url, headers)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
