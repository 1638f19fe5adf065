package httpc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the shared connection pool used by all fetch stages. It is
// safe for concurrent use by any number of tasks; a channel semaphore
// caps the number of simultaneously open outbound connections, and every
// request carries its own fixed timeout.
type Client struct {
	httpClient *http.Client
	sem        chan struct{}
	timeout    time.Duration
	userAgent  string
}

// NewClient creates a new pooled HTTP client. maxConnections is the
// concurrency ceiling; timeout applies per request.
func NewClient(maxConnections int, timeout time.Duration, userAgent string) *Client {
	if maxConnections <= 0 {
		maxConnections = 1
	}

	transport := &http.Transport{
		MaxIdleConns:        maxConnections,
		MaxIdleConnsPerHost: maxConnections,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		sem:        make(chan struct{}, maxConnections),
		timeout:    timeout,
		userAgent:  userAgent,
	}
}

// Get fetches the given URL and returns the full response body.
// A non-2xx status is an error; an empty body is not.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// Head issues a metadata-only probe and returns the response headers
// without downloading a body.
func (c *Client) Head(ctx context.Context, url string) (http.Header, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to probe URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return resp.Header, nil
}

// MaxConnections returns the configured concurrency ceiling.
func (c *Client) MaxConnections() int {
	return cap(c.sem)
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	<-c.sem
}
