package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// StatusError is returned when the remote host answers with a non-success status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download of %s failed: HTTP %d", e.URL, e.StatusCode)
}

// Client downloads attachment content with simple rate limiting
type Client struct {
	httpClient *http.Client

	// Simple rate limiter
	mu          sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
	retryDelay  time.Duration
}

// NewClient creates a new download client
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// Discord CDN tolerates bursts, 20 requests per second is plenty
		minInterval: 50 * time.Millisecond,
		retryDelay:  1 * time.Second,
	}
}

// doRequest performs an HTTP request with rate limiting
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		time.Sleep(c.minInterval - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	// Handle rate limiting (429)
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		// Wait and retry once
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(c.retryDelay):
		}
		return c.httpClient.Do(req)
	}

	return resp, nil
}

// Download issues a GET for url and returns the response body.
// Non-2xx responses are reported as *StatusError. The caller must close the body.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}
