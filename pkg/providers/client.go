package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/depo-mc/depo/pkg/httputil"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a project or resource doesn't exist
	// in the repository.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection
	// errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client provides shared HTTP functionality for repository API clients:
// default headers, JSON decoding, and a bounded retry on transient
// failures. Responses are never cached; every lookup hits the API.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given request timeout and default
// headers. A zero timeout falls back to 30 seconds. Pass nil for headers
// if no defaults are needed.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// GetJSON performs an HTTP GET and JSON-decodes the response into v,
// retrying transient failures twice with a short delay.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return httputil.Retry(ctx, 2, time.Second, func() error {
		return c.get(ctx, url, v)
	})
}

func (c *Client) get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
