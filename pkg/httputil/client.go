package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seanwallawalla-forks/gyro/pkg/cache"
)

const defaultTimeout = 10 * time.Second

// ErrNotFound is returned when a package or archive doesn't exist at the
// requested location (registry 404, missing git ref, missing path).
var ErrNotFound = errors.New("resource not found")

// Client provides shared HTTP functionality for the registry and archive
// drivers: caching and retry logic around a plain *http.Client. Grounded on
// the teacher's pkg/integrations.Client.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	headers map[string]string
}

// NewClient creates a Client backed by the given cache. Pass
// cache.NewNullCache() to disable caching (used by driver unit tests).
func NewClient(c cache.Cache, headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		cache:   c,
		headers: headers,
	}
}

// Cached retrieves a cached value for key, or calls fetch and stores its
// result. If refresh is true the cache is bypassed and fetch always runs.
// fetch is expected to populate v on success.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if json.Unmarshal(data, v) == nil {
				return nil
			}
		}
	}
	if err := RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, key, data, 0)
	}
	return nil
}

// Get performs an HTTP GET and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// GetText performs an HTTP GET and returns the response body as a string.
// Useful for non-JSON endpoints (module proxy .mod files, raw manifests).
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

// GetBytes performs an HTTP GET and returns the raw response body, used by
// the archive driver to download archives it checksums and stores.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("network error: %v", err)}
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("network error: status %d", code)}
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
