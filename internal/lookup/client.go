package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is the ipinfo.io endpoint describing the caller's own address
const DefaultURL = "https://ipinfo.io/json"

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 1 << 20

// Client fetches the raw geolocation document for this host
type Client interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// TransportError means no complete response came back from the upstream.
// An HTTP error status is not a TransportError; its body is returned as is.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPClient performs a plain GET against a fixed URL
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a client for url. A zero timeout leaves the call
// bounded only by the request context.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch implements Client. The body is returned whatever the status code.
func (c *HTTPClient) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "locationserver/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}
