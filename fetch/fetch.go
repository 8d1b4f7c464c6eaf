// Package fetch retrieves remote metadata documents.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethgrid/pester"
)

// Fetcher retrieves the content at a URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Options configure an HTTPFetcher.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string

	// MaxBytes caps the response size; zero means DefaultMaxBytes.
	MaxBytes int64
}

// DefaultMaxBytes bounds a single metadata document.
const DefaultMaxBytes = 64 << 20

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
}

// HTTPFetcher fetches documents over HTTP, retrying transient failures
// with exponential backoff.
type HTTPFetcher struct {
	client    *pester.Client
	userAgent string
	maxBytes  int64
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher from options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.RetryOnHTTP429 = true
	if opts.MaxRetries > 0 {
		client.MaxRetries = opts.MaxRetries
	}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &HTTPFetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  maxBytes,
	}
}

// Get fetches url and returns the response body. Responses with a status
// of 400 or above are errors.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	slog.Debug("fetching document", "url", url)
	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("request failed", "url", url, "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("fetching %s: no response", url)
	}
	defer resp.Body.Close()

	slog.Debug("request complete", "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("fetching %s: response exceeds %d bytes", url, f.maxBytes)
	}
	return data, nil
}
