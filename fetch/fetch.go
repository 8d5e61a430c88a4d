// Package fetch retrieves page bodies for the catalog and price crawls.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"mercadopublico-scraper/config"
	"mercadopublico-scraper/utils"
)

// maxBodyBytes caps how much of a page is read into memory.
const maxBodyBytes = 16 << 20

// Fetcher returns the body of the page at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// New returns the fetcher selected by cfg.FetchMode. The returned close
// function releases browser resources and is safe to call for HTTP mode.
func New(cfg *config.Config, logger *utils.Logger) (Fetcher, func(), error) {
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}

	switch cfg.FetchMode {
	case "", "http":
		return NewHTTPFetcher(&http.Client{Timeout: cfg.RequestTimeout}, cfg.UserAgent, retry), func() {}, nil
	case "browser":
		b, err := NewBrowserFetcher(cfg, retry, logger)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	}
	return nil, nil, fmt.Errorf("fetch: unknown FETCH_MODE %q", cfg.FetchMode)
}

// HTTPFetcher performs plain GET requests with a fixed user agent.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	retry     *utils.RetryConfig
}

// NewHTTPFetcher wraps client. The client's Timeout bounds each attempt.
func NewHTTPFetcher(client *http.Client, userAgent string, retry *utils.RetryConfig) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: userAgent, retry: retry}
}

// Fetch GETs url, retrying transport errors and 5xx/429 responses. Other
// non-200 statuses fail immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string

	err := f.retry.Do(ctx, "GET "+url, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %v: %w", err, utils.ErrPermanent)
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return fmt.Errorf("http %d", resp.StatusCode)
			}
			return fmt.Errorf("http %d: %w", resp.StatusCode, utils.ErrPermanent)
		}

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		body = string(b)
		return nil
	})

	return body, err
}
