// Package fetch performs gated page retrieval for the source adapters.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obedav/ancerlarins-ingest/metrics"
)

// DefaultTimeout bounds every page fetch. There is no retry: a failed fetch
// is terminal for that page.
const DefaultTimeout = 30 * time.Second

// Gate decides whether a URL may be fetched at all. Implemented by
// policy.Gate.
type Gate interface {
	IsAllowed(ctx context.Context, rawURL string) bool
}

// Fetcher retrieves pages through the crawl policy gate. Every failure mode
// (policy block, transport error, timeout, non-2xx status) degrades to
// "page unavailable" rather than an error: callers only see ok=false.
type Fetcher struct {
	gate      Gate
	client    *http.Client
	userAgent string
}

// New creates a fetcher that consults the given gate before every request
// and identifies itself with the given user-agent string.
func New(gate Gate, userAgent string) *Fetcher {
	return &Fetcher{
		gate:      gate,
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: userAgent,
	}
}

// Fetch retrieves the page body at the given URL. When the crawl policy
// disallows the path no network call is made at all.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool) {
	if !f.gate.IsAllowed(ctx, rawURL) {
		log.Debug().Str("url", rawURL).Msg("Crawl policy disallows URL, skipping")
		metrics.FetchesTotal.WithLabelValues("blocked").Inc()
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("Failed to build page request")
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("Page fetch failed")
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Str("url", rawURL).Msg("Page fetch returned non-success status")
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("Failed to read page body")
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, false
	}

	metrics.FetchesTotal.WithLabelValues("ok").Inc()
	return body, true
}
