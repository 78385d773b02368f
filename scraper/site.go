package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/obedav/ancerlarins-ingest/metrics"
	"github.com/obedav/ancerlarins-ingest/model"
)

// Search is one (category, intent) enumeration of a site. PathTemplate
// receives the page number via fmt.Sprintf.
type Search struct {
	Category     string
	Intent       model.Intent
	PathTemplate string
}

// Selectors are the structural match patterns for a site's result pages.
// Sites rename classes often, so the lists are tried in order until one
// yields results.
type Selectors struct {
	Card     []string
	Title    []string
	Link     []string
	Price    []string
	Location []string
	Image    []string
	// LazyAttrs are image attributes checked before src. Many sites defer
	// image loads behind data-* attributes.
	LazyAttrs []string
}

// SiteConfig is the data-driven description of one marketplace site. The few
// genuinely site-specific quirks go through the optional Quirk hook instead
// of subclassing the executor.
type SiteConfig struct {
	Source    SourceType
	BaseURL   string
	Searches  []Search
	Selectors Selectors
	Quirk     func(card *goquery.Selection, c *model.Candidate)
}

// Site is the generic extraction executor; every adapter is a Site with its
// own SiteConfig.
type Site struct {
	cfg         SiteConfig
	deps        Deps
	initialized bool
}

// NewSite creates an executor for the given site configuration.
func NewSite(cfg SiteConfig) *Site {
	return &Site{cfg: cfg}
}

// Initialize wires in the fetcher and ingestor.
func (s *Site) Initialize(_ context.Context, deps Deps) error {
	if deps.Fetcher == nil || deps.Ingestor == nil {
		return fmt.Errorf("scraper for %s requires a fetcher and an ingestor", s.cfg.Source)
	}
	if deps.Delay <= 0 {
		deps.Delay = DefaultDelay
	}
	s.deps = deps
	s.initialized = true
	return nil
}

// Source returns the site's source type.
func (s *Site) Source() SourceType {
	return s.cfg.Source
}

// Scrape walks every configured search for up to maxPages pages each. A
// failed fetch or an empty page ends that search (end-of-results, not an
// error); the courtesy delay runs before every fetch after the first. Only
// an unrecoverable store fault aborts the run.
func (s *Site) Scrape(ctx context.Context, maxPages int) (int, error) {
	if !s.initialized {
		return 0, fmt.Errorf("scraper for %s not initialized", s.cfg.Source)
	}

	stored := 0
	first := true
	for _, search := range s.cfg.Searches {
		for page := 1; page <= maxPages; page++ {
			if !first {
				if err := s.wait(ctx); err != nil {
					return stored, err
				}
			}
			first = false

			pageURL := s.cfg.BaseURL + fmt.Sprintf(search.PathTemplate, page)
			body, ok := s.deps.Fetcher.Fetch(ctx, pageURL)
			if !ok {
				log.Debug().Str("source", string(s.cfg.Source)).Str("url", pageURL).Msg("Page unavailable, ending search")
				break
			}

			candidates := s.extractPage(body, search)
			if len(candidates) == 0 {
				log.Debug().Str("source", string(s.cfg.Source)).Str("url", pageURL).Msg("No cards on page, ending search")
				break
			}

			for _, c := range candidates {
				created, err := s.deps.Ingestor.Ingest(ctx, c)
				if err != nil {
					return stored, fmt.Errorf("ingest failed for %s: %w", c.SourceURL, err)
				}
				if created {
					stored++
				}
			}
		}
	}

	log.Info().Str("source", string(s.cfg.Source)).Int("stored", stored).Msg("Scrape run finished")
	return stored, nil
}

// wait sleeps for the courtesy delay, returning early if the context ends.
func (s *Site) wait(ctx context.Context) error {
	t := time.NewTimer(s.deps.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// extractPage turns one result page into candidates. Card selectors are
// tried in order; the first pattern with results wins. A malformed card is
// logged and skipped, never aborting the rest of the page.
func (s *Site) extractPage(body []byte, search Search) []model.Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		log.Warn().Err(err).Str("source", string(s.cfg.Source)).Msg("Failed to parse page HTML")
		return nil
	}

	var cards *goquery.Selection
	for _, pattern := range s.cfg.Selectors.Card {
		if sel := doc.Find(pattern); sel.Length() > 0 {
			cards = sel
			break
		}
	}
	if cards == nil {
		return nil
	}

	var out []model.Candidate
	cards.Each(func(i int, card *goquery.Selection) {
		c, err := s.extractCard(card, search)
		if err != nil {
			metrics.CardFailures.WithLabelValues(string(s.cfg.Source)).Inc()
			log.Warn().Err(err).Str("source", string(s.cfg.Source)).Int("card", i).Msg("Card extraction failed, skipping")
			return
		}
		out = append(out, c)
	})

	metrics.CandidatesExtracted.WithLabelValues(string(s.cfg.Source)).Add(float64(len(out)))
	return out
}
