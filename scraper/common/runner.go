package common

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/obedav/ancerlarins-ingest/scraper"
)

// Runner executes scrape runs across sources. Each source run is internally
// sequential; independent sources share no mutable state beyond the store
// and the policy cache, so they run concurrently.
type Runner struct {
	factory *scraper.Factory
	deps    scraper.Deps
}

// NewRunner creates a runner over the given factory and shared dependencies.
func NewRunner(factory *scraper.Factory, deps scraper.Deps) *Runner {
	return &Runner{factory: factory, deps: deps}
}

// RunSource executes one source's scrape run and returns the number of new
// records stored.
func (r *Runner) RunSource(ctx context.Context, source scraper.SourceType, maxPages int) (int, error) {
	s, err := r.factory.GetScraper(source)
	if err != nil {
		return 0, err
	}
	if err := s.Initialize(ctx, r.deps); err != nil {
		return 0, fmt.Errorf("failed to initialize scraper for source %s: %w", source, err)
	}

	stored, err := s.Scrape(ctx, maxPages)
	if err != nil {
		return stored, fmt.Errorf("scrape run for source %s failed: %w", source, err)
	}
	return stored, nil
}

// RunAll executes the given sources concurrently and returns the total
// number of new records stored. The first hard failure cancels the
// remaining runs; expected per-page conditions never surface here.
func (r *Runner) RunAll(ctx context.Context, sources []scraper.SourceType, maxPages int) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	var total atomic.Int64

	for _, source := range sources {
		source := source
		g.Go(func() error {
			stored, err := r.RunSource(ctx, source, maxPages)
			total.Add(int64(stored))
			if err != nil {
				log.Error().Err(err).Str("source", string(source)).Msg("Source run failed")
				return err
			}
			log.Info().Str("source", string(source)).Int("stored", stored).Msg("Source run complete")
			return nil
		})
	}

	err := g.Wait()
	return int(total.Load()), err
}
