// Package scraper defines the source adapter interface, the adapter factory,
// and the shared data-driven extraction executor the site packages configure.
package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/obedav/ancerlarins-ingest/fetch"
	"github.com/obedav/ancerlarins-ingest/store"
)

// SourceType identifies one external marketplace site.
type SourceType string

const (
	SourcePropertyCentre  SourceType = "propertycentre"
	SourcePrivateProperty SourceType = "privateproperty"
	SourcePropertyPro     SourceType = "propertypro"
)

// DefaultDelay is the courtesy pause between page fetches within one run,
// independent of the crawl policy gate.
const DefaultDelay = 2 * time.Second

// Deps carries the collaborators every adapter needs.
type Deps struct {
	Fetcher  *fetch.Fetcher
	Ingestor *store.Ingestor
	Delay    time.Duration
}

// Scraper is one source adapter. Scrape walks the site's search pages up to
// maxPages per search and returns the number of listing records actually
// created (already-seen candidates are not counted).
type Scraper interface {
	Initialize(ctx context.Context, deps Deps) error
	Source() SourceType
	Scrape(ctx context.Context, maxPages int) (int, error)
}

// Factory creates scrapers by source type.
type Factory struct {
	mu           sync.Mutex
	constructors map[SourceType]func() Scraper
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[SourceType]func() Scraper)}
}

// RegisterScraper registers a constructor for a source type.
func (f *Factory) RegisterScraper(source SourceType, constructor func() Scraper) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.constructors[source]; exists {
		return fmt.Errorf("scraper already registered for source %s", source)
	}
	f.constructors[source] = constructor
	return nil
}

// GetScraper creates a new scraper for the source type.
func (f *Factory) GetScraper(source SourceType) (Scraper, error) {
	f.mu.Lock()
	constructor, ok := f.constructors[source]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no scraper registered for source %s", source)
	}
	return constructor(), nil
}

// Sources lists the registered source types.
func (f *Factory) Sources() []SourceType {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]SourceType, 0, len(f.constructors))
	for s := range f.constructors {
		out = append(out, s)
	}
	return out
}
