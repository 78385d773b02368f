package propertycentre

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obedav/ancerlarins-ingest/scraper"
)

func TestNew(t *testing.T) {
	s := New()
	assert.Equal(t, scraper.SourcePropertyCentre, s.Source())

	// Missing collaborators must be rejected up front.
	assert.Error(t, s.Initialize(context.Background(), scraper.Deps{}))

	// Uninitialized scrapers refuse to run.
	_, err := s.Scrape(context.Background(), 1)
	assert.Error(t, err)
}
