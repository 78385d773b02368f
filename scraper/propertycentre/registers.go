package propertycentre

import (
	"github.com/obedav/ancerlarins-ingest/scraper"
)

// RegisterPropertyCentreScraper registers the adapter with the factory.
func RegisterPropertyCentreScraper(factory *scraper.Factory) error {
	return factory.RegisterScraper(scraper.SourcePropertyCentre, func() scraper.Scraper {
		return New()
	})
}
