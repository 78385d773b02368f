package privateproperty

import (
	"github.com/obedav/ancerlarins-ingest/scraper"
)

// RegisterPrivatePropertyScraper registers the adapter with the factory.
func RegisterPrivatePropertyScraper(factory *scraper.Factory) error {
	return factory.RegisterScraper(scraper.SourcePrivateProperty, func() scraper.Scraper {
		return New()
	})
}
