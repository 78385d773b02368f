package propertypro

import (
	"github.com/obedav/ancerlarins-ingest/scraper"
)

// RegisterPropertyProScraper registers the adapter with the factory.
func RegisterPropertyProScraper(factory *scraper.Factory) error {
	return factory.RegisterScraper(scraper.SourcePropertyPro, func() scraper.Scraper {
		return New()
	})
}
