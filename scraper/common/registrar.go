// Package common wires the source adapters together and runs them.
package common

import (
	"github.com/obedav/ancerlarins-ingest/scraper"
	"github.com/obedav/ancerlarins-ingest/scraper/privateproperty"
	"github.com/obedav/ancerlarins-ingest/scraper/propertycentre"
	"github.com/obedav/ancerlarins-ingest/scraper/propertypro"
)

// RegisterAllScrapers registers every source adapter with the factory.
func RegisterAllScrapers(factory *scraper.Factory) error {
	if err := propertycentre.RegisterPropertyCentreScraper(factory); err != nil {
		return err
	}
	if err := privateproperty.RegisterPrivatePropertyScraper(factory); err != nil {
		return err
	}
	if err := propertypro.RegisterPropertyProScraper(factory); err != nil {
		return err
	}

	// Add more adapter registrations here as needed.

	return nil
}
