// Package propertycentre adapts nigeriapropertycentre.com.
package propertycentre

import (
	"github.com/obedav/ancerlarins-ingest/model"
	"github.com/obedav/ancerlarins-ingest/scraper"
)

// New creates the Nigeria Property Centre adapter.
func New() scraper.Scraper {
	return scraper.NewSite(scraper.SiteConfig{
		Source:  scraper.SourcePropertyCentre,
		BaseURL: "https://nigeriapropertycentre.com",
		Searches: []scraper.Search{
			{Category: "houses", Intent: model.IntentSale, PathTemplate: "/for-sale/houses?page=%d"},
			{Category: "flats-apartments", Intent: model.IntentRent, PathTemplate: "/for-rent/flats-apartments?page=%d"},
			{Category: "short-let", Intent: model.IntentShortLet, PathTemplate: "/short-let?page=%d"},
		},
		Selectors: scraper.Selectors{
			// The list layout was renamed from wp-block to property-list in
			// one of the site's redesigns; both still appear on some pages.
			Card:      []string{"div.wp-block.property.list", "div.property-list div.property"},
			Title:     []string{"h4.content-title", "h3.content-title"},
			Link:      []string{"h4.content-title a", "a[itemprop=url]", "a"},
			Price:     []string{"span.price", "h3.property-price"},
			Location:  []string{"address.voffset-bottom-10", "address"},
			Image:     []string{"img.img-responsive", "img"},
			LazyAttrs: []string{"data-src", "data-original"},
		},
	})
}
