// Package privateproperty adapts privateproperty.com.ng.
package privateproperty

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/obedav/ancerlarins-ingest/model"
	"github.com/obedav/ancerlarins-ingest/scraper"
)

// New creates the Private Property Nigeria adapter.
func New() scraper.Scraper {
	return scraper.NewSite(scraper.SiteConfig{
		Source:  scraper.SourcePrivateProperty,
		BaseURL: "https://www.privateproperty.com.ng",
		Searches: []scraper.Search{
			{Category: "houses", Intent: model.IntentSale, PathTemplate: "/property-for-sale?page=%d"},
			{Category: "flats", Intent: model.IntentRent, PathTemplate: "/property-for-rent?page=%d"},
		},
		Selectors: scraper.Selectors{
			Card:      []string{"div.similar-listings-item", "div.search-listings-item"},
			Title:     []string{"h2.listings-property-title", "h3.listings-property-title"},
			Link:      []string{"a.listings-property-link", "a"},
			Price:     []string{"h3.listings-price", "span.listings-price"},
			Location:  []string{"h4.listings-location", "p.listings-location"},
			Image:     []string{"img.listings-property-img", "img"},
			LazyAttrs: []string{"data-lazy", "data-src"},
		},
		// Some card titles carry the site name as a suffix.
		Quirk: func(card *goquery.Selection, c *model.Candidate) {
			c.Title = strings.TrimSpace(strings.TrimSuffix(c.Title, "- Private Property Nigeria"))
		},
	})
}
