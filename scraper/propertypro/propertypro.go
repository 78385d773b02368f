// Package propertypro adapts propertypro.ng.
package propertypro

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/obedav/ancerlarins-ingest/model"
	"github.com/obedav/ancerlarins-ingest/scraper"
)

var titleNoise = []string{"NEW", "HOT DEAL", "PREMIUM"}

// New creates the PropertyPro adapter.
func New() scraper.Scraper {
	return scraper.NewSite(scraper.SiteConfig{
		Source:  scraper.SourcePropertyPro,
		BaseURL: "https://www.propertypro.ng",
		Searches: []scraper.Search{
			{Category: "houses", Intent: model.IntentSale, PathTemplate: "/property-for-sale?page=%d"},
			{Category: "flats", Intent: model.IntentRent, PathTemplate: "/property-for-rent?page=%d"},
			{Category: "short-let", Intent: model.IntentShortLet, PathTemplate: "/short-let-property?page=%d"},
		},
		Selectors: scraper.Selectors{
			Card:      []string{"div.single-room-sale.listings-property", "div.property-listing"},
			Title:     []string{"h2.listings-property-title2", "h2.listings-property-title"},
			Link:      []string{"a[itemprop=url]", "h2 a", "a"},
			Price:     []string{"h3.listings-price", "span.propery-price"},
			Location:  []string{"h4.listings-location", "p.listings-location"},
			Image:     []string{"img.listings-img", "img"},
			LazyAttrs: []string{"data-src"},
		},
		// Promo badges get concatenated into the title text on some layouts.
		Quirk: func(card *goquery.Selection, c *model.Candidate) {
			for _, noise := range titleNoise {
				c.Title = strings.TrimSpace(strings.TrimPrefix(c.Title, noise))
			}
		},
	})
}
