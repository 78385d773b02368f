package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/obedav/ancerlarins-ingest/common"
	"github.com/obedav/ancerlarins-ingest/model"
	"github.com/obedav/ancerlarins-ingest/normalize"
)

// extractCard pulls one candidate out of a card region. A card missing its
// title or detail link is dropped. The recover guard keeps a pathological
// card from taking the rest of the page down with it.
func (s *Site) extractCard(card *goquery.Selection, search Search) (c model.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic extracting card: %v", r)
		}
	}()

	title := firstText(card, s.cfg.Selectors.Title)
	link := firstAttr(card, s.cfg.Selectors.Link, []string{"href"})
	if title == "" || link == "" {
		return c, fmt.Errorf("card missing title or link")
	}

	absURL, err := resolveURL(s.cfg.BaseURL, link)
	if err != nil {
		return c, fmt.Errorf("unresolvable detail link %q: %w", link, err)
	}

	priceText := firstText(card, s.cfg.Selectors.Price)
	locationText := firstText(card, s.cfg.Selectors.Location)
	cardText := strings.TrimSpace(card.Text())

	c = model.Candidate{
		Source:    string(s.cfg.Source),
		SourceURL: absURL,
		SourceID:  common.SourceLocalID(absURL),
		Title:     title,
		PriceKobo: normalize.ParsePrice(priceText),
		Location:  locationText,
		Bedrooms:  normalize.ParseBedrooms(cardText),
		Category:  search.Category,
		Intent:    search.Intent,
		ImageURL:  s.extractImage(card),
		Raw: map[string]string{
			"price_text":    priceText,
			"location_text": locationText,
		},
	}

	if s.cfg.Quirk != nil {
		s.cfg.Quirk(card, &c)
	}
	return c, nil
}

// extractImage prefers lazy-load attributes over src, since most sites defer
// image loads and leave a placeholder in src.
func (s *Site) extractImage(card *goquery.Selection) string {
	attrs := append(append([]string{}, s.cfg.Selectors.LazyAttrs...), "src")
	img := firstAttr(card, s.cfg.Selectors.Image, attrs)
	if img == "" {
		return ""
	}
	abs, err := resolveURL(s.cfg.BaseURL, img)
	if err != nil {
		return ""
	}
	return abs
}

// firstText returns the first non-empty trimmed text among the selectors.
func firstText(sel *goquery.Selection, selectors []string) string {
	for _, pattern := range selectors {
		if text := strings.TrimSpace(sel.Find(pattern).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the first non-empty attribute value among the selectors,
// checking attrs in order on each match.
func firstAttr(sel *goquery.Selection, selectors []string, attrs []string) string {
	for _, pattern := range selectors {
		node := sel.Find(pattern).First()
		if node.Length() == 0 {
			continue
		}
		for _, attr := range attrs {
			if v, ok := node.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// resolveURL resolves a possibly relative link against the site base.
func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}
