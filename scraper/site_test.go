package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obedav/ancerlarins-ingest/dedup"
	"github.com/obedav/ancerlarins-ingest/fetch"
	"github.com/obedav/ancerlarins-ingest/model"
	"github.com/obedav/ancerlarins-ingest/store"
)

type allowAllGate struct{}

func (allowAllGate) IsAllowed(context.Context, string) bool { return true }

func testSiteConfig(baseURL string) SiteConfig {
	return SiteConfig{
		Source:  SourcePropertyCentre,
		BaseURL: baseURL,
		Searches: []Search{
			{Category: "houses", Intent: model.IntentSale, PathTemplate: "/for-sale?page=%d"},
		},
		Selectors: Selectors{
			Card:      []string{"div.card"},
			Title:     []string{"h4.title"},
			Link:      []string{"a"},
			Price:     []string{"span.price"},
			Location:  []string{"address"},
			Image:     []string{"img"},
			LazyAttrs: []string{"data-src"},
		},
	}
}

func testDeps(t *testing.T, gate fetch.Gate) (Deps, *store.Memory) {
	t.Helper()
	backend := store.NewMemory()
	engine := dedup.NewEngine(backend, backend)
	return Deps{
		Fetcher:  fetch.New(gate, "AncerLarinsBot/1.0"),
		Ingestor: store.New(backend, engine),
		Delay:    time.Millisecond,
	}, backend
}

const cardHTML = `
<div class="card">
  <h4 class="title"><a href="/listings/%d">%s</a></h4>
  <span class="price">₦ %s</span>
  <address>Lekki Phase 1, Lagos</address>
  <img data-src="/images/%d.jpg" src="/placeholder.gif">
  <p>%d bed, 3 bath</p>
</div>`

func listingPage(n int) string {
	page := "<html><body>"
	for i := 1; i <= n; i++ {
		page += fmt.Sprintf(cardHTML, i, fmt.Sprintf("%d Bedroom Duplex, Lekki %d", i+1, i), "35,000,000", i, i+1)
	}
	return page + "</body></html>"
}

func TestScrapeStoresCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			return
		}
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, listingPage(3))
			return
		}
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer srv.Close()

	deps, backend := testDeps(t, allowAllGate{})
	s := NewSite(testSiteConfig(srv.URL))
	require.NoError(t, s.Initialize(context.Background(), deps))

	stored, err := s.Scrape(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, stored)

	recs, err := backend.ListRecords(context.Background(), store.Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	rec := recs[0]
	assert.Equal(t, "2 Bedroom Duplex, Lekki 1", rec.Candidate.Title)
	assert.Equal(t, srv.URL+"/listings/1", rec.Candidate.SourceURL)
	require.NotNil(t, rec.Candidate.PriceKobo)
	assert.Equal(t, int64(3_500_000_000), *rec.Candidate.PriceKobo)
	assert.Equal(t, "Lekki Phase 1, Lagos", rec.Candidate.Location)
	require.NotNil(t, rec.Candidate.Bedrooms)
	assert.Equal(t, 2, *rec.Candidate.Bedrooms)
	assert.Equal(t, "houses", rec.Candidate.Category)
	assert.Equal(t, model.IntentSale, rec.Candidate.Intent)
	assert.Equal(t, srv.URL+"/images/1.jpg", rec.Candidate.ImageURL, "lazy attribute must win over src")
	assert.Equal(t, "₦ 35,000,000", rec.Candidate.Raw["price_text"])
}

func TestScrapeSkipsMalformedCard(t *testing.T) {
	page := `<html><body>
	  <div class="card"><h4 class="title"><a href="/listings/1">3 Bedroom Flat</a></h4></div>
	  <div class="card"><span class="price">₦ 1,000,000</span></div>
	  <div class="card"><h4 class="title"><a href="/listings/3">2 Bedroom Flat</a></h4></div>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, page)
			return
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	deps, _ := testDeps(t, allowAllGate{})
	s := NewSite(testSiteConfig(srv.URL))
	require.NoError(t, s.Initialize(context.Background(), deps))

	stored, err := s.Scrape(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stored, "the card without a title is dropped, the rest survive")
}

func TestScrapeStopsOnFetchFailure(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			pagesServed++
			fmt.Fprint(w, listingPage(1))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	deps, _ := testDeps(t, allowAllGate{})
	s := NewSite(testSiteConfig(srv.URL))
	require.NoError(t, s.Initialize(context.Background(), deps))

	stored, err := s.Scrape(context.Background(), 10)
	require.NoError(t, err, "a failed page fetch ends the search, it is not a run failure")
	assert.Equal(t, 1, stored)
	assert.Equal(t, 1, pagesServed)
}

func TestScrapeCountExcludesAlreadySeen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, listingPage(2))
			return
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	deps, _ := testDeps(t, allowAllGate{})

	s := NewSite(testSiteConfig(srv.URL))
	require.NoError(t, s.Initialize(context.Background(), deps))
	stored, err := s.Scrape(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	// A second run over the same pages creates nothing new.
	again := NewSite(testSiteConfig(srv.URL))
	require.NoError(t, again.Initialize(context.Background(), deps))
	stored, err = again.Scrape(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
}

func TestScrapeFallbackCardSelector(t *testing.T) {
	page := `<html><body><div class="property-list"><div class="property">
	  <h4 class="title"><a href="/listings/9">1 Bedroom Mini Flat</a></h4>
	</div></div></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, page)
			return
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	cfg := testSiteConfig(srv.URL)
	cfg.Selectors.Card = []string{"div.card", "div.property-list div.property"}

	deps, _ := testDeps(t, allowAllGate{})
	s := NewSite(cfg)
	require.NoError(t, s.Initialize(context.Background(), deps))

	stored, err := s.Scrape(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stored, "second structural pattern must be tried when the first finds nothing")
}

func TestScrapeRequiresInitialize(t *testing.T) {
	s := NewSite(testSiteConfig("https://example.com"))
	_, err := s.Scrape(context.Background(), 1)
	assert.Error(t, err)
}
