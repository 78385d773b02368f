package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obedav/ancerlarins-ingest/dedup"
	"github.com/obedav/ancerlarins-ingest/model"
)

func newTestIngestor() (*Ingestor, *Memory) {
	backend := NewMemory()
	engine := dedup.NewEngine(backend, backend)
	return New(backend, engine), backend
}

func testCandidate(url, title string) model.Candidate {
	price := int64(5_000_000_000)
	beds := 3
	return model.Candidate{
		Source:    "propertycentre",
		SourceURL: url,
		SourceID:  "abc123",
		Title:     title,
		PriceKobo: &price,
		Location:  "Lekki Phase 1, Lagos",
		Bedrooms:  &beds,
		Intent:    model.IntentSale,
	}
}

func TestIngestIdempotency(t *testing.T) {
	ing, backend := newTestIngestor()
	ctx := context.Background()

	c := testCandidate("https://nigeriapropertycentre.com/listing/1", "Luxury 3 Bedroom Duplex in Lekki")

	first, err := ing.Ingest(ctx, c)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := ing.Ingest(ctx, c)
	require.NoError(t, err)
	assert.False(t, second)

	recs, err := backend.ListRecords(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1, "exactly one record must exist for the URL")
	assert.Equal(t, model.StatusPending, recs[0].Status)
}

func TestIngestConcurrentSameURL(t *testing.T) {
	ing, backend := newTestIngestor()
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ing.Ingest(ctx, testCandidate("https://nigeriapropertycentre.com/listing/race", "4 Bedroom Terrace, Ikoyi"))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created, "only one concurrent ingest may win")
	recs, err := backend.ListRecords(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestIngestInvalidCandidateSkipped(t *testing.T) {
	ing, backend := newTestIngestor()
	ctx := context.Background()

	ok, err := ing.Ingest(ctx, model.Candidate{Source: "propertycentre", SourceURL: "https://x/1"})
	require.NoError(t, err)
	assert.False(t, ok, "candidate without title must be dropped")

	recs, err := backend.ListRecords(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestIngestDuplicateVerdictSetsStatus(t *testing.T) {
	ing, backend := newTestIngestor()
	ctx := context.Background()

	require.NoError(t, backend.CreateInventoryItem(ctx, &model.InventoryItem{
		ID:        "inv-1",
		Title:     "Luxury 3 Bedroom Duplex in Lekki",
		PriceKobo: 5_000_000_000,
		Bedrooms:  3,
		Approved:  true,
	}))

	ok, err := ing.Ingest(ctx, testCandidate("https://nigeriapropertycentre.com/listing/2", "3 Bedroom Duplex For Sale In Lekki Luxury"))
	require.NoError(t, err)
	assert.True(t, ok, "duplicates are still stored, with Duplicate status")

	recs, err := backend.ListRecords(ctx, Filter{Status: model.StatusDuplicate})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.GreaterOrEqual(t, recs[0].DedupScore, 0.85)
	require.NotNil(t, recs[0].MatchedInventoryID)
	assert.Equal(t, "inv-1", *recs[0].MatchedInventoryID)
}

func TestListFilters(t *testing.T) {
	ing, _ := newTestIngestor()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c := testCandidate(fmt.Sprintf("https://nigeriapropertycentre.com/listing/%d", i), fmt.Sprintf("Listing %d", i))
		if i == 2 {
			c.Source = "propertypro"
		}
		_, err := ing.Ingest(ctx, c)
		require.NoError(t, err)
	}

	bySource, err := ing.List(ctx, Filter{Source: "propertypro"})
	require.NoError(t, err)
	assert.Len(t, bySource, 1)

	pending, err := ing.List(ctx, Filter{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestApproveCreatesInventoryItem(t *testing.T) {
	ing, backend := newTestIngestor()
	ctx := context.Background()

	_, err := ing.Ingest(ctx, testCandidate("https://nigeriapropertycentre.com/listing/10", "5 Bedroom Detached House, Asokoro"))
	require.NoError(t, err)

	recs, err := backend.ListRecords(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Nil(t, recs[0].MatchedInventoryID)

	require.NoError(t, ing.Approve(ctx, recs[0].ID))

	recs, err = backend.ListRecords(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusImported, recs[0].Status)
	require.NotNil(t, recs[0].MatchedInventoryID, "approval must link the created inventory item")

	items, err := backend.ApprovedInventory(ctx, dedup.InventoryQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, *recs[0].MatchedInventoryID, items[0].ID)
	assert.Equal(t, "5 Bedroom Detached House, Asokoro", items[0].Title)
}

func TestRejectAndTransitionGuards(t *testing.T) {
	ing, backend := newTestIngestor()
	ctx := context.Background()

	_, err := ing.Ingest(ctx, testCandidate("https://nigeriapropertycentre.com/listing/11", "2 Bedroom Flat, Surulere"))
	require.NoError(t, err)

	recs, err := backend.ListRecords(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	id := recs[0].ID

	require.NoError(t, ing.Reject(ctx, id))

	recs, _ = backend.ListRecords(ctx, Filter{})
	assert.Equal(t, model.StatusRejected, recs[0].Status)

	// Terminal statuses cannot transition again.
	assert.ErrorIs(t, ing.Approve(ctx, id), ErrConflict)
	assert.ErrorIs(t, ing.Reject(ctx, id), ErrConflict)

	// Unknown ids surface ErrNotFound.
	assert.ErrorIs(t, ing.Approve(ctx, "missing"), ErrNotFound)
}
