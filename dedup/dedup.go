// Package dedup decides whether an incoming candidate listing duplicates
// something already captured or something already in approved inventory.
package dedup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/obedav/ancerlarins-ingest/model"
)

const (
	// maxPoolSize caps the number of inventory rows a single evaluation may
	// compare against, bounding the cost of the similarity pass.
	maxPoolSize = 100

	// confidentThreshold and above is an automatic duplicate.
	confidentThreshold = 0.85

	// probableThreshold and above keeps the best match attached for a human
	// reviewer even though the record is not marked duplicate.
	probableThreshold = 0.6

	// priceBandPct is the ± pre-filter band around a known candidate price.
	priceBandPct = 30
)

// Verdict is the engine's decision for one candidate.
type Verdict struct {
	IsDuplicate bool
	Score       float64
	MatchedID   *string
}

// RecordIndex answers whether a source URL has already been ingested.
type RecordIndex interface {
	RecordExists(ctx context.Context, sourceURL string) (bool, error)
}

// InventoryQuery narrows the approved-inventory pool. Nil filter fields are
// not applied.
type InventoryQuery struct {
	MinPriceKobo *int64
	MaxPriceKobo *int64
	Bedrooms     *int
	Limit        int
}

// InventoryReader provides the filtered approved-inventory projection the
// engine matches against. It is read-only.
type InventoryReader interface {
	ApprovedInventory(ctx context.Context, q InventoryQuery) ([]model.InventoryItem, error)
}

// Engine scores candidates against previously ingested records and against
// approved inventory.
type Engine struct {
	records   RecordIndex
	inventory InventoryReader
}

// NewEngine creates an engine over the given record index and inventory
// projection.
func NewEngine(records RecordIndex, inventory InventoryReader) *Engine {
	return &Engine{records: records, inventory: inventory}
}

// Evaluate runs the two-stage decision. Stage one flags an exact
// re-submission of an already captured source URL (score 1.0, no matched
// inventory id, stage two skipped). Stage two fuzzy-matches the candidate
// title against a pre-filtered slice of approved inventory.
func (e *Engine) Evaluate(ctx context.Context, c model.Candidate) (Verdict, error) {
	exists, err := e.records.RecordExists(ctx, c.SourceURL)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to check for existing record: %w", err)
	}
	if exists {
		return Verdict{IsDuplicate: true, Score: 1.0}, nil
	}

	q := InventoryQuery{Limit: maxPoolSize}
	if c.PriceKobo != nil {
		lo := *c.PriceKobo * (100 - priceBandPct) / 100
		hi := *c.PriceKobo * (100 + priceBandPct) / 100
		q.MinPriceKobo, q.MaxPriceKobo = &lo, &hi
	}
	if c.Bedrooms != nil {
		q.Bedrooms = c.Bedrooms
	}

	pool, err := e.inventory.ApprovedInventory(ctx, q)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to load inventory pool: %w", err)
	}

	var (
		best   float64
		bestID string
	)
	for _, item := range pool {
		if s := TitleSimilarity(c.Title, item.Title); s > best {
			best, bestID = s, item.ID
		}
	}

	v := Verdict{Score: best}
	switch {
	case best >= confidentThreshold:
		v.IsDuplicate = true
		v.MatchedID = &bestID
	case best >= probableThreshold:
		// Probable match: kept visible for the reviewer, not auto-flagged.
		v.MatchedID = &bestID
	}

	if v.MatchedID != nil {
		log.Debug().
			Str("title", c.Title).
			Str("matched_id", bestID).
			Float64("score", best).
			Bool("duplicate", v.IsDuplicate).
			Msg("Inventory match found")
	}
	return v, nil
}
