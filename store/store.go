// Package store is the persistence and idempotency boundary of the ingestion
// pipeline. The Ingestor is the only component that creates listing records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/obedav/ancerlarins-ingest/dedup"
	"github.com/obedav/ancerlarins-ingest/metrics"
	"github.com/obedav/ancerlarins-ingest/model"
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned by backends when a record with the same source
	// URL already exists, and by the Ingestor for invalid status transitions.
	ErrConflict = errors.New("conflicting record state")
)

// Filter narrows record listings for the review workflow. Zero values are
// not applied.
type Filter struct {
	Source string
	Status model.Status
}

// Backend is the raw persistence surface. Implementations must enforce the
// source-URL uniqueness constraint atomically: of two concurrent creates for
// the same URL exactly one succeeds, the other gets ErrConflict.
type Backend interface {
	CreateRecord(ctx context.Context, rec *model.ListingRecord) error
	RecordExists(ctx context.Context, sourceURL string) (bool, error)
	GetRecord(ctx context.Context, id string) (*model.ListingRecord, error)
	ListRecords(ctx context.Context, f Filter) ([]model.ListingRecord, error)
	SetRecordStatus(ctx context.Context, id string, status model.Status, matchedID *string) error

	ApprovedInventory(ctx context.Context, q dedup.InventoryQuery) ([]model.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item *model.InventoryItem) error
}

// Ingestor layers the ingestion and review semantics over a Backend.
type Ingestor struct {
	backend Backend
	engine  *dedup.Engine
}

// New creates an ingestor over the given backend and dedup engine.
func New(backend Backend, engine *dedup.Engine) *Ingestor {
	return &Ingestor{backend: backend, engine: engine}
}

// Ingest stores one candidate. A candidate whose source URL has already been
// captured is skipped (returns false); otherwise the dedup engine decides
// the record's initial status and the record is created. Only unrecoverable
// write-path faults surface as errors.
func (s *Ingestor) Ingest(ctx context.Context, c model.Candidate) (bool, error) {
	if !c.Valid() {
		log.Debug().Str("url", c.SourceURL).Msg("Candidate missing required fields, skipping")
		return false, nil
	}

	exists, err := s.backend.RecordExists(ctx, c.SourceURL)
	if err != nil {
		return false, fmt.Errorf("idempotency check failed: %w", err)
	}
	if exists {
		return false, nil
	}

	verdict, err := s.engine.Evaluate(ctx, c)
	if err != nil {
		return false, fmt.Errorf("dedup evaluation failed: %w", err)
	}

	status := model.StatusPending
	if verdict.IsDuplicate {
		status = model.StatusDuplicate
	}

	rec := &model.ListingRecord{
		ID:                 uuid.NewString(),
		Candidate:          c,
		Status:             status,
		DedupScore:         verdict.Score,
		MatchedInventoryID: verdict.MatchedID,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.backend.CreateRecord(ctx, rec); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost a race with a concurrent ingest of the same URL; the
			// first writer's record stands.
			return false, nil
		}
		return false, fmt.Errorf("failed to create record: %w", err)
	}

	metrics.RecordsStored.WithLabelValues(string(status)).Inc()
	log.Info().
		Str("source", c.Source).
		Str("url", c.SourceURL).
		Str("status", string(status)).
		Float64("score", verdict.Score).
		Msg("Listing record created")
	return true, nil
}

// List returns records matching the filter, for the review workflow.
func (s *Ingestor) List(ctx context.Context, f Filter) ([]model.ListingRecord, error) {
	return s.backend.ListRecords(ctx, f)
}

// Approve imports a record into inventory. When the record matched an
// existing inventory item the record is linked to it; otherwise a new item
// is created from the record's fields. Only Pending and Duplicate records
// can be approved.
func (s *Ingestor) Approve(ctx context.Context, id string) error {
	rec, err := s.backend.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status != model.StatusPending && rec.Status != model.StatusDuplicate {
		return fmt.Errorf("%w: cannot approve record in status %s", ErrConflict, rec.Status)
	}

	matchedID := rec.MatchedInventoryID
	if matchedID == nil {
		item := &model.InventoryItem{
			ID:       uuid.NewString(),
			Title:    rec.Candidate.Title,
			Approved: true,
		}
		if rec.Candidate.PriceKobo != nil {
			item.PriceKobo = *rec.Candidate.PriceKobo
		}
		if rec.Candidate.Bedrooms != nil {
			item.Bedrooms = *rec.Candidate.Bedrooms
		}
		if err := s.backend.CreateInventoryItem(ctx, item); err != nil {
			return fmt.Errorf("failed to create inventory item: %w", err)
		}
		matchedID = &item.ID
	}

	return s.backend.SetRecordStatus(ctx, id, model.StatusImported, matchedID)
}

// Reject marks a record rejected. Only Pending and Duplicate records can be
// rejected.
func (s *Ingestor) Reject(ctx context.Context, id string) error {
	rec, err := s.backend.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status != model.StatusPending && rec.Status != model.StatusDuplicate {
		return fmt.Errorf("%w: cannot reject record in status %s", ErrConflict, rec.Status)
	}
	return s.backend.SetRecordStatus(ctx, id, model.StatusRejected, rec.MatchedInventoryID)
}
