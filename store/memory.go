package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/obedav/ancerlarins-ingest/dedup"
	"github.com/obedav/ancerlarins-ingest/model"
)

// Memory is an in-process Backend used by tests and local runs. The mutex
// makes the source-URL uniqueness check-and-insert atomic.
type Memory struct {
	mu        sync.Mutex
	records   []model.ListingRecord
	byURL     map[string]int
	byID      map[string]int
	inventory []model.InventoryItem
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		byURL: make(map[string]int),
		byID:  make(map[string]int),
	}
}

func (m *Memory) CreateRecord(_ context.Context, rec *model.ListingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byURL[rec.Candidate.SourceURL]; ok {
		return fmt.Errorf("%w: source URL %s already captured", ErrConflict, rec.Candidate.SourceURL)
	}

	m.records = append(m.records, *rec)
	m.byURL[rec.Candidate.SourceURL] = len(m.records) - 1
	m.byID[rec.ID] = len(m.records) - 1
	return nil
}

func (m *Memory) RecordExists(_ context.Context, sourceURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byURL[sourceURL]
	return ok, nil
}

func (m *Memory) GetRecord(_ context.Context, id string) (*model.ListingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := m.records[idx]
	return &rec, nil
}

func (m *Memory) ListRecords(_ context.Context, f Filter) ([]model.ListingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.ListingRecord
	for _, rec := range m.records {
		if f.Source != "" && rec.Candidate.Source != f.Source {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) SetRecordStatus(_ context.Context, id string, status model.Status, matchedID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.records[idx].Status = status
	m.records[idx].MatchedInventoryID = matchedID
	return nil
}

func (m *Memory) ApprovedInventory(_ context.Context, q dedup.InventoryQuery) ([]model.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.InventoryItem
	for _, item := range m.inventory {
		if !item.Approved {
			continue
		}
		if q.MinPriceKobo != nil && item.PriceKobo < *q.MinPriceKobo {
			continue
		}
		if q.MaxPriceKobo != nil && item.PriceKobo > *q.MaxPriceKobo {
			continue
		}
		if q.Bedrooms != nil && item.Bedrooms != *q.Bedrooms {
			continue
		}
		out = append(out, item)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) CreateInventoryItem(_ context.Context, item *model.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory = append(m.inventory, *item)
	return nil
}
