package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obedav/ancerlarins-ingest/dedup"
	"github.com/obedav/ancerlarins-ingest/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS ingested_listings (
	id                   UUID PRIMARY KEY,
	source               TEXT NOT NULL,
	source_url           TEXT NOT NULL UNIQUE,
	source_id            TEXT NOT NULL,
	title                TEXT NOT NULL,
	price_kobo           BIGINT,
	location             TEXT NOT NULL DEFAULT '',
	bedrooms             INT,
	category             TEXT NOT NULL DEFAULT '',
	intent               TEXT NOT NULL DEFAULT '',
	image_url            TEXT NOT NULL DEFAULT '',
	raw                  JSONB,
	status               TEXT NOT NULL,
	dedup_score          DOUBLE PRECISION NOT NULL DEFAULT 0,
	matched_inventory_id UUID,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS inventory_items (
	id         UUID PRIMARY KEY,
	title      TEXT NOT NULL,
	price_kobo BIGINT NOT NULL DEFAULT 0,
	bedrooms   INT NOT NULL DEFAULT 0,
	approved   BOOLEAN NOT NULL DEFAULT FALSE
);
`

// Postgres is the production Backend. The UNIQUE constraint on source_url
// carries the idempotency invariant; concurrent inserts of the same URL
// resolve inside the database.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.db.Close()
}

func (p *Postgres) CreateRecord(ctx context.Context, rec *model.ListingRecord) error {
	raw, err := json.Marshal(rec.Candidate.Raw)
	if err != nil {
		return fmt.Errorf("failed to encode raw field bag: %w", err)
	}

	tag, err := p.db.Exec(ctx,
		`INSERT INTO ingested_listings
		   (id, source, source_url, source_id, title, price_kobo, location,
		    bedrooms, category, intent, image_url, raw, status, dedup_score,
		    matched_inventory_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 ON CONFLICT (source_url) DO NOTHING`,
		rec.ID, rec.Candidate.Source, rec.Candidate.SourceURL, rec.Candidate.SourceID,
		rec.Candidate.Title, rec.Candidate.PriceKobo, rec.Candidate.Location,
		rec.Candidate.Bedrooms, rec.Candidate.Category, string(rec.Candidate.Intent),
		rec.Candidate.ImageURL, raw, string(rec.Status), rec.DedupScore,
		rec.MatchedInventoryID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: source URL %s already captured", ErrConflict, rec.Candidate.SourceURL)
	}
	return nil
}

func (p *Postgres) RecordExists(ctx context.Context, sourceURL string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ingested_listings WHERE source_url = $1)`,
		sourceURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return exists, nil
}

func (p *Postgres) GetRecord(ctx context.Context, id string) (*model.ListingRecord, error) {
	row := p.db.QueryRow(ctx,
		`SELECT id, source, source_url, source_id, title, price_kobo, location,
		        bedrooms, category, intent, image_url, raw, status, dedup_score,
		        matched_inventory_id, created_at
		 FROM ingested_listings WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	return rec, nil
}

func (p *Postgres) ListRecords(ctx context.Context, f Filter) ([]model.ListingRecord, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, source, source_url, source_id, title, price_kobo, location,
		        bedrooms, category, intent, image_url, raw, status, dedup_score,
		        matched_inventory_id, created_at
		 FROM ingested_listings
		 WHERE ($1 = '' OR source = $1)
		   AND ($2 = '' OR status = $2)
		 ORDER BY created_at DESC`,
		f.Source, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("record listing failed: %w", err)
	}
	defer rows.Close()

	var out []model.ListingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("record scan failed: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (p *Postgres) SetRecordStatus(ctx context.Context, id string, status model.Status, matchedID *string) error {
	tag, err := p.db.Exec(ctx,
		`UPDATE ingested_listings SET status = $2, matched_inventory_id = $3 WHERE id = $1`,
		id, string(status), matchedID)
	if err != nil {
		return fmt.Errorf("status update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ApprovedInventory(ctx context.Context, q dedup.InventoryQuery) ([]model.InventoryItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := p.db.Query(ctx,
		`SELECT id, title, price_kobo, bedrooms, approved
		 FROM inventory_items
		 WHERE approved
		   AND ($1::BIGINT IS NULL OR price_kobo >= $1)
		   AND ($2::BIGINT IS NULL OR price_kobo <= $2)
		   AND ($3::INT IS NULL OR bedrooms = $3)
		 LIMIT $4`,
		q.MinPriceKobo, q.MaxPriceKobo, q.Bedrooms, limit)
	if err != nil {
		return nil, fmt.Errorf("inventory query failed: %w", err)
	}
	defer rows.Close()

	var out []model.InventoryItem
	for rows.Next() {
		var item model.InventoryItem
		if err := rows.Scan(&item.ID, &item.Title, &item.PriceKobo, &item.Bedrooms, &item.Approved); err != nil {
			return nil, fmt.Errorf("inventory scan failed: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateInventoryItem(ctx context.Context, item *model.InventoryItem) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO inventory_items (id, title, price_kobo, bedrooms, approved)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.Title, item.PriceKobo, item.Bedrooms, item.Approved)
	if err != nil {
		return fmt.Errorf("inventory insert failed: %w", err)
	}
	return nil
}

func scanRecord(row pgx.Row) (*model.ListingRecord, error) {
	var (
		rec    model.ListingRecord
		raw    []byte
		intent string
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.Candidate.Source, &rec.Candidate.SourceURL, &rec.Candidate.SourceID,
		&rec.Candidate.Title, &rec.Candidate.PriceKobo, &rec.Candidate.Location,
		&rec.Candidate.Bedrooms, &rec.Candidate.Category, &intent,
		&rec.Candidate.ImageURL, &raw, &status, &rec.DedupScore,
		&rec.MatchedInventoryID, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Candidate.Intent = model.Intent(intent)
	rec.Status = model.Status(status)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec.Candidate.Raw); err != nil {
			return nil, fmt.Errorf("failed to decode raw field bag: %w", err)
		}
	}
	return &rec, nil
}
