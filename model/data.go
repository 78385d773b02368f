package model

import "time"

// Intent is the transaction type a listing was published for.
type Intent string

const (
	IntentSale     Intent = "sale"
	IntentRent     Intent = "rent"
	IntentShortLet Intent = "short-let"
)

// Status is the lifecycle state of an ingested listing record.
//
// A record is created as Pending or Duplicate and only ever moves to
// Imported or Rejected, via the review workflow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDuplicate Status = "duplicate"
	StatusImported  Status = "imported"
	StatusRejected  Status = "rejected"
)

// Candidate is a listing extracted from one external page. It is transient:
// candidates only become records once they pass through the ingestion store.
type Candidate struct {
	Source    string            `json:"source"`
	SourceURL string            `json:"source_url"`
	SourceID  string            `json:"source_id"`
	Title     string            `json:"title"`
	PriceKobo *int64            `json:"price_kobo"`
	Location  string            `json:"location"`
	Bedrooms  *int              `json:"bedrooms"`
	Category  string            `json:"category"`
	Intent    Intent            `json:"intent"`
	ImageURL  string            `json:"image_url"`
	Raw       map[string]string `json:"raw"`
}

// Valid reports whether the candidate carries the required fields.
// Title and source URL are mandatory; anything else may be missing.
func (c Candidate) Valid() bool {
	return c.Title != "" && c.SourceURL != ""
}

// ListingRecord is the persisted, de-duplicated form of a candidate.
// SourceURL is unique across all records and acts as the idempotency key.
type ListingRecord struct {
	ID                 string    `json:"id"`
	Candidate          Candidate `json:"candidate"`
	Status             Status    `json:"status"`
	DedupScore         float64   `json:"dedup_score"`
	MatchedInventoryID *string   `json:"matched_inventory_id"`
	CreatedAt          time.Time `json:"created_at"`
}

// InventoryItem is a projection of the platform's own approved inventory.
// The ingestion core reads these for duplicate matching and creates one on
// approval; it never modifies existing items.
type InventoryItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	PriceKobo int64  `json:"price_kobo"`
	Bedrooms  int    `json:"bedrooms"`
	Approved  bool   `json:"approved"`
}
