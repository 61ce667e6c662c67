package tracker

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Vendor identifiers recognized by the tracker. Links registered with
// URLs matching no strategy carry VendorUnknown and are skipped.
const (
	VendorUnknown = "unknown"
)

// Match methods for tracked links
const (
	MatchManual    = "manual"
	MatchAutomated = "automated"
)

// Offer data sources
const (
	SourceManual = "manual"
	SourceScrape = "scrape"
)

// TrackedLink represents one external product page monitored for a
// component. Links are registered externally; this subsystem only
// advances the last-checked timestamp.
type TrackedLink struct {
	ID              int64      `db:"id"`
	ComponentID     int64      `db:"component_id"`
	Vendor          string     `db:"vendor"`
	URL             string     `db:"url"`
	ExternalID      *string    `db:"external_id"`
	MatchMethod     string     `db:"match_method"`
	MatchConfidence float64    `db:"match_confidence"`
	Active          bool       `db:"active"`
	LastCheckedAt   *time.Time `db:"last_checked_at"`
}

// Offer is the latest known price/availability from one vendor for one
// component. At most one row exists per (component, vendor) pair.
type Offer struct {
	ComponentID    int64     `db:"component_id"`
	Vendor         string    `db:"vendor"`
	Price          int64     `db:"price"`
	EffectivePrice int64     `db:"effective_price"`
	InStock        bool      `db:"in_stock"`
	Source         string    `db:"source"`
	URL            string    `db:"url"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// RawExtraction is the transient result of one extraction. Price 0 is
// the sentinel for "no usable price found" and never reaches the store.
type RawExtraction struct {
	Vendor  string `json:"vendor"`
	Price   int64  `json:"price"`
	InStock bool   `json:"in_stock"`
}

// BatchSummary reports the aggregate outcome of one batch run
type BatchSummary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Outcome is the terminal per-cycle state of processing one link
type Outcome string

const (
	OutcomeReconciled      Outcome = "reconciled"
	OutcomeSkipped         Outcome = "skipped_unsupported"
	OutcomeFetchFailed     Outcome = "fetch_failed"
	OutcomeNoPrice         Outcome = "no_price"
	OutcomeReconcileFailed Outcome = "reconcile_failed"
)

// Store is the narrow persistence boundary the tracker writes through.
// UpsertOffer must be atomic per (component_id, vendor) natural key so
// that concurrent batch and single-link runs cannot interleave into a
// lost update.
type Store interface {
	ListActiveLinks(ctx context.Context) ([]TrackedLink, error)
	FindOffer(ctx context.Context, componentID int64, vendor string) (*Offer, error)
	UpsertOffer(ctx context.Context, offer *Offer) error
	TouchLinkCheckedAt(ctx context.Context, linkID int64, checkedAt time.Time) error
}

// Fetcher acquires a rendered DOM for a URL
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*goquery.Document, error)
}
