package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"partspulse/pricetracker/internal/tracker"
)

// Store implements tracker.Store on Postgres. The offer upsert relies
// on the (component_id, vendor) unique constraint so reconciliation is
// atomic per natural key; concurrent batch and instant runs on the
// same pair resolve to last writer wins instead of a lost update.
type Store struct {
	db *sqlx.DB
}

// New creates a store on an existing connection pool
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres and returns a store
func Open(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// ListActiveLinks returns all tracked links with active = true, in a
// stable order
func (s *Store) ListActiveLinks(ctx context.Context) ([]tracker.TrackedLink, error) {
	query := `
		SELECT id, component_id, vendor, url, external_id, match_method,
		       match_confidence, active, last_checked_at
		FROM tracked_links
		WHERE active
		ORDER BY id`

	links := []tracker.TrackedLink{}
	if err := s.db.SelectContext(ctx, &links, query); err != nil {
		return nil, err
	}
	return links, nil
}

// FindOffer returns the offer for a (component, vendor) pair, or nil
// when none exists
func (s *Store) FindOffer(ctx context.Context, componentID int64, vendor string) (*tracker.Offer, error) {
	query := `
		SELECT component_id, vendor, price, effective_price, in_stock,
		       source, url, updated_at
		FROM offers
		WHERE component_id = $1 AND vendor = $2`

	var offer tracker.Offer
	err := s.db.GetContext(ctx, &offer, query, componentID, vendor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// UpsertOffer creates or replaces the offer for its (component, vendor)
// pair in a single statement
func (s *Store) UpsertOffer(ctx context.Context, offer *tracker.Offer) error {
	query := `
		INSERT INTO offers (
			component_id, vendor, price, effective_price, in_stock,
			source, url, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (component_id, vendor) DO UPDATE SET
			price = EXCLUDED.price,
			effective_price = EXCLUDED.effective_price,
			in_stock = EXCLUDED.in_stock,
			source = EXCLUDED.source,
			url = EXCLUDED.url,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		offer.ComponentID,
		offer.Vendor,
		offer.Price,
		offer.EffectivePrice,
		offer.InStock,
		offer.Source,
		offer.URL,
		offer.UpdatedAt,
	)
	return err
}

// TouchLinkCheckedAt advances a link's last-checked timestamp
func (s *Store) TouchLinkCheckedAt(ctx context.Context, linkID int64, checkedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tracked_links SET last_checked_at = $2 WHERE id = $1`,
		linkID, checkedAt,
	)
	return err
}
