package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partspulse/pricetracker/internal/scraper"
	"partspulse/pricetracker/internal/storage/postgres"
	"partspulse/pricetracker/internal/tracker"
)

const productPageHTML = `
<!DOCTYPE html>
<html>
<head><title>AMD Ryzen 5 5600 Processor</title></head>
<body>
	<div class="product">
		<span class="price-new">₹12,999</span>
		<span class="price-old">₹15,499</span>
		<button id="button-cart">ADD TO CART</button>
	</div>
</body>
</html>
`

// memStore is an in-memory tracker.Store for end-to-end runs
type memStore struct {
	links   []tracker.TrackedLink
	offers  map[string]*tracker.Offer
	touched map[int64]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		offers:  make(map[string]*tracker.Offer),
		touched: make(map[int64]time.Time),
	}
}

func (s *memStore) key(componentID int64, vendor string) string {
	return fmt.Sprintf("%d/%s", componentID, vendor)
}

func (s *memStore) ListActiveLinks(ctx context.Context) ([]tracker.TrackedLink, error) {
	active := []tracker.TrackedLink{}
	for _, link := range s.links {
		if link.Active {
			active = append(active, link)
		}
	}
	return active, nil
}

func (s *memStore) FindOffer(ctx context.Context, componentID int64, vendor string) (*tracker.Offer, error) {
	offer, ok := s.offers[s.key(componentID, vendor)]
	if !ok {
		return nil, nil
	}
	copied := *offer
	return &copied, nil
}

func (s *memStore) UpsertOffer(ctx context.Context, offer *tracker.Offer) error {
	copied := *offer
	s.offers[s.key(offer.ComponentID, offer.Vendor)] = &copied
	return nil
}

func (s *memStore) TouchLinkCheckedAt(ctx context.Context, linkID int64, checkedAt time.Time) error {
	s.touched[linkID] = checkedAt
	return nil
}

// TestEndToEndTracking runs the full pipeline against a local test
// server: real fetcher (direct HTTP path), real strategy, real
// processor and scheduler, in-memory store.
func TestEndToEndTracking(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(productPageHTML))
	}))
	defer server.Close()

	// A strategy pinned to the test server's host, using the same
	// selector shape as the real vendors
	registry := scraper.NewRegistry(scraper.New(scraper.StrategyConfig{
		Vendor:         "mdcomputers",
		URLSubstring:   "127.0.0.1",
		PriceSelectors: []string{"span.price-new"},
		StockSelectors: []string{"button#button-cart"},
		OutOfStockMarkers: []string{
			"Out Of Stock",
		},
	}))

	store := newMemStore()
	store.links = []tracker.TrackedLink{
		{ID: 1, ComponentID: 10, Vendor: "mdcomputers", URL: server.URL + "/amd-ryzen-5-5600.html", Active: true},
		{ID: 2, ComponentID: 11, Vendor: "unknown", URL: "https://unsupported.example/p/1", Active: true},
		{ID: 3, ComponentID: 12, Vendor: "mdcomputers", URL: server.URL + "/inactive.html", Active: false},
	}

	fetcher := scraper.NewPageFetcher(5*time.Second, time.Minute, nil)
	processor := tracker.NewProcessor(store, fetcher, registry, nil, 3, 10*time.Millisecond)
	scheduler := tracker.NewScheduler(store, processor, time.Millisecond)

	summary, err := scheduler.RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	offer, err := store.FindOffer(context.Background(), 10, "mdcomputers")
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, int64(12999), offer.Price)
	assert.Equal(t, int64(12999), offer.EffectivePrice)
	assert.True(t, offer.InStock)
	assert.Contains(t, store.touched, int64(1))
	assert.NotContains(t, store.touched, int64(3))
}

// TestPostgresStore exercises the real store against a running
// Postgres with the schema applied. Gated behind TRACKER_INTEGRATION
// so the default test run stays hermetic.
func TestPostgresStore(t *testing.T) {
	if os.Getenv("TRACKER_INTEGRATION") == "" {
		t.Skip("set TRACKER_INTEGRATION=1 and DATABASE_URL to run")
	}

	store, err := postgres.Open(os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	offer := &tracker.Offer{
		ComponentID:    999001,
		Vendor:         "mdcomputers",
		Price:          12999,
		EffectivePrice: 12999,
		InStock:        true,
		Source:         tracker.SourceScrape,
		URL:            "https://mdcomputers.in/integration-test.html",
		UpdatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.UpsertOffer(ctx, offer))

	// Upsert again with a new price: still one row
	offer.Price = 11999
	offer.EffectivePrice = 11999
	require.NoError(t, store.UpsertOffer(ctx, offer))

	found, err := store.FindOffer(ctx, 999001, "mdcomputers")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(11999), found.Price)

	missing, err := store.FindOffer(ctx, 999001, "vedant")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
