package tracker

import (
	"context"
	"encoding/json"
	"time"

	"partspulse/pricetracker/helpers"
	"partspulse/pricetracker/internal/scraper"
	"partspulse/pricetracker/logger"
	errs "partspulse/pricetracker/pkg/errors"
	"partspulse/pricetracker/services/publisher"
)

// Processor orchestrates one link per cycle: fetch, strategy dispatch,
// parse, validate, reconcile. It is the unit of failure isolation; no
// outcome it produces escalates past its caller.
type Processor struct {
	store      Store
	fetcher    Fetcher
	strategies *scraper.Registry
	publisher  publisher.Publisher
	log        *logger.Logger

	attempts int
	backoff  time.Duration

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewProcessor creates a link processor. pub may be nil, which
// disables offer-change publishing.
func NewProcessor(store Store, fetcher Fetcher, strategies *scraper.Registry, pub publisher.Publisher, attempts int, backoff time.Duration) *Processor {
	return &Processor{
		store:      store,
		fetcher:    fetcher,
		strategies: strategies,
		publisher:  pub,
		log:        logger.ForProcessor(),
		attempts:   attempts,
		backoff:    backoff,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Process runs one tracking cycle for a link. The extraction is
// returned on success and nil on every skip or failure; failures are
// logged here and never raised.
func (p *Processor) Process(ctx context.Context, link TrackedLink) (*RawExtraction, Outcome) {
	strategy := p.strategies.ForURL(link.URL)
	if strategy == nil {
		// Expected for vendors nobody wrote a strategy for; not worth
		// more than a debug line.
		p.log.Debug().Str("url", link.URL).Msg("No strategy for URL, skipping")
		return nil, OutcomeSkipped
	}

	log := p.log.WithFields(logger.Fields{
		"link_id": link.ID,
		"vendor":  strategy.Vendor(),
		"product": helpers.ProductSlug(link.URL),
	})

	doc, err := p.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Fetch failed, will retry next cycle")
		return nil, OutcomeFetchFailed
	}

	extraction := strategy.Extract(doc)
	price := ParsePrice(extraction.PriceText)
	if price == 0 {
		// Sentinel: the page gave no usable price. The stored offer is
		// left alone so a selector regression cannot zero real prices.
		log.Warn().Str("price_text", extraction.PriceText).Msg("No usable price extracted")
		return nil, OutcomeNoPrice
	}

	raw := &RawExtraction{
		Vendor:  strategy.Vendor(),
		Price:   price,
		InStock: extraction.InStock,
	}

	if err := p.reconcile(ctx, link, raw); err != nil {
		log.Error().Err(err).Int("attempts", p.attempts).Msg("Reconciliation exhausted retries")
		return nil, OutcomeReconcileFailed
	}

	if err := p.store.TouchLinkCheckedAt(ctx, link.ID, p.now()); err != nil {
		// The offer is already persisted; a stale check timestamp only
		// affects operator visibility.
		log.Warn().Err(err).Msg("Failed to advance link check timestamp")
	}

	p.publishOffer(link, raw)

	log.Info().Int64("price", raw.Price).Bool("in_stock", raw.InStock).Msg("Offer reconciled")
	return raw, OutcomeReconciled
}

// reconcile upserts the extraction into the offer store, retrying
// store failures with a fixed backoff. Only this step retries; the
// fetch is assumed transient-per-link and waits for the next cycle.
func (p *Processor) reconcile(ctx context.Context, link TrackedLink, raw *RawExtraction) error {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if lastErr = p.reconcileOnce(ctx, link, raw); lastErr == nil {
			return nil
		}
		p.log.Warn().Err(lastErr).
			Int64("link_id", link.ID).
			Int("attempt", attempt).
			Msg("Reconcile attempt failed")
		if attempt < p.attempts {
			p.sleep(p.backoff)
		}
	}
	return errs.NewReconcile(raw.Vendor, "offer upsert failed", lastErr)
}

func (p *Processor) reconcileOnce(ctx context.Context, link TrackedLink, raw *RawExtraction) error {
	existing, err := p.store.FindOffer(ctx, link.ComponentID, raw.Vendor)
	if err != nil {
		return err
	}

	offer := &Offer{
		ComponentID: link.ComponentID,
		Vendor:      raw.Vendor,
		Price:       raw.Price,
		// Shipping is unknown at extraction time; the effective price
		// tracks the raw price until something else adjusts it.
		EffectivePrice: raw.Price,
		InStock:        raw.InStock,
		Source:         SourceScrape,
		URL:            link.URL,
		UpdatedAt:      p.now(),
	}
	if existing != nil && existing.Price != raw.Price {
		p.log.Debug().
			Int64("component_id", link.ComponentID).
			Str("vendor", raw.Vendor).
			Int64("old_price", existing.Price).
			Int64("new_price", raw.Price).
			Msg("Price changed")
	}

	return p.store.UpsertOffer(ctx, offer)
}

func (p *Processor) publishOffer(link TrackedLink, raw *RawExtraction) {
	if p.publisher == nil {
		return
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		p.log.Error().Err(err).Int64("link_id", link.ID).Msg("Failed to marshal offer event")
		return
	}
	if err := p.publisher.Publish(raw.Vendor, payload); err != nil {
		p.log.Warn().Err(err).Int64("link_id", link.ID).Msg("Failed to publish offer event")
	}
}
