package tracker

import (
	"context"
	"time"

	"partspulse/pricetracker/logger"
	errs "partspulse/pricetracker/pkg/errors"
)

// Scheduler iterates the active link set through the processor. Links
// run sequentially with a fixed inter-link delay; the single-worker
// model is deliberate politeness toward target sites and must not be
// parallelized without a separate concurrency limit and per-vendor
// rate cap.
type Scheduler struct {
	store     Store
	processor *Processor
	delay     time.Duration
	log       *logger.Logger

	// injectable for tests
	sleep func(time.Duration)
}

// NewScheduler creates a tracker scheduler
func NewScheduler(store Store, processor *Processor, delay time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		processor: processor,
		delay:     delay,
		log:       logger.ForScheduler(),
		sleep:     time.Sleep,
	}
}

// RunBatch processes every active tracked link once, in store order.
// A link's failure never aborts the loop. The only error it returns is
// a batch-load failure: the link set could not be read at all, and the
// next scheduled invocation simply tries again. Cancelling ctx stops
// the batch at the next link boundary; the in-flight link completes.
func (s *Scheduler) RunBatch(ctx context.Context) (BatchSummary, error) {
	links, err := s.store.ListActiveLinks(ctx)
	if err != nil {
		return BatchSummary{}, errs.NewBatchLoad("cannot list tracked links", err)
	}

	s.log.Info().Int("links", len(links)).Msg("Starting batch")

	var summary BatchSummary
	for i, link := range links {
		if !link.Active {
			// The store contract already filters these; the guard keeps
			// an inactive link out even if a row slips through.
			continue
		}
		if summary.Processed > 0 {
			s.sleep(s.delay)
		}
		if ctx.Err() != nil {
			s.log.Warn().Int("remaining", len(links)-i).Msg("Batch cancelled")
			break
		}

		_, outcome := s.processor.Process(ctx, link)
		summary.Processed++
		switch outcome {
		case OutcomeReconciled:
			summary.Succeeded++
		case OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	s.log.Info().
		Int("processed", summary.Processed).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("Batch finished")

	return summary, nil
}

// RunOne processes a single link outside the batch cadence, typically
// right after registration. Every failure resolves to nil; the caller
// treats nil as "result pending", not as an error.
func (s *Scheduler) RunOne(ctx context.Context, link TrackedLink) *RawExtraction {
	raw, _ := s.processor.Process(ctx, link)
	return raw
}

// TriggerOne dispatches RunOne on its own goroutine so a registering
// caller never blocks on extraction. The result is observed only
// through the offer store and the logs; no ordering is promised
// relative to a concurrently running batch.
func (s *Scheduler) TriggerOne(ctx context.Context, link TrackedLink) {
	go func() {
		if raw := s.RunOne(ctx, link); raw != nil {
			s.log.Info().
				Int64("link_id", link.ID).
				Int64("price", raw.Price).
				Msg("Instant run reconciled")
		}
	}()
}
