package discovery

import (
	"context"
	"time"

	"djradar/logger"
	"djradar/model"
)

// Discoverer is the pipeline as the refresh engine sees it.
type Discoverer interface {
	Discover(ctx context.Context, djName string) ([]model.DiscoveredSet, error)
}

// Sink receives discovered sets. Implementations must dedup by id and
// report whether the set was actually added.
type Sink interface {
	AddToDiscoveryLibrary(set model.DiscoveredSet) bool
	AddToNewSets(set model.DiscoveredSet) bool
}

// RefreshProgress reports one DJ's refresh outcome, for UI streaming.
type RefreshProgress struct {
	DJName     string `json:"djName"`
	Discovered int    `json:"discovered"`
	NewSets    int    `json:"newSets"`
	Failed     bool   `json:"failed"`
}

// RefreshEngine walks the tracked DJs and merges each one's discovered
// sets into the sink's discovery library and new-sets list.
type RefreshEngine struct {
	pipeline     Discoverer
	sink         Sink
	perDJTimeout time.Duration
	windowDays   int

	// now is a hook for tests.
	now func() time.Time
}

// NewRefreshEngine creates a refresh engine. windowDays is the rolling
// backfill window for the "new" predicate.
func NewRefreshEngine(pipeline Discoverer, sink Sink, perDJTimeout time.Duration, windowDays int) *RefreshEngine {
	if perDJTimeout <= 0 {
		perDJTimeout = 8 * time.Second
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &RefreshEngine{
		pipeline:     pipeline,
		sink:         sink,
		perDJTimeout: perDJTimeout,
		windowDays:   windowDays,
		now:          time.Now,
	}
}

// Refresh processes DJs sequentially. Each DJ gets its own timeout so a
// slow upstream cannot stall the rest; a failure for one DJ is logged
// and the loop continues. Re-running with the same upstream results is
// idempotent because the sink dedups by id.
//
// progress may be nil; when set it is called once per DJ.
func (e *RefreshEngine) Refresh(ctx context.Context, djs []model.TrackedDJ, progress func(RefreshProgress)) {
	if len(djs) == 0 {
		return
	}

	cutoff := e.now().AddDate(0, 0, -e.windowDays)

	for _, dj := range djs {
		if ctx.Err() != nil {
			logger.Warn("refresh cancelled", logger.String("dj", dj.Name))
			return
		}

		djCtx, cancel := context.WithTimeout(ctx, e.perDJTimeout)
		sets, err := e.pipeline.Discover(djCtx, dj.Name)
		cancel()
		if err != nil {
			logger.Warn("failed to fetch sets for DJ",
				logger.String("dj", dj.Name), logger.ErrorField(err))
			if progress != nil {
				progress(RefreshProgress{DJName: dj.Name, Failed: true})
			}
			continue
		}

		report := RefreshProgress{DJName: dj.Name}
		for _, set := range sets {
			set.DJName = model.CanonicalName(dj.Name)

			if e.sink.AddToDiscoveryLibrary(set) {
				report.Discovered++
			}

			// An item is new if it falls inside the rolling backfill
			// window or postdates the subscription. Both branches count:
			// a set published 40 days ago but discovered right after
			// subscribing is still old, while one from 10 days ago is
			// surfaced even for a year-old subscription.
			isNew := !set.PublishDate.Before(cutoff) ||
				!set.PublishDate.Before(dj.SubscribeDate)
			if isNew && e.sink.AddToNewSets(set) {
				report.NewSets++
			}
		}

		if progress != nil {
			progress(report)
		}
	}
}
