// Package source orders the data tiers and walks them until one answers:
// cache, then the peer process, then the local store, then the documented
// empty fallback. Total unavailability is a normal operating mode here,
// not an error.
package source

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/workpulse/dashd/internal/aggregate"
	"github.com/workpulse/dashd/internal/cache"
	"github.com/workpulse/dashd/internal/domain"
	"github.com/workpulse/dashd/internal/metrics"
	"github.com/workpulse/dashd/internal/normalize"
	"github.com/workpulse/dashd/internal/peer"
	"github.com/workpulse/dashd/internal/timeout"
)

const dateLayout = "2006-01-02"

// PeerSource is the remote peer tier. Nil-able: the daemon runs without a
// configured peer.
type PeerSource interface {
	Fetch(ctx context.Context, date string) (*peer.Payload, error)
}

// Config carries the per-tier budgets.
type Config struct {
	PeerBudget    time.Duration // whole peer payload in one call
	RangeBudget   time.Duration // multi-day history scans cost more
	ActivityLimit int           // cap on snapshot activity rows, 0 = unlimited
}

// Chain resolves queries through the tiers in fixed priority order. The
// first successful tier wins and its result is written back to the cache
// before being returned.
type Chain struct {
	peer       PeerSource
	agg        *aggregate.Aggregator
	norm       *normalize.Normalizer
	snapshots  *cache.Cache[string, domain.Snapshot]
	history    *cache.Cache[string, []domain.ActivityRecord]
	cfg        Config
	collectors *metrics.Metrics
	logger     zerolog.Logger
}

// New creates a chain. peerSource may be nil; collectors may be nil.
func New(
	peerSource PeerSource,
	agg *aggregate.Aggregator,
	snapshots *cache.Cache[string, domain.Snapshot],
	history *cache.Cache[string, []domain.ActivityRecord],
	cfg Config,
	collectors *metrics.Metrics,
	logger zerolog.Logger,
) *Chain {
	return &Chain{
		peer:       peerSource,
		agg:        agg,
		norm:       normalize.New(),
		snapshots:  snapshots,
		history:    history,
		cfg:        cfg,
		collectors: collectors,
		logger:     logger.With().Str("component", "source").Logger(),
	}
}

// Snapshot resolves the aggregated activity snapshot for one day.
// It never returns an error: exhaustion of every tier yields the empty
// fallback payload, distinguishable only by its provenance tag.
func (c *Chain) Snapshot(ctx context.Context, date string, dayStart, dayEnd time.Time) domain.Snapshot {
	key := "activity:" + date

	// Tier 1: cache. Fresh entries short-circuit with no store or
	// network cost; stale entries are treated as misses, never served.
	if snap, freshness := c.snapshots.Get(key); freshness == cache.Fresh {
		c.recordCache("snapshot", "hit")
		snap.Metadata.Source = domain.ProvenanceCache
		c.recordSource(domain.ProvenanceCache)
		return snap
	} else {
		c.recordCache("snapshot", freshness.String())
	}

	// Tier 2: peer process. One guarded call for the whole payload.
	if c.peer != nil {
		payload, err := timeout.Do(ctx, c.cfg.PeerBudget, "peer fetch", func(ctx context.Context) (*peer.Payload, error) {
			return c.peer.Fetch(ctx, date)
		})
		if err == nil && payload != nil {
			snap := c.fromPeer(payload)
			c.snapshots.Put(key, snap)
			c.recordSource(domain.ProvenancePeer)
			return snap
		}
		c.logger.Debug().Err(err).Str("date", date).Msg("peer tier missed")
	}

	// Tier 3: local store, availability-probed up front, then resolved
	// sub-query by sub-query so one failure degrades one field.
	if c.agg != nil && c.agg.Available(ctx) {
		result := c.agg.Collect(ctx, date, dayStart, dayEnd, c.cfg.ActivityLimit)
		snap := domain.Snapshot{
			Activities: result.Activities,
			Projects:   result.Projects,
			Stats:      result.Stats,
			Metadata: domain.Metadata{
				Source:      domain.ProvenanceLocalStore,
				HasFailures: result.HasFailures(),
				Failures:    result.Failures,
			},
		}
		for _, f := range result.Failures {
			c.recordFailure(f.Operation)
		}
		c.snapshots.Put(key, snap)
		c.recordSource(domain.ProvenanceLocalStore)
		return snap
	}

	// Tier 4: every source failed or is absent. Well-formed zeros, not
	// an error; fallbacks are not cached so recovery is immediate.
	c.logger.Info().Str("date", date).Msg("all sources exhausted, serving fallback")
	c.recordSource(domain.ProvenanceFallback)
	return domain.EmptySnapshot()
}

// History resolves activities across a date range for the metrics paths.
// The peer tier is skipped: its endpoint serves single-day snapshots
// only, so ranges come from cache or the local store.
func (c *Chain) History(ctx context.Context, start, end time.Time) ([]domain.ActivityRecord, domain.Metadata) {
	key := "history:" + start.Format(dateLayout) + ":" + end.Format(dateLayout)

	if records, freshness := c.history.Get(key); freshness == cache.Fresh {
		c.recordCache("history", "hit")
		c.recordSource(domain.ProvenanceCache)
		return records, domain.Metadata{Source: domain.ProvenanceCache, Failures: []domain.Failure{}}
	} else {
		c.recordCache("history", freshness.String())
	}

	if c.agg != nil && c.agg.Available(ctx) {
		records, err := timeout.Do(ctx, c.cfg.RangeBudget, "history query", func(ctx context.Context) ([]domain.ActivityRecord, error) {
			return c.agg.Activities(ctx, start, end)
		})
		if err == nil {
			if records == nil {
				records = []domain.ActivityRecord{}
			}
			c.history.Put(key, records)
			c.recordSource(domain.ProvenanceLocalStore)
			return records, domain.Metadata{Source: domain.ProvenanceLocalStore, Failures: []domain.Failure{}}
		}

		c.recordFailure("history")
		c.recordSource(domain.ProvenanceFallback)
		return []domain.ActivityRecord{}, domain.Metadata{
			Source:      domain.ProvenanceFallback,
			HasFailures: true,
			Failures:    []domain.Failure{{Operation: "history", Error: err.Error()}},
		}
	}

	c.recordSource(domain.ProvenanceFallback)
	return []domain.ActivityRecord{}, domain.Metadata{Source: domain.ProvenanceFallback, Failures: []domain.Failure{}}
}

// fromPeer normalizes a raw peer payload into a snapshot.
func (c *Chain) fromPeer(payload *peer.Payload) domain.Snapshot {
	projects := payload.Projects
	if projects == nil {
		projects = []domain.ProjectRecord{}
	}
	return domain.Snapshot{
		Activities: c.norm.Batch(payload.Activities),
		Projects:   projects,
		Stats:      payload.Stats,
		Metadata: domain.Metadata{
			Source:   domain.ProvenancePeer,
			Failures: []domain.Failure{},
		},
	}
}

func (c *Chain) recordSource(p domain.Provenance) {
	if c.collectors != nil {
		c.collectors.RecordSource(string(p))
	}
}

func (c *Chain) recordCache(name, event string) {
	if c.collectors != nil {
		c.collectors.RecordCacheEvent(name, event)
	}
}

func (c *Chain) recordFailure(operation string) {
	if c.collectors != nil {
		c.collectors.RecordSubQueryFailure(operation)
	}
}
