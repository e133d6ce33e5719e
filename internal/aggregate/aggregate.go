// Package aggregate resolves independent sub-queries concurrently and
// merges whatever succeeded. A slow or broken sub-source degrades a
// single field of the response, never the whole response.
package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/workpulse/dashd/internal/domain"
	"github.com/workpulse/dashd/internal/timeout"
)

// LocalStore is the read surface the aggregator fans out against. Each
// operation may fail independently.
type LocalStore interface {
	Available(ctx context.Context) bool
	GetActivities(ctx context.Context, start, end time.Time, limit int) ([]domain.ActivityRecord, error)
	GetProjects(ctx context.Context) ([]domain.ProjectRecord, error)
	GetDailyStats(ctx context.Context, date string) (domain.DailyStats, error)
}

// SettleResult is the outcome of one sub-query: a value or a reason,
// never both.
type SettleResult[T any] struct {
	Value T
	Err   error
}

// Result is the merged outcome. It always exists: failed sub-queries
// contribute their zero-value defaults plus an entry in Failures.
type Result struct {
	Activities []domain.ActivityRecord
	Projects   []domain.ProjectRecord
	Stats      domain.DailyStats
	Failures   []domain.Failure
}

// HasFailures reports whether any sub-query was substituted.
func (r *Result) HasFailures() bool {
	return len(r.Failures) > 0
}

// Aggregator fans sub-queries out against the local store, each under its
// own timeout budget.
type Aggregator struct {
	store       LocalStore
	queryBudget time.Duration
	logger      zerolog.Logger
}

// New creates an aggregator. queryBudget bounds each individual
// sub-query, not the whole fan-out.
func New(store LocalStore, queryBudget time.Duration, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		store:       store,
		queryBudget: queryBudget,
		logger:      logger.With().Str("component", "aggregate").Logger(),
	}
}

// Available exposes the store's up-front availability probe.
func (a *Aggregator) Available(ctx context.Context) bool {
	return a.store.Available(ctx)
}

// Activities reads an activity range directly, without the snapshot
// fan-out. Range scans get their own (larger) budget from the caller.
func (a *Aggregator) Activities(ctx context.Context, start, end time.Time) ([]domain.ActivityRecord, error) {
	return a.store.GetActivities(ctx, start, end, 0)
}

// Collect issues the activities, projects and stats sub-queries
// concurrently and waits until every one has settled — a failure never
// short-circuits the others. The calling goroutine blocks here; the
// sub-queries themselves only block up to their budget each.
func (a *Aggregator) Collect(ctx context.Context, date string, start, end time.Time, limit int) Result {
	var (
		wg         sync.WaitGroup
		activities SettleResult[[]domain.ActivityRecord]
		projects   SettleResult[[]domain.ProjectRecord]
		stats      SettleResult[domain.DailyStats]
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		v, err := timeout.Do(ctx, a.queryBudget, "activities query", func(ctx context.Context) ([]domain.ActivityRecord, error) {
			return a.store.GetActivities(ctx, start, end, limit)
		})
		activities = SettleResult[[]domain.ActivityRecord]{Value: v, Err: err}
	}()
	go func() {
		defer wg.Done()
		v, err := timeout.Do(ctx, a.queryBudget, "projects query", func(ctx context.Context) ([]domain.ProjectRecord, error) {
			return a.store.GetProjects(ctx)
		})
		projects = SettleResult[[]domain.ProjectRecord]{Value: v, Err: err}
	}()
	go func() {
		defer wg.Done()
		v, err := timeout.Do(ctx, a.queryBudget, "stats query", func(ctx context.Context) (domain.DailyStats, error) {
			return a.store.GetDailyStats(ctx, date)
		})
		stats = SettleResult[domain.DailyStats]{Value: v, Err: err}
	}()
	wg.Wait()

	result := Result{
		Activities: []domain.ActivityRecord{},
		Projects:   []domain.ProjectRecord{},
		Stats:      domain.DailyStats{},
		Failures:   []domain.Failure{},
	}

	if activities.Err != nil {
		result.Failures = append(result.Failures, domain.Failure{Operation: "activities", Error: activities.Err.Error()})
	} else if activities.Value != nil {
		result.Activities = activities.Value
	}

	if projects.Err != nil {
		result.Failures = append(result.Failures, domain.Failure{Operation: "projects", Error: projects.Err.Error()})
	} else if projects.Value != nil {
		result.Projects = projects.Value
	}

	if stats.Err != nil {
		result.Failures = append(result.Failures, domain.Failure{Operation: "stats", Error: stats.Err.Error()})
	} else {
		result.Stats = stats.Value
	}

	for _, f := range result.Failures {
		a.logger.Warn().
			Str("operation", f.Operation).
			Str("reason", f.Error).
			Msg("sub-query failed, substituting default")
	}

	return result
}
