// Package health tracks the reachability of dashd's data sources.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status is the health of one dependency.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// checkBudget bounds each individual check.
const checkBudget = 5 * time.Second

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) Status

// Checker runs named dependency checks. A degraded dependency does not
// fail readiness: dashd serves from its fallback tiers, so only a
// dependency reporting down blocks it.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
	last   map[string]Status
	logger zerolog.Logger
}

func NewChecker(logger zerolog.Logger) *Checker {
	return &Checker{
		checks: make(map[string]CheckFunc),
		last:   make(map[string]Status),
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// Register adds a named check.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = fn
}

// RunAll executes every registered check concurrently and returns the
// results. The latest results are also retained for Last.
func (c *Checker) RunAll(ctx context.Context) map[string]Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	results := make(map[string]Status, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, fn := range checks {
		wg.Add(1)
		go func(n string, f CheckFunc) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, checkBudget)
			defer cancel()
			s := f(checkCtx)
			if s != StatusOK {
				c.logger.Warn().Str("check", n).Str("status", string(s)).Msg("dependency not healthy")
			}
			mu.Lock()
			results[n] = s
			mu.Unlock()
		}(name, fn)
	}

	wg.Wait()

	c.mu.Lock()
	c.last = results
	c.mu.Unlock()

	return results
}

// Last returns the most recent results without re-running checks.
func (c *Checker) Last() map[string]Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Status, len(c.last))
	for name, s := range c.last {
		out[name] = s
	}
	return out
}

// IsReady reports whether no dependency is down. Degraded still counts
// as ready.
func (c *Checker) IsReady(ctx context.Context) bool {
	for _, s := range c.RunAll(ctx) {
		if s == StatusDown {
			return false
		}
	}
	return true
}

// Pinger is the slice of the peer client the peer check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PeerCheck reports degraded, not down, when the peer is unreachable:
// the chain keeps answering from the local store.
func PeerCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) Status {
		if err := p.Ping(ctx); err != nil {
			return StatusDegraded
		}
		return StatusOK
	}
}

// Prober is the slice of the store the store check needs.
type Prober interface {
	Available(ctx context.Context) bool
}

// StoreCheck reports down when the availability probe fails. With both
// the peer and the store gone dashd can only serve empty fallbacks.
func StoreCheck(p Prober) CheckFunc {
	return func(ctx context.Context) Status {
		if !p.Available(ctx) {
			return StatusDown
		}
		return StatusOK
	}
}
