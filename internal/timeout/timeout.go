// Package timeout bounds the latency of any single data-source call.
package timeout

import (
	"context"
	"time"

	apperrors "github.com/workpulse/dashd/internal/errors"
)

type result[T any] struct {
	value T
	err   error
}

// Do runs fn and waits at most budget for it to finish. If the budget
// expires first, Do returns a TimeoutError and stops waiting; the
// operation keeps running in its own goroutine and its result is
// discarded. fn receives a context carrying the deadline so cooperative
// callees may stop early, but nothing forces them to.
func Do[T any](ctx context.Context, budget time.Duration, label string, fn func(ctx context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithTimeout(ctx, budget)

	// Buffered so the late-finishing goroutine never leaks blocked.
	ch := make(chan result[T], 1)
	go func() {
		defer cancel()
		v, err := fn(opCtx)
		ch <- result[T]{value: v, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	var zero T
	select {
	case r := <-ch:
		return r.value, r.err
	case <-timer.C:
		return zero, apperrors.NewTimeout(label, budget)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
