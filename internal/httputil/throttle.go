// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum spacing between consecutive outbound
// requests, measured from the end of one request to the start of the
// next. One Throttle is shared by every backend in a run, so the spacing
// holds process-wide regardless of which item issued the request.
//
// The throttle clock is the only state the fetch layer mutates. Wait
// reserves its slot under the lock before sleeping, so concurrent
// callers are granted start times at least the interval apart.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewThrottle returns a throttle with the given minimum interval. A zero
// or negative interval disables waiting.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until at least the configured interval has passed since
// the last call to Done. It returns early with ctx.Err() if the context
// is cancelled while waiting.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	readyAt := now
	if !t.last.IsZero() && t.interval > 0 {
		if at := t.last.Add(t.interval); at.After(now) {
			readyAt = at
		}
	}
	// Reserve the slot before sleeping; a concurrent Wait measures from
	// this grant, not from the request before it.
	t.last = readyAt
	t.mu.Unlock()

	sleep := time.Until(readyAt)
	if sleep <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(sleep):
		return nil
	}
}

// Done records the end of a request. The next Wait measures its spacing
// from this instant.
func (t *Throttle) Done() {
	t.mu.Lock()
	t.last = time.Now()
	t.mu.Unlock()
}
