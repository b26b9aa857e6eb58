// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleEnforcesMinimumSpacing(t *testing.T) {
	interval := 30 * time.Millisecond
	th := NewThrottle(interval)
	ctx := context.Background()

	// First request is never delayed.
	start := time.Now()
	require.NoError(t, th.Wait(ctx))
	assert.Less(t, time.Since(start), interval)
	th.Done()

	// Every following pair of requests must be spaced by >= interval,
	// measured from the end of the previous request.
	for i := 0; i < 3; i++ {
		prevEnd := time.Now()
		require.NoError(t, th.Wait(ctx))
		assert.GreaterOrEqual(t, time.Since(prevEnd), interval-time.Millisecond)
		th.Done()
	}
}

func TestThrottleZeroIntervalDoesNotWait(t *testing.T) {
	th := NewThrottle(0)
	ctx := context.Background()

	th.Done()
	start := time.Now()
	require.NoError(t, th.Wait(ctx))
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestThrottleConcurrentWaitersSpaced(t *testing.T) {
	interval := 50 * time.Millisecond
	th := NewThrottle(interval)
	th.Done()

	var mu sync.Mutex
	var starts []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, th.Wait(context.Background()))
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Each waiter is granted its own slot; grants are spaced by at
	// least the interval even when the waits overlap.
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval-10*time.Millisecond)
	}
}

func TestThrottleWaitCancellable(t *testing.T) {
	th := NewThrottle(time.Hour)
	th.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := th.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
