package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestWindowDelaysCallsOverBudget(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	limiter := New(20, time.Minute, nil, WithClock(clock.Now), WithSleep(clock.Sleep))

	for i := 1; i <= 25; i++ {
		waited, err := limiter.Wait(context.Background())
		require.NoError(t, err, "call %d", i)

		admitted := clock.Now()
		if i <= 20 {
			assert.Equal(t, start, admitted, "call %d", i)
			assert.Zero(t, waited, "call %d", i)
			continue
		}
		assert.False(t, admitted.Before(start.Add(time.Minute)), "call %d admitted at %s", i, admitted)
	}

	assert.Equal(t, 5, limiter.InWindow())
}

func TestWindowConcurrentCallers(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	limiter := New(20, time.Minute, nil, WithClock(clock.Now), WithSleep(clock.Sleep))

	var (
		mu      sync.Mutex
		delayed int
	)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			waited, err := limiter.Wait(ctx)
			if waited > 0 {
				mu.Lock()
				delayed++
				mu.Unlock()
			}
			return err
		})
	}

	require.NoError(t, g.Wait())
	assert.False(t, clock.Now().Before(start.Add(time.Minute)))
	assert.GreaterOrEqual(t, delayed, 1)
	assert.LessOrEqual(t, delayed, 5)
	assert.LessOrEqual(t, limiter.InWindow(), 20)
}

func TestWindowCancelledWait(t *testing.T) {
	clock := newFakeClock()
	limiter := New(1, time.Minute, nil, WithClock(clock.Now), WithSleep(clock.Sleep))

	_, err := limiter.Wait(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = limiter.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, limiter.InWindow())
}

func TestNewDefaults(t *testing.T) {
	limiter := New(0, 0, nil)

	assert.Equal(t, DefaultLimit, limiter.limit)
	assert.Equal(t, DefaultWindow, limiter.window)
}
