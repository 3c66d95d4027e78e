// Package ratelimit bounds outbound calls to a fixed number per rolling window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/utils"
)

const (
	DefaultLimit  = 20
	DefaultWindow = time.Minute
)

// Window admits at most limit calls in any rolling window. Callers over the
// budget wait until the oldest recorded call ages out; no call is dropped.
type Window struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time

	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
	logger *zap.Logger
}

type Option func(*Window)

func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		w.now = now
	}
}

func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(w *Window) {
		w.sleep = sleep
	}
}

// New creates a limiter. Non-positive limit or window fall back to 20 calls per minute.
func New(limit int, window time.Duration, logger *zap.Logger, opts ...Option) *Window {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Window{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  utils.WaitFor,
		logger: logger,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Wait blocks until the call fits the budget and records it. It returns the total
// time spent waiting. A cancelled context aborts the wait without recording a call.
func (w *Window) Wait(ctx context.Context) (time.Duration, error) {
	var waited time.Duration

	for {
		if err := ctx.Err(); err != nil {
			return waited, err
		}

		w.mu.Lock()
		now := w.now()
		w.prune(now)
		if len(w.calls) < w.limit {
			w.calls = append(w.calls, now)
			w.mu.Unlock()
			return waited, nil
		}
		delay := w.calls[0].Add(w.window).Sub(now)
		w.mu.Unlock()

		w.logger.Info("rate limit reached, waiting",
			zap.Duration("delay", delay),
			zap.Int("limit", w.limit),
			zap.Duration("window", w.window),
		)

		if err := w.sleep(ctx, delay); err != nil {
			return waited, err
		}
		waited += delay
	}
}

// InWindow returns the number of calls recorded in the current window.
func (w *Window) InWindow() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(w.now())
	return len(w.calls)
}

func (w *Window) prune(now time.Time) {
	keep := 0
	for keep < len(w.calls) && now.Sub(w.calls[keep]) >= w.window {
		keep++
	}
	w.calls = w.calls[keep:]
}
