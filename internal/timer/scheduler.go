// Package timer provides the recurring tick source behind the quiz timer.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CancelFunc stops a scheduled callback. It is idempotent and never blocks.
type CancelFunc func()

// Scheduler runs a callback at a fixed interval until cancelled.
type Scheduler interface {
	Every(interval time.Duration, fn func()) CancelFunc
}

// IntervalScheduler fires callbacks from a goroutine driven by time.Ticker.
type IntervalScheduler struct {
	log zerolog.Logger
}

// NewIntervalScheduler creates a new IntervalScheduler.
func NewIntervalScheduler(log zerolog.Logger) *IntervalScheduler {
	return &IntervalScheduler{
		log: log.With().Str("component", "interval_scheduler").Logger(),
	}
}

// Every starts a ticker goroutine. Each callback runs to completion before the
// next tick is read, so ticks never overlap; a slow callback drops ticks rather
// than queueing them.
func (s *IntervalScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				s.run(fn)
			}
		}
	}()

	return CancelFunc(cancel)
}

func (s *IntervalScheduler) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Tick callback panicked")
		}
	}()
	fn()
}

// ManualScheduler fires callbacks only when Advance is called. It holds at
// most one callback, mirroring how the quiz uses a single timer.
type ManualScheduler struct {
	mu       sync.Mutex
	fn       func()
	gen      int
	interval time.Duration
}

// NewManualScheduler creates a new ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every registers fn, replacing any previous callback.
func (m *ManualScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.fn = fn
	m.interval = interval
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen == gen {
			m.fn = nil
		}
	}
}

// Advance fires the active callback n times. It stops early when the callback
// cancels itself or gets replaced. Returns the number of ticks delivered.
func (m *ManualScheduler) Advance(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fn := m.fn
		m.mu.Unlock()
		if fn == nil {
			break
		}
		fn()
		fired++
	}
	return fired
}

// Active reports whether a callback is registered.
func (m *ManualScheduler) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn != nil
}

// Interval returns the interval of the last registered callback.
func (m *ManualScheduler) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}
