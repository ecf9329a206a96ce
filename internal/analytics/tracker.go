package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Tracker is the presentation layer's entry point for telemetry. Failures are
// logged and swallowed so they never reach the caller.
type Tracker struct {
	reporter Reporter
	enabled  bool
	timeout  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewTracker creates a new Tracker. A disabled tracker drops everything.
func NewTracker(reporter Reporter, enabled bool, log zerolog.Logger) *Tracker {
	return &Tracker{
		reporter: reporter,
		enabled:  enabled && reporter != nil,
		timeout:  2 * time.Second,
		now:      time.Now,
		log:      log.With().Str("component", "analytics_tracker").Logger(),
	}
}

// Enabled reports whether events are forwarded to the reporter.
func (t *Tracker) Enabled() bool {
	return t != nil && t.enabled
}

// TrackNavigation reports a navigation to path with the page title.
func (t *Tracker) TrackNavigation(ctx context.Context, path, title string) {
	if !t.Enabled() {
		return
	}
	t.safely("hit", func(ctx context.Context) error {
		return t.reporter.Hit(ctx, Hit{Path: path, Title: title, At: t.now()})
	}, ctx)
}

// ReachGoal reports a named goal with optional parameters.
func (t *Tracker) ReachGoal(ctx context.Context, name string, params map[string]interface{}) {
	if !t.Enabled() {
		return
	}
	t.safely("goal", func(ctx context.Context) error {
		return t.reporter.Goal(ctx, Goal{Name: name, Params: params, At: t.now()})
	}, ctx)
}

func (t *Tracker) safely(kind string, fn func(ctx context.Context) error, parent context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Warn().Str("kind", kind).Interface("panic", r).Msg("Analytics reporter panicked")
		}
	}()

	// Detached from the request so a cancelled client doesn't drop the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), t.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		t.log.Warn().Err(err).Str("kind", kind).Msg("Analytics report failed")
	}
}
