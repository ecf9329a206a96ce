package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	hits    []Hit
	goals   []Goal
	err     error
	panicky bool
}

func (r *recordingReporter) Hit(_ context.Context, hit Hit) error {
	if r.panicky {
		panic("reporter exploded")
	}
	r.hits = append(r.hits, hit)
	return r.err
}

func (r *recordingReporter) Goal(_ context.Context, goal Goal) error {
	r.goals = append(r.goals, goal)
	return r.err
}

func TestTracker_ForwardsEvents(t *testing.T) {
	rep := &recordingReporter{}
	tr := NewTracker(rep, true, zerolog.Nop())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	tr.TrackNavigation(context.Background(), "/", "Тест")
	tr.ReachGoal(context.Background(), "quiz_finished", map[string]interface{}{"score": 80})

	require.Len(t, rep.hits, 1)
	assert.Equal(t, Hit{Path: "/", Title: "Тест", At: fixed}, rep.hits[0])
	require.Len(t, rep.goals, 1)
	assert.Equal(t, "quiz_finished", rep.goals[0].Name)
	assert.Equal(t, 80, rep.goals[0].Params["score"])
}

func TestTracker_SwallowsErrorsAndPanics(t *testing.T) {
	tr := NewTracker(&recordingReporter{err: errors.New("sink down")}, true, zerolog.Nop())
	assert.NotPanics(t, func() {
		tr.TrackNavigation(context.Background(), "/", "")
		tr.ReachGoal(context.Background(), "quiz_started", nil)
	})

	tr = NewTracker(&recordingReporter{panicky: true}, true, zerolog.Nop())
	assert.NotPanics(t, func() { tr.TrackNavigation(context.Background(), "/", "") })
}

func TestTracker_DisabledDropsEvents(t *testing.T) {
	rep := &recordingReporter{}
	tr := NewTracker(rep, false, zerolog.Nop())

	tr.TrackNavigation(context.Background(), "/", "")
	assert.Empty(t, rep.hits)
	assert.False(t, tr.Enabled())

	var nilTracker *Tracker
	assert.NotPanics(t, func() { nilTracker.TrackNavigation(context.Background(), "/", "") })
	assert.False(t, NewTracker(nil, true, zerolog.Nop()).Enabled())
}

func TestTracker_CancelledRequestStillReports(t *testing.T) {
	rep := &recordingReporter{}
	tr := NewTracker(rep, true, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr.TrackNavigation(ctx, "/results", "")
	assert.Len(t, rep.hits, 1)
}

func TestRedisReporter_UnreachableServerReturnsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	err := NewRedisReporter(rdb).Hit(context.Background(), Hit{Path: "/"})
	assert.Error(t, err)

	tr := NewTracker(NewRedisReporter(rdb), true, zerolog.Nop())
	assert.NotPanics(t, func() { tr.TrackNavigation(context.Background(), "/", "") })
}
