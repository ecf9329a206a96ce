// Package analytics reports navigation hits and goals to a telemetry sink.
// Reporting is best effort: nothing here may disturb the quiz session.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
)

// Hit is a page view reported on navigation.
type Hit struct {
	Path  string    `json:"path"`
	Title string    `json:"title"`
	At    time.Time `json:"at"`
}

// Goal is a named milestone such as "quiz_finished".
type Goal struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params,omitempty"`
	At     time.Time              `json:"at"`
}

// Reporter delivers hits and goals to a sink.
type Reporter interface {
	Hit(ctx context.Context, hit Hit) error
	Goal(ctx context.Context, goal Goal) error
}

// RedisReporter queues hits and goals for the analytics worker.
type RedisReporter struct {
	rdb *redis.Client
}

// NewRedisReporter creates a new RedisReporter.
func NewRedisReporter(rdb *redis.Client) *RedisReporter {
	return &RedisReporter{rdb: rdb}
}

func (r *RedisReporter) Hit(ctx context.Context, hit Hit) error {
	return r.push(ctx, config.WorkerKey.AnalyticsHitsQueue, hit)
}

func (r *RedisReporter) Goal(ctx context.Context, goal Goal) error {
	return r.push(ctx, config.WorkerKey.AnalyticsGoalsQueue, goal)
}

func (r *RedisReporter) push(ctx context.Context, queue string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", queue, err)
	}
	if err := r.rdb.RPush(ctx, queue, raw).Err(); err != nil {
		return fmt.Errorf("push to %s: %w", queue, err)
	}
	return nil
}

// LogReporter writes hits and goals to the log. Used when no redis is configured.
type LogReporter struct {
	log zerolog.Logger
}

// NewLogReporter creates a new LogReporter.
func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log.With().Str("component", "analytics_log").Logger()}
}

func (r *LogReporter) Hit(_ context.Context, hit Hit) error {
	r.log.Info().Str("path", hit.Path).Str("title", hit.Title).Msg("Hit")
	return nil
}

func (r *LogReporter) Goal(_ context.Context, goal Goal) error {
	r.log.Info().Str("goal", goal.Name).Fields(goal.Params).Msg("Goal reached")
	return nil
}
