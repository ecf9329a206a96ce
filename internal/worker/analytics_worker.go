package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/analytics"
	"github.com/stemsi/exstem-quiz/internal/config"
)

const (
	AnalyticsBatchSize    = 50
	AnalyticsBatchTimeout = 2 * time.Second
	AnalyticsPollTimeout  = 1 * time.Second
)

// AnalyticsWorker drains the hit and goal queues and folds them into
// per-path and per-goal counters.
type AnalyticsWorker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewAnalyticsWorker creates a new AnalyticsWorker.
func NewAnalyticsWorker(rdb *redis.Client, log zerolog.Logger) *AnalyticsWorker {
	return &AnalyticsWorker{
		rdb: rdb,
		log: log.With().Str("component", "analytics_worker").Logger(),
	}
}

// queuedEvent is one raw queue entry, kept so a failed flush can requeue it.
type queuedEvent struct {
	queue string
	raw   string
}

// counters is the aggregated form of a batch.
type counters struct {
	hits      map[string]int64
	dailyHits map[string]map[string]int64
	goals     map[string]int64
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AnalyticsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnalyticsWorker started")

	batch := make([]queuedEvent, 0, AnalyticsBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AnalyticsBatchSize || time.Since(lastFlush) >= AnalyticsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AnalyticsPollTimeout,
				config.WorkerKey.AnalyticsHitsQueue,
				config.WorkerKey.AnalyticsGoalsQueue,
			).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			batch = append(batch, queuedEvent{queue: item[0], raw: item[1]})
		}
	}
}

// ----------------------------------------------------------------
// Flush
// ----------------------------------------------------------------

func (w *AnalyticsWorker) flushSafe(ctx context.Context, batch []queuedEvent) {
	if len(batch) == 0 {
		return
	}

	c := aggregate(batch, w.log)
	if err := w.writeCounters(ctx, c); err != nil {
		w.log.Error().Err(err).Int("events", len(batch)).Msg("Counter flush failed, requeueing")
		w.requeue(ctx, batch)
		return
	}

	w.log.Debug().Int("events", len(batch)).Msg("Analytics batch flushed")
}

func (w *AnalyticsWorker) writeCounters(ctx context.Context, c counters) error {
	pipe := w.rdb.Pipeline()

	for path, n := range c.hits {
		pipe.HIncrBy(ctx, config.CacheKey.AnalyticsHitsKey(), path, n)
	}
	for day, paths := range c.dailyHits {
		for path, n := range paths {
			pipe.HIncrBy(ctx, day, path, n)
		}
	}
	for name, n := range c.goals {
		pipe.HIncrBy(ctx, config.CacheKey.AnalyticsGoalsKey(), name, n)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("exec counters pipeline: %w", err)
	}
	return nil
}

func (w *AnalyticsWorker) requeue(ctx context.Context, batch []queuedEvent) {
	pipe := w.rdb.Pipeline()
	for _, ev := range batch {
		pipe.RPush(ctx, ev.queue, ev.raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("events", len(batch)).Msg("Requeue failed, events dropped")
	}
}

// aggregate folds a batch into counters. Malformed entries are logged and skipped.
func aggregate(batch []queuedEvent, log zerolog.Logger) counters {
	c := counters{
		hits:      make(map[string]int64),
		dailyHits: make(map[string]map[string]int64),
		goals:     make(map[string]int64),
	}

	for _, ev := range batch {
		switch ev.queue {
		case config.WorkerKey.AnalyticsHitsQueue:
			var h analytics.Hit
			if err := json.Unmarshal([]byte(ev.raw), &h); err != nil || h.Path == "" {
				log.Error().Err(err).Str("queue", ev.queue).Msg("Invalid JSON payload")
				continue
			}
			c.hits[h.Path]++
			if !h.At.IsZero() {
				key := config.CacheKey.AnalyticsDailyHitsKey(h.At)
				if c.dailyHits[key] == nil {
					c.dailyHits[key] = make(map[string]int64)
				}
				c.dailyHits[key][h.Path]++
			}

		case config.WorkerKey.AnalyticsGoalsQueue:
			var g analytics.Goal
			if err := json.Unmarshal([]byte(ev.raw), &g); err != nil || g.Name == "" {
				log.Error().Err(err).Str("queue", ev.queue).Msg("Invalid JSON payload")
				continue
			}
			c.goals[g.Name]++

		default:
			log.Warn().Str("queue", ev.queue).Msg("Event from unknown queue")
		}
	}

	return c
}
