package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/analytics"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/database"
	"github.com/stemsi/exstem-quiz/internal/handler"
	"github.com/stemsi/exstem-quiz/internal/logger"
	"github.com/stemsi/exstem-quiz/internal/questionsource"
	"github.com/stemsi/exstem-quiz/internal/router"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/timer"
	"github.com/stemsi/exstem-quiz/internal/validator"
	"github.com/stemsi/exstem-quiz/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, nil)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting quiz server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Bank ────────────────────────────────────────────
	source, err := questionsource.Load(cfg.QuestionsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.QuestionsFile).Msg("Failed to load questions")
	}
	log.Info().Int("questions", len(source.Questions())).Msg("Question bank loaded")

	// ─── Connect to Redis (optional) ───────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
	}

	// ─── Initialize Analytics ──────────────────────────────────────────
	var reporter analytics.Reporter = analytics.NewLogReporter(log)
	if rdb != nil {
		reporter = analytics.NewRedisReporter(rdb)
	}
	tracker := analytics.NewTracker(reporter, cfg.AnalyticsEnabled, log)

	// ─── Initialize Services ──────────────────────────────────────────
	quizService := service.NewQuizSessionService(source, timer.NewIntervalScheduler(log), nil, log)
	quizService.SetTickInterval(cfg.TickInterval)
	quizService.ApplyConfig(cfg.QuizDefaults())

	goals := analytics.NewSessionGoals(tracker)
	quizService.Subscribe(goals.Observe)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Setting:   handler.NewSettingHandler(quizService),
		Quiz:      handler.NewQuizHandler(quizService, log),
		Analytics: handler.NewAnalyticsHandler(tracker),
		WS:        handler.NewWSHandler(quizService, log, cfg.AllowedOrigins),
		Monitor:   handler.NewMonitorHandler(quizService, log),
		System:    handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	if rdb != nil {
		analyticsWorker := worker.NewAnalyticsWorker(rdb, log)
		go func() {
			defer close(workerDone)
			analyticsWorker.Start(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the quiz timer.
	quizService.Close()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Analytics worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
