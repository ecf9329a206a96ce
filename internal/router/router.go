package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/handler"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/response"
)

// Navigation events allowed per client IP per minute.
const hitRateLimit = 120

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Setting   *handler.SettingHandler
	Quiz      *handler.QuizHandler
	Analytics *handler.AnalyticsHandler
	WS        *handler.WSHandler
	Monitor   *handler.MonitorHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background middleware goroutines.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), response.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── 1. Quiz Group ─────────────────────────────────────────────────
	quiz := router.Group("/api/v1/quiz")
	{
		quiz.GET("/options", middleware.CacheControl(3600), handlers.Setting.GetOptions)

		live := quiz.Group("")
		live.Use(middleware.NoStore())
		{
			live.GET("/settings", handlers.Setting.GetSettings)
			live.PUT("/settings", handlers.Setting.UpdateSettings)

			live.POST("/start", handlers.Quiz.StartQuiz)
			live.GET("/state", handlers.Quiz.GetState)
			live.POST("/answer", handlers.Quiz.AnswerQuestion)
			live.POST("/next", handlers.Quiz.NextQuestion)
			live.POST("/hint", handlers.Quiz.UseHint)
			live.POST("/pause", handlers.Quiz.TogglePause)
			live.POST("/finish", handlers.Quiz.FinishQuiz)
			live.POST("/reset", handlers.Quiz.ResetQuiz)
			live.GET("/results", handlers.Quiz.GetResults)
			live.GET("/events", handlers.Monitor.QuizEventsSSE)
		}
	}

	// ─── 2. Analytics Group (Rate Limited) ─────────────────────────────
	hitLimiter := middleware.NewRateLimiter(ctx, hitRateLimit, time.Minute)
	analyticsAPI := router.Group("/api/v1/analytics")
	analyticsAPI.Use(hitLimiter.Middleware())
	{
		analyticsAPI.POST("/hit", handlers.Analytics.TrackHit)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/quiz/stream", handlers.WS.QuizWebSocketStream)
	}

	return router
}
