package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/service"
)

const keepAliveInterval = 30 * time.Second

// MonitorHandler streams session snapshots over SSE for read-only clients
// such as a projector view next to the player's screen.
type MonitorHandler struct {
	quizService *service.QuizSessionService
	log         zerolog.Logger
}

func NewMonitorHandler(quizService *service.QuizSessionService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		quizService: quizService,
		log:         log.With().Str("component", "monitor_handler").Logger(),
	}
}

// QuizEventsSSE godoc
// GET /api/v1/quiz/events
func (h *MonitorHandler) QuizEventsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	dirty := make(chan struct{}, 1)
	unsubscribe := h.quizService.Subscribe(func(model.SessionSnapshot) {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	// Pre-allocate a reusable ping payload (never changes)
	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	h.log.Info().Msg("Client attached to quiz events SSE")

	// Send immediately on connect, then on every change
	h.writeSnapshot(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Client detached from quiz events SSE")
			return

		case <-dirty:
			h.writeSnapshot(c)

		case <-keepAliveTicker.C:
			writeEvent(c, pingPayload)
		}
	}
}

func (h *MonitorHandler) writeSnapshot(c *gin.Context) {
	data, err := json.Marshal(h.quizService.Snapshot())
	if err != nil {
		h.log.Error().Err(err).Msg("Marshal snapshot failed")
		return
	}
	writeEvent(c, data)
}

func writeEvent(c *gin.Context, data []byte) {
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
