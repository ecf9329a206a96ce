package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/service"
	ws "github.com/stemsi/exstem-quiz/internal/websocket"
)

const wsReplyBuffer = 8

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams session snapshots and accepts in-session actions.
type WSHandler struct {
	quizService *service.QuizSessionService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quizService *service.QuizSessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quizService: quizService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// QuizWebSocketStream godoc
// WS /ws/v1/quiz/stream
// Pushes a snapshot on connect and after every change, timer ticks included.
func (h *WSHandler) QuizWebSocketStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("conn_id", uuid.New().String()).Logger()
	wsLog.Info().Msg("Client connected")

	// The listener only flags the state dirty; the writer reads a fresh
	// snapshot, so bursts of ticks collapse into one message.
	dirty := make(chan struct{}, 1)
	markDirty := func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}
	unsubscribe := h.quizService.Subscribe(func(model.SessionSnapshot) { markDirty() })
	defer unsubscribe()
	markDirty()

	replies := make(chan interface{}, wsReplyBuffer)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, wsLog, dirty, replies, done)
	}()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		reply := h.handleAction(wsLog, &msg)
		if reply == nil {
			continue
		}
		select {
		case replies <- reply:
		case <-writerDone:
		}
	}

	close(done)
	<-writerDone
}

// writeLoop owns every write on conn.
func (h *WSHandler) writeLoop(conn *websocket.Conn, wsLog zerolog.Logger, dirty <-chan struct{}, replies <-chan interface{}, done <-chan struct{}) {
	for {
		var err error
		select {
		case <-done:
			return
		case <-dirty:
			err = ws.WriteTyped(conn, ws.SnapshotResponse{
				Event: ws.EventSnapshot,
				Data:  h.quizService.Snapshot(),
			})
		case r := <-replies:
			err = ws.WriteTyped(conn, r)
		}
		if err != nil {
			wsLog.Debug().Err(err).Msg("Write failed, closing connection")
			// Unblocks the reader.
			conn.Close()
			return
		}
	}
}

// handleAction applies one client action and returns the direct reply, if any.
// Applied actions need no reply; the resulting snapshot is pushed anyway.
func (h *WSHandler) handleAction(wsLog zerolog.Logger, msg *ws.RequestPayload) interface{} {
	if msg.Action == ws.ActionPing {
		return ws.PongResponse{Event: ws.EventPong}
	}

	var op func() bool
	switch msg.Action {
	case ws.ActionAnswer:
		if msg.AnswerID == nil {
			return ws.ErrorResponse{Event: ws.EventError, Error: "answer_id is required"}
		}
		answerID := *msg.AnswerID
		op = func() bool { return h.quizService.AnswerCurrentQuestion(answerID) }
	case ws.ActionNext:
		op = h.quizService.GoToNextQuestion
	case ws.ActionHint:
		op = h.quizService.RegisterHintUse
	case ws.ActionPause:
		op = h.quizService.TogglePause
	case ws.ActionFinish:
		op = h.quizService.FinishTest
	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		return ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
	}

	status := h.quizService.Status()
	if status != model.SessionStatusRunning || !op() {
		return ws.IgnoredResponse{
			Event:  ws.EventIgnored,
			Action: msg.Action,
			Status: h.quizService.Status(),
		}
	}
	return nil
}
