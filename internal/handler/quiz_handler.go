package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// QuizHandler exposes the session lifecycle and in-session operations.
type QuizHandler struct {
	quizService *service.QuizSessionService
	log         zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizSessionService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		log:         log.With().Str("component", "quiz_handler").Logger(),
	}
}

// StartQuiz godoc
// POST /api/v1/quiz/start
// Starts a new session from the current settings, discarding any previous one.
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	h.quizService.InitTest()
	response.Success(c, http.StatusCreated, h.quizService.Snapshot())
}

// GetState godoc
// GET /api/v1/quiz/state
func (h *QuizHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.quizService.Snapshot())
}

// AnswerQuestion godoc
// POST /api/v1/quiz/answer
func (h *QuizHandler) AnswerQuestion(c *gin.Context) {
	if !h.requireRunning(c) {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.respond(c, h.quizService.AnswerCurrentQuestion(*req.AnswerID))
}

// NextQuestion godoc
// POST /api/v1/quiz/next
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	if !h.requireRunning(c) {
		return
	}
	h.respond(c, h.quizService.GoToNextQuestion())
}

// UseHint godoc
// POST /api/v1/quiz/hint
func (h *QuizHandler) UseHint(c *gin.Context) {
	if !h.requireRunning(c) {
		return
	}
	h.respond(c, h.quizService.RegisterHintUse())
}

// TogglePause godoc
// POST /api/v1/quiz/pause
func (h *QuizHandler) TogglePause(c *gin.Context) {
	if !h.requireRunning(c) {
		return
	}
	h.respond(c, h.quizService.TogglePause())
}

// FinishQuiz godoc
// POST /api/v1/quiz/finish
func (h *QuizHandler) FinishQuiz(c *gin.Context) {
	if !h.requireRunning(c) {
		return
	}
	h.respond(c, h.quizService.FinishTest())
}

// ResetQuiz godoc
// POST /api/v1/quiz/reset
// Returns to the settings screen. Settings are kept.
func (h *QuizHandler) ResetQuiz(c *gin.Context) {
	h.quizService.ResetToSettings()
	response.Success(c, http.StatusOK, h.quizService.Snapshot())
}

// GetResults godoc
// GET /api/v1/quiz/results
// Available once the session has finished.
func (h *QuizHandler) GetResults(c *gin.Context) {
	snap := h.quizService.Snapshot()
	if snap.Status != model.SessionStatusFinished {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotFinished)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"summary": snap,
		"review":  h.quizService.Review(),
	})
}

func (h *QuizHandler) requireRunning(c *gin.Context) bool {
	if h.quizService.Status() != model.SessionStatusRunning {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotRunning)
		return false
	}
	return true
}

func (h *QuizHandler) respond(c *gin.Context, applied bool) {
	snap := h.quizService.Snapshot()
	if !applied {
		h.log.Debug().Str("path", c.FullPath()).Str("status", string(snap.Status)).Msg("Operation ignored")
		response.Ignored(c, snap)
		return
	}
	response.Success(c, http.StatusOK, snap)
}
