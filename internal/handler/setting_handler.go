package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// SettingHandler serves the settings screen.
type SettingHandler struct {
	quizService *service.QuizSessionService
}

func NewSettingHandler(quizService *service.QuizSessionService) *SettingHandler {
	return &SettingHandler{quizService: quizService}
}

// GetOptions godoc
// GET /api/v1/quiz/options
func (h *SettingHandler) GetOptions(c *gin.Context) {
	response.Success(c, http.StatusOK, h.quizService.Options())
}

// GetSettings godoc
// GET /api/v1/quiz/settings
func (h *SettingHandler) GetSettings(c *gin.Context) {
	response.Success(c, http.StatusOK, h.quizService.Config())
}

// UpdateSettings godoc
// PUT /api/v1/quiz/settings
// Changes apply to the next session started; a running session keeps its own.
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.quizService.ApplyConfig(req.Apply(h.quizService.Config()))

	response.Success(c, http.StatusOK, h.quizService.Config())
}
