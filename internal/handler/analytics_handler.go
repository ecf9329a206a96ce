package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-quiz/internal/analytics"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/validator"
)

// AnalyticsHandler receives navigation events from the front-end.
type AnalyticsHandler struct {
	tracker *analytics.Tracker
}

func NewAnalyticsHandler(tracker *analytics.Tracker) *AnalyticsHandler {
	return &AnalyticsHandler{tracker: tracker}
}

// TrackHit godoc
// POST /api/v1/analytics/hit
// Always accepted; reporting failures never reach the client.
func (h *AnalyticsHandler) TrackHit(c *gin.Context) {
	var req model.NavigationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.tracker.TrackNavigation(c.Request.Context(), req.Path, req.Title)

	response.Success(c, http.StatusAccepted, gin.H{"tracked": h.tracker.Enabled()})
}
