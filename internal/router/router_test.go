package router

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/analytics"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/handler"
	"github.com/stemsi/exstem-quiz/internal/questionsource"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/timer"
	"github.com/stemsi/exstem-quiz/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	validator.Setup()

	src, err := questionsource.LoadEmbedded()
	require.NoError(t, err)

	log := zerolog.Nop()
	svc := service.NewQuizSessionService(src, timer.NewManualScheduler(), rand.New(rand.NewSource(7)), log)
	tracker := analytics.NewTracker(analytics.NewLogReporter(log), true, log)

	handlers := &Handlers{
		Setting:   handler.NewSettingHandler(svc),
		Quiz:      handler.NewQuizHandler(svc, log),
		Analytics: handler.NewAnalyticsHandler(tracker),
		WS:        handler.NewWSHandler(svc, log, cfg.AllowedOrigins),
		Monitor:   handler.NewMonitorHandler(svc, log),
		System:    handler.NewSystemHandler(nil, log),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return SetupRouter(ctx, handlers, cfg)
}

func TestSetupRouter_Routes(t *testing.T) {
	r := newTestRouter(t, &config.Config{GinMode: gin.TestMode})

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/quiz/options", "", http.StatusOK},
		{http.MethodGet, "/api/v1/quiz/settings", "", http.StatusOK},
		{http.MethodPut, "/api/v1/quiz/settings", `{"time_limit":"60"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/quiz/state", "", http.StatusOK},
		{http.MethodPost, "/api/v1/quiz/next", "", http.StatusConflict},
		{http.MethodPost, "/api/v1/quiz/start", "", http.StatusCreated},
		{http.MethodPost, "/api/v1/quiz/hint", "", http.StatusOK},
		{http.MethodPost, "/api/v1/quiz/finish", "", http.StatusOK},
		{http.MethodGet, "/api/v1/quiz/results", "", http.StatusOK},
		{http.MethodPost, "/api/v1/quiz/reset", "", http.StatusOK},
		{http.MethodPost, "/api/v1/analytics/hit", `{"path":"/"}`, http.StatusAccepted},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "%s %s: %s", tc.method, tc.path, w.Body.String())
	}
}

func TestSetupRouter_CacheHeaders(t *testing.T) {
	r := newTestRouter(t, &config.Config{GinMode: gin.TestMode})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quiz/options", nil))
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quiz/state", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_CORS(t *testing.T) {
	r := newTestRouter(t, &config.Config{
		GinMode:        gin.TestMode,
		AllowedOrigins: []string{"https://quiz.example.com"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quiz/state", nil)
	req.Header.Set("Origin", "https://quiz.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://quiz.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/quiz/state", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
