package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/analytics"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/questionsource"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/timer"
	"github.com/stemsi/exstem-quiz/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// envelope mirrors response.Response with a typed data field.
type envelope[T any] struct {
	Data  T                   `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

type recordingReporter struct {
	hits []analytics.Hit
}

func (r *recordingReporter) Hit(_ context.Context, hit analytics.Hit) error {
	r.hits = append(r.hits, hit)
	return nil
}

func (r *recordingReporter) Goal(context.Context, analytics.Goal) error { return nil }

type testEnv struct {
	svc      *service.QuizSessionService
	sched    *timer.ManualScheduler
	reporter *recordingReporter
	engine   *gin.Engine
}

func testQuestions() []model.Question {
	return []model.Question{
		{ID: 1, Text: "Один", Answers: []model.AnswerOption{{ID: 11, Text: "да", Correct: true}, {ID: 12, Text: "нет"}}},
		{ID: 2, Text: "Два", Answers: []model.AnswerOption{{ID: 21, Text: "да"}, {ID: 22, Text: "нет", Correct: true}}},
		{ID: 3, Text: "Три", Answers: []model.AnswerOption{{ID: 31, Text: "да", Correct: true}, {ID: 32, Text: "нет"}}},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sched := timer.NewManualScheduler()
	svc := service.NewQuizSessionService(
		questionsource.NewStatic(testQuestions()),
		sched,
		rand.New(rand.NewSource(1)),
		zerolog.Nop(),
	)
	svc.ApplyConfig(model.QuizConfig{
		QuestionCount:  model.QuestionCount50,
		TimeLimit:      model.TimeLimit30,
		ShuffleEnabled: false,
		HintsAllowed:   true,
	})

	rep := &recordingReporter{}
	tracker := analytics.NewTracker(rep, true, zerolog.Nop())

	settings := NewSettingHandler(svc)
	quiz := NewQuizHandler(svc, zerolog.Nop())
	hits := NewAnalyticsHandler(tracker)
	system := NewSystemHandler(nil, zerolog.Nop())

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.GET("/health", system.Health)
	r.GET("/options", settings.GetOptions)
	r.GET("/settings", settings.GetSettings)
	r.PUT("/settings", settings.UpdateSettings)
	r.POST("/start", quiz.StartQuiz)
	r.GET("/state", quiz.GetState)
	r.POST("/answer", quiz.AnswerQuestion)
	r.POST("/next", quiz.NextQuestion)
	r.POST("/hint", quiz.UseHint)
	r.POST("/pause", quiz.TogglePause)
	r.POST("/finish", quiz.FinishQuiz)
	r.POST("/reset", quiz.ResetQuiz)
	r.GET("/results", quiz.GetResults)
	r.POST("/hit", hits.TrackHit)

	return &testEnv{svc: svc, sched: sched, reporter: rep, engine: r}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestSettings_GetAndUpdate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/settings", `{"question_count":100,"time_limit":"none","show_correct_answer":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cfg := decode[model.QuizConfig](t, w).Data
	assert.Equal(t, model.QuestionCount100, cfg.QuestionCount)
	assert.Equal(t, model.TimeLimitNone, cfg.TimeLimit)
	assert.True(t, cfg.ShowCorrectAnswer)
	assert.True(t, cfg.HintsAllowed, "omitted fields keep their value")

	w = env.do(http.MethodGet, "/settings", "")
	assert.Equal(t, cfg, decode[model.QuizConfig](t, w).Data)
}

func TestSettings_RejectsUnknownValues(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/settings", `{"question_count":75}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[any](t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrValidation, body.Error.Code)
	assert.Contains(t, body.Error.Fields, "question_count")
	assert.Equal(t, model.QuestionCount50, env.svc.Config().QuestionCount)
}

func TestOptions(t *testing.T) {
	env := newTestEnv(t)

	opts := decode[model.QuizOptions](t, env.do(http.MethodGet, "/options", "")).Data

	assert.Equal(t, []model.QuestionCount{50, 100, 200}, opts.QuestionCounts)
	require.Len(t, opts.TimeLimits, 4)
	assert.Equal(t, model.TimeLimitNone, opts.TimeLimits[3].Value)
}

func TestQuiz_OperationsRequireRunningSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/next", "/hint", "/pause", "/finish"} {
		w := env.do(http.MethodPost, path, "")
		assert.Equal(t, http.StatusConflict, w.Code, path)
		body := decode[any](t, w)
		require.NotNil(t, body.Error, path)
		assert.Equal(t, response.ErrSessionNotRunning, body.Error.Code, path)
	}

	w := env.do(http.MethodPost, "/answer", `{"answer_id":11}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.SessionStatusIdle, env.svc.Status())
}

func TestQuiz_FullSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/start", "")
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decode[model.SessionSnapshot](t, w).Data
	assert.Equal(t, model.SessionStatusRunning, snap.Status)
	assert.Equal(t, 3, snap.TotalQuestions)
	require.NotNil(t, snap.CurrentQuestion)
	assert.Equal(t, 1, snap.CurrentQuestion.ID)
	assert.Nil(t, snap.CurrentQuestion.Answers[0].Correct, "correct flags stay hidden")
	require.NotNil(t, snap.RemainingSeconds)
	assert.Equal(t, 1800, *snap.RemainingSeconds)

	snap = decode[model.SessionSnapshot](t, env.do(http.MethodPost, "/answer", `{"answer_id":11}`)).Data
	require.NotNil(t, snap.SelectedAnswerID)
	assert.Equal(t, 11, *snap.SelectedAnswerID)
	assert.Equal(t, 1, snap.CorrectCount)

	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/hint", "").Code)
	w = env.do(http.MethodPost, "/hint", "")
	assert.Equal(t, http.StatusConflict, w.Code, "second hint on the same question")
	body := decode[model.SessionSnapshot](t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrOperationIgnored, body.Error.Code)
	assert.Equal(t, 1, body.Data.HintsUsedCount)

	env.do(http.MethodPost, "/next", "")
	env.do(http.MethodPost, "/answer", `{"answer_id":21}`)
	env.do(http.MethodPost, "/next", "")
	w = env.do(http.MethodPost, "/next", "")
	assert.Equal(t, http.StatusConflict, w.Code, "next on the last question")

	assert.Equal(t, http.StatusConflict, env.do(http.MethodGet, "/results", "").Code)

	snap = decode[model.SessionSnapshot](t, env.do(http.MethodPost, "/finish", "")).Data
	assert.Equal(t, model.SessionStatusFinished, snap.Status)
	assert.Equal(t, 1, snap.CorrectCount)
	assert.Equal(t, 1, snap.IncorrectCount)
	assert.Equal(t, 33, snap.ScorePercent)

	type results struct {
		Summary model.SessionSnapshot  `json:"summary"`
		Review  []model.QuestionReview `json:"review"`
	}
	res := decode[results](t, env.do(http.MethodGet, "/results", "")).Data
	require.Len(t, res.Review, 3)
	assert.True(t, res.Review[0].IsCorrect)
	assert.True(t, res.Review[0].HintUsed)
	assert.False(t, res.Review[1].IsCorrect)
	assert.False(t, res.Review[2].Answered)
	require.NotNil(t, res.Review[2].CorrectAnswerID, "finished sessions reveal answers")
	assert.Equal(t, 31, *res.Review[2].CorrectAnswerID)

	snap = decode[model.SessionSnapshot](t, env.do(http.MethodPost, "/reset", "")).Data
	assert.Equal(t, model.SessionStatusIdle, snap.Status)
	assert.Nil(t, snap.SessionID)
}

func TestQuiz_AnswerValidation(t *testing.T) {
	env := newTestEnv(t)
	env.svc.InitTest()

	w := env.do(http.MethodPost, "/answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/answer", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[any](t, w)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Fields, "detail")
}

func TestQuiz_PauseAndTimeout(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/start", "")

	env.sched.Advance(10)
	snap := decode[model.SessionSnapshot](t, env.do(http.MethodPost, "/pause", "")).Data
	assert.True(t, snap.IsPaused)
	assert.Equal(t, 10, snap.ElapsedSeconds)

	env.sched.Advance(5)
	snap = decode[model.SessionSnapshot](t, env.do(http.MethodPost, "/pause", "")).Data
	assert.False(t, snap.IsPaused)
	assert.Equal(t, 10, snap.ElapsedSeconds)
	assert.Equal(t, 1790, *snap.RemainingSeconds)

	env.sched.Advance(1790)
	snap = decode[model.SessionSnapshot](t, env.do(http.MethodGet, "/state", "")).Data
	assert.Equal(t, model.SessionStatusFinished, snap.Status)
	assert.True(t, snap.TimedOut)
	assert.Equal(t, 0, *snap.RemainingSeconds)
	assert.Equal(t, "00:00:00", snap.FormattedRemainingTime)
}

func TestQuiz_PauseIgnoredWithoutTimeLimit(t *testing.T) {
	env := newTestEnv(t)
	env.svc.SetTimeLimit(model.TimeLimitNone)
	env.do(http.MethodPost, "/start", "")

	w := env.do(http.MethodPost, "/pause", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode[model.SessionSnapshot](t, w)
	assert.Equal(t, response.ErrOperationIgnored, body.Error.Code)
	assert.False(t, body.Data.HasTimeLimit)
}

func TestAnalytics_TrackHit(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/hit", `{"path":"/results","title":"Результаты"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, env.reporter.hits, 1)
	assert.Equal(t, "/results", env.reporter.hits[0].Path)
	assert.Equal(t, "Результаты", env.reporter.hits[0].Title)

	w = env.do(http.MethodPost, "/hit", `{"path":"results"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.reporter.hits, 1)
}

func TestHealth_WithoutRedis(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	st := decode[systemStatus](t, w).Data
	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, "disabled", st.Redis)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 5s", formatDuration(5e9))
	assert.Equal(t, "1h 1m 1s", formatDuration(3661e9))
	assert.Equal(t, "1d 0h 0m 0s", formatDuration(86400e9))
}
