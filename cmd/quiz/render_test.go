package main

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/questionsource"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"один два", "три"}, wrap("один  два три", 8))
	assert.Equal(t, []string{"длинноеслово", "а"}, wrap("длинноеслово а", 5))
	assert.Nil(t, wrap("   ", 10))
}

func TestRenderQuestion(t *testing.T) {
	selected := 12
	correct := false
	snap := model.SessionSnapshot{
		CurrentQuestionIndex:   0,
		TotalQuestions:         2,
		FormattedRemainingTime: "00:29:59",
		IsPaused:               true,
		SelectedAnswerID:       &selected,
		CurrentQuestion: &model.QuestionForPlayer{
			ID:   1,
			Text: "Столица Франции?",
			Answers: []model.AnswerForPlayer{
				{ID: 11, Text: "Париж"},
				{ID: 12, Text: "Лион", Correct: &correct},
			},
		},
	}

	var buf bytes.Buffer
	renderQuestion(&buf, snap, 11, 40)
	out := buf.String()

	assert.Contains(t, out, "Вопрос 1 из 2")
	assert.Contains(t, out, "Осталось: 00:29:59")
	assert.Contains(t, out, "[пауза]")
	assert.Contains(t, out, "  1) Париж  ← подсказка")
	assert.Contains(t, out, "> 2) Лион  ✗ неверно")
	assert.Contains(t, out, "n — далее")
}

func newTestTerminal(t *testing.T) (*terminal, *bytes.Buffer) {
	t.Helper()
	src, err := questionsource.LoadEmbedded()
	require.NoError(t, err)

	svc := service.NewQuizSessionService(src, timer.NewManualScheduler(), rand.New(rand.NewSource(3)), zerolog.Nop())
	svc.ApplyConfig(model.QuizConfig{
		QuestionCount: model.QuestionCount50,
		TimeLimit:     model.TimeLimit30,
		HintsAllowed:  true,
	})

	var buf bytes.Buffer
	tm := &terminal{out: &buf, quiz: svc, width: 60, hinted: make(map[int]bool)}
	return tm, &buf
}

func feed(lines ...string) <-chan string {
	ch := make(chan string, len(lines))
	for _, l := range lines {
		ch <- l
	}
	close(ch)
	return ch
}

func TestTerminal_ChooseSettings(t *testing.T) {
	tm, _ := newTestTerminal(t)

	require.True(t, tm.chooseSettings(feed("100", "4")))

	cfg := tm.quiz.Config()
	assert.Equal(t, model.QuestionCount100, cfg.QuestionCount)
	assert.Equal(t, model.TimeLimitNone, cfg.TimeLimit)

	require.True(t, tm.chooseSettings(feed("", "abc")))
	assert.Equal(t, cfg, tm.quiz.Config(), "empty or invalid input keeps settings")

	assert.False(t, tm.chooseSettings(feed()))
}

func TestTerminal_PlaysThroughToResults(t *testing.T) {
	tm, buf := newTestTerminal(t)

	tm.run(feed("1", "h", "n", "x", "f"))

	out := buf.String()
	assert.Equal(t, model.SessionStatusFinished, tm.quiz.Status())
	assert.Equal(t, 1, tm.quiz.HintsUsedCount())
	assert.Len(t, tm.quiz.AnswersLog(), 1)
	assert.Contains(t, out, "← подсказка")
	assert.Contains(t, out, "Команды:")
	assert.Contains(t, out, "Результаты")
	assert.True(t, strings.Contains(out, "Правильных ответов: 0 из 16") || strings.Contains(out, "Правильных ответов: 1 из 16"))
}

func TestTerminal_QuitSkipsResults(t *testing.T) {
	tm, buf := newTestTerminal(t)

	tm.run(feed("q"))

	assert.Equal(t, model.SessionStatusRunning, tm.quiz.Status())
	assert.NotContains(t, buf.String(), "Результаты")
}
