package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestion() Question {
	return Question{
		ID:   7,
		Text: "2 + 2?",
		Answers: []AnswerOption{
			{ID: 1, Text: "3"},
			{ID: 2, Text: "4", Correct: true},
			{ID: 3, Text: "5"},
		},
	}
}

func TestQuestion_CorrectAnswerID(t *testing.T) {
	id, ok := sampleQuestion().CorrectAnswerID()
	require.True(t, ok)
	assert.Equal(t, 2, id)

	_, ok = Question{ID: 1}.CorrectAnswerID()
	assert.False(t, ok)
}

func TestQuestion_CloneDoesNotShareAnswers(t *testing.T) {
	q := sampleQuestion()
	c := q.Clone()
	c.Answers[0], c.Answers[2] = c.Answers[2], c.Answers[0]

	assert.Equal(t, 1, q.Answers[0].ID)
	assert.Equal(t, 3, c.Answers[0].ID)
}

func TestQuestion_ForPlayer(t *testing.T) {
	hidden := sampleQuestion().ForPlayer(false)
	for _, a := range hidden.Answers {
		assert.Nil(t, a.Correct)
	}

	shown := sampleQuestion().ForPlayer(true)
	require.NotNil(t, shown.Answers[1].Correct)
	assert.True(t, *shown.Answers[1].Correct)
	assert.False(t, *shown.Answers[0].Correct)
}

func TestTimeLimit_Minutes(t *testing.T) {
	cases := []struct {
		limit   TimeLimit
		minutes int
		ok      bool
	}{
		{TimeLimit30, 30, true},
		{TimeLimit60, 60, true},
		{TimeLimit120, 120, true},
		{TimeLimitNone, 0, false},
		{TimeLimit("15"), 0, false},
	}
	for _, tc := range cases {
		m, ok := tc.limit.Minutes()
		assert.Equal(t, tc.minutes, m, string(tc.limit))
		assert.Equal(t, tc.ok, ok, string(tc.limit))
	}
	assert.True(t, TimeLimitNone.IsUnlimited())
	assert.False(t, TimeLimit30.IsUnlimited())
}

func TestUpdateSettingsRequest_Apply(t *testing.T) {
	count := 200
	limit := "none"
	off := false
	req := UpdateSettingsRequest{QuestionCount: &count, TimeLimit: &limit, HintsAllowed: &off}

	cfg := req.Apply(DefaultQuizConfig())

	assert.Equal(t, QuestionCount200, cfg.QuestionCount)
	assert.Equal(t, TimeLimitNone, cfg.TimeLimit)
	assert.False(t, cfg.HintsAllowed)
	assert.True(t, cfg.ShuffleEnabled)
	assert.True(t, cfg.ShowCorrectAnswer)
}

func TestOptionValidity(t *testing.T) {
	assert.True(t, QuestionCount100.Valid())
	assert.False(t, QuestionCount(75).Valid())
	assert.True(t, TimeLimitNone.Valid())
	assert.True(t, TimeLimit60.Valid())
	assert.False(t, TimeLimit("45").Valid())
}
