package model

// AnswerOption is a single selectable answer of a question.
type AnswerOption struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question is a multiple-choice question from the question bank.
// Questions are read-only; sessions work on clones.
type Question struct {
	ID      int            `json:"id"`
	Text    string         `json:"text"`
	Answers []AnswerOption `json:"answers"`
}

// CorrectAnswerID returns the first option flagged correct.
func (q Question) CorrectAnswerID() (int, bool) {
	for _, a := range q.Answers {
		if a.Correct {
			return a.ID, true
		}
	}
	return 0, false
}

// HasAnswer reports whether answerID is one of the question's options.
func (q Question) HasAnswer(answerID int) bool {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return true
		}
	}
	return false
}

// Clone returns a copy whose Answers slice can be reordered freely.
func (q Question) Clone() Question {
	answers := make([]AnswerOption, len(q.Answers))
	copy(answers, q.Answers)
	q.Answers = answers
	return q
}

// QuestionForPlayer is a question as shown to the player. Correct flags are
// omitted unless the caller decided to reveal them.
type QuestionForPlayer struct {
	ID      int               `json:"id"`
	Text    string            `json:"text"`
	Answers []AnswerForPlayer `json:"answers"`
}

// AnswerForPlayer is an answer option as shown to the player.
type AnswerForPlayer struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Correct *bool  `json:"correct,omitempty"`
}

// ForPlayer converts the question into its player-facing form.
func (q Question) ForPlayer(revealCorrect bool) QuestionForPlayer {
	out := QuestionForPlayer{
		ID:      q.ID,
		Text:    q.Text,
		Answers: make([]AnswerForPlayer, len(q.Answers)),
	}
	for i, a := range q.Answers {
		out.Answers[i] = AnswerForPlayer{ID: a.ID, Text: a.Text}
		if revealCorrect {
			correct := a.Correct
			out.Answers[i].Correct = &correct
		}
	}
	return out
}
