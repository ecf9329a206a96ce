package model

import "github.com/google/uuid"

// SessionStatus enumerates quiz session lifecycle states.
type SessionStatus string

const (
	SessionStatusIdle     SessionStatus = "idle"
	SessionStatusRunning  SessionStatus = "running"
	SessionStatusFinished SessionStatus = "finished"
)

// AnswerRecord is the latest recorded answer for one question.
type AnswerRecord struct {
	QuestionID       int  `json:"question_id"`
	SelectedAnswerID int  `json:"selected_answer_id"`
	IsCorrect        bool `json:"is_correct"`
}

// SessionSnapshot is a point-in-time view of the session with all derived
// values computed. It is what listeners and the HTTP/WS layer receive.
type SessionSnapshot struct {
	// Version increases with every applied change; clients drop older ones.
	Version              uint64             `json:"version"`
	SessionID            *uuid.UUID         `json:"session_id,omitempty"`
	Status               SessionStatus      `json:"status"`
	Config               QuizConfig         `json:"config"`
	CurrentQuestionIndex int                `json:"current_question_index"`
	CurrentQuestion      *QuestionForPlayer `json:"current_question,omitempty"`
	SelectedAnswerID     *int               `json:"selected_answer_id,omitempty"`
	TotalQuestions       int                `json:"total_questions"`
	IsLastQuestion       bool               `json:"is_last_question"`
	AnsweredCount        int                `json:"answered_count"`

	HasTimeLimit           bool   `json:"has_time_limit"`
	RemainingSeconds       *int   `json:"remaining_seconds,omitempty"`
	ElapsedSeconds         int    `json:"elapsed_seconds"`
	IsPaused               bool   `json:"is_paused"`
	TimedOut               bool   `json:"timed_out"`
	FormattedRemainingTime string `json:"formatted_remaining_time"`
	FormattedElapsedTime   string `json:"formatted_elapsed_time"`

	HintsUsedCount int `json:"hints_used_count"`
	CorrectCount   int `json:"correct_count"`
	IncorrectCount int `json:"incorrect_count"`
	ScorePercent   int `json:"score_percent"`
}

// QuestionReview is one row of the results screen.
type QuestionReview struct {
	Question         QuestionForPlayer `json:"question"`
	SelectedAnswerID *int              `json:"selected_answer_id,omitempty"`
	CorrectAnswerID  *int              `json:"correct_answer_id,omitempty"`
	Answered         bool              `json:"answered"`
	IsCorrect        bool              `json:"is_correct"`
	HintUsed         bool              `json:"hint_used"`
}

// AnswerRequest is the payload for answering the current question.
type AnswerRequest struct {
	AnswerID *int `json:"answer_id" binding:"required"`
}

// NavigationRequest is the payload of a navigation event from the front-end.
type NavigationRequest struct {
	Path  string `json:"path" binding:"required,startswith=/,max=2048"`
	Title string `json:"title" binding:"max=512"`
}
