// Package questionsource provides the read-only question bank.
package questionsource

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/stemsi/exstem-quiz/internal/model"
)

// Domain Errors
var (
	ErrNoQuestions     = errors.New("question bank is empty")
	ErrInvalidQuestion = errors.New("invalid question")
)

//go:embed questions.json
var embeddedQuestions []byte

// Source is an ordered, read-only collection of questions. Callers may copy
// and reorder the result but must not modify it in place.
type Source interface {
	Questions() []model.Question
}

// Static is a Source backed by an in-memory slice.
type Static struct {
	questions []model.Question
}

// NewStatic wraps questions without validation.
func NewStatic(questions []model.Question) *Static {
	return &Static{questions: questions}
}

// Questions returns the bank in source order.
func (s *Static) Questions() []model.Question {
	return s.questions
}

// Parse decodes a JSON question bank of the shape
// [{"id":1,"text":"...","answers":[{"id":1,"text":"...","correct":true}]}].
func Parse(data []byte) (*Static, error) {
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	seen := make(map[int]struct{}, len(questions))
	for i, q := range questions {
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d at index %d", ErrInvalidQuestion, q.ID, i)
		}
		seen[q.ID] = struct{}{}

		if len(q.Answers) == 0 {
			return nil, fmt.Errorf("%w: question %d has no answers", ErrInvalidQuestion, q.ID)
		}
	}
	return NewStatic(questions), nil
}

// LoadFile reads and parses a question bank from disk.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	return Parse(data)
}

// LoadEmbedded parses the question bank bundled with the binary.
func LoadEmbedded() (*Static, error) {
	return Parse(embeddedQuestions)
}

// Load picks the file at path when set, the embedded bank otherwise.
func Load(path string) (*Static, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFile(path)
}
