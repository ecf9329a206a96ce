package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/stemsi/exstem-quiz/internal/model"
)

const (
	defaultWidth = 80
	maxWidth     = 100
)

func separator(width int) string {
	return strings.Repeat("─", clampWidth(width))
}

func clampWidth(width int) int {
	if width <= 0 {
		return defaultWidth
	}
	return min(width, maxWidth)
}

// wrap breaks text into lines of at most width runes on word boundaries.
// Words longer than width get a line of their own.
func wrap(text string, width int) []string {
	width = clampWidth(width)
	var lines []string
	var cur strings.Builder
	curLen := 0

	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+n > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += n
	}
	if curLen > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// renderQuestion prints the current question. hintAnswerID marks the option
// a hint points at; -1 means no hint shown.
func renderQuestion(w io.Writer, snap model.SessionSnapshot, hintAnswerID int, width int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator(width))

	status := fmt.Sprintf("Вопрос %d из %d", snap.CurrentQuestionIndex+1, snap.TotalQuestions)
	if snap.FormattedRemainingTime != "" {
		status += "   Осталось: " + snap.FormattedRemainingTime
	}
	if snap.IsPaused {
		status += "   [пауза]"
	}
	if snap.HintsUsedCount > 0 {
		status += fmt.Sprintf("   Подсказок: %d", snap.HintsUsedCount)
	}
	fmt.Fprintln(w, status)
	fmt.Fprintln(w, separator(width))

	if snap.CurrentQuestion == nil {
		fmt.Fprintln(w, "Нет вопросов.")
		return
	}

	for _, line := range wrap(snap.CurrentQuestion.Text, width) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	for i, a := range snap.CurrentQuestion.Answers {
		marker := "  "
		if snap.SelectedAnswerID != nil && *snap.SelectedAnswerID == a.ID {
			marker = "> "
		}
		suffix := ""
		if a.ID == hintAnswerID {
			suffix = "  ← подсказка"
		}
		if a.Correct != nil && snap.SelectedAnswerID != nil && *snap.SelectedAnswerID == a.ID {
			if *a.Correct {
				suffix += "  ✓ верно"
			} else {
				suffix += "  ✗ неверно"
			}
		}
		fmt.Fprintf(w, "%s%d) %s%s\n", marker, i+1, a.Text, suffix)
	}

	fmt.Fprintln(w)
	if snap.IsLastQuestion {
		fmt.Fprint(w, "Ответ, h, p, f — завершить, q: ")
	} else {
		fmt.Fprint(w, "Ответ, n — далее, h, p, f, q: ")
	}
}

// renderResults prints the score and a per-question review.
func renderResults(w io.Writer, snap model.SessionSnapshot, review []model.QuestionReview, width int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator(width))
	fmt.Fprintln(w, "Результаты")
	fmt.Fprintln(w, separator(width))

	fmt.Fprintf(w, "Правильных ответов: %d из %d (%d%%)\n", snap.CorrectCount, snap.TotalQuestions, snap.ScorePercent)
	fmt.Fprintf(w, "Неправильных: %d\n", snap.IncorrectCount)
	if snap.FormattedElapsedTime != "" {
		fmt.Fprintf(w, "Затрачено времени: %s\n", snap.FormattedElapsedTime)
	}
	if snap.HintsUsedCount > 0 {
		fmt.Fprintf(w, "Использовано подсказок: %d\n", snap.HintsUsedCount)
	}
	if snap.TimedOut {
		fmt.Fprintln(w, "Тест завершён по истечении времени.")
	}
	fmt.Fprintln(w)

	for i, row := range review {
		mark := "–"
		switch {
		case row.Answered && row.IsCorrect:
			mark = "✓"
		case row.Answered:
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %d. %s\n", mark, i+1, row.Question.Text)
		if row.CorrectAnswerID != nil && !row.IsCorrect {
			for _, a := range row.Question.Answers {
				if a.ID == *row.CorrectAnswerID {
					fmt.Fprintf(w, "    Правильный ответ: %s\n", a.Text)
				}
			}
		}
	}
}
