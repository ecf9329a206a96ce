package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/logger"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/questionsource"
	"github.com/stemsi/exstem-quiz/internal/service"
	"github.com/stemsi/exstem-quiz/internal/timer"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	// Logs go to stderr and default to warn so they stay out of the quiz screen.
	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	log := logger.Setup(level, cfg.LogFormat, os.Stderr)

	// ─── Load Question Bank ────────────────────────────────────────────
	source, err := questionsource.Load(cfg.QuestionsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.QuestionsFile).Msg("Failed to load questions")
	}

	quizService := service.NewQuizSessionService(source, timer.NewIntervalScheduler(log), nil, log)
	quizService.SetTickInterval(cfg.TickInterval)
	quizService.ApplyConfig(cfg.QuizDefaults())
	defer quizService.Close()

	t := newTerminal(os.Stdout, quizService)
	lines := readLines(os.Stdin)

	if !t.chooseSettings(lines) {
		return
	}
	t.run(lines)
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// readLines feeds trimmed stdin lines into a channel, closed on EOF.
func readLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			out <- strings.TrimSpace(scanner.Text())
		}
	}()
	return out
}

// terminalWidth returns the width of stdout, 80 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// terminal drives one quiz session over line-oriented input.
type terminal struct {
	out   io.Writer
	quiz  *service.QuizSessionService
	width int

	// hinted holds question ids whose hint was shown in this session.
	hinted map[int]bool
}

func newTerminal(out io.Writer, quiz *service.QuizSessionService) *terminal {
	return &terminal{out: out, quiz: quiz, width: terminalWidth(), hinted: make(map[int]bool)}
}

func (t *terminal) chooseSettings(lines <-chan string) bool {
	opts := t.quiz.Options()
	cfg := t.quiz.Config()

	fmt.Fprintln(t.out, "Настройки теста")
	fmt.Fprintln(t.out, separator(t.width))

	fmt.Fprintf(t.out, "Количество вопросов (%s), Enter — %d: ", joinCounts(opts.QuestionCounts), cfg.QuestionCount)
	line, ok := <-lines
	if !ok {
		return false
	}
	if n, err := strconv.Atoi(line); err == nil && model.QuestionCount(n).Valid() {
		t.quiz.SetQuestionCount(model.QuestionCount(n))
	}

	fmt.Fprintln(t.out, "Ограничение времени:")
	for i, opt := range opts.TimeLimits {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt.Label)
	}
	fmt.Fprintf(t.out, "Выбор, Enter — %s: ", timeLimitLabel(cfg.TimeLimit))
	line, ok = <-lines
	if !ok {
		return false
	}
	if i, err := strconv.Atoi(line); err == nil && i >= 1 && i <= len(opts.TimeLimits) {
		t.quiz.SetTimeLimit(opts.TimeLimits[i-1].Value)
	}

	return true
}

func (t *terminal) run(lines <-chan string) {
	// Timeouts happen between keystrokes, so the listener wakes the loop.
	timedOut := make(chan struct{}, 1)
	unsubscribe := t.quiz.Subscribe(func(snap model.SessionSnapshot) {
		if snap.Status == model.SessionStatusFinished && snap.TimedOut {
			select {
			case timedOut <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	t.quiz.InitTest()
	t.hinted = make(map[int]bool)
	t.render()

	for t.quiz.Status() == model.SessionStatusRunning {
		select {
		case <-timedOut:
			fmt.Fprintln(t.out, "\nВремя вышло!")
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := t.handle(line); quit {
				return
			}
		}
	}

	renderResults(t.out, t.quiz.Snapshot(), t.quiz.Review(), t.width)
}

// handle applies one command and reports whether the user quit.
func (t *terminal) handle(line string) bool {
	switch strings.ToLower(line) {
	case "q":
		return true
	case "n":
		if !t.quiz.GoToNextQuestion() {
			fmt.Fprintln(t.out, "Это последний вопрос. Введите f, чтобы завершить тест.")
			return false
		}
	case "h":
		if !t.quiz.RegisterHintUse() && !t.hintShown() {
			fmt.Fprintln(t.out, "Подсказки отключены.")
			return false
		}
		if q, ok := t.quiz.CurrentQuestion(); ok {
			t.hinted[q.ID] = true
		}
	case "p":
		if !t.quiz.TogglePause() {
			fmt.Fprintln(t.out, "Пауза доступна только при ограничении времени.")
			return false
		}
	case "f":
		t.quiz.FinishTest()
		return false
	default:
		n, err := strconv.Atoi(line)
		q, ok := t.quiz.CurrentQuestion()
		if err != nil || !ok || n < 1 || n > len(q.Answers) {
			fmt.Fprintln(t.out, "Команды: номер ответа, n — далее, h — подсказка, p — пауза, f — завершить, q — выход.")
			return false
		}
		t.quiz.AnswerCurrentQuestion(q.Answers[n-1].ID)
	}

	t.render()
	return false
}

func (t *terminal) hintShown() bool {
	q, ok := t.quiz.CurrentQuestion()
	return ok && t.hinted[q.ID]
}

func (t *terminal) render() {
	snap := t.quiz.Snapshot()
	hintFor := -1
	if q, ok := t.quiz.CurrentQuestion(); ok && t.hinted[q.ID] {
		if id, ok := q.CorrectAnswerID(); ok {
			hintFor = id
		}
	}
	renderQuestion(t.out, snap, hintFor, t.width)
}

func joinCounts(counts []model.QuestionCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, "/")
}

func timeLimitLabel(limit model.TimeLimit) string {
	for _, opt := range model.TimeLimits {
		if opt.Value == limit {
			return opt.Label
		}
	}
	return string(limit)
}
