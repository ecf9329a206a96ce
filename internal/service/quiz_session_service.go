package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/questionsource"
	"github.com/stemsi/exstem-quiz/internal/timefmt"
	"github.com/stemsi/exstem-quiz/internal/timer"
)

// Listener receives a snapshot after every applied change.
type Listener func(model.SessionSnapshot)

type listenerEntry struct {
	id int
	fn Listener
}

// QuizSessionService owns the single live quiz session: settings, the
// prepared question list, the countdown timer, the answer log and scoring.
//
// Operations that make no sense in the current state are ignored and report
// false instead of failing. Callers (the presentation layer) decide which
// operations to offer for a given status.
type QuizSessionService struct {
	mu           sync.Mutex
	source       questionsource.Source
	scheduler    timer.Scheduler
	rng          *rand.Rand
	log          zerolog.Logger
	tickInterval time.Duration

	// config is edited on the settings screen; active is the copy a running
	// or finished session was started with.
	config model.QuizConfig
	active model.QuizConfig

	sessionID     uuid.UUID
	status        model.SessionStatus
	questions     []model.Question
	current       int
	selected      *int
	answers       map[int]model.AnswerRecord
	remaining     int
	timerSet      bool
	elapsed       int
	paused        bool
	timedOut      bool
	hintsUsed     int
	hintQuestions map[int]struct{}
	version       uint64

	cancelTick timer.CancelFunc
	timerGen   int

	listeners      []listenerEntry
	nextListenerID int
}

// NewQuizSessionService creates a new QuizSessionService.
// A nil rng means a time-seeded generator.
func NewQuizSessionService(
	source questionsource.Source,
	scheduler timer.Scheduler,
	rng *rand.Rand,
	log zerolog.Logger,
) *QuizSessionService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuizSessionService{
		source:        source,
		scheduler:     scheduler,
		rng:           rng,
		log:           log.With().Str("component", "quiz_session_service").Logger(),
		tickInterval:  time.Second,
		config:        model.DefaultQuizConfig(),
		active:        model.DefaultQuizConfig(),
		status:        model.SessionStatusIdle,
		answers:       make(map[int]model.AnswerRecord),
		hintQuestions: make(map[int]struct{}),
	}
}

// SetTickInterval changes the timer cadence for sessions started afterwards.
// One tick always counts as one second of quiz time.
func (s *QuizSessionService) SetTickInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.tickInterval = d
	s.mu.Unlock()
}

// ────────────────────────────────────────────────────────────────────────────
// Settings
// ────────────────────────────────────────────────────────────────────────────

// Options returns the selectable question counts and time limits.
func (s *QuizSessionService) Options() model.QuizOptions {
	counts := make([]model.QuestionCount, len(model.QuestionCounts))
	copy(counts, model.QuestionCounts)
	limits := make([]model.TimeLimitOption, len(model.TimeLimits))
	copy(limits, model.TimeLimits)
	return model.QuizOptions{QuestionCounts: counts, TimeLimits: limits}
}

// Config returns the settings the next InitTest will use.
func (s *QuizSessionService) Config() model.QuizConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// ApplyConfig replaces all settings at once. Values are not validated.
func (s *QuizSessionService) ApplyConfig(cfg model.QuizConfig) {
	s.updateConfig(func(c *model.QuizConfig) { *c = cfg })
}

func (s *QuizSessionService) SetQuestionCount(n model.QuestionCount) {
	s.updateConfig(func(c *model.QuizConfig) { c.QuestionCount = n })
}

func (s *QuizSessionService) SetTimeLimit(limit model.TimeLimit) {
	s.updateConfig(func(c *model.QuizConfig) { c.TimeLimit = limit })
}

func (s *QuizSessionService) SetShuffleEnabled(enabled bool) {
	s.updateConfig(func(c *model.QuizConfig) { c.ShuffleEnabled = enabled })
}

func (s *QuizSessionService) SetHintsAllowed(allowed bool) {
	s.updateConfig(func(c *model.QuizConfig) { c.HintsAllowed = allowed })
}

func (s *QuizSessionService) SetShowCorrectAnswer(show bool) {
	s.updateConfig(func(c *model.QuizConfig) { c.ShowCorrectAnswer = show })
}

func (s *QuizSessionService) updateConfig(fn func(c *model.QuizConfig)) {
	s.mutate("", func() bool {
		fn(&s.config)
		return true
	})
}

// ────────────────────────────────────────────────────────────────────────────
// Session lifecycle
// ────────────────────────────────────────────────────────────────────────────

// InitTest starts a new session from the current settings, discarding any
// previous session together with its timer.
func (s *QuizSessionService) InitTest() {
	s.mutate("init", func() bool {
		s.stopTimerLocked()

		s.active = s.config
		s.sessionID = uuid.New()
		s.answers = make(map[int]model.AnswerRecord)
		s.selected = nil
		s.current = 0
		s.questions = s.prepareQuestionsLocked()
		s.elapsed = 0
		s.timedOut = false
		s.hintsUsed = 0
		s.hintQuestions = make(map[int]struct{})

		if s.hasTimeLimitLocked() {
			s.startTimerLocked()
		} else {
			s.stopTimerLocked()
		}

		s.status = model.SessionStatusRunning

		s.log.Info().
			Str("session_id", s.sessionID.String()).
			Int("questions", len(s.questions)).
			Str("time_limit", string(s.active.TimeLimit)).
			Bool("shuffle", s.active.ShuffleEnabled).
			Msg("Quiz started")
		return true
	})
}

// FinishTest ends a running session early. Finishing an idle or already
// finished session is ignored.
func (s *QuizSessionService) FinishTest() bool {
	return s.mutate("finish", func() bool {
		if s.status != model.SessionStatusRunning {
			return false
		}
		s.finishLocked(false)
		return true
	})
}

// ResetToSettings drops the session and returns to the settings screen.
// Settings themselves are kept.
func (s *QuizSessionService) ResetToSettings() {
	s.mutate("reset", func() bool {
		s.stopTimerLocked()

		if s.sessionID != uuid.Nil {
			s.log.Info().Str("session_id", s.sessionID.String()).Msg("Quiz reset")
		}

		s.sessionID = uuid.Nil
		s.questions = nil
		s.current = 0
		s.selected = nil
		s.answers = make(map[int]model.AnswerRecord)
		s.elapsed = 0
		s.timedOut = false
		s.hintsUsed = 0
		s.hintQuestions = make(map[int]struct{})
		s.status = model.SessionStatusIdle
		return true
	})
}

func (s *QuizSessionService) finishLocked(timedOut bool) {
	if timedOut {
		// Keep remaining at its final 0 so the results screen can show it.
		s.cancelTickLocked()
		s.paused = false
	} else {
		s.stopTimerLocked()
	}
	s.status = model.SessionStatusFinished
	s.timedOut = timedOut

	correct := s.correctCountLocked()
	s.log.Info().
		Str("session_id", s.sessionID.String()).
		Bool("timed_out", timedOut).
		Int("correct", correct).
		Int("total", len(s.questions)).
		Int("score", s.scorePercentLocked()).
		Int("elapsed_seconds", s.elapsed).
		Msg("Quiz finished")
}

// prepareQuestionsLocked copies the bank, optionally shuffles question order,
// keeps the leading QuestionCount questions and, when shuffling, reorders
// each kept question's answers independently.
func (s *QuizSessionService) prepareQuestionsLocked() []model.Question {
	src := s.source.Questions()
	pool := make([]model.Question, len(src))
	copy(pool, src)

	shuffle := s.active.ShuffleEnabled
	if shuffle {
		s.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}

	count := min(int(s.active.QuestionCount), len(pool))
	if count < 0 {
		count = 0
	}

	selected := make([]model.Question, count)
	for i := range selected {
		q := pool[i].Clone()
		if shuffle {
			s.rng.Shuffle(len(q.Answers), func(a, b int) {
				q.Answers[a], q.Answers[b] = q.Answers[b], q.Answers[a]
			})
		}
		selected[i] = q
	}
	return selected
}

// ────────────────────────────────────────────────────────────────────────────
// Timer
// ────────────────────────────────────────────────────────────────────────────

func (s *QuizSessionService) startTimerLocked() {
	s.stopTimerLocked()

	minutes, ok := s.active.TimeLimit.Minutes()
	if !ok {
		s.elapsed = 0
		return
	}

	s.remaining = minutes * 60
	s.timerSet = true
	s.elapsed = 0
	s.paused = false
	s.scheduleLocked()
}

func (s *QuizSessionService) scheduleLocked() {
	gen := s.timerGen
	defer func() {
		if r := recover(); r != nil {
			s.cancelTick = nil
			s.log.Error().Interface("panic", r).Msg("Failed to schedule quiz timer")
		}
	}()
	s.cancelTick = s.scheduler.Every(s.tickInterval, func() { s.tick(gen) })
}

// cancelTickLocked stops tick delivery. Bumping timerGen makes ticks that were
// already in flight for the old timer no-ops.
func (s *QuizSessionService) cancelTickLocked() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	s.timerGen++
}

func (s *QuizSessionService) stopTimerLocked() {
	s.cancelTickLocked()
	s.remaining = 0
	s.timerSet = false
	s.paused = false
}

// tick is one second of quiz time. While paused the tick is consumed without
// touching the counters.
func (s *QuizSessionService) tick(gen int) {
	s.mutate("", func() bool {
		if gen != s.timerGen || s.paused || !s.timerSet {
			return false
		}
		if s.remaining > 0 {
			s.remaining--
			s.elapsed++
		}
		if s.remaining == 0 {
			s.finishLocked(true)
		}
		return true
	})
}

// Close stops tick delivery without notifying listeners. The session stays
// readable but no longer counts down. Used on shutdown.
func (s *QuizSessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTickLocked()
}

// TogglePause flips the pause flag. It only applies while a time limit is
// active and the countdown is running.
func (s *QuizSessionService) TogglePause() bool {
	return s.mutate("toggle_pause", func() bool {
		if !s.hasTimeLimitLocked() || !s.timerSet || s.cancelTick == nil {
			return false
		}
		s.paused = !s.paused
		return true
	})
}

// ────────────────────────────────────────────────────────────────────────────
// Answers and hints
// ────────────────────────────────────────────────────────────────────────────

// AnswerCurrentQuestion records answerID for the current question, replacing
// any earlier answer to it. The question index does not move.
func (s *QuizSessionService) AnswerCurrentQuestion(answerID int) bool {
	return s.mutate("answer", func() bool {
		q, ok := s.currentQuestionLocked()
		if !ok {
			return false
		}

		selected := answerID
		s.selected = &selected

		correctID, hasCorrect := q.CorrectAnswerID()
		s.answers[q.ID] = model.AnswerRecord{
			QuestionID:       q.ID,
			SelectedAnswerID: answerID,
			IsCorrect:        hasCorrect && correctID == answerID,
		}
		return true
	})
}

// GoToNextQuestion moves to the next question. On the last question it is
// ignored; finishing is a separate action.
func (s *QuizSessionService) GoToNextQuestion() bool {
	return s.mutate("next", func() bool {
		if s.isLastQuestionLocked() {
			return false
		}
		s.current++
		s.selected = nil
		return true
	})
}

// RegisterHintUse counts a hint for the current question, at most once per
// question and only when hints are allowed.
func (s *QuizSessionService) RegisterHintUse() bool {
	return s.mutate("hint", func() bool {
		q, ok := s.currentQuestionLocked()
		if !ok || !s.active.HintsAllowed {
			return false
		}
		if _, used := s.hintQuestions[q.ID]; used {
			return false
		}
		s.hintQuestions[q.ID] = struct{}{}
		s.hintsUsed++
		return true
	})
}

// ────────────────────────────────────────────────────────────────────────────
// Change notification
// ────────────────────────────────────────────────────────────────────────────

// Subscribe registers fn for change notifications and returns a function that
// removes it. Listeners run outside the service lock and may call back into
// the service.
func (s *QuizSessionService) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// mutate runs fn under the lock and notifies listeners when it applied.
// op names the operation for debug logging of ignored calls; ticks pass "".
func (s *QuizSessionService) mutate(op string, fn func() bool) bool {
	s.mu.Lock()
	applied := fn()
	if !applied {
		status := s.status
		s.mu.Unlock()
		if op != "" {
			s.log.Debug().Str("op", op).Str("status", string(status)).Msg("Operation ignored")
		}
		return false
	}

	s.version++
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return true
	}
	snap := s.snapshotLocked()
	listeners := make([]Listener, len(s.listeners))
	for i, l := range s.listeners {
		listeners[i] = l.fn
	}
	s.mu.Unlock()

	for _, l := range listeners {
		s.notify(l, snap)
	}
	return true
}

func (s *QuizSessionService) notify(l Listener, snap model.SessionSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Session listener panicked")
		}
	}()
	l(snap)
}

// ────────────────────────────────────────────────────────────────────────────
// Read-only projections
// ────────────────────────────────────────────────────────────────────────────

// Status returns the session lifecycle state.
func (s *QuizSessionService) Status() model.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SessionID returns the live session's id, uuid.Nil when idle.
func (s *QuizSessionService) SessionID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Questions returns a copy of the session's question sequence.
func (s *QuizSessionService) Questions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// AnswersLog returns a copy of the answer log keyed by question id.
func (s *QuizSessionService) AnswersLog() map[int]model.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]model.AnswerRecord, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *QuizSessionService) CurrentQuestionIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SelectedAnswerID returns the option chosen for the current question.
func (s *QuizSessionService) SelectedAnswerID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

// RemainingSeconds returns the countdown value; ok is false when no timer
// value exists (no limit, or not started).
func (s *QuizSessionService) RemainingSeconds() (seconds int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining, s.timerSet
}

func (s *QuizSessionService) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *QuizSessionService) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// TimedOut reports whether the session finished because time ran out.
func (s *QuizSessionService) TimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedOut
}

func (s *QuizSessionService) HintsUsedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintsUsed
}

func (s *QuizSessionService) HasTimeLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasTimeLimitLocked()
}

func (s *QuizSessionService) TotalQuestions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// CurrentQuestion returns the question at the current index.
func (s *QuizSessionService) CurrentQuestion() (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.currentQuestionLocked()
	if !ok {
		return model.Question{}, false
	}
	return q.Clone(), true
}

func (s *QuizSessionService) IsLastQuestion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLastQuestionLocked()
}

// FormattedRemainingTime returns the countdown as HH:MM:SS, or "" without a
// time limit or timer value.
func (s *QuizSessionService) FormattedRemainingTime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formattedRemainingLocked()
}

// FormattedElapsedTime returns elapsed time as a declined phrase, "" at zero.
func (s *QuizSessionService) FormattedElapsedTime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formattedElapsedLocked()
}

func (s *QuizSessionService) CorrectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correctCountLocked()
}

func (s *QuizSessionService) IncorrectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers) - s.correctCountLocked()
}

// ScorePercent is round(correct / total * 100), 0 without questions.
func (s *QuizSessionService) ScorePercent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scorePercentLocked()
}

// Snapshot returns the whole state with derived values in one consistent read.
func (s *QuizSessionService) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Review returns one row per session question for the results screen.
func (s *QuizSessionService) Review() []model.QuestionReview {
	s.mu.Lock()
	defer s.mu.Unlock()

	reveal := s.revealCorrectLocked()
	out := make([]model.QuestionReview, len(s.questions))
	for i, q := range s.questions {
		row := model.QuestionReview{Question: q.ForPlayer(reveal)}
		if id, ok := q.CorrectAnswerID(); ok && reveal {
			row.CorrectAnswerID = &id
		}
		if rec, ok := s.answers[q.ID]; ok {
			selected := rec.SelectedAnswerID
			row.SelectedAnswerID = &selected
			row.Answered = true
			row.IsCorrect = rec.IsCorrect
		}
		_, row.HintUsed = s.hintQuestions[q.ID]
		out[i] = row
	}
	return out
}

func (s *QuizSessionService) snapshotLocked() model.SessionSnapshot {
	correct := s.correctCountLocked()
	snap := model.SessionSnapshot{
		Version:                s.version,
		Status:                 s.status,
		Config:                 s.effectiveConfigLocked(),
		CurrentQuestionIndex:   s.current,
		TotalQuestions:         len(s.questions),
		IsLastQuestion:         s.isLastQuestionLocked(),
		AnsweredCount:          len(s.answers),
		HasTimeLimit:           s.hasTimeLimitLocked(),
		ElapsedSeconds:         s.elapsed,
		IsPaused:               s.paused,
		TimedOut:               s.timedOut,
		FormattedRemainingTime: s.formattedRemainingLocked(),
		FormattedElapsedTime:   s.formattedElapsedLocked(),
		HintsUsedCount:         s.hintsUsed,
		CorrectCount:           correct,
		IncorrectCount:         len(s.answers) - correct,
		ScorePercent:           s.scorePercentLocked(),
	}
	if s.sessionID != uuid.Nil {
		id := s.sessionID
		snap.SessionID = &id
	}
	if q, ok := s.currentQuestionLocked(); ok {
		pq := q.ForPlayer(s.revealCorrectLocked())
		snap.CurrentQuestion = &pq
	}
	if s.selected != nil {
		selected := *s.selected
		snap.SelectedAnswerID = &selected
	}
	if s.timerSet {
		remaining := s.remaining
		snap.RemainingSeconds = &remaining
	}
	return snap
}

// effectiveConfigLocked is the config that governs derived values: the
// session's own copy once started, the settings screen's otherwise.
func (s *QuizSessionService) effectiveConfigLocked() model.QuizConfig {
	if s.status == model.SessionStatusIdle {
		return s.config
	}
	return s.active
}

func (s *QuizSessionService) hasTimeLimitLocked() bool {
	return !s.effectiveConfigLocked().TimeLimit.IsUnlimited()
}

func (s *QuizSessionService) revealCorrectLocked() bool {
	return s.effectiveConfigLocked().ShowCorrectAnswer || s.status == model.SessionStatusFinished
}

func (s *QuizSessionService) currentQuestionLocked() (model.Question, bool) {
	if s.current < 0 || s.current >= len(s.questions) {
		return model.Question{}, false
	}
	return s.questions[s.current], true
}

func (s *QuizSessionService) isLastQuestionLocked() bool {
	return s.current >= len(s.questions)-1
}

func (s *QuizSessionService) formattedRemainingLocked() string {
	if !s.hasTimeLimitLocked() || !s.timerSet {
		return ""
	}
	return timefmt.FormatClock(s.remaining)
}

func (s *QuizSessionService) formattedElapsedLocked() string {
	if s.elapsed == 0 {
		return ""
	}
	return timefmt.FormatVerbose(s.elapsed)
}

func (s *QuizSessionService) correctCountLocked() int {
	n := 0
	for _, rec := range s.answers {
		if rec.IsCorrect {
			n++
		}
	}
	return n
}

func (s *QuizSessionService) scorePercentLocked() int {
	total := len(s.questions)
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(s.correctCountLocked()) / float64(total) * 100))
}
