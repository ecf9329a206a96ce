package analytics

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-quiz/internal/model"
)

const (
	GoalQuizStarted  = "quiz_started"
	GoalQuizFinished = "quiz_finished"
	GoalQuizReset    = "quiz_reset"
)

// SessionGoals turns session snapshots into goals. Register its Observe
// method as a session listener; snapshots older than the last seen one are
// dropped.
type SessionGoals struct {
	tracker *Tracker

	mu          sync.Mutex
	lastVersion uint64
	lastStatus  model.SessionStatus
	lastSession uuid.UUID
}

// NewSessionGoals creates a new SessionGoals.
func NewSessionGoals(tracker *Tracker) *SessionGoals {
	return &SessionGoals{tracker: tracker, lastStatus: model.SessionStatusIdle}
}

// Observe compares snap against the previous snapshot and reports
// the lifecycle goal it represents, if any.
func (g *SessionGoals) Observe(snap model.SessionSnapshot) {
	g.mu.Lock()
	if snap.Version <= g.lastVersion {
		g.mu.Unlock()
		return
	}

	var sessionID uuid.UUID
	if snap.SessionID != nil {
		sessionID = *snap.SessionID
	}

	name, params := g.transition(snap, sessionID)

	g.lastVersion = snap.Version
	g.lastStatus = snap.Status
	g.lastSession = sessionID
	g.mu.Unlock()

	if name != "" {
		g.tracker.ReachGoal(context.Background(), name, params)
	}
}

func (g *SessionGoals) transition(snap model.SessionSnapshot, sessionID uuid.UUID) (string, map[string]interface{}) {
	switch snap.Status {
	case model.SessionStatusRunning:
		if g.lastStatus != model.SessionStatusRunning || g.lastSession != sessionID {
			return GoalQuizStarted, map[string]interface{}{
				"question_count": snap.TotalQuestions,
				"time_limit":     string(snap.Config.TimeLimit),
			}
		}
	case model.SessionStatusFinished:
		if g.lastStatus != model.SessionStatusFinished || g.lastSession != sessionID {
			return GoalQuizFinished, map[string]interface{}{
				"score":     snap.ScorePercent,
				"timed_out": snap.TimedOut,
			}
		}
	case model.SessionStatusIdle:
		if g.lastStatus != model.SessionStatusIdle {
			return GoalQuizReset, nil
		}
	}
	return "", nil
}
