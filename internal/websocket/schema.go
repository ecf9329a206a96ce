package websocket

import "github.com/stemsi/exstem-quiz/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionNext   Action = "next"
	ActionHint   Action = "hint"
	ActionPause  Action = "pause"
	ActionFinish Action = "finish"
	ActionPing   Action = "ping"
)

// RequestPayload is every client message. AnswerID is only read for "answer".
type RequestPayload struct {
	Action   Action `json:"action"`
	AnswerID *int   `json:"answer_id,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSnapshot Event = "snapshot"
	EventIgnored  Event = "ignored"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// SnapshotResponse pushes the session state after every change.
type SnapshotResponse struct {
	Event Event                 `json:"event"`
	Data  model.SessionSnapshot `json:"data"`
}

// IgnoredResponse tells the client an action had no effect in the current state.
type IgnoredResponse struct {
	Event  Event               `json:"event"`
	Action Action              `json:"action"`
	Status model.SessionStatus `json:"status"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
