package domain

import (
	"context"
	"time"
)

// MaxTurnsPerSession bounds the stored history of one session. Appends
// beyond the bound evict the oldest turn.
const MaxTurnsPerSession = 10

// ConversationTurn is one question/answer exchange within a session.
type ConversationTurn struct {
	Timestamp time.Time `json:"timestamp"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
}

// ConversationStore keeps a size-bounded, most-recent-first turn log per
// session. Implementations must tolerate concurrent writers to the same
// session; keys are disjoint across sessions.
type ConversationStore interface {
	// Append inserts a turn at the head of the session's log and trims it
	// to MaxTurnsPerSession.
	Append(ctx context.Context, sessionID string, turn ConversationTurn) error

	// Read returns up to limit turns, most recent first. Unknown sessions
	// yield an empty slice.
	Read(ctx context.Context, sessionID string, limit int) ([]ConversationTurn, error)

	// Clear removes the session's log. Idempotent.
	Clear(ctx context.Context, sessionID string) error
}
