package coordinator

import (
	"time"

	"github.com/park285/Cheese-bot-client/internal/roster"
)

// State is the session lifecycle.
type State int

const (
	StateNoSession State = iota
	StateIdle
	StatePending
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateFinished:
		return "finished"
	default:
		return "no_session"
	}
}

// Session is one game against the bot, created only from a confirmed
// new-game response. The local player always has White.
type Session struct {
	ID        string
	PlayerID  string
	Bot       roster.Bot
	StartedAt time.Time
}

// PendingMove is a locally legal move that has not been confirmed yet.
// The rule-checker has already been rolled back; FEN is only for display.
type PendingMove struct {
	From      string
	To        string
	UCI       string
	SAN       string
	FEN       string
	SessionID string

	base  string
	epoch uint64
}

// MoveOutcome is what a confirmed round trip applied.
type MoveOutcome struct {
	PlayerUCI string
	PlayerSAN string
	BotUCI    string // empty when the server sent no reply or the reply was rejected locally
	BotSAN    string
	// BotRejected is set when the server reported a bot move that failed local validation.
	BotRejected bool
	FEN         string
	Status      Status
}

// Snapshot is a read-only view for presenters.
type Snapshot struct {
	State          State
	SessionID      string
	PlayerID       string
	Bot            roster.Bot
	FEN            string
	Moves          []string
	LastMove       string
	Busy           bool
	Status         string
	Notice         string
	Opening        string
	InCheck        bool
	ResetAvailable bool
}

// HasSession reports whether a game is active.
func (s Snapshot) HasSession() bool { return s.State != StateNoSession }
