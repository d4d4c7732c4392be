package coordinator

import (
	"errors"
	"fmt"

	"github.com/park285/Cheese-bot-client/internal/gameapi"
)

var (
	// ErrLocalIllegalMove: the rule-checker refused the move; nothing was sent.
	ErrLocalIllegalMove = errors.New("illegal move")
	ErrBusy             = errors.New("a move is already in flight")
	ErrNoSession        = errors.New("no active game session")
	ErrGameOver         = errors.New("game is over")
	ErrNotYourTurn      = errors.New("not your turn")
	// ErrStaleResponse is returned to the caller whose response arrived after
	// the session it belonged to was reset or replaced. The response is dropped.
	ErrStaleResponse = errors.New("response belongs to an abandoned session")
)

// ServerRejectedError is a structured refusal from the game service.
type ServerRejectedError struct {
	Detail string
	Status int
}

func (e *ServerRejectedError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("server rejected move (status %d): %s", e.Status, e.Detail)
	}
	return "server rejected move: " + e.Detail
}

// TransportError covers requests that never produced a usable answer:
// network failures, timeouts and malformed bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SessionStartError reports a failed new-game request. No session is left behind.
type SessionStartError struct {
	Err error
}

func (e *SessionStartError) Error() string {
	return fmt.Sprintf("start session: %v", e.Err)
}

func (e *SessionStartError) Unwrap() error { return e.Err }

// classify maps a transport failure onto the coordinator taxonomy.
func classify(op string, err error) error {
	if apiErr, ok := gameapi.IsAPIError(err); ok {
		return &ServerRejectedError{Detail: apiErr.Detail, Status: apiErr.Status}
	}
	return &TransportError{Op: op, Err: err}
}

// errorDetail is the user-facing part of a failed submission.
func errorDetail(err error) string {
	var rejected *ServerRejectedError
	if errors.As(err, &rejected) {
		return rejected.Detail
	}
	var transport *TransportError
	if errors.As(err, &transport) && transport.Err != nil {
		return transport.Err.Error()
	}
	return err.Error()
}
