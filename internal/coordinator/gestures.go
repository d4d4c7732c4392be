package coordinator

import (
	"context"
	"errors"

	"github.com/park285/Cheese-bot-client/internal/rules"
	"go.uber.org/zap"
)

// DropResult tells the board what to do with a dropped piece.
type DropResult int

const (
	DropAccepted DropResult = iota
	// DropSnapback sends the piece back to its origin square.
	DropSnapback
)

func (r DropResult) String() string {
	if r == DropSnapback {
		return "snapback"
	}
	return "accepted"
}

// OnDragStart reports whether the player may pick up piece from square.
// piece is a code like "wP"; empty means the square is read from the position.
func (c *Coordinator) OnDragStart(square, piece string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gateLocked() != nil {
		return false
	}
	if piece == "" {
		code, err := c.checker.PieceAt(square)
		if err != nil || code == "" {
			return false
		}
		piece = code
	}
	// 사람은 항상 백
	return !rules.IsBlackPiece(piece)
}

// OnDrop runs a full move for a drop gesture. Moves refused before anything was
// sent snap back; once a move went out the piece stays and a failed round trip
// is undone by the renderer showing the confirmed position again.
func (c *Coordinator) OnDrop(ctx context.Context, from, to string) (DropResult, *MoveOutcome, error) {
	if from == to {
		return DropSnapback, nil, nil
	}
	out, err := c.Move(ctx, from, to)
	switch {
	case err == nil:
		return DropAccepted, out, nil
	case errors.Is(err, ErrLocalIllegalMove),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrNoSession),
		errors.Is(err, ErrGameOver),
		errors.Is(err, ErrNotYourTurn):
		return DropSnapback, nil, err
	default:
		return DropAccepted, nil, err
	}
}

// OnSnapEnd re-syncs the board after a piece settled, so castling rooks,
// en passant captures and promotions show up. While a move is in flight the
// provisional position stays on screen.
func (c *Coordinator) OnSnapEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fen := c.checker.FEN()
	if c.busy && c.pending != nil {
		fen = c.pending.FEN
	}
	c.renderLocked(fen, false)
}

// OnMoveEnd runs when an animated update finished; it refreshes the status line.
func (c *Coordinator) OnMoveEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := c.captionLocked()
	c.logger.Debug("move_animation_done", zap.String("status", status), zap.String("state", c.state.String()))
}
