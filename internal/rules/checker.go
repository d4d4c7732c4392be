// Package rules wraps corentings/chess as the client's local rule-checker.
//
// The checker never trusts itself over the server: it only holds the position
// the coordinator last confirmed, expressed as a base FEN plus the UCI moves
// applied on top of it. Undo replays the list without its last entry.
package rules

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrBadSquare     = errors.New("invalid square")
	ErrNothingToUndo = errors.New("no move to undo")
)

// Side is the color to move.
type Side int

const (
	White Side = iota
	Black
)

func (s Side) String() string {
	if s == Black {
		return "Black"
	}
	return "White"
}

// Candidate is a move attempt expressed as squares; Promotion is a lowercase
// piece letter ("q", "r", "b", "n") or empty.
type Candidate struct {
	From      string
	To        string
	Promotion string
}

// MoveResult describes a move the checker accepted.
type MoveResult struct {
	UCI   string
	SAN   string
	Check bool
}

// Checker is a single-game rule-checker. It is not safe for concurrent use.
type Checker struct {
	baseFEN string
	moves   []string
	game    *nchess.Game
	book    *opening.BookECO
}

func NewChecker() *Checker {
	c := &Checker{}
	c.Reset()
	return c
}

// Reset returns to the standard initial position.
func (c *Checker) Reset() {
	c.baseFEN = StartFEN
	c.moves = nil
	c.game = nchess.NewGame()
}

// Load replaces the position with fen and clears the move list.
func (c *Checker) Load(fen string) error {
	game, err := buildGame(fen, nil)
	if err != nil {
		return err
	}
	c.baseFEN = normalizeFEN(fen)
	c.moves = nil
	c.game = game
	return nil
}

// Move applies cand if it is legal in the current position.
func (c *Checker) Move(cand Candidate) (*MoveResult, error) {
	uci, err := candidateUCI(cand)
	if err != nil {
		return nil, err
	}
	return c.MoveUCI(uci)
}

// MoveUCI applies a move given in UCI notation, e.g. "e7e5" or "a7a8q".
func (c *Checker) MoveUCI(uci string) (*MoveResult, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	pos := c.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	if err := c.game.Move(mv, nil); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	c.moves = append(c.moves, uci)

	// the game records its own validated copy of the move, which carries the check tag
	played := c.game.Moves()
	last := played[len(played)-1]
	return &MoveResult{
		UCI:   uci,
		SAN:   nchess.AlgebraicNotation{}.Encode(pos, last),
		Check: last.HasTag(nchess.Check),
	}, nil
}

// Legal reports whether cand can be played, without changing the position.
// When cand has no promotion and the plain move is illegal, a queen promotion is tried.
// The trial runs on a clone, so the confirmed position is restored without a replay.
func (c *Checker) Legal(cand Candidate) (*MoveResult, bool) {
	game, moves := c.game, c.moves
	c.game, c.moves = game.Clone(), append([]string(nil), moves...)
	defer func() { c.game, c.moves = game, moves }()

	res, err := c.Move(cand)
	if err != nil && cand.Promotion == "" {
		cand.Promotion = "q"
		res, err = c.Move(cand)
	}
	if err != nil {
		return nil, false
	}
	return res, true
}

// Undo takes back the last applied move.
func (c *Checker) Undo() error {
	if len(c.moves) == 0 {
		return ErrNothingToUndo
	}
	moves := c.moves[:len(c.moves)-1]
	game, err := buildGame(c.baseFEN, moves)
	if err != nil {
		return err
	}
	c.moves = moves
	c.game = game
	return nil
}

func (c *Checker) FEN() string { return c.game.FEN() }

func (c *Checker) Turn() Side {
	if c.game.Position().Turn() == nchess.Black {
		return Black
	}
	return White
}

// IsCheck reports whether the side to move is in check, read from the board
// itself so a freshly loaded FEN answers correctly too.
func (c *Checker) IsCheck() bool {
	pos := c.game.Position()
	return kingAttacked(pos.Board(), pos.Turn())
}

func (c *Checker) IsCheckmate() bool {
	return c.game.Outcome() != nchess.NoOutcome && c.game.Method() == nchess.Checkmate
}

func (c *Checker) IsDraw() bool { return c.game.Outcome() == nchess.Draw }

func (c *Checker) IsGameOver() bool { return c.game.Outcome() != nchess.NoOutcome }

// Moves returns the UCI moves applied since the last Load or Reset.
func (c *Checker) Moves() []string {
	out := make([]string, len(c.moves))
	copy(out, c.moves)
	return out
}

// PieceAt returns the piece on square as chessboard-style code ("wP", "bK") or "".
func (c *Checker) PieceAt(square string) (string, error) {
	sq, err := ParseSquare(square)
	if err != nil {
		return "", err
	}
	p := c.game.Position().Board().Piece(sq)
	if p == nchess.NoPiece {
		return "", nil
	}
	return PieceCode(p), nil
}

// Board returns the current board for renderers.
func (c *Checker) Board() *nchess.Board { return c.game.Position().Board() }

// Opening returns the ECO code and title for the moves played so far, if the book knows them.
func (c *Checker) Opening() (string, string) {
	if len(c.moves) == 0 || c.baseFEN != StartFEN {
		return "", ""
	}
	if c.book == nil {
		c.book = opening.NewBookECO()
	}
	if c.book == nil {
		return "", ""
	}
	if eco := c.book.Find(c.game.Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}

func buildGame(fen string, moves []string) (*nchess.Game, error) {
	var game *nchess.Game
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "start" || normalizeFEN(fen) == StartFEN {
		game = nchess.NewGame()
	} else {
		option, err := nchess.FEN(fen)
		if err != nil {
			return nil, fmt.Errorf("parse fen %q: %w", fen, err)
		}
		game = nchess.NewGame(option)
	}
	for _, mv := range moves {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("apply move %q: %w", mv, err)
		}
	}
	return game, nil
}

func normalizeFEN(fen string) string {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "start" {
		return StartFEN
	}
	return strings.Join(strings.Fields(fen), " ")
}

func candidateUCI(cand Candidate) (string, error) {
	from := strings.ToLower(strings.TrimSpace(cand.From))
	to := strings.ToLower(strings.TrimSpace(cand.To))
	if _, err := ParseSquare(from); err != nil {
		return "", err
	}
	if _, err := ParseSquare(to); err != nil {
		return "", err
	}
	if from == to {
		return "", fmt.Errorf("%w: origin equals destination", ErrBadSquare)
	}
	promo := strings.ToLower(strings.TrimSpace(cand.Promotion))
	switch promo {
	case "", "q", "r", "b", "n":
	default:
		return "", fmt.Errorf("%w: promotion %q", ErrIllegalMove, cand.Promotion)
	}
	return from + to + promo, nil
}
