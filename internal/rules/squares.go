package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// ParseSquare converts algebraic square names ("e4") into board squares.
func ParseSquare(s string) (nchess.Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return nchess.NoSquare, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return nchess.NoSquare, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return nchess.NewSquare(nchess.File(file-'a'), nchess.Rank(rank-'1')), nil
}

// PieceCode formats a piece the way board widgets name them: color prefix plus
// uppercase piece letter ("wP", "bQ").
func PieceCode(p nchess.Piece) string {
	if p == nchess.NoPiece {
		return ""
	}
	prefix := "w"
	if p.Color() == nchess.Black {
		prefix = "b"
	}
	var letter string
	switch p.Type() {
	case nchess.King:
		letter = "K"
	case nchess.Queen:
		letter = "Q"
	case nchess.Rook:
		letter = "R"
	case nchess.Bishop:
		letter = "B"
	case nchess.Knight:
		letter = "N"
	case nchess.Pawn:
		letter = "P"
	default:
		return ""
	}
	return prefix + letter
}

// IsBlackPiece reports whether a piece code belongs to Black.
func IsBlackPiece(code string) bool {
	return strings.HasPrefix(code, "b")
}

// SplitUCI returns origin and destination squares of a UCI move.
func SplitUCI(uci string) (from, to string, ok bool) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	if len(uci) < 4 || len(uci) > 5 {
		return "", "", false
	}
	if _, err := ParseSquare(uci[:2]); err != nil {
		return "", "", false
	}
	if _, err := ParseSquare(uci[2:4]); err != nil {
		return "", "", false
	}
	return uci[:2], uci[2:4], true
}

// BoardFromFEN builds a board for rendering without keeping a game around.
func BoardFromFEN(fen string) (*nchess.Board, error) {
	game, err := buildGame(fen, nil)
	if err != nil {
		return nil, err
	}
	return game.Position().Board(), nil
}

// SamePosition compares placement, side to move and castling rights of two FENs.
// En passant and move counters are ignored; engines disagree on when to print the
// en passant square.
func SamePosition(a, b string) bool {
	fa := strings.Fields(normalizeFEN(a))
	fb := strings.Fields(normalizeFEN(b))
	if len(fa) < 3 || len(fb) < 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}
