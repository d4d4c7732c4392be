package rules

import nchess "github.com/corentings/chess/v2"

var (
	knightSteps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// kingAttacked reports whether side's king stands on a square attacked by the other side.
// A board without that king is never in check.
func kingAttacked(b *nchess.Board, side nchess.Color) bool {
	if b == nil || side == nchess.NoColor {
		return false
	}
	enemy := nchess.White
	if side == nchess.White {
		enemy = nchess.Black
	}
	at := func(f, r int) nchess.Piece {
		if f < 0 || f > 7 || r < 0 || r > 7 {
			return nchess.NoPiece
		}
		return b.Piece(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
	}
	is := func(p nchess.Piece, types ...nchess.PieceType) bool {
		if p == nchess.NoPiece || p.Color() != enemy {
			return false
		}
		for _, t := range types {
			if p.Type() == t {
				return true
			}
		}
		return false
	}

	kf, kr := -1, -1
	for f := 0; f < 8 && kf < 0; f++ {
		for r := 0; r < 8; r++ {
			if p := at(f, r); p.Type() == nchess.King && p.Color() == side {
				kf, kr = f, r
				break
			}
		}
	}
	if kf < 0 {
		return false
	}

	for _, d := range knightSteps {
		if is(at(kf+d[0], kr+d[1]), nchess.Knight) {
			return true
		}
	}
	for _, d := range kingSteps {
		if is(at(kf+d[0], kr+d[1]), nchess.King) {
			return true
		}
	}
	// 흑 폰은 위에서, 백 폰은 아래에서 대각선으로 공격한다
	pawnRank := kr + 1
	if side == nchess.Black {
		pawnRank = kr - 1
	}
	if is(at(kf-1, pawnRank), nchess.Pawn) || is(at(kf+1, pawnRank), nchess.Pawn) {
		return true
	}

	slide := func(rays [][2]int, types ...nchess.PieceType) bool {
		for _, d := range rays {
			for f, r := kf+d[0], kr+d[1]; f >= 0 && f < 8 && r >= 0 && r < 8; f, r = f+d[0], r+d[1] {
				p := at(f, r)
				if p == nchess.NoPiece {
					continue
				}
				if is(p, types...) {
					return true
				}
				break
			}
		}
		return false
	}
	return slide(rookRays, nchess.Rook, nchess.Queen) || slide(bishopRays, nchess.Bishop, nchess.Queen)
}
