package boardview

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/Cheese-bot-client/internal/rules"
)

var unicodeGlyphs = map[string]string{
	"wK": "♔", "wQ": "♕", "wR": "♖", "wB": "♗", "wN": "♘", "wP": "♙",
	"bK": "♚", "bQ": "♛", "bR": "♜", "bB": "♝", "bN": "♞", "bP": "♟",
}

// TextRenderer prints the board to a terminal, White at the bottom.
type TextRenderer struct {
	mu        sync.Mutex
	out       io.Writer
	ascii     bool
	compact   bool
	highlight *MoveHighlight
	header    string
	status    string
}

type TextOption func(*TextRenderer)

// WithASCII prints letters (KQRBNP / kqrbnp) instead of chess glyphs.
func WithASCII() TextOption {
	return func(r *TextRenderer) { r.ascii = true }
}

func NewTextRenderer(out io.Writer, opts ...TextOption) *TextRenderer {
	if out == nil {
		out = os.Stdout
	}
	r := &TextRenderer{out: out}
	for _, opt := range opts {
		opt(r)
	}
	r.Resize()
	return r
}

func (r *TextRenderer) Position(fen string, animate bool) error {
	board, err := rules.BoardFromFEN(fen)
	if err != nil {
		return fmt.Errorf("text renderer: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	if r.header != "" {
		sb.WriteString(r.header)
		sb.WriteByte('\n')
	}
	// 터미널에는 애니메이션이 없으므로 animate 값과 무관하게 즉시 그린다
	sb.WriteString(r.draw(board))
	if r.status != "" {
		sb.WriteString(r.status)
		sb.WriteByte('\n')
	}
	_, err = io.WriteString(r.out, sb.String())
	return err
}

// Resize re-reads the terminal width from COLUMNS; narrow terminals get a compact board.
func (r *TextRenderer) Resize() {
	cols := 80
	if v := strings.TrimSpace(os.Getenv("COLUMNS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cols = n
		}
	}
	r.mu.Lock()
	r.compact = cols < 40
	r.mu.Unlock()
}

func (r *TextRenderer) Highlight(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if from == "" || to == "" {
		r.highlight = nil
		return
	}
	r.highlight = &MoveHighlight{From: from, To: to}
}

func (r *TextRenderer) Caption(header, status string) {
	r.mu.Lock()
	r.header = header
	r.status = status
	r.mu.Unlock()
}

func (r *TextRenderer) draw(board *nchess.Board) string {
	var sb strings.Builder
	cell := " %s "
	if r.compact {
		cell = "%s"
	}
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(strconv.Itoa(rank + 1))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			sq := nchess.NewSquare(nchess.File(file), nchess.Rank(rank))
			glyph := r.glyph(board.Piece(sq), file, rank)
			if r.isHighlighted(sq) && !r.compact {
				sb.WriteString("[" + glyph + "]")
				continue
			}
			sb.WriteString(fmt.Sprintf(cell, glyph))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	for file := 0; file < 8; file++ {
		sb.WriteString(fmt.Sprintf(cell, string(rune('a'+file))))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (r *TextRenderer) glyph(p nchess.Piece, file, rank int) string {
	code := rules.PieceCode(p)
	if code == "" {
		if (file+rank)%2 == 0 {
			return "·"
		}
		return " "
	}
	if r.ascii {
		letter := code[1:]
		if code[0] == 'b' {
			return strings.ToLower(letter)
		}
		return letter
	}
	return unicodeGlyphs[code]
}

func (r *TextRenderer) isHighlighted(sq nchess.Square) bool {
	if r.highlight == nil {
		return false
	}
	name := sq.String()
	return name == r.highlight.From || name == r.highlight.To
}
