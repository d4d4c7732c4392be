package boardview

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/Cheese-bot-client/internal/rules"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// White at the bottom: rows run from rank 8 down to rank 1.
var (
	displayRanks = []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
	displayFiles = []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}
)

// boardGeometry maps squares to pixels for one render.
type boardGeometry struct {
	origin image.Point
	square int
}

func (g boardGeometry) rect(sq nchess.Square) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	x := g.origin.X + col*g.square
	y := g.origin.Y + row*g.square
	return image.Rect(x, y, x+g.square, y+g.square)
}

func (g boardGeometry) center(sq nchess.Square) (float32, float32) {
	r := g.rect(sq)
	half := float32(g.square) / 2
	return float32(r.Min.X) + half, float32(r.Min.Y) + half
}

func (g boardGeometry) drawSquares(dst imagedraw.Image) {
	for _, rank := range displayRanks {
		for _, file := range displayFiles {
			sq := nchess.NewSquare(file, rank)
			fill := lightSquare
			if (int(file)+int(rank))%2 == 0 {
				fill = darkSquare
			}
			imagedraw.Draw(dst, g.rect(sq), image.NewUniform(fill), image.Point{}, imagedraw.Src)
		}
	}
}

func (g boardGeometry) drawPieces(dst imagedraw.Image, board *nchess.Board) error {
	for _, rank := range displayRanks {
		for _, file := range displayFiles {
			sq := nchess.NewSquare(file, rank)
			code := rules.PieceCode(board.Piece(sq))
			if code == "" {
				continue
			}
			img, err := pieces.image(code, g.square)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, g.rect(sq), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

// drawHighlight tints both squares of a White move and draws an arrow for a
// Black reply, so the bot's answer stands out from the player's own move.
func (g boardGeometry) drawHighlight(img *image.RGBA, board *nchess.Board, h *MoveHighlight) {
	if h == nil {
		return
	}
	from, err := rules.ParseSquare(h.From)
	if err != nil {
		return
	}
	to, err := rules.ParseSquare(h.To)
	if err != nil || from == to {
		return
	}
	switch moverColor(board, from, to) {
	case nchess.White:
		tint := image.NewUniform(whiteMoveHighlightFill)
		imagedraw.Draw(img, g.rect(from), tint, image.Point{}, imagedraw.Over)
		imagedraw.Draw(img, g.rect(to), tint, image.Point{}, imagedraw.Over)
	case nchess.Black:
		g.drawArrow(img, from, to, blackMoveHighlightArrow)
	default:
		g.drawArrow(img, from, to, neutralHighlightArrow)
	}
}

// moverColor guesses who moved: the piece now on to, else whatever is left on from.
func moverColor(board *nchess.Board, from, to nchess.Square) nchess.Color {
	if board == nil {
		return nchess.NoColor
	}
	if p := board.Piece(to); p != nchess.NoPiece {
		return p.Color()
	}
	if p := board.Piece(from); p != nchess.NoPiece {
		return p.Color()
	}
	return nchess.NoColor
}

// drawArrow fills a shaft plus head polygon from the centre of from to the centre of to.
func (g boardGeometry) drawArrow(img *image.RGBA, from, to nchess.Square, clr color.Color) {
	x0, y0 := g.center(from)
	x1, y1 := g.center(to)
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	nx, ny := -uy, ux

	sq := float32(g.square)
	shaft := sq * 0.07
	headLen := minf(sq*0.38, length*0.6)
	headHalf := sq * 0.2
	bx, by := x1-ux*headLen, y1-uy*headLen

	pts := [][2]float32{
		{x0 + nx*shaft, y0 + ny*shaft},
		{bx + nx*shaft, by + ny*shaft},
		{bx + nx*headHalf, by + ny*headHalf},
		{x1, y1},
		{bx - nx*headHalf, by - ny*headHalf},
		{bx - nx*shaft, by - ny*shaft},
		{x0 - nx*shaft, y0 - ny*shaft},
	}
	fillPolygon(img, pts, clr)
}

func (g boardGeometry) drawCoordinates(drawer *font.Drawer, margin int) {
	if drawer == nil || drawer.Face == nil {
		return
	}
	drawer.Src = image.NewUniform(coordinateTextColor)
	ascent := drawer.Face.Metrics().Ascent.Ceil()
	bottom := g.origin.Y + 8*g.square
	for row, rank := range displayRanks {
		baseline := g.origin.Y + row*g.square + (g.square+ascent)/2
		drawTextCentered(drawer, rank.String(), g.origin.X-margin/2, baseline)
	}
	for col, file := range displayFiles {
		drawTextCentered(drawer, file.String(), g.origin.X+col*g.square+g.square/2, bottom+ascent+4)
	}
}

func fillPolygon(img *image.RGBA, pts [][2]float32, clr color.Color) {
	if img == nil || len(pts) < 3 {
		return
	}
	b := img.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = imagedraw.Over
	r.MoveTo(pts[0][0]-float32(b.Min.X), pts[0][1]-float32(b.Min.Y))
	for _, p := range pts[1:] {
		r.LineTo(p[0]-float32(b.Min.X), p[1]-float32(b.Min.Y))
	}
	r.ClosePath()
	r.Draw(img, b, image.NewUniform(clr), image.Point{})
}

// fillRoundedRect draws rect with quadratic corners of the given radius.
func fillRoundedRect(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if img == nil || rect.Empty() {
		return
	}
	if limit := min(rect.Dx(), rect.Dy()) / 2; radius > limit {
		radius = limit
	}
	if radius <= 0 {
		imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
		return
	}
	b := img.Bounds()
	x0, y0 := float32(rect.Min.X-b.Min.X), float32(rect.Min.Y-b.Min.Y)
	x1, y1 := float32(rect.Max.X-b.Min.X), float32(rect.Max.Y-b.Min.Y)
	rad := float32(radius)

	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = imagedraw.Over
	r.MoveTo(x0+rad, y0)
	r.LineTo(x1-rad, y0)
	r.QuadTo(x1, y0, x1, y0+rad)
	r.LineTo(x1, y1-rad)
	r.QuadTo(x1, y1, x1-rad, y1)
	r.LineTo(x0+rad, y1)
	r.QuadTo(x0, y1, x0, y1-rad)
	r.LineTo(x0, y0+rad)
	r.QuadTo(x0, y0, x0+rad, y0)
	r.ClosePath()
	r.Draw(img, b, image.NewUniform(clr), image.Point{})
}

// fitText shortens text with "..." until it fits maxWidth pixels.
func fitText(face font.Face, text string, maxWidth int) string {
	text = strings.TrimSpace(text)
	if text == "" || face == nil || maxWidth <= 0 {
		return text
	}
	width := func(s string) int { return font.MeasureString(face, s).Round() }
	if width(text) <= maxWidth {
		return text
	}
	const ellipsis = "..."
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		if s := string(runes[:n]) + ellipsis; width(s) <= maxWidth {
			return s
		}
	}
	if width(ellipsis) <= maxWidth {
		return ellipsis
	}
	return ""
}

// drawTextInRect centres one line of text inside rect.
func drawTextInRect(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if drawer == nil || drawer.Face == nil || text == "" {
		return
	}
	m := drawer.Face.Metrics()
	baseline := rect.Min.Y + (rect.Dy()+m.Ascent.Ceil()-m.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawTextCentered(drawer, text, rect.Min.X+rect.Dx()/2, baseline)
}

func drawTextCentered(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	w := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-w/2, baseline)
	drawer.DrawString(text)
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
