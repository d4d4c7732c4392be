package boardview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/Cheese-bot-client/internal/rules"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// RenderOptions control one PNG snapshot.
type RenderOptions struct {
	SquareSize int
	Highlight  *MoveHighlight
	Header     string
	Status     string
}

const (
	defaultSquareSize = 64
	minSquareSize     = 24
)

// PNGRenderer writes every displayed position to a PNG file (the snapshot a
// viewer or browser tab can poll).
type PNGRenderer struct {
	mu         sync.Mutex
	path       string
	size       int
	squareSize int
	highlight  *MoveHighlight
	header     string
	status     string
}

// NewPNGRenderer renders into path. size is the board edge in pixels; 0 picks the default.
func NewPNGRenderer(path string, size int) *PNGRenderer {
	r := &PNGRenderer{path: path, size: size}
	r.Resize()
	return r
}

func (r *PNGRenderer) Position(fen string, animate bool) error {
	board, err := rules.BoardFromFEN(fen)
	if err != nil {
		return fmt.Errorf("png renderer: %w", err)
	}

	r.mu.Lock()
	opts := RenderOptions{SquareSize: r.squareSize, Header: r.header, Status: r.status}
	// 스냅백(animate=false)은 마지막 수 표시를 남기지 않는다
	if animate && r.highlight != nil {
		h := *r.highlight
		opts.Highlight = &h
	}
	path := r.path
	r.mu.Unlock()

	data, err := RenderPNG(context.Background(), board, opts)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// Resize recomputes the square size from the configured board edge.
func (r *PNGRenderer) Resize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	sq := defaultSquareSize
	if r.size > 0 {
		sq = r.size / 8
	}
	if sq < minSquareSize {
		sq = minSquareSize
	}
	r.squareSize = sq
}

func (r *PNGRenderer) Highlight(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if from == "" || to == "" {
		r.highlight = nil
		return
	}
	r.highlight = &MoveHighlight{From: from, To: to}
}

func (r *PNGRenderer) Caption(header, status string) {
	r.mu.Lock()
	r.header = header
	r.status = status
	r.mu.Unlock()
}

// RenderPNG draws board with an optional header/status banner and coordinates.
func RenderPNG(ctx context.Context, board *nchess.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	squareSize := opts.SquareSize
	if squareSize <= 0 {
		squareSize = defaultSquareSize
	}

	const (
		sideMargin   = 28
		bottomMargin = 28
		bannerHeight = 26
		bannerGap    = 8
		panelRadius  = 8
	)

	boardSize := squareSize * 8
	topMargin := 20
	lines := bannerLines(opts)
	if len(lines) > 0 {
		topMargin = bannerGap + len(lines)*(bannerHeight+bannerGap)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, boardSize+sideMargin*2, boardSize+topMargin+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}
	for i, line := range lines {
		y := bannerGap + i*(bannerHeight+bannerGap)
		rect := image.Rect(sideMargin, y, sideMargin+boardSize, y+bannerHeight)
		fillRoundedRect(img, rect, panelRadius, hudPanelColor)
		drawTextInRect(drawer, rect, fitText(face, line, rect.Dx()-16), hudTextPrimary)
	}

	geo := boardGeometry{origin: image.Point{X: sideMargin, Y: topMargin}, square: squareSize}
	geo.drawSquares(img)
	if err := geo.drawPieces(img, board); err != nil {
		return nil, err
	}
	geo.drawHighlight(img, board, opts.Highlight)
	geo.drawCoordinates(drawer, sideMargin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func bannerLines(opts RenderOptions) []string {
	var out []string
	for _, s := range []string{opts.Header, opts.Status} {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create board dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".board-*.png")
	if err != nil {
		return fmt.Errorf("create temp board: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write board: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var (
	backgroundColor         = color.RGBA{R: 22, G: 24, B: 33, A: 255}
	lightSquare             = color.RGBA{233, 207, 163, 255}
	darkSquare              = color.RGBA{187, 136, 96, 255}
	whiteMoveHighlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralHighlightArrow   = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	hudPanelColor           = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTextPrimary          = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordinateTextColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)
