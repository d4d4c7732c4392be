package boardview

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"regexp"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

// pieces rasterises the embedded SVG set on demand, one image per code and size.
var pieces = &pieceSet{fs: pieceFiles, dir: "assets/pieces", images: map[pieceKey]*image.RGBA{}}

type pieceKey struct {
	code string
	size int
}

type pieceSet struct {
	fs  embed.FS
	dir string

	mu     sync.RWMutex
	images map[pieceKey]*image.RGBA
}

func (s *pieceSet) image(code string, size int) (image.Image, error) {
	if code == "" || size <= 0 {
		return nil, fmt.Errorf("piece image: code=%q size=%d", code, size)
	}
	key := pieceKey{code: code, size: size}

	s.mu.RLock()
	img, ok := s.images[key]
	s.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err := s.rasterize(code, size)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	// 동시에 그린 경우 먼저 들어간 것을 쓴다
	if prev, ok := s.images[key]; ok {
		img = prev
	} else {
		s.images[key] = img
	}
	s.mu.Unlock()
	return img, nil
}

func (s *pieceSet) rasterize(code string, size int) (*image.RGBA, error) {
	name := s.dir + "/" + code + ".svg"
	data, err := s.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(normalizeSVGStyle(data)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.W, icon.ViewBox.H = float64(size), float64(size)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}

// oksvg only understands "prop:#rrggbb"; the asset set has spaces and missing hashes.
var svgColorProp = regexp.MustCompile(`(fill|stroke|stop-color):\s*#?([0-9a-fA-F]{6})\b`)

func normalizeSVGStyle(svg []byte) []byte {
	return svgColorProp.ReplaceAll(svg, []byte("$1:#$2"))
}
