// Package boardview draws the board for the terminal client. Renderers only
// display positions; the coordinator decides which position is authoritative.
package boardview

import "errors"

// Renderer is the board widget contract: show a position, optionally animated,
// and adapt to a new display size.
type Renderer interface {
	Position(fen string, animate bool) error
	Resize()
}

// Highlighter is implemented by renderers that can mark the last move.
type Highlighter interface {
	Highlight(from, to string)
}

// Captioner is implemented by renderers that show a header and status line.
type Captioner interface {
	Caption(header, status string)
}

// MoveHighlight marks origin and destination of the last move.
type MoveHighlight struct {
	From string
	To   string
}

type multi []Renderer

// Multi fans every call out to all renderers. Position returns the joined errors.
func Multi(renderers ...Renderer) Renderer {
	out := make(multi, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multi) Position(fen string, animate bool) error {
	var errs []error
	for _, r := range m {
		if err := r.Position(fen, animate); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Resize() {
	for _, r := range m {
		r.Resize()
	}
}

func (m multi) Highlight(from, to string) {
	for _, r := range m {
		if h, ok := r.(Highlighter); ok {
			h.Highlight(from, to)
		}
	}
}

func (m multi) Caption(header, status string) {
	for _, r := range m {
		if c, ok := r.(Captioner); ok {
			c.Caption(header, status)
		}
	}
}
