package obslog

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// Ring is a zapcore.Core that keeps the last N encoded entries in memory.
// The interactive client prints it on demand as a debug view.
type Ring struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
	buf *ringBuffer
}

type ringBuffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func NewRing(size int, enc zapcore.Encoder, level zapcore.LevelEnabler) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{
		LevelEnabler: level,
		enc:          enc,
		buf:          &ringBuffer{lines: make([]string, size)},
	}
}

func (r *Ring) With(fields []zapcore.Field) zapcore.Core {
	clone := r.enc.Clone()
	for i := range fields {
		fields[i].AddTo(clone)
	}
	return &Ring{LevelEnabler: r.LevelEnabler, enc: clone, buf: r.buf}
}

func (r *Ring) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if r.Enabled(ent.Level) {
		return ce.AddCore(ent, r)
	}
	return ce
}

func (r *Ring) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	b, err := r.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	line := strings.TrimRight(b.String(), "\n")
	b.Free()
	r.buf.add(line)
	return nil
}

func (r *Ring) Sync() error { return nil }

// Lines returns buffered entries oldest first.
func (r *Ring) Lines() []string {
	if r == nil {
		return nil
	}
	return r.buf.snapshot()
}

func (b *ringBuffer) add(line string) {
	b.mu.Lock()
	b.lines[b.next] = line
	b.next = (b.next + 1) % len(b.lines)
	if b.next == 0 {
		b.full = true
	}
	b.mu.Unlock()
}

func (b *ringBuffer) snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		out := make([]string, b.next)
		copy(out, b.lines[:b.next])
		return out
	}
	out := make([]string, 0, len(b.lines))
	out = append(out, b.lines[b.next:]...)
	out = append(out, b.lines[:b.next]...)
	return out
}
