// Package consolepresenter prints coordinator results to the terminal.
package consolepresenter

import (
	"io"
	"os"
	"strings"
	"sync"
)

// Presenter writes formatted blocks without coupling the prompt loop to the formatter.
type Presenter struct {
	mu     sync.Mutex
	out    io.Writer
	Format *Formatter
}

func NewPresenter(out io.Writer) *Presenter {
	if out == nil {
		out = os.Stdout
	}
	return &Presenter{out: out, Format: NewFormatter()}
}

// Print writes message followed by a newline; blank messages are skipped.
func (p *Presenter) Print(message string) error {
	if p == nil {
		return nil
	}
	if strings.TrimSpace(message) == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.out, strings.TrimRight(message, "\n")+"\n")
	return err
}

// Lines prints each entry on its own line, used for the debug view.
func (p *Presenter) Lines(lines []string) error {
	if len(lines) == 0 {
		return p.Print("(no log lines yet)")
	}
	return p.Print(strings.Join(lines, "\n"))
}
