package tail

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"b2ctail/internal/logentry"
	"b2ctail/internal/logging"
)

const (
	headerColor = "\x1b[36m"
	resetColor  = "\x1b[0m"
)

// ConsolePrinter writes each block under a dashed header naming the stream.
type ConsolePrinter struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsolePrinter writes to out. Headers are coloured when out is a
// terminal.
func NewConsolePrinter(out io.Writer) *ConsolePrinter {
	return &ConsolePrinter{out: out, color: logging.IsTerminal(out)}
}

// Emit prints one block.
func (p *ConsolePrinter) Emit(b Block) error {
	rule := strings.Repeat("-", len(b.Stream)+6)
	name := b.Stream
	if p.color {
		name = headerColor + name + resetColor
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "%s\n%s\n%s\n", rule, name, rule)
	buf.WriteString(logentry.Join(b.Entries))
	if !strings.HasSuffix(buf.String(), "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.out, buf.String())
	return err
}
