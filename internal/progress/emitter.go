package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Emitter receives per-task events from the download engine.
//
// Progress carries the overall completion percentage (0-100) for one task.
// Message carries a human-readable status line. Both may be called from
// concurrent workers; implementations must be safe for concurrent use.
type Emitter interface {
	Progress(taskID, name string, percent float64)
	Message(taskID, text string)
}

// Console renders messages as status lines on a writer.
//
// Progress events are not rendered separately: the engine embeds the
// percentage in its message stream, so a plain terminal only needs the
// messages. A richer front-end consumes Progress directly.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console emitter. If out is nil, os.Stdout is used.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Progress(taskID, name string, percent float64) {}

func (c *Console) Message(taskID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.HasPrefix(text, "\r") {
		fmt.Fprint(c.out, text)
		return
	}
	fmt.Fprintln(c.out, text)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Progress(taskID, name string, percent float64) {}
func (Nop) Message(taskID, text string)                   {}
