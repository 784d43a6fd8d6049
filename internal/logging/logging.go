// Package logging configures the application logger and the in-memory
// sink that backs the UI log tab.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// New returns the application logger. Output goes to a human-readable
// console writer on stderr and, when sink is non-nil, to the sink as well.
// The sink receives the same console-formatted lines so the UI log tab
// matches the terminal.
func New(verbose bool, sink io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}

	var out io.Writer = console
	if sink != nil {
		sinkConsole := zerolog.ConsoleWriter{Out: sink, TimeFormat: time.TimeOnly, NoColor: true}
		out = zerolog.MultiLevelWriter(console, sinkConsole)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// RingWriter is a bounded, thread-safe text buffer. Writes beyond the
// capacity evict the oldest lines. An optional callback fires after each
// write so the UI can refresh.
type RingWriter struct {
	mu       sync.Mutex
	lines    []string
	partial  []byte
	capacity int
	onWrite  func()
}

// NewRingWriter creates a RingWriter holding at most capacity lines.
func NewRingWriter(capacity int) *RingWriter {
	if capacity <= 0 {
		capacity = 500
	}
	return &RingWriter{capacity: capacity}
}

// OnWrite registers a callback invoked after each completed write.
// The callback runs outside the writer's lock.
func (w *RingWriter) OnWrite(fn func()) {
	w.mu.Lock()
	w.onWrite = fn
	w.mu.Unlock()
}

// Write implements io.Writer. Input is split on newlines; an unterminated
// tail is buffered until the next write completes it.
func (w *RingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.partial = append(w.partial, p...)
	for {
		idx := -1
		for i, b := range w.partial {
			if b == '\n' {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		w.lines = append(w.lines, string(w.partial[:idx]))
		w.partial = w.partial[idx+1:]
	}
	if over := len(w.lines) - w.capacity; over > 0 {
		w.lines = w.lines[over:]
	}
	fn := w.onWrite
	w.mu.Unlock()

	if fn != nil {
		fn()
	}
	return len(p), nil
}

// String returns the buffered lines joined by newlines.
func (w *RingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := ""
	for i, line := range w.lines {
		if i > 0 {
			out += "\n"
		}
		out += line
	}
	return out
}

// Clear drops all buffered lines.
func (w *RingWriter) Clear() {
	w.mu.Lock()
	w.lines = nil
	w.partial = nil
	w.mu.Unlock()
}
