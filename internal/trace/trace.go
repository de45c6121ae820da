// Package trace provides a default TraceWriter implementation: messages are
// buffered in memory (so tests can assert on them) and, if a logger is
// attached, mirrored to it at Debug (info) and Trace (verbose) level.
package trace

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Entry is one recorded trace line.
type Entry struct {
	Verbose bool
	Message string
}

// BufferedWriter satisfies pkg/condexpr.TraceWriter (and, transitively,
// value.TraceSink): Info and Verbose append to an in-memory log instead of
// writing straight to a stream, so a caller can inspect it after evaluation.
type BufferedWriter struct {
	mu      sync.Mutex
	entries []Entry
	logger  *logrus.Logger
}

// NewBufferedTraceWriter creates a BufferedWriter. logger may be nil, in
// which case entries are only buffered, never forwarded.
func NewBufferedTraceWriter(logger *logrus.Logger) *BufferedWriter {
	return &BufferedWriter{logger: logger}
}

func (w *BufferedWriter) Info(msg string) {
	w.record(Entry{Verbose: false, Message: msg})
	if w.logger != nil {
		w.logger.Debug(msg)
	}
}

func (w *BufferedWriter) Verbose(msg string) {
	w.record(Entry{Verbose: true, Message: msg})
	if w.logger != nil {
		w.logger.Trace(msg)
	}
}

func (w *BufferedWriter) record(e Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
}

// Entries returns a copy of every recorded line, in order.
func (w *BufferedWriter) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Lines returns only the Message field of every entry, in order, the form
// most tests want to assert against.
func (w *BufferedWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.Message
	}
	return out
}

// Reset discards all recorded entries.
func (w *BufferedWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = nil
}
