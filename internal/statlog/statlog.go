// Package statlog is the Search Engine's best-effort statistics sink: one
// event per decoder invocation, aggregated per run. Writes are fire-and-
// forget — a sink failure is dropped (BatchSink reports a dropped batch
// on stderr; Logger.Log discards the error silently), since
// statistics must never fail the search itself. Adapted from an audit
// package's access-log event shape, repointed from object-store access
// events to decoder-attempt events.
package statlog

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Event records one decoder attempt within a run: decoder name, run id,
// success, attempts, depth, and memory.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	RunID        string    `json:"run_id"`
	DecoderName  string    `json:"decoder_name"`
	Depth        int       `json:"depth"`
	Success      bool      `json:"success"`
	Attempts     int       `json:"attempts"`
	Duration     time.Duration `json:"duration_ns"`
	MemoryBytes  uint64    `json:"memory_bytes,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Writer is the interface a sink implements to persist events.
type Writer interface {
	WriteEvent(event *Event) error
}

// BatchWriter is implemented by sinks that can write a batch more
// efficiently than one-at-a-time.
type BatchWriter interface {
	WriteBatch(events []*Event) error
}

// Sink is a Writer that also owns resources requiring cleanup.
type Sink interface {
	Writer
	Close() error
}

// Logger records statistics events, keeping a bounded in-memory ring for
// introspection and forwarding to an external Writer.
type Logger struct {
	mu        sync.Mutex
	events    []*Event
	maxEvents int
	writer    Writer
}

// NewLogger returns a Logger that keeps at most maxEvents in memory and
// forwards each event to writer (or to stdout if writer is nil).
func NewLogger(maxEvents int, writer Writer) *Logger {
	if writer == nil {
		writer = &StdoutSink{}
	}
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &Logger{
		events:    make([]*Event, 0, maxEvents),
		maxEvents: maxEvents,
		writer:    writer,
	}
}

// Log records an event. Failures writing to the underlying sink are
// swallowed; the in-memory ring is always updated.
func (l *Logger) Log(event *Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer != nil {
		_ = l.writer.WriteEvent(event)
	}

	l.events = append(l.events, event)
	if len(l.events) > l.maxEvents {
		l.events = l.events[len(l.events)-l.maxEvents:]
	}
}

// LogAttempt is a convenience wrapper building an Event from the Search
// Engine's per-node-expansion bookkeeping.
func (l *Logger) LogAttempt(runID, decoderName string, depth, attempts int, success bool, duration time.Duration, err error) {
	event := &Event{
		Timestamp:   time.Now(),
		RunID:       runID,
		DecoderName: decoderName,
		Depth:       depth,
		Attempts:    attempts,
		Success:     success,
		Duration:    duration,
	}
	if err != nil {
		event.Error = err.Error()
	}
	l.Log(event)
}

// Events returns a copy of the events currently held in memory.
func (l *Logger) Events() []*Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Event, len(l.events))
	copy(out, l.events)
	return out
}

// Close releases the underlying sink's resources, if any.
func (l *Logger) Close() error {
	if closer, ok := l.writer.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// StdoutSink writes each event to stdout as a JSON line.
type StdoutSink struct{}

func (s *StdoutSink) WriteEvent(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal stat event: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
