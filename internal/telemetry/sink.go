package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Sink receives emitted events. Emission is fire-and-forget from the save
// path's point of view: the producer logs sink errors but never fails on
// them.
type Sink interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// JSONLSink appends one JSON object per event to a file.
type JSONLSink struct {
	mu sync.Mutex
	f  *os.File
}

// NewJSONLSink opens (or creates) the events file in append mode.
func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	return &JSONLSink{f: f}, nil
}

func (s *JSONLSink) Emit(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (s *JSONLSink) Close() error {
	return s.f.Close()
}

// StdoutSink writes events to standard output, one JSON object per line.
type StdoutSink struct {
	mu sync.Mutex
}

func NewStdoutSink() *StdoutSink { return &StdoutSink{} }

func (s *StdoutSink) Emit(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = fmt.Println(string(data))
	return err
}

func (s *StdoutSink) Close() error { return nil }

// Recorder is an in-memory sink for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
