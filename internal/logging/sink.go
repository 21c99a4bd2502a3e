package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultCapacity matches the size of the on-screen log area
const DefaultCapacity = 4096

// Sink buffers diagnostics until the control loop takes them for display.
// Text past capacity is dropped; the first overflow is reported to the
// fallback writer.
type Sink struct {
	mu       sync.Mutex
	buf      []byte
	capacity int
	full     bool
	fallback io.Writer
}

// NewSink creates a sink holding at most capacity bytes
func NewSink(capacity int) *Sink {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sink{
		buf:      make([]byte, 0, capacity),
		capacity: capacity,
		fallback: os.Stderr,
	}
}

// SetFallback replaces the writer that receives overflow notices
func (s *Sink) SetFallback(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = w
}

// Write appends p, truncating at capacity. It never fails so it can sit
// behind io.MultiWriter next to the log file.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.capacity - len(s.buf)
	if len(p) > room {
		s.buf = append(s.buf, p[:room]...)
		if !s.full && s.fallback != nil {
			fmt.Fprintln(s.fallback, "log buffer full")
		}
		s.full = true
		return len(p), nil
	}
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// Take returns everything buffered so far and clears the sink
func (s *Sink) Take() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return ""
	}
	out := string(s.buf)
	s.buf = s.buf[:0]
	s.full = false
	return out
}

// Len returns the number of buffered bytes
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}
