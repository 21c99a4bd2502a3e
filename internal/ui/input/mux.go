package input

import (
	"errors"
	"fmt"

	"subs/internal/domain"
	"subs/internal/eventbus"
)

// ErrInputClosed is returned when the terminal stops delivering keys
var ErrInputClosed = errors.New("input: key source closed")

// Multiplexer merges the three event sources of the control loop
type Multiplexer struct {
	keys     <-chan int
	resized  <-chan struct{}
	loopback <-chan domain.Event
}

// NewMultiplexer creates a multiplexer over a key source, a resize
// notification source and the loopback bus
func NewMultiplexer(keys <-chan int, resized <-chan struct{}, bus *eventbus.Bus) *Multiplexer {
	return &Multiplexer{
		keys:     keys,
		resized:  resized,
		loopback: bus.Events(),
	}
}

// Next blocks until one event is available and returns it. When several
// sources are ready, loopback records win over resizes and resizes over keys.
// Failures are reported as Error events.
func (m *Multiplexer) Next() domain.Event {
	select {
	case ev, ok := <-m.loopback:
		return m.record(ev, ok)
	default:
	}
	select {
	case _, ok := <-m.resized:
		if ok {
			return domain.ResizeEvent()
		}
		m.resized = nil
	default:
	}

	for {
		select {
		case ev, ok := <-m.loopback:
			return m.record(ev, ok)
		case _, ok := <-m.resized:
			if !ok {
				// no more resizes, keep waiting on the other sources
				m.resized = nil
				continue
			}
			return domain.ResizeEvent()
		case code, ok := <-m.keys:
			if !ok {
				return domain.ErrorEvent(ErrInputClosed)
			}
			return domain.KeyEvent(code)
		}
	}
}

func (m *Multiplexer) record(ev domain.Event, ok bool) domain.Event {
	if !ok {
		return domain.ErrorEvent(eventbus.ErrClosed)
	}
	switch ev.Type {
	case domain.EventTaskDone, domain.EventQuit, domain.EventError:
		if ev.Valid() {
			return ev
		}
	}
	return domain.ErrorEvent(fmt.Errorf("%w: %s", eventbus.ErrMalformed, ev.Type))
}
