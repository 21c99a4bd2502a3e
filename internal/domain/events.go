package domain

import "fmt"

// EventType represents the kind of an input event
type EventType int

// Event types
const (
	EventKey EventType = iota + 1
	EventResize
	EventTaskDone
	EventQuit
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventTaskDone:
		return "task"
	case EventQuit:
		return "quit"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Callback runs on the main thread when a background task completes
type Callback func() error

// Event is one input event consumed by the control loop.
// Key is set for EventKey, Done for EventTaskDone and Err for EventError.
type Event struct {
	Type EventType
	Key  int
	Done Callback
	Err  error
}

// KeyEvent wraps a key code
func KeyEvent(code int) Event { return Event{Type: EventKey, Key: code} }

// ResizeEvent reports a terminal size change
func ResizeEvent() Event { return Event{Type: EventResize} }

// TaskDoneEvent carries a completion callback
func TaskDoneEvent(cb Callback) Event { return Event{Type: EventTaskDone, Done: cb} }

// QuitEvent ends the control loop normally
func QuitEvent() Event { return Event{Type: EventQuit} }

// ErrorEvent ends the control loop with err
func ErrorEvent(err error) Event { return Event{Type: EventError, Err: err} }

// Valid reports whether the payload matches the type
func (e Event) Valid() bool {
	switch e.Type {
	case EventKey, EventResize, EventQuit:
		return true
	case EventTaskDone:
		return e.Done != nil
	case EventError:
		return e.Err != nil
	}
	return false
}
