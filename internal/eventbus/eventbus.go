package eventbus

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"subs/internal/domain"
)

var (
	// ErrClosed is returned when publishing to a closed bus
	ErrClosed = errors.New("eventbus: closed")
	// ErrMalformed marks a record that is not a valid loopback event
	ErrMalformed = errors.New("eventbus: malformed record")
)

// DefaultCapacity is the number of records that can be in flight
const DefaultCapacity = 64

// Bus carries events from any goroutine into the main thread's event stream.
// Only task completions, quit and error records travel through it.
type Bus struct {
	mu        sync.RWMutex
	eventChan chan domain.Event
	quit      chan struct{}
	closeOnce sync.Once
	closed    bool
}

// New creates a new loopback bus
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		eventChan: make(chan domain.Event, capacity),
		quit:      make(chan struct{}),
	}
}

// Publish queues an event, blocking while the bus is full
func (b *Bus) Publish(event domain.Event) error {
	switch event.Type {
	case domain.EventTaskDone, domain.EventQuit, domain.EventError:
	default:
		return fmt.Errorf("%w: %s", ErrMalformed, event.Type)
	}
	if !event.Valid() {
		return fmt.Errorf("%w: %s without payload", ErrMalformed, event.Type)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	select {
	case b.eventChan <- event:
		return nil
	case <-b.quit:
		return ErrClosed
	}
}

// Events returns the receive side; it is closed by Close
func (b *Bus) Events() <-chan domain.Event {
	return b.eventChan
}

// Close stops the bus. Blocked publishers return ErrClosed and
// queued records are dropped.
func (b *Bus) Close() {
	b.closeOnce.Do(b.close)
}

func (b *Bus) close() {
	close(b.quit)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	dropped := 0
	for {
		select {
		case <-b.eventChan:
			dropped++
			continue
		default:
		}
		break
	}
	if dropped > 0 {
		log.Printf("eventbus: dropped %d records on close", dropped)
	}
	close(b.eventChan)
}
