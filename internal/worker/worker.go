// Package worker runs blocking work off the main thread, one task at a time.
//
// Tasks are submitted through a single-slot mailbox: Send replaces any task that
// the worker has not picked up yet. Callers that need every submission to run
// must serialize on completion themselves.
package worker

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrStopped is returned by Send after the worker loop has ended
var ErrStopped = errors.New("worker: stopped")

// Task is a one-shot unit of blocking work
type Task struct {
	Name string
	Run  func() error
}

// terminate is the sentinel that ends the loop
var terminate = &Task{Name: "terminate"}

// Worker owns the mailbox and the goroutine that drains it
type Worker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *Task
	onError func(error)

	started bool
	stopped bool
	err     error
	done    chan struct{}
}

// New creates a worker. onError is called from the worker goroutine when a
// task fails; the worker stops afterwards.
func New(onError func(error)) *Worker {
	w := &Worker{
		onError: onError,
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Start spawns the worker goroutine
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.loop()
}

// Send places t in the mailbox, overwriting any task not yet picked up
func (w *Worker) Send(t Task) error {
	if t.Run == nil {
		return fmt.Errorf("worker: task %q has no body", t.Name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.pending == terminate {
		return ErrStopped
	}
	if w.pending != nil {
		log.Printf("worker: task %q replaced by %q", w.pending.Name, t.Name)
	}
	w.pending = &t
	w.cond.Signal()
	return nil
}

// Stop asks the loop to finish after the running task and waits for it.
// It returns the task error that stopped the worker, if any.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.started {
		w.stopped = true
		w.mu.Unlock()
		return nil
	}
	if !w.stopped {
		w.pending = terminate
		w.cond.Signal()
	}
	w.mu.Unlock()

	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		w.mu.Lock()
		for w.pending == nil {
			w.cond.Wait()
		}
		t := w.pending
		w.pending = nil
		if t == terminate {
			w.stopped = true
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		if err := t.Run(); err != nil {
			err = fmt.Errorf("task %s: %w", t.Name, err)
			w.mu.Lock()
			w.stopped = true
			w.err = err
			w.pending = nil
			w.mu.Unlock()
			if w.onError != nil {
				w.onError(err)
			}
			return
		}
	}
}
