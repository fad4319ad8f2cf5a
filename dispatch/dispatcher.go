// Package dispatch runs work sequentially on a single goroutine and exposes
// the results of scheduled work as cancellable operations.
//
// Everything posted to a Dispatcher runs in posting order on the
// dispatcher's goroutine, so state touched only from posted work needs no
// further locking. Operations report completion through callbacks that also
// run on the dispatcher, or through Wait for callers outside it.
package dispatch

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/internal/logging"
)

var (
	// ErrClosed is returned when posting to a closed dispatcher
	ErrClosed = errors.New("dispatcher closed")

	// ErrCanceled is the terminal error of a cancelled operation
	ErrCanceled = errors.New("operation canceled")
)

// Dispatcher drains an unbounded FIFO of work items on one goroutine
type Dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
	logger logrus.FieldLogger
}

// NewDispatcher starts a dispatcher. A nil logger discards output.
func NewDispatcher(logger logrus.FieldLogger) *Dispatcher {
	d := &Dispatcher{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logging.OrDiscard(logger),
	}
	go d.run()
	return d
}

// Post appends fn to the queue
func (d *Dispatcher) Post(fn func()) error {
	if fn == nil {
		return errors.New("dispatch: nil work item")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.queue = append(d.queue, fn)
	select {
	case d.wake <- struct{}{}:
	default:
	}
	d.mu.Unlock()
	return nil
}

// Close stops accepting work, runs what is already queued and waits for the
// dispatcher goroutine to exit. Work posted by queued items while closing
// is rejected. Close must not be called from posted work.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.wake)
	}
	d.mu.Unlock()
	<-d.done
}

// Done is closed once the dispatcher has drained its queue after Close
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		fn, ok := d.next()
		if !ok {
			if _, open := <-d.wake; !open && d.empty() {
				return
			}
			continue
		}
		d.invoke(fn)
	}
}

func (d *Dispatcher) next() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil, false
	}
	fn := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return fn, true
}

func (d *Dispatcher) empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue) == 0
}

// invoke runs one work item; a panic is logged and does not stop the loop
func (d *Dispatcher) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithField("panic", r).Error("dispatched work panicked")
		}
	}()
	fn()
}
