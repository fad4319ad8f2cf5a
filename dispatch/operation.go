package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Operation is the pending result of work scheduled on a dispatcher
type Operation[T any] struct {
	d        *Dispatcher
	ctx      context.Context
	cancel   context.CancelFunc
	canceled atomic.Bool

	mu        sync.Mutex
	completed bool
	result    T
	err       error
	callbacks []func(T, error)
	done      chan struct{}
}

// Begin schedules work on d and returns its operation. The work receives a
// context that is cancelled by Cancel. If d is closed the operation
// completes immediately with ErrClosed.
func Begin[T any](d *Dispatcher, work func(ctx context.Context) (T, error)) *Operation[T] {
	ctx, cancel := context.WithCancel(context.Background())
	op := &Operation[T]{
		d:      d,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if err := d.Post(func() { op.execute(work) }); err != nil {
		var zero T
		op.finish(zero, err, false)
	}
	return op
}

// Cancel requests cooperative cancellation. Work that has not started is
// skipped; running work observes its context; completion reports
// ErrCanceled unless the operation had already completed.
func (op *Operation[T]) Cancel() {
	op.canceled.Store(true)
	op.cancel()
}

// IsCanceled reports whether Cancel was called
func (op *Operation[T]) IsCanceled() bool {
	return op.canceled.Load()
}

func (op *Operation[T]) execute(work func(ctx context.Context) (T, error)) {
	var zero T
	if op.canceled.Load() {
		op.finish(zero, ErrCanceled, true)
		return
	}

	result, err := op.protect(work)
	if op.canceled.Load() {
		result, err = zero, ErrCanceled
	}
	op.finish(result, err, true)
}

func (op *Operation[T]) protect(work func(ctx context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result, err = zero, fmt.Errorf("dispatch: work panicked: %v", r)
		}
	}()
	return work(op.ctx)
}

// finish records the terminal result. onDispatcher is true when called from
// the dispatcher goroutine, where callbacks run inline.
func (op *Operation[T]) finish(result T, err error, onDispatcher bool) {
	op.mu.Lock()
	if op.completed {
		op.mu.Unlock()
		return
	}
	op.completed = true
	op.result, op.err = result, err
	callbacks := op.callbacks
	op.callbacks = nil
	op.mu.Unlock()

	op.cancel()
	close(op.done)

	for _, cb := range callbacks {
		op.deliver(cb, onDispatcher)
	}
}

func (op *Operation[T]) deliver(cb func(T, error), onDispatcher bool) {
	result, err := op.result, op.err
	if onDispatcher {
		op.d.invoke(func() { cb(result, err) })
		return
	}
	if postErr := op.d.Post(func() { cb(result, err) }); postErr != nil {
		// the dispatcher is gone; run the continuation on the caller
		cb(result, err)
	}
}

// OnCompleted registers a continuation that runs on the dispatcher once the
// operation completes. Registering after completion schedules it right away.
func (op *Operation[T]) OnCompleted(cb func(T, error)) {
	if cb == nil {
		return
	}
	op.mu.Lock()
	if !op.completed {
		op.callbacks = append(op.callbacks, cb)
		op.mu.Unlock()
		return
	}
	op.mu.Unlock()
	op.deliver(cb, false)
}

// Done is closed when the operation completes
func (op *Operation[T]) Done() <-chan struct{} {
	return op.done
}

// Completed reports whether the operation has a terminal result
func (op *Operation[T]) Completed() bool {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.completed
}

// Wait blocks until the operation completes or ctx is done. It must not be
// called from work running on the same dispatcher.
func (op *Operation[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-op.done:
		op.mu.Lock()
		defer op.mu.Unlock()
		return op.result, op.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
