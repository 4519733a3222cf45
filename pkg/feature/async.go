package feature

import (
	"context"
	"sync"
)

// AsyncValue is the eventual outcome of a load. It settles exactly once and
// is safe for concurrent readers.
type AsyncValue[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newAsyncValue[T any]() *AsyncValue[T] {
	return &AsyncValue[T]{done: make(chan struct{})}
}

func (a *AsyncValue[T]) settle(value T, err error) {
	a.once.Do(func() {
		a.value = value
		a.err = err
		close(a.done)
	})
}

// Done is closed when the value settles.
func (a *AsyncValue[T]) Done() <-chan struct{} {
	return a.done
}

func (a *AsyncValue[T]) Settled() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Value returns the settled value, or the zero value while pending or
// after a failure.
func (a *AsyncValue[T]) Value() T {
	var zero T
	if !a.Settled() || a.err != nil {
		return zero
	}
	return a.value
}

// Err returns the settled failure, or nil while pending.
func (a *AsyncValue[T]) Err() error {
	if !a.Settled() {
		return nil
	}
	return a.err
}

// Wait blocks until the value settles. Cancelling ctx stops the wait only;
// the underlying load keeps running and its outcome is still recorded.
func (a *AsyncValue[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-a.done:
		return a.value, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
