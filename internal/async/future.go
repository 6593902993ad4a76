// Package async provides a single-value future for callers that do not
// want to block on a pipeline call or a sync.
package async

import "context"

// Future holds the eventual result of one operation.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Run starts fn in a new goroutine and returns its future.
// Cancellation is the caller's business: ctx is passed to fn unchanged.
func Run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is ready or ctx ends.
// A ctx that ends first does not stop the operation itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the result is ready.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.value, f.err
}
