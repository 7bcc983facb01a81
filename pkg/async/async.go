package async

import (
	"context"
	"errors"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await waits for the function to complete and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext waits like Await but returns ctx.Err() if ctx ends first.
// The underlying goroutine keeps running until fn returns.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// IsComplete reports whether the function has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes fn(ctx, param) in a new goroutine and returns its Future.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	if fn == nil {
		f.err = ErrNilFunc
		close(f.done)
		return f
	}

	go func() {
		defer close(f.done)

		// Skip the work entirely when the caller already gave up.
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// WaitAll waits for every future and returns their results in order.
// Errors from all futures are joined; results of failed futures are zero.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))
	var errs []error

	for i, future := range futures {
		result, err := future.Await()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results[i] = result
	}

	return results, errors.Join(errs...)
}

// Map calls fn for every item concurrently and waits for all of them.
func Map[T any, U any](ctx context.Context, items []T, fn func(context.Context, T) (U, error)) ([]U, error) {
	futures := make([]*Future[U], len(items))
	for i, item := range items {
		futures[i] = Async(ctx, item, fn)
	}
	return WaitAll(futures...)
}
