// Package async provides Future, the suspending result type used by the
// asynchronous repository protocol and service.
//
// A Future is resolved exactly once. Await blocks until it resolves or the
// caller's context is done, whichever comes first:
//
//	f := async.Go(ctx, func(ctx context.Context) (*user.Principal, error) {
//		return repo.GetByID(ctx, id)
//	})
//	p, err := f.Await(ctx)
package async

import (
	"context"
	"fmt"
)

// Future is a value of type T that becomes available later.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Go runs fn on a new goroutine and returns its future result.
// A panic in fn resolves the future with an error instead of crashing.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		var (
			val T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				val, err = zero, fmt.Errorf("async: panic: %v", r)
			}
			f.resolve(val, err)
		}()
		val, err = fn(ctx)
	}()
	return f
}

// Resolved returns a future already holding val.
func Resolved[T any](val T) *Future[T] {
	f := newFuture[T]()
	f.resolve(val, nil)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](err error) *Future[T] {
	var zero T
	f := newFuture[T]()
	f.resolve(zero, err)
	return f
}

// Done is closed once the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await returns the resolved value, or ctx.Err() if ctx ends first.
// Abandoning a future does not cancel the work behind it.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains fn onto f. fn runs only if f succeeds; errors short-circuit.
func Then[T, U any](ctx context.Context, f *Future[T], fn func(context.Context, T) (U, error)) *Future[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		v, err := f.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(ctx, v)
	})
}
