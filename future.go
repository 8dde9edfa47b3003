package bluelist

import (
	"context"
	"fmt"
)

// Result is the terminal outcome of an asynchronous backend call: either a
// value or an error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

// Future is a backend call in flight. It settles exactly once.
type Future[T any] struct {
	done chan struct{}
	res  Result[T]
}

// Go runs fn on its own goroutine and returns a Future for its outcome.
// A panic inside fn settles the Future with ErrInternal.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.res = Result[T]{Value: zero, Err: fmt.Errorf("backend call panicked: %v: %w", r, ErrInternal)}
			}
		}()
		v, err := fn()
		f.res = Result[T]{Value: v, Err: err}
	}()
	return f
}

// Resolved returns an already settled successful Future.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), res: Result[T]{Value: v}}
	close(f.done)
	return f
}

// Failed returns an already settled failed Future.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), res: Result[T]{Err: err}}
	close(f.done)
	return f
}

// Done is closed once the Future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx ends, whichever comes first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.res.Value, f.res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the Future settles and returns its outcome.
func (f *Future[T]) Result() Result[T] {
	<-f.done
	return f.res
}

// Then chains a dependent call onto f. next runs only when f succeeds; an
// error from f settles the returned Future without calling next.
func Then[T, U any](ctx context.Context, f *Future[T], next func(T) *Future[U]) *Future[U] {
	return Go(func() (U, error) {
		v, err := f.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return next(v).Await(ctx)
	})
}
