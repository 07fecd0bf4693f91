// Package worker runs independent per-item tasks on a bounded pool.
//
// Tasks are pure: they receive private inputs and return private outputs.
// The caller consumes results from its own goroutine, in submission order,
// and is the only one allowed to touch shared state.
package worker

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of tasks running at once.
type Pool struct {
	g     errgroup.Group
	limit int
}

// New creates a pool running at most limit tasks concurrently.
// A non-positive limit uses GOMAXPROCS.
func New(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	p := &Pool{limit: limit}
	p.g.SetLimit(limit)
	return p
}

// Limit returns the concurrency limit.
func (p *Pool) Limit() int {
	return p.limit
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	_ = p.g.Wait()
}

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit schedules fn on the pool. It blocks while the pool is full.
// A panicking task resolves its future with an error.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	p.g.Go(func() error {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		f.value, f.err = fn()
		// task errors belong to the future, never to the group
		return nil
	})
	return f
}

// Await blocks until the task finishes or ctx is done. Abandoning a future
// does not stop its task.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result is the outcome of one mapped item.
type Result[T any] struct {
	Value T
	Err   error
}

// Map runs fn for every input and returns the results in input order.
// A failing item does not affect the others.
func Map[In, Out any](ctx context.Context, p *Pool, inputs []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	futures := make([]*Future[Out], len(inputs))
	for i, in := range inputs {
		futures[i] = Submit(p, func() (Out, error) {
			if err := ctx.Err(); err != nil {
				var zero Out
				return zero, err
			}
			return fn(ctx, in)
		})
	}
	results := make([]Result[Out], len(inputs))
	for i, f := range futures {
		v, err := f.Await(context.WithoutCancel(ctx))
		results[i] = Result[Out]{Value: v, Err: err}
	}
	return results
}
