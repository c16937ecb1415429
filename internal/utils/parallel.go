package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultFanOut bounds the number of concurrent reads issued for one request.
const DefaultFanOut = 16

// Task is a unit of work run by RunTasks.
type Task func(ctx context.Context) error

// RunTasks executes tasks concurrently, at most limit at a time, and waits
// for all of them. A limit of 1 runs them one after another in the order
// given and a limit below 1 means no limit. The first error cancels the
// context handed to the remaining tasks and is returned.
func RunTasks(ctx context.Context, limit int, tasks ...Task) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			return task(ctx)
		})
	}
	return g.Wait()
}

// ForEach calls fn for every index in [0, n) with at most limit calls in
// flight. A limit below 1 means DefaultFanOut.
func ForEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if limit < 1 {
		limit = DefaultFanOut
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
