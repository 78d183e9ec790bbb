package utils

import (
	"context"
	"sync"
)

// Task is one unit of work fanned out by SemaphoreGatherWithResults.
type Task[T any] func(ctx context.Context) (T, error)

// SemaphoreGatherWithResults runs tasks concurrently, at most maxConcurrency at a time,
// and returns their results and errors indexed like tasks. Tasks that never acquire the
// semaphore because ctx is done report ctx.Err(). Panics are recovered as PanicError.
func SemaphoreGatherWithResults[T any](ctx context.Context, maxConcurrency int, tasks ...Task[T]) ([]T, []error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = GetSemaphoreLimit()
	}

	semaphore := make(chan struct{}, maxConcurrency)
	results := make([]T, len(tasks))
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, task Task[T]) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				errs[index] = err
			})

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			}

			results[index], errs[index] = task(ctx)
		}(i, task)
	}

	wg.Wait()
	return results, errs
}

// Gather is SemaphoreGatherWithResults for callers that need every task to succeed.
// It returns the error of the lowest-indexed failing task, if any.
func Gather[T any](ctx context.Context, maxConcurrency int, tasks ...Task[T]) ([]T, error) {
	results, errs := SemaphoreGatherWithResults(ctx, maxConcurrency, tasks...)
	if err := FirstError(errs); err != nil {
		return nil, err
	}
	return results, nil
}

// SemaphoreGather runs functions that only report errors, at most maxConcurrency at
// a time, and returns the first error by index.
func SemaphoreGather(ctx context.Context, maxConcurrency int, functions ...func(ctx context.Context) error) error {
	tasks := make([]Task[struct{}], len(functions))
	for i, fn := range functions {
		fn := fn
		tasks[i] = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		}
	}
	_, errs := SemaphoreGatherWithResults(ctx, maxConcurrency, tasks...)
	return FirstError(errs)
}

// FirstError returns the first non-nil error in errs.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Worker processes one item of a WorkerPool.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// WorkerPool runs a worker over a slice of items with a fixed number of goroutines.
//
// Workers are started by ProcessItems and exit once the items are drained or the
// context is cancelled; ProcessItems blocks until all of them return. Items left
// unprocessed after cancellation report ctx.Err().
type WorkerPool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool[T any, R any](numWorkers int, worker Worker[T, R]) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = GetSemaphoreLimit()
	}
	return &WorkerPool[T, R]{
		numWorkers: numWorkers,
		worker:     worker,
	}
}

// ProcessItems processes items and returns results and errors indexed like items.
func (wp *WorkerPool[T, R]) ProcessItems(ctx context.Context, items []T) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	type job struct {
		index int
		item  T
	}
	jobs := make(chan job, len(items))
	for i, item := range items {
		jobs <- job{index: i, item: item}
	}
	close(jobs)

	results := make([]R, len(items))
	errs := make([]error, len(items))
	done := make([]bool, len(items))
	var wg sync.WaitGroup

	workers := wp.numWorkers
	if workers > len(items) {
		workers = len(items)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					func() {
						defer RecoverWithCallback(func(err error) {
							errs[j.index] = err
						})
						results[j.index], errs[j.index] = wp.worker(ctx, j.item)
					}()
					done[j.index] = true
				}
			}
		}()
	}

	wg.Wait()
	for i := range items {
		if !done[i] && errs[i] == nil {
			errs[i] = ctx.Err()
		}
	}
	return results, errs
}
