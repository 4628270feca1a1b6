package parserutil

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one independent fetch. It must honour ctx cancellation.
type Task struct {
	Name string
	// Timeout bounds this task alone; zero means only the parent ctx applies.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// RunTasks starts every task in its own goroutine, each under its own
// deadline, and blocks until all of them return. Errors are reported per task
// (by index) and never cancel siblings.
func RunTasks(ctx context.Context, tasks ...Task) []error {
	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()

			taskCtx, cancel := CreateTaskContext(ctx, t.Timeout)
			defer cancel()

			start := time.Now()
			err := t.Run(taskCtx)
			if err == nil {
				err = taskCtx.Err()
			}
			errs[i] = err
			if err != nil {
				slog.Warn("Task failed", "task", t.Name, "duration", time.Since(start), "error", err)
			} else {
				slog.Debug("Task finished", "task", t.Name, "duration", time.Since(start))
			}
		}(i, t)
	}
	wg.Wait()
	return errs
}

// CreateTaskContext creates a context for one task with optional timeout.
func CreateTaskContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
