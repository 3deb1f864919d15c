package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RowTask represents one image row to render
type RowTask struct {
	TaskID int // Index into the result slice
	Row    int // Image row, 0 is the top
}

// RowResult contains the result from rendering a row
type RowResult struct {
	TaskID int
	Stats  RenderStats
}

// WorkerPool runs row tasks on a fixed number of goroutines
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool; numWorkers <= 0 uses the CPU count
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run hands tasks to the workers and collects one result per task, ordered by TaskID.
// The context is checked before each row starts; a row in progress always completes.
func (wp *WorkerPool) Run(ctx context.Context, tasks []RowTask, render func(RowTask) RowResult) ([]RowResult, error) {
	results := make([]RowResult, len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	taskQueue := make(chan RowTask)

	g.Go(func() error {
		defer close(taskQueue)
		for _, task := range tasks {
			select {
			case taskQueue <- task:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < wp.numWorkers; i++ {
		g.Go(func() error {
			for task := range taskQueue {
				if err := ctx.Err(); err != nil {
					return err
				}
				// Each task owns its slot
				results[task.TaskID] = render(task)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
