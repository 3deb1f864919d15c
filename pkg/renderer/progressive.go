package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveRaytracer refines an image over several passes. The first pass renders every
// RowStep-th row, each later pass halves the step, and the last pass fills every row.
type ProgressiveRaytracer struct {
	raytracer *Raytracer
	canvas    *Canvas
	rendered  []bool      // Image rows already rendered by an earlier pass
	stats     RenderStats // Cumulative over completed passes
	logger    core.Logger // Logger for rendering output
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber  int
	TotalPasses int
	RowStep     int     // Row step this pass completed
	Canvas      *Canvas // Snapshot owned by the receiver
	Stats       RenderStats
	IsLast      bool
}

// NewProgressiveRaytracer creates a new progressive raytracer around a configured raytracer
func NewProgressiveRaytracer(raytracer *Raytracer, logger core.Logger) *ProgressiveRaytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &ProgressiveRaytracer{
		raytracer: raytracer,
		logger:    logger,
	}
}

// PassRowSteps returns the row step of every pass: rowStep, rowStep/2, ..., 1
func PassRowSteps(rowStep int) []int {
	steps := []int{max(rowStep, 1)}
	for step := rowStep / 2; step >= 1; step /= 2 {
		steps = append(steps, step)
	}
	return steps
}

// RenderPass renders the rows of step that no earlier pass covered and returns a snapshot
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, step int) (*Canvas, RenderStats, error) {
	config := pr.raytracer.config
	if pr.canvas == nil {
		pr.canvas = NewCanvas(config.Width, config.Height)
		pr.rendered = make([]bool, config.Height)
		pr.stats = RenderStats{TotalPixels: config.Width * config.Height}
	}

	var rows []int
	for _, row := range rowsForStep(config.Height, step) {
		if !pr.rendered[row] {
			rows = append(rows, row)
		}
	}

	passStats, err := pr.raytracer.renderRows(ctx, pr.canvas, rows)
	if err != nil {
		return nil, RenderStats{}, err
	}
	for _, row := range rows {
		pr.rendered[row] = true
	}

	pr.stats.merge(passStats)
	pr.stats.finalize()

	return pr.canvas.Clone(), pr.stats, nil
}

// RenderProgressive renders with channel-based communication (idiomatic Go)
// Returns channels for events. The caller should read from these channels in separate goroutines.
// Both channels are closed when rendering stops; at most one error is sent.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		if err := pr.raytracer.validate(); err != nil {
			errChan <- err
			return
		}

		steps := PassRowSteps(pr.raytracer.config.RowStep)
		pr.logger.Printf("Starting progressive rendering with %d passes (using %d workers)...\n",
			len(steps), pr.raytracer.workerPool.GetNumWorkers())

		for i, step := range steps {
			pass := i + 1

			// Check if client disconnected before starting this pass
			select {
			case <-ctx.Done():
				core.LogError(pr.logger, "Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()

			canvas, stats, err := pr.RenderPass(ctx, step)
			if err != nil {
				core.LogError(pr.logger, "Pass %d failed: %v\n", pass, err)
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (row step %d, %d/%d rows)\n",
				pass, time.Since(startTime), step, stats.RenderedRows, canvas.Height())

			result := PassResult{
				PassNumber:  pass,
				TotalPasses: len(steps),
				RowStep:     step,
				Canvas:      canvas,
				Stats:       stats,
				IsLast:      pass == len(steps),
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, errChan
}
