package renderer

import (
	"context"
	"fmt"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/integrator"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// defaultSeed is used when no seed is set
const defaultSeed = 42

// Raytracer handles the rendering process
type Raytracer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	config     scene.SamplingConfig
	workerPool *WorkerPool
	seed       int64
}

// NewRaytracer creates a raytracer for the scene using its own sampling config
func NewRaytracer(s *scene.Scene) *Raytracer {
	return &Raytracer{
		scene:      s,
		integrator: integrator.NewPathTracingIntegrator(s),
		config:     s.SamplingConfig,
		workerPool: NewWorkerPool(0),
		seed:       defaultSeed,
	}
}

// SetSamplingConfig replaces the render request
func (rt *Raytracer) SetSamplingConfig(config scene.SamplingConfig) {
	rt.config = config
}

// SamplingConfig returns the current render request
func (rt *Raytracer) SamplingConfig() scene.SamplingConfig {
	return rt.config
}

// SetWorkers sets the number of parallel workers; n <= 0 uses the CPU count
func (rt *Raytracer) SetWorkers(n int) {
	rt.workerPool = NewWorkerPool(n)
}

// SetSeed sets the base seed; each row derives its own generator from it
func (rt *Raytracer) SetSeed(seed int64) {
	rt.seed = seed
}

// SetIntegrator swaps the light transport algorithm
func (rt *Raytracer) SetIntegrator(i integrator.Integrator) {
	rt.integrator = i
}

// Render renders every RowStep-th image row starting at the top; other rows stay black.
// The result depends only on the scene, the sampling config and the seed.
func (rt *Raytracer) Render(ctx context.Context) (*Canvas, RenderStats, error) {
	if err := rt.validate(); err != nil {
		return nil, RenderStats{}, err
	}

	canvas := NewCanvas(rt.config.Width, rt.config.Height)
	stats, err := rt.renderRows(ctx, canvas, rowsForStep(rt.config.Height, rt.config.RowStep))
	if err != nil {
		return nil, RenderStats{}, err
	}
	return canvas, stats, nil
}

func (rt *Raytracer) validate() error {
	if err := rt.config.Validate(); err != nil {
		return err
	}
	if err := rt.scene.Validate(); err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}
	return nil
}

// renderRows renders the given image rows into canvas in parallel
func (rt *Raytracer) renderRows(ctx context.Context, canvas *Canvas, rows []int) (RenderStats, error) {
	tasks := make([]RowTask, len(rows))
	for i, row := range rows {
		tasks[i] = RowTask{TaskID: i, Row: row}
	}

	results, err := rt.workerPool.Run(ctx, tasks, func(task RowTask) RowResult {
		return RowResult{TaskID: task.TaskID, Stats: rt.renderRow(canvas, task.Row)}
	})
	if err != nil {
		return RenderStats{}, err
	}

	stats := RenderStats{TotalPixels: rt.config.Width * rt.config.Height}
	for _, result := range results {
		stats.merge(result.Stats)
	}
	stats.finalize()
	return stats, nil
}

// renderRow samples every pixel of one image row with a generator owned by that row
func (rt *Raytracer) renderRow(canvas *Canvas, row int) RenderStats {
	width, height := rt.config.Width, rt.config.Height
	sampler := core.NewSeededSampler(rowSeed(rt.seed, row))
	camera := rt.scene.Camera

	// Render coordinates put y = 0 at the bottom
	y := height - 1 - row
	denomX := float64(max(width-1, 1))
	denomY := float64(max(height-1, 1))

	for x := 0; x < width; x++ {
		var ps PixelStats
		for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
			jitter := sampler.Get2D()
			s := (float64(x) + jitter.X) / denomX
			t := (float64(y) + jitter.Y) / denomY

			ray := camera.GetRay(s, t, sampler)
			ps.AddSample(rt.integrator.RayColor(ray, rt.config.MaxDepth, sampler))
		}
		canvas.SetRenderPixel(x, y, ps.ToneMapped())
	}

	return RenderStats{
		RenderedRows: 1,
		TotalSamples: width * rt.config.SamplesPerPixel,
	}
}

// rowSeed mixes the base seed with the row index so rows never share a sequence
func rowSeed(seed int64, row int) int64 {
	return seed*1_000_003 + int64(row) + 42 // +42 to avoid seed 0
}

// rowsForStep lists the image rows 0, step, 2·step, ... below height
func rowsForStep(height, step int) []int {
	rows := make([]int, 0, height/step+1)
	for row := 0; row < height; row += step {
		rows = append(rows, row)
	}
	return rows
}
