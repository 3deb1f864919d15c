package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// scenesDir holds the JSON scenes that can be selected by name
const scenesDir = "scenes"

// options collects the command line flags
type options struct {
	sceneType   string
	outPath     string
	samples     int
	depth       int
	width       int
	workers     int
	seed        int64
	step        int
	progressive bool
}

func main() {
	// Parse command line flags
	var opts options
	flag.StringVar(&opts.sceneType, "scene", "default", "Scene: 'default', 'random-spheres', 'sphere-grid', a JSON scene name in scenes/, or a path to a .json file")
	flag.StringVar(&opts.outPath, "out", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", -1, "Maximum bounce depth (-1 = scene default)")
	flag.IntVar(&opts.width, "width", 0, "Image width; height follows the camera aspect ratio (0 = scene default)")
	flag.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = auto-detect)")
	flag.Int64Var(&opts.seed, "seed", 42, "Random seed")
	flag.IntVar(&opts.step, "step", 0, "Render every n-th row (0 = scene default)")
	flag.BoolVar(&opts.progressive, "progressive", false, "Refine the image in passes, halving the row step each pass")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Sphere Tracer")
		fmt.Println("Usage: sphere-tracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.BuiltInScenes() {
			fmt.Printf("  %-15s - %s\n", info.ID, info.Description)
		}
		if jsonScenes, err := scene.ListJSONScenes(scenesDir); err == nil {
			for _, info := range jsonScenes {
				fmt.Printf("  %-15s - %s\n", info.ID, info.FilePath)
			}
		}
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}

	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	fmt.Println("Starting Sphere Tracer...")

	setupStart := time.Now()
	selectedScene, err := createScene(opts.sceneType, opts.seed)
	if err != nil {
		return err
	}
	if err := applyOverrides(selectedScene, opts); err != nil {
		return err
	}
	config := selectedScene.SamplingConfig
	fmt.Printf("Setup of scene took %v (%d spheres, %dx%d, %d samples, depth %d, row step %d)\n",
		time.Since(setupStart), selectedScene.GetPrimitiveCount(),
		config.Width, config.Height, config.SamplesPerPixel, config.MaxDepth, config.RowStep)

	raytracer := renderer.NewRaytracer(selectedScene)
	raytracer.SetWorkers(opts.workers)
	raytracer.SetSeed(opts.seed)

	renderStart := time.Now()
	var canvas *renderer.Canvas
	var stats renderer.RenderStats
	if opts.progressive {
		canvas, stats, err = renderProgressive(ctx, raytracer)
	} else {
		canvas, stats, err = raytracer.Render(ctx)
	}
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	fmt.Printf("Render completed in %v\n", time.Since(renderStart))
	fmt.Printf("Rows rendered: %d, samples per pixel: %.1f, average luminance: %.3f\n",
		stats.RenderedRows, stats.AverageSamples, canvas.AverageLuminance())

	filename := outputPath(opts, selectedScene, time.Now())
	saveStart := time.Now()
	if err := savePNG(canvas, filename); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s (%v)\n", filename, time.Since(saveStart))
	return nil
}

// renderProgressive runs every pass and returns the last one
func renderProgressive(ctx context.Context, raytracer *renderer.Raytracer) (*renderer.Canvas, renderer.RenderStats, error) {
	progressive := renderer.NewProgressiveRaytracer(raytracer, renderer.NewDefaultLogger())
	passChan, errChan := progressive.RenderProgressive(ctx)

	var last renderer.PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		return nil, renderer.RenderStats{}, err
	}
	return last.Canvas, last.Stats, nil
}

// createScene creates a scene based on the scene type
func createScene(sceneType string, seed int64) (*scene.Scene, error) {
	return scene.Create(sceneType, scenesDir, seed)
}

// applyOverrides replaces scene defaults with the flags that were set
func applyOverrides(s *scene.Scene, opts options) error {
	config := s.SamplingConfig

	if opts.width > 0 {
		config.Width = opts.width
		config.Height = max(1, int(float64(opts.width)/s.CameraConfig.AspectRatio))
	}
	if opts.samples > 0 {
		config.SamplesPerPixel = opts.samples
	}
	if opts.depth >= 0 {
		config.MaxDepth = opts.depth
	}
	if opts.step > 0 {
		config.RowStep = opts.step
	}

	if err := config.Validate(); err != nil {
		return err
	}
	s.SamplingConfig = config
	return nil
}

// outputPath picks -out, then the scene file's outputPath, then a timestamped default
func outputPath(opts options, s *scene.Scene, now time.Time) string {
	if opts.outPath != "" {
		return opts.outPath
	}
	if s.OutputPath != "" {
		return s.OutputPath
	}

	timestamp := now.Format("20060102_150405")
	return filepath.Join(createOutputDir(opts.sceneType), fmt.Sprintf("render_%s.png", timestamp))
}

// createOutputDir returns output/<scene name>, using the file name for JSON paths
func createOutputDir(sceneType string) string {
	name := sceneType
	if strings.EqualFold(filepath.Ext(name), ".json") {
		name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return filepath.Join("output", name)
}

// savePNG encodes the canvas, creating parent directories as needed
func savePNG(canvas *renderer.Canvas, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, canvas.Image()); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return file.Close()
}
