package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
	"github.com/df07/go-sphere-tracer/preview/frame"
	"github.com/df07/go-sphere-tracer/preview/window"
)

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Scene name or path to a .json scene")
	scenesDir := flag.String("scenes", "scenes", "Directory containing JSON scenes")
	samples := flag.Int("samples", 0, "Samples per pixel (0 = scene default)")
	depth := flag.Int("depth", -1, "Maximum bounce depth (-1 = scene default)")
	rowStep := flag.Int("step", 16, "Row step of the first pass")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect)")
	seed := flag.Int64("seed", 42, "Random seed")
	scale := flag.Int("scale", 2, "Window pixels per image pixel")
	flag.Parse()

	s, err := scene.Create(*sceneType, *scenesDir, *seed)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	config := s.SamplingConfig
	if *samples > 0 {
		config.SamplesPerPixel = *samples
	}
	if *depth >= 0 {
		config.MaxDepth = *depth
	}
	config.RowStep = max(*rowStep, 1)

	raytracer := renderer.NewRaytracer(s)
	raytracer.SetSamplingConfig(config)
	raytracer.SetWorkers(*workers)
	raytracer.SetSeed(*seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := frame.New(config.Width, config.Height)
	progressive := renderer.NewProgressiveRaytracer(raytracer, renderer.NewDefaultLogger())
	passChan, errChan := progressive.RenderProgressive(ctx)

	go func() {
		for result := range passChan {
			f.Update(result)
		}
		if err := <-errChan; err != nil {
			f.Fail(err)
		}
	}()

	if err := window.Run(fmt.Sprintf("Sphere Tracer - %s", *sceneType), f, *scale); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
