package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

func TestCanvas_AverageLuminance(t *testing.T) {
	// Red -> 0.2126, Green -> 0.7152, Blue -> 0.0722, Black -> 0.0
	// Expected average: 1.0 / 4 = 0.25
	canvas := NewCanvas(2, 2)
	canvas.SetPixel(0, 0, [3]uint8{255, 0, 0})
	canvas.SetPixel(1, 0, [3]uint8{0, 255, 0})
	canvas.SetPixel(0, 1, [3]uint8{0, 0, 255})

	avgLum := canvas.AverageLuminance()
	expected := 0.25
	tolerance := 0.0001

	if math.Abs(avgLum-expected) > tolerance {
		t.Errorf("Expected average luminance %f, got %f", expected, avgLum)
	}
}

func TestCanvas_AverageLuminance_White(t *testing.T) {
	canvas := NewCanvas(1, 1)
	canvas.SetPixel(0, 0, [3]uint8{255, 255, 255})

	if avgLum := canvas.AverageLuminance(); math.Abs(avgLum-1.0) > 0.0001 {
		t.Errorf("Expected average luminance 1.0, got %f", avgLum)
	}
}

func TestCanvas_AverageLuminance_Empty(t *testing.T) {
	if avgLum := NewCanvas(0, 0).AverageLuminance(); avgLum != 0 {
		t.Errorf("Expected 0 for an empty canvas, got %f", avgLum)
	}
}

func TestPixelStats(t *testing.T) {
	var ps PixelStats
	if got := ps.GetColor(); got != (core.Vec3{}) {
		t.Errorf("Expected black without samples, got %v", got)
	}
	if got := ps.ToneMapped(); got != [3]uint8{} {
		t.Errorf("Expected zero bytes without samples, got %v", got)
	}

	ps.AddSample(core.NewVec3(1, 0, 0.5))
	ps.AddSample(core.NewVec3(0, 0, 0.5))

	if ps.SampleCount != 2 {
		t.Errorf("Expected 2 samples, got %d", ps.SampleCount)
	}
	if got := ps.GetColor(); got != core.NewVec3(0.5, 0, 0.5) {
		t.Errorf("Expected average (0.5, 0, 0.5), got %v", got)
	}
	if got, want := ps.ToneMapped(), ToneMap(ps.ColorAccum, 2); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRenderStats_MergeAndFinalize(t *testing.T) {
	stats := RenderStats{TotalPixels: 8}
	stats.merge(RenderStats{RenderedRows: 1, TotalSamples: 4})
	stats.merge(RenderStats{RenderedRows: 2, TotalSamples: 8})
	stats.finalize()

	if stats.RenderedRows != 3 || stats.TotalSamples != 12 {
		t.Errorf("Expected 3 rows and 12 samples, got %+v", stats)
	}
	if stats.AverageSamples != 1.5 {
		t.Errorf("Expected 1.5 samples per pixel, got %f", stats.AverageSamples)
	}

	var empty RenderStats
	empty.finalize()
	if empty.AverageSamples != 0 {
		t.Errorf("Expected 0 average for an empty image, got %f", empty.AverageSamples)
	}
}
