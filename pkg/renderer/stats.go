package renderer

import "github.com/df07/go-sphere-tracer/pkg/core"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels in the image
	RenderedRows   int     // Number of image rows rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel over the whole image
}

// merge adds the counters of other into stats
func (stats *RenderStats) merge(other RenderStats) {
	stats.RenderedRows += other.RenderedRows
	stats.TotalSamples += other.TotalSamples
}

// finalize derives the average once all rows are merged
func (stats *RenderStats) finalize() {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}

// PixelStats accumulates the samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // Linear RGB sum
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// ToneMapped returns the byte color for the accumulated samples
func (ps *PixelStats) ToneMapped() [3]uint8 {
	if ps.SampleCount == 0 {
		return [3]uint8{}
	}
	return ToneMap(ps.ColorAccum, ps.SampleCount)
}
