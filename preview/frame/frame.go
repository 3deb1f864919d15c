// Package frame holds the most recent pass of a progressive render so a display
// loop can read it while rendering continues on other goroutines.
package frame

import (
	"fmt"
	"sync"

	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// Frame is safe for one writer and any number of readers
type Frame struct {
	mu          sync.Mutex
	width       int
	height      int
	pix         []byte // RGBA, 4·width·height
	pass        int
	totalPasses int
	done        bool
	err         error
	version     uint64 // Incremented on every update
}

// New creates a black frame
func New(width, height int) *Frame {
	pix := make([]byte, 4*width*height)
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xFF
	}
	return &Frame{width: width, height: height, pix: pix}
}

// Size returns the frame dimensions
func (f *Frame) Size() (int, int) {
	return f.width, f.height
}

// Update replaces the frame with a finished pass
func (f *Frame) Update(result renderer.PassResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	PackedToRGBA(result.Canvas.Packed(), f.pix)
	f.pass = result.PassNumber
	f.totalPasses = result.TotalPasses
	f.done = result.IsLast
	f.version++
}

// Fail records the error that stopped rendering
func (f *Frame) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
	f.done = true
	f.version++
}

// Snapshot copies the pixels into dst if the frame changed since version seen.
// It returns the current version and whether dst was written.
func (f *Frame) Snapshot(dst []byte, seen uint64) (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.version == seen {
		return seen, false
	}
	copy(dst, f.pix)
	return f.version, true
}

// Status describes render progress for the window title
func (f *Frame) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.err != nil:
		return fmt.Sprintf("failed: %v", f.err)
	case f.done:
		return fmt.Sprintf("done (%d passes)", f.totalPasses)
	case f.pass == 0:
		return "rendering..."
	default:
		return fmt.Sprintf("pass %d/%d", f.pass, f.totalPasses)
	}
}

// PackedToRGBA expands 0xRRGGBB pixels into opaque RGBA bytes.
// dst must hold at least 4·len(packed) bytes.
func PackedToRGBA(packed []uint32, dst []byte) []byte {
	for i, p := range packed {
		j := 4 * i
		dst[j+0] = byte(p >> 16)
		dst[j+1] = byte(p >> 8)
		dst[j+2] = byte(p)
		dst[j+3] = 0xFF
	}
	return dst
}
