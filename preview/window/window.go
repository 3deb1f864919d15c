// Package window shows a progressive render in a desktop window as passes complete.
package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-sphere-tracer/preview/frame"
)

// Run opens a window for f and blocks until it is closed or Escape is pressed.
// scale enlarges small renders on screen.
func Run(title string, f *frame.Frame, scale int) error {
	width, height := f.Size()

	g := &game{
		title:   title,
		frame:   f,
		scratch: make([]byte, 4*width*height),
	}

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width*max(scale, 1), height*max(scale, 1))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(30)
	return ebiten.RunGame(g)
}

type game struct {
	title   string
	frame   *frame.Frame
	img     *ebiten.Image
	scratch []byte
	version uint64
	status  string
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if status := g.frame.Status(); status != g.status {
		g.status = status
		ebiten.SetWindowTitle(g.title + " - " + status)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		width, height := g.frame.Size()
		g.img = ebiten.NewImage(width, height)
	}

	if version, changed := g.frame.Snapshot(g.scratch, g.version); changed {
		g.version = version
		g.img.WritePixels(g.scratch)
	}
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.frame.Size()
}
