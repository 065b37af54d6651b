// Package display draws the detection overlay and shows it in a window.
package display

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/banshee-data/positionimu/internal/vision"
)

var (
	circleColor   = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	centroidColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	trailColor    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

const quitKey = 'q'

// Renderer shows one processed frame and reports whether the user asked to
// quit.
type Renderer interface {
	Render(frame *gocv.Mat, blob *vision.Blob) (quit bool)
	Close() error
}

// Nop is a Renderer for headless runs.
type Nop struct{}

func (Nop) Render(*gocv.Mat, *vision.Blob) bool { return false }

func (Nop) Close() error { return nil }

// Draw paints the enclosing circle and centroid of a confident blob, then the
// trail.
func Draw(frame *gocv.Mat, blob *vision.Blob, trail *Trail, minRadius float64) {
	if blob.Confident(minRadius) {
		c := image.Pt(int(blob.Circle.X), int(blob.Circle.Y))
		gocv.Circle(frame, c, int(blob.Radius), circleColor, 2)
		gocv.Circle(frame, blob.Center, 5, centroidColor, -1)
	}
	if trail == nil {
		return
	}
	for _, s := range trail.Segments() {
		gocv.Line(frame, s.From, s.To, trailColor, s.Thickness)
	}
}

// Window is an on-screen Renderer.
type Window struct {
	win       *gocv.Window
	trail     *Trail
	minRadius float64
}

var _ Renderer = (*Window)(nil)

// NewWindow opens a window titled title with a trail of buffer centers.
func NewWindow(title string, buffer int, minRadius float64) *Window {
	return &Window{
		win:       gocv.NewWindow(title),
		trail:     NewTrail(buffer),
		minRadius: minRadius,
	}
}

// Render draws the overlay, shows the frame and polls the keyboard for 1 ms.
func (w *Window) Render(frame *gocv.Mat, blob *vision.Blob) bool {
	if blob.Confident(w.minRadius) {
		w.trail.Push(blob.Center, true)
	} else {
		w.trail.Push(image.Point{}, false)
	}
	Draw(frame, blob, w.trail, w.minRadius)

	w.win.IMShow(*frame)
	key := w.win.WaitKey(1) & 0xFF
	return key == quitKey
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
