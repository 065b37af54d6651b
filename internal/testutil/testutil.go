// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

var (
	// Background is the mid green used behind synthetic targets.
	Background = color.RGBA{R: 0, G: 128, B: 0, A: 255}

	// Target is a saturated red-magenta with OpenCV hue 175, inside the
	// default tracking range.
	Target = color.RGBA{R: 255, G: 0, B: 40, A: 255}

	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TempLogPath returns a path for a record log inside a per-test directory.
func TempLogPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "positionIMU.csv")
}

// SolidFrame returns a width x height BGR frame filled with c.
func SolidFrame(width, height int, c color.RGBA) gocv.Mat {
	scalar := gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
	return gocv.NewMatWithSizeFromScalar(scalar, height, width, gocv.MatTypeCV8UC3)
}

// CircleFrame returns a Background frame with a filled Target circle.
func CircleFrame(width, height int, center image.Point, radius int) gocv.Mat {
	m := SolidFrame(width, height, Background)
	gocv.Circle(&m, center, radius, Target, -1)
	return m
}

// Mask returns a single channel mask with the given rectangles set to 255.
// Rectangles use image.Rectangle semantics, Max is exclusive.
func Mask(width, height int, rects ...image.Rectangle) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8U)
	bounds := image.Rect(0, 0, width, height)
	for _, r := range rects {
		r = r.Intersect(bounds)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m.SetUCharAt(y, x, 255)
			}
		}
	}
	return m
}

// FillCircle sets a filled disc in a single channel mask.
func FillCircle(mask *gocv.Mat, center image.Point, radius int) {
	gocv.Circle(mask, center, radius, white, -1)
}
