package vision

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// ErrDegenerateContour is returned when the largest contour has no area and
// so no centroid.
var ErrDegenerateContour = errors.New("vision: degenerate contour")

// Blob is the largest connected region of a mask.
type Blob struct {
	// Center is the area centroid rounded to the nearest pixel.
	Center image.Point
	// Circle is the center of the minimum enclosing circle.
	Circle gocv.Point2f
	Radius float64
	Area   float64
}

// Confident reports whether the blob is large enough to draw. A nil blob is
// never confident.
func (b *Blob) Confident(minRadius float64) bool {
	return b != nil && b.Radius > minRadius
}

func (b *Blob) String() string {
	if b == nil {
		return "None"
	}
	return fmt.Sprintf("(%d, %d) r=%.1f", b.Center.X, b.Center.Y, b.Radius)
}

// ExtractBlob returns the largest outer contour of mask. An empty mask gives
// a nil blob and no error. Equal areas resolve to the first contour found.
func ExtractBlob(mask gocv.Mat) (*Blob, error) {
	if mask.Empty() {
		return nil, nil
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	if contours.Size() == 0 {
		return nil, nil
	}

	best := contours.At(0)
	bestArea := gocv.ContourArea(best)
	for i := 1; i < contours.Size(); i++ {
		c := contours.At(i)
		if area := gocv.ContourArea(c); area > bestArea {
			best, bestArea = c, area
		}
	}

	m := ContourMoments(best.ToPoints())
	cx, cy, ok := m.Centroid()
	if !ok {
		return nil, ErrDegenerateContour
	}

	x, y, r := gocv.MinEnclosingCircle(best)
	return &Blob{
		Center: image.Pt(int(math.Round(cx)), int(math.Round(cy))),
		Circle: gocv.Point2f{X: x, Y: y},
		Radius: float64(r),
		Area:   bestArea,
	}, nil
}
