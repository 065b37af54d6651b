package vision

import (
	"image"
	"math"
)

// Moments holds the low order spatial moments of a closed polygon.
type Moments struct {
	M00 float64
	M10 float64
	M01 float64
}

// momentEpsilon matches the float32 epsilon below which an area counts as
// zero.
const momentEpsilon = 1.1920929e-07

// ContourMoments integrates the polygon outline with Green's theorem, which
// is how contour moments are defined (the outline, not the pixel count). The
// result is independent of winding direction. A polygon without area
// returns zero moments.
func ContourMoments(contour []image.Point) Moments {
	n := len(contour)
	if n == 0 {
		return Moments{}
	}

	var a00, a10, a01 float64
	prev := contour[n-1]
	for _, p := range contour {
		xp, yp := float64(prev.X), float64(prev.Y)
		xi, yi := float64(p.X), float64(p.Y)

		dxy := xp*yi - xi*yp
		a00 += dxy
		a10 += dxy * (xp + xi)
		a01 += dxy * (yp + yi)
		prev = p
	}

	if math.Abs(a00) <= momentEpsilon {
		return Moments{}
	}

	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if a00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Centroid returns (m10/m00, m01/m00). ok is false when m00 is zero.
func (m Moments) Centroid() (x, y float64, ok bool) {
	if m.M00 == 0 {
		return 0, 0, false
	}
	return m.M10 / m.M00, m.M01 / m.M00, true
}
