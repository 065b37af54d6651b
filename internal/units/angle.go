// Package units converts angles and times for display and statistics.
package units

import "math"

// DegToRad converts degrees to radians.
func DegToRad(d float64) float64 {
	return d * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(r float64) float64 {
	return r * 180 / math.Pi
}

// WrapDegrees maps an angle into [0, 360).
func WrapDegrees(d float64) float64 {
	m := math.Mod(d, 360)
	if m < 0 {
		m += 360
	}
	if m >= 360 {
		return 0
	}
	return m
}
