package units

import (
	"math"
	"testing"
)

func TestWrapDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.9375, 359.9375},
		{360, 0},
		{725, 5},
		{-10, 350},
		{-360, 0},
		{-1e-14, 0},
	}
	for _, tt := range tests {
		got := WrapDegrees(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	if got := DegToRad(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("DegToRad(180) = %v", got)
	}
	if got := RadToDeg(math.Pi / 2); math.Abs(got-90) > 1e-12 {
		t.Errorf("RadToDeg(pi/2) = %v", got)
	}
}
