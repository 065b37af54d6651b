// Package vision finds the largest region of a target color in a BGR frame.
package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// HSV is a color in OpenCV's 8-bit HSV scale: H 0-179, S and V 0-255.
type HSV struct {
	H, S, V float64
}

// Scalar returns the color as a gocv scalar.
func (c HSV) Scalar() gocv.Scalar {
	return gocv.NewScalar(c.H, c.S, c.V, 0)
}

// ColorRange is an inclusive, per-channel HSV band. Hue does not wrap.
type ColorRange struct {
	Lower HSV
	Upper HSV
}

// RangeFromArrays builds a ColorRange from [H, S, V] triples.
func RangeFromArrays(lower, upper [3]float64) ColorRange {
	return ColorRange{
		Lower: HSV{H: lower[0], S: lower[1], V: lower[2]},
		Upper: HSV{H: upper[0], S: upper[1], V: upper[2]},
	}
}

// Contains reports whether c lies inside the band on every channel.
func (r ColorRange) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

func (r ColorRange) String() string {
	return fmt.Sprintf("HSV(%g,%g,%g)-(%g,%g,%g)",
		r.Lower.H, r.Lower.S, r.Lower.V, r.Upper.H, r.Upper.S, r.Upper.V)
}

// Resize scales frame to width pixels keeping the aspect ratio. A
// non-positive width, or a frame already at that width, is copied unchanged.
func Resize(frame gocv.Mat, width int, dst *gocv.Mat) {
	if width <= 0 || frame.Cols() == width || frame.Cols() == 0 {
		frame.CopyTo(dst)
		return
	}
	height := int(float64(frame.Rows())*float64(width)/float64(frame.Cols()) + 0.5)
	if height < 1 {
		height = 1
	}
	gocv.Resize(frame, dst, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
}

// Blur applies a square Gaussian blur. Kernels below 3 copy the frame.
func Blur(frame gocv.Mat, kernel int, dst *gocv.Mat) {
	if kernel < 3 {
		frame.CopyTo(dst)
		return
	}
	gocv.GaussianBlur(frame, dst, image.Pt(kernel, kernel), 0, 0, gocv.BorderDefault)
}

// Preprocess resizes to width then blurs with the given kernel.
func Preprocess(frame gocv.Mat, width, blurKernel int, dst *gocv.Mat) {
	resized := gocv.NewMat()
	defer resized.Close()

	Resize(frame, width, &resized)
	Blur(resized, blurKernel, dst)
}

// Segment writes a binary mask of the pixels of frame inside r. The mask has
// the frame's dimensions with 255 for members and 0 otherwise.
func Segment(frame gocv.Mat, r ColorRange, dst *gocv.Mat) {
	hsv := gocv.NewMat()
	defer hsv.Close()

	segment(frame, r, &hsv, dst)
}

func segment(frame gocv.Mat, r ColorRange, hsv, dst *gocv.Mat) {
	gocv.CvtColor(frame, hsv, gocv.ColorBGRToHSV)
	gocv.InRangeWithScalar(*hsv, r.Lower.Scalar(), r.Upper.Scalar(), dst)
}

// NewKernel returns the 3x3 rectangular structuring element used by Clean.
// The caller must Close it.
func NewKernel() gocv.Mat {
	return gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
}

// Clean erodes mask erodeIterations times and then dilates dilateIterations
// times, removing specks smaller than the eroded element.
func Clean(mask gocv.Mat, erodeIterations, dilateIterations int, dst *gocv.Mat) {
	kernel := NewKernel()
	defer kernel.Close()

	clean(mask, kernel, erodeIterations, dilateIterations, dst)
}

func clean(mask, kernel gocv.Mat, erodeIterations, dilateIterations int, dst *gocv.Mat) {
	mask.CopyTo(dst)
	for i := 0; i < erodeIterations; i++ {
		gocv.Erode(*dst, dst, kernel)
	}
	for i := 0; i < dilateIterations; i++ {
		gocv.Dilate(*dst, dst, kernel)
	}
}
