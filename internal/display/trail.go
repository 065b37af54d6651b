package display

import (
	"image"
	"math"
)

// Trail keeps the most recent centers, newest first. A cycle without a
// confident detection is recorded as a gap.
type Trail struct {
	max    int
	points []trailPoint
}

type trailPoint struct {
	p  image.Point
	ok bool
}

// Segment is one line of the trail with its drawing thickness.
type Segment struct {
	From, To  image.Point
	Thickness int
}

// NewTrail returns a trail holding at most max entries.
func NewTrail(max int) *Trail {
	if max < 0 {
		max = 0
	}
	return &Trail{max: max, points: make([]trailPoint, 0, max)}
}

// Push records a center, or a gap when ok is false.
func (t *Trail) Push(p image.Point, ok bool) {
	if t.max == 0 {
		return
	}
	if len(t.points) == t.max {
		t.points = t.points[:len(t.points)-1]
	}
	t.points = append(t.points, trailPoint{})
	copy(t.points[1:], t.points)
	t.points[0] = trailPoint{p: p, ok: ok}
}

// Len returns the number of entries, gaps included.
func (t *Trail) Len() int {
	return len(t.points)
}

// Segments returns the lines joining consecutive centers. Lines next to a
// gap are skipped and older lines are thinner.
func (t *Trail) Segments() []Segment {
	var segs []Segment
	for i := 1; i < len(t.points); i++ {
		a, b := t.points[i-1], t.points[i]
		if !a.ok || !b.ok {
			continue
		}
		thickness := int(math.Sqrt(float64(t.max)/float64(i+1)) * 2.5)
		if thickness < 1 {
			thickness = 1
		}
		segs = append(segs, Segment{From: a.p, To: b.p, Thickness: thickness})
	}
	return segs
}
