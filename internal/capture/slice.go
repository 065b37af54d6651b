package capture

import (
	"errors"

	"gocv.io/x/gocv"
)

// SliceSource replays a fixed list of frames. Each Next returns a clone, so
// the caller may close it freely.
type SliceSource struct {
	frames []gocv.Mat
	next   int
	closed bool

	// Err, if set, is returned by Next once the frames are exhausted
	// instead of ErrEndOfStream.
	Err error
}

var _ Source = (*SliceSource)(nil)

// NewSliceSource takes ownership of frames.
func NewSliceSource(frames ...gocv.Mat) *SliceSource {
	return &SliceSource{frames: frames}
}

// Next returns a copy of the next frame.
func (s *SliceSource) Next() (gocv.Mat, error) {
	if s.closed {
		return gocv.Mat{}, errors.New("capture: source closed")
	}
	if s.next >= len(s.frames) {
		if s.Err != nil {
			return gocv.Mat{}, s.Err
		}
		return gocv.Mat{}, ErrEndOfStream
	}
	m := s.frames[s.next].Clone()
	s.next++
	return m, nil
}

// Pulled returns how many frames have been handed out.
func (s *SliceSource) Pulled() int {
	return s.next
}

// Closed reports whether Close was called.
func (s *SliceSource) Closed() bool {
	return s.closed
}

// Close releases the stored frames.
func (s *SliceSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	for i := range s.frames {
		s.frames[i].Close()
	}
	return nil
}
