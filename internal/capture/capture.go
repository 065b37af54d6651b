// Package capture supplies BGR frames from a video file, a USB camera, the
// Raspberry Pi camera or an in-memory list.
package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrEndOfStream is returned by Next when no more frames are available.
var ErrEndOfStream = errors.New("capture: end of stream")

// Source yields frames one at a time. The caller owns and must Close every
// Mat returned by Next.
type Source interface {
	Next() (gocv.Mat, error)
	Close() error
}

// VideoSource reads frames from a gocv.VideoCapture.
type VideoSource struct {
	vc     *gocv.VideoCapture
	name   string
	frames int
}

var _ Source = (*VideoSource)(nil)

// OpenFile opens a recorded video file.
func OpenFile(path string) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video file %s: %w", path, err)
	}
	return &VideoSource{vc: vc, name: path}, nil
}

// OpenCamera opens a local camera by device index.
func OpenCamera(id int) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", id, err)
	}
	return &VideoSource{vc: vc, name: fmt.Sprintf("camera %d", id)}, nil
}

// PiCameraPipeline returns the GStreamer pipeline used for the Raspberry Pi
// camera module through libcamera.
func PiCameraPipeline(width, height, fps int) string {
	return fmt.Sprintf(
		"libcamerasrc ! video/x-raw,width=%d,height=%d,framerate=%d/1 ! videoconvert ! video/x-raw,format=BGR ! appsink drop=true max-buffers=1",
		width, height, fps)
}

// OpenPiCamera opens the Raspberry Pi camera module.
func OpenPiCamera(width, height, fps int) (*VideoSource, error) {
	pipeline := PiCameraPipeline(width, height, fps)
	vc, err := gocv.VideoCaptureFileWithAPI(pipeline, gocv.VideoCaptureGstreamer)
	if err != nil {
		return nil, fmt.Errorf("open pi camera: %w", err)
	}
	return &VideoSource{vc: vc, name: "pi camera"}, nil
}

// Next reads the next frame. A failed or empty read ends the stream.
func (s *VideoSource) Next() (gocv.Mat, error) {
	m := gocv.NewMat()
	if ok := s.vc.Read(&m); !ok || m.Empty() {
		m.Close()
		return gocv.Mat{}, ErrEndOfStream
	}
	s.frames++
	return m, nil
}

// Frames returns the number of frames read so far.
func (s *VideoSource) Frames() int {
	return s.frames
}

func (s *VideoSource) String() string {
	return s.name
}

// Close releases the capture device.
func (s *VideoSource) Close() error {
	return s.vc.Close()
}
