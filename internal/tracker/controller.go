// Package tracker runs the per-frame loop that joins color detections with
// orientation samples and appends them to the record log.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/banshee-data/positionimu/internal/capture"
	"github.com/banshee-data/positionimu/internal/display"
	"github.com/banshee-data/positionimu/internal/monitoring"
	"github.com/banshee-data/positionimu/internal/orientation"
	"github.com/banshee-data/positionimu/internal/recordlog"
	"github.com/banshee-data/positionimu/internal/timeutil"
	"github.com/banshee-data/positionimu/internal/vision"
)

// State is the controller lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Detector finds the target in a frame.
type Detector interface {
	Process(frame gocv.Mat) (*vision.Blob, error)
	// Frame is the frame the last detection coordinates refer to.
	Frame() *gocv.Mat
	Close() error
}

// Sampler provides one orientation reading per cycle.
type Sampler interface {
	Start(ctx context.Context) error
	Sample() (orientation.Sample, orientation.CalibrationStatus, error)
	Close() error
}

// RecordSink receives one record per cycle.
type RecordSink interface {
	Append(recordlog.Record) error
}

// Config wires a Controller. Source, Detector, Sampler and Renderer are
// owned by the controller and closed when it stops; Log is not.
type Config struct {
	RunID    uuid.UUID
	Source   capture.Source
	Detector Detector
	Sampler  Sampler
	Log      RecordSink
	Renderer display.Renderer
	Clock    timeutil.Clock
}

// Stats counts what a run did.
type Stats struct {
	Frames            int
	Detections        int
	Records           int
	OrientationErrors int
	CalibrationErrors int
	DetectionErrors   int
	StartedAt         time.Time
	StoppedAt         time.Time
}

// Controller drives the frame loop. It is single threaded: every cycle
// runs to completion before the stop signal is checked.
type Controller struct {
	cfg   Config
	state atomic.Int32

	mu    sync.Mutex
	stats Stats
}

// New validates cfg and returns a controller in the Idle state.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Source == nil:
		return nil, errors.New("tracker: nil frame source")
	case cfg.Detector == nil:
		return nil, errors.New("tracker: nil detector")
	case cfg.Sampler == nil:
		return nil, errors.New("tracker: nil orientation sampler")
	case cfg.Log == nil:
		return nil, errors.New("tracker: nil record log")
	}
	if cfg.Renderer == nil {
		cfg.Renderer = display.Nop{}
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	if cfg.RunID == uuid.Nil {
		cfg.RunID = uuid.New()
	}
	return &Controller{cfg: cfg}, nil
}

// RunID identifies this run in diagnostics.
func (c *Controller) RunID() uuid.UUID {
	return c.cfg.RunID
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	old := State(c.state.Swap(int32(s)))
	if old != s {
		monitoring.Debugf("tracker %s: %s -> %s", c.cfg.RunID, old, s)
	}
}

// Stats returns a snapshot of the run counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Run starts the orientation sensor and processes frames until the source
// ends, the renderer asks to quit, ctx is cancelled or a record cannot be
// written. A sensor start failure returns before any frame is read. Run may
// only be called once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return fmt.Errorf("tracker: run called in state %s", c.State())
	}

	c.mu.Lock()
	c.stats.StartedAt = c.cfg.Clock.Now()
	c.mu.Unlock()
	monitoring.Logf("tracker %s: starting", c.cfg.RunID)

	if err := c.cfg.Sampler.Start(ctx); err != nil {
		c.setState(Stopping)
		c.shutdown()
		return err
	}

	var runErr error
	for c.State() == Running {
		stop, err := c.cycle()
		if err != nil {
			runErr = err
		}
		if stop {
			c.setState(Stopping)
			break
		}
		select {
		case <-ctx.Done():
			monitoring.Logf("tracker %s: stop requested", c.cfg.RunID)
			c.setState(Stopping)
		default:
		}
	}

	c.shutdown()
	return runErr
}

// cycle handles exactly one frame. It reports whether the loop should stop.
func (c *Controller) cycle() (bool, error) {
	frame, err := c.cfg.Source.Next()
	if errors.Is(err, capture.ErrEndOfStream) {
		monitoring.Logf("tracker %s: end of stream", c.cfg.RunID)
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	c.mu.Lock()
	c.stats.Frames++
	n := c.stats.Frames
	c.mu.Unlock()

	blob, err := c.cfg.Detector.Process(frame)
	if err != nil {
		// A frame that cannot be measured counts as no detection.
		c.mu.Lock()
		c.stats.DetectionErrors++
		c.mu.Unlock()
		if errors.Is(err, vision.ErrDegenerateContour) {
			monitoring.Debugf("frame %d: %v", n, err)
		} else {
			monitoring.Logf("frame %d: detection failed: %v", n, err)
		}
		blob = nil
	}

	rec := recordlog.Record{}
	sample, cal, err := c.cfg.Sampler.Sample()
	switch {
	case err == nil:
		rec.Orientation = &sample
	case errors.Is(err, orientation.ErrCalibration):
		// The Euler angles are still good; only the calibration is missing.
		c.mu.Lock()
		c.stats.CalibrationErrors++
		c.mu.Unlock()
		monitoring.Debugf("frame %d: %v", n, err)
		rec.Orientation = &sample
	default:
		c.mu.Lock()
		c.stats.OrientationErrors++
		c.mu.Unlock()
		monitoring.Logf("frame %d: orientation read failed: %v", n, err)
	}
	if blob != nil {
		p := image.Pt(blob.Center.X, blob.Center.Y)
		rec.Position = &p
	}
	rec.Timestamp = c.cfg.Clock.Now()

	if err := c.cfg.Log.Append(rec); err != nil {
		return true, fmt.Errorf("frame %d: %w", n, err)
	}

	c.mu.Lock()
	c.stats.Records++
	if blob != nil {
		c.stats.Detections++
	}
	c.mu.Unlock()

	monitoring.Debugf("frame %d: blob=%s orientation=%v calibration=%s", n, blob, rec.Orientation, cal)

	if c.cfg.Renderer.Render(c.cfg.Detector.Frame(), blob) {
		monitoring.Logf("tracker %s: quit requested", c.cfg.RunID)
		return true, nil
	}
	return false, nil
}

// shutdown releases the collaborators and moves to Stopped. Errors are
// logged; the record log is left to its owner.
func (c *Controller) shutdown() {
	closers := []struct {
		name  string
		close func() error
	}{
		{"frame source", c.cfg.Source.Close},
		{"renderer", c.cfg.Renderer.Close},
		{"detector", c.cfg.Detector.Close},
		{"orientation sensor", c.cfg.Sampler.Close},
	}
	for _, cl := range closers {
		if err := cl.close(); err != nil {
			monitoring.Logf("tracker %s: close %s: %v", c.cfg.RunID, cl.name, err)
		}
	}

	c.mu.Lock()
	c.stats.StoppedAt = c.cfg.Clock.Now()
	s := c.stats
	c.mu.Unlock()

	c.setState(Stopped)
	monitoring.Logf("tracker %s: stopped after %d frames, %d detections, %d records",
		c.cfg.RunID, s.Frames, s.Detections, s.Records)
}
