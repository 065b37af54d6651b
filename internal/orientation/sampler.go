package orientation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/positionimu/internal/monitoring"
	"github.com/banshee-data/positionimu/internal/timeutil"
)

// Sampler wraps a Sensor with the startup sequence and per-cycle reads.
type Sampler struct {
	sensor Sensor
	clock  timeutil.Clock
	warmup time.Duration

	mu      sync.Mutex
	started bool
	info    DeviceInfo
}

// NewSampler returns a sampler for sensor. A nil clock uses the real clock.
func NewSampler(sensor Sensor, clock timeutil.Clock, warmup time.Duration) *Sampler {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Sampler{sensor: sensor, clock: clock, warmup: warmup}
}

// Start performs the handshake exactly once. There is no retry: a failed
// handshake returns an error wrapping ErrSensorInit.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	info, err := s.sensor.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v (is the sensor connected?)", ErrSensorInit, err)
	}
	s.info = info
	LogDiagnostics(info)

	monitoring.Logf("Reading orientation data, press Ctrl-C to quit...")

	if s.warmup > 0 {
		s.clock.Sleep(s.warmup)
	}
	s.started = true
	return nil
}

// Info returns the diagnostics captured by Start.
func (s *Sampler) Info() DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Sample reads the current orientation and calibration from the device. Every
// call goes to the device. An error wrapping ErrCalibration still carries a
// valid orientation.
func (s *Sampler) Sample() (Sample, CalibrationStatus, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return Sample{}, CalibrationStatus{}, ErrNotStarted
	}

	euler, err := s.sensor.ReadEuler()
	if err != nil {
		return Sample{}, CalibrationStatus{}, fmt.Errorf("read euler: %w", err)
	}
	cal, err := s.sensor.ReadCalibrationStatus()
	if err != nil {
		return euler, CalibrationStatus{}, fmt.Errorf("%w: %w", ErrCalibration, err)
	}
	return euler, cal, nil
}

// Close releases the sensor.
func (s *Sampler) Close() error {
	return s.sensor.Close()
}

// LogDiagnostics prints the startup diagnostics. They are informational and
// never stop the run.
func LogDiagnostics(info DeviceInfo) {
	monitoring.Logf("System status: %d", info.SystemStatus)
	monitoring.Logf("Self test result (0x0F is normal): 0x%02X", info.SelfTest)
	if info.SystemStatus == SystemStatusError {
		monitoring.Logf("System error: %d", info.SystemError)
		monitoring.Logf("See datasheet section 4.3.59 for the meaning.")
	}
	monitoring.Logf("Software version:   %d", info.SoftwareVersion)
	monitoring.Logf("Bootloader version: %d", info.BootloaderVersion)
	monitoring.Logf("Accelerometer ID:   0x%02X", info.AccelID)
	monitoring.Logf("Magnetometer ID:    0x%02X", info.MagID)
	monitoring.Logf("Gyroscope ID:       0x%02X", info.GyroID)
}
