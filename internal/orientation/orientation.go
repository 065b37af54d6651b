// Package orientation samples an absolute orientation sensor once per frame
// cycle and reports its startup diagnostics.
package orientation

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSensorInit is returned when the startup handshake fails. It is fatal
	// to a tracker run.
	ErrSensorInit = errors.New("orientation: sensor initialisation failed")

	// ErrNotStarted is returned when the sampler is read before Start.
	ErrNotStarted = errors.New("orientation: sampler not started")

	// ErrCalibration is returned by Sampler.Sample when the Euler read
	// succeeded but the calibration status could not be read. The returned
	// Sample is valid.
	ErrCalibration = errors.New("orientation: calibration status unavailable")
)

// Sample is one Euler angle triple in degrees.
type Sample struct {
	Heading float64
	Roll    float64
	Pitch   float64
}

func (s Sample) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", s.Heading, s.Roll, s.Pitch)
}

// CalibrationStatus holds per-subsystem calibration levels, 0 (uncalibrated)
// to 3 (fully calibrated).
type CalibrationStatus struct {
	System uint8
	Gyro   uint8
	Accel  uint8
	Mag    uint8
}

// FullyCalibrated reports whether every subsystem is at level 3.
func (c CalibrationStatus) FullyCalibrated() bool {
	return c.System == 3 && c.Gyro == 3 && c.Accel == 3 && c.Mag == 3
}

func (c CalibrationStatus) String() string {
	return fmt.Sprintf("sys=%d gyro=%d accel=%d mag=%d", c.System, c.Gyro, c.Accel, c.Mag)
}

// SelfTestPassed is the self-test result reported when all four checks pass.
const SelfTestPassed = 0x0F

// SystemStatusError is the system status value that means the device is in
// an error state and SystemError is meaningful.
const SystemStatusError = 0x01

// DeviceInfo is the diagnostic snapshot taken once at startup.
type DeviceInfo struct {
	SystemStatus      uint8
	SelfTest          uint8
	SystemError       uint8
	SoftwareVersion   uint16
	BootloaderVersion uint8
	AccelID           uint8
	MagID             uint8
	GyroID            uint8
}

// Sensor is the device the sampler drives.
type Sensor interface {
	// Initialize runs the startup handshake and returns diagnostics.
	Initialize(ctx context.Context) (DeviceInfo, error)
	ReadEuler() (Sample, error)
	ReadCalibrationStatus() (CalibrationStatus, error)
	Close() error
}
