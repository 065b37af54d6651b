package orientation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/positionimu/internal/monitoring"
	"github.com/banshee-data/positionimu/internal/timeutil"
)

type fakeSensor struct {
	info     DeviceInfo
	initErr  error
	eulerErr error
	calErr   error
	samples  []Sample
	inits    int
	reads    int
	closed   bool
}

func (f *fakeSensor) Initialize(context.Context) (DeviceInfo, error) {
	f.inits++
	return f.info, f.initErr
}

func (f *fakeSensor) ReadEuler() (Sample, error) {
	if f.eulerErr != nil {
		return Sample{}, f.eulerErr
	}
	s := f.samples[f.reads%len(f.samples)]
	f.reads++
	return s, nil
}

func (f *fakeSensor) ReadCalibrationStatus() (CalibrationStatus, error) {
	if f.calErr != nil {
		return CalibrationStatus{}, f.calErr
	}
	return CalibrationStatus{System: 3, Gyro: 3, Accel: 2, Mag: 1}, nil
}

func (f *fakeSensor) Close() error {
	f.closed = true
	return nil
}

func captureLogs(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	return &lines
}

func TestSamplerStartLogsDiagnosticsAndWarmsUp(t *testing.T) {
	lines := captureLogs(t)
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	sensor := &fakeSensor{
		info: DeviceInfo{
			SystemStatus:      5,
			SelfTest:          0x0F,
			SoftwareVersion:   0x0311,
			BootloaderVersion: 21,
			AccelID:           0xFB,
			MagID:             0x32,
			GyroID:            0x0F,
		},
		samples: []Sample{{Heading: 10}},
	}
	s := NewSampler(sensor, clock, 2*time.Second)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 1, sensor.inits, "handshake runs once")
	assert.Equal(t, []time.Duration{2 * time.Second}, clock.Sleeps())
	assert.Equal(t, sensor.info, s.Info())

	assert.Contains(t, *lines, "Self test result (0x0F is normal): 0x0F")
	assert.Contains(t, *lines, "Software version:   785")
	assert.Contains(t, *lines, "Accelerometer ID:   0xFB")
	for _, l := range *lines {
		assert.NotContains(t, l, "System error")
	}
}

func TestLogDiagnosticsReportsSystemError(t *testing.T) {
	lines := captureLogs(t)
	LogDiagnostics(DeviceInfo{SystemStatus: SystemStatusError, SystemError: 3})
	assert.Contains(t, *lines, "System error: 3")
}

func TestSamplerStartFailure(t *testing.T) {
	captureLogs(t)
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	s := NewSampler(&fakeSensor{initErr: errors.New("no ack")}, clock, time.Second)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSensorInit)
	assert.Empty(t, clock.Sleeps())

	_, _, err = s.Sample()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestSamplerSampleReadsDeviceEveryCall(t *testing.T) {
	captureLogs(t)
	sensor := &fakeSensor{samples: []Sample{{Heading: 1}, {Heading: 2, Roll: -1.5, Pitch: 0.25}}}
	s := NewSampler(sensor, timeutil.NewMockClock(time.Unix(0, 0)), 0)
	require.NoError(t, s.Start(context.Background()))

	first, cal, err := s.Sample()
	require.NoError(t, err)
	second, _, err := s.Sample()
	require.NoError(t, err)

	assert.Equal(t, Sample{Heading: 1}, first)
	assert.Equal(t, Sample{Heading: 2, Roll: -1.5, Pitch: 0.25}, second)
	assert.Equal(t, CalibrationStatus{System: 3, Gyro: 3, Accel: 2, Mag: 1}, cal)
	assert.False(t, cal.FullyCalibrated())
	assert.Equal(t, 2, sensor.reads)

	sensor.eulerErr = errors.New("timeout")
	_, _, err = s.Sample()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCalibration)

	require.NoError(t, s.Close())
	assert.True(t, sensor.closed)
}

func TestSamplerKeepsEulerOnCalibrationError(t *testing.T) {
	captureLogs(t)
	timeout := errors.New("timeout")
	sensor := &fakeSensor{samples: []Sample{{Heading: 12.5, Roll: 1, Pitch: 2}}, calErr: timeout}
	s := NewSampler(sensor, timeutil.NewMockClock(time.Unix(0, 0)), 0)
	require.NoError(t, s.Start(context.Background()))

	got, cal, err := s.Sample()
	assert.ErrorIs(t, err, ErrCalibration)
	assert.ErrorIs(t, err, timeout)
	assert.Equal(t, Sample{Heading: 12.5, Roll: 1, Pitch: 2}, got)
	assert.Equal(t, CalibrationStatus{}, cal)
}

func TestCalibrationStatus(t *testing.T) {
	assert.True(t, CalibrationStatus{3, 3, 3, 3}.FullyCalibrated())
	assert.Equal(t, "sys=3 gyro=2 accel=1 mag=0", CalibrationStatus{3, 2, 1, 0}.String())
	assert.Equal(t, "(1.0000, -2.5000, 0.0625)", Sample{1, -2.5, 0.0625}.String())
}
