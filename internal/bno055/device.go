// Package bno055 drives a Bosch BNO055 absolute orientation sensor over its
// UART interface.
package bno055

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/positionimu/internal/monitoring"
	"github.com/banshee-data/positionimu/internal/orientation"
	"github.com/banshee-data/positionimu/internal/serialport"
	"github.com/banshee-data/positionimu/internal/timeutil"
)

var (
	// ErrChipID is returned when the chip ID register does not read 0xA0.
	ErrChipID = errors.New("bno055: unexpected chip id")

	// ErrResponse is returned when the device answers with an unexpected frame.
	ErrResponse = errors.New("bno055: unexpected response")

	// ErrTimeout is returned when the device stops sending mid-response.
	ErrTimeout = errors.New("bno055: timeout waiting for response")
)

// maxAttempts bounds retries after a bus overrun status.
const maxAttempts = 5

const (
	resetDelay    = 650 * time.Millisecond
	modeDelay     = 30 * time.Millisecond
	selfTestDelay = time.Second
)

// Device is a BNO055 attached to a serial port. It implements
// orientation.Sensor.
type Device struct {
	port  serialport.SerialPorter
	clock timeutil.Clock
	mode  byte
}

var _ orientation.Sensor = (*Device)(nil)

// New returns a Device using port. A nil clock uses the real clock.
func New(port serialport.SerialPorter, clock timeutil.Clock) *Device {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Device{port: port, clock: clock, mode: ModeNDOF}
}

func (d *Device) flushInput() {
	if f, ok := d.port.(serialport.InputFlusher); ok {
		if err := f.ResetInputBuffer(); err != nil {
			monitoring.Debugf("bno055: flush input: %v", err)
		}
	}
}

func (d *Device) readFull(buf []byte) error {
	got := 0
	for got < len(buf) {
		n, err := d.port.Read(buf[got:])
		if err != nil {
			return fmt.Errorf("bno055: read: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: got %d of %d bytes", ErrTimeout, got, len(buf))
		}
		got += n
	}
	return nil
}

// send writes cmd and returns the two byte response header. Commands that do
// not need an acknowledgement return nil. A bus overrun status is retried.
func (d *Device) send(cmd []byte, ack bool) ([]byte, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		d.flushInput()
		if _, err := d.port.Write(cmd); err != nil {
			return nil, fmt.Errorf("bno055: write: %w", err)
		}
		monitoring.Debugf("bno055: sent % X", cmd)
		if !ack {
			return nil, nil
		}

		resp := make([]byte, 2)
		if err := d.readFull(resp); err != nil {
			return nil, err
		}
		monitoring.Debugf("bno055: received % X", resp)
		if resp[0] == frameStatus && resp[1] == statusOverrun {
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("bno055: exceeded %d attempts after bus overrun", maxAttempts)
}

func (d *Device) writeBytes(reg byte, data []byte, ack bool) error {
	cmd := make([]byte, 0, 4+len(data))
	cmd = append(cmd, frameStart, frameWrite, reg, byte(len(data)))
	cmd = append(cmd, data...)

	resp, err := d.send(cmd, ack)
	if err != nil {
		return fmt.Errorf("write register 0x%02X: %w", reg, err)
	}
	if ack && (resp[0] != frameStatus || resp[1] != statusWriteOK) {
		return fmt.Errorf("write register 0x%02X: %w: 0x%02X 0x%02X", reg, ErrResponse, resp[0], resp[1])
	}
	return nil
}

func (d *Device) writeByte(reg, value byte, ack bool) error {
	return d.writeBytes(reg, []byte{value}, ack)
}

func (d *Device) readBytes(reg byte, length int) ([]byte, error) {
	resp, err := d.send([]byte{frameStart, frameRead, reg, byte(length)}, true)
	if err != nil {
		return nil, fmt.Errorf("read register 0x%02X: %w", reg, err)
	}
	if resp[0] != frameReadOK {
		return nil, fmt.Errorf("read register 0x%02X: %w: 0x%02X 0x%02X", reg, ErrResponse, resp[0], resp[1])
	}

	data := make([]byte, int(resp[1]))
	if err := d.readFull(data); err != nil {
		return nil, fmt.Errorf("read register 0x%02X: %w", reg, err)
	}
	if len(data) != length {
		return nil, fmt.Errorf("read register 0x%02X: %w: length %d, want %d", reg, ErrResponse, len(data), length)
	}
	return data, nil
}

func (d *Device) readByte(reg byte) (byte, error) {
	data, err := d.readBytes(reg, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (d *Device) setMode(mode byte) error {
	if err := d.writeByte(regOprMode, mode, true); err != nil {
		return err
	}
	d.clock.Sleep(modeDelay)
	return nil
}

func (d *Device) configMode() error {
	return d.setMode(ModeConfig)
}

func (d *Device) operationMode() error {
	return d.setMode(d.mode)
}

// Begin resets the device and puts it in NDOF fusion mode.
func (d *Device) Begin(ctx context.Context) error {
	// The first command after power-up may be garbled, so its response is
	// ignored.
	if err := d.writeByte(regPageID, 0, false); err != nil {
		return err
	}
	if err := d.configMode(); err != nil {
		return err
	}
	if err := d.writeByte(regPageID, 0, true); err != nil {
		return err
	}

	id, err := d.readByte(regChipID)
	if err != nil {
		return err
	}
	if id != ChipID {
		return fmt.Errorf("%w: 0x%02X", ErrChipID, id)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// The device drops the link while resetting so no ack arrives.
	if err := d.writeByte(regSysTrigger, triggerReset, false); err != nil {
		return err
	}
	d.clock.Sleep(resetDelay)

	if err := d.writeByte(regPwrMode, powerModeNormal, true); err != nil {
		return err
	}
	if err := d.writeByte(regSysTrigger, 0, true); err != nil {
		return err
	}
	return d.operationMode()
}

// SystemStatus returns the system status, self-test result and system error
// registers. With runSelfTest the power-on self test is triggered first;
// otherwise the self-test result is reported as zero.
func (d *Device) SystemStatus(runSelfTest bool) (status, selfTest, sysErr byte, err error) {
	if runSelfTest {
		if err = d.configMode(); err != nil {
			return
		}
		var trigger byte
		if trigger, err = d.readByte(regSysTrigger); err != nil {
			return
		}
		if err = d.writeByte(regSysTrigger, trigger|triggerSelfTest, true); err != nil {
			return
		}
		d.clock.Sleep(selfTestDelay)
		if selfTest, err = d.readByte(regSelfTestResult); err != nil {
			return
		}
		if err = d.operationMode(); err != nil {
			return
		}
	}

	if status, err = d.readByte(regSysStat); err != nil {
		return
	}
	sysErr, err = d.readByte(regSysErr)
	return
}

// Revision returns the software, bootloader and sensor revision registers.
func (d *Device) Revision() (sw uint16, bl, accel, mag, gyro byte, err error) {
	regs := []struct {
		reg byte
		dst *byte
	}{
		{regAccelRev, &accel},
		{regMagRev, &mag},
		{regGyroRev, &gyro},
		{regBLRev, &bl},
	}
	for _, r := range regs {
		if *r.dst, err = d.readByte(r.reg); err != nil {
			return
		}
	}

	var lsb, msb byte
	if lsb, err = d.readByte(regSWRevLSB); err != nil {
		return
	}
	if msb, err = d.readByte(regSWRevMSB); err != nil {
		return
	}
	sw = uint16(msb)<<8 | uint16(lsb)
	return
}

// Initialize runs Begin, the self test and the revision read.
func (d *Device) Initialize(ctx context.Context) (orientation.DeviceInfo, error) {
	var info orientation.DeviceInfo
	if err := d.Begin(ctx); err != nil {
		return info, err
	}

	status, selfTest, sysErr, err := d.SystemStatus(true)
	if err != nil {
		return info, fmt.Errorf("system status: %w", err)
	}
	sw, bl, accel, mag, gyro, err := d.Revision()
	if err != nil {
		return info, fmt.Errorf("revision: %w", err)
	}

	info = orientation.DeviceInfo{
		SystemStatus:      status,
		SelfTest:          selfTest,
		SystemError:       sysErr,
		SoftwareVersion:   sw,
		BootloaderVersion: bl,
		AccelID:           accel,
		MagID:             mag,
		GyroID:            gyro,
	}
	return info, nil
}

// ReadEuler returns heading, roll and pitch in degrees.
func (d *Device) ReadEuler() (orientation.Sample, error) {
	data, err := d.readBytes(regEulerHLSB, 6)
	if err != nil {
		return orientation.Sample{}, err
	}
	return decodeEuler(data), nil
}

func decodeEuler(data []byte) orientation.Sample {
	h := int16(binary.LittleEndian.Uint16(data[0:2]))
	r := int16(binary.LittleEndian.Uint16(data[2:4]))
	p := int16(binary.LittleEndian.Uint16(data[4:6]))
	return orientation.Sample{
		Heading: float64(h) / eulerScale,
		Roll:    float64(r) / eulerScale,
		Pitch:   float64(p) / eulerScale,
	}
}

// ReadCalibrationStatus returns the four 2-bit calibration levels.
func (d *Device) ReadCalibrationStatus() (orientation.CalibrationStatus, error) {
	c, err := d.readByte(regCalibStat)
	if err != nil {
		return orientation.CalibrationStatus{}, err
	}
	return decodeCalibration(c), nil
}

func decodeCalibration(c byte) orientation.CalibrationStatus {
	return orientation.CalibrationStatus{
		System: (c >> 6) & 0x03,
		Gyro:   (c >> 4) & 0x03,
		Accel:  (c >> 2) & 0x03,
		Mag:    c & 0x03,
	}
}

// Close closes the underlying port.
func (d *Device) Close() error {
	return d.port.Close()
}
