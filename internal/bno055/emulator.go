package bno055

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/banshee-data/positionimu/internal/units"
)

// Emulator answers the BNO055 UART protocol from an in-memory register map so
// the tracker can run without hardware. Each Euler read turns the heading by
// HeadingStep degrees.
type Emulator struct {
	mu sync.Mutex

	regs     [0x80]byte
	out      bytes.Buffer
	closed   bool
	overruns int
	heading  float64

	// HeadingStep is the heading change per Euler read, in degrees.
	HeadingStep float64
	Roll        float64
	Pitch       float64
}

// NewEmulator returns an emulator in its power-on state.
func NewEmulator() *Emulator {
	e := &Emulator{HeadingStep: 1, Roll: 0.5, Pitch: -1.25}
	e.reset()
	return e
}

func (e *Emulator) reset() {
	e.regs = [0x80]byte{}
	e.regs[regChipID] = ChipID
	e.regs[regAccelRev] = 0xFB
	e.regs[regMagRev] = 0x32
	e.regs[regGyroRev] = 0x0F
	e.regs[regSWRevLSB] = 0x11
	e.regs[regSWRevMSB] = 0x03
	e.regs[regBLRev] = 0x15
	e.regs[regSysStat] = 0x05
	e.regs[regCalibStat] = 0xFF
}

// InjectOverruns makes the next n commands answer with a bus overrun status.
func (e *Emulator) InjectOverruns(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overruns = n
}

// SetRegister overwrites a register value.
func (e *Emulator) SetRegister(reg, value byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regs[reg&0x7F] = value
}

// Register returns a register value.
func (e *Emulator) Register(reg byte) byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.regs[reg&0x7F]
}

// Write decodes one command frame and queues its response.
func (e *Emulator) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, errors.New("bno055 emulator: closed")
	}
	if len(p) < 4 || p[0] != frameStart {
		e.out.Write([]byte{frameStatus, 0x06})
		return len(p), nil
	}
	if e.overruns > 0 {
		e.overruns--
		e.out.Write([]byte{frameStatus, statusOverrun})
		return len(p), nil
	}

	reg, length := p[2]&0x7F, int(p[3])
	switch p[1] {
	case frameWrite:
		data := p[4:]
		if len(data) != length {
			e.out.Write([]byte{frameStatus, 0x06})
			return len(p), nil
		}
		e.applyWrite(reg, data)
		e.out.Write([]byte{frameStatus, statusWriteOK})
	case frameRead:
		if reg == regEulerHLSB {
			e.advanceEuler()
		}
		e.out.Write([]byte{frameReadOK, byte(length)})
		for i := 0; i < length; i++ {
			e.out.WriteByte(e.regs[(int(reg)+i)&0x7F])
		}
	default:
		e.out.Write([]byte{frameStatus, 0x06})
	}
	return len(p), nil
}

func (e *Emulator) applyWrite(reg byte, data []byte) {
	for i, b := range data {
		e.regs[(int(reg)+i)&0x7F] = b
	}
	if reg != regSysTrigger || len(data) == 0 {
		return
	}
	switch {
	case data[0]&triggerReset != 0:
		e.reset()
	case data[0]&triggerSelfTest != 0:
		e.regs[regSelfTestResult] = 0x0F
		e.regs[regSysTrigger] &^= triggerSelfTest
	}
}

func (e *Emulator) advanceEuler() {
	e.heading = units.WrapDegrees(e.heading + e.HeadingStep)
	put := func(off int, deg float64) {
		binary.LittleEndian.PutUint16(e.regs[regEulerHLSB+off:], uint16(int16(deg*eulerScale)))
	}
	put(0, e.heading)
	put(2, e.Roll)
	put(4, e.Pitch)
}

// Read drains queued response bytes. With nothing queued it returns zero
// bytes, as a serial port does on read timeout.
func (e *Emulator) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, errors.New("bno055 emulator: closed")
	}
	if e.out.Len() == 0 {
		return 0, nil
	}
	return e.out.Read(p)
}

// ResetInputBuffer discards queued responses.
func (e *Emulator) ResetInputBuffer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.out.Reset()
	return nil
}

// Close marks the emulator closed.
func (e *Emulator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
