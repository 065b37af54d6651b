package bno055

// Page 0 register addresses.
const (
	regChipID         = 0x00
	regAccelRev       = 0x01
	regMagRev         = 0x02
	regGyroRev        = 0x03
	regSWRevLSB       = 0x04
	regSWRevMSB       = 0x05
	regBLRev          = 0x06
	regPageID         = 0x07
	regEulerHLSB      = 0x1A
	regCalibStat      = 0x35
	regSelfTestResult = 0x36
	regSysStat        = 0x39
	regSysErr         = 0x3A
	regOprMode        = 0x3D
	regPwrMode        = 0x3E
	regSysTrigger     = 0x3F
)

// ChipID is the value of the chip ID register on a genuine BNO055.
const ChipID = 0xA0

// Operation modes.
const (
	ModeConfig = 0x00
	ModeNDOF   = 0x0C
)

const powerModeNormal = 0x00

// SYS_TRIGGER bits.
const (
	triggerSelfTest = 0x01
	triggerReset    = 0x20
)

// UART framing bytes.
const (
	frameStart    = 0xAA
	frameWrite    = 0x00
	frameRead     = 0x01
	frameReadOK   = 0xBB
	frameStatus   = 0xEE
	statusWriteOK = 0x01
	statusOverrun = 0x07
)

// eulerScale converts raw Euler LSBs to degrees.
const eulerScale = 16.0
