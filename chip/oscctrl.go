package chip

// OSCCTRL DFLL48M register layout (SAMD51/SAME5x). Every mutating write to
// this block is shadowed by a bit in DFLLSYNC that stays set while the write
// propagates through the oscillator clock domain; software must not issue a
// dependent write until the matching bit clears.

const OscctrlBaseSAMX51 = 0x40001000

// Register offsets within OSCCTRL.
const (
	OscDfllctrla = 0x00 // 8-bit
	OscDfllctrlb = 0x04 // 8-bit
	OscDfllval   = 0x08 // 32-bit
	OscDfllmul   = 0x0C // 32-bit
	OscDfllsync  = 0x10 // 8-bit
)

// DFLLCTRLA bits.
const (
	OscDfllctrlaEnable   = 1 << 1
	OscDfllctrlaRunstdby = 1 << 6
	OscDfllctrlaOndemand = 1 << 7
)

// DFLLCTRLB bits.
const (
	OscDfllctrlbMode     = 1 << 0 // closed-loop when set
	OscDfllctrlbStable   = 1 << 1
	OscDfllctrlbUsbcrm   = 1 << 3
	OscDfllctrlbWaitlock = 1 << 5
)

// DFLLVAL fields.
const (
	OscDfllvalFineMask    = 0xFF
	OscDfllvalFineShift   = 0
	OscDfllvalCoarseMask  = 0x3F
	OscDfllvalCoarseShift = 10
)

// DFLLMUL fields.
const (
	OscDfllmulMulMask    = 0xFFFF
	OscDfllmulMulShift   = 0
	OscDfllmulFstepMask  = 0xFF
	OscDfllmulFstepShift = 16
	OscDfllmulCstepMask  = 0x3F
	OscDfllmulCstepShift = 26
)

// DFLLSYNC bits. Each guards the register it is named after.
const (
	OscDfllsyncEnable    = 1 << 1
	OscDfllsyncDfllctrlb = 1 << 2
	OscDfllsyncDfllval   = 1 << 3
	OscDfllsyncDfllmul   = 1 << 4
)

// NVM software calibration row. The DFLL48M coarse value is factory
// programmed at bits [31:26] of the second word.
const (
	CalibRowAddr        = 0x00806020
	CalibDfll48CoarseAt = CalibRowAddr + 4
	calibCoarseShift    = 26
	calibCoarseMask     = 0x3F
)

// Dfll48Coarse reads the factory coarse calibration for the DFLL48M from the
// NVM calibration row. An erased row (all ones) falls back to midscale.
func Dfll48Coarse(bus Bus) uint8 {
	v := uint8(bus.Read32(CalibDfll48CoarseAt) >> calibCoarseShift & calibCoarseMask)
	if v == 0x3F {
		v = 0x1F
	}
	return v
}
