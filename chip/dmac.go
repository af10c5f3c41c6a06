package chip

// DMAC register layout. Two hardware generations exist:
//
// The SAMD11/SAMD21 block exposes one set of channel control registers that
// is multiplexed through the CHID selector; software must select a channel
// before touching its registers, and nothing stops an interrupt handler from
// moving the selector mid-sequence.
//
// The SAMD51/SAME5x block gives every channel a dedicated 16-byte register
// group at DmacChannelBase + n*DmacChannelSize, so no selector and no masking
// is needed.

// Block base addresses.
const (
	DmacBaseSAMD21 = 0x41004800
	DmacBaseSAMX51 = 0x4100A000
)

// Controller-level register offsets, common to both generations.
const (
	DmacCtrl       = 0x00 // 16-bit
	DmacPrictrl0   = 0x14 // 32-bit
	DmacSwtrigctrl = 0x10 // 32-bit, one trigger bit per channel
	DmacIntstatus  = 0x24 // 32-bit
	DmacBusych     = 0x28 // 32-bit, one busy bit per channel
	DmacPendch     = 0x2C // 32-bit, one pending bit per channel
	DmacActive     = 0x30 // 32-bit
	DmacBaseaddr   = 0x34 // 32-bit, descriptor memory base
	DmacWrbaddr    = 0x38 // 32-bit, write-back memory base
)

// CTRL bits.
const (
	DmacCtrlSwrst     = 1 << 0
	DmacCtrlDmaenable = 1 << 1
	DmacCtrlLvlen0    = 1 << 8
	DmacCtrlLvlen1    = 1 << 9
	DmacCtrlLvlen2    = 1 << 10
	DmacCtrlLvlen3    = 1 << 11
)

// SAMD21 channel registers, reached through the CHID selector.
const (
	DmacChid       = 0x3F // 8-bit channel selector
	DmacChctrlaD21 = 0x40 // 8-bit
	DmacChctrlbD21 = 0x44 // 32-bit
	DmacChintenclr = 0x4C // 8-bit
	DmacChintenset = 0x4D // 8-bit
	DmacChintflag  = 0x4E // 8-bit
	DmacChstatus   = 0x4F // 8-bit
)

// SAMD21 CHCTRLA bits (8-bit register).
const (
	DmacChctrlaD21Swrst  = 1 << 0
	DmacChctrlaD21Enable = 1 << 1
)

// SAMD21 CHCTRLB fields (32-bit register).
const (
	DmacChctrlbD21LvlMask      = 0x3
	DmacChctrlbD21LvlShift     = 5
	DmacChctrlbD21TrigsrcMask  = 0x3F
	DmacChctrlbD21TrigsrcShift = 8
	DmacChctrlbD21TrigactMask  = 0x3
	DmacChctrlbD21TrigactShift = 22
)

// SAMX51 per-channel register group.
const (
	DmacChannelBase = 0x40 // first channel group offset
	DmacChannelSize = 0x10 // stride between channel groups

	DmacChctrlaX51    = 0x00 // 32-bit
	DmacChctrlbX51    = 0x04 // 8-bit
	DmacChprilvl      = 0x05 // 8-bit
	DmacChintenclrX51 = 0x0C // 8-bit
	DmacChintensetX51 = 0x0D // 8-bit
	DmacChintflagX51  = 0x0E // 8-bit
	DmacChstatusX51   = 0x0F // 8-bit
)

// SAMX51 CHCTRLA fields (32-bit register).
const (
	DmacChctrlaX51Swrst          = 1 << 0
	DmacChctrlaX51Enable         = 1 << 1
	DmacChctrlaX51TrigsrcMask    = 0x7F
	DmacChctrlaX51TrigsrcShift   = 8
	DmacChctrlaX51TrigactMask    = 0x3
	DmacChctrlaX51TrigactShift   = 20
	DmacChctrlaX51BurstlenMask   = 0xF
	DmacChctrlaX51BurstlenShift  = 24
	DmacChctrlaX51ThresholdMask  = 0x3
	DmacChctrlaX51ThresholdShift = 28
)

// SAMX51 CHPRILVL field.
const (
	DmacChprilvlMask  = 0x3
	DmacChprilvlShift = 0
)

// Channel interrupt bits, identical across generations
// (CHINTENSET/CHINTENCLR/CHINTFLAG). Bits 3..7 are reserved.
const (
	DmacChintTerr  = 1 << 0
	DmacChintTcmpl = 1 << 1
	DmacChintSusp  = 1 << 2
	DmacChintMask  = DmacChintTerr | DmacChintTcmpl | DmacChintSusp
)
