// Package chip is the register capability layer. It carries the vendor
// register addresses and bit positions for the supported SAM families and
// the Bus abstraction every peripheral driver goes through.
//
// The layouts here are transcribed from the vendor datasheets and are treated
// as a pre-existing capability table; nothing in this module invents register
// semantics.
package chip

// Bus is a byte-addressed register bus. On hardware this is the AHB/APB
// window of the chip; on a hosted build it is either a memory-mapped window
// (see mmio) or the register simulator.
type Bus interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, v uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, v uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

// IntCtrl masks and restores the interrupt layer. DisableInterrupts returns
// the previous state, which must be handed back to EnableInterrupts, matching
// the PRIMASK save/restore sequence on Cortex-M.
type IntCtrl interface {
	DisableInterrupts() uint32
	EnableInterrupts(state uint32)
}

// Reg8 is a handle to one 8-bit register.
type Reg8 struct {
	Bus  Bus
	Addr uint32
}

func (r Reg8) Get() uint8           { return r.Bus.Read8(r.Addr) }
func (r Reg8) Set(v uint8)          { r.Bus.Write8(r.Addr, v) }
func (r Reg8) SetBits(mask uint8)   { r.Set(r.Get() | mask) }
func (r Reg8) ClearBits(mask uint8) { r.Set(r.Get() &^ mask) }
func (r Reg8) HasBits(mask uint8) bool {
	return r.Get()&mask != 0
}

// ReplaceBits writes val into the field selected by mask and shift, leaving
// all other bits untouched.
func (r Reg8) ReplaceBits(val, mask uint8, shift int) {
	r.Set(r.Get()&^(mask<<shift) | (val&mask)<<shift)
}

// Reg16 is a handle to one 16-bit register.
type Reg16 struct {
	Bus  Bus
	Addr uint32
}

func (r Reg16) Get() uint16           { return r.Bus.Read16(r.Addr) }
func (r Reg16) Set(v uint16)          { r.Bus.Write16(r.Addr, v) }
func (r Reg16) SetBits(mask uint16)   { r.Set(r.Get() | mask) }
func (r Reg16) ClearBits(mask uint16) { r.Set(r.Get() &^ mask) }
func (r Reg16) HasBits(mask uint16) bool {
	return r.Get()&mask != 0
}

func (r Reg16) ReplaceBits(val, mask uint16, shift int) {
	r.Set(r.Get()&^(mask<<shift) | (val&mask)<<shift)
}

// Reg32 is a handle to one 32-bit register.
type Reg32 struct {
	Bus  Bus
	Addr uint32
}

func (r Reg32) Get() uint32           { return r.Bus.Read32(r.Addr) }
func (r Reg32) Set(v uint32)          { r.Bus.Write32(r.Addr, v) }
func (r Reg32) SetBits(mask uint32)   { r.Set(r.Get() | mask) }
func (r Reg32) ClearBits(mask uint32) { r.Set(r.Get() &^ mask) }
func (r Reg32) HasBits(mask uint32) bool {
	return r.Get()&mask != 0
}

func (r Reg32) ReplaceBits(val, mask uint32, shift int) {
	r.Set(r.Get()&^(mask<<shift) | (val&mask)<<shift)
}
