package sim

import "omibyte.io/samhal/chip"

// DFLL models the OSCCTRL DFLL48M register group. Each write to a guarded
// register raises its DFLLSYNC bit for SyncReads reads of DFLLSYNC, matching
// the multi-cycle propagation into the oscillator clock domain.
type DFLL struct {
	bus  *Bus
	base uint32

	SyncReads int

	ctrla uint8
	ctrlb uint8
	val   uint32
	mul   uint32
	sync  uint8
}

func NewDFLL(bus *Bus, base uint32) *DFLL {
	d := &DFLL{bus: bus, base: base, SyncReads: 2}
	d.install()
	return d
}

func (d *DFLL) install() {
	b := d.bus
	syncAddr := d.base + chip.OscDfllsync

	guard := func(bit uint8) {
		d.sync |= bit
		b.After(syncAddr, d.SyncReads, func() { d.sync &^= bit })
	}

	b.MapWrite(d.base+chip.OscDfllctrla, func(_ uint8, v uint32) bool {
		d.ctrla = uint8(v)
		guard(chip.OscDfllsyncEnable)
		return true
	})
	b.MapRead(d.base+chip.OscDfllctrla, func(uint8) uint32 { return uint32(d.ctrla) })

	b.MapWrite(d.base+chip.OscDfllctrlb, func(_ uint8, v uint32) bool {
		d.ctrlb = uint8(v)
		guard(chip.OscDfllsyncDfllctrlb)
		return true
	})
	b.MapRead(d.base+chip.OscDfllctrlb, func(uint8) uint32 { return uint32(d.ctrlb) })

	b.MapWrite(d.base+chip.OscDfllval, func(_ uint8, v uint32) bool {
		d.val = v
		guard(chip.OscDfllsyncDfllval)
		return true
	})
	b.MapRead(d.base+chip.OscDfllval, func(uint8) uint32 { return d.val })

	b.MapWrite(d.base+chip.OscDfllmul, func(_ uint8, v uint32) bool {
		d.mul = v
		guard(chip.OscDfllsyncDfllmul)
		return true
	})
	b.MapRead(d.base+chip.OscDfllmul, func(uint8) uint32 { return d.mul })

	b.MapRead(syncAddr, func(uint8) uint32 { return uint32(d.sync) })
}

// Enabled reports the DFLLCTRLA enable bit.
func (d *DFLL) Enabled() bool { return d.ctrla&chip.OscDfllctrlaEnable != 0 }

// RunStandby reports the DFLLCTRLA RUNSTDBY bit.
func (d *DFLL) RunStandby() bool { return d.ctrla&chip.OscDfllctrlaRunstdby != 0 }

// OnDemand reports the DFLLCTRLA ONDEMAND bit.
func (d *DFLL) OnDemand() bool { return d.ctrla&chip.OscDfllctrlaOndemand != 0 }

// ClosedLoop reports the DFLLCTRLB mode bit.
func (d *DFLL) ClosedLoop() bool { return d.ctrlb&chip.OscDfllctrlbMode != 0 }

// Mul returns the raw DFLLMUL register.
func (d *DFLL) Mul() uint32 { return d.mul }

// Val returns the raw DFLLVAL register.
func (d *DFLL) Val() uint32 { return d.val }
