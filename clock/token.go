package clock

import "omibyte.io/samhal/chip"

// DfllToken is the exclusive register-level capability for the DFLL48M
// oscillator. Exactly one must exist per chip; NewDfllToken is meant to be
// called once at clock-tree bring-up and the token then moves between Dfll
// wrappers, never copied.
//
// Every mutating write is followed by a spin on the DFLLSYNC bit guarding
// that register group: the write takes several oscillator cycles to
// propagate, and a dependent write issued before the bit clears would be
// lost.
type DfllToken struct {
	b    chip.Bus
	base uint32
}

func NewDfllToken(bus chip.Bus, base uint32) *DfllToken {
	return &DfllToken{b: bus, base: base}
}

func (t *DfllToken) ctrla() chip.Reg8 {
	return chip.Reg8{Bus: t.b, Addr: t.base + chip.OscDfllctrla}
}

func (t *DfllToken) ctrlb() chip.Reg8 {
	return chip.Reg8{Bus: t.b, Addr: t.base + chip.OscDfllctrlb}
}

func (t *DfllToken) val() chip.Reg32 {
	return chip.Reg32{Bus: t.b, Addr: t.base + chip.OscDfllval}
}

func (t *DfllToken) mul() chip.Reg32 {
	return chip.Reg32{Bus: t.b, Addr: t.base + chip.OscDfllmul}
}

func (t *DfllToken) waitSync(bit uint8) {
	sync := chip.Reg8{Bus: t.b, Addr: t.base + chip.OscDfllsync}
	for sync.HasBits(bit) {
	}
}

func (t *DfllToken) enable() {
	t.ctrla().SetBits(chip.OscDfllctrlaEnable)
	t.waitSync(chip.OscDfllsyncEnable)
}

func (t *DfllToken) disable() {
	t.ctrla().ClearBits(chip.OscDfllctrlaEnable)
	t.waitSync(chip.OscDfllsyncEnable)
}

// setSleepConfig programs the RUNSTDBY and ONDEMAND behavior bits without
// touching the enable bit.
func (t *DfllToken) setSleepConfig(runStandby, onDemand bool) {
	r := t.ctrla()
	v := r.Get() &^ (chip.OscDfllctrlaRunstdby | chip.OscDfllctrlaOndemand)
	if runStandby {
		v |= chip.OscDfllctrlaRunstdby
	}
	if onDemand {
		v |= chip.OscDfllctrlaOndemand
	}
	r.Set(v)
	t.waitSync(chip.OscDfllsyncEnable)
}

func (t *DfllToken) setOpenMode() {
	t.ctrlb().ClearBits(chip.OscDfllctrlbMode)
	t.waitSync(chip.OscDfllsyncDfllctrlb)
}

func (t *DfllToken) setClosedMode() {
	t.ctrlb().SetBits(chip.OscDfllctrlbMode)
	t.waitSync(chip.OscDfllsyncDfllctrlb)
}

func (t *DfllToken) setFineMaximumStep(v uint8) {
	t.mul().ReplaceBits(uint32(v), chip.OscDfllmulFstepMask, chip.OscDfllmulFstepShift)
	t.waitSync(chip.OscDfllsyncDfllmul)
}

func (t *DfllToken) setCoarseMaximumStep(v uint8) {
	t.mul().ReplaceBits(uint32(v), chip.OscDfllmulCstepMask, chip.OscDfllmulCstepShift)
	t.waitSync(chip.OscDfllsyncDfllmul)
}

func (t *DfllToken) setMultiplicationFactor(v uint16) {
	t.mul().ReplaceBits(uint32(v), chip.OscDfllmulMulMask, chip.OscDfllmulMulShift)
	t.waitSync(chip.OscDfllsyncDfllmul)
}

// Calibrate loads the factory coarse value from the NVM calibration row into
// DFLLVAL. Bring-up should do this before the first enable so the open-loop
// output starts near 48 MHz.
func (t *DfllToken) Calibrate() {
	coarse := chip.Dfll48Coarse(t.b)
	t.val().ReplaceBits(uint32(coarse), chip.OscDfllvalCoarseMask, chip.OscDfllvalCoarseShift)
	t.waitSync(chip.OscDfllsyncDfllval)
}
