package clock

// DfllBase is the open-loop target frequency of the DFLL48M.
const DfllBase = Hertz(48_000_000)

// DfllOpenLoop is the DFLL free-running on its internal tuning, nominally
// 48 MHz. It needs no reference clock.
type DfllOpenLoop struct {
	token      *DfllToken
	mul        uint16
	runStandby bool
	onDemand   bool
}

// OpenLoopDfll wraps the token in open-loop mode.
func OpenLoopDfll(token *DfllToken) *DfllOpenLoop {
	return &DfllOpenLoop{token: token, mul: 1}
}

func (d *DfllOpenLoop) Freq() Hertz {
	return DfllBase * Hertz(d.mul)
}

// SetStandbySleepMode keeps the oscillator running through standby sleep.
func (d *DfllOpenLoop) SetStandbySleepMode(on bool) { d.runStandby = on }

// SetOnDemandMode runs the oscillator only while a peripheral requests it.
func (d *DfllOpenLoop) SetOnDemandMode(on bool) { d.onDemand = on }

// Enable clears the mode bit, programs the sleep behavior and sets the
// oscillator running.
func (d *DfllOpenLoop) Enable() *Enabled[*DfllOpenLoop] {
	d.token.setOpenMode()
	d.token.setSleepConfig(d.runStandby, d.onDemand)
	d.token.enable()
	return newEnabled(d)
}

// Free detaches and returns the register token.
func (d *DfllOpenLoop) Free() *DfllToken {
	return d.token
}

func (d *DfllOpenLoop) disable() {
	d.token.disable()
}

// DfllClosedLoop is the DFLL continuously corrected against a reference
// clock: output = reference frequency × multiplication factor.
type DfllClosedLoop struct {
	token      *DfllToken
	ref        Pclk
	mul        uint16
	coarseStep uint8
	fineStep   uint8
	runStandby bool
	onDemand   bool
}

// ClosedLoopDfll wraps the token in closed-loop mode with its tuning
// parameters. Nothing is written until Enable.
func ClosedLoopDfll(token *DfllToken, ref Pclk, mul uint16, coarseStep, fineStep uint8) *DfllClosedLoop {
	return &DfllClosedLoop{token: token, ref: ref, mul: mul, coarseStep: coarseStep, fineStep: fineStep}
}

func (d *DfllClosedLoop) Freq() Hertz {
	return d.ref.Freq() * Hertz(d.mul)
}

// Tuning setters, usable until Enable programs the hardware.

func (d *DfllClosedLoop) SetMultiplicationFactor(mul uint16) { d.mul = mul }
func (d *DfllClosedLoop) SetCoarseMaximumStep(v uint8)       { d.coarseStep = v }
func (d *DfllClosedLoop) SetFineMaximumStep(v uint8)         { d.fineStep = v }
func (d *DfllClosedLoop) SetStandbySleepMode(on bool)        { d.runStandby = on }
func (d *DfllClosedLoop) SetOnDemandMode(on bool)            { d.onDemand = on }

// Enable programs fine step, coarse step and multiplication factor, then
// sets the closed-loop mode bit — in that order. The loop starts tracking
// the instant the mode bit lands, so stale tuning values would corrupt the
// initial lock. The oscillator itself is expected to be running already;
// closed-loop mode is only ever entered from an enabled open-loop DFLL.
func (d *DfllClosedLoop) Enable() *Enabled[*DfllClosedLoop] {
	d.token.setSleepConfig(d.runStandby, d.onDemand)
	d.token.setFineMaximumStep(d.fineStep)
	d.token.setCoarseMaximumStep(d.coarseStep)
	d.token.setMultiplicationFactor(d.mul)
	d.token.setClosedMode()
	return newEnabled(d)
}

// Free detaches and returns the register token together with the reference
// clock handle.
func (d *DfllClosedLoop) Free() (*DfllToken, Pclk) {
	return d.token, d.ref
}

func (d *DfllClosedLoop) disable() {
	d.token.disable()
}
