package clock

import (
	"errors"
	"testing"

	"omibyte.io/samhal/chip"
	"omibyte.io/samhal/sim"
)

func newDfllSim(t *testing.T) (*sim.Bus, *sim.DFLL, *DfllToken) {
	t.Helper()
	bus := sim.New()
	model := sim.NewDFLL(bus, chip.OscctrlBaseSAMX51)
	return bus, model, NewDfllToken(bus, chip.OscctrlBaseSAMX51)
}

func TestOpenLoopEnable(t *testing.T) {
	_, model, token := newDfllSim(t)

	enabled := OpenLoopDfll(token).Enable()
	if !model.Enabled() {
		t.Fatal("DFLLCTRLA enable bit not set")
	}
	if model.ClosedLoop() {
		t.Fatal("mode bit set for open loop")
	}
	if got := enabled.Freq(); got != 48_000_000 {
		t.Errorf("Freq = %d, want 48000000", got)
	}
	if got := enabled.Users(); got != 0 {
		t.Errorf("fresh source has %d users", got)
	}
}

func TestClosedLoopProgramsTuningBeforeMode(t *testing.T) {
	bus, model, token := newDfllSim(t)
	open := OpenLoopDfll(token).Enable()

	bus.ResetTrace()
	g := UseAsGclk0(open)
	closed, err := ToClosedMode(open, g, NewPclk(PclkDfll48, 32_768), 1464, 1, 10)
	if err != nil {
		t.Fatal(err)
	}

	mulAddr := uint32(chip.OscctrlBaseSAMX51 + chip.OscDfllmul)
	ctrlbAddr := uint32(chip.OscctrlBaseSAMX51 + chip.OscDfllctrlb)
	lastMulWrite, firstModeWrite := -1, -1
	for i, a := range bus.Trace() {
		if !a.Write {
			continue
		}
		switch a.Addr {
		case mulAddr:
			lastMulWrite = i
		case ctrlbAddr:
			if firstModeWrite == -1 {
				firstModeWrite = i
			}
		}
	}
	if lastMulWrite == -1 || firstModeWrite == -1 {
		t.Fatal("expected writes to DFLLMUL and DFLLCTRLB")
	}
	if lastMulWrite > firstModeWrite {
		t.Fatal("mode bit written before the tuning values")
	}

	if got := model.Mul() & chip.OscDfllmulMulMask; got != 1464 {
		t.Errorf("MUL = %d, want 1464", got)
	}
	if got := model.Mul() >> chip.OscDfllmulFstepShift & chip.OscDfllmulFstepMask; got != 10 {
		t.Errorf("FSTEP = %d, want 10", got)
	}
	if got := model.Mul() >> chip.OscDfllmulCstepShift & chip.OscDfllmulCstepMask; got != 1 {
		t.Errorf("CSTEP = %d, want 1", got)
	}
	if !model.ClosedLoop() {
		t.Fatal("mode bit clear after closed-loop enable")
	}
	// The oscillator was already running; entering closed loop must not have
	// touched the enable bit.
	if !model.Enabled() {
		t.Fatal("enable bit lost across the mode switch")
	}
	if got := closed.Freq(); got != 32_768*1464 {
		t.Errorf("Freq = %d, want %d", got, 32_768*1464)
	}
}

func TestEveryWriteWaitsForSync(t *testing.T) {
	bus, model, token := newDfllSim(t)
	OpenLoopDfll(token).Enable()

	syncAddr := uint32(chip.OscctrlBaseSAMX51 + chip.OscDfllsync)
	syncReads := 0
	sawWrite := false
	for _, a := range bus.Trace() {
		if a.Addr == syncAddr && !a.Write {
			syncReads++
			continue
		}
		if a.Write && a.Addr >= chip.OscctrlBaseSAMX51 && a.Addr < syncAddr {
			if sawWrite && syncReads < model.SyncReads {
				t.Fatalf("write to 0x%08x before the previous sync completed", a.Addr)
			}
			sawWrite = true
			syncReads = 0
		}
	}
	if !sawWrite {
		t.Fatal("no register writes recorded")
	}
	if syncReads < model.SyncReads {
		t.Fatal("final write not followed by a sync wait")
	}
}

func TestDisableRefusedWhileSubscribed(t *testing.T) {
	_, model, token := newDfllSim(t)
	enabled := OpenLoopDfll(token).Enable()

	c := enabled.Subscribe()
	if _, err := enabled.Disable(); !errors.Is(err, ErrClockInUse) {
		t.Fatalf("Disable with a consumer: err = %v, want ErrClockInUse", err)
	}
	if !model.Enabled() {
		t.Fatal("refused Disable still stopped the oscillator")
	}

	if err := enabled.Release(c); err != nil {
		t.Fatal(err)
	}
	source, err := enabled.Disable()
	if err != nil {
		t.Fatal(err)
	}
	if model.Enabled() {
		t.Fatal("oscillator still running after Disable")
	}
	if source == nil {
		t.Fatal("Disable returned no source")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("use of a disabled handle did not panic")
		}
	}()
	enabled.Freq()
}

func TestReleaseChecksProvenance(t *testing.T) {
	_, _, token := newDfllSim(t)
	enabled := OpenLoopDfll(token).Enable()

	other := sim.New()
	sim.NewDFLL(other, chip.OscctrlBaseSAMX51)
	stranger := OpenLoopDfll(NewDfllToken(other, chip.OscctrlBaseSAMX51)).Enable().Subscribe()

	if err := enabled.Release(stranger); !errors.Is(err, ErrNotConsumer) {
		t.Errorf("foreign consumer: err = %v, want ErrNotConsumer", err)
	}

	c := enabled.Subscribe()
	if err := enabled.Release(c); err != nil {
		t.Fatal(err)
	}
	if err := enabled.Release(c); !errors.Is(err, ErrReleased) {
		t.Errorf("double release: err = %v, want ErrReleased", err)
	}
}

func TestModeSwitchRoundTrip(t *testing.T) {
	_, model, token := newDfllSim(t)
	open := OpenLoopDfll(token).Enable()
	g := UseAsGclk0(open)

	ref := NewPclk(PclkDfll48, 32_768)
	closed, err := ToClosedMode(open, g, ref, 1000, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := closed.Freq(); got != 32_768_000 {
		t.Errorf("closed-loop Freq = %d, want 32768000", got)
	}
	if got := closed.Users(); got != 1 {
		t.Errorf("users after switch = %d, want 1 (the main generator)", got)
	}
	if !model.ClosedLoop() {
		t.Fatal("mode bit clear in closed loop")
	}

	// The same Gclk0 proof stays valid across the switch back.
	reopened, back, err := ToOpenMode(closed, g)
	if err != nil {
		t.Fatal(err)
	}
	if back.ID() != ref.ID() || back.Freq() != ref.Freq() {
		t.Errorf("reference came back as %v/%d Hz, want %v/%d Hz",
			back.ID(), back.Freq(), ref.ID(), ref.Freq())
	}
	if model.ClosedLoop() {
		t.Fatal("mode bit still set after returning to open loop")
	}
	if got := reopened.Freq(); got != 48_000_000 {
		t.Errorf("open-loop Freq = %d, want 48000000", got)
	}
	if got := reopened.Users(); got != 1 {
		t.Errorf("users after round trip = %d, want 1", got)
	}
}

func TestModeSwitchNeedsSoleConsumer(t *testing.T) {
	_, _, token := newDfllSim(t)
	open := OpenLoopDfll(token).Enable()
	g := UseAsGclk0(open)
	extra := open.Subscribe()

	if _, err := ToClosedMode(open, g, NewPclk(PclkDfll48, 32_768), 1000, 1, 10); !errors.Is(err, ErrClockInUse) {
		t.Fatalf("switch with an extra consumer: err = %v, want ErrClockInUse", err)
	}

	if err := open.Release(extra); err != nil {
		t.Fatal(err)
	}
	if _, err := ToClosedMode(open, g, NewPclk(PclkDfll48, 32_768), 1000, 1, 10); err != nil {
		t.Fatalf("switch after release: %v", err)
	}
}

func TestModeSwitchChecksProof(t *testing.T) {
	_, _, token := newDfllSim(t)
	open := OpenLoopDfll(token).Enable()
	UseAsGclk0(open)

	other := sim.New()
	sim.NewDFLL(other, chip.OscctrlBaseSAMX51)
	foreign := UseAsGclk0(OpenLoopDfll(NewDfllToken(other, chip.OscctrlBaseSAMX51)).Enable())

	if _, err := ToClosedMode(open, foreign, NewPclk(PclkDfll48, 32_768), 1000, 1, 10); !errors.Is(err, ErrNotConsumer) {
		t.Errorf("foreign proof: err = %v, want ErrNotConsumer", err)
	}
	if _, err := ToClosedMode(open, nil, NewPclk(PclkDfll48, 32_768), 1000, 1, 10); !errors.Is(err, ErrNotConsumer) {
		t.Errorf("nil proof: err = %v, want ErrNotConsumer", err)
	}
}

func TestSleepModeBitsProgrammedAtEnable(t *testing.T) {
	_, model, token := newDfllSim(t)
	open := OpenLoopDfll(token)
	open.SetStandbySleepMode(true)
	open.SetOnDemandMode(true)
	enabled := open.Enable()

	if !model.RunStandby() {
		t.Error("RUNSTDBY bit clear after enable")
	}
	if !model.OnDemand() {
		t.Error("ONDEMAND bit clear after enable")
	}
	if !model.Enabled() {
		t.Fatal("enable bit clear after enable")
	}

	// A mode switch rebuilds the source with default sleep behavior; the
	// enable bit itself stays untouched.
	g := UseAsGclk0(enabled)
	if _, err := ToClosedMode(enabled, g, NewPclk(PclkDfll48, 32_768), 1000, 1, 10); err != nil {
		t.Fatal(err)
	}
	if model.RunStandby() || model.OnDemand() {
		t.Error("sleep bits survived the mode switch")
	}
	if !model.Enabled() {
		t.Error("enable bit lost while reprogramming CTRLA")
	}
}

func TestClosedLoopSleepModeBits(t *testing.T) {
	_, model, token := newDfllSim(t)
	closed := ClosedLoopDfll(token, NewPclk(PclkDfll48, 32_768), 1464, 1, 10)
	closed.SetStandbySleepMode(true)
	closed.Enable()

	if !model.RunStandby() {
		t.Error("RUNSTDBY bit clear after closed-loop enable")
	}
	if model.OnDemand() {
		t.Error("ONDEMAND bit set without being requested")
	}
}

func TestCalibrateLoadsFactoryCoarse(t *testing.T) {
	bus, model, token := newDfllSim(t)
	bus.Poke32(chip.CalibDfll48CoarseAt, 0x2A<<26|0x00123456)

	token.Calibrate()
	if got := model.Val() >> chip.OscDfllvalCoarseShift & chip.OscDfllvalCoarseMask; got != 0x2A {
		t.Errorf("DFLLVAL coarse = %#x, want 0x2a", got)
	}
}

func TestCalibrateFallsBackOnErasedRow(t *testing.T) {
	bus, model, token := newDfllSim(t)
	bus.Poke32(chip.CalibDfll48CoarseAt, 0xFFFFFFFF)

	token.Calibrate()
	if got := model.Val() >> chip.OscDfllvalCoarseShift & chip.OscDfllvalCoarseMask; got != 0x1F {
		t.Errorf("DFLLVAL coarse = %#x, want midscale 0x1f", got)
	}
}
