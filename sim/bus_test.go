package sim

import (
	"strings"
	"testing"

	"omibyte.io/samhal/chip"
)

func TestAfterFiresOnNthRead(t *testing.T) {
	b := New()
	b.Poke32(0x1000, 0xDEAD)

	fired := false
	b.After(0x1000, 3, func() { fired = true })

	b.Read32(0x1000)
	b.Read32(0x1000)
	if fired {
		t.Fatal("countdown fired early")
	}
	b.Read32(0x1000)
	if !fired {
		t.Fatal("countdown did not fire on the third read")
	}

	// Reads of other addresses never tick the countdown.
	fired = false
	b.After(0x1000, 1, func() { fired = true })
	b.Read32(0x2000)
	if fired {
		t.Fatal("unrelated read ticked the countdown")
	}
}

func TestCancelAfter(t *testing.T) {
	b := New()
	fired := false
	b.After(0x1000, 1, func() { fired = true })
	b.CancelAfter(0x1000)
	b.Read32(0x1000)
	if fired {
		t.Fatal("cancelled countdown fired")
	}
}

func TestTraceRecordsMaskState(t *testing.T) {
	b := New()
	b.Read32(0x1000)
	state := b.DisableInterrupts()
	b.Write8(0x1001, 0xAB)
	b.EnableInterrupts(state)
	b.Read16(0x1002)

	want := []struct {
		write  bool
		masked bool
		width  uint8
	}{
		{false, false, 32},
		{true, true, 8},
		{false, false, 16},
	}
	trace := b.Trace()
	if len(trace) != len(want) {
		t.Fatalf("trace has %d accesses, want %d", len(trace), len(want))
	}
	for i, w := range want {
		a := trace[i]
		if a.Write != w.write || a.Masked != w.masked || a.Width != w.width {
			t.Errorf("access %d = %+v, want write=%v masked=%v width=%d",
				i, a, w.write, w.masked, w.width)
		}
	}
}

func TestNestedMaskRestores(t *testing.T) {
	b := New()
	outer := b.DisableInterrupts()
	inner := b.DisableInterrupts()
	b.EnableInterrupts(inner)
	if !b.Masked() {
		t.Fatal("inner restore unmasked the outer critical section")
	}
	b.EnableInterrupts(outer)
	if b.Masked() {
		t.Fatal("outer restore left interrupts masked")
	}
}

func TestPokeBypassesTrace(t *testing.T) {
	b := New()
	b.Poke32(0x3000, 0x12345678)
	if len(b.Trace()) != 0 {
		t.Fatal("Poke recorded a bus access")
	}
	if got := b.Read32(0x3000); got != 0x12345678 {
		t.Errorf("Read32 = %#x, want 0x12345678", got)
	}
}

// calibRowHex is an Intel HEX dump of the second calibration-row word,
// 0xA8000000 at 0x00806024, which carries a DFLL48M coarse value of 0x2A in
// bits [31:26].
const calibRowHex = `:0200000400807A
:04602400000000A8D0
:00000001FF
`

func TestLoadHex(t *testing.T) {
	b := New()
	if err := b.LoadHex(strings.NewReader(calibRowHex)); err != nil {
		t.Fatal(err)
	}
	if got := b.Peek32(chip.CalibDfll48CoarseAt); got != 0xA8000000 {
		t.Fatalf("calibration word = %#08x, want 0xa8000000", got)
	}
	if got := chip.Dfll48Coarse(b); got != 0x2A {
		t.Errorf("coarse = %#x, want 0x2a", got)
	}
}

func TestLoadHexRejectsGarbage(t *testing.T) {
	b := New()
	if err := b.LoadHex(strings.NewReader("not a hex image")); err == nil {
		t.Fatal("expected a parse error")
	}
}
