package clock

// PclkID names a peripheral channel clock.
type PclkID uint8

// PclkDfll48 is the peripheral channel that feeds the DFLL reference in
// closed-loop mode.
const PclkDfll48 PclkID = 0

// Pclk is a peripheral channel clock handle: proof that the named channel is
// routed and running at the stated frequency. Bring-up constructs these when
// it wires generic clock generators to peripheral channels.
type Pclk struct {
	id   PclkID
	freq Hertz
}

func NewPclk(id PclkID, freq Hertz) Pclk {
	return Pclk{id: id, freq: freq}
}

func (p Pclk) ID() PclkID  { return p.id }
func (p Pclk) Freq() Hertz { return p.freq }
