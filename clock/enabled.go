package clock

// counter tracks a source's downstream dependents. It is shared by pointer
// across mode switches so consumer proofs stay valid while the source is
// rebuilt underneath them.
type counter struct {
	users int
}

// Enabled wraps a running source together with its dependent count.
// Subscribe and Release are the only mutators of the count, and Disable is
// reachable only while the count is zero. The Rust-style compile-time count
// is rendered as a runtime gate here; the wrapper is still the only path to
// the underlying source.
type Enabled[S sourceControl] struct {
	source S
	cnt    *counter
	dead   bool
}

func newEnabled[S sourceControl](s S) *Enabled[S] {
	return &Enabled[S]{source: s, cnt: &counter{}}
}

func (e *Enabled[S]) live() {
	if e.dead {
		panic("clock: use of consumed Enabled handle")
	}
}

// Freq returns the running source's output frequency.
func (e *Enabled[S]) Freq() Hertz {
	e.live()
	return e.source.Freq()
}

// Users returns the current dependent count.
func (e *Enabled[S]) Users() int {
	e.live()
	return e.cnt.users
}

// Consumer is the proof handed to a dependent at Subscribe time; releasing
// the dependent consumes it.
type Consumer struct {
	cnt      *counter
	released bool
}

// Subscribe records a new downstream dependent and returns its proof.
func (e *Enabled[S]) Subscribe() *Consumer {
	e.live()
	e.cnt.users++
	return &Consumer{cnt: e.cnt}
}

// Release removes a dependent previously added with Subscribe.
func (e *Enabled[S]) Release(c *Consumer) error {
	e.live()
	if c == nil || c.cnt != e.cnt {
		return ErrNotConsumer
	}
	if c.released {
		return ErrReleased
	}
	c.released = true
	e.cnt.users--
	return nil
}

// Disable stops the source and returns it for reconfiguration. It refuses
// while any dependent is recorded: a consumer still relies on the frequency
// contract.
func (e *Enabled[S]) Disable() (S, error) {
	e.live()
	if e.cnt.users != 0 {
		var zero S
		return zero, ErrClockInUse
	}
	e.dead = true
	e.source.disable()
	return e.source, nil
}

// Gclk0 is the main generic clock generator's consumer proof: evidence that
// generator 0 — and therefore the CPU — is fed by the wrapped source. It is
// the handle a mode switch demands to prove it holds the single expected
// dependent.
type Gclk0 struct {
	cnt *counter
}

// UseAsGclk0 subscribes the main generator to the source. Bring-up calls
// this once when it routes generator 0.
func UseAsGclk0[S sourceControl](e *Enabled[S]) *Gclk0 {
	e.live()
	e.cnt.users++
	return &Gclk0{cnt: e.cnt}
}

// ToClosedMode switches a running open-loop DFLL to closed-loop mode against
// the given reference clock. The caller must present the Gclk0 proof and the
// generator must be the sole dependent; any other consumer could be relying
// on the open-loop frequency contract. The Gclk0 handle remains valid for
// the returned wrapper.
func ToClosedMode(e *Enabled[*DfllOpenLoop], g *Gclk0, ref Pclk, mul uint16, coarseStep, fineStep uint8) (*Enabled[*DfllClosedLoop], error) {
	e.live()
	if g == nil || g.cnt != e.cnt {
		return nil, ErrNotConsumer
	}
	if e.cnt.users != 1 {
		return nil, ErrClockInUse
	}
	e.dead = true
	token := e.source.Free()
	next := ClosedLoopDfll(token, ref, mul, coarseStep, fineStep).Enable()
	next.cnt = e.cnt
	return next, nil
}

// ToOpenMode switches a running closed-loop DFLL back to open loop, under
// the same single-consumer proof, and returns the reference clock handle to
// the caller.
func ToOpenMode(e *Enabled[*DfllClosedLoop], g *Gclk0) (*Enabled[*DfllOpenLoop], Pclk, error) {
	e.live()
	if g == nil || g.cnt != e.cnt {
		return nil, Pclk{}, ErrNotConsumer
	}
	if e.cnt.users != 1 {
		return nil, Pclk{}, ErrClockInUse
	}
	e.dead = true
	token, ref := e.source.Free()
	next := OpenLoopDfll(token).Enable()
	next.cnt = e.cnt
	return next, ref, nil
}
