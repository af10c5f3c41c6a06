// Package clock models the clock-generation tree: exclusive register tokens
// for the oscillators, typed frequency sources, and dependency-counted
// sharing of an enabled source among downstream consumers.
//
// Every handle in this package is an exclusive capability. Constructors are
// meant to be called once, from clock-tree bring-up; the bring-up code then
// distributes sources to peripheral consumers through Subscribe.
package clock

import "errors"

var (
	ErrClockInUse  = errors.New("clock: source still has dependents")
	ErrNotConsumer = errors.New("clock: handle is not this source's consumer")
	ErrReleased    = errors.New("clock: consumer already released")
)

// Hertz is a clock frequency.
type Hertz uint32

func KHz(n uint32) Hertz { return Hertz(n * 1_000) }
func MHz(n uint32) Hertz { return Hertz(n * 1_000_000) }

// Source is anything that produces a clock at a known frequency.
type Source interface {
	Freq() Hertz
}

// sourceControl adds the register-level switch behind a Source. It is
// unexported so only this package's oscillator types can sit inside an
// Enabled wrapper.
type sourceControl interface {
	Source
	disable()
}
