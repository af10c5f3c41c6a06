// Package dmac drives the DMA controller's channel lifecycle.
//
// A channel moves through three statuses. A fresh handle is an
// UninitializedChannel; Init performs the software reset and priority setup
// and yields a ReadyChannel; Start programs the trigger and yields a
// BusyChannel; Stop or Free bring it back to Ready. Each transition consumes
// the handle it is called on, so an operation that is not defined for the
// current status cannot be written down at all. Reusing a consumed handle is
// a programming error and panics.
//
// Transfer descriptors and descriptor chaining are the business of a
// higher-level transfer layer; this package only touches the channel
// registers.
package dmac

import "errors"

var (
	ErrNoFifo      = errors.New("dmac: no per-channel FIFO on this chip family")
	ErrNeedIntCtrl = errors.New("dmac: shared-selector family requires an interrupt controller")
	ErrUnknownChip = errors.New("dmac: target does not describe a DMAC")
)

// PriorityLevel is the arbitration priority programmed at Init.
type PriorityLevel uint8

const (
	Lvl0 PriorityLevel = iota
	Lvl1
	Lvl2
	Lvl3
)

// TriggerSource selects the hardware event that requests a transfer.
// SourceDisable means no peripheral will ever trigger the channel; starting
// with it issues an immediate software trigger instead.
type TriggerSource uint8

const (
	SourceDisable      TriggerSource = 0x00
	SourceRtcTimestamp TriggerSource = 0x01
	SourceSercom0Rx    TriggerSource = 0x04
	SourceSercom0Tx    TriggerSource = 0x05
	SourceSercom1Rx    TriggerSource = 0x06
	SourceSercom1Tx    TriggerSource = 0x07
	SourceSercom2Rx    TriggerSource = 0x08
	SourceSercom2Tx    TriggerSource = 0x09
	SourceSercom3Rx    TriggerSource = 0x0A
	SourceSercom3Tx    TriggerSource = 0x0B
)

// TriggerAction selects how much data one trigger moves.
type TriggerAction uint8

const (
	ActionBlock TriggerAction = 0x0
	// ActionBurst moves one burst per trigger. The selector generation calls
	// the same encoding BEAT.
	ActionBurst       TriggerAction = 0x2
	ActionTransaction TriggerAction = 0x3
)

// FifoThreshold is how many beats accumulate before a burst fires.
// Per-channel-FIFO hardware only.
type FifoThreshold uint8

const (
	Threshold1Beat FifoThreshold = iota
	Threshold2Beats
	Threshold4Beats
	Threshold8Beats
)

// BurstLength is the burst size in beats, 1..16. Per-channel-FIFO hardware
// only.
type BurstLength uint8

const (
	Burst1Beat BurstLength = iota
	Burst2Beats
	Burst3Beats
	Burst4Beats
	Burst5Beats
	Burst6Beats
	Burst7Beats
	Burst8Beats
	Burst9Beats
	Burst10Beats
	Burst11Beats
	Burst12Beats
	Burst13Beats
	Burst14Beats
	Burst15Beats
	Burst16Beats
)

// InterruptFlags selects channel interrupt sources. Only the three
// architected bits are ever written; reserved bits stay untouched.
type InterruptFlags uint8

const (
	Terr  InterruptFlags = 1 << 0 // transfer error
	Tcmpl InterruptFlags = 1 << 1 // transfer complete
	Susp  InterruptFlags = 1 << 2 // channel suspended

	flagMask = Terr | Tcmpl | Susp
)
