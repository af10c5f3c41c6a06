package dmac

// core is the single live identity of one hardware channel. The status
// wrapper types below hand it to each other as the channel moves through its
// lifecycle; a wrapper whose core has been taken is dead and panics on use.
type core struct {
	id uint8
	hw Gateway
}

func (c *core) xferComplete() bool {
	// A trigger is accepted (PENDING) before the arbiter grants the bus
	// (BUSY). Either bit alone has a window where the other still reports
	// activity, so completion requires both to be clear.
	pend, busy := c.hw.pendingBusy(c.id)
	return !pend && !busy
}

// UninitializedChannel is a channel in its power-on state. Only Init and the
// interrupt-selection operations are available.
type UninitializedChannel struct {
	c *core
}

func (ch *UninitializedChannel) use() *core {
	if ch.c == nil {
		panic("dmac: use of consumed channel handle")
	}
	return ch.c
}

func (ch *UninitializedChannel) take() *core {
	c := ch.use()
	ch.c = nil
	return c
}

// ID returns the hardware channel number.
func (ch *UninitializedChannel) ID() uint8 { return ch.use().id }

// Init software-resets the channel, waits for the reset to complete, programs
// the arbitration priority and hands back the Ready handle.
func (ch *UninitializedChannel) Init(lvl PriorityLevel) *ReadyChannel {
	c := ch.take()
	c.hw.reset(c.id)
	c.hw.setPriority(c.id, lvl)
	return &ReadyChannel{c: c}
}

// EnableInterrupts sets the named interrupt sources for this channel.
func (ch *UninitializedChannel) EnableInterrupts(f InterruptFlags) {
	c := ch.use()
	c.hw.enableInterrupts(c.id, f)
}

// DisableInterrupts clears the named interrupt sources for this channel.
func (ch *UninitializedChannel) DisableInterrupts(f InterruptFlags) {
	c := ch.use()
	c.hw.disableInterrupts(c.id, f)
}

// ReadyChannel is an initialized channel that is not transferring.
type ReadyChannel struct {
	c *core
}

func (ch *ReadyChannel) use() *core {
	if ch.c == nil {
		panic("dmac: use of consumed channel handle")
	}
	return ch.c
}

func (ch *ReadyChannel) take() *core {
	c := ch.use()
	ch.c = nil
	return c
}

// ID returns the hardware channel number.
func (ch *ReadyChannel) ID() uint8 { return ch.use().id }

// Reset software-resets the channel back to its power-on state. Blocks until
// the hardware reports the reset complete.
func (ch *ReadyChannel) Reset() *UninitializedChannel {
	c := ch.take()
	c.hw.reset(c.id)
	return &UninitializedChannel{c: c}
}

// FifoThreshold sets how many beats accumulate before a burst fires. Returns
// ErrNoFifo on chip families without per-channel FIFO hardware.
func (ch *ReadyChannel) FifoThreshold(t FifoThreshold) error {
	c := ch.use()
	fg, ok := c.hw.(fifoGateway)
	if !ok {
		return ErrNoFifo
	}
	fg.setFifoThreshold(c.id, t)
	return nil
}

// BurstLength sets the burst size in beats. Returns ErrNoFifo on chip
// families without per-channel FIFO hardware.
func (ch *ReadyChannel) BurstLength(l BurstLength) error {
	c := ch.use()
	fg, ok := c.hw.(fifoGateway)
	if !ok {
		return ErrNoFifo
	}
	fg.setBurstLength(c.id, l)
	return nil
}

// Start programs the trigger source and action and enables the channel. With
// SourceDisable no hardware event will ever arrive, so a software trigger is
// issued immediately.
func (ch *ReadyChannel) Start(src TriggerSource, act TriggerAction) *BusyChannel {
	c := ch.take()
	c.hw.setTrigger(c.id, src, act)
	c.hw.enable(c.id)
	if src == SourceDisable {
		c.hw.trigger(c.id)
	}
	return &BusyChannel{c: c}
}

// EnableInterrupts sets the named interrupt sources for this channel.
func (ch *ReadyChannel) EnableInterrupts(f InterruptFlags) {
	c := ch.use()
	c.hw.enableInterrupts(c.id, f)
}

// DisableInterrupts clears the named interrupt sources for this channel.
func (ch *ReadyChannel) DisableInterrupts(f InterruptFlags) {
	c := ch.use()
	c.hw.disableInterrupts(c.id, f)
}

// BusyChannel is a channel with a transfer in flight.
type BusyChannel struct {
	c *core
}

func (ch *BusyChannel) use() *core {
	if ch.c == nil {
		panic("dmac: use of consumed channel handle")
	}
	return ch.c
}

func (ch *BusyChannel) take() *core {
	c := ch.use()
	ch.c = nil
	return c
}

// ID returns the hardware channel number.
func (ch *BusyChannel) ID() uint8 { return ch.use().id }

// SoftwareTrigger forces a trigger regardless of the configured source.
func (ch *BusyChannel) SoftwareTrigger() {
	c := ch.use()
	c.hw.trigger(c.id)
}

// XferComplete reports whether the transfer has finished. Non-blocking.
func (ch *BusyChannel) XferComplete() bool {
	return ch.use().xferComplete()
}

// Stop clears the enable bit immediately. The transfer may be cut off at an
// arbitrary byte boundary; the hardware then retires the aborted beat, which
// Stop waits out before returning the Ready handle.
func (ch *BusyChannel) Stop() *ReadyChannel {
	c := ch.take()
	c.hw.disable(c.id)
	for !c.xferComplete() {
	}
	return &ReadyChannel{c: c}
}

// Free spin-polls until the transfer completes naturally, then returns the
// Ready handle. This is the only wait in the channel lifecycle; callers
// needing a deadline must race XferComplete against their own timer.
func (ch *BusyChannel) Free() *ReadyChannel {
	c := ch.take()
	for !c.xferComplete() {
	}
	return &ReadyChannel{c: c}
}

// Flags returns the channel's fault/status bits (transfer error, transfer
// complete, suspend). Interpreting or recovering from them is the transfer
// layer's policy, not ours.
func (ch *BusyChannel) Flags() InterruptFlags {
	c := ch.use()
	return c.hw.flags(c.id)
}

// ClearFlags acknowledges the named fault/status bits.
func (ch *BusyChannel) ClearFlags(f InterruptFlags) {
	c := ch.use()
	c.hw.clearFlags(c.id, f)
}

// EnableInterrupts sets the named interrupt sources for this channel.
func (ch *BusyChannel) EnableInterrupts(f InterruptFlags) {
	c := ch.use()
	c.hw.enableInterrupts(c.id, f)
}

// DisableInterrupts clears the named interrupt sources for this channel.
func (ch *BusyChannel) DisableInterrupts(f InterruptFlags) {
	c := ch.use()
	c.hw.disableInterrupts(c.id, f)
}
