package sim

import "omibyte.io/samhal/chip"

// DMAC models the DMA controller block for either register generation.
// Latencies are expressed in reads of the status register that reports them.
type DMAC struct {
	bus    *Bus
	base   uint32
	nchan  int
	shared bool // SAMD21 CHID-selector generation when true

	// ResetReads is how many reads of CHCTRLA observe SWRST set before the
	// channel reset completes. GrantReads is how many reads of PENDCH happen
	// before the arbiter grants a pending channel; DoneReads how many reads
	// of BUSYCH before an active transfer finishes.
	ResetReads int
	GrantReads int
	DoneReads  int

	ctrl uint16
	chid uint8
	pend uint32
	busy uint32
	ch   []simChannel
}

type simChannel struct {
	ctrla   uint32 // raw CHCTRLA (8-bit on the selector generation)
	ctrlb   uint32 // raw CHCTRLB (selector generation only)
	prilvl  uint8  // CHPRILVL (per-channel generation only)
	inten   uint8
	intflag uint8
}

// NewDMAC installs a DMAC model on the bus. shared selects the SAMD21
// CHID-selector register generation; otherwise the per-channel block
// generation is modeled.
func NewDMAC(bus *Bus, base uint32, nchan int, shared bool) *DMAC {
	d := &DMAC{
		bus:        bus,
		base:       base,
		nchan:      nchan,
		shared:     shared,
		ResetReads: 2,
		GrantReads: 2,
		DoneReads:  3,
		ch:         make([]simChannel, nchan),
	}
	d.install()
	return d
}

func (d *DMAC) install() {
	b := d.bus

	b.MapWrite(d.base+chip.DmacCtrl, func(_ uint8, v uint32) bool {
		d.ctrl = uint16(v)
		if v&chip.DmacCtrlSwrst != 0 {
			b.After(d.base+chip.DmacCtrl, d.ResetReads, func() {
				*d = DMAC{bus: d.bus, base: d.base, nchan: d.nchan, shared: d.shared,
					ResetReads: d.ResetReads, GrantReads: d.GrantReads, DoneReads: d.DoneReads,
					ch: make([]simChannel, d.nchan)}
			})
		}
		return true
	})
	b.MapRead(d.base+chip.DmacCtrl, func(uint8) uint32 { return uint32(d.ctrl) })

	b.MapWrite(d.base+chip.DmacSwtrigctrl, func(_ uint8, v uint32) bool {
		for n := 0; n < d.nchan; n++ {
			if v&(1<<n) != 0 {
				d.Trigger(n)
			}
		}
		return true
	})
	b.MapRead(d.base+chip.DmacPendch, func(uint8) uint32 { return d.pend })
	b.MapRead(d.base+chip.DmacBusych, func(uint8) uint32 { return d.busy })

	if d.shared {
		d.installShared()
	} else {
		d.installPerChannel()
	}
}

// installShared wires the CHID-multiplexed channel window.
func (d *DMAC) installShared() {
	b := d.bus
	cur := func() *simChannel { return &d.ch[d.chid] }

	b.MapWrite(d.base+chip.DmacChid, func(_ uint8, v uint32) bool {
		d.chid = uint8(v) & 0x3F
		return true
	})
	b.MapRead(d.base+chip.DmacChid, func(uint8) uint32 { return uint32(d.chid) })

	ctrla := d.base + chip.DmacChctrlaD21
	b.MapWrite(ctrla, func(_ uint8, v uint32) bool {
		d.writeCtrla(d.chidNow(), ctrla, v, chip.DmacChctrlaD21Swrst, chip.DmacChctrlaD21Enable)
		return true
	})
	b.MapRead(ctrla, func(uint8) uint32 { return cur().ctrla })

	b.MapWrite(d.base+chip.DmacChctrlbD21, func(_ uint8, v uint32) bool {
		cur().ctrlb = v
		return true
	})
	b.MapRead(d.base+chip.DmacChctrlbD21, func(uint8) uint32 { return cur().ctrlb })

	d.installIntRegs(d.base+chip.DmacChintenclr, d.base+chip.DmacChintenset,
		d.base+chip.DmacChintflag, d.base+chip.DmacChstatus, d.chidNow)
}

// installPerChannel wires one dedicated register group per channel.
func (d *DMAC) installPerChannel() {
	b := d.bus
	for n := 0; n < d.nchan; n++ {
		n := n
		group := d.base + chip.DmacChannelBase + uint32(n)*chip.DmacChannelSize
		ctrla := group + chip.DmacChctrlaX51
		b.MapWrite(ctrla, func(_ uint8, v uint32) bool {
			d.writeCtrla(n, ctrla, v, chip.DmacChctrlaX51Swrst, chip.DmacChctrlaX51Enable)
			return true
		})
		b.MapRead(ctrla, func(uint8) uint32 { return d.ch[n].ctrla })

		b.MapWrite(group+chip.DmacChprilvl, func(_ uint8, v uint32) bool {
			d.ch[n].prilvl = uint8(v)
			return true
		})
		b.MapRead(group+chip.DmacChprilvl, func(uint8) uint32 { return uint32(d.ch[n].prilvl) })

		d.installIntRegs(group+chip.DmacChintenclrX51, group+chip.DmacChintensetX51,
			group+chip.DmacChintflagX51, group+chip.DmacChstatusX51, func() int { return n })
	}
}

// writeCtrla handles the SWRST/ENABLE semantics common to both generations:
// SWRST reads back set for ResetReads reads and then wipes the channel;
// clearing ENABLE aborts any transfer in flight.
func (d *DMAC) writeCtrla(n int, addr uint32, v, swrst, enable uint32) {
	c := &d.ch[n]
	wasEnabled := c.ctrla&enable != 0
	c.ctrla = v
	if v&swrst != 0 {
		d.bus.After(addr, d.ResetReads, func() {
			d.ch[n] = simChannel{}
			d.pend &^= 1 << n
			d.busy &^= 1 << n
		})
	}
	if wasEnabled && v&enable == 0 {
		// Abort: drop the pending request now, let the engine retire the
		// active beat on the next BUSYCH poll.
		d.pend &^= 1 << n
		if d.busy&(1<<n) != 0 {
			d.bus.After(d.base+chip.DmacBusych, 1, func() { d.busy &^= 1 << n })
		}
	}
}

// installIntRegs wires CHINTENCLR/CHINTENSET/CHINTFLAG/CHSTATUS, with the
// channel resolved at access time (through CHID on the selector generation).
func (d *DMAC) installIntRegs(clr, set, flag, status uint32, which func() int) {
	b := d.bus
	b.MapWrite(set, func(_ uint8, v uint32) bool {
		d.ch[which()].inten |= uint8(v) & chip.DmacChintMask
		return true
	})
	b.MapWrite(clr, func(_ uint8, v uint32) bool {
		d.ch[which()].inten &^= uint8(v)
		return true
	})
	b.MapRead(set, func(uint8) uint32 { return uint32(d.ch[which()].inten) })
	b.MapRead(clr, func(uint8) uint32 { return uint32(d.ch[which()].inten) })
	b.MapWrite(flag, func(_ uint8, v uint32) bool {
		// write one to clear
		d.ch[which()].intflag &^= uint8(v)
		return true
	})
	b.MapRead(flag, func(uint8) uint32 { return uint32(d.ch[which()].intflag) })
	b.MapRead(status, func(uint8) uint32 {
		n := which()
		var s uint32
		if d.pend&(1<<n) != 0 {
			s |= 1 << 0
		}
		if d.busy&(1<<n) != 0 {
			s |= 1 << 1
		}
		return s
	})
}

func (d *DMAC) chidNow() int { return int(d.chid) }

func (d *DMAC) enabled(n int) bool {
	if d.shared {
		return d.ch[n].ctrla&chip.DmacChctrlaD21Enable != 0
	}
	return d.ch[n].ctrla&chip.DmacChctrlaX51Enable != 0
}

// Trigger raises a transfer trigger for channel n, as a peripheral event or
// software trigger would. The request parks in PENDCH, moves to BUSYCH after
// GrantReads polls, and completes (TCMPL) after DoneReads more.
func (d *DMAC) Trigger(n int) {
	if !d.enabled(n) || d.pend&(1<<n) != 0 || d.busy&(1<<n) != 0 {
		return
	}
	d.pend |= 1 << n
	d.bus.After(d.base+chip.DmacPendch, d.GrantReads, func() {
		if d.pend&(1<<n) == 0 {
			return // aborted while pending
		}
		d.pend &^= 1 << n
		d.busy |= 1 << n
		d.bus.After(d.base+chip.DmacBusych, d.DoneReads, func() {
			if d.busy&(1<<n) == 0 {
				return
			}
			d.busy &^= 1 << n
			d.ch[n].intflag |= chip.DmacChintTcmpl
		})
	})
}

// SetPending and SetBusy force the per-channel status bits; test scaffolding
// for completion-flag truth tables.
func (d *DMAC) SetPending(n int, on bool) {
	if on {
		d.pend |= 1 << n
	} else {
		d.pend &^= 1 << n
	}
}

func (d *DMAC) SetBusy(n int, on bool) {
	if on {
		d.busy |= 1 << n
	} else {
		d.busy &^= 1 << n
	}
}

// RaiseFlag sets channel interrupt flag bits, as the hardware would on a
// transfer error or suspend.
func (d *DMAC) RaiseFlag(n int, bits uint8) {
	d.ch[n].intflag |= bits & chip.DmacChintMask
}

// IntFlag returns the current CHINTFLAG value for channel n.
func (d *DMAC) IntFlag(n int) uint8 { return d.ch[n].intflag }

// IntEnabled returns the current CHINTENSET value for channel n.
func (d *DMAC) IntEnabled(n int) uint8 { return d.ch[n].inten }

// Enabled reports whether channel n has its enable bit set.
func (d *DMAC) Enabled(n int) bool { return d.enabled(n) }

// Priority returns the arbitration level programmed for channel n.
func (d *DMAC) Priority(n int) uint8 {
	if d.shared {
		return uint8(d.ch[n].ctrlb >> chip.DmacChctrlbD21LvlShift & chip.DmacChctrlbD21LvlMask)
	}
	return d.ch[n].prilvl & chip.DmacChprilvlMask
}

// TriggerSource returns the trigger source programmed for channel n.
func (d *DMAC) TriggerSource(n int) uint8 {
	if d.shared {
		return uint8(d.ch[n].ctrlb >> chip.DmacChctrlbD21TrigsrcShift & chip.DmacChctrlbD21TrigsrcMask)
	}
	return uint8(d.ch[n].ctrla >> chip.DmacChctrlaX51TrigsrcShift & chip.DmacChctrlaX51TrigsrcMask)
}
