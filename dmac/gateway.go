package dmac

import "omibyte.io/samhal/chip"

// Gateway is the register-access strategy for one DMAC generation. The two
// implementations differ in how a channel's registers are reached: through
// the shared CHID selector under an interrupt mask, or through a dedicated
// per-channel block with no masking at all. The state machine never branches
// on the generation; it only ever talks to this interface.
type Gateway interface {
	reset(id uint8)
	setPriority(id uint8, lvl PriorityLevel)
	setTrigger(id uint8, src TriggerSource, act TriggerAction)
	enable(id uint8)
	disable(id uint8)
	enableInterrupts(id uint8, f InterruptFlags)
	disableInterrupts(id uint8, f InterruptFlags)
	flags(id uint8) InterruptFlags
	clearFlags(id uint8, f InterruptFlags)
	trigger(id uint8)
	pendingBusy(id uint8) (pending, busy bool)

	bus() chip.Bus
	base() uint32
	numChannels() int
}

// fifoGateway is implemented only by generations with per-channel FIFOs.
type fifoGateway interface {
	setFifoThreshold(id uint8, t FifoThreshold)
	setBurstLength(id uint8, l BurstLength)
}

//
// Shared-selector generation (SAMD11/SAMD21)
//

// SharedSelector reaches channel registers through the CHID register. Every
// select-then-access sequence runs with all interrupts masked: an interrupt
// handler touching another channel would move the selector out from under us
// and the sequence would silently operate on the wrong channel.
type SharedSelector struct {
	b     chip.Bus
	irq   chip.IntCtrl
	regs  uint32
	nchan int
}

func NewSharedSelector(bus chip.Bus, irq chip.IntCtrl, base uint32, channels int) *SharedSelector {
	if irq == nil {
		panic(ErrNeedIntCtrl)
	}
	return &SharedSelector{b: bus, irq: irq, regs: base, nchan: channels}
}

func (g *SharedSelector) bus() chip.Bus    { return g.b }
func (g *SharedSelector) base() uint32     { return g.regs }
func (g *SharedSelector) numChannels() int { return g.nchan }

// withChannel selects id and runs f inside the interrupt-masked critical
// section. All multi-register channel sequences must go through here.
func (g *SharedSelector) withChannel(id uint8, f func()) {
	state := g.irq.DisableInterrupts()
	g.b.Write8(g.regs+chip.DmacChid, id)
	f()
	g.irq.EnableInterrupts(state)
}

func (g *SharedSelector) ctrla() chip.Reg8 {
	return chip.Reg8{Bus: g.b, Addr: g.regs + chip.DmacChctrlaD21}
}

func (g *SharedSelector) ctrlb() chip.Reg32 {
	return chip.Reg32{Bus: g.b, Addr: g.regs + chip.DmacChctrlbD21}
}

func (g *SharedSelector) reset(id uint8) {
	g.withChannel(id, func() {
		g.ctrla().SetBits(chip.DmacChctrlaD21Swrst)
		for g.ctrla().HasBits(chip.DmacChctrlaD21Swrst) {
		}
	})
}

func (g *SharedSelector) setPriority(id uint8, lvl PriorityLevel) {
	g.withChannel(id, func() {
		g.ctrlb().ReplaceBits(uint32(lvl), chip.DmacChctrlbD21LvlMask, chip.DmacChctrlbD21LvlShift)
	})
}

func (g *SharedSelector) setTrigger(id uint8, src TriggerSource, act TriggerAction) {
	g.withChannel(id, func() {
		v := g.ctrlb().Get()
		v = v&^(uint32(chip.DmacChctrlbD21TrigsrcMask)<<chip.DmacChctrlbD21TrigsrcShift) |
			uint32(src)<<chip.DmacChctrlbD21TrigsrcShift
		v = v&^(uint32(chip.DmacChctrlbD21TrigactMask)<<chip.DmacChctrlbD21TrigactShift) |
			uint32(act)<<chip.DmacChctrlbD21TrigactShift
		g.ctrlb().Set(v)
	})
}

func (g *SharedSelector) enable(id uint8) {
	g.withChannel(id, func() { g.ctrla().SetBits(chip.DmacChctrlaD21Enable) })
}

func (g *SharedSelector) disable(id uint8) {
	g.withChannel(id, func() { g.ctrla().ClearBits(chip.DmacChctrlaD21Enable) })
}

func (g *SharedSelector) enableInterrupts(id uint8, f InterruptFlags) {
	g.withChannel(id, func() {
		g.b.Write8(g.regs+chip.DmacChintenset, uint8(f&flagMask))
	})
}

func (g *SharedSelector) disableInterrupts(id uint8, f InterruptFlags) {
	g.withChannel(id, func() {
		g.b.Write8(g.regs+chip.DmacChintenclr, uint8(f&flagMask))
	})
}

func (g *SharedSelector) flags(id uint8) InterruptFlags {
	var f InterruptFlags
	g.withChannel(id, func() {
		f = InterruptFlags(g.b.Read8(g.regs+chip.DmacChintflag)) & flagMask
	})
	return f
}

func (g *SharedSelector) clearFlags(id uint8, f InterruptFlags) {
	g.withChannel(id, func() {
		g.b.Write8(g.regs+chip.DmacChintflag, uint8(f&flagMask))
	})
}

// trigger and pendingBusy touch only bits owned by this channel in
// controller-level registers, so no selector and no masking is involved.
func (g *SharedSelector) trigger(id uint8) {
	g.b.Write32(g.regs+chip.DmacSwtrigctrl, 1<<id)
}

func (g *SharedSelector) pendingBusy(id uint8) (bool, bool) {
	pend := g.b.Read32(g.regs+chip.DmacPendch)&(1<<id) != 0
	busy := g.b.Read32(g.regs+chip.DmacBusych)&(1<<id) != 0
	return pend, busy
}

//
// Per-channel generation (SAMD51/SAME5x)
//

// PerChannel reaches each channel through its dedicated register block.
// There is no shared selector, hence nothing an interrupt could corrupt and
// no masking anywhere.
type PerChannel struct {
	b     chip.Bus
	regs  uint32
	nchan int
}

func NewPerChannel(bus chip.Bus, base uint32, channels int) *PerChannel {
	return &PerChannel{b: bus, regs: base, nchan: channels}
}

func (g *PerChannel) bus() chip.Bus    { return g.b }
func (g *PerChannel) base() uint32     { return g.regs }
func (g *PerChannel) numChannels() int { return g.nchan }

func (g *PerChannel) group(id uint8) uint32 {
	return g.regs + chip.DmacChannelBase + uint32(id)*chip.DmacChannelSize
}

func (g *PerChannel) ctrla(id uint8) chip.Reg32 {
	return chip.Reg32{Bus: g.b, Addr: g.group(id) + chip.DmacChctrlaX51}
}

func (g *PerChannel) reset(id uint8) {
	g.ctrla(id).SetBits(chip.DmacChctrlaX51Swrst)
	for g.ctrla(id).HasBits(chip.DmacChctrlaX51Swrst) {
	}
}

func (g *PerChannel) setPriority(id uint8, lvl PriorityLevel) {
	chip.Reg8{Bus: g.b, Addr: g.group(id) + chip.DmacChprilvl}.
		ReplaceBits(uint8(lvl), chip.DmacChprilvlMask, chip.DmacChprilvlShift)
}

func (g *PerChannel) setTrigger(id uint8, src TriggerSource, act TriggerAction) {
	r := g.ctrla(id)
	v := r.Get()
	v = v&^(uint32(chip.DmacChctrlaX51TrigsrcMask)<<chip.DmacChctrlaX51TrigsrcShift) |
		uint32(src)<<chip.DmacChctrlaX51TrigsrcShift
	v = v&^(uint32(chip.DmacChctrlaX51TrigactMask)<<chip.DmacChctrlaX51TrigactShift) |
		uint32(act)<<chip.DmacChctrlaX51TrigactShift
	r.Set(v)
}

func (g *PerChannel) enable(id uint8)  { g.ctrla(id).SetBits(chip.DmacChctrlaX51Enable) }
func (g *PerChannel) disable(id uint8) { g.ctrla(id).ClearBits(chip.DmacChctrlaX51Enable) }

func (g *PerChannel) enableInterrupts(id uint8, f InterruptFlags) {
	g.b.Write8(g.group(id)+chip.DmacChintensetX51, uint8(f&flagMask))
}

func (g *PerChannel) disableInterrupts(id uint8, f InterruptFlags) {
	g.b.Write8(g.group(id)+chip.DmacChintenclrX51, uint8(f&flagMask))
}

func (g *PerChannel) flags(id uint8) InterruptFlags {
	return InterruptFlags(g.b.Read8(g.group(id)+chip.DmacChintflagX51)) & flagMask
}

func (g *PerChannel) clearFlags(id uint8, f InterruptFlags) {
	g.b.Write8(g.group(id)+chip.DmacChintflagX51, uint8(f&flagMask))
}

func (g *PerChannel) trigger(id uint8) {
	g.b.Write32(g.regs+chip.DmacSwtrigctrl, 1<<id)
}

func (g *PerChannel) pendingBusy(id uint8) (bool, bool) {
	pend := g.b.Read32(g.regs+chip.DmacPendch)&(1<<id) != 0
	busy := g.b.Read32(g.regs+chip.DmacBusych)&(1<<id) != 0
	return pend, busy
}

func (g *PerChannel) setFifoThreshold(id uint8, t FifoThreshold) {
	g.ctrla(id).ReplaceBits(uint32(t), chip.DmacChctrlaX51ThresholdMask, chip.DmacChctrlaX51ThresholdShift)
}

func (g *PerChannel) setBurstLength(id uint8, l BurstLength) {
	g.ctrla(id).ReplaceBits(uint32(l), chip.DmacChctrlaX51BurstlenMask, chip.DmacChctrlaX51BurstlenShift)
}
