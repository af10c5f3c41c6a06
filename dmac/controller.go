package dmac

import (
	"omibyte.io/samhal/chip"
	"omibyte.io/samhal/targets"
)

// Controller owns the DMAC block and hands out the fixed set of channel
// handles, exactly once.
type Controller struct {
	hw    Gateway
	split bool
}

func NewController(g Gateway) *Controller {
	return &Controller{hw: g}
}

// FromTarget builds a Controller with the register-access strategy the chip
// family calls for. irq is required by shared-selector families and ignored
// by per-channel ones.
func FromTarget(t targets.TargetInfo, bus chip.Bus, irq chip.IntCtrl) (*Controller, error) {
	if t.DMAC.Channels == 0 {
		return nil, ErrUnknownChip
	}
	if t.DMAC.SharedSelector {
		if irq == nil {
			return nil, ErrNeedIntCtrl
		}
		return NewController(NewSharedSelector(bus, irq, t.DMAC.Base, t.DMAC.Channels)), nil
	}
	return NewController(NewPerChannel(bus, t.DMAC.Base, t.DMAC.Channels)), nil
}

func (c *Controller) ctrl() chip.Reg16 {
	return chip.Reg16{Bus: c.hw.bus(), Addr: c.hw.base() + chip.DmacCtrl}
}

// Reset software-resets the whole DMAC block and waits for completion.
func (c *Controller) Reset() {
	c.ctrl().Set(chip.DmacCtrlSwrst)
	for c.ctrl().HasBits(chip.DmacCtrlSwrst) {
	}
}

// Init resets the block, programs the descriptor and write-back memory bases
// and enables the controller with all four arbitration levels active. The
// descriptor memory itself belongs to the transfer layer; the controller only
// records where it lives.
func (c *Controller) Init(descBase, wrbBase uint32) {
	c.Reset()
	b := c.hw.bus()
	b.Write32(c.hw.base()+chip.DmacBaseaddr, descBase)
	b.Write32(c.hw.base()+chip.DmacWrbaddr, wrbBase)
	c.ctrl().Set(chip.DmacCtrlDmaenable |
		chip.DmacCtrlLvlen0 | chip.DmacCtrlLvlen1 | chip.DmacCtrlLvlen2 | chip.DmacCtrlLvlen3)
}

// Channels splits the controller into its channel handles. Each hardware
// channel is handed out exactly once for the life of the process; calling
// Channels again would mint duplicate capabilities and panics.
func (c *Controller) Channels() []*UninitializedChannel {
	if c.split {
		panic("dmac: channels already split from controller")
	}
	c.split = true
	chs := make([]*UninitializedChannel, c.hw.numChannels())
	for i := range chs {
		chs[i] = &UninitializedChannel{c: &core{id: uint8(i), hw: c.hw}}
	}
	return chs
}
