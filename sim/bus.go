// Package sim is a deterministic model of the SAM register blocks used by
// this module. Status bits flip after a bounded number of reads rather than
// after wall-clock time, so hosted tests always terminate and can assert on
// exact register traffic.
//
// The bus records every access together with the interrupt-mask state at the
// instant it happened, which is what lets tests verify the shared-selector
// critical-section discipline instead of taking it on faith.
package sim

import (
	"io"

	"github.com/marcinbor85/gohex"
)

// Access is one bus transaction.
type Access struct {
	Addr   uint32
	Width  uint8 // 8, 16 or 32
	Value  uint32
	Write  bool
	Masked bool // interrupts were masked when the access happened
}

type readFn func(width uint8) uint32

// writeFn returns true when the model consumed the write.
type writeFn func(width uint8, v uint32) bool

// countdown expires after a fixed number of reads of one address.
type countdown struct {
	addr  uint32
	reads int
	fire  func()
}

// Bus implements chip.Bus and chip.IntCtrl over simulated memory.
type Bus struct {
	mem     map[uint32]byte
	reads   map[uint32]readFn
	writes  map[uint32]writeFn
	pending []*countdown

	trace  []Access
	masked bool
}

func New() *Bus {
	return &Bus{
		mem:    make(map[uint32]byte),
		reads:  make(map[uint32]readFn),
		writes: make(map[uint32]writeFn),
	}
}

// MapRead routes reads of addr to the given model function.
func (b *Bus) MapRead(addr uint32, fn readFn) { b.reads[addr] = fn }

// MapWrite routes writes of addr to the given model function.
func (b *Bus) MapWrite(addr uint32, fn writeFn) { b.writes[addr] = fn }

// After arranges for fire to run once addr has been read n more times.
func (b *Bus) After(addr uint32, n int, fire func()) {
	b.pending = append(b.pending, &countdown{addr: addr, reads: n, fire: fire})
}

// CancelAfter drops all armed countdowns for addr.
func (b *Bus) CancelAfter(addr uint32) {
	kept := b.pending[:0]
	for _, c := range b.pending {
		if c.addr != addr {
			kept = append(kept, c)
		}
	}
	b.pending = kept
}

func (b *Bus) tick(addr uint32) {
	var fired []func()
	kept := b.pending[:0]
	for _, c := range b.pending {
		if c.addr == addr {
			c.reads--
			if c.reads <= 0 {
				fired = append(fired, c.fire)
				continue
			}
		}
		kept = append(kept, c)
	}
	b.pending = kept
	for _, f := range fired {
		f()
	}
}

// Trace returns the accesses recorded so far.
func (b *Bus) Trace() []Access { return b.trace }

// ResetTrace discards the recorded accesses.
func (b *Bus) ResetTrace() { b.trace = nil }

// Masked reports whether interrupts are currently masked.
func (b *Bus) Masked() bool { return b.masked }

// DisableInterrupts implements chip.IntCtrl.
func (b *Bus) DisableInterrupts() uint32 {
	prev := uint32(0)
	if b.masked {
		prev = 1
	}
	b.masked = true
	return prev
}

// EnableInterrupts implements chip.IntCtrl.
func (b *Bus) EnableInterrupts(state uint32) {
	b.masked = state != 0
}

// Poke writes raw bytes without recording a bus access; for test setup.
func (b *Bus) Poke(addr uint32, data ...byte) {
	for i, v := range data {
		b.mem[addr+uint32(i)] = v
	}
}

// Poke32 stores one little-endian word without recording a bus access.
func (b *Bus) Poke32(addr uint32, v uint32) {
	b.Poke(addr, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// Peek32 reads one little-endian word without recording a bus access.
func (b *Bus) Peek32(addr uint32) uint32 {
	return uint32(b.mem[addr]) | uint32(b.mem[addr+1])<<8 |
		uint32(b.mem[addr+2])<<16 | uint32(b.mem[addr+3])<<24
}

// LoadHex populates memory from an Intel HEX image, e.g. a dump of the NVM
// calibration row.
func (b *Bus) LoadHex(r io.Reader) error {
	m := gohex.NewMemory()
	if err := m.ParseIntelHex(r); err != nil {
		return err
	}
	for _, seg := range m.GetDataSegments() {
		b.Poke(seg.Address, seg.Data...)
	}
	return nil
}

func (b *Bus) read(addr uint32, width uint8) uint32 {
	b.tick(addr)
	var v uint32
	if fn, ok := b.reads[addr]; ok {
		v = fn(width)
	} else {
		switch width {
		case 8:
			v = uint32(b.mem[addr])
		case 16:
			v = uint32(b.mem[addr]) | uint32(b.mem[addr+1])<<8
		default:
			v = b.Peek32(addr)
		}
	}
	b.trace = append(b.trace, Access{Addr: addr, Width: width, Value: v, Masked: b.masked})
	return v
}

func (b *Bus) write(addr uint32, width uint8, v uint32) {
	b.trace = append(b.trace, Access{Addr: addr, Width: width, Value: v, Write: true, Masked: b.masked})
	if fn, ok := b.writes[addr]; ok && fn(width, v) {
		return
	}
	switch width {
	case 8:
		b.mem[addr] = byte(v)
	case 16:
		b.mem[addr] = byte(v)
		b.mem[addr+1] = byte(v >> 8)
	default:
		b.Poke32(addr, v)
	}
}

func (b *Bus) Read8(addr uint32) uint8       { return uint8(b.read(addr, 8)) }
func (b *Bus) Write8(addr uint32, v uint8)   { b.write(addr, 8, uint32(v)) }
func (b *Bus) Read16(addr uint32) uint16     { return uint16(b.read(addr, 16)) }
func (b *Bus) Write16(addr uint32, v uint16) { b.write(addr, 16, uint32(v)) }
func (b *Bus) Read32(addr uint32) uint32     { return b.read(addr, 32) }
func (b *Bus) Write32(addr uint32, v uint32) { b.write(addr, 32, v) }
