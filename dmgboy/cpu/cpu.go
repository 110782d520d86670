// Package cpu implements the Sharp LR35902 instruction set: register
// file, flags, interrupt dispatch (including the EI delay slot and the
// HALT bug), and the primary plus CB-prefixed opcode tables.
package cpu

import "github.com/corvidae/dmgboy/dmgboy/addr"

// Bus is everything the instruction core needs from its memory/timing
// collaborator: byte-addressed read/write, and a tick that advances every
// peripheral by the given number of T-states.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(tStates int)
}

// imeState models the interrupt master enable latch. A plain boolean
// cannot express the one-instruction delay between EI and interrupts
// actually being serviceable, which breaks EI immediately followed by
// HALT; a three-state machine can.
type imeState uint8

const (
	imeOff imeState = iota
	imeArming
	imeOn
)

// CPU holds the eight 8-bit registers (paired as AF/BC/DE/HL), PC/SP, the
// interrupt/halt state machine, and a reference to the bus it executes
// against.
type CPU struct {
	a, f, b, c, d, e, h, l uint8
	pc, sp                 uint16

	bus Bus
	ime imeState

	halted  bool
	stopped bool
	haltBug bool

	cycles uint64

	currentOpcode uint16
}

// New creates a CPU wired to bus, with registers zeroed (a fresh New() is
// only valid if bus itself presents power-on memory; ResetToBootROM /
// ResetPostBoot below set the documented register states).
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// ResetToBootROM sets every register to zero and PC to 0, the state the
// boot ROM itself begins execution from.
func (c *CPU) ResetToBootROM() {
	*c = CPU{bus: c.bus}
}

// ResetPostBoot sets registers to the documented values real hardware
// leaves them in immediately after the boot ROM hands off to the
// cartridge at PC=0x0100 — useful for tests and for skipping the boot ROM
// entirely.
func (c *CPU) ResetPostBoot() {
	c.a, c.f = 0x01, 0xB0
	c.b, c.c = 0x00, 0x13
	c.d, c.e = 0x00, 0xD8
	c.h, c.l = 0x01, 0x4D
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = imeOff
	c.halted, c.stopped, c.haltBug = false, false, false
}

// PC, SP, Cycles, and Halted are read-only accessors for the embedder
// (status views, snapshotting, tests).
func (c *CPU) PC() uint16      { return c.pc }
func (c *CPU) SP() uint16      { return c.sp }
func (c *CPU) Cycles() uint64  { return c.cycles }
func (c *CPU) Halted() bool    { return c.halted }
func (c *CPU) Stopped() bool   { return c.stopped }
func (c *CPU) IME() bool       { return c.ime == imeOn }
func (c *CPU) A() uint8        { return c.a }
func (c *CPU) F() uint8        { return c.f }
func (c *CPU) B() uint8        { return c.b }
func (c *CPU) C() uint8        { return c.c }
func (c *CPU) D() uint8        { return c.d }
func (c *CPU) E() uint8        { return c.e }
func (c *CPU) H() uint8        { return c.h }
func (c *CPU) L() uint8        { return c.l }
func (c *CPU) AF() uint16      { return c.af() }
func (c *CPU) BC() uint16      { return c.bc() }
func (c *CPU) DE() uint16      { return c.de() }
func (c *CPU) HL() uint16      { return c.hl() }

// Restore overwrites every architectural register, flag, PC/SP, IME, and
// halt/stop state in one call, the counterpart to the individual
// accessors above. It exists for embedder snapshot/restore support
// (spec.md §6); it does not touch cycle count or the halt-bug latch,
// since those are execution-history bookkeeping rather than architectural
// state a restored snapshot should dictate.
func (c *CPU) Restore(a, f, b, cc, d, e, h, l uint8, pc, sp uint16, ime, halted, stopped bool) {
	c.a, c.f = a, f&0xF0
	c.b, c.c = b, cc
	c.d, c.e = d, e
	c.h, c.l = h, l
	c.pc, c.sp = pc, sp
	if ime {
		c.ime = imeOn
	} else {
		c.ime = imeOff
	}
	c.halted = halted
	c.stopped = stopped
}

func (c *CPU) tick() {
	c.cycles += 4
	c.bus.Tick(4)
}

func (c *CPU) readByte(address uint16) uint8 {
	v := c.bus.Read(address)
	c.tick()
	return v
}

func (c *CPU) writeByte(address uint16, value uint8) {
	c.bus.Write(address, value)
	c.tick()
}

// readAndIncPC fetches the byte at PC, ticks once, and advances PC. Used
// both for opcode fetch and for immediate-operand reads.
func (c *CPU) readAndIncPC() uint8 {
	v := c.readByte(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetchImmediate16() uint16 {
	lo := c.readAndIncPC()
	hi := c.readAndIncPC()
	return (uint16(hi) << 8) | uint16(lo)
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.writeByte(c.sp, uint8(value>>8))
	c.sp--
	c.writeByte(c.sp, uint8(value))
}

func (c *CPU) popStack() uint16 {
	lo := c.readByte(c.sp)
	c.sp++
	hi := c.readByte(c.sp)
	c.sp++
	return (uint16(hi) << 8) | uint16(lo)
}

// pendingInterrupt reports whether IE & IF is nonzero.
func (c *CPU) pendingInterrupt() bool {
	ie := c.bus.Read(addr.IE)
	iff := c.bus.Read(addr.IF) & 0x1F
	return ie&iff != 0
}

// serviceInterrupt runs the five-step dispatch protocol from the lowest
// pending, highest-priority source, and returns true if one was serviced.
func (c *CPU) serviceInterrupt() bool {
	ie := c.bus.Read(addr.IE)
	iff := c.bus.Read(addr.IF) & 0x1F
	pending := ie & iff
	if pending == 0 {
		return false
	}

	// Real hardware spends 5 M-cycles dispatching an interrupt: two
	// internal wait cycles, two to push PC, one to load the vector.
	c.tick()
	c.tick()

	bitIdx := pending & (-pending)
	c.bus.Write(addr.IF, iff&^bitIdx)

	c.ime = imeOff

	c.pushStack(c.pc)
	c.pc = addr.Vector(bitIdx)
	c.tick()

	return true
}

// Step executes at most one instruction, following the protocol: stopped
// short-circuits, halted ticks in place until woken, a pending interrupt
// with IME set is serviced ahead of fetch, and the EI delay is resolved
// immediately before dispatch.
func (c *CPU) Step() {
	if c.stopped {
		return
	}

	if c.halted {
		c.tick()
		if c.pendingInterrupt() {
			c.halted = false
		}
		return
	}

	if c.ime == imeOn && c.pendingInterrupt() {
		c.serviceInterrupt()
		return
	}

	opcode := c.readAndIncPC()
	c.currentOpcode = uint16(opcode)

	if c.ime == imeArming {
		c.ime = imeOn
	}

	if c.haltBug {
		c.haltBug = false
		c.pc--
	}

	if opcode == 0xCB {
		cb := c.readAndIncPC()
		c.currentOpcode = 0xCB00 | uint16(cb)
		cbTable[cb>>3](c, cb&0x07)
		return
	}

	primaryTable[opcode](c)
}

// halt implements the HALT opcode's full branching behavior, including the
// halt bug: entering halted state is only safe when IME is on, or when
// IME is off and no interrupt is currently pending; otherwise execution
// falls straight through to the next opcode without advancing PC.
func (c *CPU) halt() {
	if c.ime == imeOn || !c.pendingInterrupt() {
		c.halted = true
		return
	}
	c.haltBug = true
}

func (c *CPU) stop() {
	c.stopped = true
}

func (c *CPU) ei() {
	if c.ime == imeOff {
		c.ime = imeArming
	}
}

func (c *CPU) di() {
	c.ime = imeOff
}

func (c *CPU) reti() {
	c.pc = c.popStack()
	c.ime = imeOn
}
