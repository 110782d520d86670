// Package dmgboy wires the CPU, memory map, and peripheral collaborators
// into a single embeddable core, and exposes the frame/instruction-level
// stepping surface an embedder (CLI, debugger, test harness) drives.
package dmgboy

import (
	"github.com/corvidae/dmgboy/dmgboy/addr"
	"github.com/corvidae/dmgboy/dmgboy/audio"
	"github.com/corvidae/dmgboy/dmgboy/display"
	"github.com/corvidae/dmgboy/dmgboy/memory"
	"github.com/corvidae/dmgboy/dmgboy/serial"
	"github.com/corvidae/dmgboy/dmgboy/timer"
)

// newBus constructs the four peripheral collaborators and the MMU that
// dispatches to them, tying each peripheral's interrupt callback back to
// the MMU via a forward-referenced closure (the peripherals must exist
// before the MMU does, but the MMU is what they ultimately request
// interrupts through).
func newBus() *memory.MMU {
	var mmu *memory.MMU

	tm := timer.New(func() { mmu.RequestInterrupt(addr.Timer) })
	dp := display.New(func(source addr.Interrupt) { mmu.RequestInterrupt(source) })
	ap := audio.New()
	sr := serial.New(func() { mmu.RequestInterrupt(addr.Serial) })

	mmu = memory.New(tm, dp, ap, sr)
	return mmu
}
