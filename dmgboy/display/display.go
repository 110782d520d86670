// Package display implements the DMG PPU's timing state machine: LY/STAT
// mode sequencing and the interrupts that transition triggers, with no
// pixel composition. Pixel rendering is an external collaborator's concern;
// this package only produces the timing signal a renderer would hook into.
package display

import (
	"github.com/corvidae/dmgboy/dmgboy/addr"
	"github.com/corvidae/dmgboy/dmgboy/bit"
)

// Mode mirrors STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeVRAM   Mode = 3
)

const (
	oamCycles       = 80
	vramCycles      = 172
	hblankCycles    = 204
	scanlineCycles  = oamCycles + vramCycles + hblankCycles // 456
	visibleLines    = 144
	totalLines      = 154
	statCoincidence = 6
	statOAMIrq      = 5
	statVBlankIrq   = 4
	statHBlankIrq   = 3
)

// Display tracks LCDC/STAT/SCY/SCX/LY/LYC/palette/window registers and
// steps the mode/line state machine on every Step call.
type Display struct {
	lcdc, stat       uint8
	scy, scx         uint8
	ly, lyc          uint8
	bgp, obp0, obp1  uint8
	wy, wx           uint8
	lineCycles       int
	requestInterrupt func(addr.Interrupt)
}

// New creates a Display at its real-hardware post-boot register state.
func New(requestInterrupt func(addr.Interrupt)) *Display {
	d := &Display{
		lcdc:             0x91,
		stat:             0x85,
		bgp:              0xFC,
		requestInterrupt: requestInterrupt,
	}
	d.setMode(ModeOAM)
	return d
}

func (d *Display) mode() Mode { return Mode(d.stat & 0x03) }

func (d *Display) setMode(m Mode) {
	d.stat = (d.stat &^ 0x03) | uint8(m)
}

func (d *Display) enabled() bool { return bit.IsSet(7, d.lcdc) }

// Step advances the PPU timing state machine by tStates T-states. It loops
// internally so a single call can cross more than one mode/line boundary,
// which happens whenever the caller batches several memory accesses' worth
// of ticks together.
func (d *Display) Step(tStates int) {
	if !d.enabled() {
		return
	}

	remaining := tStates
	for remaining > 0 {
		step := d.stepOnce(remaining)
		remaining -= step
	}
}

// stepOnce advances at most to the next mode/line boundary and returns how
// many T-states it actually consumed (always <= budget, and always > 0).
func (d *Display) stepOnce(budget int) int {
	var threshold int
	switch d.mode() {
	case ModeOAM:
		threshold = oamCycles
	case ModeVRAM:
		threshold = vramCycles
	case ModeHBlank:
		threshold = hblankCycles
	case ModeVBlank:
		threshold = scanlineCycles
	}

	remainingInMode := threshold - d.lineCycles
	if remainingInMode > budget {
		d.lineCycles += budget
		return budget
	}

	d.lineCycles += remainingInMode
	switch d.mode() {
	case ModeOAM:
		d.lineCycles = 0
		d.enterMode(ModeVRAM)
	case ModeVRAM:
		d.lineCycles = 0
		d.enterMode(ModeHBlank)
	case ModeHBlank, ModeVBlank:
		d.lineCycles = 0
		d.advanceLine()
	}
	if remainingInMode == 0 {
		return 1
	}
	return remainingInMode
}

// advanceLine moves to the next scanline, switching modes at the visible/
// VBlank boundary and wrapping LY 153 -> 0.
func (d *Display) advanceLine() {
	d.setLY(d.ly + 1)

	switch {
	case d.ly == visibleLines:
		d.enterMode(ModeVBlank)
		if d.requestInterrupt != nil {
			d.requestInterrupt(addr.VBlank)
		}
		d.maybeStatInterrupt(statVBlankIrq)
	case d.ly >= totalLines:
		d.setLY(0)
		d.enterMode(ModeOAM)
		d.maybeStatInterrupt(statOAMIrq)
	case d.mode() == ModeVBlank:
		// still within the VBlank line range, mode unchanged
	default:
		d.enterMode(ModeOAM)
		d.maybeStatInterrupt(statOAMIrq)
	}
}

func (d *Display) enterMode(m Mode) {
	d.setMode(m)
	if m == ModeHBlank {
		d.maybeStatInterrupt(statHBlankIrq)
	}
}

func (d *Display) maybeStatInterrupt(selectBit uint8) {
	if bit.IsSet(selectBit, d.stat) && d.requestInterrupt != nil {
		d.requestInterrupt(addr.LCDSTAT)
	}
}

func (d *Display) setLY(ly uint8) {
	const lycFlag = 2 // STAT bit 2: LY == LYC
	d.ly = ly
	coincides := d.ly == d.lyc
	if coincides {
		d.stat = bit.Set(lycFlag, d.stat)
	} else {
		d.stat = bit.Reset(lycFlag, d.stat)
	}
	if coincides {
		d.maybeStatInterrupt(statCoincidence)
	}
}

// Read implements memory.Peripheral.
func (d *Display) Read(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return d.lcdc
	case addr.STAT:
		return d.stat | 0x80
	case addr.SCY:
		return d.scy
	case addr.SCX:
		return d.scx
	case addr.LY:
		return d.ly
	case addr.LYC:
		return d.lyc
	case addr.BGP:
		return d.bgp
	case addr.OBP0:
		return d.obp0
	case addr.OBP1:
		return d.obp1
	case addr.WY:
		return d.wy
	case addr.WX:
		return d.wx
	default:
		return 0xFF
	}
}

// Write implements memory.Peripheral.
func (d *Display) Write(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		wasEnabled := d.enabled()
		d.lcdc = value
		if wasEnabled && !d.enabled() {
			d.ly = 0
			d.lineCycles = 0
			d.setMode(ModeOAM)
		}
	case addr.STAT:
		d.stat = (d.stat & 0x07) | (value & 0x78)
	case addr.SCY:
		d.scy = value
	case addr.SCX:
		d.scx = value
	case addr.LY:
		// read-only on real hardware
	case addr.LYC:
		d.lyc = value
		d.setLY(d.ly)
	case addr.BGP:
		d.bgp = value
	case addr.OBP0:
		d.obp0 = value
	case addr.OBP1:
		d.obp1 = value
	case addr.WY:
		d.wy = value
	case addr.WX:
		d.wx = value
	}
}
