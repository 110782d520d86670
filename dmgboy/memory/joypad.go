package memory

import "github.com/corvidae/dmgboy/dmgboy/bit"

// JoypadKey identifies one of the eight physical buttons.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// joypad tracks button/d-pad state and mixes it into the P1 register
// according to the selection bits the CPU writes. Both fields are
// active-low, matching real hardware: 0 means pressed.
type joypad struct {
	buttons uint8
	dpad    uint8
	p1      uint8
}

func newJoypad() *joypad {
	return &joypad{buttons: 0x0F, dpad: 0x0F, p1: 0xCF}
}

// writeSelect updates the selection bits (4-5) written by the CPU and
// recomputes P1.
func (j *joypad) writeSelect(value uint8) {
	j.p1 = (j.p1 & 0x0F) | (value & 0x30)
	j.refresh()
}

func (j *joypad) refresh() {
	result := uint8(0xC0) | (j.p1 & 0x30)

	selectDpad := !bit.IsSet(4, j.p1)
	selectButtons := !bit.IsSet(5, j.p1)

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	j.p1 = result
}

// press returns true if this key transitioned from released to pressed,
// which is the edge that requests the Joypad interrupt.
func (j *joypad) press(key JoypadKey) bool {
	before := j.read()
	switch key {
	case JoypadRight:
		j.dpad = bit.Reset(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Reset(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Reset(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Reset(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Reset(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Reset(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Reset(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Reset(3, j.buttons)
	}
	j.refresh()
	return before&^j.read()&0x0F != 0
}

func (j *joypad) release(key JoypadKey) {
	switch key {
	case JoypadRight:
		j.dpad = bit.Set(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Set(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Set(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Set(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Set(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Set(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Set(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Set(3, j.buttons)
	}
	j.refresh()
}

func (j *joypad) read() uint8 { return j.p1 }

// Step advances the joypad by tStates T-states. Real joypad hardware has
// no internal timing state of its own (button state changes only on
// HandleKeyPress/HandleKeyRelease), so this is a no-op kept only to give
// the Tick Bus a uniform step() call across all five peripherals, per
// spec.md §4.3's fixed tick order.
func (j *joypad) Step(tStates int) {}
