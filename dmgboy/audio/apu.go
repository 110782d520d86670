// Package audio implements the DMG APU as a bare register file: every
// NR10-NR52 register and wave RAM byte is stored and round-trips through
// the documented read masks, but no channel is actually synthesized. Sound
// generation is out of scope for this core; Step exists only so the APU
// satisfies the same Peripheral contract as the other collaborators.
package audio

import "github.com/corvidae/dmgboy/dmgboy/addr"

const waveRAMSize = 16

// APU is the register-file stand-in for the DMG's four-channel sound unit.
type APU struct {
	enabled bool

	nr10, nr11, nr12, nr13, nr14 uint8
	nr21, nr22, nr23, nr24       uint8
	nr30, nr31, nr32, nr33, nr34 uint8
	nr41, nr42, nr43, nr44       uint8
	nr50, nr51, nr52             uint8

	waveRAM [waveRAMSize]uint8
}

// New creates a powered-off APU with NR52's always-1 bits already set.
func New() *APU {
	return &APU{}
}

// Step is a no-op: without sound synthesis there is nothing for elapsed
// T-states to drive. It exists so APU satisfies memory.Peripheral.
func (a *APU) Step(tStates int) {}

// Read implements memory.Peripheral, masking unused/write-only bits the
// way real hardware does.
func (a *APU) Read(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return a.nr10 | 0x80
	case addr.NR11:
		return a.nr11 | 0x3F
	case addr.NR12:
		return a.nr12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.nr14 | 0xBF
	case addr.NR21:
		return a.nr21 | 0x3F
	case addr.NR22:
		return a.nr22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.nr24 | 0xBF
	case addr.NR30:
		return a.nr30 | 0x7F
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.nr32 | 0x9F
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.nr34 | 0xBF
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.nr42
	case addr.NR43:
		return a.nr43
	case addr.NR44:
		return a.nr44 | 0xBF
	case addr.NR50:
		return a.nr50
	case addr.NR51:
		return a.nr51
	case addr.NR52:
		status := uint8(0x70)
		if a.enabled {
			status |= 0x80
		}
		return status
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		return a.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

// Write implements memory.Peripheral. Writes other than to NR52 and wave
// RAM are ignored while the APU is powered off, matching real hardware.
func (a *APU) Write(address uint16, value uint8) {
	isWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd
	if !a.enabled && address != addr.NR52 && !isWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.nr10 = value
	case addr.NR11:
		a.nr11 = value
	case addr.NR12:
		a.nr12 = value
	case addr.NR13:
		a.nr13 = value
	case addr.NR14:
		a.nr14 = value
	case addr.NR21:
		a.nr21 = value
	case addr.NR22:
		a.nr22 = value
	case addr.NR23:
		a.nr23 = value
	case addr.NR24:
		a.nr24 = value
	case addr.NR30:
		a.nr30 = value
	case addr.NR31:
		a.nr31 = value
	case addr.NR32:
		a.nr32 = value
	case addr.NR33:
		a.nr33 = value
	case addr.NR34:
		a.nr34 = value
	case addr.NR41:
		a.nr41 = value
	case addr.NR42:
		a.nr42 = value
	case addr.NR43:
		a.nr43 = value
	case addr.NR44:
		a.nr44 = value
	case addr.NR50:
		a.nr50 = value
	case addr.NR51:
		a.nr51 = value
	case addr.NR52:
		a.enabled = value&0x80 != 0
	default:
		if isWaveRAM {
			a.waveRAM[address-addr.WaveRAMStart] = value
		}
	}
}
