package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMBC1(romBanks int, ramBanks uint8) *MBC1 {
	rom := make([]uint8, romBanks*0x4000)
	// Stamp each bank's first byte with its own bank number so Read can be
	// asserted against which bank actually got selected.
	for bank := 0; bank < romBanks; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	return NewMBC1(rom, ramBanks)
}

func TestMBC1ZeroBankRemapsToOne(t *testing.T) {
	mbc := newTestMBC1(4, 0)

	mbc.Write(0x2000, 0x00) // bank5 = 0, remaps to 1

	assert.Equal(t, uint8(1), mbc.Read(0x4000))
}

func TestMBC1Bank2ContributesInROMMode(t *testing.T) {
	mbc := newTestMBC1(128, 0)

	mbc.Write(0x4000, 0x01) // bank2 = 1
	mbc.Write(0x2000, 0x05) // bank5 = 5, mode stays 0 (ROM banking)

	assert.Equal(t, uint8(0x25), mbc.Read(0x4000))
}

func TestMBC1ZeroRemapHoldsRegardlessOfBank2(t *testing.T) {
	// bank2=1 then bank5=0 must never select bank 0x20: the 0->1 remap
	// applies to bank5 alone, so the combined selection is 0x21, not 0x20.
	mbc := newTestMBC1(64, 0)

	mbc.Write(0x4000, 0x01)
	mbc.Write(0x2000, 0x00)

	assert.Equal(t, uint8(0x21), mbc.Read(0x4000))
}

func TestMBC1RAMModeBank2SelectsRAMNotROM(t *testing.T) {
	mbc := newTestMBC1(64, 4)
	mbc.Write(0x0000, 0x0A) // enable RAM
	mbc.Write(0x2000, 0x05) // bank5 = 5

	mbc.Write(0x4000, 0x02) // bank2 = 2
	mbc.Write(0x6000, 0x01) // mode = RAM banking

	// ROM selection is bank5 alone in RAM mode.
	assert.Equal(t, uint8(0x05), mbc.Read(0x4000))

	mbc.Write(0xA000, 0x42)
	assert.Equal(t, uint8(0x42), mbc.Read(0xA000))

	// Switching to RAM bank 0 (bank2=0) must read back a different cell.
	mbc.Write(0x4000, 0x00)
	assert.NotEqual(t, uint8(0x42), mbc.Read(0xA000))
}

func TestMBC1RAMDisabledReadsFF(t *testing.T) {
	mbc := newTestMBC1(4, 1)

	assert.Equal(t, uint8(0xFF), mbc.Read(0xA000))

	mbc.Write(0xA000, 0x99) // write while disabled is a no-op
	mbc.Write(0x0000, 0x0A)
	assert.NotEqual(t, uint8(0x99), mbc.Read(0xA000))
}

func TestMBC1RAMEnableRequiresLowNibbleA(t *testing.T) {
	mbc := newTestMBC1(4, 1)

	mbc.Write(0x0000, 0x1A) // high nibble ignored, low nibble 0xA enables
	mbc.Write(0xA000, 0x07)

	assert.Equal(t, uint8(0x07), mbc.Read(0xA000))
}

func TestNoMBCIgnoresWrites(t *testing.T) {
	rom := make([]uint8, 0x8000)
	rom[0x10] = 0x55
	mbc := NewNoMBC(rom)

	mbc.Write(0x10, 0xAA)

	assert.Equal(t, uint8(0x55), mbc.Read(0x10))
}

func TestNoMBCOutOfRangeReadsFF(t *testing.T) {
	mbc := NewNoMBC(make([]uint8, 0x4000))

	assert.Equal(t, uint8(0xFF), mbc.Read(0x7FFF))
}
