package memory

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	titleAddress          = 0x134
	titleLength           = 16
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	headerChecksumAddress = 0x14D
)

// MBCType identifies the memory bank controller a cartridge header asks
// for. Only NoMBC and the MBC1 family are actually implemented; the rest
// are kept as named identifiers so header decoding stays complete and
// unsupported cartridges fail loudly instead of silently misbehaving.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC1MultiType
	MBC2Type
	MBC3Type
	MBC5Type
	MBC6Type
	MBC7Type
	MMM01Type
	MBCUnknownType
)

func (t MBCType) String() string {
	switch t {
	case NoMBCType:
		return "NoMBC"
	case MBC1Type:
		return "MBC1"
	case MBC1MultiType:
		return "MBC1Multi"
	case MBC2Type:
		return "MBC2"
	case MBC3Type:
		return "MBC3"
	case MBC5Type:
		return "MBC5"
	case MBC6Type:
		return "MBC6"
	case MBC7Type:
		return "MBC7"
	case MMM01Type:
		return "MMM01"
	default:
		return "Unknown"
	}
}

// mbcTypeFromHeader maps the cartridge header's type byte to an MBCType.
// Only the entries relevant to NoMBC/MBC1 detection are distinguished in
// detail; everything else collapses to its family identifier. MBC1Multi
// is never returned here: the type byte alone can't distinguish an MBC1
// multicart from a plain MBC1 cartridge, so that's detected separately by
// isMBC1Multicart against the full image.
func mbcTypeFromHeader(b byte) MBCType {
	switch b {
	case 0x00, 0x08, 0x09:
		return NoMBCType
	case 0x01, 0x02, 0x03:
		return MBC1Type
	case 0x05, 0x06:
		return MBC2Type
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return MBC3Type
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return MBC5Type
	case 0x20:
		return MBC6Type
	case 0x22:
		return MBC7Type
	case 0x0B, 0x0C, 0x0D:
		return MMM01Type
	default:
		return MBCUnknownType
	}
}

// multicartLogoAddress is where an MBC1M multicart's second game repeats
// the Nintendo logo: bank 0x10's copy of 0x0104-0x0133, at physical ROM
// offset 0x10104 (MBC1M wires bank bit 4 to the CPU's A4 line instead of
// A19, so each of its games starts at a bank number that's a multiple of
// 0x10 and carries its own boot-checked logo).
const multicartLogoAddress = 0x10104

func isMBC1Multicart(data []byte) bool {
	const logoLength = 48
	if len(data) < multicartLogoAddress+logoLength {
		return false
	}
	return bytes.Equal(data[0x0104:0x0104+logoLength], data[multicartLogoAddress:multicartLogoAddress+logoLength])
}

func ramBankCountFromHeader(b byte) uint8 {
	switch b {
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// Cartridge holds a loaded ROM image plus the header fields decoded from
// it. The raw data is handed to the selected MBC implementation; Cartridge
// itself never serves reads/writes.
type Cartridge struct {
	data           []byte
	title          string
	mbcType        MBCType
	hasBattery     bool
	ramBankCount   uint8
	headerChecksum uint8
}

// NewCartridge returns an empty cartridge, useful for power-on-with-no-ROM
// testing of the CPU/memory map in isolation.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x8000),
		mbcType: NoMBCType,
	}
}

// ErrInvalidRomLength is returned when a ROM image's length is not a
// multiple of 16 KiB, the bank granularity of every supported cartridge.
var ErrInvalidRomLength = fmt.Errorf("memory: ROM length must be a multiple of 16KiB")

// ErrUnsupportedMBC is returned when a cartridge header requests a memory
// bank controller other than NoMBC/MBC1/MBC1Multi.
var ErrUnsupportedMBC = fmt.Errorf("memory: unsupported MBC type")

// NewCartridgeWithData parses a ROM image's header and wraps it in a
// Cartridge, ready to be handed to NewWithCartridge. It does not allocate
// an MBC implementation; that happens when the cartridge is attached to an
// MMU, since the MBC needs to know the RAM bank count too.
func NewCartridgeWithData(data []byte) (*Cartridge, error) {
	if len(data)%(16*1024) != 0 {
		return nil, ErrInvalidRomLength
	}

	mbcType := mbcTypeFromHeader(data[cartridgeTypeAddress])
	if mbcType == MBC1Type && isMBC1Multicart(data) {
		mbcType = MBC1MultiType
	}
	if mbcType != NoMBCType && mbcType != MBC1Type && mbcType != MBC1MultiType {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMBC, mbcType)
	}

	cart := &Cartridge{
		data:           make([]byte, len(data)),
		title:          cleanTitle(data[titleAddress : titleAddress+titleLength]),
		mbcType:        mbcType,
		hasBattery:     hasBattery(data[cartridgeTypeAddress]),
		ramBankCount:   ramBankCountFromHeader(data[ramSizeAddress]),
		headerChecksum: data[headerChecksumAddress],
	}
	copy(cart.data, data)

	return cart, nil
}

func hasBattery(cartType byte) bool {
	switch cartType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E:
		return true
	default:
		return false
	}
}

// cleanTitle converts a raw title field into a printable string: NUL bytes
// become padding to trim, non-printable bytes become '?'.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		switch {
		case b == 0:
			continue
		case b < 0x20 || b > 0x7E:
			runes = append(runes, '?')
		default:
			runes = append(runes, rune(b))
		}
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}

// Title returns the cartridge's cleaned header title.
func (c *Cartridge) Title() string { return c.title }

// MBCType returns the memory bank controller requested by the header.
func (c *Cartridge) MBCType() MBCType { return c.mbcType }
