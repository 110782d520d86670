// Package memory implements the DMG's flat 16-bit address space: cartridge
// ROM/RAM routed through a bank controller, the fixed RAM regions, the boot
// ROM overlay, and dispatch of I/O register addresses to the peripheral
// collaborators that own them.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/corvidae/dmgboy/dmgboy/addr"
)

// Peripheral is satisfied by every register-mapped I/O collaborator the MMU
// dispatches to. Step advances the peripheral by tStates T-states.
type Peripheral interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Step(tStates int)
}

// MMU owns every byte of DMG memory that isn't cartridge-resident and routes
// every address in the 16-bit space to its owning collaborator.
type MMU struct {
	cart *Cartridge
	mbc  MBC

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [0xA0]byte
	hram [0x7F]byte
	io   [0x80]byte // catch-all for addresses no peripheral above claims

	ie  uint8
	ifr uint8

	bootROM        [256]byte
	bootROMEnabled bool
	dmaSource      uint8

	joypad *joypad

	timer   Peripheral
	display Peripheral
	audio   Peripheral
	serial  Peripheral
}

// New creates an MMU with no cartridge attached, the boot overlay enabled,
// and all RAM zeroed: equivalent to powering on a DMG with nothing inserted.
func New(timer, display, audio, serial Peripheral) *MMU {
	return &MMU{
		cart:           NewCartridge(),
		bootROM:        DMGBootROM,
		bootROMEnabled: true,
		joypad:         newJoypad(),
		timer:          timer,
		display:        display,
		audio:          audio,
		serial:         serial,
	}
}

// ErrInvalidBootROMLength is returned when a custom boot ROM image isn't
// exactly 256 bytes, the fixed size of the DMG boot overlay.
var ErrInvalidBootROMLength = fmt.Errorf("memory: boot ROM must be exactly 256 bytes")

// SetBootROM overrides the built-in DMG boot image with a caller-supplied
// one, for embedders that want to run a different boot ROM dump. It only
// takes effect while the boot overlay is still enabled.
func (m *MMU) SetBootROM(data []byte) error {
	if len(data) != len(m.bootROM) {
		return ErrInvalidBootROMLength
	}
	copy(m.bootROM[:], data)
	return nil
}

// AttachCartridge replaces the loaded cartridge and (re)builds its bank
// controller. An unsupported MBC type was already rejected by
// NewCartridgeWithData, so this never fails.
func (m *MMU) AttachCartridge(cart *Cartridge) {
	m.cart = cart
	switch cart.mbcType {
	case NoMBCType:
		m.mbc = NewNoMBC(cart.data)
	case MBC1Type, MBC1MultiType:
		m.mbc = NewMBC1(cart.data, cart.ramBankCount)
	default:
		slog.Warn("attaching cartridge with unhandled MBC type, falling back to NoMBC", "type", cart.mbcType)
		m.mbc = NewNoMBC(cart.data)
	}
}

// DisableBootROM permanently turns off the boot overlay, as if 0xFF50 had
// been written by the running boot ROM.
func (m *MMU) DisableBootROM() { m.bootROMEnabled = false }

// BootROMEnabled reports whether reads below 0x0100 still see boot ROM
// bytes instead of the cartridge.
func (m *MMU) BootROMEnabled() bool { return m.bootROMEnabled }

// RequestInterrupt sets the given bit in IF.
func (m *MMU) RequestInterrupt(source addr.Interrupt) {
	m.ifr |= uint8(source)
}

// HandleKeyPress presses a joypad button/direction, requesting the Joypad
// interrupt on the falling edge if the newly-pressed line is selected.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	if m.joypad.press(key) {
		m.RequestInterrupt(addr.Joypad)
	}
}

// HandleKeyRelease releases a joypad button/direction.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.release(key)
}

// Tick steps every peripheral collaborator by tStates T-states, in the
// fixed order timer, display, audio, serial, joypad. It does not itself
// advance a system clock; the caller (the Tick Bus) owns that counter.
func (m *MMU) Tick(tStates int) {
	if m.timer != nil {
		m.timer.Step(tStates)
	}
	if m.display != nil {
		m.display.Step(tStates)
	}
	if m.audio != nil {
		m.audio.Step(tStates)
	}
	if m.serial != nil {
		m.serial.Step(tStates)
	}
	m.joypad.Step(tStates)
}

// Read returns the byte at address, masked to 16 bits by the uint16 type
// itself. It never ticks the clock.
func (m *MMU) Read(address uint16) uint8 {
	switch {
	case address < 0x0100 && m.bootROMEnabled:
		return m.bootROM[address]
	case address <= 0x7FFF:
		return m.mbcRead(address)
	case address <= 0x9FFF:
		return m.vram[address-0x8000]
	case address <= 0xBFFF:
		return m.mbcRead(address)
	case address <= 0xDFFF:
		return m.wram[address-0xC000]
	case address <= 0xFDFF:
		return m.wram[address-0xE000]
	case address <= 0xFE9F:
		return m.oam[address-0xFE00]
	case address <= 0xFEFF:
		return 0
	case address <= 0xFF7F:
		return m.readIO(address)
	case address <= 0xFFFE:
		return m.hram[address-0xFF80]
	default: // 0xFFFF
		return m.ie
	}
}

// Write stores value at address. It never ticks the clock.
func (m *MMU) Write(address uint16, value uint8) {
	switch {
	case address < 0x0100 && m.bootROMEnabled:
		// Boot ROM is read-only; writes below 0x100 fall through to the
		// cartridge exactly as on real hardware (the MBC still observes
		// them, e.g. the early RAM-enable latch write).
		m.mbcWrite(address, value)
	case address <= 0x7FFF:
		m.mbcWrite(address, value)
	case address <= 0x9FFF:
		m.vram[address-0x8000] = value
	case address <= 0xBFFF:
		m.mbcWrite(address, value)
	case address <= 0xDFFF:
		m.wram[address-0xC000] = value
	case address <= 0xFDFF:
		m.wram[address-0xE000] = value
	case address <= 0xFE9F:
		m.oam[address-0xFE00] = value
	case address <= 0xFEFF:
		// unusable; writes ignored
	case address <= 0xFF7F:
		m.writeIO(address, value)
	case address <= 0xFFFE:
		m.hram[address-0xFF80] = value
	default: // 0xFFFF
		m.ie = value
	}
}

func (m *MMU) mbcRead(address uint16) uint8 {
	if m.mbc == nil {
		return 0xFF
	}
	return m.mbc.Read(address)
}

func (m *MMU) mbcWrite(address uint16, value uint8) {
	if m.mbc == nil {
		return
	}
	m.mbc.Write(address, value)
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.P1:
		return m.joypad.read()
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			return m.serial.Read(address)
		}
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		if m.timer != nil {
			return m.timer.Read(address)
		}
	case address == addr.IF:
		return m.ifr | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.audio != nil {
			return m.audio.Read(address)
		}
	case address == addr.DMA:
		return m.dmaSource
	case address >= addr.LCDC && address <= addr.WX:
		if m.display != nil {
			return m.display.Read(address)
		}
	}
	return m.io[address-0xFF00]
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		m.joypad.writeSelect(value)
		return
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			m.serial.Write(address, value)
		}
		return
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		if m.timer != nil {
			m.timer.Write(address, value)
		}
		return
	case address == addr.IF:
		m.ifr = value & 0x1F
		return
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.audio != nil {
			m.audio.Write(address, value)
		}
		return
	case address == addr.DMA:
		m.dmaSource = value
		m.runDMA(value)
		return
	case address >= addr.LCDC && address <= addr.WX:
		if m.display != nil {
			m.display.Write(address, value)
		}
		return
	case address == addr.BootROMDisable:
		m.bootROMEnabled = false
		return
	}
	m.io[address-0xFF00] = value
}

// runDMA copies 160 bytes from source*0x100 into OAM. Real hardware stalls
// the bus for 160 M-cycles while this happens; this core models it as
// instantaneous, a documented simplification since nothing here contends
// for bus access mid-DMA.
func (m *MMU) runDMA(source uint8) {
	base := uint16(source) << 8
	for i := uint16(0); i < 160; i++ {
		m.oam[i] = m.Read(base + i)
	}
}

func (m *MMU) String() string {
	return fmt.Sprintf("MMU{cart=%q mbc=%T bootROM=%t}", m.cart.Title(), m.mbc, m.bootROMEnabled)
}
