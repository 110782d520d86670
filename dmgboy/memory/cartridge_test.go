package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// headerChecksumOf computes the real DMG header checksum (x = x - byte - 1,
// over 0x0134-0x014C) so test ROMs don't need it hand-derived.
func headerChecksumOf(rom []byte) byte {
	var x byte
	for i := 0x0134; i <= 0x014C; i++ {
		x = x - rom[i] - 1
	}
	return x
}

func romWithHeader(banks int, title string, cartType, ramSizeByte byte) []byte {
	rom := make([]byte, banks*0x4000)
	copy(rom[titleAddress:], title)
	rom[cartridgeTypeAddress] = cartType
	rom[ramSizeAddress] = ramSizeByte
	rom[headerChecksumAddress] = headerChecksumOf(rom)
	return rom
}

func TestNewCartridgeWithDataParsesHeader(t *testing.T) {
	rom := romWithHeader(2, "TESTGAME", 0x00, 0x00)

	cart, err := NewCartridgeWithData(rom)

	require.NoError(t, err)
	assert.Equal(t, "TESTGAME", cart.Title())
	assert.Equal(t, NoMBCType, cart.MBCType())
}

func TestNewCartridgeWithDataDetectsMBC1(t *testing.T) {
	rom := romWithHeader(4, "MBC1GAME", 0x03, 0x02) // 0x03 = MBC1+RAM+BATTERY

	cart, err := NewCartridgeWithData(rom)

	require.NoError(t, err)
	assert.Equal(t, MBC1Type, cart.MBCType())
	assert.True(t, cart.hasBattery)
	assert.Equal(t, uint8(1), cart.ramBankCount)
}

func TestNewCartridgeWithDataDetectsMBC1Multicart(t *testing.T) {
	rom := romWithHeader(64, "MULTICART", 0x01, 0x00) // 1MB, plain MBC1 type byte
	copy(rom[multicartLogoAddress:], rom[0x0104:0x0104+48])
	rom[headerChecksumAddress] = headerChecksumOf(rom)

	cart, err := NewCartridgeWithData(rom)

	require.NoError(t, err)
	assert.Equal(t, MBC1MultiType, cart.MBCType())
}

func TestNewCartridgeWithDataRejectsInvalidLength(t *testing.T) {
	_, err := NewCartridgeWithData(make([]byte, 100))

	assert.ErrorIs(t, err, ErrInvalidRomLength)
}

func TestNewCartridgeWithDataRejectsUnsupportedMBC(t *testing.T) {
	rom := romWithHeader(4, "MBC3GAME", 0x0F, 0x00) // MBC3+TIMER+BATTERY

	_, err := NewCartridgeWithData(rom)

	assert.ErrorIs(t, err, ErrUnsupportedMBC)
}

func TestCleanTitleStripsNulAndNonPrintable(t *testing.T) {
	raw := []byte{'H', 'I', 0x00, 0x00, 0x01, 0x00}

	assert.Equal(t, "HI?", cleanTitle(raw))
}

func TestCleanTitleEmptyBecomesUntitled(t *testing.T) {
	assert.Equal(t, "(untitled)", cleanTitle(make([]byte, 16)))
}
