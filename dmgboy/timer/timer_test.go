package timer

import (
	"testing"

	"github.com/corvidae/dmgboy/dmgboy/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivIncrementsWithSystemCounter(t *testing.T) {
	tm := New(nil)
	require.Equal(t, uint8(0), tm.Read(addr.DIV))

	tm.Step(256 * 4)

	assert.Equal(t, uint8(4), tm.Read(addr.DIV))
}

func TestWritingDivResetsCounter(t *testing.T) {
	tm := New(nil)
	tm.Step(300)
	require.NotEqual(t, uint8(0), tm.Read(addr.DIV))

	tm.Write(addr.DIV, 0x99)

	assert.Equal(t, uint8(0), tm.Read(addr.DIV))
}

func TestTimaIncrementsOnlyOnFallingEdge(t *testing.T) {
	tm := New(nil)
	tm.Write(addr.TAC, 0x05) // enabled, input clock select 01 -> bit 3

	// Bit 3 of the system counter toggles every 8 T-states; step exactly
	// one full low-to-high-to-low cycle worth of T-states.
	tm.Step(16)

	assert.Equal(t, uint8(1), tm.Read(addr.TIMA))
}

func TestTimaDisabledNeverIncrements(t *testing.T) {
	tm := New(nil)
	tm.Write(addr.TAC, 0x01) // bit set but enable bit (0x04) clear

	tm.Step(1000)

	assert.Equal(t, uint8(0), tm.Read(addr.TIMA))
}

func TestTimaOverflowReloadsFromTmaAndRequestsInterrupt(t *testing.T) {
	fired := 0
	tm := New(func() { fired++ })
	tm.Write(addr.TMA, 0x42)
	tm.Write(addr.TAC, 0x05)
	tm.Write(addr.TIMA, 0xFF)

	// Drive one falling edge to overflow TIMA from 0xFF to 0x00.
	tm.Step(16)
	require.Equal(t, uint8(0x00), tm.Read(addr.TIMA))
	require.Equal(t, 0, fired, "interrupt is delayed by one M-cycle after overflow")

	// The delay is 4 T-states; stepping past it completes the reload.
	tm.Step(4)
	assert.Equal(t, uint8(0x42), tm.Read(addr.TIMA))

	tm.Step(1)
	assert.Equal(t, 1, fired)
}

func TestTacUnusedBitsReadAsOne(t *testing.T) {
	tm := New(nil)
	tm.Write(addr.TAC, 0x00)

	assert.Equal(t, uint8(0xF8), tm.Read(addr.TAC))
}
