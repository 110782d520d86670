package dmgboy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSkipBootROMStartsAtCartridgeEntry(t *testing.T) {
	e := New()
	e.SkipBootROM()

	snap := e.Snapshot()
	assert.Equal(t, uint16(0x0100), snap.PC)
	assert.Equal(t, uint16(0xFFFE), snap.SP)
	assert.False(t, snap.IME)
}

func TestStepAdvancesInstructionCount(t *testing.T) {
	e := New()
	e.SkipBootROM()

	e.Step()

	assert.Equal(t, uint64(1), e.InstructionCount())
}

func TestRunFramePausedDoesNothing(t *testing.T) {
	e := New()
	e.SkipBootROM()
	e.Pause()

	e.RunFrame()

	assert.Equal(t, uint64(0), e.InstructionCount())
}

func TestRunFrameAdvancesAtLeastOneFrame(t *testing.T) {
	e := New()
	e.SkipBootROM()

	e.RunFrame()

	require.Greater(t, e.InstructionCount(), uint64(0))
	assert.Equal(t, uint64(1), e.FrameCount())
	assert.GreaterOrEqual(t, e.CPU().Cycles(), uint64(cyclesPerFrame))
}

func TestSetBootROMOverridesBuiltinImage(t *testing.T) {
	e := New()
	custom := make([]byte, 256)
	custom[0] = 0x00 // NOP, distinguishable only by content below
	custom[1] = 0x76 // HALT

	require.NoError(t, e.SetBootROM(custom))
	assert.Equal(t, uint8(0x76), e.MMU().Read(0x0001))
}

func TestSetBootROMRejectsWrongLength(t *testing.T) {
	e := New()

	err := e.SetBootROM(make([]byte, 10))

	assert.Error(t, err)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := New()
	e.SkipBootROM()
	e.Step()
	e.Step()

	want := e.Snapshot()

	other := New()
	other.SkipBootROM()
	other.Step()
	other.Step()
	other.Step()
	other.Step()
	other.Restore(want)

	got := other.Snapshot()
	assert.Equal(t, want.A, got.A)
	assert.Equal(t, want.F, got.F)
	assert.Equal(t, want.B, got.B)
	assert.Equal(t, want.C, got.C)
	assert.Equal(t, want.D, got.D)
	assert.Equal(t, want.E, got.E)
	assert.Equal(t, want.H, got.H)
	assert.Equal(t, want.L, got.L)
	assert.Equal(t, want.PC, got.PC)
	assert.Equal(t, want.SP, got.SP)
	assert.Equal(t, want.IME, got.IME)
	assert.Equal(t, want.Halted, got.Halted)
	assert.Equal(t, want.Stopped, got.Stopped)
	assert.Equal(t, want.IE, got.IE)
	assert.Equal(t, want.IF, got.IF)
}

func TestStepInstructionModePausesAfterOne(t *testing.T) {
	e := New()
	e.SkipBootROM()
	e.RequestStepInstruction()

	e.RunFrame()

	assert.Equal(t, uint64(1), e.InstructionCount())
	assert.Equal(t, DebuggerPaused, e.DebuggerState())

	// A second RunFrame call without a fresh request does nothing further.
	e.RunFrame()
	assert.Equal(t, uint64(1), e.InstructionCount())
}
