package serial

import (
	"testing"

	"github.com/corvidae/dmgboy/dmgboy/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferCompletesAfterFixedCycles(t *testing.T) {
	fired := 0
	s := New(func() { fired++ })

	s.Write(addr.SB, 0x42)
	s.Write(addr.SC, 0x81) // start + internal clock

	s.Step(transferCycles - 1)
	require.Equal(t, uint8(0x81)|0x7E, s.Read(addr.SC), "still mid-transfer")

	s.Step(1)

	assert.Equal(t, 1, fired)
	assert.Equal(t, uint8(0xFF), s.Read(addr.SB))
	assert.Equal(t, uint8(0), s.Read(addr.SC)&0x80, "start bit clears on completion")
}

func TestExternalClockTransferNeverStarts(t *testing.T) {
	fired := 0
	s := New(func() { fired++ })

	s.Write(addr.SB, 0x10)
	s.Write(addr.SC, 0x80) // start bit set, external clock

	s.Step(transferCycles * 2)

	assert.Equal(t, 0, fired)
}
