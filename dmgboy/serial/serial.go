// Package serial implements the DMG's SB/SC link-cable registers as a
// logging sink: no real link partner exists, so a transfer always yields
// 0xFF on SB after the fixed ~4096 T-state transfer time elapses, and the
// outgoing byte stream is logged for the common test-ROM convention of
// reporting results over the serial port.
package serial

import (
	"log/slog"

	"github.com/corvidae/dmgboy/dmgboy/addr"
	"github.com/corvidae/dmgboy/dmgboy/bit"
)

// transferCycles is the fixed DMG internal-clock transfer time for one
// byte: roughly 4096 T-states (8 bits at the 8192 Hz internal clock).
const transferCycles = 4096

// Serial is a logging stand-in for the link-cable peripheral.
type Serial struct {
	sb, sc uint8

	active    bool
	countdown int

	logger           *slog.Logger
	line             []byte
	requestInterrupt func()
}

// New creates a Serial peripheral that invokes requestInterrupt when a
// transfer completes.
func New(requestInterrupt func()) *Serial {
	return &Serial{
		logger:           slog.Default(),
		requestInterrupt: requestInterrupt,
	}
}

// Step implements memory.Peripheral.
func (s *Serial) Step(tStates int) {
	if !s.active {
		return
	}
	s.countdown -= tStates
	if s.countdown <= 0 {
		s.countdown = 0
		s.complete()
	}
}

// Read implements memory.Peripheral.
func (s *Serial) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc | 0x7E
	default:
		return 0xFF
	}
}

// Write implements memory.Peripheral.
func (s *Serial) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStart()
	}
}

func (s *Serial) maybeStart() {
	if s.active {
		return
	}
	// Internal-clock transfer requires bit 7 (start) and bit 0 (clock
	// source = internal) both set; an external-clock transfer would wait
	// on a partner that never arrives here, so it is simply never started.
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	s.bufferOutgoingByte()
	s.active = true
	s.countdown = transferCycles
}

func (s *Serial) bufferOutgoingByte() {
	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial output", "line", string(s.line))
			s.line = s.line[:0]
		}
		return
	}
	s.line = append(s.line, b)
}

func (s *Serial) complete() {
	s.sb = 0xFF
	s.sc = bit.Reset(7, s.sc)
	s.active = false
	if s.requestInterrupt != nil {
		s.requestInterrupt()
	}
}
