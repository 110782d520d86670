// Package render provides a trimmed tcell terminal status view: CPU
// registers, flags, interrupt state, and cycle/frame counters. Unlike the
// teacher's terminal backend this core has no framebuffer to present (PPU
// pixel output is out of scope), so the view is register/debug-only.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/corvidae/dmgboy/dmgboy"
	"github.com/corvidae/dmgboy/dmgboy/disasm"
)

// StatusView renders an Emulator's Snapshot plus a short disassembly
// window starting at PC to a tcell screen.
type StatusView struct {
	screen tcell.Screen
}

// NewStatusView initializes a tcell screen for the status view.
func NewStatusView() (*StatusView, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("render: init terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("render: init terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	return &StatusView{screen: screen}, nil
}

// Close releases the terminal.
func (v *StatusView) Close() { v.screen.Fini() }

// PollQuit reports whether the user asked to quit (Escape or Ctrl-C),
// draining any other pending events.
func (v *StatusView) PollQuit() bool {
	quit := false
	for v.screen.HasPendingEvent() {
		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				quit = true
			}
		case *tcell.EventResize:
			v.screen.Sync()
		}
	}
	return quit
}

// Draw renders one frame of the status view.
func (v *StatusView) Draw(e *dmgboy.Emulator) {
	v.screen.Clear()
	snap := e.Snapshot()

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	v.writeLine(0, 0, " dmgboy ", headerStyle)

	lines := []string{
		fmt.Sprintf("A: 0x%02X  F: 0x%02X (%s)", snap.A, snap.F, flagString(snap.F)),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", snap.B, snap.C),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", snap.D, snap.E),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", snap.H, snap.L),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", snap.SP, snap.PC),
		fmt.Sprintf("IME: %-3s  IE: 0x%02X  IF: 0x%02X", onOff(snap.IME), snap.IE, snap.IF),
		fmt.Sprintf("Halted: %-3s  Stopped: %-3s", onOff(snap.Halted), onOff(snap.Stopped)),
		fmt.Sprintf("Cycles: %d", snap.Cycles),
		fmt.Sprintf("Instructions: %d  Frames: %d", e.InstructionCount(), e.FrameCount()),
	}
	for i, line := range lines {
		v.writeLine(0, 2+i, line, style)
	}

	disasmStyle := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	pc := snap.PC
	for i := 0; i < 8; i++ {
		line := disasm.At(pc, e.MMU())
		text := fmt.Sprintf("0x%04X: %s", line.Address, line.Text)
		st := disasmStyle
		if i == 0 {
			st = currentStyle
		}
		v.writeLine(0, 2+len(lines)+1+i, text, st)
		pc += uint16(line.Length)
	}

	v.screen.Show()
}

func (v *StatusView) writeLine(x, y int, text string, style tcell.Style) {
	for i, ch := range text {
		v.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func flagString(f uint8) string {
	flags := []struct {
		bit  uint8
		name string
	}{
		{0x80, "Z"}, {0x40, "N"}, {0x20, "H"}, {0x10, "C"},
	}
	out := ""
	for _, flag := range flags {
		if f&flag.bit != 0 {
			out += flag.name
		} else {
			out += "-"
		}
	}
	return out
}
