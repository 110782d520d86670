package dmgboy

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/corvidae/dmgboy/dmgboy/addr"
	"github.com/corvidae/dmgboy/dmgboy/cpu"
	"github.com/corvidae/dmgboy/dmgboy/memory"
)

// cyclesPerFrame is the T-state budget of one 59.7 Hz DMG frame: 154 scan
// lines of 456 T-states each.
const cyclesPerFrame = 70224

// DebuggerState controls whether RunFrame executes freely, not at all, or
// one instruction/frame at a time.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
)

// Emulator is the root embeddable type: a CPU wired to a fully-populated
// memory map, plus the run-loop and debugger bookkeeping an embedder (CLI,
// debugger, test harness) needs on top of the raw instruction core.
type Emulator struct {
	cpu *cpu.CPU
	mem *memory.MMU

	mu               sync.RWMutex
	debuggerState    DebuggerState
	stepRequested    bool
	frameRequested   bool
	instructionCount uint64
	frameCount       uint64
}

func newEmulator() *Emulator {
	mem := newBus()
	return &Emulator{
		cpu: cpu.New(mem),
		mem: mem,
	}
}

// New creates an emulator with no cartridge inserted, ready to execute the
// boot ROM from PC=0.
func New() *Emulator {
	return newEmulator()
}

// NewWithFile reads a ROM image from path and attaches it.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rom: %w", err)
	}

	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, fmt.Errorf("load rom: %w", err)
	}

	e := newEmulator()
	e.mem.AttachCartridge(cart)
	slog.Debug("loaded cartridge", "title", cart.Title(), "mbc", cart.MBCType())
	return e, nil
}

// NewWithCartridge attaches an already-decoded cartridge (used by tests
// that construct ROM images in memory rather than from a file).
func NewWithCartridge(cart *memory.Cartridge) *Emulator {
	e := newEmulator()
	e.mem.AttachCartridge(cart)
	return e
}

// SkipBootROM disables the boot overlay and resets the CPU straight to the
// documented post-boot register state, for embedders that don't want to
// execute the 256-byte boot image.
func (e *Emulator) SkipBootROM() {
	e.mem.DisableBootROM()
	e.cpu.ResetPostBoot()
}

// SetBootROM overrides the built-in DMG boot image with a caller-supplied
// 256-byte dump, for embedders that want to run a different boot ROM.
func (e *Emulator) SetBootROM(data []byte) error {
	return e.mem.SetBootROM(data)
}

// Step executes exactly one CPU instruction (or interrupt dispatch, or
// halted tick).
func (e *Emulator) Step() {
	e.cpu.Step()
	e.instructionCount++
}

// RunFrame executes instructions until the cycle budget for one frame has
// elapsed, honoring the debugger state: paused does nothing, step-instruction
// executes exactly one instruction and re-pauses, step-frame executes one
// full frame and re-pauses, running executes continuously.
func (e *Emulator) RunFrame() {
	e.mu.RLock()
	state := e.debuggerState
	e.mu.RUnlock()

	switch state {
	case DebuggerPaused:
		return

	case DebuggerStepInstruction:
		e.mu.Lock()
		requested := e.stepRequested
		e.stepRequested = false
		e.mu.Unlock()
		if !requested {
			return
		}
		e.Step()
		e.SetDebuggerState(DebuggerPaused)
		return

	case DebuggerStepFrame:
		e.mu.Lock()
		requested := e.frameRequested
		e.frameRequested = false
		e.mu.Unlock()
		if !requested {
			return
		}
		e.runOneFrame()
		e.SetDebuggerState(DebuggerPaused)
		return

	default:
		e.runOneFrame()
	}
}

func (e *Emulator) runOneFrame() {
	start := e.cpu.Cycles()
	for e.cpu.Cycles()-start < cyclesPerFrame {
		e.Step()
	}
	e.frameCount++
}

func (e *Emulator) HandleKeyPress(key memory.JoypadKey)   { e.mem.HandleKeyPress(key) }
func (e *Emulator) HandleKeyRelease(key memory.JoypadKey) { e.mem.HandleKeyRelease(key) }

func (e *Emulator) CPU() *cpu.CPU     { return e.cpu }
func (e *Emulator) MMU() *memory.MMU  { return e.mem }

func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }
func (e *Emulator) FrameCount() uint64       { return e.frameCount }

func (e *Emulator) SetDebuggerState(state DebuggerState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debuggerState = state
}

func (e *Emulator) DebuggerState() DebuggerState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.debuggerState
}

func (e *Emulator) Pause()  { e.SetDebuggerState(DebuggerPaused) }
func (e *Emulator) Resume() { e.SetDebuggerState(DebuggerRunning) }

func (e *Emulator) RequestStepInstruction() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stepRequested = true
	e.debuggerState = DebuggerStepInstruction
}

func (e *Emulator) RequestStepFrame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameRequested = true
	e.debuggerState = DebuggerStepFrame
}

// Snapshot is a point-in-time, embedder-facing readout of the CPU state
// spec.md's external-interfaces section requires be observable without
// reaching into package-private fields.
type Snapshot struct {
	A, F, B, C, D, E, H, L uint8
	PC, SP                 uint16
	IME                    bool
	Halted, Stopped        bool
	Cycles                 uint64
	IE, IF                 uint8
}

func (e *Emulator) Snapshot() Snapshot {
	return Snapshot{
		A: e.cpu.A(), F: e.cpu.F(), B: e.cpu.B(), C: e.cpu.C(),
		D: e.cpu.D(), E: e.cpu.E(), H: e.cpu.H(), L: e.cpu.L(),
		PC: e.cpu.PC(), SP: e.cpu.SP(),
		IME:     e.cpu.IME(),
		Halted:  e.cpu.Halted(),
		Stopped: e.cpu.Stopped(),
		Cycles:  e.cpu.Cycles(),
		IE:      e.mem.Read(addr.IE),
		IF:      e.mem.Read(addr.IF),
	}
}

// Restore replays a previously captured Snapshot: register file, flags,
// IME, halt/stop state, and PC/SP via cpu.CPU.Restore, plus IE/IF via the
// normal memory-mapped write path. It does not restore Cycles (execution
// history, not architectural state) or cartridge/boot-overlay state.
func (e *Emulator) Restore(snap Snapshot) {
	e.cpu.Restore(
		snap.A, snap.F, snap.B, snap.C, snap.D, snap.E, snap.H, snap.L,
		snap.PC, snap.SP, snap.IME, snap.Halted, snap.Stopped,
	)
	e.mem.Write(addr.IE, snap.IE)
	e.mem.Write(addr.IF, snap.IF)
}
