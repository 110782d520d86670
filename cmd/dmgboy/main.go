// Command dmgboy runs the DMG core against a ROM image, either headless for
// a fixed number of frames or with a live terminal status view.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/corvidae/dmgboy/dmgboy"
	"github.com/corvidae/dmgboy/dmgboy/disasm"
	"github.com/corvidae/dmgboy/dmgboy/memory"
	"github.com/corvidae/dmgboy/dmgboy/render"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgboy"
	app.Description = "Sharp LR35902 core: CPU, memory map, timing, and interrupts"
	app.Usage = "run a Game Boy ROM against the dmgboy core"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to a .gb ROM image"},
		cli.BoolFlag{Name: "headless", Usage: "run without the terminal status view"},
		cli.BoolFlag{Name: "skip-boot", Usage: "skip the boot ROM and start at the cartridge entry point"},
		cli.StringFlag{Name: "boot-rom", Usage: "path to a 256-byte boot ROM dump to use instead of the built-in image"},
		cli.IntFlag{Name: "frames", Usage: "stop after N frames (0 = run until quit, headless and trace default 1)"},
		cli.BoolFlag{Name: "trace", Usage: "log a disassembly line for every executed instruction"},
	}
	app.Action = run
	app.Commands = []cli.Command{
		{
			Name:      "disasm",
			Usage:     "print a linear disassembly of N bytes from the ROM's entry point (0x0100)",
			ArgsUsage: "<rom>",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "bytes", Value: 256, Usage: "number of bytes to disassemble from the entry point"},
			},
			Action: runDisasm,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgboy exited with error", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		romPath = c.Args().Get(0)
	}

	var e *dmgboy.Emulator
	var err error
	if romPath != "" {
		e, err = dmgboy.NewWithFile(romPath)
		if err != nil {
			return fmt.Errorf("load rom %q: %w", romPath, err)
		}
	} else {
		slog.Warn("no --rom given, running with an empty cartridge")
		e = dmgboy.New()
	}

	if bootROMPath := c.String("boot-rom"); bootROMPath != "" {
		data, err := os.ReadFile(bootROMPath)
		if err != nil {
			return fmt.Errorf("read boot rom %q: %w", bootROMPath, err)
		}
		if err := e.SetBootROM(data); err != nil {
			return fmt.Errorf("load boot rom %q: %w", bootROMPath, err)
		}
	}

	if c.Bool("skip-boot") {
		e.SkipBootROM()
	}

	if c.Bool("trace") {
		return runTraced(e, c)
	}
	if c.Bool("headless") {
		return runHeadless(e, c)
	}
	return runInteractive(e, c)
}

func runDisasm(c *cli.Context) error {
	romPath := c.Args().Get(0)
	if romPath == "" {
		return fmt.Errorf("disasm: a rom path is required")
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("disasm: read rom: %w", err)
	}

	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return fmt.Errorf("disasm: load rom: %w", err)
	}
	e := dmgboy.NewWithCartridge(cart)
	e.SkipBootROM()

	budget := c.Int("bytes")
	if budget <= 0 {
		budget = 256
	}

	pc := uint16(0x0100)
	for emitted := 0; emitted < budget; {
		line := disasm.At(pc, e.MMU())
		fmt.Printf("0x%04X: %s\n", line.Address, line.Text)
		emitted += line.Length
		pc += uint16(line.Length)
	}
	return nil
}

func runTraced(e *dmgboy.Emulator, c *cli.Context) error {
	frames := c.Int("frames")
	if frames <= 0 {
		frames = 1
	}
	for f := 0; f < frames; f++ {
		target := uint64(f+1) * 70224
		for e.CPU().Cycles() < target {
			pc := e.Snapshot().PC
			line := disasm.At(pc, e.MMU())
			slog.Info("trace", "pc", fmt.Sprintf("0x%04X", pc), "instr", line.Text)
			e.Step()
		}
	}
	return nil
}

func runHeadless(e *dmgboy.Emulator, c *cli.Context) error {
	frames := c.Int("frames")
	if frames <= 0 {
		frames = 1
	}
	for f := 0; f < frames; f++ {
		e.RunFrame()
	}
	slog.Info("run complete", "frames", e.FrameCount(), "instructions", e.InstructionCount(), "cycles", e.CPU().Cycles())
	return nil
}

func runInteractive(e *dmgboy.Emulator, c *cli.Context) error {
	view, err := render.NewStatusView()
	if err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer view.Close()

	frames := c.Int("frames")
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for frames <= 0 || int(e.FrameCount()) < frames {
		if view.PollQuit() {
			break
		}
		e.RunFrame()
		view.Draw(e)
		<-ticker.C
	}
	return nil
}
