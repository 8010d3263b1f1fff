// Package main implements the gochip8 CHIP-8 emulator executable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	retroapp "github.com/retroenv/retrogolib/app"

	"gochip8/internal/app"
	"gochip8/internal/disasm"
	"gochip8/internal/memory"
	"gochip8/internal/rom"
	"gochip8/internal/version"
)

type options struct {
	romFile    string
	configFile string
	backend    string
	debug      bool
	nogui      bool
	frames     int
	dumpEvery  int
	outputDir  string
	disasm     bool
	help       bool
	version    bool
}

func parseFlags(args []string, output io.Writer) (options, *flag.FlagSet, error) {
	var opts options
	flags := flag.NewFlagSet("gochip8", flag.ContinueOnError)
	flags.SetOutput(output)

	flags.StringVar(&opts.romFile, "rom", "", "Path to CHIP-8 ROM file")
	flags.StringVar(&opts.configFile, "config", "", "Path to configuration file")
	flags.StringVar(&opts.backend, "backend", "", "Graphics backend: ebitengine, terminal or headless")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&opts.nogui, "nogui", false, "Run without GUI (headless mode)")
	flags.IntVar(&opts.frames, "frames", 0, "Stop after this many frames (headless default 600)")
	flags.IntVar(&opts.dumpEvery, "dump", 0, "Headless: write every Nth frame as PNG")
	flags.StringVar(&opts.outputDir, "output", "frame_output", "Headless: frame dump directory")
	flags.BoolVar(&opts.disasm, "disasm", false, "Print a disassembly of the ROM and exit")
	flags.BoolVar(&opts.help, "help", false, "Show help message")
	flags.BoolVar(&opts.version, "version", false, "Show version information")

	if err := flags.Parse(args); err != nil {
		return opts, flags, err
	}
	if opts.romFile == "" && flags.NArg() > 0 {
		opts.romFile = flags.Arg(0)
	}
	return opts, flags, nil
}

func main() {
	ctx := retroapp.Context()

	opts, flags, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(os.Stdout, flags)
		return
	}
	if err != nil {
		os.Exit(2)
	}

	switch {
	case opts.help:
		printUsage(os.Stdout, flags)
		return
	case opts.version:
		version.PrintBuildInfo(os.Stdout)
		return
	case opts.disasm:
		if err := printDisassembly(os.Stdout, opts.romFile); err != nil {
			fmt.Fprintf(os.Stderr, "Disassembly failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "gochip8: %v\n", err)
		os.Exit(1)
	}
}

// run creates the application and drives it until it stops
func run(ctx context.Context, opts options) error {
	configPath := opts.configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	appOpts := app.Options{
		Headless:  opts.nogui,
		Backend:   opts.backend,
		MaxFrames: opts.frames,
		DumpEvery: opts.dumpEvery,
		OutputDir: opts.outputDir,
		Debug:     opts.debug,
	}
	if opts.nogui {
		if opts.romFile == "" {
			return fmt.Errorf("ROM file required for headless mode")
		}
		if appOpts.MaxFrames == 0 {
			appOpts.MaxFrames = 600
		}
	}

	application, err := app.NewApplication(configPath, appOpts)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Application cleanup error: %v\n", err)
		}
	}()

	if opts.romFile != "" {
		if err := application.LoadROM(opts.romFile); err != nil {
			return fmt.Errorf("failed to load ROM: %w", err)
		}
	}

	config := application.GetConfig()
	width, height := config.GetWindowResolution()
	fmt.Printf("gochip8 %s\n", version.GetVersion())
	fmt.Printf("   Window: %dx%d (scale %dx)\n", width, height, config.Window.Scale)
	fmt.Printf("   Speed:  %d instructions per frame at %d Hz\n",
		config.Emulation.CyclesPerFrame, config.Emulation.FrameRate)

	if err := application.Run(ctx); err != nil {
		return err
	}

	emulator := application.GetEmulator()
	fmt.Printf("Session: %d frames, %d instructions in %v\n",
		application.GetFrameCount(), emulator.GetCycleCount(), application.GetUptime().Round(time.Millisecond))
	if emulator.Halted() {
		fmt.Printf("Machine halted: %v\n", emulator.Fault())
	}
	return nil
}

// printDisassembly prints a listing of a ROM as loaded at the program start
func printDisassembly(w io.Writer, romFile string) error {
	if romFile == "" {
		return fmt.Errorf("no ROM file given")
	}
	image, err := rom.LoadFromFile(romFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "; %s, %d bytes, sha256 %s\n", image.Name(), image.Size(), image.Checksum())
	fmt.Fprint(w, disasm.Render(disasm.Listing(image.Data(), memory.ProgramStart)))
	return nil
}

func printUsage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "gochip8 - Go CHIP-8 Emulator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  gochip8 -rom <file> [options]          # Run a ROM in a window")
	fmt.Fprintln(w, "  gochip8 -backend terminal -rom <file>  # Run a ROM in the terminal")
	fmt.Fprintln(w, "  gochip8 -nogui -rom <file> -dump 60    # Run headless, dumping frames")
	fmt.Fprintln(w, "  gochip8 -disasm -rom <file>            # Print a disassembly")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	flags.SetOutput(w)
	flags.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "KEYPAD (default):")
	fmt.Fprintln(w, "  1 2 3 4        1 2 3 C")
	fmt.Fprintln(w, "  Q W E R   ->   4 5 6 D")
	fmt.Fprintln(w, "  A S D F        7 8 9 E")
	fmt.Fprintln(w, "  Z X C V        A 0 B F")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SPECIAL KEYS:")
	fmt.Fprintln(w, "  Escape     - Quit")
	fmt.Fprintln(w, "  P          - Pause / resume")
	fmt.Fprintln(w, "  F10        - Step one instruction while paused")
	fmt.Fprintln(w, "  Backspace  - Reset")
	fmt.Fprintln(w, "  F5 / F9    - Save / load state slot 0")
	fmt.Fprintln(w, "  F12        - Screenshot")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONFIGURATION:")
	fmt.Fprintf(w, "  Config file: %s\n", app.GetDefaultConfigPath())
	fmt.Fprintln(w, "  Save States: ./states/")
	fmt.Fprintln(w, "  Screenshots: ./screenshots/")
	fmt.Fprintln(w, "  Log levels:  debug, info, warn, error")
}
