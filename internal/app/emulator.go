package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/cpu"
	"gochip8/internal/display"
	"gochip8/internal/input"
	"gochip8/internal/memory"
	"gochip8/internal/rom"
)

// Emulator owns the machine and runs it one frame at a time: a fixed number
// of instructions, one timer tick, then a frame export if the display changed.
type Emulator struct {
	config *Config
	logger *log.Logger

	memory  *memory.Memory
	display *display.FrameBuffer
	keypad  *input.Keypad
	cpu     *cpu.CPU
	rom     *rom.ROM

	frame        display.Frame
	frameUpdated bool

	cyclesPerFrame  int
	targetFrameTime time.Duration

	frameCount    uint64
	isRunning     bool
	halted        bool
	fault         error
	lastResetTime time.Time
}

// NewEmulator creates an emulator with an empty ROM loaded
func NewEmulator(config *Config, logger *log.Logger) *Emulator {
	mem := memory.New()
	fb := display.New()
	keypad := input.New()

	e := &Emulator{
		config:  config,
		logger:  logger,
		memory:  mem,
		display: fb,
		keypad:  keypad,
		cpu:     cpu.New(mem, fb, keypad),
		rom:     rom.Empty(),
	}
	e.applyConfig()
	_ = e.Reset()
	return e
}

// applyConfig pushes emulation and debug settings into the machine
func (e *Emulator) applyConfig() {
	e.cyclesPerFrame = e.config.Emulation.CyclesPerFrame
	if e.cyclesPerFrame <= 0 {
		e.cyclesPerFrame = DefaultCyclesPerFrame
	}
	e.SetTargetFrameRate(e.config.Emulation.FrameRate)

	e.cpu.SetQuirks(cpu.Quirks{FixKeyWait: e.config.Emulation.FixKeyWait})
	e.cpu.SetRandomSource(cpu.NewRandomSource(e.config.Emulation.RandomSeed))
	e.cpu.EnableTracing(e.logger, e.config.Debug.CPUTracing)
	e.keypad.EnableDebug(e.logger, e.config.Debug.LogLevel == "debug")
}

// LoadROMFile loads a ROM from disk and resets the machine. If the file
// cannot be used the machine is reset with an empty ROM and the error is
// returned.
func (e *Emulator) LoadROMFile(path string) error {
	image, err := rom.LoadFromFile(path)
	if err != nil {
		e.logger.Warn("Could not load ROM, running empty program",
			log.String("path", path), log.Err(err))
		_ = e.LoadROM(rom.Empty())
		return err
	}
	return e.LoadROM(image)
}

// LoadROM installs image as the current program and resets the machine
func (e *Emulator) LoadROM(image *rom.ROM) error {
	e.rom = image
	if err := e.Reset(); err != nil {
		e.rom = rom.Empty()
		_ = e.Reset()
		return err
	}

	e.logger.Info("ROM loaded",
		log.String("name", image.Name()),
		log.Int("size", image.Size()),
		log.String("sha256", image.Checksum()))
	return nil
}

// Reset reinitialises the machine and reloads the current ROM
func (e *Emulator) Reset() error {
	e.memory.Reset()
	e.display.Clear()
	e.keypad.Reset()
	e.cpu.Reset()

	e.frame = display.Frame{}
	e.frameUpdated = false
	e.frameCount = 0
	e.halted = false
	e.fault = nil
	e.lastResetTime = time.Now()

	if err := e.rom.LoadInto(e.memory); err != nil {
		return fmt.Errorf("loading ROM %s: %w", e.rom.Name(), err)
	}
	return nil
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// Update runs one frame while the emulator is running and not halted.
// Faults are logged and, with halt_on_fault, stop further execution; they
// are not returned.
func (e *Emulator) Update() error {
	if !e.isRunning || e.halted {
		return nil
	}
	if err := e.RunFrame(); err != nil {
		e.handleFault(err)
	}
	return nil
}

// RunFrame executes one frame: cycles_per_frame instructions, one timer
// tick and a frame export when the display needs a redraw. An instruction
// error ends the frame early and is returned.
func (e *Emulator) RunFrame() error {
	e.frameUpdated = false

	for range e.cyclesPerFrame {
		if err := e.cpu.Step(); err != nil {
			if !e.config.Emulation.HaltOnFault && !cpu.IsFetchFault(err) {
				e.logger.Warn("Instruction fault ignored", log.Err(err))
				continue
			}
			return err
		}
	}

	e.cpu.TickTimers()
	e.frameCount++

	if e.display.ExportFrame(&e.frame) {
		e.frameUpdated = true
	}
	return nil
}

// StepInstruction executes exactly one instruction without ticking timers
func (e *Emulator) StepInstruction() error {
	if e.halted {
		return e.fault
	}
	if err := e.cpu.Step(); err != nil {
		e.handleFault(err)
		return err
	}
	if e.display.ExportFrame(&e.frame) {
		e.frameUpdated = true
	}
	return nil
}

// handleFault records a fault and halts the machine
func (e *Emulator) handleFault(err error) {
	e.halted = true
	e.fault = err

	var fault *cpu.Fault
	if errors.As(err, &fault) {
		e.logger.Warn("Machine halted",
			log.Stringer("fault", fault.Kind),
			log.Hex("pc", fault.PC),
			log.Int("address", fault.Address))
		return
	}
	e.logger.Warn("Machine halted", log.Err(err))
}

// SetKey updates a keypad key
func (e *Emulator) SetKey(key uint8, pressed bool) {
	e.keypad.SetKey(key, pressed)
}

// Frame returns the last exported frame
func (e *Emulator) Frame() *display.Frame {
	return &e.frame
}

// FrameUpdated returns true if the last frame or step changed the display
func (e *Emulator) FrameUpdated() bool {
	return e.frameUpdated
}

// SoundActive reports whether the sound timer is running
func (e *Emulator) SoundActive() bool {
	return e.cpu.SoundActive()
}

// Halted returns true after a fault stopped execution
func (e *Emulator) Halted() bool {
	return e.halted
}

// Fault returns the fault that halted the machine
func (e *Emulator) Fault() error {
	return e.fault
}

// CPU returns the interpreter
func (e *Emulator) CPU() *cpu.CPU {
	return e.cpu
}

// Memory returns the machine RAM
func (e *Emulator) Memory() *memory.Memory {
	return e.memory
}

// Display returns the frame buffer
func (e *Emulator) Display() *display.FrameBuffer {
	return e.display
}

// ROM returns the loaded program image
func (e *Emulator) ROM() *rom.ROM {
	return e.rom
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// GetFrameCount returns the number of frames run since the last reset
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetCycleCount returns the number of instructions executed since the last reset
func (e *Emulator) GetCycleCount() uint64 {
	return e.cpu.Cycles()
}

// GetUptime returns time since the last reset
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.lastResetTime)
}

// GetTargetFrameTime returns the wall-clock duration of one frame
func (e *Emulator) GetTargetFrameTime() time.Duration {
	return e.targetFrameTime
}

// SetTargetFrameRate sets the frame rate used for pacing
func (e *Emulator) SetTargetFrameRate(fps int) {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	e.targetFrameTime = time.Second / time.Duration(fps)
}

// SetCyclesPerFrame sets how many instructions run per frame
func (e *Emulator) SetCyclesPerFrame(cycles int) {
	if cycles > 0 {
		e.cyclesPerFrame = cycles
	}
}

// Cleanup releases emulator resources
func (e *Emulator) Cleanup() error {
	e.Stop()
	return nil
}
