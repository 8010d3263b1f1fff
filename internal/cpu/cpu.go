// Package cpu implements the CHIP-8 fetch-decode-execute engine.
package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/disasm"
	"gochip8/internal/memory"
)

// Machine constants
const (
	RegisterCount = 16
	StackSize     = 16
	// InstructionSize is the width of every instruction in bytes
	InstructionSize = 2
	// flagRegister is VF, the carry/borrow/collision flag
	flagRegister = 0xF
	// keyWaitLast is the last key scanned by the wait-for-key instruction
	keyWaitLast = 0xE
)

// MemoryInterface defines the interface for CPU memory access
type MemoryInterface interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
	ReadWord(address uint16) (uint16, error)
	CheckRange(op string, address uint16, length int) error
	Slice(address uint16, length int) ([]uint8, error)
}

// Display accepts sprite draws and clears
type Display interface {
	Clear()
	DrawSprite(x, y uint8, sprite []uint8) bool
}

// Keypad reports the state of the 16 hexadecimal keys
type Keypad interface {
	IsPressed(key uint8) bool
}

// RandomSource returns one random byte per call
type RandomSource func() uint8

// NewRandomSource returns a deterministic source for a non-zero seed and a
// randomly seeded one for zero.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		return func() uint8 { return uint8(rand.Uint32()) }
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	return func() uint8 { return uint8(rng.Uint32()) }
}

// Quirks selects behavior variants of individual instructions
type Quirks struct {
	// FixKeyWait makes the wait-for-key instruction scan key 0xF as well
	FixKeyWait bool
}

// CPU represents the CHIP-8 interpreter state
type CPU struct {
	// Registers
	V  [RegisterCount]uint8
	I  uint16
	PC uint16

	// Call stack
	Stack [StackSize]uint16
	SP    uint8

	// Timers, decremented once per frame
	DelayTimer uint8
	SoundTimer uint8

	memory  MemoryInterface
	display Display
	keypad  Keypad
	random  RandomSource
	quirks  Quirks

	// Executed instruction counter
	cycles uint64

	logger        *log.Logger
	enableTracing bool
}

// New creates a new CPU instance wired to its collaborators
func New(mem MemoryInterface, display Display, keypad Keypad) *CPU {
	cpu := &CPU{
		memory:  mem,
		display: display,
		keypad:  keypad,
		random:  NewRandomSource(0),
	}
	cpu.Reset()
	return cpu
}

// Reset clears registers, stack and timers and points PC at the program start
func (cpu *CPU) Reset() {
	cpu.V = [RegisterCount]uint8{}
	cpu.I = 0
	cpu.PC = memory.ProgramStart
	cpu.Stack = [StackSize]uint16{}
	cpu.SP = 0
	cpu.DelayTimer = 0
	cpu.SoundTimer = 0
	cpu.cycles = 0
}

// SetRandomSource replaces the generator used by RND
func (cpu *CPU) SetRandomSource(source RandomSource) {
	if source != nil {
		cpu.random = source
	}
}

// SetQuirks selects instruction behavior variants
func (cpu *CPU) SetQuirks(quirks Quirks) {
	cpu.quirks = quirks
}

// Quirks returns the active behavior variants
func (cpu *CPU) Quirks() Quirks {
	return cpu.quirks
}

// EnableTracing logs every executed instruction at debug level
func (cpu *CPU) EnableTracing(logger *log.Logger, enable bool) {
	cpu.logger = logger
	cpu.enableTracing = enable && logger != nil
}

// Cycles returns the number of instructions executed since the last reset
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// Fetch reads the instruction word at PC and advances PC past it
func (cpu *CPU) Fetch() (Opcode, error) {
	word, err := cpu.memory.ReadWord(cpu.PC)
	if err != nil {
		return 0, memoryFault(int(cpu.PC), err)
	}
	cpu.PC += InstructionSize
	return Opcode(word), nil
}

// Step fetches and executes a single instruction. A returned error is always
// a *Fault.
func (cpu *CPU) Step() error {
	pc := cpu.PC
	op, err := cpu.Fetch()
	if err != nil {
		var fault *Fault
		if errors.As(err, &fault) {
			fault.Fetch = true
		}
		return cpu.fault(err, pc, op)
	}

	if cpu.enableTracing {
		cpu.logger.Debug("Executing instruction",
			log.Hex("pc", pc),
			log.Stringer("opcode", op),
			log.String("asm", disasm.Format(uint16(op))),
			log.Hex("i", cpu.I),
			log.Uint8("sp", cpu.SP))
	}

	if err := cpu.execute(op); err != nil {
		return cpu.fault(err, pc, op)
	}
	cpu.cycles++
	return nil
}

// Execute runs one already decoded instruction against the machine state
func (cpu *CPU) Execute(op Opcode) error {
	return cpu.execute(op)
}

// TickTimers decrements both timers, stopping at zero
func (cpu *CPU) TickTimers() {
	if cpu.DelayTimer > 0 {
		cpu.DelayTimer--
	}
	if cpu.SoundTimer > 0 {
		cpu.SoundTimer--
	}
}

// SoundActive reports whether the buzzer should currently sound
func (cpu *CPU) SoundActive() bool {
	return cpu.SoundTimer > 0
}

func (cpu *CPU) fault(err error, pc uint16, op Opcode) error {
	var fault *Fault
	if !errors.As(err, &fault) {
		return fmt.Errorf("unexpected execution error at PC=0x%03X: %w", pc, err)
	}
	fault.PC = pc
	fault.Opcode = op
	if cpu.logger != nil {
		cpu.logger.Debug("CPU fault",
			log.String("kind", fault.Kind.String()),
			log.Hex("pc", pc),
			log.Stringer("opcode", op),
			log.Int("address", fault.Address))
	}
	return fault
}

func (cpu *CPU) push(value uint16) error {
	if int(cpu.SP) >= StackSize {
		return &Fault{Kind: StackOverflow, Address: int(cpu.SP)}
	}
	cpu.Stack[cpu.SP] = value
	cpu.SP++
	return nil
}

func (cpu *CPU) pop() (uint16, error) {
	if cpu.SP == 0 {
		return 0, &Fault{Kind: StackUnderflow, Address: 0}
	}
	cpu.SP--
	return cpu.Stack[cpu.SP], nil
}

// State is a serializable snapshot of the CPU registers
type State struct {
	V          [RegisterCount]uint8 `json:"v"`
	I          uint16               `json:"i"`
	PC         uint16               `json:"pc"`
	Stack      [StackSize]uint16    `json:"stack"`
	SP         uint8                `json:"sp"`
	DelayTimer uint8                `json:"delay_timer"`
	SoundTimer uint8                `json:"sound_timer"`
	Cycles     uint64               `json:"cycles"`
}

// State captures the current register state
func (cpu *CPU) State() State {
	return State{
		V:          cpu.V,
		I:          cpu.I,
		PC:         cpu.PC,
		Stack:      cpu.Stack,
		SP:         cpu.SP,
		DelayTimer: cpu.DelayTimer,
		SoundTimer: cpu.SoundTimer,
		Cycles:     cpu.cycles,
	}
}

// Restore loads a previously captured register state
func (cpu *CPU) Restore(state State) error {
	if int(state.SP) > StackSize {
		return fmt.Errorf("invalid stack pointer %d in saved state", state.SP)
	}
	if int(state.PC) >= memory.Size {
		return fmt.Errorf("invalid program counter 0x%04X in saved state", state.PC)
	}
	cpu.V = state.V
	cpu.I = state.I
	cpu.PC = state.PC
	cpu.Stack = state.Stack
	cpu.SP = state.SP
	cpu.DelayTimer = state.DelayTimer
	cpu.SoundTimer = state.SoundTimer
	cpu.cycles = state.Cycles
	return nil
}
