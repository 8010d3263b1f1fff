package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/display"
	"gochip8/internal/memory"
)

// MockKeypad implements Keypad for testing
type MockKeypad struct {
	pressed [16]bool
	queries int
}

// IsPressed implements the Keypad interface
func (k *MockKeypad) IsPressed(key uint8) bool {
	k.queries++
	if key >= 16 {
		return false
	}
	return k.pressed[key]
}

// Press marks a key as held down
func (k *MockKeypad) Press(key uint8) {
	k.pressed[key] = true
}

// CPUTestHelper provides common test utilities
type CPUTestHelper struct {
	CPU     *CPU
	Memory  *memory.Memory
	Display *display.FrameBuffer
	Keypad  *MockKeypad
}

// NewCPUTestHelper creates a new test helper with a fixed random source
func NewCPUTestHelper() *CPUTestHelper {
	mem := memory.New()
	fb := display.New()
	keypad := &MockKeypad{}
	cpu := New(mem, fb, keypad)
	cpu.SetRandomSource(func() uint8 { return 0xFF })
	return &CPUTestHelper{
		CPU:     cpu,
		Memory:  mem,
		Display: fb,
		Keypad:  keypad,
	}
}

// LoadProgram places instruction words at the program start
func (h *CPUTestHelper) LoadProgram(t *testing.T, words ...uint16) {
	t.Helper()
	data := make([]uint8, 0, len(words)*2)
	for _, word := range words {
		data = append(data, uint8(word>>8), uint8(word))
	}
	assert.NoError(t, h.Memory.LoadProgram(data))
}

// Run executes count instructions, failing the test on any fault
func (h *CPUTestHelper) Run(t *testing.T, count int) {
	t.Helper()
	for range count {
		assert.NoError(t, h.CPU.Step())
	}
}

// Exec loads and executes a single instruction
func (h *CPUTestHelper) Exec(t *testing.T, word uint16) {
	t.Helper()
	h.LoadProgram(t, word)
	h.Run(t, 1)
}

func TestNew_InitialState(t *testing.T) {
	helper := NewCPUTestHelper()
	cpu := helper.CPU

	assert.Equal(t, uint16(0x200), cpu.PC)
	assert.Equal(t, uint16(0), cpu.I)
	assert.Equal(t, uint8(0), cpu.SP)
	assert.Equal(t, [RegisterCount]uint8{}, cpu.V)
	assert.Equal(t, uint64(0), cpu.Cycles())
	assert.False(t, cpu.SoundActive())
}

func TestReset(t *testing.T) {
	helper := NewCPUTestHelper()
	cpu := helper.CPU
	cpu.V[3] = 7
	cpu.I = 0x300
	cpu.PC = 0x400
	cpu.SP = 2
	cpu.DelayTimer = 9
	cpu.SoundTimer = 9

	cpu.Reset()

	assert.Equal(t, uint16(0x200), cpu.PC)
	assert.Equal(t, uint8(0), cpu.V[3])
	assert.Equal(t, uint16(0), cpu.I)
	assert.Equal(t, uint8(0), cpu.SP)
	assert.Equal(t, uint8(0), cpu.DelayTimer)
	assert.Equal(t, uint8(0), cpu.SoundTimer)
}

func TestFetch_AdvancesPC(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(t, 0xD123, 0x00E0)

	op, err := helper.CPU.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, Opcode(0xD123), op)
	assert.Equal(t, uint16(0x202), helper.CPU.PC)

	op, err = helper.CPU.Fetch()
	assert.NoError(t, err)
	assert.Equal(t, Opcode(0x00E0), op)
	assert.Equal(t, uint16(0x204), helper.CPU.PC)
}

func TestStep_EmptyMemoryAdvancesHarmlessly(t *testing.T) {
	helper := NewCPUTestHelper()

	helper.Run(t, 10)

	assert.Equal(t, uint16(0x200+20), helper.CPU.PC)
	assert.Equal(t, [RegisterCount]uint8{}, helper.CPU.V)
	assert.Equal(t, uint64(10), helper.CPU.Cycles())
}

func TestTickTimers_FloorAtZero(t *testing.T) {
	helper := NewCPUTestHelper()
	cpu := helper.CPU
	cpu.DelayTimer = 1
	cpu.SoundTimer = 3

	cpu.TickTimers()
	assert.Equal(t, uint8(0), cpu.DelayTimer)
	assert.Equal(t, uint8(2), cpu.SoundTimer)
	assert.True(t, cpu.SoundActive())

	for range 5 {
		cpu.TickTimers()
	}
	assert.Equal(t, uint8(0), cpu.DelayTimer)
	assert.Equal(t, uint8(0), cpu.SoundTimer)
	assert.False(t, cpu.SoundActive())
}

func TestStateRestore(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(t, 0x6A42, 0x2300)
	helper.Run(t, 2)
	helper.CPU.DelayTimer = 5

	state := helper.CPU.State()
	assert.Equal(t, uint8(0x42), state.V[0xA])
	assert.Equal(t, uint8(1), state.SP)
	assert.Equal(t, uint16(0x204), state.Stack[0])
	assert.Equal(t, uint64(2), state.Cycles)

	other := NewCPUTestHelper()
	assert.NoError(t, other.CPU.Restore(state))
	assert.Equal(t, state, other.CPU.State())
	assert.Equal(t, uint16(0x300), other.CPU.PC)

	state.SP = StackSize + 1
	assert.Error(t, other.CPU.Restore(state))
}

func TestNewRandomSource_SeededIsDeterministic(t *testing.T) {
	a := NewRandomSource(42)
	b := NewRandomSource(42)
	for range 32 {
		assert.Equal(t, a(), b())
	}
}

func TestEnableTracing(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.EnableTracing(log.NewTestLogger(t), true)
	helper.LoadProgram(t, 0x6005, 0x7001)

	helper.Run(t, 2)
	assert.Equal(t, uint8(6), helper.CPU.V[0])
}

func TestFault_ErrorsIs(t *testing.T) {
	fault := &Fault{Kind: StackUnderflow, PC: 0x200, Opcode: 0x00EE}

	assert.True(t, errors.Is(fault, ErrStackUnderflow))
	assert.False(t, errors.Is(fault, ErrStackOverflow))
	assert.False(t, errors.Is(fault, ErrMemoryAccess))
	assert.Equal(t, "StackUnderflow", fault.Kind.String())
	assert.True(t, strings.Contains(fault.Error(), "PC=0x200"))
}
