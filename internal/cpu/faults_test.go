package cpu

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/internal/memory"
)

func requireFault(t *testing.T, err error, kind FaultKind) *Fault {
	t.Helper()
	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, kind, fault.Kind)
	return fault
}

func TestFault_StackUnderflow(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(t, 0x00EE)

	err := helper.CPU.Step()

	fault := requireFault(t, err, StackUnderflow)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.Equal(t, Opcode(0x00EE), fault.Opcode)
	assert.Equal(t, uint8(0), helper.CPU.SP)
	assert.Equal(t, uint16(0x202), helper.CPU.PC)
	assert.Equal(t, uint64(0), helper.CPU.Cycles())
	assert.False(t, fault.Fetch)
	assert.False(t, IsFetchFault(err))
}

func TestFault_StackOverflow(t *testing.T) {
	helper := NewCPUTestHelper()
	// calls itself forever
	helper.LoadProgram(t, 0x2200)

	helper.Run(t, StackSize)
	assert.Equal(t, uint8(StackSize), helper.CPU.SP)
	stack := helper.CPU.Stack

	err := helper.CPU.Step()

	fault := requireFault(t, err, StackOverflow)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, StackSize, fault.Address)
	assert.Equal(t, uint8(StackSize), helper.CPU.SP)
	assert.Equal(t, stack, helper.CPU.Stack)
}

func TestFault_FetchOutOfRange(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.PC = memory.Size - 1

	err := helper.CPU.Step()

	fault := requireFault(t, err, MemoryAccessFault)
	assert.True(t, errors.Is(err, ErrMemoryAccess))
	assert.True(t, errors.Is(err, memory.ErrOutOfBounds))
	assert.Equal(t, memory.Size-1, fault.Address)
	assert.Equal(t, uint16(memory.Size-1), helper.CPU.PC)
	assert.True(t, fault.Fetch)
	assert.True(t, IsFetchFault(err))
}

func TestFault_JumpPastEndFaultsOnNextFetch(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.V[0] = 0xFF
	helper.LoadProgram(t, 0xBFFF)

	helper.Run(t, 1)
	assert.Equal(t, uint16(0x10FE), helper.CPU.PC)

	requireFault(t, helper.CPU.Step(), MemoryAccessFault)
}

func TestFault_IndexRelativeAccess(t *testing.T) {
	tests := []struct {
		name  string
		word  uint16
		index uint16
	}{
		{"BCD straddles end", 0xF033, memory.Size - 2},
		{"store registers straddles end", 0xF355, memory.Size - 3},
		{"load registers past end", 0xF065, memory.Size},
		{"draw reads past end", 0xD125, memory.Size - 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper := NewCPUTestHelper()
			helper.CPU.I = tt.index
			helper.CPU.V = [RegisterCount]uint8{0xAA, 0xBB, 0xCC, 0xDD}
			helper.CPU.V[0xF] = 0x77
			helper.LoadProgram(t, tt.word)
			before := helper.Memory.Dump()

			err := helper.CPU.Step()

			fault := requireFault(t, err, MemoryAccessFault)
			assert.Equal(t, int(tt.index), fault.Address)
			assert.Equal(t, tt.index, helper.CPU.I)
			assert.Equal(t, uint8(0x77), helper.CPU.V[0xF])
			assert.Equal(t, uint8(0xAA), helper.CPU.V[0])
			assert.True(t, string(before) == string(helper.Memory.Dump()))
			assert.False(t, helper.Display.NeedsRedraw())
		})
	}
}

func TestDraw_ClippedRowsAreNotRead(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.I = memory.Size - 2
	helper.CPU.V[1] = 0
	helper.CPU.V[2] = 30

	// only rows 30 and 31 are visible, both inside memory
	assert.NoError(t, helper.CPU.Execute(0xD12F))
}

func TestDraw_ZeroHeightWithIndexPastEnd(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.CPU.I = 0x0FFF
	helper.CPU.V[1] = 0x10
	helper.CPU.V[0xF] = 0x77
	helper.LoadProgram(t,
		0xF11E, // ADD I, V1
		0xD010, // DRW V0, V1, 0
	)

	helper.Run(t, 2)

	assert.Equal(t, uint16(0x100F), helper.CPU.I)
	assert.Equal(t, uint8(0), helper.CPU.V[0xF])
	assert.Equal(t, uint16(0x204), helper.CPU.PC)
}
