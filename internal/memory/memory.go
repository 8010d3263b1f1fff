// Package memory implements the 4KB address space of the CHIP-8 machine.
package memory

import (
	"errors"
	"fmt"
)

// Memory map constants
const (
	// Size is the total addressable space in bytes
	Size = 0x1000
	// FontStart is where the built-in hexadecimal glyphs live
	FontStart = 0x000
	// GlyphSize is the number of bytes per font glyph
	GlyphSize = 5
	// ProgramStart is where ROM content is placed and execution begins
	ProgramStart = 0x200
	// MaxProgramSize is the largest ROM that fits above ProgramStart
	MaxProgramSize = Size - ProgramStart
)

// fontSet holds the 16 glyphs 0-F, 5 bytes each.
var fontSet = [16 * GlyphSize]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// ErrOutOfBounds is matched by every AccessError
var ErrOutOfBounds = errors.New("memory access out of bounds")

// AccessError describes a read or write outside the 4KB address space
type AccessError struct {
	Op      string // "read" or "write"
	Address int
	Length  int
}

func (e *AccessError) Error() string {
	if e.Length > 1 {
		return fmt.Sprintf("memory %s of %d bytes at 0x%04X out of bounds", e.Op, e.Length, e.Address)
	}
	return fmt.Sprintf("memory %s at 0x%04X out of bounds", e.Op, e.Address)
}

// Is reports whether target is ErrOutOfBounds
func (e *AccessError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// Memory represents the CHIP-8 RAM
type Memory struct {
	ram [Size]uint8
}

// New creates a Memory with the font installed
func New() *Memory {
	mem := &Memory{}
	mem.Reset()
	return mem
}

// Reset zeroes RAM and reinstalls the font
func (m *Memory) Reset() {
	m.ram = [Size]uint8{}
	copy(m.ram[FontStart:], fontSet[:])
}

// Read returns the byte at address
func (m *Memory) Read(address uint16) (uint8, error) {
	if int(address) >= Size {
		return 0, &AccessError{Op: "read", Address: int(address), Length: 1}
	}
	return m.ram[address], nil
}

// Write stores value at address
func (m *Memory) Write(address uint16, value uint8) error {
	if int(address) >= Size {
		return &AccessError{Op: "write", Address: int(address), Length: 1}
	}
	m.ram[address] = value
	return nil
}

// ReadWord reads a big-endian 16-bit word at address and address+1
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if int(address)+1 >= Size {
		return 0, &AccessError{Op: "read", Address: int(address), Length: 2}
	}
	return uint16(m.ram[address])<<8 | uint16(m.ram[address+1]), nil
}

// CheckRange verifies that length bytes starting at address are addressable
func (m *Memory) CheckRange(op string, address uint16, length int) error {
	if length <= 0 {
		return nil
	}
	if int(address)+length > Size {
		return &AccessError{Op: op, Address: int(address), Length: length}
	}
	return nil
}

// Slice returns a copy of length bytes starting at address. A zero length
// yields an empty slice for any address.
func (m *Memory) Slice(address uint16, length int) ([]uint8, error) {
	if length <= 0 {
		return []uint8{}, nil
	}
	if err := m.CheckRange("read", address, length); err != nil {
		return nil, err
	}
	out := make([]uint8, length)
	copy(out, m.ram[int(address):int(address)+length])
	return out, nil
}

// Load copies data verbatim into RAM starting at offset
func (m *Memory) Load(offset uint16, data []uint8) error {
	if len(data) == 0 {
		return nil
	}
	if err := m.CheckRange("write", offset, len(data)); err != nil {
		return err
	}
	copy(m.ram[offset:], data)
	return nil
}

// LoadProgram places a ROM image at ProgramStart. An empty image is a no-op.
func (m *Memory) LoadProgram(data []uint8) error {
	if len(data) == 0 {
		return nil
	}
	if len(data) > MaxProgramSize {
		return fmt.Errorf("program of %d bytes exceeds %d byte limit: %w", len(data), MaxProgramSize, ErrOutOfBounds)
	}
	return m.Load(ProgramStart, data)
}

// Dump returns a copy of the whole address space
func (m *Memory) Dump() []uint8 {
	out := make([]uint8, Size)
	copy(out, m.ram[:])
	return out
}

// Restore overwrites the whole address space from a dump
func (m *Memory) Restore(data []uint8) error {
	if len(data) != Size {
		return fmt.Errorf("memory image is %d bytes, expected %d", len(data), Size)
	}
	copy(m.ram[:], data)
	return nil
}

// GlyphAddress returns the address of the font glyph for digit. Values above
// 0xF are not masked and point past the font.
func GlyphAddress(digit uint8) uint16 {
	return FontStart + uint16(digit)*GlyphSize
}
