package cpu

import "fmt"

// Opcode is a single 16-bit instruction word
type Opcode uint16

// MSB returns the instruction class (high nibble, in place)
func (op Opcode) MSB() uint16 { return uint16(op) & 0xF000 }

// NNN returns the 12-bit address or immediate
func (op Opcode) NNN() uint16 { return uint16(op) & 0x0FFF }

// N returns the low nibble
func (op Opcode) N() uint8 { return uint8(op & 0x000F) }

// X returns the first register index
func (op Opcode) X() uint8 { return uint8((op & 0x0F00) >> 8) }

// Y returns the second register index
func (op Opcode) Y() uint8 { return uint8((op & 0x00F0) >> 4) }

// KK returns the low byte
func (op Opcode) KK() uint8 { return uint8(op & 0x00FF) }

func (op Opcode) String() string {
	return fmt.Sprintf("%04X", uint16(op))
}
