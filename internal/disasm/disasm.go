// Package disasm turns CHIP-8 instruction words into assembly text.
// Instruction recognition and mnemonics come from the retrogolib CHIP-8
// opcode table; operand formatting follows the usual Cowgod syntax.
package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Line is one decoded instruction of a listing
type Line struct {
	Address uint16
	Opcode  uint16
	Text    string
}

func (l Line) String() string {
	return fmt.Sprintf("0x%03X: %04X  %s", l.Address, l.Opcode, l.Text)
}

// Lookup finds the table entry matching an instruction word
func Lookup(word uint16) (chip8.Opcode, bool) {
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Info.Mask&word == op.Info.Value && op.Instruction != nil {
			return op, true
		}
	}
	return chip8.Opcode{}, false
}

// Mnemonic returns the instruction name of a word, or "" if it is not a
// known instruction.
func Mnemonic(word uint16) string {
	if op, ok := Lookup(word); ok {
		return op.Instruction.Name
	}
	name, _ := operands(word)
	return name
}

// Format returns the full assembly text for a word. Unknown words are
// rendered as a data directive.
func Format(word uint16) string {
	fallback, params := operands(word)
	name := fallback
	if op, ok := Lookup(word); ok {
		name = op.Instruction.Name
	}
	if name == "" {
		return fmt.Sprintf(".word $%04X", word)
	}
	if params == "" {
		return name
	}
	return name + " " + params
}

// Listing decodes data as consecutive 2-byte instructions starting at base.
// A trailing odd byte is emitted as a byte directive.
func Listing(data []uint8, base uint16) []Line {
	lines := make([]Line, 0, len(data)/2+1)
	for i := 0; i+1 < len(data); i += 2 {
		word := uint16(data[i])<<8 | uint16(data[i+1])
		lines = append(lines, Line{
			Address: base + uint16(i),
			Opcode:  word,
			Text:    Format(word),
		})
	}
	if len(data)%2 == 1 {
		last := len(data) - 1
		lines = append(lines, Line{
			Address: base + uint16(last),
			Opcode:  uint16(data[last]),
			Text:    fmt.Sprintf(".byte $%02X", data[last]),
		})
	}
	return lines
}

// Render joins a listing into printable text
func Render(lines []Line) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// operands returns a fallback mnemonic and the operand text of a word
func operands(word uint16) (string, string) {
	x := (word & 0x0F00) >> 8
	y := (word & 0x00F0) >> 4
	n := word & 0x000F
	kk := word & 0x00FF
	nnn := word & 0x0FFF

	vx := fmt.Sprintf("V%X", x)
	vy := fmt.Sprintf("V%X", y)
	addr := fmt.Sprintf("$%03X", nnn)
	imm := fmt.Sprintf("$%02X", kk)

	switch word & 0xF000 {
	case 0x0000:
		switch nnn {
		case 0x0E0:
			return "cls", ""
		case 0x0EE:
			return "ret", ""
		}
		return "sys", addr
	case 0x1000:
		return "jp", addr
	case 0x2000:
		return "call", addr
	case 0x3000:
		return "se", vx + ", " + imm
	case 0x4000:
		return "sne", vx + ", " + imm
	case 0x5000:
		return "se", vx + ", " + vy
	case 0x6000:
		return "ld", vx + ", " + imm
	case 0x7000:
		return "add", vx + ", " + imm
	case 0x8000:
		names := map[uint16]string{
			0x0: "ld", 0x1: "or", 0x2: "and", 0x3: "xor", 0x4: "add",
			0x5: "sub", 0x6: "shr", 0x7: "subn", 0xE: "shl",
		}
		if name, ok := names[n]; ok {
			return name, vx + ", " + vy
		}
	case 0x9000:
		return "sne", vx + ", " + vy
	case 0xA000:
		return "ld", "I, " + addr
	case 0xB000:
		return "jp", "V0, " + addr
	case 0xC000:
		return "rnd", vx + ", " + imm
	case 0xD000:
		return "drw", fmt.Sprintf("%s, %s, $%X", vx, vy, n)
	case 0xE000:
		switch kk {
		case 0x9E:
			return "skp", vx
		case 0xA1:
			return "sknp", vx
		}
	case 0xF000:
		switch kk {
		case 0x07:
			return "ld", vx + ", DT"
		case 0x0A:
			return "ld", vx + ", K"
		case 0x15:
			return "ld", "DT, " + vx
		case 0x18:
			return "ld", "ST, " + vx
		case 0x1E:
			return "add", "I, " + vx
		case 0x29:
			return "ld", "F, " + vx
		case 0x33:
			return "ld", "B, " + vx
		case 0x55:
			return "ld", "[I], " + vx
		case 0x65:
			return "ld", vx + ", [I]"
		}
	}
	return "", ""
}
