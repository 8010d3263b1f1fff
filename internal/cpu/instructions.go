package cpu

import (
	"gochip8/internal/display"
	"gochip8/internal/memory"
)

// instruction executes one decoded opcode against the machine state
type instruction func(cpu *CPU, op Opcode) error

// classTable dispatches on the high nibble. Classes with several
// instructions dispatch a second time on their sub-selector.
var classTable = [16]instruction{
	0x0: execSystem,
	0x1: jp,
	0x2: call,
	0x3: seVxByte,
	0x4: sneVxByte,
	0x5: seVxVy,
	0x6: ldVxByte,
	0x7: addVxByte,
	0x8: execArithmetic,
	0x9: sneVxVy,
	0xA: ldI,
	0xB: jpV0,
	0xC: rnd,
	0xD: drw,
	0xE: execKey,
	0xF: execMisc,
}

// systemTable is keyed by nnn
var systemTable = map[uint16]instruction{
	0x0E0: cls,
	0x0EE: ret,
}

// arithmeticTable is keyed by n
var arithmeticTable = map[uint8]instruction{
	0x0: ldVxVy,
	0x1: orVxVy,
	0x2: andVxVy,
	0x3: xorVxVy,
	0x4: addVxVy,
	0x5: subVxVy,
	0x6: shrVxVy,
	0x7: subnVxVy,
	0xE: shlVxVy,
}

// keyTable is keyed by kk
var keyTable = map[uint8]instruction{
	0x9E: skp,
	0xA1: sknp,
}

// miscTable is keyed by kk
var miscTable = map[uint8]instruction{
	0x07: ldVxDT,
	0x0A: ldVxK,
	0x15: ldDTVx,
	0x18: ldSTVx,
	0x1E: addIVx,
	0x29: ldFVx,
	0x33: ldBVx,
	0x55: ldIVx,
	0x65: ldVxI,
}

func (cpu *CPU) execute(op Opcode) error {
	return classTable[op.MSB()>>12](cpu, op)
}

// Unknown sub-selectors leave the machine untouched.

func execSystem(cpu *CPU, op Opcode) error {
	if handler, ok := systemTable[op.NNN()]; ok {
		return handler(cpu, op)
	}
	return nil
}

func execArithmetic(cpu *CPU, op Opcode) error {
	if handler, ok := arithmeticTable[op.N()]; ok {
		return handler(cpu, op)
	}
	return nil
}

func execKey(cpu *CPU, op Opcode) error {
	if handler, ok := keyTable[op.KK()]; ok {
		return handler(cpu, op)
	}
	return nil
}

func execMisc(cpu *CPU, op Opcode) error {
	if handler, ok := miscTable[op.KK()]; ok {
		return handler(cpu, op)
	}
	return nil
}

// 00E0
func cls(cpu *CPU, _ Opcode) error {
	cpu.display.Clear()
	return nil
}

// 00EE
func ret(cpu *CPU, _ Opcode) error {
	address, err := cpu.pop()
	if err != nil {
		return err
	}
	cpu.PC = address
	return nil
}

// 1nnn
func jp(cpu *CPU, op Opcode) error {
	cpu.PC = op.NNN()
	return nil
}

// 2nnn
func call(cpu *CPU, op Opcode) error {
	if err := cpu.push(cpu.PC); err != nil {
		return err
	}
	cpu.PC = op.NNN()
	return nil
}

func (cpu *CPU) skipIf(condition bool) {
	if condition {
		cpu.PC += InstructionSize
	}
}

// 3xkk
func seVxByte(cpu *CPU, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] == op.KK())
	return nil
}

// 4xkk
func sneVxByte(cpu *CPU, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] != op.KK())
	return nil
}

// 5xy? - the low nibble is not checked
func seVxVy(cpu *CPU, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] == cpu.V[op.Y()])
	return nil
}

// 6xkk
func ldVxByte(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] = op.KK()
	return nil
}

// 7xkk, no carry
func addVxByte(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] += op.KK()
	return nil
}

// 8xy0 to 8xy3 reset VF after writing Vx.

func ldVxVy(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] = cpu.V[op.Y()]
	cpu.V[flagRegister] = 0
	return nil
}

func orVxVy(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] |= cpu.V[op.Y()]
	cpu.V[flagRegister] = 0
	return nil
}

func andVxVy(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] &= cpu.V[op.Y()]
	cpu.V[flagRegister] = 0
	return nil
}

func xorVxVy(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] ^= cpu.V[op.Y()]
	cpu.V[flagRegister] = 0
	return nil
}

// 8xy4
func addVxVy(cpu *CPU, op Opcode) error {
	sum := uint16(cpu.V[op.X()]) + uint16(cpu.V[op.Y()])
	cpu.V[op.X()] = uint8(sum)
	cpu.V[flagRegister] = boolToFlag(sum > 0xFF)
	return nil
}

// 8xy5, VF is set when no borrow occurs
func subVxVy(cpu *CPU, op Opcode) error {
	vx, vy := cpu.V[op.X()], cpu.V[op.Y()]
	cpu.V[op.X()] = vx - vy
	cpu.V[flagRegister] = boolToFlag(vy < vx)
	return nil
}

// 8xy6, Vx takes Vy before shifting but VF holds the old low bit of Vx
func shrVxVy(cpu *CPU, op Opcode) error {
	flag := cpu.V[op.X()] & 0x01
	cpu.V[op.X()] = cpu.V[op.Y()] >> 1
	cpu.V[flagRegister] = flag
	return nil
}

// 8xy7
func subnVxVy(cpu *CPU, op Opcode) error {
	vx, vy := cpu.V[op.X()], cpu.V[op.Y()]
	cpu.V[op.X()] = vy - vx
	cpu.V[flagRegister] = boolToFlag(vy > vx)
	return nil
}

// 8xyE, mirror of 8xy6 using the high bit
func shlVxVy(cpu *CPU, op Opcode) error {
	flag := cpu.V[op.X()] >> 7
	cpu.V[op.X()] = cpu.V[op.Y()] << 1
	cpu.V[flagRegister] = flag
	return nil
}

// 9xy? - the low nibble is not checked
func sneVxVy(cpu *CPU, op Opcode) error {
	cpu.skipIf(cpu.V[op.X()] != cpu.V[op.Y()])
	return nil
}

// Annn
func ldI(cpu *CPU, op Opcode) error {
	cpu.I = op.NNN()
	return nil
}

// Bnnn
func jpV0(cpu *CPU, op Opcode) error {
	cpu.PC = op.NNN() + uint16(cpu.V[0])
	return nil
}

// Cxkk
func rnd(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] = cpu.random() & op.KK()
	return nil
}

// Dxyn
func drw(cpu *CPU, op Opcode) error {
	// Coordinates are taken before VF is cleared so that VF itself can be used.
	vx := cpu.V[op.X()] % display.Width
	vy := cpu.V[op.Y()] % display.Height

	rows := display.VisibleRows(vy, int(op.N()))
	sprite, err := cpu.memory.Slice(cpu.I, rows)
	if err != nil {
		return memoryFault(int(cpu.I), err)
	}

	cpu.V[flagRegister] = 0
	if cpu.display.DrawSprite(vx, vy, sprite) {
		cpu.V[flagRegister] = 1
	}
	return nil
}

// Ex9E
func skp(cpu *CPU, op Opcode) error {
	cpu.skipIf(cpu.keypad.IsPressed(cpu.V[op.X()]))
	return nil
}

// ExA1
func sknp(cpu *CPU, op Opcode) error {
	cpu.skipIf(!cpu.keypad.IsPressed(cpu.V[op.X()]))
	return nil
}

// Fx07
func ldVxDT(cpu *CPU, op Opcode) error {
	cpu.V[op.X()] = cpu.DelayTimer
	return nil
}

// Fx0A re-executes itself until a key is down. Key 0xF is only seen with
// the FixKeyWait quirk.
func ldVxK(cpu *CPU, op Opcode) error {
	cpu.PC -= InstructionSize

	last := uint8(keyWaitLast)
	if cpu.quirks.FixKeyWait {
		last = 0xF
	}
	for key := uint8(0); key <= last; key++ {
		if cpu.keypad.IsPressed(key) {
			cpu.V[op.X()] = key
			cpu.PC += InstructionSize
			break
		}
	}
	return nil
}

// Fx15
func ldDTVx(cpu *CPU, op Opcode) error {
	cpu.DelayTimer = cpu.V[op.X()]
	return nil
}

// Fx18
func ldSTVx(cpu *CPU, op Opcode) error {
	cpu.SoundTimer = cpu.V[op.X()]
	return nil
}

// Fx1E
func addIVx(cpu *CPU, op Opcode) error {
	cpu.I += uint16(cpu.V[op.X()])
	return nil
}

// Fx29
func ldFVx(cpu *CPU, op Opcode) error {
	cpu.I = memory.GlyphAddress(cpu.V[op.X()])
	return nil
}

// Fx33
func ldBVx(cpu *CPU, op Opcode) error {
	if err := cpu.memory.CheckRange("write", cpu.I, 3); err != nil {
		return memoryFault(int(cpu.I), err)
	}
	value := cpu.V[op.X()]
	digits := [3]uint8{value / 100, (value / 10) % 10, value % 10}
	for i, digit := range digits {
		if err := cpu.memory.Write(cpu.I+uint16(i), digit); err != nil {
			return memoryFault(int(cpu.I)+i, err)
		}
	}
	return nil
}

// Fx55
func ldIVx(cpu *CPU, op Opcode) error {
	count := int(op.X()) + 1
	if err := cpu.memory.CheckRange("write", cpu.I, count); err != nil {
		return memoryFault(int(cpu.I), err)
	}
	for i := 0; i < count; i++ {
		if err := cpu.memory.Write(cpu.I+uint16(i), cpu.V[i]); err != nil {
			return memoryFault(int(cpu.I)+i, err)
		}
	}
	cpu.I += uint16(count)
	return nil
}

// Fx65
func ldVxI(cpu *CPU, op Opcode) error {
	count := int(op.X()) + 1
	values, err := cpu.memory.Slice(cpu.I, count)
	if err != nil {
		return memoryFault(int(cpu.I), err)
	}
	copy(cpu.V[:count], values)
	cpu.I += uint16(count)
	return nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
