package cpu

import (
	"errors"
	"fmt"
)

// FaultKind classifies a fault raised while executing an instruction
type FaultKind int

const (
	// StackOverflow is raised by CALL with all 16 stack slots in use
	StackOverflow FaultKind = iota + 1
	// StackUnderflow is raised by RET with an empty stack
	StackUnderflow
	// MemoryAccessFault is raised when PC or an I-relative access leaves the 4KB space
	MemoryAccessFault
)

func (k FaultKind) String() string {
	switch k {
	case StackOverflow:
		return "StackOverflow"
	case StackUnderflow:
		return "StackUnderflow"
	case MemoryAccessFault:
		return "MemoryAccessFault"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against a *Fault of the same kind
var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrMemoryAccess   = errors.New("memory access fault")
)

// Fault is returned by Step when an instruction cannot complete. Machine
// state is left as it was before the instruction, except that PC has already
// moved past it.
type Fault struct {
	Kind FaultKind
	// PC is the address the faulting instruction was fetched from
	PC     uint16
	Opcode Opcode
	// Address is the offending memory address, or the stack pointer for stack faults
	Address int
	// Fetch is set when the instruction word itself could not be read. PC
	// does not advance in that case.
	Fetch bool
	Err   error
}

func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s at PC=0x%03X (opcode %s, address 0x%03X)", f.Kind, f.PC, f.Opcode, f.Address)
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying memory error, if any
func (f *Fault) Unwrap() error {
	return f.Err
}

// Is matches the sentinel error of the fault's kind
func (f *Fault) Is(target error) bool {
	switch target {
	case ErrStackOverflow:
		return f.Kind == StackOverflow
	case ErrStackUnderflow:
		return f.Kind == StackUnderflow
	case ErrMemoryAccess:
		return f.Kind == MemoryAccessFault
	}
	return false
}

// IsFetchFault reports whether err is a fault raised while reading the
// instruction word. Execution cannot continue past such a fault.
func IsFetchFault(err error) bool {
	var fault *Fault
	return errors.As(err, &fault) && fault.Fetch
}

func memoryFault(address int, err error) *Fault {
	return &Fault{Kind: MemoryAccessFault, Address: address, Err: err}
}
