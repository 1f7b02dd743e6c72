package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

// Fatal runtime conditions. None of them are recoverable.
var (
	ErrMemoryOutOfRange   = errors.New("data memory address out of range")
	ErrRegisterOutOfRange = errors.New("register index out of range")
	ErrFetchOutOfRange    = insts.ErrPCOutOfRange
	ErrDivideByZero       = errors.New("division by zero")
	ErrUnknownOpcode      = errors.New("unknown opcode")
)

// Fault describes a fatal condition raised while executing an instruction.
type Fault struct {
	// Stage names where the fault was raised ("fetch", "execute", ...).
	Stage string
	// Cycle is the clock cycle of the fault. Zero for functional emulation.
	Cycle uint64
	// PC is the address of the faulting instruction.
	PC int32
	// Inst is the faulting instruction. Zero for fetch faults.
	Inst insts.Instruction
	// Err is the underlying cause.
	Err error
}

func (f *Fault) Error() string {
	if f.Inst.Op == insts.OpUnknown && f.Stage == "fetch" {
		return fmt.Sprintf("%s fault at cycle %d, pc %d: %v",
			f.Stage, f.Cycle, f.PC, f.Err)
	}
	return fmt.Sprintf("%s fault at cycle %d, pc %d (%s): %v",
		f.Stage, f.Cycle, f.PC, f.Inst, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
