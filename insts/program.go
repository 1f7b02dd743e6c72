package insts

import (
	"errors"
	"fmt"
)

const (
	// CodeBase is the address of the first instruction (the reset vector).
	CodeBase int32 = 4000

	// InstWidth is the size of one instruction in bytes.
	InstWidth int32 = 4
)

// ErrPCOutOfRange is returned when a PC does not address a loaded instruction.
var ErrPCOutOfRange = errors.New("pc outside instruction store")

// Program is the instruction store: an ordered, read-only list of
// instructions indexed by program counter.
type Program struct {
	insts []Instruction
}

// NewProgram creates a program from the given instructions.
// The slice is copied so later changes by the caller are not observed.
func NewProgram(list []Instruction) *Program {
	p := &Program{insts: make([]Instruction, len(list))}
	copy(p.insts, list)
	return p
}

// Len returns the number of loaded instructions.
func (p *Program) Len() int {
	return len(p.insts)
}

// Index converts a PC into an instruction index.
func (p *Program) Index(pc int32) (int, bool) {
	offset := pc - CodeBase
	if offset < 0 || offset%InstWidth != 0 {
		return 0, false
	}
	idx := int(offset / InstWidth)
	if idx >= len(p.insts) {
		return 0, false
	}
	return idx, true
}

// PC returns the address of the instruction at index.
func PC(index int) int32 {
	return CodeBase + int32(index)*InstWidth
}

// At returns the instruction at pc.
func (p *Program) At(pc int32) (Instruction, error) {
	idx, ok := p.Index(pc)
	if !ok {
		return Instruction{}, fmt.Errorf("%w: pc %d (%d instructions loaded)",
			ErrPCOutOfRange, pc, len(p.insts))
	}
	return p.insts[idx], nil
}

// Instructions returns a copy of the instruction list.
func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.insts))
	copy(out, p.insts)
	return out
}
