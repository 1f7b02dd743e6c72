package emu

import (
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

// ALU implements APEX arithmetic, logic and compare operations.
type ALU struct {
	flags *Flags
}

// NewALU creates a new ALU that updates the given flags.
func NewALU(flags *Flags) *ALU {
	return &ALU{flags: flags}
}

// Execute computes the result of an arithmetic, logic, immediate-load or
// compare instruction from its resolved source values. Flags are updated as
// the opcode defines. Compares return 0.
func (a *ALU) Execute(inst insts.Instruction, rs1, rs2 int32) (int32, error) {
	var result int32

	switch inst.Op {
	case insts.OpADD:
		result = rs1 + rs2
	case insts.OpSUB:
		result = rs1 - rs2
	case insts.OpMUL:
		result = rs1 * rs2
	case insts.OpDIV:
		if rs2 == 0 {
			return 0, ErrDivideByZero
		}
		result = rs1 / rs2
	case insts.OpAND:
		result = rs1 & rs2
	case insts.OpOR:
		result = rs1 | rs2
	case insts.OpXOR:
		result = rs1 ^ rs2
	case insts.OpADDL:
		result = rs1 + inst.Imm
	case insts.OpSUBL:
		result = rs1 - inst.Imm
	case insts.OpMOVC:
		result = inst.Imm
	case insts.OpCMP:
		a.flags.Compare(rs1, rs2)
		return 0, nil
	case insts.OpCML:
		a.flags.Compare(rs1, inst.Imm)
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s is not an ALU operation", ErrUnknownOpcode, inst.Op)
	}

	if inst.Info().SetsZero {
		a.flags.SetZero(result)
	}

	return result, nil
}
