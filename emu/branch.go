package emu

import "github.com/sarchlab/apexsim/insts"

// BranchUnit resolves APEX jumps and conditional branches.
type BranchUnit struct {
	flags *Flags
}

// NewBranchUnit creates a new BranchUnit reading the given flags.
func NewBranchUnit(flags *Flags) *BranchUnit {
	return &BranchUnit{flags: flags}
}

// Resolve returns whether a control-transfer instruction at pc is taken and
// its target. Branches are PC-relative; JUMP and JALR add the immediate to
// the Rs1 value.
func (b *BranchUnit) Resolve(inst insts.Instruction, pc, rs1 int32) (bool, int32) {
	switch inst.Op {
	case insts.OpJUMP, insts.OpJALR:
		return true, rs1 + inst.Imm
	}

	if !b.ConditionHolds(inst.Op) {
		return false, 0
	}
	return true, pc + inst.Imm
}

// ConditionHolds evaluates a conditional branch against the flags.
// Non-branch opcodes never hold.
func (b *BranchUnit) ConditionHolds(op insts.Op) bool {
	f := b.flags

	switch op {
	case insts.OpBZ:
		return f.Zero
	case insts.OpBNZ:
		return !f.Zero
	case insts.OpBP:
		return f.Positive
	case insts.OpBNP:
		return !f.Positive
	case insts.OpBN:
		return f.Negative
	case insts.OpBNN:
		return !f.Negative
	default:
		return false
	}
}
