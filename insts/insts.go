// Package insts provides APEX instruction definitions and decoding.
//
// An APEX program is a list of Instruction records, one per source line,
// addressed by program counter. The package supports:
//   - Register arithmetic: ADD, SUB, MUL, DIV, AND, OR, XOR
//   - Immediate arithmetic: ADDL, SUBL, MOVC
//   - Compares: CMP, CML
//   - Memory: LOAD, STORE and the post-increment LOADP, STOREP
//   - Control transfer: BZ, BNZ, BP, BNP, BN, BNN, JUMP, JALR
//   - HALT and NOP
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := insts.Instruction{Op: decoder.Decode("ADDL"), Rd: 1, Rs1: 2, Imm: 8}
//	fmt.Println(inst) // ADDL,R1,R2,#8
package insts

import "fmt"

// Instruction is one decoded APEX instruction. It is immutable after load.
type Instruction struct {
	Op  Op    // Operation code
	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register
	Imm int32 // Signed immediate

	// Mnemonic is the opcode text as written in the source, used for tracing.
	Mnemonic string
}

// Info returns the static description of the instruction's opcode.
func (i Instruction) Info() Info {
	return i.Op.Info()
}

// BaseReg returns the register holding the base address of a memory
// instruction. Loads address off Rs1, stores off Rs2.
func (i Instruction) BaseReg() uint8 {
	if i.Op.Info().MemWrite {
		return i.Rs2
	}
	return i.Rs1
}

// Registers returns every register id the instruction names.
func (i Instruction) Registers() []uint8 {
	info := i.Info()
	var regs []uint8
	if info.WritesRd {
		regs = append(regs, i.Rd)
	}
	if info.ReadsRs1 {
		regs = append(regs, i.Rs1)
	}
	if info.ReadsRs2 {
		regs = append(regs, i.Rs2)
	}
	return regs
}

// String renders the instruction in APEX assembly syntax.
func (i Instruction) String() string {
	name := i.Mnemonic
	if name == "" {
		name = i.Op.String()
	}

	switch i.Info().Format {
	case FormatRRR:
		return fmt.Sprintf("%s,R%d,R%d,R%d", name, i.Rd, i.Rs1, i.Rs2)
	case FormatRRI:
		return fmt.Sprintf("%s,R%d,R%d,#%d", name, i.Rd, i.Rs1, i.Imm)
	case FormatRI:
		return fmt.Sprintf("%s,R%d,#%d", name, i.Rd, i.Imm)
	case FormatStore:
		return fmt.Sprintf("%s,R%d,R%d,#%d", name, i.Rs1, i.Rs2, i.Imm)
	case FormatCmp:
		return fmt.Sprintf("%s,R%d,R%d", name, i.Rs1, i.Rs2)
	case FormatCmpImm, FormatJump:
		return fmt.Sprintf("%s,R%d,#%d", name, i.Rs1, i.Imm)
	case FormatBranch:
		return fmt.Sprintf("%s,#%d", name, i.Imm)
	default:
		return name
	}
}
