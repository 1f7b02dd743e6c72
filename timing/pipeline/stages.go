// Package pipeline provides a 5-stage pipeline model for cycle-accurate timing simulation.
package pipeline

import (
	"fmt"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

// FetchStage reads instructions from the instruction store.
type FetchStage struct {
	program *insts.Program
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(program *insts.Program) *FetchStage {
	return &FetchStage{program: program}
}

// Fetch returns the instruction at pc.
func (s *FetchStage) Fetch(pc int32) (insts.Instruction, error) {
	return s.program.At(pc)
}

// DecodeStage handles register read. There is no forwarding: sources are
// read from the register file as it stands.
type DecodeStage struct {
	regFile *emu.RegFile
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{regFile: regFile}
}

// Decode resolves the source operands the opcode reads into the latch.
func (s *DecodeStage) Decode(l *Latch) error {
	if !l.Inst.Op.Valid() {
		return fmt.Errorf("%w: %d", emu.ErrUnknownOpcode, l.Inst.Op)
	}

	for _, reg := range l.Inst.Registers() {
		if !emu.ValidReg(reg) {
			return fmt.Errorf("%w: R%d", emu.ErrRegisterOutOfRange, reg)
		}
	}

	info := l.Inst.Info()
	if info.ReadsRs1 {
		l.Rs1Value = s.regFile.R[l.Inst.Rs1]
	}
	if info.ReadsRs2 {
		l.Rs2Value = s.regFile.R[l.Inst.Rs2]
	}

	return nil
}

// ExecuteStage handles ALU operations, address calculation and
// control-transfer resolution.
type ExecuteStage struct {
	alu        *emu.ALU
	lsu        *emu.LoadStoreUnit
	branchUnit *emu.BranchUnit
}

// NewExecuteStage creates a new execute stage. Flags live in the register
// file and are updated here.
func NewExecuteStage(regFile *emu.RegFile, memory *emu.Memory) *ExecuteStage {
	return &ExecuteStage{
		alu:        emu.NewALU(&regFile.Flags),
		lsu:        emu.NewLoadStoreUnit(memory),
		branchUnit: emu.NewBranchUnit(&regFile.Flags),
	}
}

// Execute computes the instruction's result or address. It returns true when
// a control transfer is taken; the target is left in l.Target.
func (s *ExecuteStage) Execute(l *Latch) (bool, error) {
	info := l.Inst.Info()

	switch {
	case l.Inst.Op == insts.OpHALT, l.Inst.Op == insts.OpNOP:
		return false, nil

	case info.MemRead:
		l.MemAddr, l.BaseValue = s.lsu.Address(l.Inst, l.Rs1Value)

	case info.MemWrite:
		l.MemAddr, l.BaseValue = s.lsu.Address(l.Inst, l.Rs2Value)
		l.StoreValue = l.Rs1Value

	case info.Control:
		l.Taken, l.Target = s.branchUnit.Resolve(l.Inst, l.PC, l.Rs1Value)
		if info.WritesRd {
			l.Result = l.PC + insts.InstWidth
		}
		return l.Taken, nil

	default:
		result, err := s.alu.Execute(l.Inst, l.Rs1Value, l.Rs2Value)
		if err != nil {
			return false, err
		}
		l.Result = result
	}

	return false, nil
}

// MemoryStage handles data memory loads and stores.
type MemoryStage struct {
	lsu *emu.LoadStoreUnit
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{lsu: emu.NewLoadStoreUnit(memory)}
}

// Access performs the memory read or write. Other instructions pass through.
func (s *MemoryStage) Access(l *Latch) error {
	info := l.Inst.Info()

	switch {
	case info.MemRead:
		value, err := s.lsu.Access(l.Inst, l.MemAddr, 0)
		if err != nil {
			return err
		}
		l.Result = value
	case info.MemWrite:
		if _, err := s.lsu.Access(l.Inst, l.MemAddr, l.StoreValue); err != nil {
			return err
		}
	}

	return nil
}

// WritebackStage handles register file writeback.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits the instruction's register results. Post-increment ops
// commit the base register first, so a load into its own base register
// keeps the loaded value.
func (s *WritebackStage) Writeback(l *Latch) error {
	info := l.Inst.Info()

	if info.WritesBase {
		if err := s.regFile.Write(l.Inst.BaseReg(), l.BaseValue); err != nil {
			return err
		}
	}

	if info.WritesRd {
		if err := s.regFile.Write(l.Inst.Rd, l.Result); err != nil {
			return err
		}
	}

	return nil
}
