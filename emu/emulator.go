package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

// ErrInstructionLimit is returned by Run when the instruction limit is hit
// before a HALT retires.
var ErrInstructionLimit = errors.New("instruction limit reached")

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the instruction was HALT.
	Halted bool

	// Err is set if the instruction faulted.
	Err error
}

// Emulator executes APEX instructions functionally, one at a time and to
// completion. It has no pipeline, so every result is visible to the next
// instruction. It serves as the architectural reference for the timing
// pipeline.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	program *insts.Program

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
	halted           bool
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithRegFile uses the given register file instead of a fresh one.
func WithRegFile(regFile *RegFile) EmulatorOption {
	return func(e *Emulator) {
		e.regFile = regFile
	}
}

// WithMemory uses the given data memory instead of a fresh one.
func WithMemory(memory *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = memory
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new APEX emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  NewMemory(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.alu = NewALU(&e.regFile.Flags)
	e.lsu = NewLoadStoreUnit(e.memory)
	e.branchUnit = NewBranchUnit(&e.regFile.Flags)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's data memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions retired. NOPs are
// not counted, matching the pipeline.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted returns true once HALT has executed.
func (e *Emulator) Halted() bool {
	return e.halted
}

// LoadProgram installs the program and resets the PC to the code base.
func (e *Emulator) LoadProgram(program *insts.Program) {
	e.program = program
	e.regFile.PC = insts.CodeBase
	e.halted = false
	e.instructionCount = 0
}

// Run executes until HALT or a fault.
func (e *Emulator) Run() error {
	for !e.halted {
		if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
			return fmt.Errorf("%w: %d instructions", ErrInstructionLimit, e.maxInstructions)
		}

		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
	}
	return nil
}

// Step executes the instruction at the current PC.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}
	if e.program == nil {
		return StepResult{Err: errors.New("no program loaded")}
	}

	pc := e.regFile.PC
	inst, err := e.program.At(pc)
	if err != nil {
		return StepResult{Err: &Fault{Stage: "fetch", PC: pc, Err: err}}
	}

	nextPC, err := e.execute(inst, pc)
	if err != nil {
		return StepResult{Err: &Fault{Stage: "execute", PC: pc, Inst: inst, Err: err}}
	}

	e.regFile.PC = nextPC
	if inst.Op != insts.OpNOP {
		e.instructionCount++
	}

	return StepResult{Halted: e.halted}
}

func (e *Emulator) execute(inst insts.Instruction, pc int32) (int32, error) {
	info := inst.Info()
	nextPC := pc + insts.InstWidth

	var rs1, rs2 int32
	var err error
	if info.ReadsRs1 {
		if rs1, err = e.regFile.Read(inst.Rs1); err != nil {
			return 0, err
		}
	}
	if info.ReadsRs2 {
		if rs2, err = e.regFile.Read(inst.Rs2); err != nil {
			return 0, err
		}
	}

	switch {
	case inst.Op == insts.OpNOP:
		return nextPC, nil

	case inst.Op == insts.OpHALT:
		e.halted = true
		return nextPC, nil

	case info.MemRead || info.MemWrite:
		base := rs1
		if info.MemWrite {
			base = rs2
		}
		addr, newBase := e.lsu.Address(inst, base)
		value, err := e.lsu.Access(inst, addr, rs1)
		if err != nil {
			return 0, err
		}
		if info.WritesBase {
			if err := e.regFile.Write(inst.BaseReg(), newBase); err != nil {
				return 0, err
			}
		}
		if info.WritesRd {
			return nextPC, e.regFile.Write(inst.Rd, value)
		}
		return nextPC, nil

	case info.Control:
		taken, target := e.branchUnit.Resolve(inst, pc, rs1)
		if info.WritesRd {
			if err := e.regFile.Write(inst.Rd, pc+insts.InstWidth); err != nil {
				return 0, err
			}
		}
		if taken {
			return target, nil
		}
		return nextPC, nil

	default:
		result, err := e.alu.Execute(inst, rs1, rs2)
		if err != nil {
			return 0, err
		}
		if info.WritesRd {
			return nextPC, e.regFile.Write(inst.Rd, result)
		}
		return nextPC, nil
	}
}
