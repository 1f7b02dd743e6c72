package benchmarks

import (
	"strings"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets a specific pipeline characteristic. All but
// dependency_chain space dependent instructions far enough apart that the
// missing forwarding network does not change the result.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		branchLoop(),
		functionCall(),
		compareAndBranch(),
	}
}

// assemble parses benchmark source. Sources are constants, so a parse
// failure is a programming error.
func assemble(src string) *insts.Program {
	prog, err := loader.Parse(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return prog
}

// 1. Arithmetic Sequential - ALU throughput with independent operations
func arithmeticSequential() Benchmark {
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "10 ALU ops, every source written back before it is read",
		Program: assemble(`
			MOVC,R1,#1
			MOVC,R2,#2
			MOVC,R3,#3
			MOVC,R4,#4
			MOVC,R7,#7
			ADD,R5,R1,R2
			SUB,R6,R4,R3
			AND,R8,R1,R3
			OR,R9,R2,R4
			XOR,R10,R5,R7
			HALT
		`),
		ExpectedRegs: map[uint8]int32{5: 3, 6: 1, 8: 1, 9: 6, 10: 4},
	}
}

// 2. Dependency Chain - back-to-back RAW hazards read stale registers
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "8 dependent ADDLs with no spacing - exposes missing forwarding",
		Program: assemble(`
			MOVC,R1,#0
			ADDL,R1,R1,#1
			ADDL,R1,R1,#1
			ADDL,R1,R1,#1
			ADDL,R1,R1,#1
			ADDL,R1,R1,#1
			ADDL,R1,R1,#1
			ADDL,R1,R1,#1
			ADDL,R1,R1,#1
			HALT
		`),
	}
}

// 3. Memory Sequential - post-increment stores and loads
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "2 STOREPs and 2 LOADPs walking a buffer",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(2, 7)
		},
		Program: assemble(`
			MOVC,R1,#100
			NOP
			NOP
			STOREP,R2,R1,#0
			NOP
			NOP
			STOREP,R2,R1,#0
			MOVC,R3,#100
			NOP
			NOP
			LOADP,R4,R3,#0
			NOP
			NOP
			LOADP,R5,R3,#0
			HALT
		`),
		ExpectedRegs: map[uint8]int32{1: 108, 3: 108, 4: 7, 5: 7},
		ExpectedMem:  map[int32]int32{100: 7, 104: 7},
	}
}

// 4. Branch Loop - a counted loop closed by a taken BNZ
func branchLoop() Benchmark {
	return Benchmark{
		Name:        "branch_loop",
		Description: "4-iteration loop - measures the two-slot branch penalty",
		Program: assemble(`
			MOVC,R1,#4
			MOVC,R2,#0
			NOP
			NOP
			ADDL,R2,R2,#2   ; loop
			SUBL,R1,R1,#1
			NOP
			NOP
			BNZ,#-16
			HALT
		`),
		ExpectedRegs: map[uint8]int32{1: 0, 2: 8},
	}
}

// 5. Function Call - JALR into a function and JUMP back through the link
func functionCall() Benchmark {
	return Benchmark{
		Name:        "function_call",
		Description: "JALR call and JUMP return",
		Program: assemble(`
			MOVC,R1,#4028
			NOP
			NOP
			JALR,R6,R1,#0
			HALT
			NOP
			NOP
			MOVC,R3,#42     ; function at 4028
			NOP
			JUMP,R6,#0
		`),
		ExpectedRegs: map[uint8]int32{3: 42, 6: 4016},
	}
}

// 6. Compare and Branch - CMP/CML feeding the sign branches
func compareAndBranch() Benchmark {
	return Benchmark{
		Name:        "compare_and_branch",
		Description: "CMP and CML steering BN, BNZ and BP",
		Program: assemble(`
			MOVC,R1,#3
			MOVC,R2,#9
			NOP
			NOP
			CMP,R1,R2
			BN,#12
			MOVC,R3,#1
			HALT
			CML,R2,#9
			BNZ,#8
			MUL,R4,R1,R2
			BP,#8
			MOVC,R5,#2
			HALT
		`),
		ExpectedRegs: map[uint8]int32{3: 0, 4: 27, 5: 2},
	}
}
