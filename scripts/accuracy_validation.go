// Package main provides accuracy validation for the APEX simulator.
// Ensures that the pipeline agrees with the functional emulator wherever
// the missing forwarding network cannot change the result.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/apexsim/benchmarks"
	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

// testAssemblyRoundTrip validates that every opcode prints as assembly the
// loader parses back into the same instruction.
func testAssemblyRoundTrip() bool {
	fmt.Println("Testing assembly round trip...")

	for _, op := range insts.AllOps() {
		info := op.Info()
		inst := insts.Instruction{Op: op, Mnemonic: info.Mnemonic}
		if info.WritesRd || info.Format == insts.FormatRRR {
			inst.Rd = 3
		}
		if info.ReadsRs1 {
			inst.Rs1 = 4
		}
		if info.ReadsRs2 {
			inst.Rs2 = 5
		}
		switch info.Format {
		case insts.FormatRRI, insts.FormatRI, insts.FormatStore,
			insts.FormatCmpImm, insts.FormatBranch, insts.FormatJump:
			inst.Imm = -8
		}

		text := inst.String()
		parsed, err := loader.ParseLine(text)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", text, err)
			return false
		}
		if parsed != inst {
			fmt.Printf("❌ %s parsed as %+v, want %+v\n", text, parsed, inst)
			return false
		}

		fmt.Printf("✅ %s\n", text)
	}

	return true
}

// testPipelineExecution validates that a spaced program gives the same
// registers on the pipeline and on the emulator for several inputs.
func testPipelineExecution() bool {
	fmt.Println("\nTesting pipeline execution accuracy...")

	program := insts.NewProgram([]insts.Instruction{
		{Op: insts.OpADDL, Rd: 1, Rs1: 0, Imm: 1},
		{Op: insts.OpNOP},
		{Op: insts.OpNOP},
		{Op: insts.OpADDL, Rd: 2, Rs1: 1, Imm: 2},
		{Op: insts.OpNOP},
		{Op: insts.OpNOP},
		{Op: insts.OpMUL, Rd: 3, Rs1: 2, Rs2: 1},
		{Op: insts.OpHALT},
	})

	testValues := []int32{0, 1, 42, -7}

	for i, initialValue := range testValues {
		regFile := &emu.RegFile{}
		regFile.WriteReg(0, initialValue)

		pipe := pipeline.NewPipeline(program, regFile, emu.NewMemory())
		if err := pipe.Run(); err != nil {
			fmt.Printf("❌ Test case %d: %v\n", i, err)
			return false
		}

		ref := emu.NewEmulator()
		ref.RegFile().WriteReg(0, initialValue)
		ref.LoadProgram(program)
		if err := ref.Run(); err != nil {
			fmt.Printf("❌ Test case %d: emulator: %v\n", i, err)
			return false
		}

		if regFile.R != ref.RegFile().R {
			fmt.Printf("❌ Test case %d failed:\n", i)
			fmt.Printf("  Pipeline: %v\n", regFile.R)
			fmt.Printf("  Emulator: %v\n", ref.RegFile().R)
			return false
		}

		fmt.Printf("✅ Test case %d: R0=%d → R1=%d, R2=%d, R3=%d (cycles %d)\n",
			i, initialValue, regFile.R[1], regFile.R[2], regFile.R[3], pipe.Stats().Cycles)
	}

	return true
}

// testMicrobenchmarks validates the benchmark suite against its expected
// values and the emulator.
func testMicrobenchmarks() bool {
	fmt.Println("\nTesting microbenchmarks...")

	harness := benchmarks.NewHarness(benchmarks.DefaultConfig())
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	results := harness.RunAll()
	harness.PrintResults(results)

	ok := true
	for _, r := range results {
		if !r.Passed {
			fmt.Printf("❌ %s: %s\n", r.Name, r.Error)
			ok = false
		}
	}
	return ok
}

func main() {
	fmt.Println("apexsim Accuracy Validation")
	fmt.Println("===========================")

	allPassed := true

	if !testAssemblyRoundTrip() {
		allPassed = false
	}

	if !testPipelineExecution() {
		allPassed = false
	}

	if !testMicrobenchmarks() {
		allPassed = false
	}

	fmt.Println("\n===========================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		os.Exit(1)
	}
}
