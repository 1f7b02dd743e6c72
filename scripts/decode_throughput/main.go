// Measure decode and pipeline throughput and allocation rate.
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

func main() {
	regFile := &emu.RegFile{}
	decodeStage := pipeline.NewDecodeStage(regFile)

	latches := []pipeline.Latch{
		{Valid: true, PC: 4000, Inst: insts.Instruction{Op: insts.OpADD, Rd: 1, Rs1: 2, Rs2: 3}},
		{Valid: true, PC: 4004, Inst: insts.Instruction{Op: insts.OpADDL, Rd: 4, Rs1: 5, Imm: 42}},
		{Valid: true, PC: 4008, Inst: insts.Instruction{Op: insts.OpSTORE, Rs1: 6, Rs2: 7, Imm: 8}},
		{Valid: true, PC: 4012, Inst: insts.Instruction{Op: insts.OpMOVC, Rd: 9, Imm: 5}},
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		_ = decodeStage.Decode(&latches[i%len(latches)])
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for j := range latches {
			_ = decodeStage.Decode(&latches[j])
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	totalDecodes := iterations * len(latches)
	allocations := m2.Mallocs - m1.Mallocs

	fmt.Printf("Decode Throughput Results:\n")
	fmt.Printf("==========================\n")
	fmt.Printf("Total decode operations: %d\n", totalDecodes)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Decodes per second: %.0f\n", float64(totalDecodes)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.3f\n", float64(allocations)/float64(totalDecodes))

	// A long-running loop: R1 counts down from 100000.
	program := insts.NewProgram([]insts.Instruction{
		{Op: insts.OpMOVC, Rd: 1, Imm: 100000},
		{Op: insts.OpNOP},
		{Op: insts.OpNOP},
		{Op: insts.OpSUBL, Rd: 1, Rs1: 1, Imm: 1},
		{Op: insts.OpNOP},
		{Op: insts.OpNOP},
		{Op: insts.OpBNZ, Imm: -12},
		{Op: insts.OpHALT},
	})
	pipe := pipeline.NewPipeline(program, &emu.RegFile{}, emu.NewMemory())

	start = time.Now()
	if err := pipe.Run(); err != nil {
		fmt.Printf("\n⚠️  Pipeline run failed: %v\n", err)
		return
	}
	elapsed = time.Since(start)

	stats := pipe.Stats()
	fmt.Printf("\nPipeline Throughput Results:\n")
	fmt.Printf("============================\n")
	fmt.Printf("Cycles: %d  Instructions: %d  CPI: %.3f\n",
		stats.Cycles, stats.Instructions, stats.CPI())
	fmt.Printf("Simulated cycles per second: %.0f\n", float64(stats.Cycles)/elapsed.Seconds())
}
