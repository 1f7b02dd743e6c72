// Package benchmarks provides timing benchmark infrastructure for apexsim:
// small APEX programs run through the pipeline and checked against the
// functional emulator.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/olekukonko/tablewriter"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/timing/core"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StaleReads counts instructions that read a register before an older
	// instruction wrote it back.
	StaleReads uint64 `json:"stale_reads"`

	// PipelineFlushes is the number of taken control transfers
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// Squashed is the number of wrong-path instructions discarded
	Squashed uint64 `json:"squashed"`

	// MatchesReference is true when the final registers and memory equal
	// those of the functional emulator.
	MatchesReference bool `json:"matches_reference"`

	// Passed is true when the run halted and every expected value matched.
	Passed bool `json:"passed"`

	// Error describes a fault or failed expectation.
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the architectural state before the run.
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the code to execute
	Program *insts.Program

	// ExpectedRegs and ExpectedMem are checked after the pipeline halts.
	ExpectedRegs map[uint8]int32
	ExpectedMem  map[int32]int32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Output:  os.Stdout,
		Verbose: false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "%s: cycles=%d insts=%d passed=%v\n",
				result.Name, result.SimulatedCycles, result.InstructionsRetired, result.Passed)
		}
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	c, err := core.New(bench.Program)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer func() { _ = c.Shutdown() }()

	if bench.Setup != nil {
		bench.Setup(c.RegFile(), c.Memory())
	}

	// Run simulation and measure time
	start := time.Now()
	runErr := c.Run()
	result.WallTime = time.Since(start)

	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.StaleReads = stats.StaleReads
	result.PipelineFlushes = stats.Flushes
	result.Squashed = stats.Squashed

	if runErr != nil {
		result.Error = runErr.Error()
		return result
	}

	ref := emu.NewEmulator()
	if bench.Setup != nil {
		bench.Setup(ref.RegFile(), ref.Memory())
	}
	ref.LoadProgram(bench.Program)
	if err := ref.Run(); err == nil {
		result.MatchesReference = cmp.Equal(ref.RegFile().R, c.RegFile().R) &&
			cmp.Equal(ref.Memory().NonZero(), c.Memory().NonZero())
	}

	if err := checkExpected(bench, c); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Passed = true
	return result
}

func checkExpected(bench Benchmark, c *core.Core) error {
	for reg, want := range bench.ExpectedRegs {
		if got := c.RegFile().ReadReg(reg); got != want {
			return fmt.Errorf("R%d = %d, want %d", reg, got, want)
		}
	}
	for addr, want := range bench.ExpectedMem {
		got, err := c.Memory().Read(addr)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("mem[%d] = %d, want %d", addr, got, want)
		}
	}
	return nil
}

// PrintResults outputs benchmark results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== apexsim Timing Benchmark Results ===")

	table := tablewriter.NewWriter(h.config.Output)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{
		"Benchmark", "Cycles", "Instructions", "CPI",
		"Stale reads", "Flushes", "Reference", "Status",
	})

	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL: " + r.Error
		}
		reference := "differs"
		if r.MatchesReference {
			reference = "match"
		}
		table.Append([]string{
			r.Name,
			fmt.Sprintf("%d", r.SimulatedCycles),
			fmt.Sprintf("%d", r.InstructionsRetired),
			fmt.Sprintf("%.3f", r.CPI),
			fmt.Sprintf("%d", r.StaleReads),
			fmt.Sprintf("%d", r.PipelineFlushes),
			reference,
			status,
		})
	}

	table.Render()
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stale_reads,flushes,squashed,matches_reference,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%t,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StaleReads,
			r.PipelineFlushes,
			r.Squashed,
			r.MatchesReference,
			r.Passed,
		)
	}
}

// PrintJSON outputs benchmark results as indented JSON.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
