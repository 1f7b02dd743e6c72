// Package core provides the cycle-accurate APEX core model.
// It wraps the pipeline implementation to provide a high-level interface:
// initialize from a program, run, inspect, shut down.
package core

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

// ErrShutdown is returned by operations on a core that has been shut down.
var ErrShutdown = errors.New("core is shut down")

// Geometry describes the fixed sizes of the architectural state.
type Geometry struct {
	Registers   int
	MemoryCells int
	CodeBase    int32
	InstWidth   int32
}

// Option configures a Core.
type Option func(*Core)

// WithLogger sets the logger shared by the core and its pipeline.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// WithTracer registers a per-cycle tracer on the pipeline.
func WithTracer(tracer pipeline.Tracer) Option {
	return func(c *Core) {
		c.tracers = append(c.tracers, tracer)
	}
}

// Core represents a cycle-accurate APEX core model.
// It wraps a 5-stage pipeline and owns its architectural state.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	program *insts.Program

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory

	logger  *logrus.Logger
	tracers []pipeline.Tracer

	shutdown bool
}

// New creates a Core that will run program from the code base.
// It fails if the program is missing or empty.
func New(program *insts.Program, opts ...Option) (*Core, error) {
	if program == nil || program.Len() == 0 {
		return nil, loader.ErrEmptyProgram
	}

	c := &Core{program: program}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetLevel(logrus.WarnLevel)
	}

	c.Reset()

	c.logger.WithField("instructions", program.Len()).Info("core initialized")

	return c, nil
}

// Load reads the program at path and creates a Core for it.
func Load(path string, opts ...Option) (*Core, error) {
	program, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return New(program, opts...)
}

// Reset clears all architectural state and restarts the program.
func (c *Core) Reset() {
	c.regFile = &emu.RegFile{}
	c.memory = emu.NewMemory()

	opts := []pipeline.PipelineOption{pipeline.WithLogger(c.logger)}
	for _, t := range c.tracers {
		opts = append(opts, pipeline.WithTracer(t))
	}
	c.Pipeline = pipeline.NewPipeline(c.program, c.regFile, c.memory, opts...)
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() error {
	if c.shutdown {
		return ErrShutdown
	}
	return c.Pipeline.Tick()
}

// Run executes the core until HALT retires or a fault stops it.
func (c *Core) Run() error {
	if c.shutdown {
		return ErrShutdown
	}
	return c.Pipeline.Run()
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) (bool, error) {
	if c.shutdown {
		return false, ErrShutdown
	}
	return c.Pipeline.RunCycles(cycles)
}

// Halted returns true if HALT has retired.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() pipeline.Statistics {
	return c.Pipeline.Stats()
}

// RegFile returns the architectural register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory returns the data memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Program returns the loaded program.
func (c *Core) Program() *insts.Program {
	return c.program
}

// Geometry returns the register count, data memory size and code layout.
func (c *Core) Geometry() Geometry {
	return Geometry{
		Registers:   emu.NumRegisters,
		MemoryCells: emu.DataMemorySize,
		CodeBase:    insts.CodeBase,
		InstWidth:   insts.InstWidth,
	}
}

// Summary returns the completion line printed at the end of a run.
func (c *Core) Summary() string {
	stats := c.Stats()
	status := "Complete"
	if !c.Halted() {
		status = "Stopped"
	}
	return fmt.Sprintf("APEX_CPU: Simulation %s, cycles = %d instructions = %d",
		status, stats.Cycles, stats.Instructions)
}

// Shutdown releases the core. Later runs fail with ErrShutdown.
func (c *Core) Shutdown() error {
	if c.shutdown {
		return ErrShutdown
	}
	c.shutdown = true

	stats := c.Stats()
	c.logger.WithFields(logrus.Fields{
		"cycles":       stats.Cycles,
		"instructions": stats.Instructions,
		"state":        c.Pipeline.State(),
	}).Info("core shut down")

	return nil
}
