package pipeline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the number of completed cycles. The cycle in which HALT
	// reaches writeback ends the run and is not counted.
	Cycles uint64
	// Instructions is the number of instructions retired, HALT included.
	Instructions uint64
	// Fetched is the number of instructions read from the instruction store.
	Fetched uint64
	// Flushes is the number of taken control transfers that redirected fetch.
	Flushes uint64
	// Squashed is the number of wrong-path instructions discarded by flushes.
	Squashed uint64
	// FetchBubbles is the number of cycles fetch was suppressed after a redirect.
	FetchBubbles uint64
	// BranchesTaken is the number of taken jumps and branches.
	BranchesTaken uint64
	// BranchesNotTaken is the number of conditional branches that fell through.
	BranchesNotTaken uint64
	// StaleReads is the number of decoded instructions that read at least one
	// register an older in-flight instruction had not yet written back.
	StaleReads uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// State is the run state of the cycle driver.
type State int

// Driver states. Halted and Faulted are terminal.
const (
	StateRunning State = iota
	StateHalted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateHalted:
		return "HALTED"
	case StateFaulted:
		return "FAULTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNoProgram is returned when a pipeline is built without instructions.
var ErrNoProgram = errors.New("pipeline has no program")

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used for stage traces and run events.
func WithLogger(logger *logrus.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTracer registers a tracer that receives a snapshot after every cycle.
func WithTracer(tracer Tracer) PipelineOption {
	return func(p *Pipeline) {
		p.tracers = append(p.tracers, tracer)
	}
}

// Pipeline implements the APEX 5-stage in-order pipeline.
// Stages: Fetch (IF) -> Decode/RF (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
type Pipeline struct {
	// One latch per stage, holding the instruction that stage works on next.
	latches [NumStages]Latch

	// fetchSuppressed skips the next fetch after a redirect.
	fetchSuppressed bool

	// Pipeline stages
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	hazardUnit *HazardUnit

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory
	program *insts.Program

	// Program counter
	pc int32

	stats Statistics

	// Per-cycle view of what each stage processed.
	current Snapshot
	last    Snapshot
	tracers []Tracer

	logger *logrus.Logger

	// Execution state
	state State
	err   error
}

// NewPipeline creates a new 5-stage pipeline over the given program and
// architectural state. The PC starts at insts.CodeBase with fetch enabled.
func NewPipeline(
	program *insts.Program,
	regFile *emu.RegFile,
	memory *emu.Memory,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		fetchStage:     NewFetchStage(program),
		decodeStage:    NewDecodeStage(regFile),
		executeStage:   NewExecuteStage(regFile, memory),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     NewHazardUnit(),
		regFile:        regFile,
		memory:         memory,
		program:        program,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logrus.New()
		p.logger.SetLevel(logrus.WarnLevel)
	}

	p.SetPC(insts.CodeBase)
	p.latches[StageFetch].Valid = true

	if program == nil || program.Len() == 0 {
		p.state = StateFaulted
		p.err = ErrNoProgram
	}

	return p
}

// PC returns the current program counter.
func (p *Pipeline) PC() int32 {
	return p.pc
}

// SetPC sets the program counter.
func (p *Pipeline) SetPC(pc int32) {
	p.pc = pc
	p.regFile.PC = pc
}

// Latch returns a copy of the latch feeding the given stage.
func (p *Pipeline) Latch(stage Stage) Latch {
	return p.latches[stage]
}

// FetchSuppressed reports whether the next fetch will be skipped.
func (p *Pipeline) FetchSuppressed() bool {
	return p.fetchSuppressed
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// State returns the run state.
func (p *Pipeline) State() State {
	return p.state
}

// Halted returns true if the pipeline has halted.
func (p *Pipeline) Halted() bool {
	return p.state == StateHalted
}

// Err returns the fault that stopped the pipeline, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// LastSnapshot returns what each stage processed in the most recent cycle.
func (p *Pipeline) LastSnapshot() Snapshot {
	return p.last
}

// Run executes the pipeline until HALT retires or a fault occurs.
func (p *Pipeline) Run() error {
	for p.state == StateRunning {
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return p.err
}

// RunCycles executes the pipeline for at most the given number of cycles.
// Returns true if still running.
func (p *Pipeline) RunCycles(cycles uint64) (bool, error) {
	for i := uint64(0); i < cycles && p.state == StateRunning; i++ {
		if err := p.Tick(); err != nil {
			return false, err
		}
	}
	return p.state == StateRunning, p.err
}

// Tick executes one pipeline cycle.
//
// Stages are invoked in reverse order (WB→MEM→EX→ID→IF). Each stage consumes
// its own latch and then overwrites the latch of the stage after it, which
// that stage has already consumed this cycle. So no stage ever observes a
// value another stage produced in the same cycle, which models edge-triggered
// pipeline registers without double buffering.
//
// The same order lets an older instruction's writeback update the register
// file before a younger instruction's decode reads it within a cycle. Values
// still in MEM or EX are not forwarded: decode reads stale registers.
//
// A HALT reaching writeback ends the run at once; younger instructions still
// in flight never complete.
func (p *Pipeline) Tick() error {
	switch p.state {
	case StateHalted:
		return nil
	case StateFaulted:
		return p.err
	}

	p.current = Snapshot{Cycle: p.stats.Cycles}

	halt, err := p.doWriteback()
	if err != nil {
		return p.fault(StageWriteback, err)
	}
	if halt {
		p.state = StateHalted
		p.publish()
		p.logger.WithFields(logrus.Fields{
			"cycles":       p.stats.Cycles,
			"instructions": p.stats.Instructions,
		}).Info("simulation complete")
		return nil
	}

	if err := p.doMemory(); err != nil {
		return p.fault(StageMemory, err)
	}
	if err := p.doExecute(); err != nil {
		return p.fault(StageExecute, err)
	}
	if err := p.doDecode(); err != nil {
		return p.fault(StageDecode, err)
	}
	if err := p.doFetch(); err != nil {
		return p.fault(StageFetch, err)
	}

	p.publish()
	p.stats.Cycles++

	return nil
}

func (p *Pipeline) doWriteback() (bool, error) {
	l := &p.latches[StageWriteback]
	if !l.Valid {
		return false, nil
	}

	if l.FetchErr != nil {
		p.record(StageWriteback, *l)
		return false, l.FetchErr
	}

	if err := p.writebackStage.Writeback(l); err != nil {
		return false, err
	}

	p.record(StageWriteback, *l)
	p.stats.Instructions++
	l.Valid = false

	return l.Inst.Op == insts.OpHALT, nil
}

func (p *Pipeline) doMemory() error {
	l := &p.latches[StageMemory]
	if !l.Valid {
		return nil
	}

	if l.FetchErr != nil {
		p.pass(StageMemory)
		return nil
	}

	if err := p.memoryStage.Access(l); err != nil {
		return err
	}

	p.record(StageMemory, *l)
	p.latches[StageWriteback] = *l
	l.Valid = false

	return nil
}

func (p *Pipeline) doExecute() error {
	l := &p.latches[StageExecute]
	if !l.Valid {
		return nil
	}

	if l.FetchErr != nil {
		p.pass(StageExecute)
		return nil
	}

	taken, err := p.executeStage.Execute(l)
	if err != nil {
		return err
	}

	if l.Inst.Info().Control {
		if taken {
			p.stats.BranchesTaken++
			p.redirect(l.Target)
		} else {
			p.stats.BranchesNotTaken++
		}
	}

	p.record(StageExecute, *l)
	p.latches[StageMemory] = *l
	l.Valid = false

	return nil
}

func (p *Pipeline) doDecode() error {
	l := &p.latches[StageDecode]
	if !l.Valid {
		return nil
	}

	if l.FetchErr != nil {
		p.pass(StageDecode)
		return nil
	}

	stale := p.hazardUnit.StaleSources(l, &p.latches[StageMemory], &p.latches[StageWriteback])
	if len(stale) > 0 {
		p.stats.StaleReads++
		if p.logger.IsLevelEnabled(logrus.DebugLevel) {
			p.logger.WithFields(logrus.Fields{
				"cycle":     p.stats.Cycles,
				"pc":        l.PC,
				"registers": stale,
			}).Debug("decode reads registers with pending writes")
		}
	}

	if err := p.decodeStage.Decode(l); err != nil {
		return err
	}

	p.record(StageDecode, *l)
	p.latches[StageExecute] = *l
	l.Valid = false

	return nil
}

func (p *Pipeline) doFetch() error {
	l := &p.latches[StageFetch]
	if !l.Valid {
		return nil
	}

	if p.fetchSuppressed {
		p.fetchSuppressed = false
		p.stats.FetchBubbles++
		return nil
	}

	inst, err := p.fetchStage.Fetch(p.pc)
	if err != nil {
		// Fetch past the store stops fetching. The slot travels down the
		// pipeline behind the older instructions and faults in writeback
		// unless a flush discards it first.
		*l = Latch{Valid: true, PC: p.pc, FetchErr: err}
		p.latches[StageDecode] = *l
		p.record(StageFetch, *l)
		l.Valid = false
		return nil
	}

	*l = Latch{Valid: true, PC: p.pc, Inst: inst}
	p.SetPC(p.pc + insts.InstWidth)
	p.stats.Fetched++

	p.record(StageFetch, *l)
	p.latches[StageDecode] = *l

	switch inst.Op {
	case insts.OpHALT:
		l.Valid = false
	case insts.OpNOP:
		p.latches[StageDecode].Valid = false
	}

	return nil
}

// pass moves a poisoned fetch slot on to the next stage untouched.
func (p *Pipeline) pass(stage Stage) {
	l := &p.latches[stage]
	p.record(stage, *l)
	p.latches[stage+1] = *l
	l.Valid = false
}

// redirect steers fetch to target after a taken control transfer. The
// instruction in decode was fetched down the wrong path and is discarded.
// Fetch is re-enabled in case the wrong path fetched a HALT, and skips the
// current cycle.
func (p *Pipeline) redirect(target int32) {
	p.stats.Flushes++
	if p.latches[StageDecode].Valid {
		p.stats.Squashed++
	}

	p.SetPC(target)
	p.fetchSuppressed = true
	p.latches[StageDecode].Valid = false
	p.latches[StageFetch].Valid = true
}

func (p *Pipeline) fault(stage Stage, err error) error {
	l := p.latches[stage]
	f := &emu.Fault{
		Stage: stage.String(),
		Cycle: p.stats.Cycles,
		PC:    l.PC,
		Inst:  l.Inst,
		Err:   err,
	}
	if stage == StageFetch {
		f.PC = p.pc
		f.Inst = insts.Instruction{}
	}
	if l.FetchErr != nil {
		f.Stage = StageFetch.String()
	}

	p.state = StateFaulted
	p.err = f
	p.publish()

	p.logger.WithFields(logrus.Fields{
		"cycle": f.Cycle,
		"stage": f.Stage,
		"pc":    f.PC,
	}).WithError(err).Error("pipeline fault")

	return f
}
