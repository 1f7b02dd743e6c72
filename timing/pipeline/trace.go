package pipeline

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Snapshot records the instruction each stage processed in one cycle. A stage
// that was idle, or whose fetch was suppressed, holds an invalid latch.
type Snapshot struct {
	Cycle  uint64
	Stages [NumStages]Latch
}

// Active reports whether the stage processed an instruction in this cycle.
func (s Snapshot) Active(stage Stage) bool {
	return s.Stages[stage].Valid
}

// Occupancy returns the number of stages that processed an instruction.
func (s Snapshot) Occupancy() int {
	n := 0
	for _, l := range s.Stages {
		if l.Valid {
			n++
		}
	}
	return n
}

// Write prints the snapshot in the classic APEX per-cycle format:
//
//	--------------------------------
//	Clock Cycle #: 3
//	--------------------------------
//	Writeback    :
//	Memory       : pc(4000) MOVC,R1,#5
//	...
func (s Snapshot) Write(w io.Writer) error {
	const rule = "--------------------------------"
	if _, err := fmt.Fprintf(w, "%s\nClock Cycle #: %d\n%s\n", rule, s.Cycle, rule); err != nil {
		return err
	}

	for stage := StageWriteback; stage >= StageFetch; stage-- {
		if _, err := fmt.Fprintf(w, "%-13s: %s\n", stage.Label(), s.Stages[stage]); err != nil {
			return err
		}
	}

	return nil
}

// Tracer receives a snapshot at the end of every simulated cycle.
type Tracer interface {
	Trace(s Snapshot)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(s Snapshot)

// Trace calls f(s).
func (f TracerFunc) Trace(s Snapshot) {
	f(s)
}

// WriterTracer prints every snapshot to an io.Writer. Write errors stop
// further output and are kept in Err.
type WriterTracer struct {
	w   io.Writer
	Err error
}

// NewWriterTracer creates a tracer that prints to w.
func NewWriterTracer(w io.Writer) *WriterTracer {
	return &WriterTracer{w: w}
}

// Trace implements Tracer.
func (t *WriterTracer) Trace(s Snapshot) {
	if t.Err != nil {
		return
	}
	t.Err = s.Write(t.w)
}

func (p *Pipeline) record(stage Stage, l Latch) {
	p.current.Stages[stage] = l

	if p.logger.IsLevelEnabled(logrus.DebugLevel) {
		p.logger.WithFields(logrus.Fields{
			"cycle": p.stats.Cycles,
			"stage": stage.String(),
			"pc":    l.PC,
		}).Debug(l.String())
	}
}

func (p *Pipeline) publish() {
	p.last = p.current
	for _, t := range p.tracers {
		t.Trace(p.last)
	}
}
