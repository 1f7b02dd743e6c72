// Package pipeline provides the 5-stage pipeline implementation for timing simulation.
package pipeline

import (
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

// Stage identifies one of the five pipeline stages.
type Stage int

// Pipeline stages in program order.
const (
	StageFetch Stage = iota
	StageDecode
	StageExecute
	StageMemory
	StageWriteback

	// NumStages is the pipeline depth.
	NumStages
)

var stageNames = [NumStages]string{"fetch", "decode", "execute", "memory", "writeback"}

// Display names match the classic APEX trace output.
var stageLabels = [NumStages]string{"Fetch", "Decode/RF", "Execute", "Memory", "Writeback"}

func (s Stage) String() string {
	if s < 0 || s >= NumStages {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Label returns the name used in per-cycle traces.
func (s Stage) Label() string {
	if s < 0 || s >= NumStages {
		return s.String()
	}
	return stageLabels[s]
}

// Latch holds one in-flight instruction as it moves from stage to stage.
// Latches are plain values: a stage hands its instruction on by copying the
// whole latch into the next stage's slot.
//
// When Valid is false every other field is stale and must not be read.
type Latch struct {
	// Valid indicates if this latch holds an instruction. For the fetch
	// latch it also means fetching is enabled.
	Valid bool

	// PC is the program counter the instruction was fetched from.
	PC int32

	// Inst is the instruction: opcode, register ids and immediate.
	Inst insts.Instruction

	// Source values read from the register file in decode.
	Rs1Value int32
	Rs2Value int32

	// Result is the destination value: ALU result, loaded data, or the
	// JALR return address.
	Result int32

	// MemAddr is the effective address of a load or store.
	MemAddr int32

	// StoreValue is the data a store writes.
	StoreValue int32

	// BaseValue is the post-incremented base register of LOADP and STOREP.
	BaseValue int32

	// Taken and Target record the resolution of a control transfer.
	Taken  bool
	Target int32

	// FetchErr is set when fetch ran past the instruction store. The fault
	// is raised when the slot reaches writeback, unless a flush drops it.
	FetchErr error
}

// Clear resets the latch to empty state.
func (l *Latch) Clear() {
	*l = Latch{}
}

// String renders the latch as "pc(4000) MOVC,R1,#5", or "" when empty.
func (l Latch) String() string {
	if !l.Valid {
		return ""
	}
	if l.FetchErr != nil {
		return fmt.Sprintf("pc(%d) <invalid fetch>", l.PC)
	}
	return fmt.Sprintf("pc(%d) %s", l.PC, l.Inst)
}
