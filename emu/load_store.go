package emu

import (
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

const (
	// DataMemorySize is the number of cells in data memory.
	DataMemorySize = 4096

	// PostIncrement is added to the base register by LOADP and STOREP.
	PostIncrement int32 = 4
)

// Memory is the APEX data memory: word-addressed signed cells.
// The effective address of a load or store is the cell index.
type Memory struct {
	cells [DataMemorySize]int32
}

// NewMemory creates a zeroed data memory.
func NewMemory() *Memory {
	return &Memory{}
}

// ValidAddr reports whether addr names a memory cell.
func ValidAddr(addr int32) bool {
	return addr >= 0 && addr < DataMemorySize
}

// Read returns the cell at addr.
func (m *Memory) Read(addr int32) (int32, error) {
	if !ValidAddr(addr) {
		return 0, fmt.Errorf("%w: address %d (memory has %d cells)",
			ErrMemoryOutOfRange, addr, DataMemorySize)
	}
	return m.cells[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr, value int32) error {
	if !ValidAddr(addr) {
		return fmt.Errorf("%w: address %d (memory has %d cells)",
			ErrMemoryOutOfRange, addr, DataMemorySize)
	}
	m.cells[addr] = value
	return nil
}

// Cell is one non-zero memory location.
type Cell struct {
	Addr  int32
	Value int32
}

// NonZero returns every cell holding a non-zero value, in address order.
func (m *Memory) NonZero() []Cell {
	var out []Cell
	for i, v := range m.cells {
		if v != 0 {
			out = append(out, Cell{Addr: int32(i), Value: v})
		}
	}
	return out
}

// LoadStoreUnit performs APEX address generation and data memory access.
type LoadStoreUnit struct {
	memory *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given memory.
func NewLoadStoreUnit(memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{memory: memory}
}

// Address computes base + immediate for a memory instruction, and the
// post-incremented base for LOADP and STOREP.
func (lsu *LoadStoreUnit) Address(inst insts.Instruction, base int32) (addr, newBase int32) {
	addr = base + inst.Imm
	newBase = base
	if inst.Info().WritesBase {
		newBase = base + PostIncrement
	}
	return addr, newBase
}

// Access reads (loads) or writes (stores) the addressed cell. For loads the
// returned value is the cell contents; for stores it is the stored value.
func (lsu *LoadStoreUnit) Access(inst insts.Instruction, addr, storeValue int32) (int32, error) {
	info := inst.Info()
	switch {
	case info.MemRead:
		return lsu.memory.Read(addr)
	case info.MemWrite:
		return storeValue, lsu.memory.Write(addr, storeValue)
	default:
		return 0, fmt.Errorf("%w: %s does not access memory", ErrUnknownOpcode, inst.Op)
	}
}
