// Package report renders simulation results as text tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

// registersPerRow splits the register file dump into two rows of eight.
const registersPerRow = emu.NumRegisters / 2

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	if len(header) > 0 {
		table.SetHeader(header)
	}
	return table
}

// Registers prints the register file in two rows of eight, then the flags.
func Registers(w io.Writer, rf *emu.RegFile) error {
	if _, err := fmt.Fprintln(w, "Registers:"); err != nil {
		return err
	}

	for start := 0; start < emu.NumRegisters; start += registersPerRow {
		header := make([]string, 0, registersPerRow)
		values := make([]string, 0, registersPerRow)
		for i := start; i < start+registersPerRow; i++ {
			header = append(header, fmt.Sprintf("R%d", i))
			values = append(values, strconv.Itoa(int(rf.R[i])))
		}

		table := newTable(w, header...)
		table.Append(values)
		table.Render()
	}

	_, err := fmt.Fprintf(w, "Flags: Z=%d P=%d N=%d\n",
		bit(rf.Flags.Zero), bit(rf.Flags.Positive), bit(rf.Flags.Negative))
	return err
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Stats prints the pipeline statistics.
func Stats(w io.Writer, s pipeline.Statistics) {
	table := newTable(w, "Statistic", "Value")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"Cycles", strconv.FormatUint(s.Cycles, 10)},
		{"Instructions", strconv.FormatUint(s.Instructions, 10)},
		{"CPI", fmt.Sprintf("%.3f", s.CPI())},
		{"Fetched", strconv.FormatUint(s.Fetched, 10)},
		{"Branches taken", strconv.FormatUint(s.BranchesTaken, 10)},
		{"Branches not taken", strconv.FormatUint(s.BranchesNotTaken, 10)},
		{"Flushes", strconv.FormatUint(s.Flushes, 10)},
		{"Squashed", strconv.FormatUint(s.Squashed, 10)},
		{"Fetch bubbles", strconv.FormatUint(s.FetchBubbles, 10)},
		{"Stale reads", strconv.FormatUint(s.StaleReads, 10)},
	})
	table.Render()
}

// Memory prints data memory cells. With n > 0 the first n cells are printed;
// otherwise only non-zero cells are.
func Memory(w io.Writer, m *emu.Memory, n int) error {
	var cells []emu.Cell
	if n > 0 {
		if n > emu.DataMemorySize {
			n = emu.DataMemorySize
		}
		for addr := int32(0); addr < int32(n); addr++ {
			value, err := m.Read(addr)
			if err != nil {
				return err
			}
			cells = append(cells, emu.Cell{Addr: addr, Value: value})
		}
	} else {
		cells = m.NonZero()
	}

	table := newTable(w, "Address", "Value")
	for _, c := range cells {
		table.Append([]string{strconv.Itoa(int(c.Addr)), strconv.Itoa(int(c.Value))})
	}
	table.Render()

	return nil
}

// Program prints the loaded code memory, one instruction per row.
func Program(w io.Writer, p *insts.Program) {
	table := newTable(w, "PC", "Instruction", "Opcode", "Rd", "Rs1", "Rs2", "Imm")
	for i, inst := range p.Instructions() {
		table.Append([]string{
			strconv.Itoa(int(insts.PC(i))),
			inst.String(),
			inst.Op.String(),
			strconv.Itoa(int(inst.Rd)),
			strconv.Itoa(int(inst.Rs1)),
			strconv.Itoa(int(inst.Rs2)),
			strconv.Itoa(int(inst.Imm)),
		})
	}
	table.SetCaption(true, fmt.Sprintf("%d instructions loaded", p.Len()))
	table.Render()
}
