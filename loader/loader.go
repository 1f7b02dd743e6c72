// Package loader reads APEX assembly programs.
//
// A program is a text file with one instruction per line, operands separated
// by commas:
//
//	MOVC,R1,#5
//	ADD,R2,R1,R1   ; comments run to the end of the line
//	HALT
//
// Mnemonics and register names are case-insensitive. Blank lines are skipped.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

var (
	// ErrEmptyProgram is returned for a source with no instructions.
	ErrEmptyProgram = errors.New("program has no instructions")
	// ErrSyntax is returned for a malformed instruction line.
	ErrSyntax = errors.New("syntax error")
)

// commentPrefix starts a comment that runs to the end of the line.
const commentPrefix = ";"

// Load reads and parses the program at path.
func Load(path string) (*insts.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return prog, nil
}

// Parse reads a program from r.
func Parse(r io.Reader) (*insts.Program, error) {
	decoder := insts.NewDecoder()
	scanner := bufio.NewScanner(r)

	var list []insts.Instruction
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if i := strings.Index(line, commentPrefix); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		inst, err := parseLine(decoder, line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNo, err)
		}
		list = append(list, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if len(list) == 0 {
		return nil, ErrEmptyProgram
	}

	return insts.NewProgram(list), nil
}

// ParseLine parses a single instruction such as "LOAD,R2,R1,#8".
func ParseLine(line string) (insts.Instruction, error) {
	inst, err := parseLine(insts.NewDecoder(), line)
	if err != nil {
		return insts.Instruction{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return inst, nil
}

func parseLine(decoder *insts.Decoder, line string) (insts.Instruction, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return insts.Instruction{}, fmt.Errorf("empty instruction")
	}

	op := decoder.Decode(fields[0])
	if op == insts.OpUnknown {
		return insts.Instruction{}, fmt.Errorf("unknown mnemonic %q", fields[0])
	}

	inst := insts.Instruction{Op: op, Mnemonic: fields[0]}
	operands := fields[1:]

	var layout []operand
	switch op.Info().Format {
	case insts.FormatRRR:
		layout = []operand{opRd, opRs1, opRs2}
	case insts.FormatRRI:
		layout = []operand{opRd, opRs1, opImm}
	case insts.FormatRI:
		layout = []operand{opRd, opImm}
	case insts.FormatStore:
		layout = []operand{opRs1, opRs2, opImm}
	case insts.FormatCmp:
		layout = []operand{opRs1, opRs2}
	case insts.FormatCmpImm, insts.FormatJump:
		layout = []operand{opRs1, opImm}
	case insts.FormatBranch:
		layout = []operand{opImm}
	}

	if len(operands) != len(layout) {
		return insts.Instruction{}, fmt.Errorf("%s takes %d operands, got %d",
			op, len(layout), len(operands))
	}

	for i, kind := range layout {
		if err := kind.set(&inst, operands[i]); err != nil {
			return insts.Instruction{}, fmt.Errorf("%s operand %d: %w", op, i+1, err)
		}
	}

	return inst, nil
}

type operand int

const (
	opRd operand = iota
	opRs1
	opRs2
	opImm
)

func (o operand) set(inst *insts.Instruction, text string) error {
	if o == opImm {
		imm, err := parseImmediate(text)
		if err != nil {
			return err
		}
		inst.Imm = imm
		return nil
	}

	reg, err := parseRegister(text)
	if err != nil {
		return err
	}
	switch o {
	case opRd:
		inst.Rd = reg
	case opRs1:
		inst.Rs1 = reg
	case opRs2:
		inst.Rs2 = reg
	}
	return nil
}

func parseRegister(text string) (uint8, error) {
	if len(text) < 2 || (text[0] != 'R' && text[0] != 'r') {
		return 0, fmt.Errorf("expected register, got %q", text)
	}

	n, err := strconv.ParseUint(text[1:], 10, 8)
	if err != nil || !emu.ValidReg(uint8(n)) {
		return 0, fmt.Errorf("register %q out of range R0-R%d", text, emu.NumRegisters-1)
	}

	return uint8(n), nil
}

func parseImmediate(text string) (int32, error) {
	if !strings.HasPrefix(text, "#") {
		return 0, fmt.Errorf("expected #immediate, got %q", text)
	}

	n, err := strconv.ParseInt(text[1:], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad immediate %q", text)
	}

	return int32(n), nil
}
