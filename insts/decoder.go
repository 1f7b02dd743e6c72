// Package insts provides APEX instruction definitions and decoding.
package insts

import "strings"

// Op represents an APEX opcode.
type Op uint8

// APEX opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpAND
	OpOR
	OpXOR
	OpMOVC
	OpLOAD
	OpSTORE
	OpBZ
	OpBNZ
	OpHALT
	OpLOADP
	OpSTOREP
	OpADDL
	OpSUBL
	OpCMP
	OpJUMP
	OpJALR
	OpCML
	OpBP
	OpBNP
	OpBN
	OpBNN
	OpNOP

	numOps
)

// Format represents the operand layout of an instruction in assembly form.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatRRR            // OP,Rd,Rs1,Rs2
	FormatRRI            // OP,Rd,Rs1,#imm
	FormatRI             // OP,Rd,#imm
	FormatStore          // OP,Rs1,Rs2,#imm
	FormatCmp            // OP,Rs1,Rs2
	FormatCmpImm         // OP,Rs1,#imm
	FormatBranch         // OP,#imm
	FormatJump           // OP,Rs1,#imm
	FormatNone           // OP
)

// Info describes the static per-stage behavior of an opcode.
type Info struct {
	Mnemonic string
	Format   Format

	// ReadsRs1 and ReadsRs2 tell decode which source registers to resolve.
	ReadsRs1 bool
	ReadsRs2 bool

	// WritesRd is set for opcodes whose writeback commits Rd.
	WritesRd bool

	// WritesBase is set for post-increment memory ops, which also commit the
	// updated base register.
	WritesBase bool

	// SetsZero recomputes the zero flag from the execute result.
	SetsZero bool

	// SetsCompare sets all three flags from a three-way comparison.
	SetsCompare bool

	MemRead  bool
	MemWrite bool

	// Control marks jumps and branches, resolved in execute.
	Control bool
}

var opInfo = [numOps]Info{
	OpUnknown: {Mnemonic: "UNKNOWN"},
	OpADD:     {Mnemonic: "ADD", Format: FormatRRR, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsZero: true},
	OpSUB:     {Mnemonic: "SUB", Format: FormatRRR, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsZero: true},
	OpMUL:     {Mnemonic: "MUL", Format: FormatRRR, ReadsRs1: true, ReadsRs2: true, WritesRd: true},
	OpDIV:     {Mnemonic: "DIV", Format: FormatRRR, ReadsRs1: true, ReadsRs2: true, WritesRd: true},
	OpAND:     {Mnemonic: "AND", Format: FormatRRR, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsZero: true},
	OpOR:      {Mnemonic: "OR", Format: FormatRRR, ReadsRs1: true, ReadsRs2: true, WritesRd: true},
	OpXOR:     {Mnemonic: "XOR", Format: FormatRRR, ReadsRs1: true, ReadsRs2: true, WritesRd: true},
	OpMOVC:    {Mnemonic: "MOVC", Format: FormatRI, WritesRd: true, SetsZero: true},
	OpLOAD:    {Mnemonic: "LOAD", Format: FormatRRI, ReadsRs1: true, WritesRd: true, MemRead: true},
	OpSTORE:   {Mnemonic: "STORE", Format: FormatStore, ReadsRs1: true, ReadsRs2: true, MemWrite: true},
	OpBZ:      {Mnemonic: "BZ", Format: FormatBranch, Control: true},
	OpBNZ:     {Mnemonic: "BNZ", Format: FormatBranch, Control: true},
	OpHALT:    {Mnemonic: "HALT", Format: FormatNone},
	OpLOADP:   {Mnemonic: "LOADP", Format: FormatRRI, ReadsRs1: true, WritesRd: true, WritesBase: true, MemRead: true},
	OpSTOREP:  {Mnemonic: "STOREP", Format: FormatStore, ReadsRs1: true, ReadsRs2: true, WritesBase: true, MemWrite: true},
	OpADDL:    {Mnemonic: "ADDL", Format: FormatRRI, ReadsRs1: true, WritesRd: true, SetsZero: true},
	OpSUBL:    {Mnemonic: "SUBL", Format: FormatRRI, ReadsRs1: true, WritesRd: true, SetsZero: true},
	OpCMP:     {Mnemonic: "CMP", Format: FormatCmp, ReadsRs1: true, ReadsRs2: true, SetsCompare: true},
	OpJUMP:    {Mnemonic: "JUMP", Format: FormatJump, ReadsRs1: true, Control: true},
	OpJALR:    {Mnemonic: "JALR", Format: FormatRRI, ReadsRs1: true, WritesRd: true, Control: true},
	OpCML:     {Mnemonic: "CML", Format: FormatCmpImm, ReadsRs1: true, SetsCompare: true},
	OpBP:      {Mnemonic: "BP", Format: FormatBranch, Control: true},
	OpBNP:     {Mnemonic: "BNP", Format: FormatBranch, Control: true},
	OpBN:      {Mnemonic: "BN", Format: FormatBranch, Control: true},
	OpBNN:     {Mnemonic: "BNN", Format: FormatBranch, Control: true},
	OpNOP:     {Mnemonic: "NOP", Format: FormatNone},
}

var mnemonics = func() map[string]Op {
	m := make(map[string]Op, numOps)
	for op := OpADD; op < numOps; op++ {
		m[opInfo[op].Mnemonic] = op
	}
	return m
}()

// Info returns the static description of the opcode.
func (o Op) Info() Info {
	if o >= numOps {
		return opInfo[OpUnknown]
	}
	return opInfo[o]
}

// Valid reports whether o is a defined opcode.
func (o Op) Valid() bool {
	return o > OpUnknown && o < numOps
}

func (o Op) String() string {
	return o.Info().Mnemonic
}

// AllOps returns every defined opcode in encoding order.
func AllOps() []Op {
	ops := make([]Op, 0, numOps-1)
	for op := OpADD; op < numOps; op++ {
		ops = append(ops, op)
	}
	return ops
}

// Decoder maps assembly mnemonics to opcodes.
type Decoder struct{}

// NewDecoder creates a new APEX mnemonic decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode returns the opcode for a mnemonic. Matching is case-insensitive.
// Unrecognized mnemonics decode to OpUnknown.
func (d *Decoder) Decode(mnemonic string) Op {
	op, ok := mnemonics[strings.ToUpper(strings.TrimSpace(mnemonic))]
	if !ok {
		return OpUnknown
	}
	return op
}
