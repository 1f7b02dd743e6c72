// Package emu provides the APEX architectural state and functional emulation.
package emu

import "fmt"

// NumRegisters is the size of the integer register file.
const NumRegisters = 16

// RegFile represents the APEX architectural register state.
// It contains 16 general-purpose registers (R0-R15), the program counter
// and the condition flags.
type RegFile struct {
	// R holds general-purpose registers R0-R15. All are readable and writable.
	R [NumRegisters]int32

	// PC is the program counter.
	PC int32

	// Flags holds the condition flags.
	Flags Flags
}

// Flags represents the condition flags.
// Compares keep them mutually exclusive; arithmetic only touches Zero.
type Flags struct {
	// Zero is set when the last flag-setting result was zero or equal.
	Zero bool
	// Positive is set when the last compare found its first operand greater.
	Positive bool
	// Negative is set when the last compare found its first operand smaller.
	Negative bool
}

// SetZero recomputes the zero flag from a result. Other flags are untouched.
func (f *Flags) SetZero(result int32) {
	f.Zero = result == 0
}

// Compare sets the flags from a three-way comparison of a and b.
func (f *Flags) Compare(a, b int32) {
	f.Zero = a == b
	f.Negative = a < b
	f.Positive = a > b
}

// ValidReg reports whether reg names a register in the file.
func ValidReg(reg uint8) bool {
	return int(reg) < NumRegisters
}

// Read returns the value of a register.
func (r *RegFile) Read(reg uint8) (int32, error) {
	if !ValidReg(reg) {
		return 0, fmt.Errorf("%w: R%d (file has %d registers)",
			ErrRegisterOutOfRange, reg, NumRegisters)
	}
	return r.R[reg], nil
}

// Write sets the value of a register.
func (r *RegFile) Write(reg uint8, value int32) error {
	if !ValidReg(reg) {
		return fmt.Errorf("%w: R%d (file has %d registers)",
			ErrRegisterOutOfRange, reg, NumRegisters)
	}
	r.R[reg] = value
	return nil
}

// ReadReg reads a register value. Out-of-range registers read as 0.
func (r *RegFile) ReadReg(reg uint8) int32 {
	v, _ := r.Read(reg)
	return v
}

// WriteReg writes a register value. Writes to out-of-range registers are ignored.
func (r *RegFile) WriteReg(reg uint8, value int32) {
	_ = r.Write(reg, value)
}
