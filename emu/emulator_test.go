package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

var _ = Describe("Emulator", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator()
	})

	load := func(list ...insts.Instruction) {
		e.LoadProgram(insts.NewProgram(list))
	}

	It("should set the PC to the code base on load", func() {
		load(insts.Instruction{Op: insts.OpHALT})
		Expect(e.RegFile().PC).To(Equal(insts.CodeBase))
	})

	It("should see results immediately, with no pipeline hazard", func() {
		load(
			insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: 5},
			insts.Instruction{Op: insts.OpADD, Rd: 2, Rs1: 1, Rs2: 1},
			insts.Instruction{Op: insts.OpHALT},
		)

		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().ReadReg(2)).To(Equal(int32(10)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
		Expect(e.Halted()).To(BeTrue())
	})

	It("should not count NOPs", func() {
		load(
			insts.Instruction{Op: insts.OpNOP},
			insts.Instruction{Op: insts.OpNOP},
			insts.Instruction{Op: insts.OpHALT},
		)

		Expect(e.Run()).To(Succeed())
		Expect(e.InstructionCount()).To(Equal(uint64(1)))
	})

	It("should run a counted loop", func() {
		// R1 = 3; loop: R2 += 2; R1 -= 1; BNZ loop
		load(
			insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: 3},
			insts.Instruction{Op: insts.OpADDL, Rd: 2, Rs1: 2, Imm: 2},
			insts.Instruction{Op: insts.OpSUBL, Rd: 1, Rs1: 1, Imm: 1},
			insts.Instruction{Op: insts.OpBNZ, Imm: -8},
			insts.Instruction{Op: insts.OpHALT},
		)

		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().ReadReg(2)).To(Equal(int32(6)))
		Expect(e.RegFile().ReadReg(1)).To(Equal(int32(0)))
	})

	It("should execute post-increment loads and stores", func() {
		load(
			insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: 42},
			insts.Instruction{Op: insts.OpMOVC, Rd: 2, Imm: 100},
			insts.Instruction{Op: insts.OpSTOREP, Rs1: 1, Rs2: 2, Imm: 0},
			insts.Instruction{Op: insts.OpMOVC, Rd: 3, Imm: 100},
			insts.Instruction{Op: insts.OpLOADP, Rd: 4, Rs1: 3, Imm: 0},
			insts.Instruction{Op: insts.OpHALT},
		)

		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().ReadReg(2)).To(Equal(int32(104)))
		Expect(e.RegFile().ReadReg(3)).To(Equal(int32(104)))
		Expect(e.RegFile().ReadReg(4)).To(Equal(int32(42)))
		v, _ := e.Memory().Read(100)
		Expect(v).To(Equal(int32(42)))
	})

	It("should link and return through JALR and JUMP", func() {
		load(
			insts.Instruction{Op: insts.OpMOVC, Rd: 5, Imm: 4012},      // 4000
			insts.Instruction{Op: insts.OpJALR, Rd: 6, Rs1: 5, Imm: 0}, // 4004
			insts.Instruction{Op: insts.OpHALT},                        // 4008
			insts.Instruction{Op: insts.OpMOVC, Rd: 7, Imm: 1},         // 4012
			insts.Instruction{Op: insts.OpJUMP, Rs1: 6, Imm: 0},        // 4016
		)

		Expect(e.Run()).To(Succeed())
		Expect(e.RegFile().ReadReg(6)).To(Equal(int32(4008)))
		Expect(e.RegFile().ReadReg(7)).To(Equal(int32(1)))
	})

	It("should report a fault for out-of-range memory", func() {
		load(
			insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: -1},
			insts.Instruction{Op: insts.OpLOAD, Rd: 2, Rs1: 1, Imm: 0},
			insts.Instruction{Op: insts.OpHALT},
		)

		err := e.Run()
		Expect(err).To(MatchError(emu.ErrMemoryOutOfRange))

		var fault *emu.Fault
		Expect(errors.As(err, &fault)).To(BeTrue())
		Expect(fault.PC).To(Equal(insts.CodeBase + 4))
		Expect(fault.Inst.Op).To(Equal(insts.OpLOAD))
	})

	It("should report running off the end of the program", func() {
		load(insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: 1})

		Expect(e.Run()).To(MatchError(emu.ErrFetchOutOfRange))
	})

	It("should stop at the instruction limit", func() {
		e = emu.NewEmulator(emu.WithMaxInstructions(10))
		load(insts.Instruction{Op: insts.OpJUMP, Rs1: 0, Imm: insts.CodeBase})

		Expect(e.Run()).To(MatchError(emu.ErrInstructionLimit))
	})

	It("should use injected state", func() {
		regFile := &emu.RegFile{}
		regFile.WriteReg(1, 9)
		memory := emu.NewMemory()
		e = emu.NewEmulator(emu.WithRegFile(regFile), emu.WithMemory(memory))
		load(
			insts.Instruction{Op: insts.OpSTORE, Rs1: 1, Rs2: 0, Imm: 3},
			insts.Instruction{Op: insts.OpHALT},
		)

		Expect(e.Run()).To(Succeed())
		v, _ := memory.Read(3)
		Expect(v).To(Equal(int32(9)))
	})
})
