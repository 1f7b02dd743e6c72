package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

var _ = Describe("ALU", func() {
	var (
		flags *emu.Flags
		alu   *emu.ALU
	)

	BeforeEach(func() {
		flags = &emu.Flags{}
		alu = emu.NewALU(flags)
	})

	DescribeTable("results",
		func(op insts.Op, rs1, rs2, imm, expected int32) {
			result, err := alu.Execute(insts.Instruction{Op: op, Imm: imm}, rs1, rs2)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(expected))
		},
		Entry("ADD", insts.OpADD, int32(7), int32(5), int32(0), int32(12)),
		Entry("SUB", insts.OpSUB, int32(7), int32(5), int32(0), int32(2)),
		Entry("MUL", insts.OpMUL, int32(7), int32(-5), int32(0), int32(-35)),
		Entry("DIV", insts.OpDIV, int32(17), int32(5), int32(0), int32(3)),
		Entry("AND", insts.OpAND, int32(0b1100), int32(0b1010), int32(0), int32(0b1000)),
		Entry("OR", insts.OpOR, int32(0b1100), int32(0b1010), int32(0), int32(0b1110)),
		Entry("XOR", insts.OpXOR, int32(0b1100), int32(0b1010), int32(0), int32(0b0110)),
		Entry("ADDL", insts.OpADDL, int32(7), int32(99), int32(3), int32(10)),
		Entry("SUBL", insts.OpSUBL, int32(7), int32(99), int32(3), int32(4)),
		Entry("MOVC", insts.OpMOVC, int32(7), int32(99), int32(-42), int32(-42)),
	)

	It("should recompute zero for ADD", func() {
		_, err := alu.Execute(insts.Instruction{Op: insts.OpADD}, 5, -5)
		Expect(err).NotTo(HaveOccurred())
		Expect(flags.Zero).To(BeTrue())

		_, _ = alu.Execute(insts.Instruction{Op: insts.OpADD}, 5, 5)
		Expect(flags.Zero).To(BeFalse())
	})

	It("should leave flags alone for MUL, OR and XOR", func() {
		flags.Zero = true
		for _, op := range []insts.Op{insts.OpMUL, insts.OpOR, insts.OpXOR} {
			_, err := alu.Execute(insts.Instruction{Op: op}, 3, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(flags.Zero).To(BeTrue(), op.String())
		}
	})

	It("should set zero from MOVC", func() {
		_, _ = alu.Execute(insts.Instruction{Op: insts.OpMOVC, Imm: 0}, 0, 0)
		Expect(flags.Zero).To(BeTrue())
	})

	It("should set compare flags for CMP and CML", func() {
		_, err := alu.Execute(insts.Instruction{Op: insts.OpCMP}, 1, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(*flags).To(Equal(emu.Flags{Negative: true}))

		_, err = alu.Execute(insts.Instruction{Op: insts.OpCML, Imm: 2}, 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(*flags).To(Equal(emu.Flags{Zero: true}))
	})

	It("should fault on division by zero", func() {
		_, err := alu.Execute(insts.Instruction{Op: insts.OpDIV}, 1, 0)
		Expect(err).To(MatchError(emu.ErrDivideByZero))
	})

	It("should reject non-ALU opcodes", func() {
		_, err := alu.Execute(insts.Instruction{Op: insts.OpLOAD}, 1, 0)
		Expect(err).To(MatchError(emu.ErrUnknownOpcode))
	})
})
