package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/timing/core"
	"github.com/sarchlab/apexsim/timing/engine"
)

func newCore(list ...insts.Instruction) *core.Core {
	c, err := core.New(insts.NewProgram(list))
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Engine", func() {
	It("should run a core to completion like the direct loop", func() {
		list := []insts.Instruction{
			{Op: insts.OpMOVC, Rd: 1, Imm: 9},
			{Op: insts.OpNOP},
			{Op: insts.OpNOP},
			{Op: insts.OpADD, Rd: 2, Rs1: 1, Rs2: 1},
			{Op: insts.OpHALT},
		}

		direct := newCore(list...)
		Expect(direct.Run()).To(Succeed())

		driven := newCore(list...)
		result, err := engine.Run(driven, 1*sim.GHz)
		Expect(err).NotTo(HaveOccurred())

		Expect(driven.Halted()).To(BeTrue())
		Expect(driven.RegFile().R[2]).To(Equal(int32(18)))
		Expect(driven.Stats()).To(Equal(direct.Stats()))
		Expect(result.Cycles).To(Equal(direct.Stats().Cycles))
		Expect(float64(result.Time)).To(BeNumerically(">", 0))
	})

	It("should stop on a fault and report it", func() {
		c := newCore(insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: 1})

		_, err := engine.Run(c, engine.MHz(500))

		Expect(err).To(MatchError(emu.ErrFetchOutOfRange))
		Expect(c.Halted()).To(BeFalse())
	})

	It("should convert megahertz", func() {
		Expect(engine.MHz(1000)).To(Equal(1 * sim.GHz))
	})
})
