package core_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/core"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

func program(list ...insts.Instruction) *insts.Program {
	return insts.NewProgram(list)
}

var (
	halt = insts.Instruction{Op: insts.OpHALT}
	nop  = insts.Instruction{Op: insts.OpNOP}
)

var _ = Describe("Core", func() {
	var c *core.Core

	BeforeEach(func() {
		var err error
		c, err = core.New(program(
			insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: 42},
			nop, nop, nop, nop, nop, nop,
			halt,
		))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should create a core with pipeline", func() {
		Expect(c.Pipeline).NotTo(BeNil())
		Expect(c.Pipeline.PC()).To(Equal(insts.CodeBase))
		Expect(c.Program().Len()).To(Equal(8))
	})

	It("should not be halted initially", func() {
		Expect(c.Halted()).To(BeFalse())
	})

	It("should reject an empty program", func() {
		_, err := core.New(program())
		Expect(err).To(MatchError(loader.ErrEmptyProgram))

		_, err = core.New(nil)
		Expect(err).To(MatchError(loader.ErrEmptyProgram))
	})

	It("should execute instructions through tick", func() {
		for i := 0; i < 5; i++ {
			Expect(c.Tick()).To(Succeed())
		}

		Expect(c.RegFile().R[1]).To(Equal(int32(42)))
		Expect(c.Stats().Cycles).To(Equal(uint64(5)))
	})

	It("should run until halt", func() {
		Expect(c.Run()).To(Succeed())

		Expect(c.Halted()).To(BeTrue())
		Expect(c.Stats().Instructions).To(Equal(uint64(2)))
		Expect(c.Summary()).To(Equal(
			"APEX_CPU: Simulation Complete, cycles = 11 instructions = 2"))
	})

	It("should run for specified cycles and return running status", func() {
		running, err := c.RunCycles(5)

		Expect(err).NotTo(HaveOccurred())
		Expect(running).To(BeTrue())
		Expect(c.Stats().Cycles).To(Equal(uint64(5)))
		Expect(c.Summary()).To(ContainSubstring("Simulation Stopped"))
	})

	It("should stop running cycles when halted", func() {
		running, err := c.RunCycles(100)

		Expect(err).NotTo(HaveOccurred())
		Expect(running).To(BeFalse())
		Expect(c.Halted()).To(BeTrue())
	})

	It("should report its geometry", func() {
		g := c.Geometry()
		Expect(g.Registers).To(Equal(emu.NumRegisters))
		Expect(g.MemoryCells).To(Equal(emu.DataMemorySize))
		Expect(g.CodeBase).To(Equal(int32(4000)))
		Expect(g.InstWidth).To(Equal(int32(4)))
	})

	It("should reset core state", func() {
		Expect(c.Run()).To(Succeed())
		Expect(c.Stats().Cycles).To(BeNumerically(">", 0))

		c.Reset()

		Expect(c.Stats().Cycles).To(BeZero())
		Expect(c.Stats().Instructions).To(BeZero())
		Expect(c.RegFile().R[1]).To(BeZero())
		Expect(c.Halted()).To(BeFalse())
	})

	It("should refuse to run after shutdown", func() {
		Expect(c.Shutdown()).To(Succeed())

		Expect(c.Run()).To(MatchError(core.ErrShutdown))
		Expect(c.Tick()).To(MatchError(core.ErrShutdown))
		_, err := c.RunCycles(1)
		Expect(err).To(MatchError(core.ErrShutdown))
		Expect(c.Shutdown()).To(MatchError(core.ErrShutdown))
	})

	It("should pass tracers to the pipeline", func() {
		cycles := 0
		traced, err := core.New(program(halt), core.WithTracer(
			pipeline.TracerFunc(func(pipeline.Snapshot) { cycles++ }),
		))
		Expect(err).NotTo(HaveOccurred())

		Expect(traced.Run()).To(Succeed())
		Expect(cycles).To(Equal(5))
	})

	Describe("Load", func() {
		It("should load and run a program file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "prog.asm")
			src := "MOVC,R1,#3\nNOP\nNOP\nSTORE,R1,R0,#20\nHALT\n"
			Expect(os.WriteFile(path, []byte(src), 0644)).To(Succeed())

			lc, err := core.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(lc.Run()).To(Succeed())

			value, err := lc.Memory().Read(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int32(3)))
		})

		It("should fail on a missing file", func() {
			_, err := core.Load(filepath.Join(GinkgoT().TempDir(), "nope.asm"))
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})
})
