package report_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/report"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

var _ = Describe("Report", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	Describe("Registers", func() {
		It("should print two rows of eight registers", func() {
			rf := &emu.RegFile{}
			rf.R[3] = 42
			rf.R[15] = -7
			rf.Flags.Negative = true

			Expect(report.Registers(&buf, rf)).To(Succeed())

			out := buf.String()
			Expect(out).To(HavePrefix("Registers:\n"))
			Expect(out).To(MatchRegexp(`R0\s*\|\s*R1\s*\|.*R7\s*\|`))
			Expect(out).To(MatchRegexp(`R8\s*\|.*R15\s*\|`))
			Expect(out).To(ContainSubstring("42"))
			Expect(out).To(ContainSubstring("-7"))
			Expect(out).To(ContainSubstring("Flags: Z=0 P=0 N=1"))
			Expect(strings.Index(out, "R7")).To(BeNumerically("<", strings.Index(out, "R8")))
		})
	})

	Describe("Stats", func() {
		It("should print counters and CPI", func() {
			report.Stats(&buf, pipeline.Statistics{Cycles: 12, Instructions: 4, StaleReads: 2})

			out := buf.String()
			Expect(out).To(MatchRegexp(`Cycles\s*\|\s*12\s*\|`))
			Expect(out).To(MatchRegexp(`Instructions\s*\|\s*4\s*\|`))
			Expect(out).To(MatchRegexp(`CPI\s*\|\s*3\.000\s*\|`))
			Expect(out).To(MatchRegexp(`Stale reads\s*\|\s*2\s*\|`))
		})
	})

	Describe("Memory", func() {
		var m *emu.Memory

		BeforeEach(func() {
			m = emu.NewMemory()
			Expect(m.Write(2, 5)).To(Succeed())
			Expect(m.Write(100, 9)).To(Succeed())
		})

		It("should print only non-zero cells by default", func() {
			Expect(report.Memory(&buf, m, 0)).To(Succeed())

			out := buf.String()
			Expect(out).To(MatchRegexp(`\|\s*2\s*\|\s*5\s*\|`))
			Expect(out).To(MatchRegexp(`\|\s*100\s*\|\s*9\s*\|`))
			Expect(out).NotTo(MatchRegexp(`\|\s*1\s*\|\s*0\s*\|`))
		})

		It("should print a leading range of cells", func() {
			Expect(report.Memory(&buf, m, 4)).To(Succeed())

			out := buf.String()
			Expect(out).To(MatchRegexp(`\|\s*1\s*\|\s*0\s*\|`))
			Expect(out).To(MatchRegexp(`\|\s*2\s*\|\s*5\s*\|`))
			Expect(out).NotTo(ContainSubstring("100"))
		})
	})

	Describe("Program", func() {
		It("should list every instruction with its address", func() {
			p := insts.NewProgram([]insts.Instruction{
				{Op: insts.OpMOVC, Rd: 1, Imm: 5},
				{Op: insts.OpHALT},
			})

			report.Program(&buf, p)

			out := buf.String()
			Expect(out).To(MatchRegexp(`4000\s*\|\s*MOVC,R1,#5\s*\|\s*MOVC\s*\|`))
			Expect(out).To(MatchRegexp(`4004\s*\|\s*HALT\s*\|`))
			Expect(out).To(ContainSubstring("2 instructions loaded"))
		})
	})
})
