package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/apexsim/config"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("DefaultConfig", func() {
		It("should be valid", func() {
			c := config.DefaultConfig()
			Expect(c.Validate()).To(Succeed())
			Expect(c.Engine).To(Equal(config.EngineDirect))
			Expect(c.DumpRegisters).To(BeTrue())
			Expect(c.Level()).To(Equal(logrus.WarnLevel))
		})
	})

	Describe("LoadConfig", func() {
		It("should keep defaults for missing fields", func() {
			path := filepath.Join(dir, "apex.yaml")
			Expect(os.WriteFile(path, []byte("trace: true\nengine: akita\n"), 0644)).To(Succeed())

			c, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Trace).To(BeTrue())
			Expect(c.Engine).To(Equal(config.EngineAkita))
			Expect(c.FrequencyMHz).To(Equal(uint64(1000)))
			Expect(c.DumpRegisters).To(BeTrue())
		})

		It("should accept JSON", func() {
			path := filepath.Join(dir, "apex.json")
			Expect(os.WriteFile(path, []byte(`{"log_level": "debug", "dump_memory": 16}`), 0644)).To(Succeed())

			c, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Level()).To(Equal(logrus.DebugLevel))
			Expect(c.DumpMemory).To(Equal(16))
		})

		It("should fail on a missing file", func() {
			_, err := config.LoadConfig(filepath.Join(dir, "missing.yaml"))
			Expect(err).To(MatchError(ContainSubstring("failed to read config file")))
			Expect(err).To(MatchError(os.ErrNotExist))
		})

		It("should reject invalid values", func() {
			path := filepath.Join(dir, "bad.yaml")
			Expect(os.WriteFile(path, []byte("engine: timewarp\n"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("engine must be")))
		})
	})

	Describe("SaveConfig", func() {
		It("should write a file LoadConfig reads back", func() {
			c := config.DefaultConfig()
			c.Trace = true
			c.DumpMemory = 8
			path := filepath.Join(dir, "saved.yaml")

			Expect(c.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		})
	})

	DescribeTable("Validate",
		func(mutate func(*config.Config), substr string) {
			c := config.DefaultConfig()
			mutate(c)
			Expect(c.Validate()).To(MatchError(ContainSubstring(substr)))
		},
		Entry("log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"),
		Entry("engine", func(c *config.Config) { c.Engine = "" }, "engine"),
		Entry("akita frequency", func(c *config.Config) {
			c.Engine = config.EngineAkita
			c.FrequencyMHz = 0
		}, "frequency_mhz"),
		Entry("memory dump", func(c *config.Config) { c.DumpMemory = -1 }, "dump_memory"),
		Entry("functional trace", func(c *config.Config) {
			c.Functional = true
			c.Trace = true
		}, "functional"),
	)

	Describe("Clone", func() {
		It("should not share state", func() {
			c := config.DefaultConfig()
			clone := c.Clone()
			clone.Engine = config.EngineAkita

			Expect(c.Engine).To(Equal(config.EngineDirect))
		})
	})
})
