package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/apexsim/config"
	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/report"
	"github.com/sarchlab/apexsim/timing/core"
	"github.com/sarchlab/apexsim/timing/engine"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

type runOptions struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "apexsim",
		Short:        "Cycle-accurate APEX five-stage pipeline simulator",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newShowCmd())

	return root
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{cfg: config.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "run [flags] <program.asm>",
		Short: "Simulate a program until HALT retires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runProgram(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], cfg, opts.verbose)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML or JSON run configuration")
	flags.BoolVar(&opts.cfg.Trace, "trace", opts.cfg.Trace, "Print every stage after every cycle")
	flags.BoolVar(&opts.cfg.Functional, "functional", opts.cfg.Functional, "Run on the functional emulator instead of the pipeline")
	flags.StringVar(&opts.cfg.Engine, "engine", opts.cfg.Engine, "Cycle driver: direct or akita")
	flags.Uint64Var(&opts.cfg.MaxCycles, "max-cycles", opts.cfg.MaxCycles, "Stop after this many cycles (0: no limit)")
	flags.IntVar(&opts.cfg.DumpMemory, "dump-memory", opts.cfg.DumpMemory, "Print this many data memory cells (0: non-zero cells only)")
	flags.StringVar(&opts.cfg.LogLevel, "log-level", opts.cfg.LogLevel, "Log level: debug, info, warning, error")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print the program listing and statistics")

	return cmd
}

// resolve merges the config file with the flags set on the command line.
// Flags win over file values.
func (o *runOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	if o.configPath == "" {
		if err := o.cfg.Validate(); err != nil {
			return nil, err
		}
		return o.cfg, nil
	}

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("trace") {
		cfg.Trace = o.cfg.Trace
	}
	if flags.Changed("functional") {
		cfg.Functional = o.cfg.Functional
	}
	if flags.Changed("engine") {
		cfg.Engine = o.cfg.Engine
	}
	if flags.Changed("max-cycles") {
		cfg.MaxCycles = o.cfg.MaxCycles
	}
	if flags.Changed("dump-memory") {
		cfg.DumpMemory = o.cfg.DumpMemory
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.cfg.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <program.asm>",
		Short: "Print the code memory of a program without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			report.Program(cmd.OutOrStdout(), prog)
			return nil
		},
	}
}

func runProgram(out, errOut io.Writer, path string, cfg *config.Config, verbose bool) error {
	logger := cfg.NewLogger()
	logger.SetOutput(errOut)

	prog, err := loader.Load(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "APEX_CPU: Initialized APEX CPU, loaded %d instructions\n", prog.Len())
	if verbose {
		report.Program(out, prog)
	}

	if cfg.Functional {
		return runFunctional(out, prog, cfg)
	}

	opts := []core.Option{core.WithLogger(logger)}
	tracer := &cycleTracer{out: out}
	if cfg.Trace {
		opts = append(opts, core.WithTracer(tracer))
	}

	c, err := core.New(prog, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = c.Shutdown() }()
	tracer.regFile = c.RegFile()

	switch {
	case cfg.Engine == config.EngineAkita:
		var result engine.Result
		result, err = engine.Run(c, engine.MHz(cfg.FrequencyMHz))
		logger.WithFields(logrus.Fields{
			"cycles":   result.Cycles,
			"sim_time": result.Time,
		}).Info("akita engine finished")
	case cfg.MaxCycles > 0:
		_, err = c.RunCycles(cfg.MaxCycles)
	default:
		err = c.Run()
	}

	if err == nil && tracer.err != nil {
		err = tracer.err
	}

	fmt.Fprintln(out, c.Summary())
	if cfg.DumpRegisters {
		if rerr := report.Registers(out, c.RegFile()); rerr != nil {
			return rerr
		}
	}
	if rerr := report.Memory(out, c.Memory(), cfg.DumpMemory); rerr != nil {
		return rerr
	}
	if verbose {
		report.Stats(out, c.Stats())
	}

	return err
}

// cycleTracer prints the stage contents and the register file after
// every cycle.
type cycleTracer struct {
	out     io.Writer
	regFile *emu.RegFile
	err     error
}

func (t *cycleTracer) Trace(s pipeline.Snapshot) {
	if t.err != nil {
		return
	}
	if t.err = s.Write(t.out); t.err != nil {
		return
	}
	t.err = report.Registers(t.out, t.regFile)
}

func runFunctional(out io.Writer, prog *insts.Program, cfg *config.Config) error {
	e := emu.NewEmulator()
	e.LoadProgram(prog)

	err := e.Run()

	fmt.Fprintf(out, "APEX_CPU: Functional run %s, instructions = %d\n",
		completion(e.Halted()), e.InstructionCount())
	if cfg.DumpRegisters {
		if rerr := report.Registers(out, e.RegFile()); rerr != nil {
			return rerr
		}
	}
	if rerr := report.Memory(out, e.Memory(), cfg.DumpMemory); rerr != nil {
		return rerr
	}

	return err
}

func completion(halted bool) string {
	if halted {
		return "complete"
	}
	return "stopped"
}
