// Package engine drives a core as a ticking component of an akita
// discrete-event simulation engine.
package engine

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/apexsim/timing/core"
)

// Driver is a ticking component that advances a core by one cycle on
// every tick until HALT retires or the core faults.
type Driver struct {
	*sim.TickingComponent

	core *core.Core
	err  error
}

// NewDriver creates a driver for c registered on engine at freq.
func NewDriver(name string, engine sim.Engine, freq sim.Freq, c *core.Core) *Driver {
	d := &Driver{core: c}
	d.TickingComponent = sim.NewTickingComponent(name, engine, freq, d)
	return d
}

// Tick implements sim.Ticker. It reports progress while the core is still
// running.
func (d *Driver) Tick() bool {
	if d.err != nil || d.core.Halted() {
		return false
	}

	if err := d.core.Tick(); err != nil {
		d.err = err
		return false
	}

	return !d.core.Halted()
}

// Err returns the fault that stopped the core, if any.
func (d *Driver) Err() error {
	return d.err
}

// Result summarizes an engine-driven run.
type Result struct {
	// Cycles is the number of core cycles simulated.
	Cycles uint64
	// Time is the simulated time at which the engine ran out of events.
	Time sim.VTimeInSec
}

// Run simulates c on a serial engine clocked at freq until it halts or
// faults.
func Run(c *core.Core, freq sim.Freq) (Result, error) {
	engine := sim.NewSerialEngine()
	driver := NewDriver("APEX.Core", engine, freq, c)

	driver.TickLater()
	if err := engine.Run(); err != nil {
		return Result{}, err
	}

	result := Result{
		Cycles: c.Stats().Cycles,
		Time:   engine.CurrentTime(),
	}

	return result, driver.Err()
}

// MHz converts a frequency in megahertz to an akita frequency.
func MHz(f uint64) sim.Freq {
	return sim.Freq(f) * sim.MHz
}
