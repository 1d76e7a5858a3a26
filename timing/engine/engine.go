// Package engine drives a timing/pipeline.Pipeline through akita's
// discrete-event scheduler instead of a plain Go for loop. It is an
// alternate, optional execution path (SPEC_FULL.md §4.5 EXPANSION): the
// pipeline's per-cycle state machine is identical either way, only the
// caller of Pipeline.Tick changes.
package engine

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/mips5sim/timing/pipeline"
)

// Core wraps a *pipeline.Pipeline as an akita TickingComponent: it fires
// once per configured Freq and advances the pipeline by exactly one
// cycle per tick, mirroring driver.Simulator's plain loop but scheduled
// through an akita Engine instead.
type Core struct {
	*sim.TickingComponent

	pipeline *pipeline.Pipeline
}

// NewCore builds a Core named name, ticking pipeline forward once per
// cycle of freq on e.
func NewCore(name string, e sim.Engine, freq sim.Freq, p *pipeline.Pipeline) *Core {
	c := &Core{pipeline: p}
	c.TickingComponent = sim.NewTickingComponent(name, e, freq, c)
	return c
}

// Tick advances the wrapped pipeline by one cycle and reports whether
// any further ticking is needed: akita stops scheduling once both the
// pipeline has halted and this returns false.
func (c *Core) Tick() bool {
	if c.pipeline.Done() {
		return false
	}
	c.pipeline.Tick()
	return true
}

// Run drives p to completion on a fresh serial engine at freq, returning
// the engine's error, if any. It is the akita-backed equivalent of
// driver.Simulator.RunTillHalt.
func Run(p *pipeline.Pipeline, freq sim.Freq) error {
	e := sim.NewSerialEngine()
	NewCore("mips5sim.core", e, freq, p)

	return e.Run()
}
