package pipeline

import (
	"github.com/sarchlab/mips5sim/emu"
	"github.com/sarchlab/mips5sim/timing/cache"
)

// Stats accumulates pipeline-wide counters a driver or CLI reports at the
// end of a run, per spec.md §6/§8.
type Stats struct {
	Cycles          uint64
	Instructions    uint64
	StallCycles     uint64
	Exceptions      uint64
	BranchesTaken   uint64
	BranchesResolved uint64
}

// CycleTrace is a point-in-time snapshot of every latch, taken at the end
// of a Tick, for -trace output (SPEC_FULL.md §3 EXPANSION).
type CycleTrace struct {
	Cycle uint64
	PC    uint32
	IFID  IFIDLatch
	IDEX  IDEXLatch
	EXMEM EXMEMLatch
	MEMWB MEMWBLatch
	Stall bool
	Jump  bool
}

// Option configures a Pipeline at construction time, mirroring the
// teacher's functional-options convention.
type Option func(*Pipeline)

// WithICache overrides the default instruction cache.
func WithICache(cfg cache.Config) Option {
	return func(p *Pipeline) { p.icacheCfg = cfg }
}

// WithDCache overrides the default data cache.
func WithDCache(cfg cache.Config) Option {
	return func(p *Pipeline) { p.dcacheCfg = cfg }
}

// WithEntryPoint sets the initial PC (default 0).
func WithEntryPoint(pc uint32) Option {
	return func(p *Pipeline) { p.PC = pc }
}

// Pipeline is the five-stage in-order MIPS core: four latches, two
// forwarding networks, a hazard unit, and the instruction/data caches
// sitting in front of a single shared Memory, grounded on
// original_source/src/cycle_sim.cpp's STATE/runCycles and on the
// teacher's Emulator as the top-level owning type.
type Pipeline struct {
	Regs *emu.RegFile
	Mem  *emu.Memory
	alu  *emu.ALU

	ICache *cache.Cache
	DCache *cache.Cache

	icacheCfg cache.Config
	dcacheCfg cache.Config

	PC uint32

	ifid  IFIDLatch
	idex  IDEXLatch
	exmem EXMEMLatch
	memwb MEMWBLatch

	fwd  ExForwardUnit
	bfwd BranchForwardUnit
	hz   HazardUnit

	fetchDone bool
	Halted    bool

	ifWait  uint64
	ifStash IFIDLatch

	memWait  uint64
	memStash MEMWBLatch

	redirect       bool
	redirectTarget uint32

	stats Stats
	trace CycleTrace
}

// New constructs a Pipeline over mem, applying any Options. Instruction
// and data caches default to cache.DefaultICacheConfig /
// cache.DefaultDCacheConfig.
func New(mem *emu.Memory, opts ...Option) *Pipeline {
	p := &Pipeline{
		Regs:      &emu.RegFile{},
		Mem:       mem,
		alu:       emu.NewALU(),
		icacheCfg: cache.DefaultICacheConfig(),
		dcacheCfg: cache.DefaultDCacheConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	backing := cache.NewMemoryBacking(mem)
	p.ICache = cache.New(p.icacheCfg, backing)
	p.DCache = cache.New(p.dcacheCfg, backing)
	return p
}

// Stats returns a copy of the pipeline's accumulated counters.
func (p *Pipeline) Stats() Stats { return p.stats }

// LastTrace returns the CycleTrace captured by the most recent Tick.
func (p *Pipeline) LastTrace() CycleTrace { return p.trace }

// Done reports whether the termination sentinel has retired through WB.
func (p *Pipeline) Done() bool { return p.Halted }
