// Package driver wires the pipeline, its two caches, and the shared
// memory store into the single facade a CLI or test harness drives:
// init, runCycles/runTillHalt, and finalize, per spec.md §6's Simulator
// API. It is grounded on the teacher's emu.Emulator (functional options,
// Run/Step loop, RegFile()/Memory() accessors).
package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/sarchlab/mips5sim/emu"
	"github.com/sarchlab/mips5sim/timing/cache"
	"github.com/sarchlab/mips5sim/timing/pipeline"
)

// SimulationStats is the final report handed back by Finalize, per
// spec.md §6's "Observable outputs".
type SimulationStats struct {
	TotalCycles         uint64
	InstructionsRetired uint64
	StallCycles         uint64
	Exceptions          uint64
	ICacheHits          uint64
	ICacheMisses        uint64
	DCacheHits          uint64
	DCacheMisses        uint64
}

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// WithEntryPoint sets the PC the pipeline starts fetching from.
func WithEntryPoint(pc uint32) Option {
	return func(s *Simulator) { s.entry = pc }
}

// WithLogger overrides the default stderr zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// WithTrace installs a callback invoked with the pipeline's CycleTrace
// after every Tick, for a CLI's -trace option.
func WithTrace(fn func(pipeline.CycleTrace)) Option {
	return func(s *Simulator) { s.onTrace = fn }
}

// Simulator owns one Pipeline over one Memory and drives it to
// completion, logging the ambient events spec.md §7 calls out
// (exceptions, illegal opcodes) and the cache evictions that are useful
// for a human watching a run but are not part of the architectural state
// spec.md tracks.
type Simulator struct {
	pipeline *pipeline.Pipeline
	mem      *emu.Memory
	entry    uint32
	logger   zerolog.Logger
	onTrace  func(pipeline.CycleTrace)

	lastICacheEvictions uint64
	lastDCacheEvictions uint64
	lastExceptions      uint64
}

// NewSimulator constructs a Simulator. icConfig and dcConfig parameterize
// the instruction and data caches sitting in front of mem; both must
// already carry power-of-two Size/BlockSize (spec.md §7 treats that
// validation as the caller's responsibility, enforced here with a
// logged error followed by a panic, since a malformed cache config
// cannot produce a meaningful run).
func NewSimulator(icConfig, dcConfig cache.Config, mem *emu.Memory, opts ...Option) *Simulator {
	s := &Simulator{
		mem:    mem,
		logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !isPow2(icConfig.Size) || !isPow2(icConfig.BlockSize) ||
		!isPow2(dcConfig.Size) || !isPow2(dcConfig.BlockSize) {
		s.logger.Error().
			Int("icache-size", icConfig.Size).Int("icache-block", icConfig.BlockSize).
			Int("dcache-size", dcConfig.Size).Int("dcache-block", dcConfig.BlockSize).
			Msg("cache size and block size must be powers of two")
		panic("driver: cache size and block size must be powers of two")
	}

	s.pipeline = pipeline.New(mem,
		pipeline.WithICache(icConfig),
		pipeline.WithDCache(dcConfig),
		pipeline.WithEntryPoint(s.entry),
	)
	return s
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

// Pipeline returns the underlying Pipeline, for callers (benchmarks,
// tests) that want direct access to registers or per-cycle state.
func (s *Simulator) Pipeline() *pipeline.Pipeline { return s.pipeline }

// RunCycles advances the simulation by up to n cycles, stopping early if
// the pipeline halts. It returns 0 if the pipeline is still running after
// n cycles, or 1 if it has halted (during this call or before it), matching spec.md §6's
// `runCycles(N) -> 0 on still-running, 1 on halted`.
func (s *Simulator) RunCycles(n uint64) int {
	for i := uint64(0); i < n; i++ {
		if s.pipeline.Done() {
			return 1
		}
		s.tick()
	}
	if s.pipeline.Done() {
		return 1
	}
	return 0
}

// RunTillHalt runs the simulation until the termination sentinel retires,
// matching spec.md §6's `runTillHalt() -> 0`.
func (s *Simulator) RunTillHalt() int {
	for !s.pipeline.Done() {
		s.tick()
	}
	return 0
}

// tick advances the pipeline by one cycle and narrates the ambient events
// a human watching a run cares about: cache evictions at Debug, new
// exceptions at Warn. None of this logging feeds back into architectural
// state.
func (s *Simulator) tick() {
	s.pipeline.Tick()

	if s.onTrace != nil {
		s.onTrace(s.pipeline.LastTrace())
	}

	stats := s.pipeline.Stats()
	if stats.Exceptions > s.lastExceptions {
		s.logger.Warn().
			Uint64("cycle", stats.Cycles).
			Uint32("pc", s.pipeline.PC).
			Msg("exception redirected to vector")
		s.lastExceptions = stats.Exceptions
	}

	icEvictions := s.pipeline.ICache.Stats().Evictions
	if icEvictions > s.lastICacheEvictions {
		s.logger.Debug().Uint64("cycle", stats.Cycles).Msg("icache eviction")
		s.lastICacheEvictions = icEvictions
	}
	dcEvictions := s.pipeline.DCache.Stats().Evictions
	if dcEvictions > s.lastDCacheEvictions {
		s.logger.Debug().Uint64("cycle", stats.Cycles).Msg("dcache eviction")
		s.lastDCacheEvictions = dcEvictions
	}
}

// Finalize drains the data cache's dirty blocks back to memory and
// returns the accumulated run statistics, per spec.md §6's
// `finalize() -> 0 (drains D$, emits stats and dumps)`.
func (s *Simulator) Finalize() SimulationStats {
	s.pipeline.DCache.Flush()

	stats := s.pipeline.Stats()
	ic := s.pipeline.ICache.Stats()
	dc := s.pipeline.DCache.Stats()

	return SimulationStats{
		TotalCycles:         stats.Cycles,
		InstructionsRetired: stats.Instructions,
		StallCycles:         stats.StallCycles,
		Exceptions:          stats.Exceptions,
		ICacheHits:          ic.Hits,
		ICacheMisses:        ic.Misses,
		DCacheHits:          dc.Hits,
		DCacheMisses:        dc.Misses,
	}
}

// DumpRegisters writes every general-purpose register to w, one per line.
func (s *Simulator) DumpRegisters(w io.Writer) {
	regs := s.pipeline.Regs.Snapshot()
	for i, v := range regs {
		fmt.Fprintf(w, "$%-2d = 0x%08x\n", i, v)
	}
}

// DumpMemory writes the word-granular contents of [lo, hi) to w,
// big-endian, four bytes per line.
func (s *Simulator) DumpMemory(w io.Writer, lo, hi uint32) {
	for addr := lo; addr < hi; addr += uint32(emu.WordSize) {
		v, err := s.mem.Get(addr, emu.WordSize)
		if err != nil {
			fmt.Fprintf(w, "0x%08x: <error: %v>\n", addr, err)
			continue
		}
		fmt.Fprintf(w, "0x%08x: 0x%08x\n", addr, v)
	}
}
