// Package benchmarks runs a small, fixed set of hand-assembled MIPS word
// programs through driver.Simulator and reports cycles-per-instruction,
// grounded on the teacher's benchmark-harness shape (a named program, a
// Run, a cycle/CPI report) adapted from ARM64 ELF binaries to inline
// MIPS word slices, since there is no MIPS toolchain available here.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/mips5sim/driver"
	"github.com/sarchlab/mips5sim/emu"
	"github.com/sarchlab/mips5sim/timing/cache"
	"github.com/sarchlab/mips5sim/timing/pipeline"
)

// Benchmark is one canned MIPS program plus an optional Setup hook, for
// kernels that need pre-seeded data memory.
type Benchmark struct {
	Name        string
	Description string
	Program     []uint32
	Setup       func(mem *emu.Memory)
}

// Result is one benchmark's measured outcome.
type Result struct {
	Name         string  `json:"name"`
	Cycles       uint64  `json:"cycles"`
	Instructions uint64  `json:"instructions"`
	CPI          float64 `json:"cpi"`
	StallCycles  uint64  `json:"stall_cycles"`
	ICacheMisses uint64  `json:"icache_misses"`
	DCacheMisses uint64  `json:"dcache_misses"`
}

// Config selects which caches a Harness run exercises.
type Config struct {
	ICache cache.Config
	DCache cache.Config
}

// DefaultConfig returns the cache configuration cmd/simulate uses when no
// -icache-*/-dcache-* flags are given.
func DefaultConfig() Config {
	return Config{ICache: cache.DefaultICacheConfig(), DCache: cache.DefaultDCacheConfig()}
}

// Harness runs a fixed benchmark list and collects their Results.
type Harness struct {
	cfg Config
}

// NewHarness constructs a Harness over cfg.
func NewHarness(cfg Config) *Harness {
	return &Harness{cfg: cfg}
}

// Run executes one Benchmark to completion and returns its Result.
func (h *Harness) Run(b Benchmark) Result {
	mem := emu.NewMemory()
	program := append(append([]uint32{}, b.Program...), pipeline.Sentinel)
	words := make([]byte, 0, len(program)*4)
	for _, w := range program {
		words = append(words, byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
	}
	if err := mem.LoadProgram(0, words); err != nil {
		panic(fmt.Sprintf("benchmarks: %s: %v", b.Name, err))
	}
	if b.Setup != nil {
		b.Setup(mem)
	}

	sim := driver.NewSimulator(h.cfg.ICache, h.cfg.DCache, mem)
	sim.RunTillHalt()
	stats := sim.Finalize()

	cpi := 0.0
	if stats.InstructionsRetired > 0 {
		cpi = float64(stats.TotalCycles) / float64(stats.InstructionsRetired)
	}
	return Result{
		Name:         b.Name,
		Cycles:       stats.TotalCycles,
		Instructions: stats.InstructionsRetired,
		CPI:          cpi,
		StallCycles:  stats.StallCycles,
		ICacheMisses: stats.ICacheMisses,
		DCacheMisses: stats.DCacheMisses,
	}
}

// RunAll runs every benchmark in list and returns their Results in order.
func (h *Harness) RunAll(list []Benchmark) []Result {
	results := make([]Result, len(list))
	for i, b := range list {
		results[i] = h.Run(b)
	}
	return results
}

// PrintResults writes a human-readable table of results to w.
func PrintResults(w io.Writer, results []Result) {
	fmt.Fprintf(w, "%-20s %10s %14s %8s\n", "name", "cycles", "instructions", "cpi")
	for _, r := range results {
		fmt.Fprintf(w, "%-20s %10d %14d %8.2f\n", r.Name, r.Cycles, r.Instructions, r.CPI)
	}
}

// PrintCSV writes results as CSV to w.
func PrintCSV(w io.Writer, results []Result) {
	fmt.Fprintln(w, "name,cycles,instructions,cpi,stall_cycles,icache_misses,dcache_misses")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%.4f,%d,%d,%d\n",
			r.Name, r.Cycles, r.Instructions, r.CPI, r.StallCycles, r.ICacheMisses, r.DCacheMisses)
	}
}

// PrintJSON writes results as a JSON array to w.
func PrintJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
