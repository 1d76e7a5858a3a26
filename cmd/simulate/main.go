// Command simulate runs the mips5sim cycle-accurate pipeline simulator
// over a big-endian flat binary image.
//
// Usage:
//
//	go run ./cmd/simulate -program path/to/image.bin [flags]
//
// Flags:
//
//	-program         Path to a big-endian flat binary instruction image (required)
//	-icache-size     Instruction cache size in bytes (default 16384)
//	-icache-assoc    Instruction cache associativity (default 2)
//	-icache-block    Instruction cache block size in bytes (default 32)
//	-icache-latency  Instruction cache miss latency in cycles (default 10)
//	-dcache-size     Data cache size in bytes (default 16384)
//	-dcache-assoc    Data cache associativity (default 2)
//	-dcache-block    Data cache block size in bytes (default 32)
//	-dcache-latency  Data cache miss latency in cycles (default 10)
//	-cycles          Run at most this many cycles (0 means run till halt)
//	-trace           Print the per-cycle pipeline snapshot to stderr
//	-format          Output format for the final report: text or json
//	-engine          Execution harness: loop (default) or akita
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/mips5sim/driver"
	"github.com/sarchlab/mips5sim/emu"
	"github.com/sarchlab/mips5sim/insts"
	"github.com/sarchlab/mips5sim/timing/cache"
	"github.com/sarchlab/mips5sim/timing/engine"
	"github.com/sarchlab/mips5sim/timing/pipeline"

	"github.com/sarchlab/akita/v4/sim"
)

var (
	programPath = flag.String("program", "", "path to a big-endian flat binary image")

	icacheSize    = flag.Int("icache-size", 16*1024, "instruction cache size in bytes")
	icacheAssoc   = flag.Int("icache-assoc", 2, "instruction cache associativity")
	icacheBlock   = flag.Int("icache-block", 32, "instruction cache block size in bytes")
	icacheLatency = flag.Uint64("icache-latency", 10, "instruction cache miss latency in cycles")

	dcacheSize    = flag.Int("dcache-size", 16*1024, "data cache size in bytes")
	dcacheAssoc   = flag.Int("dcache-assoc", 2, "data cache associativity")
	dcacheBlock   = flag.Int("dcache-block", 32, "data cache block size in bytes")
	dcacheLatency = flag.Uint64("dcache-latency", 10, "data cache miss latency in cycles")

	cycles = flag.Uint64("cycles", 0, "run at most this many cycles (0 = run till halt)")
	trace  = flag.Bool("trace", false, "print the per-cycle pipeline snapshot to stderr")
	format = flag.String("format", "text", "output format for the final report: text or json")
	engineFlag = flag.String("engine", "loop", "execution harness: loop or akita")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "mips5sim - cycle-accurate 5-stage MIPS pipeline simulator\n\n")
		fmt.Fprintf(os.Stderr, "Usage: simulate -program <image> [options]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *programPath == "" {
		fmt.Fprintln(os.Stderr, "error: -program is required")
		flag.Usage()
		os.Exit(2)
	}

	image, err := os.ReadFile(*programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading program image: %v\n", err)
		os.Exit(1)
	}

	mem := emu.NewMemory()
	if err := mem.LoadProgram(0, image); err != nil {
		fmt.Fprintf(os.Stderr, "error loading program image: %v\n", err)
		os.Exit(1)
	}

	icConfig := cache.Config{Size: *icacheSize, Associativity: *icacheAssoc, BlockSize: *icacheBlock, HitLatency: 1, MissLatency: *icacheLatency}
	dcConfig := cache.Config{Size: *dcacheSize, Associativity: *dcacheAssoc, BlockSize: *dcacheBlock, HitLatency: 1, MissLatency: *dcacheLatency}

	opts := []driver.Option{}
	if *trace {
		opts = append(opts, driver.WithTrace(printTrace))
	}

	simulator := driver.NewSimulator(icConfig, dcConfig, mem, opts...)

	switch *engineFlag {
	case "akita":
		runAkita(simulator)
	default:
		runLoop(simulator, *cycles)
	}

	stats := simulator.Finalize()

	switch *format {
	case "json":
		printJSON(stats)
	default:
		printText(stats)
	}
}

func runLoop(s *driver.Simulator, n uint64) {
	if n == 0 {
		s.RunTillHalt()
		return
	}
	s.RunCycles(n)
}

// runAkita drives the same pipeline through the akita-backed engine
// wrapper instead of the plain for loop. Limited to run-till-halt: akita
// schedules ticks by the pipeline's own halted state, not an external
// cycle cap.
func runAkita(s *driver.Simulator) {
	if err := engine.Run(s.Pipeline(), 1*sim.GHz); err != nil {
		fmt.Fprintf(os.Stderr, "akita engine error: %v\n", err)
		os.Exit(1)
	}
}

func printTrace(t pipeline.CycleTrace) {
	ifMnemonic := "nop"
	if t.IFID.Instr != 0 {
		ifMnemonic = insts.Decode(t.IFID.Instr).Mnemonic()
	}
	fmt.Fprintf(os.Stderr, "cycle %6d  pc=0x%08x  IF=%-6s ID=%-6s EX=%-6s MEM=%-6s stall=%v jump=%v\n",
		t.Cycle, t.PC,
		ifMnemonic, t.IDEX.Inst.Mnemonic(), t.EXMEM.Inst.Mnemonic(), t.MEMWB.Inst.Mnemonic(),
		t.Stall, t.Jump)
}

func printText(stats driver.SimulationStats) {
	fmt.Printf("=== mips5sim run ===\n")
	fmt.Printf("cycles:               %d\n", stats.TotalCycles)
	fmt.Printf("instructions retired: %d\n", stats.InstructionsRetired)
	fmt.Printf("stall cycles:         %d\n", stats.StallCycles)
	fmt.Printf("exceptions:           %d\n", stats.Exceptions)
	fmt.Printf("icache hits/misses:   %d/%d\n", stats.ICacheHits, stats.ICacheMisses)
	fmt.Printf("dcache hits/misses:   %d/%d\n", stats.DCacheHits, stats.DCacheMisses)
	if stats.InstructionsRetired > 0 {
		fmt.Printf("CPI:                  %.3f\n", float64(stats.TotalCycles)/float64(stats.InstructionsRetired))
	}
}

func printJSON(stats driver.SimulationStats) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
