package driver_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips5sim/driver"
	"github.com/sarchlab/mips5sim/emu"
	"github.com/sarchlab/mips5sim/timing/cache"
)

// Minimal word-at-a-time MIPS assembler for this package's own fixtures,
// independent of timing/pipeline's test-only assembler.

func encodeI(op, rs, rt, imm uint32) uint32 {
	return (op << 26) | (rs << 21) | (rt << 16) | (imm & 0xFFFF)
}

func addi(rt, rs, imm uint32) uint32 { return encodeI(0x08, rs, rt, imm) }

const sentinel = uint32(0xFEEDFEED)

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
	}
	return out
}

func noStallCache() cache.Config {
	return cache.Config{Size: 1024, Associativity: 2, BlockSize: 32, HitLatency: 1, MissLatency: 0}
}

var _ = Describe("Simulator", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
		words := []uint32{addi(1, 0, 7), addi(2, 1, 3), sentinel}
		Expect(mem.LoadProgram(0, wordsToBytes(words))).To(Succeed())
	})

	Describe("RunTillHalt", func() {
		It("runs to completion and reports final stats", func() {
			s := driver.NewSimulator(noStallCache(), noStallCache(), mem)

			Expect(s.RunTillHalt()).To(Equal(0))

			stats := s.Finalize()
			Expect(stats.InstructionsRetired).To(Equal(uint64(2)))
			Expect(stats.TotalCycles).To(BeNumerically(">", 0))
		})
	})

	Describe("RunCycles", func() {
		It("reports still-running before halt and halted once the sentinel retires", func() {
			s := driver.NewSimulator(noStallCache(), noStallCache(), mem)

			Expect(s.RunCycles(1)).To(Equal(0))
			Expect(s.RunCycles(50)).To(Equal(1))
		})
	})

	Describe("DumpRegisters", func() {
		It("writes every register's value", func() {
			s := driver.NewSimulator(noStallCache(), noStallCache(), mem)
			s.RunTillHalt()

			var buf bytes.Buffer
			s.DumpRegisters(&buf)

			out := buf.String()
			Expect(strings.Contains(out, "$1  = 0x00000007")).To(BeTrue())
			Expect(strings.Contains(out, "$2  = 0x0000000a")).To(BeTrue())
		})
	})

	Describe("DumpMemory", func() {
		It("writes word-granular contents of the requested range", func() {
			s := driver.NewSimulator(noStallCache(), noStallCache(), mem)

			var buf bytes.Buffer
			s.DumpMemory(&buf, 0, 4)

			Expect(buf.String()).To(ContainSubstring("0x00000000:"))
		})
	})
})
