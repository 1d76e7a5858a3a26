package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips5sim/emu"
	"github.com/sarchlab/mips5sim/timing/pipeline"
)

// run ticks p until it halts or the cycle cap is hit, so a stuck test
// fails instead of hanging.
func run(p *pipeline.Pipeline, cap int) {
	for i := 0; i < cap && !p.Done(); i++ {
		p.Tick()
	}
}

var _ = Describe("Pipeline", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory()
	})

	load := func(words []uint32) *pipeline.Pipeline {
		words = append(append([]uint32{}, words...), sentinel)
		Expect(mem.LoadProgram(0, wordsToBytes(words))).To(Succeed())
		return pipeline.New(mem, pipeline.WithICache(noStallCache()), pipeline.WithDCache(noStallCache()))
	}

	Describe("EX-to-EX forwarding (no stall)", func() {
		It("forwards an immediately-following dependent add without stalling", func() {
			p := load([]uint32{
				addi(1, 0, 10),
				add(2, 1, 1), // needs $1 the cycle after it's produced
			})
			run(p, 50)

			Expect(p.Regs.ReadReg(2)).To(Equal(uint32(20)))
			Expect(p.Stats().StallCycles).To(Equal(uint64(0)))
		})
	})

	Describe("Load-use hazard", func() {
		It("stalls one cycle before a consumer can use a just-loaded value", func() {
			mem.Set(0x100, emu.WordSize, 5)
			p := load([]uint32{
				lw(1, 0, 0x100),
				add(2, 1, 1),
			})
			run(p, 50)

			Expect(p.Regs.ReadReg(2)).To(Equal(uint32(10)))
			Expect(p.Stats().StallCycles).To(BeNumerically(">=", 1))
		})
	})

	Describe("Branch forwarding", func() {
		It("resolves a taken branch using EX/MEM and MEM/WB forwarded operands", func() {
			p := load([]uint32{
				addi(1, 0, 5), // producer of $1, will be in MEM/WB when BEQ decodes
				addi(2, 0, 5), // producer of $2, will be in EX/MEM when BEQ decodes
				addi(3, 0, 0), // filler, keeps the pipeline at steady depth
				beq(1, 2, 1),  // branch to NPC+(1<<2) = skip exactly the next instruction
				addi(4, 0, 111),
				addi(5, 0, 222),
			})
			run(p, 50)

			Expect(p.Regs.ReadReg(4)).To(Equal(uint32(0)), "skipped by the taken branch")
			Expect(p.Regs.ReadReg(5)).To(Equal(uint32(222)))
			Expect(p.Stats().BranchesTaken).To(Equal(uint64(1)))
		})
	})

	Describe("Arithmetic overflow exception", func() {
		It("redirects to the exception vector and discards the faulting result", func() {
			p := load([]uint32{
				lui(1, 0x7FFF),
				ori(1, 1, 0xFFFF), // $1 = 0x7FFFFFFF, INT32_MAX
				add(2, 1, 1),      // overflows: positive + positive = negative
				addi(3, 0, 77),    // would run next on the non-excepting path
			})
			for i := 0; i < 50; i++ {
				p.Tick()
			}

			Expect(p.Regs.ReadReg(2)).To(Equal(uint32(0)), "the overflowing add must not write back")
			Expect(p.Stats().Exceptions).To(Equal(uint64(1)))
		})
	})

	Describe("JAL link value", func() {
		It("writes NPC+4 of the jump into $ra and redirects the PC", func() {
			p := load([]uint32{
				jal(0x40),
			})
			mem.LoadProgram(0x40, wordsToBytes([]uint32{addi(2, 0, 99), sentinel}))
			run(p, 50)

			Expect(p.Regs.ReadReg(31)).To(Equal(uint32(8)))
			Expect(p.Regs.ReadReg(2)).To(Equal(uint32(99)))
		})
	})

	Describe("JR indirect jump", func() {
		It("redirects through a register value and squashes the wrong-path instructions already in flight", func() {
			p := load([]uint32{
				addi(1, 0, 0x40), // $1 = jump target
				jr(1),            // jr $1
				addi(2, 0, 111),  // fetched speculatively before JR resolves in EX; must be squashed
				addi(3, 0, 222),  // IF redirects before ever fetching this one
			})
			mem.LoadProgram(0x40, wordsToBytes([]uint32{addi(4, 0, 99), sentinel}))
			run(p, 50)

			Expect(p.Regs.ReadReg(2)).To(Equal(uint32(0)), "squashed by the JR redirect")
			Expect(p.Regs.ReadReg(3)).To(Equal(uint32(0)), "never reached by fetch")
			Expect(p.Regs.ReadReg(4)).To(Equal(uint32(99)), "executed at the jump target")
		})
	})

	Describe("Store-data forwarding", func() {
		It("forwards a just-computed value into an immediately following store", func() {
			p := load([]uint32{
				addi(1, 0, 0x100), // base address
				addi(2, 0, 42),    // value to store
				sw(2, 1, 0),       // sw $2, 0($1) -- $2 forwarded from WB
			})
			run(p, 50)

			v, err := mem.Get(0x100, emu.WordSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(42)))
		})
	})

	Describe("Termination sentinel", func() {
		It("halts the pipeline once the sentinel retires", func() {
			p := load([]uint32{
				addi(1, 0, 1),
			})
			run(p, 50)
			Expect(p.Done()).To(BeTrue())
		})
	})
})
