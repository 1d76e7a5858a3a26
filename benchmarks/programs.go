package benchmarks

import "github.com/sarchlab/mips5sim/emu"

// Minimal word-at-a-time MIPS assembler for canned benchmark programs.
// Field widths match insts.Decode's bit layout exactly.

func encodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

func encodeI(op, rs, rt, imm uint32) uint32 {
	return (op << 26) | (rs << 21) | (rt << 16) | (imm & 0xFFFF)
}

const (
	opBEQ  = 0x04
	opADDI = 0x08
	opLW   = 0x23
	funADD = 0x20
)

func addi(rt, rs, imm uint32) uint32 { return encodeI(opADDI, rs, rt, imm) }
func lw(rt, rs, imm uint32) uint32   { return encodeI(opLW, rs, rt, imm) }
func beq(rs, rt, imm uint32) uint32  { return encodeI(opBEQ, rs, rt, imm) }
func add(rd, rs, rt uint32) uint32   { return encodeR(rs, rt, rd, 0, funADD) }

// Kernels is the canned set of benchmarks a Harness runs, covering spec.md §8's three named load profiles: a tight ALU loop, a
// load-heavy kernel, and a branch-heavy kernel.
func Kernels() []Benchmark {
	return []Benchmark{tightLoop(), loadHeavy(), branchHeavy()}
}

// tightLoop sums 1..5 in a register, with no memory traffic: a
// best-case CPI measurement with only RAW-forwarding pressure.
func tightLoop() Benchmark {
	return Benchmark{
		Name:        "tight_loop",
		Description: "5 dependent adds - measures EX-to-EX forwarding overhead",
		Program: []uint32{
			addi(1, 0, 0), // sum = 0
			addi(2, 0, 1), add(1, 1, 2),
			addi(2, 0, 2), add(1, 1, 2),
			addi(2, 0, 3), add(1, 1, 2),
			addi(2, 0, 4), add(1, 1, 2),
			addi(2, 0, 5), add(1, 1, 2),
		},
	}
}

// loadHeavy reads ten sequential words, exercising the data cache. No
// loaded value is read by a later instruction, so it raises no load-use
// stall.
func loadHeavy() Benchmark {
	return Benchmark{
		Name:        "load_heavy",
		Description: "10 sequential loads - measures D$ overhead",
		Setup: func(mem *emu.Memory) {
			for i := uint32(0); i < 10; i++ {
				mem.Set(0x1000+i*4, emu.WordSize, i+1)
			}
		},
		Program: []uint32{
			addi(1, 0, 0x1000),
			lw(2, 1, 0), lw(3, 1, 4), lw(4, 1, 8), lw(5, 1, 12), lw(6, 1, 16),
			lw(7, 1, 20), lw(8, 1, 24), lw(9, 1, 28), lw(10, 1, 32), lw(11, 1, 36),
		},
	}
}

// branchHeavy alternates compare-and-skip sequences, exercising the
// branch forwarding unit and the hazard unit's branch-resolution path.
func branchHeavy() Benchmark {
	return Benchmark{
		Name:        "branch_heavy",
		Description: "5 taken branches over filler adds - measures branch resolution overhead",
		Program: []uint32{
			addi(1, 0, 1), addi(2, 0, 1), beq(1, 2, 1), addi(3, 0, 999), addi(4, 4, 1),
			addi(1, 0, 2), addi(2, 0, 2), beq(1, 2, 1), addi(3, 0, 999), addi(4, 4, 1),
			addi(1, 0, 3), addi(2, 0, 3), beq(1, 2, 1), addi(3, 0, 999), addi(4, 4, 1),
			addi(1, 0, 4), addi(2, 0, 4), beq(1, 2, 1), addi(3, 0, 999), addi(4, 4, 1),
			addi(1, 0, 5), addi(2, 0, 5), beq(1, 2, 1), addi(3, 0, 999), addi(4, 4, 1),
		},
	}
}
