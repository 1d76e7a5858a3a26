package pipeline_test

import "github.com/sarchlab/mips5sim/timing/cache"

// Minimal word-at-a-time MIPS assembler, used only to build hand-written
// test programs. Field widths match insts.Decode's bit layout exactly.

func encodeR(rs, rt, rd, shamt, funct uint32) uint32 {
	return (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
}

func encodeI(op, rs, rt, imm uint32) uint32 {
	return (op << 26) | (rs << 21) | (rt << 16) | (imm & 0xFFFF)
}

func encodeJ(op, target uint32) uint32 {
	return (op << 26) | ((target >> 2) & 0x3FFFFFF)
}

const (
	opRType = 0x00
	opJ     = 0x02
	opJAL   = 0x03
	opBEQ   = 0x04
	opBNE   = 0x05
	opADDI  = 0x08
	opADDIU = 0x09
	opANDI  = 0x0c
	opORI   = 0x0d
	opLUI   = 0x0f
	opLW    = 0x23
	opSW    = 0x2b
)

const (
	funADD = 0x20
	funSUB = 0x22
	funJR  = 0x08
)

func addi(rt, rs, imm uint32) uint32 { return encodeI(opADDI, rs, rt, imm) }
func ori(rt, rs, imm uint32) uint32  { return encodeI(opORI, rs, rt, imm) }
func lui(rt, imm uint32) uint32      { return encodeI(opLUI, 0, rt, imm) }
func lw(rt, rs, imm uint32) uint32   { return encodeI(opLW, rs, rt, imm) }
func sw(rt, rs, imm uint32) uint32   { return encodeI(opSW, rs, rt, imm) }
func beq(rs, rt, imm uint32) uint32  { return encodeI(opBEQ, rs, rt, imm) }
func add(rd, rs, rt uint32) uint32   { return encodeR(rs, rt, rd, 0, funADD) }
func sub(rd, rs, rt uint32) uint32   { return encodeR(rs, rt, rd, 0, funSUB) }
func jal(target uint32) uint32       { return encodeJ(opJAL, target) }
func jr(rs uint32) uint32            { return encodeR(rs, 0, 0, 0, funJR) }

const sentinel = uint32(0xFEEDFEED)

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w>>24), byte(w>>16), byte(w>>8), byte(w))
	}
	return out
}

// noStallCache is a small, always-single-cycle cache configuration so
// hazard/forwarding tests aren't also exercising cache-miss stalls.
func noStallCache() cache.Config {
	return cache.Config{Size: 1024, Associativity: 2, BlockSize: 32, HitLatency: 1, MissLatency: 0}
}
