package insts

// Instruction is a decoded instruction word with every field the pipeline
// needs isolated ahead of time, per spec.md §3's "Decoded instruction".
type Instruction struct {
	Word       uint32
	Op         Op
	Rs         uint32
	Rt         uint32
	Rd         uint32
	Shamt      uint32
	Funct      Funct
	Imm        uint32 // zero-extended 16-bit immediate, bits 15:0
	SignExtImm uint32 // sign-extended 16-bit immediate
	ZeroExtImm uint32 // alias of Imm, named per spec.md §3
	JumpAddr   uint32 // bits(25:0) << 2
}

// bits extracts the inclusive bit range [hi:lo] from w.
func bits(w uint32, hi, lo int) uint32 {
	n := hi - lo + 1
	mask := uint32(1)<<uint(n) - 1
	return (w >> uint(lo)) & mask
}

func signExtend16(v uint32) uint32 {
	if v&0x8000 != 0 {
		return v | 0xFFFF0000
	}
	return v
}

// Decode converts a raw 32-bit instruction word into its decoded form.
// This is a pure function: it performs no side effects and raises no
// exceptions (illegal-opcode detection happens in the ID stage, which
// consults IsValidOp on the result).
func Decode(word uint32) Instruction {
	imm := bits(word, 15, 0)
	return Instruction{
		Word:       word,
		Op:         Op(bits(word, 31, 26)),
		Rs:         bits(word, 25, 21),
		Rt:         bits(word, 20, 16),
		Rd:         bits(word, 15, 11),
		Shamt:      bits(word, 10, 6),
		Funct:      Funct(bits(word, 5, 0)),
		Imm:        imm,
		SignExtImm: signExtend16(imm),
		ZeroExtImm: imm,
		JumpAddr:   bits(word, 25, 0) << 2,
	}
}

// DestReg returns the architectural destination register this
// instruction writes, given the control bundle's RegDst selection:
// Rd when RegDst is set, Rt otherwise.
func (i Instruction) DestReg(regDst bool) uint32 {
	if regDst {
		return i.Rd
	}
	return i.Rt
}

// IsJR reports whether this is the R-type JR instruction (funct 0x08).
func (i Instruction) IsJR() bool {
	return i.Op == OpRType && i.Funct == FunJR
}

var rTypeMnemonics = map[Funct]string{
	FunSLL: "sll", FunSRL: "srl", FunJR: "jr", FunADD: "add", FunADDU: "addu",
	FunSUB: "sub", FunSUBU: "subu", FunAND: "and", FunOR: "or", FunNOR: "nor",
	FunSLT: "slt", FunSLTU: "sltu",
}

var opMnemonics = map[Op]string{
	OpJ: "j", OpJAL: "jal", OpBEQ: "beq", OpBNE: "bne",
	OpADDI: "addi", OpADDIU: "addiu", OpSLTI: "slti", OpSLTIU: "sltiu",
	OpANDI: "andi", OpORI: "ori", OpLUI: "lui",
	OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu", OpSB: "sb", OpSH: "sh", OpSW: "sw",
}

// Mnemonic returns a short human-readable name for this instruction's
// opcode/funct, for -trace output and log lines. It is never consulted by
// any execution path.
func (i Instruction) Mnemonic() string {
	if i.Word == 0 {
		return "nop"
	}
	if i.Op == OpRType {
		if m, ok := rTypeMnemonics[i.Funct]; ok {
			return m
		}
		return "r?"
	}
	if m, ok := opMnemonics[i.Op]; ok {
		return m
	}
	return "?"
}
