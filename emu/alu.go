package emu

// ALU performs the arithmetic and logic operations of the EX stage. Unlike
// a single-cycle emulator's ALU, it never touches the register file: the
// pipeline's EX stage supplies already-forwarded operand values and stores
// the result into the EX/MEM latch itself (see timing/pipeline).
type ALU struct{}

// NewALU constructs an ALU. It carries no state; the type exists so the
// pipeline can hold it as a named execution unit, mirroring how the
// teacher emulator wires an ALU/LoadStoreUnit/BranchUnit as named fields
// rather than calling free functions.
func NewALU() *ALU { return &ALU{} }

func sign(v uint32) uint32 { return (v >> 31) & 1 }

// Add computes a+b with signed-overflow detection: same-sign operands
// producing an opposite-sign result.
func (*ALU) Add(a, b uint32) (result uint32, overflow bool) {
	result = a + b
	overflow = sign(a) == sign(b) && sign(result) != sign(a)
	return
}

// AddU computes a+b; unsigned addition never overflows architecturally.
func (*ALU) AddU(a, b uint32) uint32 {
	return a + b
}

// Sub computes a-b with signed-overflow detection: differing-sign
// operands where the result takes the sign of the subtrahend.
func (*ALU) Sub(a, b uint32) (result uint32, overflow bool) {
	result = a - b
	overflow = sign(a) != sign(b) && sign(result) == sign(b)
	return
}

// SubU computes a-b; unsigned subtraction never overflows architecturally.
func (*ALU) SubU(a, b uint32) uint32 {
	return a - b
}

// And computes the bitwise AND of a and b.
func (*ALU) And(a, b uint32) uint32 { return a & b }

// Or computes the bitwise OR of a and b.
func (*ALU) Or(a, b uint32) uint32 { return a | b }

// Nor computes the bitwise NOR of a and b.
func (*ALU) Nor(a, b uint32) uint32 { return ^(a | b) }

// Slt performs a signed "set less than": 1 if a < b as signed 32-bit
// values, else 0.
func (*ALU) Slt(a, b uint32) uint32 {
	if int32(a) < int32(b) {
		return 1
	}
	return 0
}

// Sltu performs an unsigned "set less than".
func (*ALU) Sltu(a, b uint32) uint32 {
	if a < b {
		return 1
	}
	return 0
}

// Sll performs a logical left shift of value by shamt bits.
func (*ALU) Sll(value, shamt uint32) uint32 { return value << shamt }

// Srl performs a logical right shift of value by shamt bits.
func (*ALU) Srl(value, shamt uint32) uint32 { return value >> shamt }

// Lui computes the LUI result: imm placed in the upper 16 bits.
func (*ALU) Lui(imm uint32) uint32 { return imm << 16 }

// EffectiveAddress computes the load/store effective address
// rs + signExt(imm), used by EX for LW/LBU/LHU/SW/SH/SB.
func (*ALU) EffectiveAddress(rs, signExtImm uint32) uint32 { return rs + signExtImm }
