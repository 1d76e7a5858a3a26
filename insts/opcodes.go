// Package insts decodes 32-bit MIPS instruction words into the field
// layout and control signals the pipeline needs, grounded on the
// teacher's insts.Decoder seam (one pure decode step ahead of execution)
// and on the original simulator's UtilityEnum/UtilityStruct opcode
// tables and decodeInst function.
package insts

// Op holds a 6-bit primary opcode (bits 31:26).
type Op uint32

// Opcodes, selected per spec.md §6.
const (
	OpRType Op = 0x00 // funct selects the actual operation
	OpJ     Op = 0x02
	OpJAL   Op = 0x03
	OpBEQ   Op = 0x04
	OpBNE   Op = 0x05
	OpADDI  Op = 0x08
	OpADDIU Op = 0x09
	OpSLTI  Op = 0x0a
	OpSLTIU Op = 0x0b
	OpANDI  Op = 0x0c
	OpORI   Op = 0x0d
	OpLUI   Op = 0x0f
	OpLW    Op = 0x23
	OpLBU   Op = 0x24
	OpLHU   Op = 0x25
	OpSB    Op = 0x28
	OpSH    Op = 0x29
	OpSW    Op = 0x2b
)

// Funct holds the 6-bit function code (bits 5:0) that selects the
// operation for an R-type instruction (op == OpRType).
type Funct uint32

// Function codes, selected per spec.md §6.
const (
	FunSLL  Funct = 0x00
	FunSRL  Funct = 0x02
	FunJR   Funct = 0x08
	FunADD  Funct = 0x20
	FunADDU Funct = 0x21
	FunSUB  Funct = 0x22
	FunSUBU Funct = 0x23
	FunAND  Funct = 0x24
	FunOR   Funct = 0x25
	FunNOR  Funct = 0x27
	FunSLT  Funct = 0x2a
	FunSLTU Funct = 0x2b
)

// validOps is the complete set of opcodes this core accepts; any other
// primary opcode raises the illegal-opcode exception in ID.
var validOps = map[Op]bool{
	OpRType: true, OpJ: true, OpJAL: true, OpBEQ: true, OpBNE: true,
	OpADDI: true, OpADDIU: true, OpSLTI: true, OpSLTIU: true,
	OpANDI: true, OpORI: true, OpLUI: true,
	OpLW: true, OpLBU: true, OpLHU: true,
	OpSB: true, OpSH: true, OpSW: true,
}

// loadOps are opcodes that read data memory.
var loadOps = map[Op]bool{OpLW: true, OpLBU: true, OpLHU: true}

// storeOps are opcodes that write data memory.
var storeOps = map[Op]bool{OpSW: true, OpSB: true, OpSH: true}

// iTypeALUOps are non-branch, non-load/store I-type ALU operations.
var iTypeALUOps = map[Op]bool{
	OpADDI: true, OpADDIU: true, OpSLTI: true, OpSLTIU: true,
	OpANDI: true, OpORI: true, OpLUI: true,
}

// branchOrJumpOps are opcodes resolved in ID rather than EX.
var branchOrJumpOps = map[Op]bool{OpBEQ: true, OpBNE: true, OpJ: true, OpJAL: true}

// IsValidOp reports whether op is a recognized primary opcode.
func IsValidOp(op Op) bool { return validOps[op] }

// IsLoad reports whether op reads data memory.
func IsLoad(op Op) bool { return loadOps[op] }

// IsStore reports whether op writes data memory.
func IsStore(op Op) bool { return storeOps[op] }

// IsBranchOrJump reports whether op is resolved in the ID stage
// (BEQ, BNE, J, JAL). JR is an R-type funct and is handled separately.
func IsBranchOrJump(op Op) bool { return branchOrJumpOps[op] }
