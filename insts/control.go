package insts

// Control is the nine-boolean control-signal bundle described by
// spec.md §3, driving the ID/EX, EX/MEM and MEM/WB latches.
type Control struct {
	RegDst   bool // write Rd (true) vs Rt (false)
	ALUOp1   bool
	ALUOp2   bool
	ALUSrc   bool // register (false) vs immediate (true) as ALU operand 2
	Branch   bool
	MemRead  bool
	MemWrite bool
	RegWrite bool
	MemToReg bool
}

// The five canonical control bundles named in spec.md §3. ALUOp1/ALUOp2
// form the 2-bit ALUOp code stageEX dispatches on: "00" computes a
// load/store effective address, "10" is an I-type ALU op (the opcode
// itself still picks which one of seven, since two bits can't), "11" is
// R-type (funct picks the operation). NOP is the value written into a
// squashed or freshly-cleared latch.
//
// Branch is never set by any of these five: BEQ/BNE decode to NOP, same
// as J/JAL, because this pipeline resolves the branch comparison in ID
// (HazardUnit, consulting the forwarded operands directly) rather than
// in EX against an ALU zero flag the way a classical MIPS control unit
// does. The field stays in Control for parity with that familiar
// nine-signal shape, but under this design's ID-resolved branches it has
// no later stage left to drive.
var (
	ControlRType = Control{RegDst: true, ALUOp1: true, ALUOp2: true, RegWrite: true}
	ControlLoad  = Control{ALUSrc: true, MemRead: true, RegWrite: true, MemToReg: true}
	ControlStore = Control{ALUSrc: true, MemWrite: true}
	ControlIType = Control{ALUOp1: true, ALUSrc: true, RegWrite: true}
	ControlNOP   = Control{}
)

// DecodeControl maps a decoded instruction's opcode to its control
// bundle, per spec.md §4.5's updateControl / ID stage step 2. It
// reports ok=false for an unrecognized opcode so the ID stage can raise
// the illegal-opcode exception.
func DecodeControl(inst Instruction) (ctrl Control, ok bool) {
	if !IsValidOp(inst.Op) {
		return ControlNOP, false
	}
	switch {
	case inst.Op == OpRType:
		return ControlRType, true
	case IsLoad(inst.Op):
		return ControlLoad, true
	case IsStore(inst.Op):
		return ControlStore, true
	case iTypeALUOps[inst.Op]:
		return ControlIType, true
	default: // BEQ, BNE, J, JAL — resolved in ID, no ALU/mem/writeback control needed
		return ControlNOP, true
	}
}
