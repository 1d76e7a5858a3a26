package pipeline

import "github.com/sarchlab/mips5sim/insts"

// HazardKind names which pipeline stage is the source of a forwarded
// value, per spec.md §4.3.
type HazardKind int

const (
	HazardNone HazardKind = iota
	HazardMem          // forward from EX/MEM (the instruction now in MEM)
	HazardWB           // forward from MEM/WB (the instruction now in WB)
)

// ExForwardUnit computes the EX-stage operand-forwarding decisions: for
// each of the two source registers an about-to-execute instruction reads,
// which prior in-flight instruction (if any) should supply its value
// instead of the stale register-file read latched in ID. MEM-stage
// hazards take priority over WB-stage hazards (closest producer wins),
// grounded on original_source/src/DatapathStruct.h's FORWARD_UNIT.
type ExForwardUnit struct {
	Fwd1     HazardKind // source for Rs
	Fwd2     HazardKind // source for Rt
	FwdStore bool       // forward WB's write-data as EX/MEM's store-data
}

// Update recomputes the forwarding decision from the current latch
// contents. It is a pure function of state, called once per cycle before
// any stage runs (spec.md §4.5 step 2).
func (f *ExForwardUnit) Update(idex IDEXLatch, exmem EXMEMLatch, memwb MEMWBLatch) {
	f.Fwd1, f.Fwd2 = HazardNone, HazardNone
	f.FwdStore = false

	if idex.Blocked {
		return
	}

	memWrites := exmem.Ctrl.RegWrite && !exmem.Blocked && destReg(exmem.Inst, exmem.Ctrl) != emuRegZero
	wbWrites := memwb.Ctrl.RegWrite && !memwb.Blocked && destReg(memwb.Inst, memwb.Ctrl) != emuRegZero

	memDest := destReg(exmem.Inst, exmem.Ctrl)
	wbDest := destReg(memwb.Inst, memwb.Ctrl)

	if memWrites && memDest == idex.Inst.Rs {
		f.Fwd1 = HazardMem
	} else if wbWrites && wbDest == idex.Inst.Rs {
		f.Fwd1 = HazardWB
	}

	if memWrites && memDest == idex.Inst.Rt {
		f.Fwd2 = HazardMem
	} else if wbWrites && wbDest == idex.Inst.Rt {
		f.Fwd2 = HazardWB
	}

	// Store-data forwarding: EX/MEM holds a store whose data register is
	// about to be overwritten by MEM/WB this same cycle.
	if exmem.Ctrl.MemWrite && !exmem.Blocked && wbWrites && wbDest == exmem.Inst.Rt {
		f.FwdStore = true
	}
}

const emuRegZero = 0

// BranchHazardKind names the four cases the branch hazard table
// distinguishes, per spec.md §4.3/§4.4.
type BranchHazardKind int

const (
	BranchHazardNone BranchHazardKind = iota
	BranchHazardEX                    // ID/EX producer: stall one cycle
	BranchHazardMem                   // EX/MEM non-load producer: forward, no stall
	BranchHazardLoadMem                // EX/MEM load producer: stall, then forward
	BranchHazardWB                    // MEM/WB producer: forward, no stall
)

// BranchForwardUnit computes whether the branch operand(s) needed by the
// instruction currently entering ID (a BEQ/BNE) are available, stale, or
// must be forwarded, in priority order ID/EX > EX/MEM > MEM/WB (the
// youngest matching producer wins), grounded on
// original_source/src/DatapathStruct.h's BRANCH_FORWARD_UNIT and
// cycle_sim.cpp's checkFwd/checkEX/checkMEM/checkLOADMEM/checkWB.
type BranchForwardUnit struct {
	Fwd1 BranchHazardKind // source for Rs
	Fwd2 BranchHazardKind // source for Rt
}

// Update recomputes the branch-forwarding decision for the decoded
// instruction about to enter ID this cycle. Non-branch instructions
// always resolve to BranchHazardNone for both operands.
func (f *BranchForwardUnit) Update(next insts.Instruction, idex IDEXLatch, exmem EXMEMLatch, memwb MEMWBLatch) {
	f.Fwd1, f.Fwd2 = BranchHazardNone, BranchHazardNone
	if next.Op != insts.OpBEQ && next.Op != insts.OpBNE {
		return
	}

	f.Fwd1 = classifyBranchSource(next.Rs, idex, exmem, memwb)
	f.Fwd2 = classifyBranchSource(next.Rt, idex, exmem, memwb)
}

// wbWriteValue returns the value a MEM/WB latch will write into the
// register file this cycle: the loaded data for loads, the ALU result
// otherwise.
func wbWriteValue(latch MEMWBLatch) uint32 {
	if latch.Ctrl.MemToReg {
		return latch.Data
	}
	return latch.ALUResult
}

func classifyBranchSource(reg uint32, idex IDEXLatch, exmem EXMEMLatch, memwb MEMWBLatch) BranchHazardKind {
	if reg == emuRegZero {
		return BranchHazardNone
	}

	// ID/EX: the instruction about to move into EX. Any register-writing
	// producer here is too fresh to forward; the branch stalls.
	if !idex.Blocked && idex.Ctrl.RegWrite && destReg(idex.Inst, idex.Ctrl) == reg {
		return BranchHazardEX
	}

	// EX/MEM: the instruction about to move into MEM.
	if !exmem.Blocked && destReg(exmem.Inst, exmem.Ctrl) == reg {
		if exmem.Ctrl.MemRead {
			if exmem.Ctrl.RegWrite {
				return BranchHazardLoadMem
			}
		} else if exmem.Ctrl.RegWrite {
			return BranchHazardMem
		}
	}

	// MEM/WB: the instruction about to retire.
	if !memwb.Blocked && memwb.Ctrl.RegWrite && destReg(memwb.Inst, memwb.Ctrl) == reg {
		return BranchHazardWB
	}

	return BranchHazardNone
}
