package pipeline

import "github.com/sarchlab/mips5sim/insts"

// HazardUnit decides, once per cycle, whether ID must stall (freezing PC
// and IF/ID, bubbling ID/EX) and whether a branch or jump resolves this
// cycle, grounded on original_source/src/DatapathStruct.h's HAZARD_UNIT
// and cycle_sim.cpp's checkHazard.
type HazardUnit struct {
	Stall      bool
	Jump       bool
	JumpTarget uint32
}

// Evaluate computes the hazard decision for the instruction (next) about
// to be decoded by ID this cycle. rs/rt are its raw register-file reads;
// the branch comparison substitutes forwarded values per bfwd.
//
// Load-use and branch resolution are mutually exclusive within a cycle:
// if ID/EX currently holds a load whose destination next reads, the
// load-use stall wins and no branch or jump resolves this cycle, even if
// next is itself a branch. A load in ID/EX that next does not depend on
// does not block resolution.
func (h *HazardUnit) Evaluate(
	next insts.Instruction,
	idex IDEXLatch,
	exmem EXMEMLatch,
	memwb MEMWBLatch,
	bfwd BranchForwardUnit,
	rs, rt uint32,
	npc uint32,
) {
	h.Stall, h.Jump, h.JumpTarget = false, false, 0

	if !idex.Blocked && idex.Ctrl.MemRead {
		dest := destReg(idex.Inst, idex.Ctrl)
		if dest != emuRegZero && (dest == next.Rs || dest == next.Rt) {
			h.Stall = true
			return
		}
	}

	switch next.Op {
	case insts.OpJ, insts.OpJAL:
		h.Jump = true
		h.JumpTarget = (npc & 0xF0000000) | next.JumpAddr
		return
	case insts.OpBEQ, insts.OpBNE:
	default:
		return
	}

	if bfwd.Fwd1 == BranchHazardEX || bfwd.Fwd2 == BranchHazardEX ||
		bfwd.Fwd1 == BranchHazardLoadMem || bfwd.Fwd2 == BranchHazardLoadMem {
		h.Stall = true
		return
	}

	a, b := rs, rt
	switch bfwd.Fwd1 {
	case BranchHazardMem:
		a = exmem.ALUResult
	case BranchHazardWB:
		a = wbWriteValue(memwb)
	}
	switch bfwd.Fwd2 {
	case BranchHazardMem:
		b = exmem.ALUResult
	case BranchHazardWB:
		b = wbWriteValue(memwb)
	}

	taken := (next.Op == insts.OpBEQ && a == b) || (next.Op == insts.OpBNE && a != b)
	if taken {
		h.Jump = true
		h.JumpTarget = npc + (next.SignExtImm << 2)
	}
}
