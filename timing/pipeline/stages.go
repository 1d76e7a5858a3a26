package pipeline

import "github.com/sarchlab/mips5sim/insts"

// Tick advances the pipeline by one cycle. Stages run in WB, MEM, EX, ID,
// IF order so that a stage always sees the latch contents its upstream
// neighbor left at the END of the previous cycle, emulating single-edge
// hardware latches without double-buffering (spec.md §4.5).
func (p *Pipeline) Tick() {
	p.stats.Cycles++
	p.redirect = false

	p.fwd.Update(p.idex, p.exmem, p.memwb)

	next, nextValid := p.peekNext()
	if nextValid {
		p.bfwd.Update(next, p.idex, p.exmem, p.memwb)
	} else {
		p.bfwd = BranchForwardUnit{}
	}

	// stageMEM overwrites p.memwb, so the WB-forwarded values EX and the
	// branch comparison use come from this copy of MEM/WB as it stood
	// before this cycle's stages ran.
	memwbPrev := p.memwb

	p.stageWB()
	p.stageMEM()
	frontStall := p.exmem.Blocked

	hazardStall := false
	if !frontStall && nextValid {
		rs := p.Regs.ReadReg(next.Rs)
		rt := p.Regs.ReadReg(next.Rt)
		p.hz.Evaluate(next, p.idex, p.exmem, memwbPrev, p.bfwd, rs, rt, p.ifid.NPC)
		hazardStall = p.hz.Stall
	} else {
		p.hz = HazardUnit{}
	}

	p.stageEX(frontStall, memwbPrev)
	p.stageID(frontStall, hazardStall, next, nextValid)
	p.stageIF(frontStall, hazardStall)

	if p.memwb.Inst.Word != 0 && !p.memwb.Blocked {
		p.stats.Instructions++
	}

	p.trace = CycleTrace{
		Cycle: p.stats.Cycles,
		PC:    p.PC,
		IFID:  p.ifid,
		IDEX:  p.idex,
		EXMEM: p.exmem,
		MEMWB: p.memwb,
		Stall: hazardStall || frontStall,
		Jump:  p.hz.Jump,
	}
	if p.trace.Stall {
		p.stats.StallCycles++
	}
}

// peekNext decodes the instruction currently sitting in IF/ID, without
// mutating any state, for use by the forwarding and hazard units before
// ID actually runs this cycle.
func (p *Pipeline) peekNext() (insts.Instruction, bool) {
	if p.ifid.Blocked || p.ifid.Halt {
		return insts.Instruction{}, false
	}
	return insts.Decode(p.ifid.Instr), true
}

// stageWB commits the instruction in MEM/WB to the register file.
func (p *Pipeline) stageWB() {
	mw := p.memwb
	if mw.Blocked {
		return
	}
	if mw.Ctrl.RegWrite {
		dest := destReg(mw.Inst, mw.Ctrl)
		p.Regs.WriteReg(dest, wbWriteValue(mw))
	}
	// JAL's link write is unconditional on opcode, independent of the
	// (false, for JAL) RegWrite control signal.
	if mw.Inst.Word != 0 && mw.Inst.Op == insts.OpJAL {
		p.Regs.WriteReg(31, mw.NPC+4)
	}
	if mw.Halt {
		p.Halted = true
	}
}

// stageMEM drives the data cache for the instruction in EX/MEM, handling
// multi-cycle miss stalls by holding EX/MEM Blocked until the access
// completes.
func (p *Pipeline) stageMEM() {
	if p.exmem.Blocked {
		p.memWait--
		if p.memWait == 0 {
			p.memwb = p.memStash
			p.exmem.Blocked = false
		} else {
			p.memwb = MEMWBLatch{Blocked: true}
		}
		return
	}

	em := p.exmem
	if em.Halt {
		p.memwb = MEMWBLatch{Halt: true}
		return
	}

	if !em.Ctrl.MemRead && !em.Ctrl.MemWrite {
		p.memwb = MEMWBLatch{
			Inst:      em.Inst,
			NPC:       em.NPC,
			ALUResult: em.ALUResult,
			Ctrl:      em.Ctrl,
		}
		return
	}

	size := accessSize(em.Inst.Op)

	if em.Ctrl.MemRead {
		r := p.DCache.Read(em.ALUResult, size)
		finished := MEMWBLatch{
			Inst:      em.Inst,
			NPC:       em.NPC,
			ALUResult: em.ALUResult,
			Data:      r.Data,
			Ctrl:      em.Ctrl,
		}
		p.completeMemAccess(r.Latency, finished)
		return
	}

	storeData := em.StoreData
	if p.fwd.FwdStore {
		storeData = wbWriteValue(p.memwb)
	}
	r := p.DCache.Write(em.ALUResult, size, storeData)
	finished := MEMWBLatch{
		Inst:      em.Inst,
		NPC:       em.NPC,
		ALUResult: em.ALUResult,
		Ctrl:      em.Ctrl,
	}
	p.completeMemAccess(r.Latency, finished)
}

func (p *Pipeline) completeMemAccess(latency uint64, finished MEMWBLatch) {
	if latency <= 1 {
		p.memwb = finished
		return
	}
	p.memStash = finished
	p.memWait = latency - 1
	p.exmem.Blocked = true
	p.memwb = MEMWBLatch{Blocked: true}
}

// stageEX executes the instruction in ID/EX, applying EX-input
// forwarding, and latches its result into EX/MEM. It is a no-op while
// frontStall holds (a MEM-stage miss is still in flight). memwbPrev is
// the MEM/WB latch as it stood at the start of the cycle, the source of
// WB-forwarded operands.
func (p *Pipeline) stageEX(frontStall bool, memwbPrev MEMWBLatch) {
	if frontStall {
		return
	}

	id := p.idex
	if id.Halt {
		p.exmem = EXMEMLatch{Halt: true}
		return
	}
	if id.Inst.Word == 0 && id.Ctrl == insts.ControlNOP {
		// A bubble: no hazard, no producer, nothing for EX to do beyond
		// propagating an equally empty EX/MEM latch.
		p.exmem = EXMEMLatch{}
		return
	}

	op1 := id.ReadData1
	switch p.fwd.Fwd1 {
	case HazardMem:
		op1 = p.exmem.ALUResult
	case HazardWB:
		op1 = wbWriteValue(memwbPrev)
	}
	op2reg := id.ReadData2
	switch p.fwd.Fwd2 {
	case HazardMem:
		op2reg = p.exmem.ALUResult
	case HazardWB:
		op2reg = wbWriteValue(memwbPrev)
	}

	inst := id.Inst
	ctrl := id.Ctrl

	// aluOperand2 selects between a register value and the decoded
	// instruction's immediate per ctrl.ALUSrc: R-type reads a register
	// (ALUSrc false), every load/store/I-type-ALU op below reads its
	// immediate instead. ANDI/ORI take the zero-extended immediate,
	// matching MIPS's logical-immediate convention; everything else that
	// sets ALUSrc sign-extends.
	aluOperand2 := op2reg
	if ctrl.ALUSrc {
		aluOperand2 = inst.SignExtImm
		if inst.Op == insts.OpANDI || inst.Op == insts.OpORI {
			aluOperand2 = inst.ZeroExtImm
		}
	}

	if inst.IsJR() {
		p.redirect = true
		p.redirectTarget = op1
		p.exmem = EXMEMLatch{}
		return
	}

	var result uint32
	overflow := false

	// Dispatch on the 2-bit ALUOp code (ctrl.ALUOp1/ALUOp2) spec.md's
	// control decoder assigns per opcode; LUI and R-type's funct-specific
	// mux still need the decoded instruction itself, since ALUOp alone
	// can't distinguish every operation within its class.
	switch {
	case !ctrl.ALUOp1 && !ctrl.ALUOp2:
		// ALUOp 00: load/store effective address. Branches and J/JAL
		// also decode to this code (neither ALUOp bit set) but have
		// MemRead/MemWrite both false, so the ALU does nothing for them.
		if ctrl.MemRead || ctrl.MemWrite {
			result = p.alu.EffectiveAddress(op1, aluOperand2)
		}
	case ctrl.ALUOp1 && !ctrl.ALUOp2:
		// ALUOp 10: I-type ALU op.
		switch inst.Op {
		case insts.OpLUI:
			result = p.alu.Lui(inst.Imm)
		case insts.OpADDI:
			result, overflow = p.alu.Add(op1, aluOperand2)
		case insts.OpADDIU:
			result = p.alu.AddU(op1, aluOperand2)
		case insts.OpSLTI:
			result = p.alu.Slt(op1, aluOperand2)
		case insts.OpSLTIU:
			result = p.alu.Sltu(op1, aluOperand2)
		case insts.OpANDI:
			result = p.alu.And(op1, aluOperand2)
		case insts.OpORI:
			result = p.alu.Or(op1, aluOperand2)
		}
	case ctrl.ALUOp1 && ctrl.ALUOp2:
		// ALUOp 11: R-type; funct picks the operation.
		switch inst.Funct {
		case insts.FunADD:
			result, overflow = p.alu.Add(op1, aluOperand2)
		case insts.FunADDU:
			result = p.alu.AddU(op1, aluOperand2)
		case insts.FunSUB:
			result, overflow = p.alu.Sub(op1, aluOperand2)
		case insts.FunSUBU:
			result = p.alu.SubU(op1, aluOperand2)
		case insts.FunAND:
			result = p.alu.And(op1, aluOperand2)
		case insts.FunOR:
			result = p.alu.Or(op1, aluOperand2)
		case insts.FunNOR:
			result = p.alu.Nor(op1, aluOperand2)
		case insts.FunSLT:
			result = p.alu.Slt(op1, aluOperand2)
		case insts.FunSLTU:
			result = p.alu.Sltu(op1, aluOperand2)
		case insts.FunSLL:
			result = p.alu.Sll(op2reg, inst.Shamt)
		case insts.FunSRL:
			result = p.alu.Srl(op2reg, inst.Shamt)
		}
	}

	if overflow {
		p.exmem = EXMEMLatch{}
		p.stats.Exceptions++
		p.redirect = true
		p.redirectTarget = ExceptionAddr
		return
	}

	p.exmem = EXMEMLatch{
		Inst:      inst,
		NPC:       id.NPC,
		ALUResult: result,
		StoreData: op2reg,
		Ctrl:      ctrl,
	}
}

// stageID decodes the instruction in IF/ID, reads its register operands,
// detects hazards, and resolves branches/jumps. It bubbles ID/EX when
// hazardStall holds, and does nothing at all (front end frozen) when
// frontStall holds.
func (p *Pipeline) stageID(frontStall, hazardStall bool, next insts.Instruction, nextValid bool) {
	if frontStall {
		return
	}
	if p.redirect {
		p.idex = IDEXLatch{}
		return
	}
	if hazardStall {
		p.idex = IDEXLatch{}
		return
	}
	if !nextValid {
		p.idex = IDEXLatch{Halt: p.ifid.Halt}
		return
	}

	ctrl, ok := insts.DecodeControl(next)
	if !ok {
		p.idex = IDEXLatch{}
		p.stats.Exceptions++
		p.redirect = true
		p.redirectTarget = ExceptionAddr
		return
	}

	p.idex = IDEXLatch{
		Inst:      next,
		NPC:       p.ifid.NPC,
		ReadData1: p.Regs.ReadReg(next.Rs),
		ReadData2: p.Regs.ReadReg(next.Rt),
		Ctrl:      ctrl,
	}

	if p.hz.Jump {
		p.stats.BranchesTaken++
	}
	if next.Op == insts.OpBEQ || next.Op == insts.OpBNE {
		p.stats.BranchesResolved++
	}
}

// stageIF fetches the next instruction word through the instruction
// cache, unless frontStall or hazardStall holds the PC (in which case IF
// does not advance), or an exception/jump redirects the PC this cycle.
func (p *Pipeline) stageIF(frontStall, hazardStall bool) {
	if frontStall || hazardStall {
		return
	}

	if p.redirect {
		p.PC = p.redirectTarget
		p.fetchPC()
		return
	}
	if p.hz.Jump {
		p.PC = p.hz.JumpTarget
		p.fetchPC()
		return
	}

	if p.ifid.Blocked {
		p.ifWait--
		if p.ifWait == 0 {
			p.ifid = p.ifStash
		}
		return
	}

	if p.fetchDone {
		p.ifid = IFIDLatch{}
		return
	}

	p.fetchPC()
}

func (p *Pipeline) fetchPC() {
	r := p.ICache.Read(p.PC, 4)
	npc := p.PC + 4
	if r.Data == Sentinel {
		p.fetchDone = true
		p.ifid = IFIDLatch{Instr: r.Data, NPC: npc, Halt: true}
		return
	}
	if r.Latency <= 1 {
		p.ifid = IFIDLatch{Instr: r.Data, NPC: npc}
		p.PC = npc
		return
	}
	p.ifWait = r.Latency - 1
	p.ifStash = IFIDLatch{Instr: r.Data, NPC: npc}
	p.ifid = IFIDLatch{Blocked: true}
	p.PC = npc
}

// accessSize returns the byte width of a load/store opcode's memory
// access.
func accessSize(op insts.Op) int {
	switch op {
	case insts.OpLBU, insts.OpSB:
		return 1
	case insts.OpLHU, insts.OpSH:
		return 2
	default:
		return 4
	}
}
