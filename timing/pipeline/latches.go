// Package pipeline implements the five-stage MIPS pipeline: the four
// inter-stage latches, the EX-input and branch-input forwarding networks,
// the load-use/branch hazard unit, and the stage functions themselves,
// sequenced WB→MEM→EX→ID→IF each cycle per spec.md §4.5.
package pipeline

import "github.com/sarchlab/mips5sim/insts"

// Sentinel is the halt-marker instruction word (spec.md §6).
const Sentinel uint32 = 0xFEEDFEED

// ExceptionAddr is the fixed exception vector (spec.md §6).
const ExceptionAddr uint32 = 0x8000

// IFIDLatch carries the raw fetched word and its NPC from IF to ID.
// Blocked means IF is still waiting on a multi-cycle instruction-cache
// miss and Instr is not yet valid. Halt means the fetched word was the
// termination sentinel, riding the pipeline as an inert bubble.
type IFIDLatch struct {
	Instr   uint32
	NPC     uint32
	Blocked bool
	Halt    bool
}

// IDEXLatch carries a decoded instruction and its register operands from
// ID to EX.
type IDEXLatch struct {
	Inst      insts.Instruction
	NPC       uint32
	ReadData1 uint32
	ReadData2 uint32
	Ctrl      insts.Control
	Blocked   bool
	Halt      bool
}

// EXMEMLatch carries an executed instruction's ALU result and store-data
// from EX to MEM.
type EXMEMLatch struct {
	Inst      insts.Instruction
	NPC       uint32
	ALUResult uint32
	StoreData uint32
	Ctrl      insts.Control
	Blocked   bool
	Halt      bool
}

// MEMWBLatch carries a completed instruction's result and any loaded data
// from MEM to WB.
type MEMWBLatch struct {
	Inst      insts.Instruction
	NPC       uint32
	ALUResult uint32
	Data      uint32
	Ctrl      insts.Control
	Blocked   bool
	Halt      bool
}

// destReg returns the architectural register an instruction writes,
// given its control bundle. Register numbers are taken directly from the
// decoded instruction, not the control bundle.
func destReg(inst insts.Instruction, ctrl insts.Control) uint32 {
	return inst.DestReg(ctrl.RegDst)
}

// squash clears an IF/ID latch to its zero value (a bubble), without
// touching its Blocked flag — callers that intend to clear Blocked too
// do so explicitly.
func (l *IFIDLatch) squash() { *l = IFIDLatch{Blocked: l.Blocked} }

func (l *IDEXLatch) squash() { *l = IDEXLatch{Blocked: l.Blocked} }

func (l *EXMEMLatch) squash() { *l = EXMEMLatch{Blocked: l.Blocked} }
