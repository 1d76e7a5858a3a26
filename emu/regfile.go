package emu

// NumRegs is the size of the MIPS general-purpose register file.
const NumRegs = 32

// Canonical MIPS register numbers used by the pipeline (link register and
// the zero register, which spec.md requires stays hardwired to zero).
const (
	RegZero = 0
	RegRA   = 31
)

// RegFile is the 32-word general purpose register file. Register 0 is
// hardwired to zero: WriteReg silently drops writes to it, matching
// spec.md §3's invariant `regs[0] == 0`.
type RegFile struct {
	regs [NumRegs]uint32
}

// ReadReg returns the value of register r (0..31).
func (rf *RegFile) ReadReg(r uint32) uint32 {
	return rf.regs[r]
}

// WriteReg writes value into register r, unless r is register 0.
func (rf *RegFile) WriteReg(r uint32, value uint32) {
	if r == RegZero {
		return
	}
	rf.regs[r] = value
}

// Snapshot returns a copy of all 32 registers, for dumping or testing.
func (rf *RegFile) Snapshot() [NumRegs]uint32 {
	return rf.regs
}
