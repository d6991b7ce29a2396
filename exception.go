package rv32

// Exception cause codes (mcause/scause with the interrupt bit clear).
const (
	causeMisalignedFetch  uint32 = 0
	causeFetchAccess      uint32 = 1
	causeIllegalInstr     uint32 = 2
	causeBreakpoint       uint32 = 3
	causeMisalignedLoad   uint32 = 4
	causeLoadAccess       uint32 = 5
	causeMisalignedStore  uint32 = 6
	causeStoreAccess      uint32 = 7
	causeUserECall        uint32 = 8
	causeSupervisorECall  uint32 = 9
	causeMachineECall     uint32 = 11
)

// Interrupt cause codes, before the interrupt flag is OR'd in.
const (
	irqSupervisorSoftware uint32 = 1
	irqMachineSoftware    uint32 = 3
	irqSupervisorTimer    uint32 = 5
	irqMachineTimer       uint32 = 7
	irqSupervisorExternal uint32 = 9
	irqMachineExternal    uint32 = 11
)

// causeInterruptFlag is set in mcause/scause's top bit to mark an
// interrupt rather than an exception (spec.md §4.3).
const causeInterruptFlag uint32 = 1 << 31

// mip/mie bit positions.
const (
	mipSSIP uint32 = 1 << 1
	mipMSIP uint32 = 1 << 3
	mipSTIP uint32 = 1 << 5
	mipMTIP uint32 = 1 << 7
	mipSEIP uint32 = 1 << 9
	mipMEIP uint32 = 1 << 11
)

// mstatus bit positions relevant to trap delivery and CSR composition.
const (
	mstatusSIE  uint32 = 1 << 1
	mstatusMIE  uint32 = 1 << 3
	mstatusSPIE uint32 = 1 << 5
	mstatusUBE  uint32 = 1 << 6
	mstatusMPIE uint32 = 1 << 7
	mstatusSPP  uint32 = 1 << 8
	mstatusMPPShift uint32 = 11
	mstatusMPPMask  uint32 = 0x3 << mstatusMPPShift
	mstatusFSShift  uint32 = 13
	mstatusFSMask   uint32 = 0x3 << mstatusFSShift
	mstatusMPRV uint32 = 1 << 17
	mstatusSUM  uint32 = 1 << 18
	mstatusMXR  uint32 = 1 << 19
	mstatusTVM  uint32 = 1 << 20
	mstatusTW   uint32 = 1 << 21
	mstatusTSR  uint32 = 1 << 22
	mstatusSD   uint32 = 1 << 31
)

// sstatusMask and mstatusMask select the bits of the full mstatus word
// that are visible through sstatus and through mstatus respectively
// (spec.md §4.2), grounded on the reference source's SSTATUS_MASK /
// MSTATUS_MASK constants.
const (
	sstatusMask uint32 = mstatusSIE | mstatusSPIE | mstatusUBE | mstatusSPP |
		mstatusFSMask | mstatusSUM | mstatusMXR | mstatusSD
	mstatusMask uint32 = mstatusSIE | mstatusMIE | mstatusSPIE | mstatusUBE |
		mstatusMPIE | mstatusSPP | mstatusMPPMask | mstatusFSMask |
		mstatusMPRV | mstatusSUM | mstatusMXR | mstatusTVM | mstatusTW | mstatusTSR
)

// illegalInstruction reports an illegal or unsupported encoding. The
// reference policy this core was built against halts the machine rather
// than taking the architectural trap (see DESIGN.md); Config.IllegalInstr
// makes that switchable without disturbing the compliance-test default.
func (h *Hart) illegalInstruction(tval uint32) {
	if h.Config.IllegalInstr == IllegalInstrTerminate {
		h.Running = false
		return
	}
	h.raiseException(causeIllegalInstr, tval)
}

// raiseException delivers a trap for cause/tval, choosing Supervisor or
// Machine delivery per the delegation registers, saving the interrupted
// privilege and interrupt-enable state, and redirecting PC to the target
// trap vector. It is the sole entry point instruction handlers and the
// core loop use to signal a fault; it never returns to the faulting
// instruction (the caller is expected to bail out of the current Step).
func (h *Hart) raiseException(cause uint32, tval uint32) {
	isInterrupt := cause&causeInterruptFlag != 0
	bit := cause &^ causeInterruptFlag

	delegated := h.Priv != PrivMachine
	if delegated {
		if isInterrupt {
			delegated = h.MIDeleg&(1<<bit) != 0
		} else {
			delegated = h.MEDeleg&(1<<bit) != 0
		}
	}

	epc := h.PC

	if delegated {
		h.SEPC = epc
		h.SCause = cause
		h.STval = tval

		spie := h.MStatus&mstatusSIE != 0
		h.MStatus = setBit(h.MStatus, mstatusSPIE, spie)
		h.MStatus = setBit(h.MStatus, mstatusSIE, false)
		h.MStatus = setBit(h.MStatus, mstatusSPP, h.Priv == PrivSupervisor)

		h.Priv = PrivSupervisor
		h.nextPC = trapTarget(h.STVec)
		return
	}

	h.MEPC = epc
	h.MCause = cause
	h.MTval = tval

	mpie := h.MStatus&mstatusMIE != 0
	h.MStatus = setBit(h.MStatus, mstatusMPIE, mpie)
	h.MStatus = setBit(h.MStatus, mstatusMIE, false)
	h.MStatus &^= mstatusMPPMask
	h.MStatus |= uint32(h.Priv) << mstatusMPPShift

	h.Priv = PrivMachine
	h.nextPC = trapTarget(h.MTVec)
}

// trapTarget resolves a tvec CSR to the PC the trap should enter at:
// always the base address, per spec.md §4.3 (next_pc = stvec/mtvec, no
// mode-dependent offset).
func trapTarget(tvec uint32) uint32 {
	return tvec &^ 0x3
}

func setBit(v uint32, mask uint32, set bool) uint32 {
	if set {
		return v | mask
	}
	return v &^ mask
}

// mret executes the MRET instruction: returns from a machine-mode trap.
func (h *Hart) mret() {
	mpp := Priv((h.MStatus & mstatusMPPMask) >> mstatusMPPShift)
	mpie := h.MStatus&mstatusMPIE != 0

	h.MStatus = setBit(h.MStatus, mstatusMIE, mpie)
	h.MStatus = setBit(h.MStatus, mstatusMPIE, true)
	h.MStatus &^= mstatusMPPMask
	h.MStatus |= uint32(PrivUser) << mstatusMPPShift
	if mpp != PrivMachine {
		h.MStatus = setBit(h.MStatus, mstatusMPRV, false)
	}

	h.Priv = mpp
	h.nextPC = h.MEPC
}

// sret executes the SRET instruction: returns from a supervisor-mode trap.
func (h *Hart) sret() {
	var spp Priv = PrivUser
	if h.MStatus&mstatusSPP != 0 {
		spp = PrivSupervisor
	}
	spie := h.MStatus&mstatusSPIE != 0

	h.MStatus = setBit(h.MStatus, mstatusSIE, spie)
	h.MStatus = setBit(h.MStatus, mstatusSPIE, true)
	h.MStatus = setBit(h.MStatus, mstatusSPP, false)
	if spp != PrivMachine {
		h.MStatus = setBit(h.MStatus, mstatusMPRV, false)
	}

	h.Priv = spp
	h.nextPC = h.SEPC
}
