package rv32

import "testing"

func newExceptionTestHart() *Hart {
	h := NewWithConfig(nil, DefaultConfig())
	bus := NewRAM(h, DefaultRAMSize)
	h.Bus = bus
	return h
}

// An exception taken in Machine mode always delivers through mtvec,
// regardless of medeleg, since Machine mode is never delegated to.
func TestRaiseExceptionMachineNeverDelegated(t *testing.T) {
	h := newExceptionTestHart()
	h.Priv = PrivMachine
	h.MEDeleg = 1 << causeIllegalInstr
	h.MTVec = 0x1000
	h.PC = 0x40

	h.raiseException(causeIllegalInstr, 0xaa)

	if h.Priv != PrivMachine {
		t.Fatalf("priv = %d, want Machine", h.Priv)
	}
	if h.nextPC != 0x1000 {
		t.Fatalf("nextPC = 0x%x, want mtvec", h.nextPC)
	}
	if h.MEPC != 0x40 || h.MCause != causeIllegalInstr || h.MTval != 0xaa {
		t.Fatalf("mepc/mcause/mtval = 0x%x/%d/0x%x, want 0x40/%d/0xaa", h.MEPC, h.MCause, h.MTval, causeIllegalInstr)
	}
}

// A delegated exception taken from Supervisor or User mode lands in
// Supervisor mode at stvec and saves SPP/SPIE correctly.
func TestRaiseExceptionDelegatedToSupervisor(t *testing.T) {
	h := newExceptionTestHart()
	h.Priv = PrivUser
	h.MEDeleg = 1 << causeBreakpoint
	h.STVec = 0x2000
	h.PC = 0x80
	h.MStatus |= mstatusSIE

	h.raiseException(causeBreakpoint, 0)

	if h.Priv != PrivSupervisor {
		t.Fatalf("priv = %d, want Supervisor", h.Priv)
	}
	if h.nextPC != 0x2000 {
		t.Fatalf("nextPC = 0x%x, want stvec", h.nextPC)
	}
	if h.SEPC != 0x80 || h.SCause != causeBreakpoint {
		t.Fatalf("sepc/scause = 0x%x/%d, want 0x80/%d", h.SEPC, h.SCause, causeBreakpoint)
	}
	if h.MStatus&mstatusSIE != 0 {
		t.Fatal("sie should be cleared on trap entry")
	}
	if h.MStatus&mstatusSPIE == 0 {
		t.Fatal("spie should capture the prior sie value (1)")
	}
	if h.MStatus&mstatusSPP != 0 {
		t.Fatal("spp should be clear since the trap was taken from User mode")
	}
}

// An exception NOT in medeleg is always taken in Machine mode even when
// the current privilege is below Machine.
func TestRaiseExceptionUndelegatedGoesToMachine(t *testing.T) {
	h := newExceptionTestHart()
	h.Priv = PrivUser
	h.MEDeleg = 0
	h.MTVec = 0x3000
	h.PC = 0x10

	h.raiseException(causeMisalignedLoad, 0x44)

	if h.Priv != PrivMachine {
		t.Fatalf("priv = %d, want Machine", h.Priv)
	}
	if h.nextPC != 0x3000 {
		t.Fatalf("nextPC = 0x%x, want mtvec", h.nextPC)
	}
	if h.MStatus&mstatusMPPMask != uint32(PrivUser)<<mstatusMPPShift {
		t.Fatalf("mstatus.MPP = 0x%x, want PrivUser saved", h.MStatus&mstatusMPPMask)
	}
}

// mret restores the saved privilege, interrupt-enable state, and PC.
func TestMretRestoresState(t *testing.T) {
	h := newExceptionTestHart()
	h.Priv = PrivMachine
	h.MEPC = 0x500
	h.MStatus = setBit(h.MStatus, mstatusMPIE, true)
	h.MStatus &^= mstatusMPPMask
	h.MStatus |= uint32(PrivSupervisor) << mstatusMPPShift

	h.mret()

	if h.Priv != PrivSupervisor {
		t.Fatalf("priv = %d, want Supervisor (saved MPP)", h.Priv)
	}
	if h.MStatus&mstatusMIE == 0 {
		t.Fatal("mie should be restored from mpie (1)")
	}
	if h.MStatus&mstatusMPIE == 0 {
		t.Fatal("mpie should be set to 1 after mret")
	}
	if h.MStatus&mstatusMPPMask != uint32(PrivUser)<<mstatusMPPShift {
		t.Fatal("mpp should reset to User after mret")
	}
	if h.nextPC != 0x500 {
		t.Fatalf("nextPC = 0x%x, want mepc (0x500)", h.nextPC)
	}
}

// sret restores SPP/SPIE symmetrically to mret's MPP/MPIE.
func TestSretRestoresState(t *testing.T) {
	h := newExceptionTestHart()
	h.Priv = PrivSupervisor
	h.SEPC = 0x600
	h.MStatus = setBit(h.MStatus, mstatusSPIE, true)
	h.MStatus = setBit(h.MStatus, mstatusSPP, true) // came from Supervisor

	h.sret()

	if h.Priv != PrivSupervisor {
		t.Fatalf("priv = %d, want Supervisor (saved SPP)", h.Priv)
	}
	if h.MStatus&mstatusSIE == 0 {
		t.Fatal("sie should be restored from spie (1)")
	}
	if h.MStatus&mstatusSPIE == 0 {
		t.Fatal("spie should be set to 1 after sret")
	}
	if h.MStatus&mstatusSPP != 0 {
		t.Fatal("spp should reset to 0 (User) after sret")
	}
	if h.nextPC != 0x600 {
		t.Fatalf("nextPC = 0x%x, want sepc (0x600)", h.nextPC)
	}
}

// trapTarget always resolves to the base address (spec.md §4.3): the low
// two bits, even if somehow set, never offset delivery.
func TestTrapTargetIgnoresLowBits(t *testing.T) {
	base := uint32(0x4000)
	if got := trapTarget(base | 0x3); got != base {
		t.Fatalf("trapTarget(0x%x) = 0x%x, want base 0x%x", base|0x3, got, base)
	}
}

// writeTvec masks the low two bits unconditionally, so no bit survives a
// write to later influence trap delivery.
func TestWriteTvecMasksLowBits(t *testing.T) {
	h := newExceptionTestHart()
	h.csrWrite(csrMtvec, 0x1000|0x3)
	v, _ := h.csrRead(csrMtvec)
	if v != 0x1000 {
		t.Fatalf("mtvec = 0x%x, want 0x1000 (low bits masked)", v)
	}
}

func TestIllegalInstructionPolicyTerminate(t *testing.T) {
	h := newExceptionTestHart()
	h.Config.IllegalInstr = IllegalInstrTerminate
	h.Running = true

	h.illegalInstruction(0)

	if h.Running {
		t.Fatal("IllegalInstrTerminate should stop the hart rather than trap")
	}
}

func TestIllegalInstructionPolicyTrap(t *testing.T) {
	h := newExceptionTestHart()
	h.Config.IllegalInstr = IllegalInstrTrap
	h.Priv = PrivMachine
	h.PC = 0x20

	h.illegalInstruction(0xbeef)

	if h.MCause != causeIllegalInstr || h.MTval != 0xbeef {
		t.Fatalf("mcause/mtval = %d/0x%x, want %d/0xbeef", h.MCause, h.MTval, causeIllegalInstr)
	}
}
