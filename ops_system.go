package rv32

// execSystem implements ECALL/EBREAK/MRET/SRET/WFI/SFENCE.VMA and the
// CSRRW[I]/CSRRS[I]/CSRRC[I] family (spec.md §4.5).
func execSystem(h *Hart, insn uint32, _ uint32) {
	f3 := funct3(insn)
	if f3 != 0 {
		execCSR(h, insn, f3)
		return
	}

	switch insn {
	case 0x00000073: // ECALL
		execECALL(h)
	case 0x00100073: // EBREAK
		h.raiseException(causeBreakpoint, 0)
	case 0x30200073: // MRET
		if h.Priv != PrivMachine {
			h.illegalInstruction(insn)
			return
		}
		h.mret()
	case 0x10200073: // SRET
		if h.Priv != PrivSupervisor && h.Priv != PrivMachine {
			h.illegalInstruction(insn)
			return
		}
		h.sret()
	case 0x10500073: // WFI
		// Permitted no-op (spec.md §4.5).
	default:
		if funct7(insn) == 0x09 { // SFENCE.VMA
			// Privileged no-op: no MMU/TLB to flush.
			return
		}
		h.illegalInstruction(insn)
	}
}

// execECALL raises the privilege-tagged environment-call exception, or
// performs compliance-test termination if a signature range has been
// recorded and reg[3]'s low bit requests it (spec.md §6).
func execECALL(h *Hart) {
	if h.HasSignature && h.Reg[3]&1 != 0 {
		h.ExitCode = h.Reg[3] >> 1
		h.Running = false
		return
	}
	h.raiseException(causeUserECall+uint32(h.Priv), 0)
}

// execCSR implements CSRRW/CSRRS/CSRRC and their immediate variants. The
// old value is always written to rd; for the set/clear forms the write is
// skipped entirely when the rs1 field (the source register number, or the
// zimm value) is zero, matching the "no side effect" contract for
// CSRRS/CSRRC x0-sourced forms (spec.md §4.5).
func execCSR(h *Hart, insn uint32, f3 uint32) {
	csr := uint16(insn >> 20)
	r := rd(insn)
	isImm := f3&0x4 != 0
	var operand uint32
	if isImm {
		operand = rs1(insn) // the 5-bit rs1 field doubles as zimm
	} else {
		operand = h.Reg[rs1(insn)]
	}

	old, ok := h.csrRead(csr)
	if !ok {
		h.illegalInstruction(insn)
		return
	}

	switch f3 &^ 0x4 {
	case 0x1: // CSRRW[I]
		if !h.csrWrite(csr, operand) {
			h.illegalInstruction(insn)
			return
		}
	case 0x2: // CSRRS[I]
		if rs1(insn) != 0 {
			if !h.csrWrite(csr, old|operand) {
				h.illegalInstruction(insn)
				return
			}
		}
	case 0x3: // CSRRC[I]
		if rs1(insn) != 0 {
			if !h.csrWrite(csr, old&^operand) {
				h.illegalInstruction(insn)
				return
			}
		}
	default:
		h.illegalInstruction(insn)
		return
	}

	h.setReg(r, old)
}

// execMiscMem implements FENCE and FENCE.I as no-ops (spec.md §4.5, §5).
func execMiscMem(h *Hart, insn uint32, _ uint32) {
	switch funct3(insn) {
	case 0x0, 0x1: // FENCE, FENCE.I
	default:
		h.illegalInstruction(insn)
	}
}
