package rv32

// execLoad implements LB/LH/LW/LBU/LHU. Faults propagate as
// misaligned-load or access-fault exceptions via the Bus's *Fault return,
// consumed by the read wrappers.
func execLoad(h *Hart, insn uint32, _ uint32) {
	addr := h.Reg[rs1(insn)] + immI(insn)

	switch funct3(insn) {
	case 0x0: // LB
		v, ok := h.readU8(addr)
		if !ok {
			return
		}
		h.setReg(rd(insn), signExtend(uint32(v), 7))
	case 0x1: // LH
		v, ok := h.readU16(addr)
		if !ok {
			return
		}
		h.setReg(rd(insn), signExtend(uint32(v), 15))
	case 0x2: // LW
		v, ok := h.readU32(addr)
		if !ok {
			return
		}
		h.setReg(rd(insn), v)
	case 0x4: // LBU
		v, ok := h.readU8(addr)
		if !ok {
			return
		}
		h.setReg(rd(insn), uint32(v))
	case 0x5: // LHU
		v, ok := h.readU16(addr)
		if !ok {
			return
		}
		h.setReg(rd(insn), uint32(v))
	default:
		h.illegalInstruction(insn)
	}
}

// execStore implements SB/SH/SW.
func execStore(h *Hart, insn uint32, _ uint32) {
	addr := h.Reg[rs1(insn)] + immS(insn)
	v := h.Reg[rs2(insn)]

	switch funct3(insn) {
	case 0x0: // SB
		h.writeU8(addr, uint8(v))
	case 0x1: // SH
		h.writeU16(addr, uint16(v))
	case 0x2: // SW
		h.writeU32(addr, v)
	default:
		h.illegalInstruction(insn)
	}
}
