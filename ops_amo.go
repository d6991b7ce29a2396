package rv32

// execAMO implements the A extension's LR.W/SC.W/AMOSWAP/AMOADD/AMOXOR/
// AMOAND/AMOOR/AMOMIN/AMOMAX/AMOMINU/AMOMAXU.W (spec.md §4.5). Gated by
// Hart.Config.Extensions; funct3 must select the word width (010) since
// this core implements RV32 only.
func execAMO(h *Hart, insn uint32, _ uint32) {
	if h.Config.Extensions&ExtA == 0 {
		h.illegalInstruction(insn)
		return
	}
	if funct3(insn) != 0x2 {
		h.illegalInstruction(insn)
		return
	}

	addr := h.Reg[rs1(insn)]
	op := funct7(insn) >> 2

	switch op {
	case 0x02: // LR.W
		v, ok := h.readU32(addr)
		if !ok {
			return
		}
		h.loadRes = addr
		h.hasLoadRes = true
		h.setReg(rd(insn), v)

	case 0x03: // SC.W
		if h.hasLoadRes && h.loadRes == addr {
			if !h.writeU32(addr, h.Reg[rs2(insn)]) {
				return
			}
			h.setReg(rd(insn), 0)
		} else {
			h.setReg(rd(insn), 1)
		}
		h.hasLoadRes = false

	default:
		old, ok := h.readU32(addr)
		if !ok {
			return
		}
		src := h.Reg[rs2(insn)]
		var result uint32
		switch op {
		case 0x00: // AMOADD
			result = old + src
		case 0x01: // AMOSWAP
			result = src
		case 0x04: // AMOXOR
			result = old ^ src
		case 0x08: // AMOOR
			result = old | src
		case 0x0c: // AMOAND
			result = old & src
		case 0x10: // AMOMIN
			if int32(old) < int32(src) {
				result = old
			} else {
				result = src
			}
		case 0x14: // AMOMAX
			if int32(old) > int32(src) {
				result = old
			} else {
				result = src
			}
		case 0x18: // AMOMINU
			if old < src {
				result = old
			} else {
				result = src
			}
		case 0x1c: // AMOMAXU
			if old > src {
				result = old
			} else {
				result = src
			}
		default:
			h.illegalInstruction(insn)
			return
		}
		if !h.writeU32(addr, result) {
			return
		}
		h.setReg(rd(insn), old)
	}
}
