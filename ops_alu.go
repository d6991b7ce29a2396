package rv32

// execOpImm implements ADDI/SLTI/SLTIU/XORI/ORI/ANDI/SLLI/SRLI/SRAI.
// Shifts require the shift amount to lie in [0, 32) — the encoding
// already guarantees this for RV32 since shamt is a 5-bit field — and the
// SRAI/SRLI discriminator is bit 10 of the immediate (spec.md §4.5).
func execOpImm(h *Hart, insn uint32, _ uint32) {
	a := h.Reg[rs1(insn)]
	imm := immI(insn)

	switch funct3(insn) {
	case 0x0: // ADDI
		h.setReg(rd(insn), a+imm)
	case 0x2: // SLTI
		h.setReg(rd(insn), boolToU32(int32(a) < int32(imm)))
	case 0x3: // SLTIU
		h.setReg(rd(insn), boolToU32(a < imm))
	case 0x4: // XORI
		h.setReg(rd(insn), a^imm)
	case 0x6: // ORI
		h.setReg(rd(insn), a|imm)
	case 0x7: // ANDI
		h.setReg(rd(insn), a&imm)
	case 0x1: // SLLI
		if funct7(insn) != 0 {
			h.illegalInstruction(insn)
			return
		}
		h.setReg(rd(insn), a<<(imm&0x1f))
	case 0x5: // SRLI / SRAI
		shamt := imm & 0x1f
		if imm&0x400 != 0 {
			h.setReg(rd(insn), uint32(int32(a)>>shamt))
		} else {
			h.setReg(rd(insn), a>>shamt)
		}
	}
}

// execOp implements ADD/SUB/SLL/SLT/SLTU/XOR/SRL/SRA/OR/AND, and defers to
// the M-extension handler when funct7 bit 0 (insn bit 25) is set and the M
// extension is enabled.
func execOp(h *Hart, insn uint32, _ uint32) {
	if funct7(insn)&1 != 0 {
		if h.Config.Extensions&ExtM == 0 {
			h.illegalInstruction(insn)
			return
		}
		execMulDiv(h, insn)
		return
	}

	a, b := h.Reg[rs1(insn)], h.Reg[rs2(insn)]
	alt := funct7(insn) == 0x20

	switch funct3(insn) {
	case 0x0: // ADD / SUB
		if alt {
			h.setReg(rd(insn), a-b)
		} else {
			h.setReg(rd(insn), a+b)
		}
	case 0x1: // SLL
		h.setReg(rd(insn), a<<(b&0x1f))
	case 0x2: // SLT
		h.setReg(rd(insn), boolToU32(int32(a) < int32(b)))
	case 0x3: // SLTU
		h.setReg(rd(insn), boolToU32(a < b))
	case 0x4: // XOR
		h.setReg(rd(insn), a^b)
	case 0x5: // SRL / SRA
		if alt {
			h.setReg(rd(insn), uint32(int32(a)>>(b&0x1f)))
		} else {
			h.setReg(rd(insn), a>>(b&0x1f))
		}
	case 0x6: // OR
		h.setReg(rd(insn), a|b)
	case 0x7: // AND
		h.setReg(rd(insn), a&b)
	}
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
