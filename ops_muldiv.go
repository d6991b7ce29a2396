package rv32

// execMulDiv implements the M extension's MUL/MULH/MULHSU/MULHU/DIV/DIVU/
// REM/REMU, reached from execOp when funct7 bit 0 is set. Division by zero
// and the INT32_MIN/-1 signed-overflow case follow spec.md §4.5's
// architectural (not trapping) results.
func execMulDiv(h *Hart, insn uint32) {
	a, b := h.Reg[rs1(insn)], h.Reg[rs2(insn)]

	switch funct3(insn) {
	case 0x0: // MUL
		h.setReg(rd(insn), a*b)
	case 0x1: // MULH
		h.setReg(rd(insn), uint32(mulh(int64(int32(a)), int64(int32(b)))))
	case 0x2: // MULHSU
		h.setReg(rd(insn), uint32(mulhsu(int32(a), b)))
	case 0x3: // MULHU
		h.setReg(rd(insn), uint32(mulhu(a, b)))
	case 0x4: // DIV
		h.setReg(rd(insn), div32(int32(a), int32(b)))
	case 0x5: // DIVU
		h.setReg(rd(insn), divu32(a, b))
	case 0x6: // REM
		h.setReg(rd(insn), rem32(int32(a), int32(b)))
	case 0x7: // REMU
		h.setReg(rd(insn), remu32(a, b))
	}
}

func mulh(a, b int64) int64 {
	return int64((a * b) >> 32)
}

func mulhsu(a int32, b uint32) int32 {
	prod := int64(a) * int64(b)
	return int32(prod >> 32)
}

func mulhu(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> 32)
}

func div32(a, b int32) uint32 {
	if b == 0 {
		return 0xffffffff
	}
	if a == -0x80000000 && b == -1 {
		return 0x80000000
	}
	return uint32(a / b)
}

func divu32(a, b uint32) uint32 {
	if b == 0 {
		return 0xffffffff
	}
	return a / b
}

func rem32(a, b int32) uint32 {
	if b == 0 {
		return uint32(a)
	}
	if a == -0x80000000 && b == -1 {
		return 0
	}
	return uint32(a % b)
}

func remu32(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
