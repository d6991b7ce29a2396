package rv32

// execBranch implements BEQ/BNE/BLT/BGE/BLTU/BGEU: compare reg[rs1],
// reg[rs2] and, if taken, redirect next_pc by the branch offset.
func execBranch(h *Hart, insn uint32, _ uint32) {
	a, b := h.Reg[rs1(insn)], h.Reg[rs2(insn)]
	var taken bool
	switch funct3(insn) {
	case 0x0: // BEQ
		taken = a == b
	case 0x1: // BNE
		taken = a != b
	case 0x4: // BLT
		taken = int32(a) < int32(b)
	case 0x5: // BGE
		taken = int32(a) >= int32(b)
	case 0x6: // BLTU
		taken = a < b
	case 0x7: // BGEU
		taken = a >= b
	default:
		h.illegalInstruction(insn)
		return
	}

	if taken {
		h.Stats.BranchesTaken++
		h.nextPC = h.PC + immB(insn)
	} else {
		h.Stats.BranchesNotTakn++
	}
}
