package rv32

// execLUI: rd <- imm<<12 (imm already shifted into place by immU).
func execLUI(h *Hart, insn uint32, _ uint32) {
	h.setReg(rd(insn), immU(insn))
}

// execAUIPC: rd <- pc + imm<<12.
func execAUIPC(h *Hart, insn uint32, _ uint32) {
	h.setReg(rd(insn), h.PC+immU(insn))
}

// execJAL: rd <- pc + size (link), next_pc <- pc + imm. Jumps are counted
// and classified forward/backward for the optional statistics spec.md §7
// mentions.
func execJAL(h *Hart, insn uint32, size uint32) {
	link := h.PC + size
	target := h.PC + immJ(insn)
	h.setReg(rd(insn), link)
	h.recordJump(target)
	h.nextPC = target
}

// execJALR: rd <- pc + size, next_pc <- (reg[rs1] + imm) & ^1.
func execJALR(h *Hart, insn uint32, size uint32) {
	link := h.PC + size
	target := (h.Reg[rs1(insn)] + immI(insn)) &^ 1
	h.setReg(rd(insn), link)
	h.recordJump(target)
	h.nextPC = target
}

func (h *Hart) recordJump(target uint32) {
	h.Stats.JumpsTotal++
	if target >= h.PC {
		h.Stats.JumpsForward++
	} else {
		h.Stats.JumpsBackward++
	}
}
