package rv32

// expandCompressed turns a 16-bit compressed instruction into the
// equivalent standard 32-bit encoding (spec.md §4.4). It is a pure total
// function: any reserved or otherwise invalid encoding returns ok=false,
// which the caller turns into an illegal-instruction trap.
//
// The c.addi16sp and c.lwsp immediate bit layouts are re-derived here from
// the architecture manual rather than copied from the reference source,
// whose bit math for those two forms is incorrect (see DESIGN.md).
func expandCompressed(ic uint16) (uint32, bool) {
	op := ic & 0x3
	funct3 := (ic >> 13) & 0x7

	switch op {
	case 0x0:
		return expandQuadrant0(ic, funct3)
	case 0x1:
		return expandQuadrant1(ic, funct3)
	case 0x2:
		return expandQuadrant2(ic, funct3)
	}
	return 0, false
}

func cRegPrime(bits uint16) uint32 { return uint32(bits&0x7) + 8 }

func signExtend(v uint32, bit uint32) uint32 {
	shift := 31 - bit
	return uint32(int32(v<<shift) >> shift)
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm uint32) uint32 {
	return (imm&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeU(opcode, rd uint32, imm uint32) uint32 {
	return (imm &^ 0xfff) | rd<<7 | opcode
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm uint32) uint32 {
	return (imm>>5&0x7f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (imm&0x1f)<<7 | opcode
}

func encodeB(opcode, funct3, rs1, rs2 uint32, imm uint32) uint32 {
	return (imm>>12&1)<<31 | (imm>>5&0x3f)<<25 | rs2<<20 | rs1<<15 | funct3<<12 |
		(imm>>1&0xf)<<8 | (imm>>11&1)<<7 | opcode
}

func encodeJ(opcode, rd uint32, imm uint32) uint32 {
	return (imm>>20&1)<<31 | (imm>>1&0x3ff)<<21 | (imm>>11&1)<<20 |
		(imm>>12&0xff)<<12 | rd<<7 | opcode
}

// expandQuadrant0 handles C0: c.addi4spn, c.lw, c.sw (RV32; the D/Q forms
// are not implemented).
func expandQuadrant0(ic uint16, funct3 uint16) (uint32, bool) {
	rdp := cRegPrime(ic >> 2)
	rs1p := cRegPrime(ic >> 7)

	switch funct3 {
	case 0x0: // c.addi4spn
		imm := uint32(ic>>7&0x30) | uint32(ic>>1&0x3c0) | uint32(ic>>4&0x4) | uint32(ic>>2&0x8)
		if imm == 0 {
			return 0, false
		}
		return encodeI(0x13, rdp, 0, 2, imm), true
	case 0x2: // c.lw
		imm := uint32(ic>>4&0x4) | uint32(ic>>7&0x38) | uint32(ic<<1&0x40)
		return encodeI(0x03, rdp, 0x2, rs1p, imm), true
	case 0x6: // c.sw
		imm := uint32(ic>>4&0x4) | uint32(ic>>7&0x38) | uint32(ic<<1&0x40)
		return encodeS(0x23, 0x2, rs1p, rdp, imm), true
	}
	return 0, false
}

// expandQuadrant1 handles C1: c.addi/c.nop, c.jal (RV32-only)/c.li,
// c.addi16sp/c.lui, c.srli/c.srai/c.andi/c.sub/c.xor/c.or/c.and, c.j,
// c.beqz/c.bnez.
func expandQuadrant1(ic uint16, funct3 uint16) (uint32, bool) {
	rd := uint32(ic>>7) & 0x1f

	switch funct3 {
	case 0x0: // c.addi (incl. c.nop)
		imm := signExtend(uint32(ic>>2&0x1f)|uint32(ic>>7&0x20), 5)
		return encodeI(0x13, rd, 0, rd, imm), true

	case 0x1: // c.jal is RV32-only pseudo-form folded into JAL x1, imm
		// Per the manual, not c.li (see DESIGN.md open question on
		// the source's own funct3=001 decoder).
		imm := cJImm(ic)
		return encodeJ(0x6f, 1, imm), true

	case 0x2: // c.li
		imm := signExtend(uint32(ic>>2&0x1f)|uint32(ic>>7&0x20), 5)
		return encodeI(0x13, rd, 0, 0, imm), true

	case 0x3:
		if rd == 2 { // c.addi16sp
			imm := addi16spImm(ic)
			if imm == 0 {
				return 0, false
			}
			return encodeI(0x13, 2, 0, 2, imm), true
		}
		if rd == 0 {
			return 0, false
		}
		imm := signExtend(uint32(ic>>2&0x1f)|uint32(ic>>7&0x20), 5) << 12
		return encodeU(0x37, rd, imm), true // c.lui

	case 0x4:
		rdp := cRegPrime(ic >> 7)
		funct2 := (ic >> 10) & 0x3
		switch funct2 {
		case 0x0: // c.srli
			shamt := uint32(ic>>2&0x1f) | uint32(ic>>7&0x20)
			if shamt&0x20 != 0 {
				return 0, false // shamt[5] must be 0 for rv32
			}
			return encodeI(0x13, rdp, 0x5, rdp, shamt), true
		case 0x1: // c.srai
			shamt := uint32(ic>>2&0x1f) | uint32(ic>>7&0x20)
			if shamt&0x20 != 0 {
				return 0, false
			}
			return encodeI(0x13, rdp, 0x5, rdp, shamt|0x400), true
		case 0x2: // c.andi
			imm := signExtend(uint32(ic>>2&0x1f)|uint32(ic>>7&0x20), 5)
			return encodeI(0x13, rdp, 0x7, rdp, imm), true
		case 0x3:
			rs2p := cRegPrime(ic >> 2)
			funct6bit := (ic >> 12) & 0x1
			funct2b := (ic >> 5) & 0x3
			if funct6bit != 0 {
				return 0, false // reserved (RV64/128 c.subw/c.addw space)
			}
			switch funct2b {
			case 0x0:
				return encodeR(0x33, rdp, 0x0, rdp, rs2p, 0x20), true // c.sub
			case 0x1:
				return encodeR(0x33, rdp, 0x4, rdp, rs2p, 0x00), true // c.xor
			case 0x2:
				return encodeR(0x33, rdp, 0x6, rdp, rs2p, 0x00), true // c.or
			case 0x3:
				return encodeR(0x33, rdp, 0x7, rdp, rs2p, 0x00), true // c.and
			}
		}

	case 0x5: // c.j
		imm := cJImm(ic)
		return encodeJ(0x6f, 0, imm), true

	case 0x6: // c.beqz
		rs1p := cRegPrime(ic >> 7)
		imm := cBImm(ic)
		return encodeB(0x63, 0x0, rs1p, 0, imm), true

	case 0x7: // c.bnez
		rs1p := cRegPrime(ic >> 7)
		imm := cBImm(ic)
		return encodeB(0x63, 0x1, rs1p, 0, imm), true
	}

	return 0, false
}

// expandQuadrant2 handles C2: c.slli, c.lwsp, c.jr/c.mv/c.ebreak/c.jalr/c.add, c.swsp.
func expandQuadrant2(ic uint16, funct3 uint16) (uint32, bool) {
	rd := uint32(ic>>7) & 0x1f

	switch funct3 {
	case 0x0: // c.slli
		shamt := uint32(ic>>2&0x1f) | uint32(ic>>7&0x20)
		if shamt&0x20 != 0 || rd == 0 {
			return 0, false
		}
		return encodeI(0x13, rd, 0x1, rd, shamt), true

	case 0x2: // c.lwsp
		if rd == 0 {
			return 0, false
		}
		imm := lwspImm(ic)
		return encodeI(0x03, rd, 0x2, 2, imm), true

	case 0x4:
		rs2 := uint32(ic>>2) & 0x1f
		bit12 := (ic >> 12) & 0x1
		switch {
		case bit12 == 0 && rs2 == 0: // c.jr
			if rd == 0 {
				return 0, false
			}
			return encodeI(0x67, 0, 0, rd, 0), true
		case bit12 == 0: // c.mv
			return encodeR(0x33, rd, 0, 0, rs2, 0), true
		case bit12 == 1 && rd == 0 && rs2 == 0: // c.ebreak
			return 0x00100073, true
		case bit12 == 1 && rs2 == 0: // c.jalr
			return encodeI(0x67, 1, 0, rd, 0), true
		default: // c.add
			return encodeR(0x33, rd, 0, rd, rs2, 0), true
		}

	case 0x6: // c.swsp
		rs2 := uint32(ic>>2) & 0x1f
		imm := swspImm(ic)
		return encodeS(0x23, 0x2, 2, rs2, imm), true
	}

	return 0, false
}

// cJImm decodes the scrambled 11-bit jump-target field shared by c.j/c.jal.
// Bit layout (source bit -> target imm bit): 12->11, 11->4, 10:9->9:8,
// 8->10, 7->6, 6->7, 5:3->3:1, 2->5.
func cJImm(ic uint16) uint32 {
	u := uint32(ic)
	imm := (u>>1&0x800) | (u>>7&0x10) | (u>>1&0x300) | (u<<2&0x400) |
		(u>>1&0x40) | (u<<1&0x80) | (u>>2&0xe) | (u<<3&0x20)
	return signExtend(imm, 11)
}

// cBImm decodes c.beqz/c.bnez's 8-bit scrambled branch offset. Bit layout:
// 12->8, 11:10->4:3, 6:5->7:6, 4:3->2:1, 2->5.
func cBImm(ic uint16) uint32 {
	u := uint32(ic)
	imm := (u>>4&0x100) | (u<<1&0xc0) | (u<<3&0x20) | (u>>7&0x18) | (u>>2&0x6)
	return signExtend(imm, 8)
}

// addi16spImm decodes c.addi16sp's 10-bit scrambled stack-adjust
// immediate. Bit layout: 12->9, 6->4, 5->6, 4:3->8:7, 2->5. The reference
// source mixes these bit positions up; this is the layout from the
// normative manual.
func addi16spImm(ic uint16) uint32 {
	u := uint32(ic)
	imm := (u>>3&0x200) | (u>>2&0x10) | (u<<1&0x40) | (u<<4&0x180) | (u<<3&0x20)
	return signExtend(imm, 9)
}

// lwspImm decodes c.lwsp's 6-bit scrambled load-offset immediate. Bit
// layout: 12->5, 6:4->4:2, 3:2->7:6.
func lwspImm(ic uint16) uint32 {
	u := uint32(ic)
	return (u>>7&0x20) | (u>>2&0x1c) | (u<<4&0xc0)
}

// swspImm decodes c.swsp's 6-bit scrambled store-offset immediate. Bit
// layout: 12:9->5:2, 8:7->7:6.
func swspImm(ic uint16) uint32 {
	u := uint32(ic)
	return (u>>7&0x3c) | (u>>1&0xc0)
}
