package rv32

// Primary 7-bit opcodes (instruction bits [6:0]).
const (
	opLUI      uint32 = 0x37
	opAUIPC    uint32 = 0x17
	opJAL      uint32 = 0x6f
	opJALR     uint32 = 0x67
	opBranch   uint32 = 0x63
	opLoad     uint32 = 0x03
	opStore    uint32 = 0x23
	opOpImm    uint32 = 0x13
	opOp       uint32 = 0x33
	opSystem   uint32 = 0x73
	opMiscMem  uint32 = 0x0f
	opAMO      uint32 = 0x2f
)

// opFunc is the signature every opcode handler implements: decode its own
// fields out of insn and mutate h accordingly, raising a trap on failure.
// size is the encoded instruction length in bytes (2 or 4), needed by
// JAL/JALR to compute the correct link value.
type opFunc func(h *Hart, insn uint32, size uint32)

// opTable is a flat opcode-indexed dispatch table (Design Note 9's
// "alternatively, a flat opcode-indexed dispatch table"), populated by
// init() below. A nil entry is an illegal instruction.
var opTable [128]opFunc

func init() {
	opTable[opLUI] = execLUI
	opTable[opAUIPC] = execAUIPC
	opTable[opJAL] = execJAL
	opTable[opJALR] = execJALR
	opTable[opBranch] = execBranch
	opTable[opLoad] = execLoad
	opTable[opStore] = execStore
	opTable[opOpImm] = execOpImm
	opTable[opOp] = execOp
	opTable[opSystem] = execSystem
	opTable[opMiscMem] = execMiscMem
	opTable[opAMO] = execAMO
}

// execute decodes insn's primary opcode and dispatches to its handler.
func (h *Hart) execute(insn uint32, size uint32) {
	opcode := insn & 0x7f
	fn := opTable[opcode]
	if fn == nil {
		h.illegalInstruction(insn)
		return
	}
	fn(h, insn, size)
}

// Common field extractors shared by every opcode handler.
func rd(insn uint32) uint32     { return (insn >> 7) & 0x1f }
func rs1(insn uint32) uint32    { return (insn >> 15) & 0x1f }
func rs2(insn uint32) uint32    { return (insn >> 20) & 0x1f }
func funct3(insn uint32) uint32 { return (insn >> 12) & 0x7 }
func funct7(insn uint32) uint32 { return (insn >> 25) & 0x7f }

func immI(insn uint32) uint32 { return signExtend(insn>>20, 11) }

func immS(insn uint32) uint32 {
	v := (insn>>25)<<5 | (insn>>7)&0x1f
	return signExtend(v, 11)
}

func immB(insn uint32) uint32 {
	v := (insn>>31&1)<<12 | (insn>>7&1)<<11 | (insn>>25&0x3f)<<5 | (insn>>8&0xf)<<1
	return signExtend(v, 12)
}

func immU(insn uint32) uint32 { return insn &^ 0xfff }

func immJ(insn uint32) uint32 {
	v := (insn>>31&1)<<20 | (insn>>12&0xff)<<12 | (insn>>20&1)<<11 | (insn>>21&0x3ff)<<1
	return signExtend(v, 20)
}
