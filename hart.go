// Package rv32 implements a minimalist emulator for the RV32I base integer
// instruction set, with optional support for the M (multiply/divide) and A
// (atomic) extensions and a decoder for the 16-bit compressed encoding.
//
// The emulator models enough privileged machinery — CSRs, traps, a
// memory-mapped timer interrupt, and three privilege levels — to run
// compliance-test binaries, bare-metal programs, and simple kernels. It does
// not implement an MMU, floating point, multiple harts, or cycle-accurate
// timing.
package rv32

import "log"

// Priv is an RV32 privilege level.
type Priv uint8

const (
	PrivUser       Priv = 0
	PrivSupervisor Priv = 1
	PrivMachine    Priv = 3
)

// Extension is a bitmask of optional instruction-set extensions.
type Extension uint8

const (
	ExtM Extension = 1 << iota // multiply/divide
	ExtA                       // atomic read-modify-write
)

// IllegalInstrPolicy selects what happens when the execute unit encounters
// an illegal or unsupported encoding.
type IllegalInstrPolicy uint8

const (
	// IllegalInstrTerminate stops the machine instead of taking the
	// architectural trap. This matches the compliance-test harness
	// convention this emulator was built against (see Design Note in
	// DESIGN.md) and is the default.
	IllegalInstrTerminate IllegalInstrPolicy = iota
	// IllegalInstrTrap takes the normal exception path instead.
	IllegalInstrTrap
)

// Config selects the Hart's optional behavior at construction time.
type Config struct {
	Extensions   Extension
	IllegalInstr IllegalInstrPolicy
	// FixedClockStep, when non-zero, replaces the wall-clock-driven mtime
	// advance with a fixed per-instruction increment, for reproducible
	// replay (spec: "a build-time switch replaces it with a fixed
	// increment per instruction").
	FixedClockStep uint64
}

// DefaultConfig enables both optional extensions and the compliance-test
// illegal-instruction policy.
func DefaultConfig() Config {
	return Config{Extensions: ExtM | ExtA, IllegalInstr: IllegalInstrTerminate}
}

// Fault reports a failed Bus access: the exception cause that should be
// raised and the faulting address to report as tval. A nil *Fault means
// the access succeeded. This is the result-typed replacement (Design Note
// in DESIGN.md) for the reference implementation's pending_exception /
// pending_tval side-channel fields.
type Fault struct {
	Cause uint32
	Tval  uint32
}

// Bus is the memory interface the Hart executes against.
type Bus interface {
	ReadU8(addr uint32) (uint8, *Fault)
	ReadU16(addr uint32) (uint16, *Fault)
	ReadU32(addr uint32) (uint32, *Fault)
	WriteU8(addr uint32, v uint8) *Fault
	WriteU16(addr uint32, v uint16) *Fault
	WriteU32(addr uint32, v uint32) *Fault
	// FetchInsn32 reads 4 bytes at pc without alignment enforcement; the
	// core loop enforces PC alignment separately.
	FetchInsn32(pc uint32) uint32
}

// Stats holds purely observational retirement counters. Never read by the
// execute unit; safe to ignore.
type Stats struct {
	Instructions    uint64
	JumpsTotal      uint64
	JumpsForward    uint64
	JumpsBackward   uint64
	BranchesTaken   uint64
	BranchesNotTakn uint64
}

// Hart is the single owning aggregate for all processor-visible and
// microarchitectural state. The core loop and every instruction handler
// take *Hart by exclusive mutable reference; there is no other mutable
// global in this package.
type Hart struct {
	Bus Bus

	PC     uint32
	nextPC uint32
	Reg    [32]uint32

	Priv Priv

	// Machine-level CSRs.
	MStatus    uint32
	MTVec      uint32
	MScratch   uint32
	MEPC       uint32
	MCause     uint32
	MTval      uint32
	MHartID    uint32
	MIE        uint32
	MIP        uint32
	MEDeleg    uint32
	MIDeleg    uint32
	MCounterEn uint32

	// Supervisor-level CSRs.
	STVec      uint32
	SScratch   uint32
	SEPC       uint32
	SCause     uint32
	STval      uint32
	SATP       uint32
	SCounterEn uint32

	// fs/mxl are carried for CSR composition only; there is no FP
	// execution and mxl is fixed at 32-bit (1).
	fs  uint32
	mxl uint32

	// loadRes is the address reserved by the most recent LR.W, for SC.W.
	loadRes    uint32
	hasLoadRes bool

	// mtime/mtimecmp live here rather than in RAM because they are
	// consulted by the core loop every iteration, not just on Bus access;
	// RAM (the default Bus) reads/writes these fields directly on its
	// owning Hart.
	MTime    uint64
	MTimeCmp uint64

	InsnCounter uint64

	Running bool

	// HasSignature and ExitCode support the compliance-test termination
	// convention (spec.md §6): once a loader records a signature range it
	// sets HasSignature, and an ECALL with reg[3]'s low bit set then
	// terminates the machine with exit status reg[3] >> 1 instead of
	// raising the usual exception.
	HasSignature bool
	ExitCode     uint32

	Config Config
	Stats  Stats

	clockFn func() uint64 // overridable for tests; nil means wall clock
}

// New creates a Hart wired to the given bus with default configuration and
// performs a reset. reg[2] is NOT set here: the loader is responsible for
// setting the initial stack pointer once ram_start and RAM_SIZE are known
// (spec.md §6).
func New(bus Bus) *Hart {
	return NewWithConfig(bus, DefaultConfig())
}

// NewWithConfig is like New but with an explicit Config.
func NewWithConfig(bus Bus, cfg Config) *Hart {
	h := &Hart{Bus: bus, Config: cfg}
	h.Reset()
	return h
}

// Reset zeroes Hart state, enters Machine mode, and clears PC to 0. Callers
// (typically the loader) set PC, MTVec, and reg[2] afterward.
func (h *Hart) Reset() {
	h.PC = 0
	h.nextPC = 0
	h.Reg = [32]uint32{}
	h.Priv = PrivMachine
	h.MStatus = 0
	h.MTVec = 0
	h.MScratch = 0
	h.MEPC = 0
	h.MCause = 0
	h.MTval = 0
	h.MHartID = 0
	h.MIE = 0
	h.MIP = 0
	h.MEDeleg = 0
	h.MIDeleg = 0
	h.MCounterEn = 0
	h.STVec = 0
	h.SScratch = 0
	h.SEPC = 0
	h.SCause = 0
	h.STval = 0
	h.SATP = 0
	h.SCounterEn = 0
	h.fs = 0
	h.mxl = 1
	h.loadRes = 0
	h.hasLoadRes = false
	h.MTime = 0
	h.MTimeCmp = 0
	h.InsnCounter = 0
	h.HasSignature = false
	h.ExitCode = 0
	h.Running = true
	h.Stats = Stats{}
}

// setReg writes a general-purpose register, silently dropping writes to
// x0 so that the architectural invariant reg[0] == 0 always holds.
func (h *Hart) setReg(rd uint32, val uint32) {
	if rd != 0 {
		h.Reg[rd] = val
	}
}

// now returns the current wall-clock-derived mtime tick count (10 MHz,
// i.e. a 100ns period), or advances by a fixed per-instruction step when
// Config.FixedClockStep is set for reproducible replay.
func (h *Hart) now() uint64 {
	if h.Config.FixedClockStep != 0 {
		h.MTime += h.Config.FixedClockStep
		return h.MTime
	}
	if h.clockFn != nil {
		return h.clockFn()
	}
	return wallClockTicks()
}

// Step runs exactly one core-loop iteration (spec.md §4.6):
//  1. advance mtime
//  2. default next_pc = pc + 4
//  3. set mip.MTIP if mtimecmp <= mtime
//  4. deliver a pending enabled interrupt instead of fetching, if any
//  5. otherwise fetch, decode, execute
//  6. check next_pc alignment (2-byte, since compressed instructions are
//     always accepted)
//  7. pc <- next_pc
func (h *Hart) Step() {
	if !h.Running {
		return
	}

	h.MTime = h.now()
	h.nextPC = h.PC + 4

	if h.MTimeCmp <= h.MTime {
		h.MIP |= mipMTIP
	}

	if h.checkInterrupt() {
		h.PC = h.nextPC
		return
	}

	insn, size := h.fetch(h.PC)
	h.InsnCounter++
	h.Stats.Instructions++
	h.execute(insn, size)

	if h.nextPC&1 != 0 {
		h.raiseException(causeMisalignedFetch, h.nextPC)
	}

	h.PC = h.nextPC
}

// Run steps the Hart until Running becomes false.
func (h *Hart) Run() {
	for h.Running {
		h.Step()
	}
}

// fetch reads the instruction at pc, returning the decoded-ready 32-bit
// word and its encoded size in bytes (2 for compressed, 4 otherwise).
func (h *Hart) fetch(pc uint32) (insn uint32, size uint32) {
	raw := h.Bus.FetchInsn32(pc)
	if raw&3 == 3 {
		h.nextPC = pc + 4
		return raw, 4
	}
	expanded, ok := expandCompressed(uint16(raw))
	h.nextPC = pc + 2
	if !ok {
		return 0, 2 // execute() raises illegal-instruction on a zero/invalid word
	}
	return expanded, 2
}

// readU8/readU16/readU32/writeU8/writeU16/writeU32 wrap the Bus access
// methods, raising the reported trap and returning ok=false on failure so
// instruction handlers can do:
//
//	v, ok := h.readU32(addr)
//	if !ok { return }
func (h *Hart) readU8(addr uint32) (uint8, bool) {
	v, f := h.Bus.ReadU8(addr)
	if f != nil {
		h.raiseException(f.Cause, f.Tval)
		return 0, false
	}
	return v, true
}

func (h *Hart) readU16(addr uint32) (uint16, bool) {
	v, f := h.Bus.ReadU16(addr)
	if f != nil {
		h.raiseException(f.Cause, f.Tval)
		return 0, false
	}
	return v, true
}

func (h *Hart) readU32(addr uint32) (uint32, bool) {
	v, f := h.Bus.ReadU32(addr)
	if f != nil {
		h.raiseException(f.Cause, f.Tval)
		return 0, false
	}
	return v, true
}

func (h *Hart) writeU8(addr uint32, v uint8) bool {
	if f := h.Bus.WriteU8(addr, v); f != nil {
		h.raiseException(f.Cause, f.Tval)
		return false
	}
	return true
}

func (h *Hart) writeU16(addr uint32, v uint16) bool {
	if f := h.Bus.WriteU16(addr, v); f != nil {
		h.raiseException(f.Cause, f.Tval)
		return false
	}
	return true
}

func (h *Hart) writeU32(addr uint32, v uint32) bool {
	if f := h.Bus.WriteU32(addr, v); f != nil {
		h.raiseException(f.Cause, f.Tval)
		return false
	}
	return true
}

func logf(format string, args ...any) {
	log.Printf("rv32: "+format, args...)
}
