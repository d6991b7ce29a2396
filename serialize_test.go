package rv32

import "testing"

func TestSerializeSize(t *testing.T) {
	h := NewWithConfig(nil, DefaultConfig())
	buf := make([]byte, h.SerializeSize())
	if err := h.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
}

func TestSerializeBufferTooSmall(t *testing.T) {
	h := NewWithConfig(nil, DefaultConfig())
	buf := make([]byte, h.SerializeSize()-1)
	if err := h.Serialize(buf); err == nil {
		t.Fatal("Serialize should reject an undersized buffer")
	}
	if err := h.Deserialize(buf); err == nil {
		t.Fatal("Deserialize should reject an undersized buffer")
	}
}

// Filling a Hart with non-default values, serializing, and deserializing
// into a fresh Hart (with a different Bus) must reproduce every
// processor-visible and microarchitectural field, while leaving the
// destination's Bus and Config untouched.
func TestSerializeRoundTrip(t *testing.T) {
	src := NewWithConfig(nil, Config{Extensions: ExtM | ExtA, IllegalInstr: IllegalInstrTrap})
	srcBus := NewRAM(src, DefaultRAMSize)
	src.Bus = srcBus

	src.PC = 0x1000
	src.nextPC = 0x1004
	for i := range src.Reg {
		src.Reg[i] = uint32(i) * 0x11111111
	}
	src.Priv = PrivSupervisor
	src.MStatus = mstatusMIE | mstatusSPP
	src.MTVec = 0x200
	src.MScratch = 0x300
	src.MEPC = 0x400
	src.MCause = causeIllegalInstr
	src.MTval = 0x500
	src.MHartID = 0
	src.MIE = mipMTIP
	src.MIP = mipSTIP
	src.MEDeleg = medelegLegalMask
	src.MIDeleg = midelegLegalMask
	src.MCounterEn = 1
	src.STVec = 0x600
	src.SScratch = 0x700
	src.SEPC = 0x800
	src.SCause = causeBreakpoint
	src.STval = 0x900
	src.SATP = 0xa00
	src.SCounterEn = 1
	src.fs = 3
	src.mxl = 1
	src.loadRes = 0xb00
	src.hasLoadRes = true
	src.MTime = 0x1122334455
	src.MTimeCmp = 0x6677889900
	src.InsnCounter = 42
	src.Running = true
	src.HasSignature = true
	src.ExitCode = 7

	buf := make([]byte, src.SerializeSize())
	if err := src.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	dst := NewWithConfig(nil, DefaultConfig())
	dstBus := NewRAM(dst, DefaultRAMSize)
	dst.Bus = dstBus
	dst.Config = Config{Extensions: ExtM, IllegalInstr: IllegalInstrTerminate}

	wantBus, wantConfig := dst.Bus, dst.Config
	if err := dst.Deserialize(buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if dst.Bus != wantBus {
		t.Fatal("Deserialize must not change Bus")
	}
	if dst.Config != wantConfig {
		t.Fatal("Deserialize must not change Config")
	}

	if dst.PC != src.PC || dst.nextPC != src.nextPC {
		t.Fatalf("pc/nextPC = 0x%x/0x%x, want 0x%x/0x%x", dst.PC, dst.nextPC, src.PC, src.nextPC)
	}
	for i := range src.Reg {
		if dst.Reg[i] != src.Reg[i] {
			t.Fatalf("reg[%d] = 0x%x, want 0x%x", i, dst.Reg[i], src.Reg[i])
		}
	}
	if dst.Priv != src.Priv {
		t.Fatalf("priv = %d, want %d", dst.Priv, src.Priv)
	}
	if dst.MStatus != src.MStatus || dst.MTVec != src.MTVec || dst.MScratch != src.MScratch ||
		dst.MEPC != src.MEPC || dst.MCause != src.MCause || dst.MTval != src.MTval {
		t.Fatal("machine trap CSRs did not round-trip")
	}
	if dst.MIE != src.MIE || dst.MIP != src.MIP || dst.MEDeleg != src.MEDeleg || dst.MIDeleg != src.MIDeleg {
		t.Fatal("interrupt/delegation CSRs did not round-trip")
	}
	if dst.STVec != src.STVec || dst.SScratch != src.SScratch || dst.SEPC != src.SEPC ||
		dst.SCause != src.SCause || dst.STval != src.STval || dst.SATP != src.SATP {
		t.Fatal("supervisor trap CSRs did not round-trip")
	}
	if dst.MCounterEn != src.MCounterEn || dst.SCounterEn != src.SCounterEn {
		t.Fatal("counter-enable CSRs did not round-trip")
	}
	if dst.fs != src.fs || dst.mxl != src.mxl {
		t.Fatal("fs/mxl did not round-trip")
	}
	if dst.loadRes != src.loadRes || dst.hasLoadRes != src.hasLoadRes {
		t.Fatal("reservation state did not round-trip")
	}
	if dst.MTime != src.MTime || dst.MTimeCmp != src.MTimeCmp || dst.InsnCounter != src.InsnCounter {
		t.Fatal("clock/counter state did not round-trip")
	}
	if dst.Running != src.Running || dst.HasSignature != src.HasSignature || dst.ExitCode != src.ExitCode {
		t.Fatal("run state did not round-trip")
	}
}
