package loader

import (
	"testing"

	"github.com/nanorv/rv32emu"
)

func newLoaderTestHart() (*rv32.Hart, *rv32.RAM) {
	h := rv32.NewWithConfig(nil, rv32.DefaultConfig())
	bus := rv32.NewRAM(h, rv32.DefaultRAMSize)
	h.Bus = bus
	return h, bus
}

// LoadFlat places the image at address 0, leaves PC at 0, and sets the
// stack pointer to the top of RAM.
func TestLoadFlatBasics(t *testing.T) {
	h, bus := newLoaderTestHart()
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	img, err := LoadFlat(data, h, bus)
	if err != nil {
		t.Fatalf("LoadFlat: %v", err)
	}
	if img.HasSignature {
		t.Fatal("a flat image should never report a signature range")
	}
	if h.PC != 0 {
		t.Fatalf("pc = 0x%x, want 0", h.PC)
	}
	if h.Reg[2] != bus.Base+bus.Size() {
		t.Fatalf("sp = 0x%x, want top of RAM", h.Reg[2])
	}

	for i, want := range data {
		got, f := bus.ReadU8(uint32(i))
		if f != nil {
			t.Fatalf("reading byte %d: fault %+v", i, f)
		}
		if got != want {
			t.Fatalf("byte %d = 0x%x, want 0x%x", i, got, want)
		}
	}
}

// Bytes past the end of RAM are silently dropped (the same benign
// out-of-range behavior RAM.WriteU8 gives any caller), not an error.
func TestLoadFlatOversizedImageTailIsDropped(t *testing.T) {
	h, bus := newLoaderTestHart()
	data := make([]byte, bus.Size()+1)
	data[0] = 0xaa
	data[len(data)-1] = 0xbb

	if _, err := LoadFlat(data, h, bus); err != nil {
		t.Fatalf("LoadFlat: unexpected error %v", err)
	}
	got, f := bus.ReadU8(0)
	if f != nil || got != 0xaa {
		t.Fatalf("byte 0 = (0x%x, %+v), want (0xaa, nil)", got, f)
	}
}

// FormatSignature renders each 16-byte line as four words in reverse
// address order, each as 8 lowercase hex digits.
func TestFormatSignature(t *testing.T) {
	_, bus := newLoaderTestHart()

	const base = 0x100
	words := []uint32{0x11111111, 0x22222222, 0x33333333, 0x44444444, 0x55555555}
	for i, w := range words {
		if f := bus.WriteU32(base+uint32(i*4), w); f != nil {
			t.Fatalf("seeding word %d: fault %+v", i, f)
		}
	}

	img := &Image{HasSignature: true, SignatureStart: base, SignatureEnd: base + uint32(len(words))*4}
	out := FormatSignature(bus, img)

	// First line: 4 words read in address order, printed in reverse.
	// Second line: the fifth word alone.
	want := "44444444333333332222222211111111\n55555555\n"
	if string(out) != want {
		t.Fatalf("FormatSignature =\n%q\nwant\n%q", out, want)
	}
}

func TestFormatSignatureNoSignature(t *testing.T) {
	if out := FormatSignature(nil, &Image{HasSignature: false}); out != nil {
		t.Fatalf("FormatSignature with no signature = %q, want nil", out)
	}
}
