// Package loader parses program images for the rv32 core and copies them
// into a Bus, resolving the symbols the core relies on the loader to
// have populated (entry point, trap vector, signature range).
package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"

	"github.com/nanorv/rv32emu"
)

// Sentinel errors returned by Load/LoadFlat.
var (
	ErrNoEntry   = errors.New("loader: no entry symbol (_start or __reset) found")
	ErrBadELF    = errors.New("loader: not a valid 32-bit RISC-V ELF image")
	ErrNoSegments = errors.New("loader: ELF image has no loadable segments")
)

// Image describes what was resolved while loading a program.
type Image struct {
	Entry uint32
	Base  uint32

	// HasSignature reports whether begin_signature/end_signature symbols
	// were found; SignatureStart/SignatureEnd are valid only then.
	HasSignature  bool
	SignatureStart uint32
	SignatureEnd   uint32
}

// Load parses r as a 32-bit little-endian RISC-V ELF image, copies every
// PT_LOAD segment into bus, and initializes hart per spec.md §6: PC from
// _start (falling back to __reset), MTVec from __irq_wrapper if present,
// reg[2] (sp) set to bus.Base + RAM_SIZE, and the signature range if both
// begin_signature/end_signature symbols resolve.
func Load(r io.ReaderAt, hart *rv32.Hart, bus *rv32.RAM) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadELF, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 || f.Machine != elf.EM_RISCV {
		return nil, ErrBadELF
	}

	img := &Image{}
	haveBase := false

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if !haveBase || uint32(prog.Paddr) < img.Base {
			img.Base = uint32(prog.Paddr)
			haveBase = true
		}
	}
	if !haveBase {
		return nil, ErrNoSegments
	}
	bus.Base = img.Base

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil && err != io.EOF {
			return nil, fmt.Errorf("loader: reading segment: %w", err)
		}
		addr := uint32(prog.Paddr)
		for i, b := range data {
			if f := bus.WriteU8(addr+uint32(i), b); f != nil {
				return nil, fmt.Errorf("loader: segment at 0x%x exceeds RAM", addr)
			}
		}
	}

	syms, _ := f.Symbols()
	lookup := func(name string) (uint32, bool) {
		for _, s := range syms {
			if s.Name == name {
				return uint32(s.Value), true
			}
		}
		return 0, false
	}

	entry, ok := lookup("_start")
	if !ok {
		entry, ok = lookup("__reset")
	}
	if !ok {
		return nil, ErrNoEntry
	}
	img.Entry = entry

	if irqVec, ok := lookup("__irq_wrapper"); ok {
		hart.MTVec = irqVec
	}

	begin, hasBegin := lookup("begin_signature")
	end, hasEnd := lookup("end_signature")
	if hasBegin && hasEnd {
		img.HasSignature = true
		img.SignatureStart = begin
		img.SignatureEnd = end
		hart.HasSignature = true
	}

	hart.PC = img.Entry
	hart.Reg[2] = bus.Base + bus.Size()

	return img, nil
}

// LoadFlat loads a raw flat binary at address 0 with no symbol table,
// for hand-assembled test fixtures that are not themselves ELF files
// (spec.md §8 scenarios 1-3). PC is set to 0 and reg[2] to base+RAM_SIZE;
// no signature range is recorded.
func LoadFlat(data []byte, hart *rv32.Hart, bus *rv32.RAM) (*Image, error) {
	bus.Base = 0
	for i, b := range data {
		if f := bus.WriteU8(uint32(i), b); f != nil {
			return nil, errors.New("loader: flat image exceeds RAM")
		}
	}
	hart.PC = 0
	hart.Reg[2] = bus.Base + bus.Size()
	return &Image{Entry: 0, Base: 0}, nil
}

// FormatSignature renders the memory range [img.SignatureStart,
// img.SignatureEnd) as the big-endian, word-order-reversed 16-byte-line
// format conformance tooling expects (spec.md §6): each output line holds
// four 32-bit words read from memory in REVERSE order relative to their
// address, each word printed as 8 lowercase hex digits, with no
// separators.
func FormatSignature(bus *rv32.RAM, img *Image) []byte {
	if !img.HasSignature {
		return nil
	}

	var out bytes.Buffer
	const wordsPerLine = 4
	addr := img.SignatureStart
	for addr < img.SignatureEnd {
		var words [wordsPerLine]uint32
		n := 0
		for n < wordsPerLine && addr < img.SignatureEnd {
			v, f := bus.ReadU32(addr)
			if f != nil {
				v = 0
			}
			words[n] = v
			addr += 4
			n++
		}
		for i := n - 1; i >= 0; i-- {
			fmt.Fprintf(&out, "%08x", words[i])
		}
		out.WriteByte('\n')
	}
	return out.Bytes()
}
