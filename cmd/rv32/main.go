// Command rv32 runs a single RV32 program image to completion.
package main

import (
	"flag"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/nanorv/rv32emu"
	"github.com/nanorv/rv32emu/loader"
)

func main() {
	log.SetFlags(0)
	sigPath := flag.String("signature", "", "write the compliance-test signature range to this file")
	const sigArg = "+signature="
	var args []string
	for _, a := range os.Args[1:] {
		if len(a) > len(sigArg) && a[:len(sigArg)] == sigArg {
			*sigPath = a[len(sigArg):]
			continue
		}
		args = append(args, a)
	}
	_ = flag.CommandLine.Parse(args)

	if flag.NArg() != 1 {
		log.Fatal("usage: rv32 [+signature=<path>] <image>")
	}
	path := flag.Arg(0)

	fp, err := os.Open(path)
	if err != nil {
		log.Fatalf("rv32: %v", err)
	}
	defer fp.Close()

	hart := rv32.New(nil)
	bus := rv32.NewRAM(hart, rv32.DefaultRAMSize)
	hart.Bus = bus

	img, err := loader.Load(fp, hart, bus)
	if err != nil {
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			log.Fatalf("rv32: %v", err)
		}
		img, err = loader.LoadFlat(data, hart, bus)
		if err != nil {
			log.Fatalf("rv32: %v", err)
		}
	}

	restore := makeTerminalRaw()
	defer restore()

	hart.Run()

	restore()

	if *sigPath != "" && img.HasSignature {
		if err := os.WriteFile(*sigPath, loader.FormatSignature(bus, img), 0o644); err != nil {
			log.Fatalf("rv32: writing signature: %v", err)
		}
	}

	os.Exit(int(hart.ExitCode))
}

// makeTerminalRaw puts stdout into raw mode for the duration of the run
// so UART byte writes reach the terminal exactly as emitted, restoring
// the prior state on return. Returns a no-op if stdout isn't a terminal.
func makeTerminalRaw() func() {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}
	restored := false
	return func() {
		if restored {
			return
		}
		restored = true
		_ = term.Restore(fd, old)
	}
}
