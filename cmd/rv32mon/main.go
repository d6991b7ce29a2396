// Command rv32mon is an interactive register/memory/breakpoint monitor
// for the rv32 core, in the style of a classic front-panel console.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/nanorv/rv32emu"
	"github.com/nanorv/rv32emu/loader"
)

type monitor struct {
	hart       *rv32.Hart
	bus        *rv32.RAM
	breakpoint uint32
	hasBreak   bool
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rv32mon <image>")
		os.Exit(1)
	}

	fp, err := os.Open(flag.Arg(0))
	if err != nil {
		slog.Error("opening image", "error", err)
		os.Exit(1)
	}
	defer fp.Close()

	hart := rv32.New(nil)
	bus := rv32.NewRAM(hart, rv32.DefaultRAMSize)
	hart.Bus = bus

	if _, err := loader.Load(fp, hart, bus); err != nil {
		data, rerr := os.ReadFile(flag.Arg(0))
		if rerr != nil {
			slog.Error("loading image", "error", err)
			os.Exit(1)
		}
		if _, err := loader.LoadFlat(data, hart, bus); err != nil {
			slog.Error("loading image", "error", err)
			os.Exit(1)
		}
	}

	m := &monitor{hart: hart, bus: bus}
	m.repl()
}

// repl runs the Hart on the same goroutine as the prompt loop — "continue"
// blocks the REPL until a breakpoint or termination, matching the core's
// run-to-completion model; nothing synchronizes with the Hart concurrently.
func (m *monitor) repl() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(in string) []string {
		return completions(in)
	})

	for {
		command, err := line.Prompt("rv32> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("reading command", "error", err)
			return
		}
		line.AppendHistory(command)

		if m.dispatch(command) {
			return
		}
	}
}

func completions(prefix string) []string {
	cmds := []string{"step", "regs", "mem", "break", "continue", "quit"}
	var out []string
	for _, c := range cmds {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// dispatch runs one command; the return value reports whether the REPL
// should exit.
func (m *monitor) dispatch(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "step":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				n = v
			}
		}
		for i := 0; i < n && m.hart.Running; i++ {
			m.hart.Step()
		}
	case "regs":
		m.printRegs()
	case "mem":
		m.printMem(fields[1:])
	case "break":
		if len(fields) < 2 {
			fmt.Println("usage: break <addr>")
			return false
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
		if err != nil {
			fmt.Println("bad address:", fields[1])
			return false
		}
		m.breakpoint = uint32(addr)
		m.hasBreak = true
	case "continue":
		m.runUntilBreak()
	case "quit":
		return true
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func (m *monitor) runUntilBreak() {
	for m.hart.Running {
		if m.hasBreak && m.hart.PC == m.breakpoint {
			fmt.Printf("breakpoint hit at 0x%08x\n", m.hart.PC)
			return
		}
		m.hart.Step()
	}
	fmt.Println("machine halted")
}

func (m *monitor) printRegs() {
	fmt.Printf("pc  = 0x%08x  priv = %d\n", m.hart.PC, m.hart.Priv)
	for i := 0; i < 32; i += 4 {
		fmt.Printf("x%-2d=0x%08x  x%-2d=0x%08x  x%-2d=0x%08x  x%-2d=0x%08x\n",
			i, m.hart.Reg[i], i+1, m.hart.Reg[i+1], i+2, m.hart.Reg[i+2], i+3, m.hart.Reg[i+3])
	}
}

func (m *monitor) printMem(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: mem <addr> [len]")
		return
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		fmt.Println("bad address:", args[0])
		return
	}
	n := uint64(16)
	if len(args) > 1 {
		if v, err := strconv.ParseUint(args[1], 10, 32); err == nil {
			n = v
		}
	}
	for i := uint64(0); i < n; i += 4 {
		v, _ := m.bus.ReadU32(uint32(addr) + uint32(i))
		fmt.Printf("0x%08x: 0x%08x\n", uint32(addr)+uint32(i), v)
	}
}
