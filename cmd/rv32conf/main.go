// Command rv32conf runs every compliance-test image in a directory to
// completion, renders a progress bar for the batch, and prints a pass/fail
// summary at the end.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/nanorv/rv32emu"
	"github.com/nanorv/rv32emu/loader"
)

func main() {
	log.SetFlags(0)
	dir := flag.String("dir", ".", "directory of compliance-test images")
	refDir := flag.String("ref", "", "directory of reference .signature files to compare against")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("rv32conf: %v", err)
	}

	var images []string
	for _, e := range entries {
		if !e.IsDir() {
			images = append(images, e.Name())
		}
	}

	bar := progressbar.Default(int64(len(images)))
	defer bar.Close()

	var failures []string
	for _, name := range images {
		ok, err := runOne(filepath.Join(*dir, name), *refDir, name)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
		} else if !ok {
			failures = append(failures, fmt.Sprintf("%s: signature mismatch", name))
		}
		bar.Add(1)
	}

	fmt.Printf("\n%d/%d passed\n", len(images)-len(failures), len(images))
	for _, f := range failures {
		fmt.Println("FAIL:", f)
	}
	if len(failures) > 0 {
		os.Exit(1)
	}
}

// runOne loads, runs, and (if refDir is set) checks one image's
// signature against a reference file of the same base name with a
// .signature extension.
func runOne(path string, refDir string, name string) (bool, error) {
	fp, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer fp.Close()

	hart := rv32.New(nil)
	bus := rv32.NewRAM(hart, rv32.DefaultRAMSize)
	hart.Bus = bus

	img, err := loader.Load(fp, hart, bus)
	if err != nil {
		return false, err
	}

	hart.Run()

	if refDir == "" || !img.HasSignature {
		return true, nil
	}

	got := loader.FormatSignature(bus, img)
	want, err := os.ReadFile(filepath.Join(refDir, name+".signature"))
	if err != nil {
		return false, err
	}
	return bytes.Equal(got, want), nil
}
