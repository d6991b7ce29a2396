package rv32

import "time"

// rv32Epoch anchors wallClockTicks so mtime starts near zero instead of
// a huge absolute timestamp; only the rate (10 MHz) is architecturally
// meaningful, not the origin.
var rv32Epoch = time.Now()

// wallClockTicks returns the elapsed time since process start as a count
// of 100ns ticks, i.e. a simulated 10 MHz timer (spec.md §4.6, §5). Builds
// that need reproducible replay instead set Config.FixedClockStep, which
// bypasses this entirely (see Hart.now).
func wallClockTicks() uint64 {
	return uint64(time.Since(rv32Epoch) / 100)
}
