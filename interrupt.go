package rv32

import "math/bits"

// checkInterrupt implements the core loop's per-iteration interrupt check
// (spec.md §4.6 step 4, §4.3): compute the pending-and-enabled interrupt
// set under the masking rules for the current privilege, and if any bit
// is set, deliver the lowest-index one through the trap unit. Returns
// true if an interrupt was delivered (the caller must skip fetch for this
// iteration).
func (h *Hart) checkInterrupt() bool {
	pending := h.MIP & h.MIE
	if pending == 0 {
		return false
	}

	var candidate uint32
	switch h.Priv {
	case PrivMachine:
		if h.MStatus&mstatusMIE != 0 {
			candidate = pending &^ h.MIDeleg
		}
	case PrivSupervisor:
		candidate = pending &^ h.MIDeleg
		if h.MStatus&mstatusSIE != 0 {
			candidate |= pending & h.MIDeleg
		}
	case PrivUser:
		candidate = pending
	}

	if candidate == 0 {
		return false
	}

	bit := uint32(bits.TrailingZeros32(candidate))
	h.raiseException(bit|causeInterruptFlag, 0)
	return true
}
