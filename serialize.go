package rv32

import (
	"encoding/binary"
	"errors"
)

// hartSerializeVersion is incremented whenever the binary layout changes.
const hartSerializeVersion = 1

// hartSerializeSize is the number of bytes produced by Hart.Serialize.
// Update this constant whenever the binary layout changes. Bus contents
// are not included; only processor-visible and microarchitectural state.
const hartSerializeSize = 1 + // version
	4 + 4 + // pc, nextPC
	32*4 + // general registers
	1 + // priv
	18*4 + // machine + supervisor CSRs
	4 + 4 + 4 + // scounteren, fs, mxl
	4 + 1 + // loadRes, hasLoadRes
	8 + 8 + 8 + // mtime, mtimecmp, insnCounter
	1 + 1 + // running, hasSignature
	4 // exitCode

// SerializeSize returns the number of bytes needed for Serialize.
func (h *Hart) SerializeSize() int { return hartSerializeSize }

// Serialize writes the full Hart state into buf, which must be at least
// SerializeSize() bytes. The Bus is not included.
func (h *Hart) Serialize(buf []byte) error {
	if len(buf) < hartSerializeSize {
		return errors.New("rv32: serialize buffer too small")
	}

	buf[0] = hartSerializeVersion
	be := binary.BigEndian
	off := 1

	be.PutUint32(buf[off:], h.PC)
	off += 4
	be.PutUint32(buf[off:], h.nextPC)
	off += 4

	for i := 0; i < 32; i++ {
		be.PutUint32(buf[off:], h.Reg[i])
		off += 4
	}

	buf[off] = uint8(h.Priv)
	off++

	for _, v := range []uint32{
		h.MStatus, h.MTVec, h.MScratch, h.MEPC, h.MCause, h.MTval, h.MHartID,
		h.MIE, h.MIP, h.MEDeleg, h.MIDeleg, h.MCounterEn,
		h.STVec, h.SScratch, h.SEPC, h.SCause, h.STval, h.SATP,
	} {
		be.PutUint32(buf[off:], v)
		off += 4
	}
	be.PutUint32(buf[off:], h.SCounterEn)
	off += 4
	be.PutUint32(buf[off:], h.fs)
	off += 4
	be.PutUint32(buf[off:], h.mxl)
	off += 4

	be.PutUint32(buf[off:], h.loadRes)
	off += 4
	buf[off] = boolByte(h.hasLoadRes)
	off++

	be.PutUint64(buf[off:], h.MTime)
	off += 8
	be.PutUint64(buf[off:], h.MTimeCmp)
	off += 8
	be.PutUint64(buf[off:], h.InsnCounter)
	off += 8

	buf[off] = boolByte(h.Running)
	off++
	buf[off] = boolByte(h.HasSignature)
	off++
	be.PutUint32(buf[off:], h.ExitCode)

	return nil
}

// Deserialize restores Hart state from buf, which must be at least
// SerializeSize() bytes and produced by a matching Serialize version. The
// Bus and Config are left unchanged.
func (h *Hart) Deserialize(buf []byte) error {
	if len(buf) < hartSerializeSize {
		return errors.New("rv32: deserialize buffer too small")
	}
	if buf[0] != hartSerializeVersion {
		return errors.New("rv32: unsupported serialize version")
	}

	be := binary.BigEndian
	off := 1

	h.PC = be.Uint32(buf[off:])
	off += 4
	h.nextPC = be.Uint32(buf[off:])
	off += 4

	for i := 0; i < 32; i++ {
		h.Reg[i] = be.Uint32(buf[off:])
		off += 4
	}

	h.Priv = Priv(buf[off])
	off++

	fields := []*uint32{
		&h.MStatus, &h.MTVec, &h.MScratch, &h.MEPC, &h.MCause, &h.MTval, &h.MHartID,
		&h.MIE, &h.MIP, &h.MEDeleg, &h.MIDeleg, &h.MCounterEn,
		&h.STVec, &h.SScratch, &h.SEPC, &h.SCause, &h.STval, &h.SATP,
	}
	for _, p := range fields {
		*p = be.Uint32(buf[off:])
		off += 4
	}
	h.SCounterEn = be.Uint32(buf[off:])
	off += 4
	h.fs = be.Uint32(buf[off:])
	off += 4
	h.mxl = be.Uint32(buf[off:])
	off += 4

	h.loadRes = be.Uint32(buf[off:])
	off += 4
	h.hasLoadRes = buf[off] != 0
	off++

	h.MTime = be.Uint64(buf[off:])
	off += 8
	h.MTimeCmp = be.Uint64(buf[off:])
	off += 8
	h.InsnCounter = be.Uint64(buf[off:])
	off += 8

	h.Running = buf[off] != 0
	off++
	h.HasSignature = buf[off] != 0
	off++
	h.ExitCode = be.Uint32(buf[off:])

	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
