package xmodem

import "github.com/sigurn/crc16"

// crc16Table is the XMODEM CRC-16 table: polynomial 0x1021, initial value
// 0x0000, no input/output reflection, no final XOR — exactly the
// polynomial and seed spec.md requires.
var crc16Table = crc16.MakeTable(crc16.CRC16_XMODEM)

// crc16Of computes the 16-bit CRC of buf, MSB-first, over the full buffer
// (the caller passes the already-padded block, trailer excluded).
func crc16Of(buf []byte) uint16 {
	return crc16.Checksum(buf, crc16Table)
}

// crc16Incremental accumulates a CRC-16 across multiple writes, for
// streaming use where the block is assembled byte by byte.
type crc16Incremental struct {
	h crc16.Hash16
}

func newCRC16Incremental() *crc16Incremental {
	return &crc16Incremental{h: crc16.New(crc16Table)}
}

func (c *crc16Incremental) Write(p []byte) {
	_, _ = c.h.Write(p)
}

func (c *crc16Incremental) Sum16() uint16 {
	return c.h.Sum16()
}

// checksum8 is the low 8 bits of the arithmetic sum of buf, as unsigned
// bytes. This is a single modular addition loop with no meaningful
// alternative implementation, so it is not backed by a library.
func checksum8(buf []byte) byte {
	var sum byte
	for _, b := range buf {
		sum += b
	}
	return sum
}
