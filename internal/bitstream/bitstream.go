// Package bitstream provides the small bit-level helpers shared by the
// Rice coder: ZigZag mapping and unary coding. These mirror
// github.com/mewkiz/flac/internal/bits, scoped down to just the two
// primitives the Rice coder needs. The UTF-8-style coding lives in its own
// exported package, varint, since it is a standalone codec rather than a
// Rice-coder implementation detail.
package bitstream

import (
	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"
)

// ZigZag maps a signed integer to an unsigned one so that small-magnitude
// values (positive or negative) map to small unsigned values:
//
//	0 -> 0, -1 -> 1, 1 -> 2, -2 -> 3, 2 -> 4, ...
func ZigZag(x int32) uint32 {
	return uint32(x<<1) ^ uint32(x>>31)
}

// UnZigZag is the inverse of ZigZag.
func UnZigZag(x uint32) int32 {
	return int32(x>>1) ^ -int32(x&1)
}

// WriteUnary encodes x as a unary-coded integer: x zero bits followed by a
// single one bit.
//
//	0 => 1
//	1 => 01
//	2 => 001
//	3 => 0001
func WriteUnary(bw *bitio.Writer, x uint64) error {
	for ; x >= 32; x -= 32 {
		if err := bw.WriteBits(0, 32); err != nil {
			return errutil.Err(err)
		}
	}
	// x < 32 zero bits followed by a one bit fits in at most 32 bits; write
	// the zeros and the stop bit together as a single (x+1)-bit value of 1.
	if err := bw.WriteBits(1, uint8(x+1)); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// ReadUnary decodes a unary-coded integer written by WriteUnary.
func ReadUnary(br *bitio.Reader) (uint64, error) {
	var x uint64
	for {
		bit, err := br.ReadBool()
		if err != nil {
			return 0, errutil.Err(err)
		}
		if bit {
			return x, nil
		}
		x++
	}
}
