// Package varint implements the "UTF-8-style" variable-length integer
// coding used by FLAC frame headers to store frame/sample numbers.
//
// The scheme follows the UTF-8 byte-pattern rules, extended from the
// standard 4-byte (21-bit payload) ceiling to 7 bytes (36-bit payload),
// which is what FLAC needs to store a 36-bit sample number in a
// variable-blocksize frame header.
package varint

import (
	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"
)

// Leading-byte patterns and continuation-byte markers, named after the
// equivalent constants in Go's own unicode/utf8 package.
const (
	tx = 0x80 // 1000 0000, continuation byte marker.
	t2 = 0xC0 // 1100 0000
	t3 = 0xE0 // 1110 0000
	t4 = 0xF0 // 1111 0000
	t5 = 0xF8 // 1111 1000
	t6 = 0xFC // 1111 1100
	t7 = 0xFE // 1111 1110

	maskx = 0x3F // 0011 1111
	mask2 = 0x1F // 0001 1111
	mask3 = 0x0F // 0000 1111
	mask4 = 0x07 // 0000 0111
	mask5 = 0x03 // 0000 0011
	mask6 = 0x01 // 0000 0001

	max1 = 1<<7 - 1
	max2 = 1<<11 - 1
	max3 = 1<<16 - 1
	max4 = 1<<21 - 1
	max5 = 1<<26 - 1
	max6 = 1<<31 - 1
	max7 = 1<<36 - 1
)

// MaxValue is the largest integer representable by this coding, using the
// maximum 7-byte sequence.
const MaxValue = max7

// Encode writes x using the UTF-8-style variable-length coding described in
// the package comment.
func Encode(bw *bitio.Writer, x uint64) error {
	if x > max7 {
		return errutil.Newf("varint: value %d exceeds the 36-bit payload ceiling", x)
	}

	// 1-byte, 7-bit sequence.
	if x <= max1 {
		if err := bw.WriteBits(x, 8); err != nil {
			return errutil.Err(err)
		}
		return nil
	}

	// Number of continuation bytes and the bit pattern of the leading byte.
	var (
		ncont int
		lead  uint64
	)
	switch {
	case x <= max2:
		ncont = 1
		lead = t2 | (x>>(6*1))&mask2
	case x <= max3:
		ncont = 2
		lead = t3 | (x>>(6*2))&mask3
	case x <= max4:
		ncont = 3
		lead = t4 | (x>>(6*3))&mask4
	case x <= max5:
		ncont = 4
		lead = t5 | (x>>(6*4))&mask5
	case x <= max6:
		ncont = 5
		lead = t6 | (x>>(6*5))&mask6
	default: // x <= max7
		ncont = 6
		lead = t7
	}
	if err := bw.WriteBits(lead, 8); err != nil {
		return errutil.Err(err)
	}
	for i := ncont - 1; i >= 0; i-- {
		cont := tx | (x>>uint(6*i))&maskx
		if err := bw.WriteBits(cont, 8); err != nil {
			return errutil.Err(err)
		}
	}
	return nil
}

// Decode reads a UTF-8-style coded integer from br.
func Decode(br *bitio.Reader) (uint64, error) {
	lead, err := br.ReadByte()
	if err != nil {
		return 0, errutil.Err(err)
	}

	var (
		ncont int
		x     uint64
	)
	switch {
	case lead&0x80 == 0x00: // 0xxxxxxx
		return uint64(lead), nil
	case lead&0xE0 == t2: // 110xxxxx
		ncont = 1
		x = uint64(lead & mask2)
	case lead&0xF0 == t3: // 1110xxxx
		ncont = 2
		x = uint64(lead & mask3)
	case lead&0xF8 == t4: // 11110xxx
		ncont = 3
		x = uint64(lead & mask4)
	case lead&0xFC == t5: // 111110xx
		ncont = 4
		x = uint64(lead & mask5)
	case lead&0xFE == t6: // 1111110x
		ncont = 5
		x = uint64(lead & mask6)
	case lead == t7: // 11111110
		ncont = 6
		x = 0
	default:
		return 0, errutil.Newf("varint: invalid leading byte %#02x", lead)
	}

	for i := 0; i < ncont; i++ {
		b, err := br.ReadByte()
		if err != nil {
			return 0, errutil.Err(err)
		}
		if b&0xC0 != tx {
			return 0, errutil.Newf("varint: invalid continuation byte %#02x", b)
		}
		x = x<<6 | uint64(b&maskx)
	}
	return x, nil
}
