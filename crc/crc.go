// Package crc implements the CRC-8 and CRC-16 checksums used by FLAC frame
// headers and frame footers.
//
// Both widths share the same bitwise long-division algorithm, parameterized
// by a generator polynomial whose most significant bit is implicit (always
// 1). Table-driven computation is used for speed, but the table is built so
// that its result matches the bit-for-bit long division FLAC's reference
// encoder performs.
package crc

import "github.com/mewkiz/pkg/errutil"

// Predefined polynomials used by FLAC.
const (
	// Poly8 is the FLAC frame header CRC-8 polynomial: x^8 + x^2 + x + 1.
	Poly8 = 0x07
	// Poly16 is the FLAC frame footer CRC-16 polynomial: x^16 + x^15 + x^2 + 1.
	Poly16 = 0x8005
)

// Table8 is a 256-word table representing an 8-bit CRC polynomial for
// efficient processing.
type Table8 [256]uint8

// Table16 is a 256-word table representing a 16-bit CRC polynomial for
// efficient processing.
type Table16 [256]uint16

// MakeTable8 returns the Table8 constructed from the given 8-bit generator
// polynomial (MSB implicit).
func MakeTable8(poly uint8) *Table8 {
	table := new(Table8)
	for i := range table {
		crc := uint8(i)
		for j := 0; j < 8; j++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// MakeTable16 returns the Table16 constructed from the given 16-bit
// generator polynomial (MSB implicit).
func MakeTable16(poly uint16) *Table16 {
	table := new(Table16)
	for i := range table {
		crc := uint16(i << 8)
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// ATM8 is the table for the FLAC frame header CRC-8 polynomial.
var ATM8 = MakeTable8(Poly8)

// IBM16 is the table for the FLAC frame footer CRC-16 polynomial.
var IBM16 = MakeTable16(Poly16)

// Update8 returns the result of extending crc with the bytes in p, using the
// polynomial represented by table.
func Update8(crc uint8, table *Table8, p []byte) uint8 {
	for _, v := range p {
		crc = table[crc^v]
	}
	return crc
}

// Update16 returns the result of extending crc with the bytes in p, using the
// polynomial represented by table.
func Update16(crc uint16, table *Table16, p []byte) uint16 {
	for _, v := range p {
		crc = crc<<8 ^ table[crc>>8^uint16(v)]
	}
	return crc
}

// Checksum8 returns the CRC-8 checksum of data, using the polynomial
// represented by table.
func Checksum8(data []byte, table *Table8) uint8 {
	return Update8(0, table, data)
}

// Checksum16 returns the CRC-16 checksum of data, using the polynomial
// represented by table.
func Checksum16(data []byte, table *Table16) uint16 {
	return Update16(0, table, data)
}

// ChecksumATM returns the CRC-8 checksum of data using the FLAC frame header
// polynomial (0x07).
func ChecksumATM(data []byte) uint8 {
	return Checksum8(data, ATM8)
}

// ChecksumIBM returns the CRC-16 checksum of data using the FLAC frame
// footer polynomial (0x8005).
func ChecksumIBM(data []byte) uint16 {
	return Checksum16(data, IBM16)
}

// Digest8 represents the partial evaluation of a CRC-8 checksum. It
// implements hash.Hash through Write/Sum/Reset and additionally exposes
// Sum8 for the raw 8-bit remainder.
type Digest8 struct {
	crc   uint8
	table *Table8
}

// NewDigest8 creates a new Digest8 computing the CRC-8 checksum using the
// polynomial represented by table.
func NewDigest8(table *Table8) *Digest8 {
	return &Digest8{table: table}
}

// NewDigestATM creates a new Digest8 using the FLAC frame header polynomial.
func NewDigestATM() *Digest8 {
	return NewDigest8(ATM8)
}

// Write implements io.Writer / hash.Hash.
func (d *Digest8) Write(p []byte) (n int, err error) {
	d.crc = Update8(d.crc, d.table, p)
	return len(p), nil
}

// Sum8 returns the 8-bit checksum accumulated so far.
func (d *Digest8) Sum8() uint8 { return d.crc }

// Sum appends the checksum to in and returns the resulting slice.
func (d *Digest8) Sum(in []byte) []byte { return append(in, d.crc) }

// Reset resets the digest to its initial state.
func (d *Digest8) Reset() { d.crc = 0 }

// Size returns the number of bytes Sum will append.
func (d *Digest8) Size() int { return 1 }

// BlockSize returns the digest's natural block size.
func (d *Digest8) BlockSize() int { return 1 }

// Digest16 represents the partial evaluation of a CRC-16 checksum.
type Digest16 struct {
	crc   uint16
	table *Table16
}

// NewDigest16 creates a new Digest16 computing the CRC-16 checksum using the
// polynomial represented by table.
func NewDigest16(table *Table16) *Digest16 {
	return &Digest16{table: table}
}

// NewDigestIBM creates a new Digest16 using the FLAC frame footer polynomial.
func NewDigestIBM() *Digest16 {
	return NewDigest16(IBM16)
}

// Write implements io.Writer / hash.Hash.
func (d *Digest16) Write(p []byte) (n int, err error) {
	d.crc = Update16(d.crc, d.table, p)
	return len(p), nil
}

// Sum16 returns the 16-bit checksum accumulated so far.
func (d *Digest16) Sum16() uint16 { return d.crc }

// Sum appends the checksum, big-endian, to in and returns the resulting
// slice.
func (d *Digest16) Sum(in []byte) []byte {
	s := d.crc
	return append(in, byte(s>>8), byte(s))
}

// Reset resets the digest to its initial state.
func (d *Digest16) Reset() { d.crc = 0 }

// Size returns the number of bytes Sum will append.
func (d *Digest16) Size() int { return 2 }

// BlockSize returns the digest's natural block size.
func (d *Digest16) BlockSize() int { return 1 }

// Spec describes a generator polynomial for a CRC of width 8 or 16: the
// polynomial's MSB is implicit and must be 1 for the long division to be
// well-defined.
type Spec struct {
	// Poly is the generator polynomial with the implicit leading 1 bit
	// dropped, e.g. 0x07 for x^8+x^2+x+1.
	Poly uint64
	// Width is the CRC width in bits; only 8 and 16 are supported.
	Width int
}

// Validate reports whether s describes a supported, well-formed CRC
// configuration.
func (s Spec) Validate() error {
	switch s.Width {
	case 8:
		if s.Poly > 0xFF {
			return errutil.Newf("crc: polynomial %#x does not fit in %d bits", s.Poly, s.Width)
		}
	case 16:
		if s.Poly > 0xFFFF {
			return errutil.Newf("crc: polynomial %#x does not fit in %d bits", s.Poly, s.Width)
		}
	default:
		return errutil.Newf("crc: unsupported width %d; want 8 or 16", s.Width)
	}
	return nil
}

// Checksum computes the CRC remainder of data under this spec.
func (s Spec) Checksum(data []byte) (uint64, error) {
	if err := s.Validate(); err != nil {
		return 0, errutil.Err(err)
	}
	switch s.Width {
	case 8:
		return uint64(Checksum8(data, MakeTable8(uint8(s.Poly)))), nil
	default:
		return uint64(Checksum16(data, MakeTable16(uint16(s.Poly)))), nil
	}
}
