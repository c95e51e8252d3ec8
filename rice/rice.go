// Package rice implements FLAC's partitioned Rice/Golomb residual coder:
// zigzag mapping, single-partition encoding, exact bit-cost scoring, and
// partition-order search.
//
// Grounded on github.com/mewkiz/flac's encodeResiduals/encodeRicePart/
// encodeRiceResidual (encode_subframe.go), which write a Rice-coded
// partition directly into a frame's bit stream using icza/bitio and the
// same zigzag/unary primitives this package builds on
// (internal/bitstream). This package generalizes that fixed, header-
// carrying encoder into a standalone one that also performs the partition-
// order search that fixed, header-carrying encoder left unimplemented.
package rice

import (
	"bytes"
	"math/bits"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"

	"github.com/mewkiz/flacenc/internal/bitstream"
)

// MaxParam is the largest Rice parameter this package will search, matching
// the 5-bit parameter field's usable range (31 is reserved for escape
// coding).
const MaxParam = 30

// partitionOrderCap is the maximum partition order targeted, matching the
// FLAC subset profile.
const partitionOrderCap = 8

// ErrParameterSearchEmpty is returned when no partition order (including 0)
// yields a non-empty first partition, i.e. the residual count is zero.
var ErrParameterSearchEmpty = errutil.NewNoPos("rice: no partition order admits a non-empty first partition")

// ZigZag and UnZigZag map signed residuals to and from the unsigned domain
// the Rice coder operates on.
func ZigZag(r int32) uint32   { return bitstream.ZigZag(r) }
func UnZigZag(z uint32) int32 { return bitstream.UnZigZag(z) }

// ExactBits returns the exact number of bits a partition's residuals occupy
// under Rice parameter M: sum(1 + M + (zigzag(r) >> M)).
func ExactBits(m uint, residuals []int32) uint64 {
	var total uint64
	for _, r := range residuals {
		z := uint64(ZigZag(r))
		total += 1 + uint64(m) + (z >> m)
	}
	return total
}

// BestParam searches M in [0, maxParam] for the partition's minimum exact
// bit cost, returning the winning parameter and its cost. Ties are broken by
// the lower M, since the search order is ascending and replacement requires
// a strictly smaller cost.
func BestParam(residuals []int32, maxParam uint) (m uint, bitCount uint64) {
	bestM, bestBits := uint(0), ExactBits(0, residuals)
	for candidate := uint(1); candidate <= maxParam; candidate++ {
		b := ExactBits(candidate, residuals)
		if b < bestBits {
			bestM, bestBits = candidate, b
		}
	}
	return bestM, bestBits
}

// EncodePartition writes residuals Rice-coded under parameter m to bw: for
// each residual, zigzag it, then emit (z>>m) unary zero-bits, a one stop
// bit, and the low m bits of z, most-significant-bit first.
func EncodePartition(bw *bitio.Writer, m uint, residuals []int32) error {
	for _, r := range residuals {
		z := uint64(ZigZag(r))
		q := z >> m
		if err := bitstream.WriteUnary(bw, q); err != nil {
			return errutil.Err(err)
		}
		if m > 0 {
			low := z & (1<<m - 1)
			if err := bw.WriteBits(low, uint8(m)); err != nil {
				return errutil.Err(err)
			}
		}
	}
	return nil
}

// DecodePartition reads n residuals Rice-coded under parameter m from br,
// the inverse of EncodePartition.
func DecodePartition(br *bitio.Reader, m uint, n int) ([]int32, error) {
	residuals := make([]int32, n)
	for i := range residuals {
		q, err := bitstream.ReadUnary(br)
		if err != nil {
			return nil, errutil.Err(err)
		}
		var low uint64
		if m > 0 {
			low, err = br.ReadBits(uint8(m))
			if err != nil {
				return nil, errutil.Err(err)
			}
		}
		z := q<<m | low
		residuals[i] = UnZigZag(uint32(z))
	}
	return residuals, nil
}

// Block is the result of a partition-order search: the chosen partition
// order, one Rice parameter per partition, the packed residual bytes (no
// header bits), and the count of unused low-order bits in the final byte.
type Block struct {
	PartitionOrder int
	Params         []uint
	Bytes          []byte
	ExtraBitsLen   int
}

// valuation2 returns v2(n), the largest k with 2^k dividing n. v2(0) is
// defined as 0 since a zero-length block never reaches a partition search.
func valuation2(n int) int {
	if n == 0 {
		return 0
	}
	return bits.TrailingZeros(uint(n))
}

// partitionBounds returns the sample counts of the 2^p partitions
// of a block of n total samples (including the order warm-up samples) at
// partition order p.
func partitionBounds(n, order, p int) []int {
	parts := 1 << uint(p)
	sizes := make([]int, parts)
	each := n / parts
	sizes[0] = each - order
	for i := 1; i < parts; i++ {
		sizes[i] = each
	}
	return sizes
}

// headerBits returns the bit cost of the partition order field (always 4
// bits) plus one Rice-parameter field per partition: 4 bits per field
// unless any chosen parameter exceeds 14, in which case every field widens
// to 5 bits (FLAC's escape-reserving 4-bit field tops out at 14).
func headerBits(params []uint) uint64 {
	paramSize := uint64(4)
	for _, m := range params {
		if m > 14 {
			paramSize = 5
			break
		}
	}
	return 4 + paramSize*uint64(len(params))
}

// EncodeBlock performs partition-order search over residuals produced by a
// predictor of the given order, then packs the winning layout's residuals
// into bytes. The total block size (including warm-up) is
// len(residuals)+order.
func EncodeBlock(residuals []int32, order int) (Block, error) {
	if len(residuals) == 0 {
		return Block{}, errutil.Err(ErrParameterSearchEmpty)
	}
	n := len(residuals) + order

	pMax := partitionOrderCap
	if v := valuation2(n); v < pMax {
		pMax = v
	}

	type candidate struct {
		p      int
		params []uint
		cost   uint64
	}
	var best *candidate

	for p := 0; p <= pMax; p++ {
		parts := 1 << uint(p)
		if n%parts != 0 {
			continue
		}
		sizes := partitionBounds(n, order, p)
		if sizes[0] <= 0 {
			continue
		}

		params := make([]uint, parts)
		var cost uint64
		offset := 0
		for i, sz := range sizes {
			part := residuals[offset : offset+sz]
			offset += sz
			m, partBits := BestParam(part, MaxParam)
			params[i] = m
			cost += partBits
		}
		cost += headerBits(params)

		if best == nil || cost < best.cost {
			best = &candidate{p: p, params: params, cost: cost}
		}
	}
	if best == nil {
		return Block{}, errutil.Err(ErrParameterSearchEmpty)
	}

	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	sizes := partitionBounds(n, order, best.p)
	offset := 0
	for i, sz := range sizes {
		part := residuals[offset : offset+sz]
		offset += sz
		if err := EncodePartition(bw, best.params[i], part); err != nil {
			return Block{}, errutil.Err(err)
		}
	}
	var bitsWritten uint64
	offset = 0
	for i, sz := range sizes {
		part := residuals[offset : offset+sz]
		offset += sz
		bitsWritten += ExactBits(best.params[i], part)
	}
	if err := bw.Close(); err != nil {
		return Block{}, errutil.Err(err)
	}

	extra := 0
	if rem := bitsWritten % 8; rem != 0 {
		extra = int(8 - rem)
	}

	return Block{
		PartitionOrder: best.p,
		Params:         best.params,
		Bytes:          buf.Bytes(),
		ExtraBitsLen:   extra,
	}, nil
}
