// Package flacenc exposes the FLAC encoding core's three call groups to an
// outer frame assembler: fixed-predictor residual generation, LPC analysis
// and residual generation, and partitioned Rice encoding of a block's
// residuals. It mirrors the call sequence a subframe encoder runs per
// predictor candidate (analyze, quantize, generate residuals, Rice-code),
// the sequence encode_subframe.go ran inline per subframe.
package flacenc

import (
	"github.com/mewkiz/flacenc/fixed"
	"github.com/mewkiz/flacenc/lpc"
	"github.com/mewkiz/flacenc/rice"
)

// EncodeFixed tries every feasible fixed predictor order against samples
// and returns the residuals of whichever order minimizes the sum of
// absolute residual values. It reports fixed.ErrInfeasible when even order
// 0 cannot be computed (an empty block).
func EncodeFixed(samples []int32) (order int, residuals []int32, err error) {
	return fixed.BestOrder(samples)
}

// LPCResult holds the outcome of an LPC analysis-and-quantization pass:
// the quantized coefficients, the shift they were quantized under, and the
// resulting residual signal.
type LPCResult struct {
	Coeffs    []int32
	Shift     int
	Residuals []int32
}

// EncodeLPC runs autocorrelation, Levinson-Durbin, coefficient
// quantization at the given precision, and residual generation for a
// single candidate order. It reports lpc.ErrSilentBlock for an all-zero
// block, which makes Levinson-Durbin's first division undefined.
func EncodeLPC(samples []int32, order, precision int) (LPCResult, error) {
	r := lpc.Autocorrelate(samples, order)
	a, err := lpc.LevinsonDurbin(r, order)
	if err != nil {
		return LPCResult{}, err
	}
	q := lpc.QuantizeCoeffs(a, precision)
	residuals, err := lpc.Residuals(samples, q.Coeffs, q.Shift)
	if err != nil {
		return LPCResult{}, err
	}
	return LPCResult{Coeffs: q.Coeffs, Shift: q.Shift, Residuals: residuals}, nil
}

// RiceEncodeBlock performs partition-order search over residuals produced
// by a predictor of the given order and packs the winning layout into
// bytes, returning the chosen partition order, one Rice parameter per
// partition, the packed bytes, and the count of unused low bits in the
// final byte.
func RiceEncodeBlock(residuals []int32, predictorOrder int) (rice.Block, error) {
	return rice.EncodeBlock(residuals, predictorOrder)
}
