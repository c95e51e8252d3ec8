// Package lpc implements FLAC's variable-order linear predictor: Levinson-
// Durbin autocorrelation analysis, coefficient quantization, and residual
// generation.
//
// Grounded on github.com/mewkiz/flac's getLPCResiduals (encode_subframe.go),
// which computes LPC residuals from already-quantized coefficients and a
// shift, generalized here with the analysis stages (autocorrelation,
// Levinson-Durbin, precision/shift selection) that getLPCResiduals's own
// call site never implemented.
package lpc

import (
	"math"

	"github.com/mewkiz/pkg/errutil"
)

// MaxOrder is the highest LPC order FLAC allows. The functions in this
// package do not check the order they are given against it.
const MaxOrder = 32

// ErrSilentBlock is returned by LevinsonDurbin when R[0] == 0: a silent
// (all-zero) block makes the recursion's first division undefined.
var ErrSilentBlock = errutil.NewNoPos("lpc: autocorrelation R[0] == 0 (silent block)")

// Autocorrelate computes the unnormalized autocorrelation R[0..order] of
// samples in double precision:
//
//	R[l] = sum_{i=0}^{N-l-1} samples[i]*samples[i+l]
//
// The result is not divided by N-l; downstream quantization depends on
// consistent (unnormalized) magnitudes.
func Autocorrelate(samples []int32, order int) []float64 {
	n := len(samples)
	s := make([]float64, n)
	for i, v := range samples {
		s[i] = float64(v)
	}

	r := make([]float64, order+1)
	for lag := 0; lag <= order; lag++ {
		var sum float64
		for i := 0; i < n-lag; i++ {
			sum += s[i] * s[i+lag]
		}
		r[lag] = sum
	}
	return r
}

// LevinsonDurbin runs the Levinson-Durbin recursion on R[0..order] and
// returns the order-th order LPC coefficients a[1..order] (1-indexed
// conceptually; returned 0-indexed as a[0..order-1] for a_1..a_order).
func LevinsonDurbin(r []float64, order int) ([]float64, error) {
	if order == 0 {
		return nil, nil
	}
	if r[0] == 0 {
		return nil, errutil.Err(ErrSilentBlock)
	}

	a := make([]float64, order+1) // a[1..order], a[0] unused
	a[1] = r[1] / r[0]
	e := r[0] * (1 - a[1]*a[1])

	for i := 1; i < order; i++ {
		var acc float64
		for j := 1; j <= i; j++ {
			acc += a[j] * r[i+1-j]
		}
		if e == 0 {
			return nil, errutil.Err(ErrSilentBlock)
		}
		k := (r[i+1] - acc) / e

		next := make([]float64, order+1)
		copy(next, a)
		for j := 1; j <= i; j++ {
			next[j] = a[j] - k*a[i+1-j]
		}
		next[i+1] = k
		a = next
		e *= 1 - k*k
	}

	coeffs := make([]float64, order)
	copy(coeffs, a[1:order+1])
	return coeffs, nil
}

// BestPrecision looks up the quantized coefficient precision P for a source
// bit depth B and block size N, following FLAC's reference encoder table.
func BestPrecision(bps, blockSize int) int {
	if bps < 16 {
		p := 2 + bps/2
		if p < 1 {
			p = 1
		}
		return p
	}
	if bps == 16 {
		switch blockSize {
		case 192:
			return 7
		case 384:
			return 8
		case 576:
			return 9
		case 1152:
			return 10
		case 2304:
			return 11
		case 4608:
			return 12
		default:
			return 13
		}
	}
	// bps > 16
	switch blockSize {
	case 384:
		return 12
	case 1152:
		return 13
	default:
		return 14
	}
}

// QuantizedCoeffs holds the result of coefficient quantization: the
// quantized coefficients, the reported shift, and the precision they were
// quantized to.
type QuantizedCoeffs struct {
	Coeffs    []int32
	Shift     int
	Precision int
}

// QuantizeCoeffs quantizes floating-point LPC coefficients a[1..order] to
// signed P-bit integers with a binary shift, using round-half-away-from-zero
// with running error feedback (noise shaping) across coefficients.
func QuantizeCoeffs(a []float64, precision int) QuantizedCoeffs {
	lmax := 0.0
	for _, v := range a {
		if m := math.Abs(v); m > lmax {
			lmax = m
		}
	}

	var rawShift int
	if lmax > 0 {
		rawShift = precision - 1 - int(math.Floor(math.Log2(lmax)))
	} else {
		rawShift = precision - 1
	}
	if rawShift > 31 {
		rawShift = 31
	}

	reportedShift := rawShift
	if reportedShift < 0 {
		reportedShift = 0
	}

	qmax := int32(1<<uint(precision-1)) - 1
	qmin := -qmax - 1

	q := make([]int32, len(a))
	var errAcc float64
	for j, coeff := range a {
		var raw float64
		if rawShift >= 0 {
			raw = coeff * math.Pow(2, float64(rawShift))
		} else {
			raw = coeff / math.Pow(2, float64(-rawShift))
		}
		target := raw + errAcc
		rounded := roundHalfAwayFromZero(target)
		errAcc = target - rounded

		qj := int64(rounded)
		if qj > int64(qmax) {
			qj = int64(qmax)
		} else if qj < int64(qmin) {
			qj = int64(qmin)
		}
		q[j] = int32(qj)
	}

	return QuantizedCoeffs{Coeffs: q, Shift: reportedShift, Precision: precision}
}

func roundHalfAwayFromZero(x float64) float64 {
	if x >= 0 {
		return math.Floor(x + 0.5)
	}
	return math.Ceil(x - 0.5)
}

// Residuals computes r[i] = s[i] - (sum_{j=1..O} qcoeffs[j-1]*s[i-j]) >> shift
// for i in [order, len(samples)), where order = len(qcoeffs). Samples
// s[0..order) are warm-up and excluded from the result. shift must be the
// reported (non-negative) shift; callers must have clamped it themselves via
// QuantizeCoeffs.
func Residuals(samples []int32, qcoeffs []int32, shift int) ([]int32, error) {
	order := len(qcoeffs)
	if shift < 0 {
		return nil, errutil.Newf("lpc: shift %d must be non-negative", shift)
	}
	if len(samples) < order {
		return nil, errutil.Newf("lpc: %d samples shorter than order %d", len(samples), order)
	}

	residuals := make([]int32, len(samples)-order)
	for i := order; i < len(samples); i++ {
		var acc int64
		for j := 1; j <= order; j++ {
			acc += int64(qcoeffs[j-1]) * int64(samples[i-j])
		}
		pred := acc >> uint(shift)
		residuals[i-order] = samples[i] - int32(pred)
	}
	return residuals, nil
}
