// Package fixed implements FLAC's five fixed polynomial predictors (orders
// 0 through 4) and the residual signal they produce.
//
// Grounded on github.com/mewkiz/flac's analyseFixed/computeFixedResiduals
// (analysis_fixed.go) and encodeFixedSamples/getLPCResiduals
// (encode_subframe.go), which compute exactly these residuals by treating
// the fixed predictors as LPC with the coefficients in frame.FixedCoeffs.
// This package keeps the direct polynomial form instead, since it needs to
// run one order at a time against raw warm-up samples without assembling a
// frame.Subframe first.
package fixed

import "github.com/mewkiz/pkg/errutil"

// MaxOrder is the highest fixed predictor order FLAC defines.
const MaxOrder = 4

// ErrInfeasible is returned when a block is too short for the requested
// predictor order to consume the warm-up samples it needs.
var ErrInfeasible = errutil.NewNoPos("fixed: block shorter than predictor order")

// Coeffs holds the fixed-predictor polynomial coefficients, indexed by
// order, matching FLAC's frame.FixedCoeffs table. Order 0 has no
// coefficients (it always predicts zero).
var Coeffs = [MaxOrder + 1][]int32{
	0: {},
	1: {1},
	2: {2, -1},
	3: {3, -3, 1},
	4: {4, -6, 4, -1},
}

// Residuals computes the residual signal r[i] = s[i] - p[i] for i in
// [order, len(samples)) using the fixed predictor of the given order.
// The first `order` samples are warm-up and are not part of the result, so
// len(result) == len(samples)-order.
//
// Order 0 is always feasible and returns samples verbatim (p[i] = 0 for
// all i, so r[i] = s[i]).
func Residuals(samples []int32, order int) ([]int32, error) {
	if order < 0 || order > MaxOrder {
		return nil, errutil.Newf("fixed: order %d out of range [0, %d]", order, MaxOrder)
	}
	if order > 0 && len(samples) <= order {
		return nil, errutil.Err(ErrInfeasible)
	}

	residuals := make([]int32, len(samples)-order)
	switch order {
	case 0:
		copy(residuals, samples)
	case 1:
		for i := 1; i < len(samples); i++ {
			residuals[i-1] = samples[i] - samples[i-1]
		}
	case 2:
		for i := 2; i < len(samples); i++ {
			pred := 2*samples[i-1] - samples[i-2]
			residuals[i-2] = samples[i] - pred
		}
	case 3:
		for i := 3; i < len(samples); i++ {
			pred := 3*samples[i-1] - 3*samples[i-2] + samples[i-3]
			residuals[i-3] = samples[i] - pred
		}
	case 4:
		for i := 4; i < len(samples); i++ {
			pred := 4*samples[i-1] - 6*samples[i-2] + 4*samples[i-3] - samples[i-4]
			residuals[i-4] = samples[i] - pred
		}
	}
	return residuals, nil
}

// BestOrder tries every feasible order in [0, MaxOrder] and returns the one
// minimizing the sum of absolute residual values, ties broken by the lowest
// order. It returns ErrInfeasible only when even order 0 is infeasible,
// which in practice means an empty sample slice.
func BestOrder(samples []int32) (order int, residuals []int32, err error) {
	bestOrder := -1
	var bestResiduals []int32
	var bestScore int64

	if len(samples) == 0 {
		return 0, nil, errutil.Err(ErrInfeasible)
	}

	for o := 0; o <= MaxOrder; o++ {
		res, err := Residuals(samples, o)
		if err != nil {
			// Higher orders only get harder to satisfy; once infeasible,
			// all larger orders are infeasible too.
			break
		}
		score := absSum(res)
		if bestOrder == -1 || score < bestScore {
			bestOrder, bestResiduals, bestScore = o, res, score
		}
	}
	if bestOrder == -1 {
		return 0, nil, errutil.Err(ErrInfeasible)
	}
	return bestOrder, bestResiduals, nil
}

func absSum(residuals []int32) int64 {
	var sum int64
	for _, r := range residuals {
		v := int64(r)
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum
}
