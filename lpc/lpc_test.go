package lpc

import (
	"math"
	"testing"

	"github.com/mewkiz/flacenc/fixed"
)

func TestAutocorrelateLag0IsEnergy(t *testing.T) {
	samples := []int32{1, 2, 3, 4}
	r := Autocorrelate(samples, 2)
	want := 1*1 + 2*2 + 3*3 + 4*4
	if r[0] != float64(want) {
		t.Errorf("R[0] = %v; want %v", r[0], want)
	}
}

func TestAutocorrelateSilentBlock(t *testing.T) {
	samples := make([]int32, 8)
	r := Autocorrelate(samples, 4)
	for lag, v := range r {
		if v != 0 {
			t.Errorf("R[%d] = %v; want 0 for a silent block", lag, v)
		}
	}
}

func TestLevinsonDurbinSilentBlockIsUndefined(t *testing.T) {
	r := []float64{0, 0, 0}
	_, err := LevinsonDurbin(r, 2)
	if err == nil {
		t.Fatal("expected an error when R[0] == 0")
	}
}

func TestLevinsonDurbinOrder1(t *testing.T) {
	// For order 1, a_1 = R[1]/R[0] directly from the recursion's
	// initialization step.
	r := []float64{100, 80, 60}
	a, err := LevinsonDurbin(r, 1)
	if err != nil {
		t.Fatalf("LevinsonDurbin: %v", err)
	}
	want := 80.0 / 100.0
	if math.Abs(a[0]-want) > 1e-12 {
		t.Errorf("a_1 = %v; want %v", a[0], want)
	}
}

func TestLevinsonDurbinOrderZero(t *testing.T) {
	a, err := LevinsonDurbin([]float64{100}, 0)
	if err != nil {
		t.Fatalf("LevinsonDurbin: %v", err)
	}
	if len(a) != 0 {
		t.Errorf("order 0 should return no coefficients, got %v", a)
	}
}

func TestBestPrecisionTable(t *testing.T) {
	tests := []struct {
		bps, blockSize, want int
	}{
		{8, 4096, 6},
		{12, 4096, 8},
		{16, 192, 7},
		{16, 384, 8},
		{16, 576, 9},
		{16, 1152, 10},
		{16, 2304, 11},
		{16, 4608, 12},
		{16, 999, 13},
		{24, 384, 12},
		{24, 1152, 13},
		{24, 4096, 14},
	}
	for _, test := range tests {
		got := BestPrecision(test.bps, test.blockSize)
		if got != test.want {
			t.Errorf("BestPrecision(%d, %d) = %d; want %d", test.bps, test.blockSize, got, test.want)
		}
	}
}

func TestQuantizeCoeffsClampsToPrecision(t *testing.T) {
	precision := 4 // signed range [-8, 7]
	q := QuantizeCoeffs([]float64{10, -10}, precision)
	for _, c := range q.Coeffs {
		if c > 7 || c < -8 {
			t.Errorf("coefficient %d out of signed %d-bit range", c, precision)
		}
	}
}

func TestQuantizeCoeffsNegativeShiftReportsZero(t *testing.T) {
	// A coefficient magnitude above 2 forces floor(log2(lmax)) >= 1, which
	// for a small precision drives the raw shift negative; the reported
	// shift must still be clamped to 0.
	q := QuantizeCoeffs([]float64{5.0}, 2)
	if q.Shift < 0 {
		t.Errorf("reported shift = %d; must never be negative", q.Shift)
	}
}

// With a single coefficient of 1 and shift 0, LPC residuals must match the
// order-1 fixed predictor exactly: p[i] = s[i-1].
func TestResidualsMatchesFixedOrder1(t *testing.T) {
	samples := []int32{4302, 7496, 6199, 7427, 6484, 7436, 6740, 7508,
		6984, 7583, 7182, -5990, -6306, -6032, -6299, -6165}

	got, err := Residuals(samples, []int32{1}, 0)
	if err != nil {
		t.Fatalf("Residuals: %v", err)
	}
	want, err := fixed.Residuals(samples, 1)
	if err != nil {
		t.Fatalf("fixed.Residuals: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d; len(want) = %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("residual[%d] = %d; want %d", i, got[i], want[i])
		}
	}
}

func TestResidualsRejectsShortBlock(t *testing.T) {
	_, err := Residuals([]int32{1, 2}, []int32{1, 2, 3}, 0)
	if err == nil {
		t.Fatal("expected an error for a block shorter than the predictor order")
	}
}

func TestResidualsRejectsNegativeShift(t *testing.T) {
	_, err := Residuals([]int32{1, 2, 3}, []int32{1}, -1)
	if err == nil {
		t.Fatal("expected an error for a negative shift")
	}
}
