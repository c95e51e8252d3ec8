package fixed

import (
	"reflect"
	"testing"
)

func TestResidualsOrder1(t *testing.T) {
	samples := []int32{4302, 7496, 6199, 7427, 6484, 7436, 6740, 7508,
		6984, 7583, 7182, -5990, -6306, -6032, -6299, -6165}
	want := []int32{3194, -1297, 1228, -943, 952, -696, 768, -524, 599,
		-401, -13172, -316, 274, -267, 134}

	got, err := Residuals(samples, 1)
	if err != nil {
		t.Fatalf("Residuals: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Residuals(order=1) = %v; want %v", got, want)
	}
}

// Order 0 returns samples verbatim for any block size and bit depth.
func TestResidualsOrder0IsIdentity(t *testing.T) {
	for _, samples := range [][]int32{
		{},
		{0},
		{1, -1, 127, -128},
		{1 << 23, -(1 << 23)},
	} {
		got, err := Residuals(samples, 0)
		if err != nil {
			t.Fatalf("Residuals(order=0): %v", err)
		}
		if !reflect.DeepEqual(got, samples) {
			t.Errorf("Residuals(%v, 0) = %v; want identity", samples, got)
		}
	}
}

// Residuals start at index k and len(residuals) == len(s) - k.
func TestResidualsLength(t *testing.T) {
	samples := make([]int32, 10)
	for i := range samples {
		samples[i] = int32(i * 7 % 5)
	}
	for order := 1; order <= MaxOrder; order++ {
		got, err := Residuals(samples, order)
		if err != nil {
			t.Fatalf("Residuals(order=%d): %v", order, err)
		}
		if len(got) != len(samples)-order {
			t.Errorf("order %d: len(residuals) = %d; want %d", order, len(got), len(samples)-order)
		}
	}
}

// A block shorter than the predictor order must fail.
func TestResidualsInfeasible(t *testing.T) {
	_, err := Residuals([]int32{42}, 1)
	if err == nil {
		t.Fatal("expected an error for a block shorter than the predictor order")
	}
}

func TestBestOrderPrefersLowerOnTie(t *testing.T) {
	// A constant signal: order 0 gives residuals equal to the constant
	// (nonzero cost unless the constant is 0), order 1+ gives all-zero
	// residuals. Orders 1 through 4 all score zero, so order 1 wins as the
	// lowest of them; a tie that includes order 0 is engineered below.
	samples := []int32{5, 5, 5, 5, 5}
	order, _, err := BestOrder(samples)
	if err != nil {
		t.Fatalf("BestOrder: %v", err)
	}
	if order != 1 {
		t.Errorf("BestOrder(constant) = %d; want 1 (all residuals after warm-up are zero)", order)
	}

	// All-zero input: every order scores zero, so the lowest order (0)
	// must win.
	zero := []int32{0, 0, 0, 0, 0, 0}
	order, _, err = BestOrder(zero)
	if err != nil {
		t.Fatalf("BestOrder: %v", err)
	}
	if order != 0 {
		t.Errorf("BestOrder(zero) = %d; want 0 on tie", order)
	}
}

func TestBestOrderInfeasibleForEmptyInput(t *testing.T) {
	_, _, err := BestOrder(nil)
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
}
