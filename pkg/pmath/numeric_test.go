package pmath

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestDifferenceOfProducts(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d float64
		want       float64
	}{
		{"simple", 3, 4, 1, 2, 10},
		// (1e8+1)(1e8-1) - 1e8*1e8 is exactly -1; plain float64
		// products round 1e16-1 to 1e16 and would give 0.
		{"near-cancellation", 1e8 + 1, 1e8 - 1, 1e8, 1e8, -1},
		{"zeros", 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DifferenceOfProducts(tt.a, tt.b, tt.c, tt.d)
			want := tt.want
			if !almostEqual(got, want, 1e-6*math.Max(1, math.Abs(want))) {
				t.Errorf("DifferenceOfProducts(%v,%v,%v,%v) = %v, want ~%v", tt.a, tt.b, tt.c, tt.d, got, want)
			}
		})
	}
}

func TestSafeSqrt(t *testing.T) {
	if got := SafeSqrt(-1e-20); got != 0 {
		t.Errorf("SafeSqrt(-1e-20) = %v, want 0", got)
	}
	if got := SafeSqrt(4); got != 2 {
		t.Errorf("SafeSqrt(4) = %v, want 2", got)
	}
}

func TestSafeACos(t *testing.T) {
	if got := SafeACos(1.0000001); got != 0 {
		t.Errorf("SafeACos(1.0000001) = %v, want 0", got)
	}
	if got := SafeACos(-1.0000001); !almostEqual(got, math.Pi, 1e-9) {
		t.Errorf("SafeACos(-1.0000001) = %v, want pi", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name         string
		x, lo, hi    float64
		want         float64
	}{
		{"below", -1, 0, 1, 0},
		{"above", 2, 0, 1, 1},
		{"inside", 0.5, 0, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.x, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v,%v,%v) = %v, want %v", tt.x, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestGammaIsIncreasing(t *testing.T) {
	prev := 0.0
	for n := 1; n <= 10; n++ {
		g := Gamma(n)
		if g <= prev {
			t.Errorf("Gamma(%d) = %v, expected increasing sequence (prev %v)", n, g, prev)
		}
		prev = g
	}
}
