package pmath

import "math"

// machineEpsilon is half the distance between 1 and the next representable
// float64, the same constant pbrt calls MachineEpsilon.
const machineEpsilon = 2.220446049250313e-16 / 2

// Gamma returns the tight conservative bound on relative error after n
// dependent floating-point operations: n*eps / (1 - n*eps).
func Gamma(n int) float64 {
	nEps := float64(n) * machineEpsilon
	return nEps / (1 - nEps)
}

// DifferenceOfProducts computes a*b - c*d using a fused multiply-add
// correction so that the result loses at most two ulps instead of
// catastrophically canceling when a*b and c*d are close in magnitude.
func DifferenceOfProducts(a, b, c, d float64) float64 {
	cd := c * d
	err := math.FMA(-c, d, cd)
	dop := math.FMA(a, b, -cd)
	return dop + err
}

// SumOfProducts computes a*b + c*d with the same fused-multiply-add
// error correction as DifferenceOfProducts.
func SumOfProducts(a, b, c, d float64) float64 {
	cd := c * d
	err := math.FMA(c, d, -cd)
	sop := math.FMA(a, b, cd)
	return sop + err
}

// SafeSqrt clamps its argument to zero before taking the square root, so
// that accumulated rounding error producing a tiny negative value under a
// sqrt never propagates a NaN.
func SafeSqrt(x float64) float64 {
	return math.Sqrt(math.Max(0, x))
}

// SafeACos clamps its argument to [-1, 1] before taking the arc cosine,
// for the same reason as SafeSqrt.
func SafeACos(x float64) float64 {
	return math.Acos(Clamp(x, -1, 1))
}

// Clamp restricts x to the closed interval [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
