package pmath

// Vec3Interval is a 3-vector of Intervals — an interval-arithmetic
// counterpart to Vec3, used both for the ray origin/direction while
// solving the sphere/cylinder quadratic (so that float round-off
// introduced by the render->object transform is tracked through the
// solve) and for Point3Interval, the "P3ε" error-bearing point from the
// spec's data model.
type Vec3Interval struct {
	X, Y, Z Interval
}

// Point3Interval is the error-bearing point ("P3ε"): its invariant is
// that the true point lies within X.Error()/Y.Error()/Z.Error() of
// Point(). It's the same representation as Vec3Interval — pbrt keeps
// them as distinct C++ types for API clarity, but Go's structural typing
// makes a single representation with two constructors just as clear.
type Point3Interval = Vec3Interval

// NewVec3Interval builds a degenerate interval vector from an exact Vec3.
func NewVec3Interval(v Vec3) Vec3Interval {
	return Vec3Interval{X: NewInterval(v.X), Y: NewInterval(v.Y), Z: NewInterval(v.Z)}
}

// NewPoint3IntervalWithError builds a Point3Interval centered at p with
// the given per-axis absolute error.
func NewPoint3IntervalWithError(p, err Vec3) Point3Interval {
	return Point3Interval{
		X: NewIntervalFromValueAndError(p.X, err.X),
		Y: NewIntervalFromValueAndError(p.Y, err.Y),
		Z: NewIntervalFromValueAndError(p.Z, err.Z),
	}
}

// Vec3 returns the midpoint of each component interval.
func (v Vec3Interval) Vec3() Vec3 {
	return Vec3{X: v.X.Midpoint(), Y: v.Y.Midpoint(), Z: v.Z.Midpoint()}
}

// Error returns the per-axis absolute error radius (half the interval
// width), the bound the spec's P3ε invariant is stated in terms of.
func (v Vec3Interval) Error() Vec3 {
	return Vec3{X: 0.5 * v.X.Width(), Y: 0.5 * v.Y.Width(), Z: 0.5 * v.Z.Width()}
}

// Add returns the component-wise interval sum.
func (v Vec3Interval) Add(o Vec3Interval) Vec3Interval {
	return Vec3Interval{X: v.X.Add(o.X), Y: v.Y.Add(o.Y), Z: v.Z.Add(o.Z)}
}

// Sub returns the component-wise interval difference.
func (v Vec3Interval) Sub(o Vec3Interval) Vec3Interval {
	return Vec3Interval{X: v.X.Sub(o.X), Y: v.Y.Sub(o.Y), Z: v.Z.Sub(o.Z)}
}

// MulScalar scales every component interval by a plain float64.
func (v Vec3Interval) MulScalar(s float64) Vec3Interval {
	return Vec3Interval{X: v.X.MulScalar(s), Y: v.Y.MulScalar(s), Z: v.Z.MulScalar(s)}
}

// Dot returns the interval dot product of two interval vectors.
func (v Vec3Interval) Dot(o Vec3Interval) Interval {
	return v.X.Mul(o.X).Add(v.Y.Mul(o.Y)).Add(v.Z.Mul(o.Z))
}

// AtInterval evaluates a ray parameterized by an interval vector origin
// and direction at interval parameter t, used by the sphere/cylinder
// quadratic solve to keep origin+t*direction in interval arithmetic
// throughout.
func AtInterval(origin, direction Vec3Interval, t Interval) Vec3Interval {
	return origin.Add(Vec3Interval{
		X: direction.X.Mul(t),
		Y: direction.Y.Mul(t),
		Z: direction.Z.Mul(t),
	})
}
