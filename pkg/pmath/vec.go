// Package pmath provides the floating-point primitives the shape geometry
// core is built on: vectors, rays, error-tracking intervals, transforms,
// bounds, and the sampling routines shared by every primitive.
package pmath

import "math"

// Vec2 represents a 2D vector, used for UV coordinates and the [0,1)²
// sample domain passed into every Sample call.
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2.
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Subtract returns the difference of two vectors.
func (v Vec2) Subtract(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Multiply returns the vector scaled by a scalar.
func (v Vec2) Multiply(scalar float64) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

// Vec3 represents a 3D vector. Points, directions, and normals all share
// this type, as in the teacher's core.Vec3 — the distinction is carried
// by context, not the type system.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors.
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar.
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// MultiplyVec returns the component-wise product of two vectors.
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Negate returns the negative of the vector.
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Length returns the magnitude of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// LengthSquared returns the squared magnitude of the vector.
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// AbsDot returns the absolute value of the dot product of two vectors.
func (v Vec3) AbsDot(other Vec3) float64 {
	return math.Abs(v.Dot(other))
}

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: DifferenceOfProducts(v.Y, other.Z, v.Z, other.Y),
		Y: DifferenceOfProducts(v.Z, other.X, v.X, other.Z),
		Z: DifferenceOfProducts(v.X, other.Y, v.Y, other.X),
	}
}

// Normalize returns a unit vector in the same direction. The zero vector
// normalizes to itself rather than producing NaNs.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return v.Multiply(1 / length)
}

// Abs returns the component-wise absolute value of the vector.
func (v Vec3) Abs() Vec3 {
	return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}

// MaxComponent returns the largest of the vector's three components.
func (v Vec3) MaxComponent() float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// MaxDimension returns the index (0, 1, 2) of the component with the
// largest absolute value, used by the watertight triangle test to choose
// which axis to shear the ray direction onto.
func (v Vec3) MaxDimension() int {
	a := v.Abs()
	if a.X > a.Y && a.X > a.Z {
		return 0
	}
	if a.Y > a.Z {
		return 1
	}
	return 2
}

// Permute returns a vector with components reordered according to the
// given axis indices, e.g. Permute(1, 2, 0) rotates X<-Y, Y<-Z, Z<-X.
func (v Vec3) Permute(x, y, z int) Vec3 {
	c := [3]float64{v.X, v.Y, v.Z}
	return Vec3{c[x], c[y], c[z]}
}

// Component returns the i'th component of the vector (0=X, 1=Y, 2=Z).
func (v Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Lerp linearly interpolates between two vectors.
func Lerp(t float64, a, b Vec3) Vec3 {
	return a.Multiply(1 - t).Add(b.Multiply(t))
}

// LerpVec2 linearly interpolates between two Vec2 values.
func LerpVec2(t float64, a, b Vec2) Vec2 {
	return Vec2{a.X*(1-t) + b.X*t, a.Y*(1-t) + b.Y*t}
}

// FaceForward flips n so that it lies in the same hemisphere as ref.
func FaceForward(n, ref Vec3) Vec3 {
	if n.Dot(ref) < 0 {
		return n.Negate()
	}
	return n
}

// CoordinateSystem builds an orthonormal basis (v2, v3) given a
// normalized v1, using the branchless construction from Duff et al.,
// "Building an Orthonormal Basis, Revisited" — stable as v1.z -> -1,
// unlike the naive "pick whichever axis isn't parallel" approach.
func CoordinateSystem(v1 Vec3) (v2, v3 Vec3) {
	sign := math.Copysign(1, v1.Z)
	a := -1 / (sign + v1.Z)
	b := v1.X * v1.Y * a
	v2 = Vec3{1 + sign*v1.X*v1.X*a, sign * b, -sign * v1.X}
	v3 = Vec3{b, sign + v1.Y*v1.Y*a, -v1.Y}
	return v2, v3
}

// SphericalDirection converts spherical coordinates (measured from the
// local +Z axis) to a Cartesian direction.
func SphericalDirection(sinTheta, cosTheta, phi float64) Vec3 {
	return Vec3{
		X: sinTheta * math.Cos(phi),
		Y: sinTheta * math.Sin(phi),
		Z: cosTheta,
	}
}
