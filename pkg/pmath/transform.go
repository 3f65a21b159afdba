package pmath

import "math"

// Mat4 is a 4x4 matrix in row-major order, m[row][col].
type Mat4 [4][4]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul multiplies two matrices.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// Transpose returns the matrix transpose.
func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Inverse computes the matrix inverse via Gauss-Jordan elimination with
// partial pivoting. Shapes only ever construct a Transform from an
// invertible affine map (translation/rotation/scale composed by the
// scene loader that owns them), so a singular matrix here indicates a
// caller bug rather than a runtime condition to recover from.
func (m Mat4) Inverse() Mat4 {
	a := m
	inv := Identity4()

	for col := 0; col < 4; col++ {
		pivotRow := col
		maxVal := math.Abs(a[col][col])
		for r := col + 1; r < 4; r++ {
			if v := math.Abs(a[r][col]); v > maxVal {
				maxVal = v
				pivotRow = r
			}
		}
		if pivotRow != col {
			a[col], a[pivotRow] = a[pivotRow], a[col]
			inv[col], inv[pivotRow] = inv[pivotRow], inv[col]
		}

		pivot := a[col][col]
		if pivot == 0 {
			// Singular matrix passed by a caller; return identity rather
			// than propagate NaNs into every downstream ray.
			return Identity4()
		}
		invPivot := 1 / pivot
		for j := 0; j < 4; j++ {
			a[col][j] *= invPivot
			inv[col][j] *= invPivot
		}

		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				a[r][j] -= factor * a[col][j]
				inv[r][j] -= factor * inv[col][j]
			}
		}
	}
	return inv
}

// Transform pairs a 4x4 matrix with its inverse and caches whether it
// swaps handedness (a negative determinant on the upper-left 3x3 block),
// the fact SurfaceInteraction's normal-flip invariant depends on.
type Transform struct {
	m, mInv        Mat4
	swapsHandedness bool
}

// NewTransform builds a Transform from a matrix, computing its inverse
// and handedness once so ApplyPoint/ApplyRay stay O(1) on the hot path.
func NewTransform(m Mat4) *Transform {
	inv := m.Inverse()
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	return &Transform{m: m, mInv: inv, swapsHandedness: det < 0}
}

// Identity returns the identity transform.
func Identity() *Transform {
	return NewTransform(Identity4())
}

// Translate builds a translation transform.
func Translate(delta Vec3) *Transform {
	m := Identity4()
	m[0][3], m[1][3], m[2][3] = delta.X, delta.Y, delta.Z
	return NewTransform(m)
}

// Scale builds a non-uniform scale transform.
func Scale(x, y, z float64) *Transform {
	m := Identity4()
	m[0][0], m[1][1], m[2][2] = x, y, z
	return NewTransform(m)
}

// RotateAroundAxis builds the rotation around axis (normalized here)
// by the angle whose sine and cosine are sinTheta and cosTheta, via
// Rodrigues' formula expressed as a matrix.
func RotateAroundAxis(axis Vec3, sinTheta, cosTheta float64) *Transform {
	a := axis.Normalize()
	m := Identity4()
	m[0][0] = a.X*a.X + (1-a.X*a.X)*cosTheta
	m[0][1] = a.X*a.Y*(1-cosTheta) - a.Z*sinTheta
	m[0][2] = a.X*a.Z*(1-cosTheta) + a.Y*sinTheta
	m[1][0] = a.X*a.Y*(1-cosTheta) + a.Z*sinTheta
	m[1][1] = a.Y*a.Y + (1-a.Y*a.Y)*cosTheta
	m[1][2] = a.Y*a.Z*(1-cosTheta) - a.X*sinTheta
	m[2][0] = a.X*a.Z*(1-cosTheta) - a.Y*sinTheta
	m[2][1] = a.Y*a.Z*(1-cosTheta) + a.X*sinTheta
	m[2][2] = a.Z*a.Z + (1-a.Z*a.Z)*cosTheta
	return NewTransform(m)
}

// Inverse returns the inverse transform. Object-from-render and
// render-from-object transforms are always constructed as a pair, so
// this is cheap: it just swaps the cached matrices.
func (t *Transform) Inverse() *Transform {
	return &Transform{m: t.mInv, mInv: t.m, swapsHandedness: t.swapsHandedness}
}

// SwapsHandedness reports whether this transform flips orientation
// (negative determinant), which XORs into every produced normal's
// front-facing sign per the SurfaceInteraction invariant.
func (t *Transform) SwapsHandedness() bool {
	return t.swapsHandedness
}

func (t *Transform) applyPointM(m Mat4, p Vec3) Vec3 {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w == 1 {
		return Vec3{x, y, z}
	}
	return Vec3{x, y, z}.Multiply(1 / w)
}

func (t *Transform) applyVectorM(m Mat4, v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// ApplyPoint transforms a point (translation applies).
func (t *Transform) ApplyPoint(p Vec3) Vec3 {
	return t.applyPointM(t.m, p)
}

// ApplyVector transforms a direction vector (translation does not apply).
func (t *Transform) ApplyVector(v Vec3) Vec3 {
	return t.applyVectorM(t.m, v)
}

// ApplyNormal transforms a surface normal by the inverse transpose, the
// standard construction that keeps a normal perpendicular to a
// non-uniformly scaled surface.
func (t *Transform) ApplyNormal(n Vec3) Vec3 {
	mInvT := t.mInv.Transpose()
	return Vec3{
		X: mInvT[0][0]*n.X + mInvT[0][1]*n.Y + mInvT[0][2]*n.Z,
		Y: mInvT[1][0]*n.X + mInvT[1][1]*n.Y + mInvT[1][2]*n.Z,
		Z: mInvT[2][0]*n.X + mInvT[2][1]*n.Y + mInvT[2][2]*n.Z,
	}
}

// ApplyRay transforms a ray's origin and direction.
func (t *Transform) ApplyRay(r Ray) Ray {
	return Ray{
		Origin:    t.ApplyPoint(r.Origin),
		Direction: t.ApplyVector(r.Direction),
		Time:      r.Time,
		Medium:    r.Medium,
	}
}

// ApplyPoint3Interval transforms a point carried as a Point3Interval,
// propagating the incoming error and adding the new error introduced by
// the matrix multiply itself (gamma(3) relative to the transformed
// magnitude), so ray-to-object-space transforms don't silently lose the
// bound the sphere/cylinder quadratic solver depends on.
func (t *Transform) ApplyPoint3Interval(p Point3Interval) Point3Interval {
	pt := p.Vec3()
	pErr := p.Error()
	m := t.m

	transformed := t.applyPointM(m, pt)

	// Error introduced by the transform itself, gamma(3) of the largest
	// magnitude term summed per row, plus propagation of the input error
	// through the linear part of the matrix.
	newErr := Vec3{}
	rows := [3][4]float64{m[0], m[1], m[2]}
	comps := [3]float64{pt.X, pt.Y, pt.Z}
	errs := [3]float64{pErr.X, pErr.Y, pErr.Z}
	for row := 0; row < 3; row++ {
		absSum := math.Abs(rows[row][3])
		errSum := 0.0
		for k := 0; k < 3; k++ {
			absSum += math.Abs(rows[row][k]) * math.Abs(comps[k])
			errSum += math.Abs(rows[row][k]) * errs[k]
		}
		e := Gamma(3)*absSum + errSum
		switch row {
		case 0:
			newErr.X = e
		case 1:
			newErr.Y = e
		case 2:
			newErr.Z = e
		}
	}
	return NewPoint3IntervalWithError(transformed, newErr)
}

// ApplyVec3Interval transforms a direction vector carried with error,
// used to move a ray's direction into object space alongside its origin.
func (t *Transform) ApplyVec3Interval(v Vec3Interval) Vec3Interval {
	vec := v.Vec3()
	vErr := v.Error()
	m := t.m

	transformed := t.applyVectorM(m, vec)
	newErr := Vec3{}
	rows := [3][4]float64{m[0], m[1], m[2]}
	comps := [3]float64{vec.X, vec.Y, vec.Z}
	errs := [3]float64{vErr.X, vErr.Y, vErr.Z}
	for row := 0; row < 3; row++ {
		absSum := 0.0
		errSum := 0.0
		for k := 0; k < 3; k++ {
			absSum += math.Abs(rows[row][k]) * math.Abs(comps[k])
			errSum += math.Abs(rows[row][k]) * errs[k]
		}
		e := Gamma(3)*absSum + errSum
		switch row {
		case 0:
			newErr.X = e
		case 1:
			newErr.Y = e
		case 2:
			newErr.Z = e
		}
	}
	return NewPoint3IntervalWithError(transformed, newErr)
}
