package pmath

// DirectionCone bounds a set of directions by a cone around Axis with
// half-angle acos(CosTheta). NormalBounds() on every shape returns one of
// these; light-sampling code outside this core uses it to cull emitters
// whose normals can't possibly face a receiving point.
type DirectionCone struct {
	Axis     Vec3
	CosTheta float64
}

// EntireSphere returns a DirectionCone that contains every direction,
// the correct NormalBounds() for any shape whose normal can point
// anywhere (sphere, cylinder, curve).
func EntireSphere() DirectionCone {
	return DirectionCone{Axis: Vec3{X: 0, Y: 0, Z: 1}, CosTheta: -1}
}

// NewDirectionCone builds a cone around a normalized axis with the given
// cosine half-angle.
func NewDirectionCone(axis Vec3, cosTheta float64) DirectionCone {
	return DirectionCone{Axis: axis, CosTheta: cosTheta}
}

// Contains reports whether direction d (need not be normalized) lies
// within the cone, within a small tolerance for float round-off at the
// boundary.
func (c DirectionCone) Contains(d Vec3) bool {
	dn := d.Normalize()
	return c.Axis.Dot(dn) >= c.CosTheta-1e-9
}
