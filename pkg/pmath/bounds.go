package pmath

import "math"

// Bounds3 is an axis-aligned bounding box, the "AABB" returned by every
// shape's Bounds() method.
type Bounds3 struct {
	Min Vec3
	Max Vec3
}

// NewBounds3 creates a Bounds3 from explicit min/max corners.
func NewBounds3(min, max Vec3) Bounds3 {
	return Bounds3{Min: min, Max: max}
}

// NewBounds3FromPoints creates the smallest Bounds3 containing all given
// points.
func NewBounds3FromPoints(points ...Vec3) Bounds3 {
	if len(points) == 0 {
		return Bounds3{}
	}
	b := Bounds3{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.UnionPoint(p)
	}
	return b
}

// UnionPoint returns a Bounds3 that also contains p.
func (b Bounds3) UnionPoint(p Vec3) Bounds3 {
	return Bounds3{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns a Bounds3 that bounds both b and other.
func (b Bounds3) Union(other Bounds3) Bounds3 {
	return b.UnionPoint(other.Min).UnionPoint(other.Max)
}

// Expand returns a Bounds3 grown by amount in every direction, used to
// inflate a hit point's bounds by its reported floating-point error
// (spec.md §8 property 3).
func (b Bounds3) Expand(amount float64) Bounds3 {
	e := Vec3{amount, amount, amount}
	return Bounds3{Min: b.Min.Subtract(e), Max: b.Max.Add(e)}
}

// Contains reports whether p lies within the bounds.
func (b Bounds3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Diagonal returns the vector from Min to Max.
func (b Bounds3) Diagonal() Vec3 {
	return b.Max.Subtract(b.Min)
}

// Center returns the midpoint of the bounds.
func (b Bounds3) Center() Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// BoundingSphere returns a sphere (center, radius) that contains the
// bounds, used by callers that need a conservative bounding-sphere test
// rather than a full slab test.
func (b Bounds3) BoundingSphere() (center Vec3, radius float64) {
	center = b.Center()
	if b.Contains(center) {
		radius = center.Subtract(b.Max).Length()
	}
	return center, radius
}

// Hit tests whether a ray intersects the bounds within [tMin, tMax] using
// the slab method.
func (b Bounds3) Hit(ray Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Component(axis)
		dir := ray.Direction.Component(axis)
		lo := b.Min.Component(axis)
		hi := b.Max.Component(axis)

		if math.Abs(dir) < 1e-12 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}

		invDir := 1 / dir
		t0 := (lo - origin) * invDir
		t1 := (hi - origin) * invDir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin > tMax {
			return false
		}
	}
	return true
}
