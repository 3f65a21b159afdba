// Package shape implements the ray tracer's geometric primitives:
// spheres, disks, cylinders, triangles, bilinear patches, and cubic
// curves, each able to report its bounds, intersect a ray, and sample
// its surface for direct-lighting.
package shape

import (
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
)

// SurfaceInteraction records everything a shape's Intersect method knows
// about a hit: the point (with its floating-point error bound), the
// geometric and shading frames, and the parametric (u,v) coordinates.
// SetFaceNormal mirrors the teacher's HitRecord: it derives FrontFace
// from the incoming ray so material code never has to re-derive it.
type SurfaceInteraction struct {
	P         pmath.Point3Interval
	Normal    pmath.Vec3 // geometric normal, always outward-facing before SetFaceNormal
	UV        pmath.Vec2
	DPDU      pmath.Vec3
	DPDV      pmath.Vec3
	ShadingN  pmath.Vec3 // shading normal, may differ from Normal (interpolated mesh normals)
	FrontFace bool
	T         float64
}

// SetFaceNormal sets Normal/ShadingN and FrontFace from the ray
// direction and an outward-facing geometric normal, following the same
// convention as the teacher's HitRecord.SetFaceNormal: front-facing
// means the ray arrives from outside the surface.
func (si *SurfaceInteraction) SetFaceNormal(ray pmath.Ray, outwardNormal pmath.Vec3) {
	si.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if si.FrontFace {
		si.Normal = outwardNormal
	} else {
		si.Normal = outwardNormal.Negate()
	}
	if si.ShadingN == (pmath.Vec3{}) {
		si.ShadingN = si.Normal
	}
}

// Point returns the intersection point at full precision (the midpoint
// of P's error interval).
func (si *SurfaceInteraction) Point() pmath.Vec3 {
	return si.P.Vec3()
}

// OffsetRayOrigin nudges the interaction point along n (the geometric
// normal, oriented toward the side w points into) by an amount derived
// from P's tracked floating-point error, producing a ray origin that
// avoids self-intersection ("shadow acne") without a fixed epsilon
// hack.
func (si *SurfaceInteraction) OffsetRayOrigin(w pmath.Vec3) pmath.Vec3 {
	n := si.Normal
	if n.Dot(w) < 0 {
		n = n.Negate()
	}
	pErr := si.P.Error()
	d := math.Abs(n.X)*pErr.X + math.Abs(n.Y)*pErr.Y + math.Abs(n.Z)*pErr.Z
	offset := n.Multiply(d)
	p := si.Point().Add(offset)

	// Round each component away from the error box in the direction of
	// the offset, the same conservative rounding pbrt's OffsetRayOrigin
	// uses to guarantee the new origin lies strictly outside it.
	for i := 0; i < 3; i++ {
		v := p.Component(i)
		if offset.Component(i) > 0 {
			p = setComponent(p, i, math.Nextafter(v, math.Inf(1)))
		} else if offset.Component(i) < 0 {
			p = setComponent(p, i, math.Nextafter(v, math.Inf(-1)))
		}
	}
	return p
}

func setComponent(v pmath.Vec3, i int, val float64) pmath.Vec3 {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// SpawnRay returns a ray leaving the interaction point in direction d,
// with its origin offset per OffsetRayOrigin so a shape doesn't
// re-intersect itself on the next trace.
func (si *SurfaceInteraction) SpawnRay(d pmath.Vec3) pmath.Ray {
	return pmath.NewRay(si.OffsetRayOrigin(d), d)
}

// ShapeIntersection bundles a SurfaceInteraction with the ray parameter
// it was found at, the pair every Shape.Intersect returns.
type ShapeIntersection struct {
	SI   SurfaceInteraction
	TFar float64
}

// ShapeSampleContext is the reference point and normal a shape's
// solid-angle Sample/PDF pair is evaluated with respect to — the point
// being shaded, which is asking "how should I sample your surface for
// direct lighting."
type ShapeSampleContext struct {
	P      pmath.Vec3
	Normal pmath.Vec3 // shading normal at the reference point; zero value if not surface-attached
	Time   float64
}

// OffsetRayOrigin nudges ctx.P toward w by a small fixed epsilon
// relative to its magnitude. Unlike SurfaceInteraction's version this
// context carries no tracked error bound (it may be a camera or
// light-sampling origin rather than a prior hit), so it falls back to a
// scale-relative offset, the same fallback the teacher's renderer uses
// for shadow-ray origins that don't come from a Hit.
func (ctx ShapeSampleContext) OffsetRayOrigin(w pmath.Vec3) pmath.Vec3 {
	const epsScale = 1e-6
	scale := math.Max(1, ctx.P.Length())
	return ctx.P.Add(w.Normalize().Multiply(epsScale * scale))
}

// SpawnRay returns a ray from the reference point toward direction d.
func (ctx ShapeSampleContext) SpawnRay(d pmath.Vec3) pmath.Ray {
	return pmath.NewRayAtTime(ctx.OffsetRayOrigin(d), d, ctx.Time)
}

// ShapeSample is the result of sampling a point on a shape's surface:
// the interaction at that point and the probability density (with
// respect to solid angle when produced by the context-aware Sample, or
// with respect to surface area when produced by the context-free
// Sample) that the point was chosen with.
type ShapeSample struct {
	SI  SurfaceInteraction
	PDF float64
}
