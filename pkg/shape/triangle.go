package shape

import (
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
	"github.com/df07/go-shape-core/pkg/pmesh"
)

// Triangle is a single triangle referencing a shared TriangleMesh by
// handle, the pbrt-style layout that keeps a triangle POD-sized instead
// of duplicating its own vertex copies the way the teacher's Triangle
// does.
type Triangle struct {
	meshHandle int
	primIndex  int
}

// minSphericalArea/maxSphericalArea bound the solid angle SampleFrom/
// PDFFrom will trust the spherical-triangle sampler for; outside
// [minSphericalArea, maxSphericalArea] the sampler's own construction
// (spherical excess near 0 or near the full sphere) loses precision, so
// both functions fall back to area sampling with the area-to-solid-angle
// Jacobian instead, matching pbrt's Triangle::Sample/PDF bounds.
const (
	minSphericalArea = 1e-4
	maxSphericalArea = 6.28
)

// NewTriangle wraps triangle primIndex of the mesh registered under
// meshHandle.
func NewTriangle(meshHandle, primIndex int) *Triangle {
	return &Triangle{meshHandle: meshHandle, primIndex: primIndex}
}

func (t *Triangle) mesh() *pmesh.TriangleMesh {
	return pmesh.GetTriangleMesh(t.meshHandle)
}

func (t *Triangle) vertices() (p0, p1, p2 pmath.Vec3) {
	return t.mesh().TriangleVertices(t.primIndex)
}

func (t *Triangle) Bounds() pmath.Bounds3 {
	p0, p1, p2 := t.vertices()
	return pmath.NewBounds3FromPoints(p0, p1, p2)
}

func (t *Triangle) geometricNormal() pmath.Vec3 {
	p0, p1, p2 := t.vertices()
	n := p1.Subtract(p0).Cross(p2.Subtract(p0))
	m := t.mesh()
	if m.ReverseOrientation != m.TransformSwapsHandedness {
		n = n.Negate()
	}
	return n
}

func (t *Triangle) NormalBounds() pmath.DirectionCone {
	return pmath.NewDirectionCone(t.geometricNormal().Normalize(), 1)
}

func (t *Triangle) Area() float64 {
	p0, p1, p2 := t.vertices()
	return 0.5 * p1.Subtract(p0).Cross(p2.Subtract(p0)).Length()
}

// intersect implements Woop, Benthin & Wald's watertight ray-triangle
// test: the ray is translated to its origin and sheared so it becomes
// the +z axis, then the triangle vertices are transformed into that
// space and edge functions are evaluated in 2D, guaranteeing a
// consistent hit/miss decision along shared triangle edges.
func (t *Triangle) intersect(ray pmath.Ray, tMin, tMax float64) (tHit float64, b0, b1, b2 float64, ok bool) {
	p0, p1, p2 := t.vertices()

	kz := ray.Direction.Abs().MaxDimension()
	kx := kz + 1
	if kx == 3 {
		kx = 0
	}
	ky := kx + 1
	if ky == 3 {
		ky = 0
	}
	d := ray.Direction.Permute(kx, ky, kz)

	p0t := p0.Subtract(ray.Origin).Permute(kx, ky, kz)
	p1t := p1.Subtract(ray.Origin).Permute(kx, ky, kz)
	p2t := p2.Subtract(ray.Origin).Permute(kx, ky, kz)

	sx := -d.X / d.Z
	sy := -d.Y / d.Z
	sz := 1 / d.Z

	p0t.X += sx * p0t.Z
	p0t.Y += sy * p0t.Z
	p1t.X += sx * p1t.Z
	p1t.Y += sy * p1t.Z
	p2t.X += sx * p2t.Z
	p2t.Y += sy * p2t.Z

	e0 := pmath.DifferenceOfProducts(p1t.X, p2t.Y, p1t.Y, p2t.X)
	e1 := pmath.DifferenceOfProducts(p2t.X, p0t.Y, p2t.Y, p0t.X)
	e2 := pmath.DifferenceOfProducts(p0t.X, p1t.Y, p0t.Y, p1t.X)

	if (e0 < 0 || e1 < 0 || e2 < 0) && (e0 > 0 || e1 > 0 || e2 > 0) {
		return 0, 0, 0, 0, false
	}
	det := e0 + e1 + e2
	if det == 0 {
		return 0, 0, 0, 0, false
	}

	p0t.Z *= sz
	p1t.Z *= sz
	p2t.Z *= sz
	tScaled := e0*p0t.Z + e1*p1t.Z + e2*p2t.Z
	if det < 0 && (tScaled >= 0 || tScaled < tMax*det) {
		return 0, 0, 0, 0, false
	} else if det > 0 && (tScaled <= 0 || tScaled > tMax*det) {
		return 0, 0, 0, 0, false
	}

	invDet := 1 / det
	b0 = e0 * invDet
	b1 = e1 * invDet
	b2 = e2 * invDet
	tHit = tScaled * invDet
	if tHit < tMin {
		return 0, 0, 0, 0, false
	}
	return tHit, b0, b1, b2, true
}

func (t *Triangle) interactionFromHit(ray pmath.Ray, tHit, b0, b1, b2 float64) SurfaceInteraction {
	p0, p1, p2 := t.vertices()
	m := t.mesh()

	pHit := p0.Multiply(b0).Add(p1.Multiply(b1)).Add(p2.Multiply(b2))
	uv0, uv1, uv2 := m.TriangleUVs(t.primIndex)
	uvHit := pmath.Vec2{
		X: b0*uv0.X + b1*uv1.X + b2*uv2.X,
		Y: b0*uv0.Y + b1*uv1.Y + b2*uv2.Y,
	}

	dp02 := p0.Subtract(p2)
	dp12 := p1.Subtract(p2)
	duv02 := uv0.Subtract(uv2)
	duv12 := uv1.Subtract(uv2)
	determinant := pmath.DifferenceOfProducts(duv02.X, duv12.Y, duv02.Y, duv12.X)

	var dpdu, dpdv pmath.Vec3
	if math.Abs(determinant) < 1e-12 {
		ng := dp02.Cross(dp12)
		v2, v3 := pmath.CoordinateSystem(ng.Normalize())
		dpdu, dpdv = v2, v3
	} else {
		invDet := 1 / determinant
		dpdu = dp02.Multiply(duv12.Y).Subtract(dp12.Multiply(duv02.Y)).Multiply(invDet)
		dpdv = dp12.Multiply(duv02.X).Subtract(dp02.Multiply(duv12.X)).Multiply(invDet)
	}

	n := dp02.Cross(dp12)
	if n.LengthSquared() == 0 {
		n = pmath.Vec3{X: 0, Y: 0, Z: 1}
	} else {
		n = n.Normalize()
	}
	if m.ReverseOrientation != m.TransformSwapsHandedness {
		n = n.Negate()
	}

	pAbsSum := p0.Multiply(b0).Abs().Add(p1.Multiply(b1).Abs()).Add(p2.Multiply(b2).Abs())
	pErr := pAbsSum.Multiply(pmath.Gamma(7))

	shadingN := n
	if m.HasNormals() {
		n0, n1, n2 := m.TriangleNormals(t.primIndex)
		ns := n0.Multiply(b0).Add(n1.Multiply(b1)).Add(n2.Multiply(b2))
		if ns.LengthSquared() > 0 {
			shadingN = ns.Normalize()
			n = pmath.FaceForward(n, shadingN)
		}
	}

	si := SurfaceInteraction{
		P:        pmath.NewPoint3IntervalWithError(pHit, pErr),
		UV:       uvHit,
		DPDU:     dpdu,
		DPDV:     dpdv,
		ShadingN: shadingN,
		T:        tHit,
	}
	si.SetFaceNormal(ray, n)
	if m.HasNormals() {
		si.ShadingN = shadingN
	} else {
		si.ShadingN = si.Normal
	}
	return si
}

func (t *Triangle) Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool) {
	tHit, b0, b1, b2, ok := t.intersect(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	si := t.interactionFromHit(ray, tHit, b0, b1, b2)
	return &ShapeIntersection{SI: si, TFar: tHit}, true
}

func (t *Triangle) IntersectP(ray pmath.Ray, tMin, tMax float64) bool {
	_, _, _, _, ok := t.intersect(ray, tMin, tMax)
	return ok
}

func (t *Triangle) Sample(u pmath.Vec2) (ShapeSample, bool) {
	p0, p1, p2 := t.vertices()
	b0, b1 := pmath.SampleUniformTriangle(u)
	b2 := 1 - b0 - b1
	pObj := p0.Multiply(b0).Add(p1.Multiply(b1)).Add(p2.Multiply(b2))

	n := t.geometricNormal().Normalize()
	pAbsSum := p0.Multiply(b0).Abs().Add(p1.Multiply(b1).Abs()).Add(p2.Multiply(b2).Abs())
	pErr := pAbsSum.Multiply(pmath.Gamma(6))

	si := SurfaceInteraction{
		P:         pmath.NewPoint3IntervalWithError(pObj, pErr),
		Normal:    n,
		ShadingN:  n,
		FrontFace: true,
	}
	area := t.Area()
	if area == 0 {
		return ShapeSample{}, false
	}
	return ShapeSample{SI: si, PDF: 1 / area}, true
}

func (t *Triangle) PDF(si SurfaceInteraction) float64 {
	area := t.Area()
	if area == 0 {
		return 0
	}
	return 1 / area
}

// SampleFrom uses spherical-triangle importance sampling (uniform over
// the solid angle the triangle subtends from ctx.P) whenever the
// triangle's solid angle lies in [minSphericalArea, maxSphericalArea],
// falling back to area sampling with the standard area-to-solid-angle
// Jacobian when it is smaller (degenerate or nearly edge-on) or larger
// (ctx.P almost on the triangle's plane, inside it), matching pbrt's
// Triangle::Sample(ctx, u) fallback condition.
func (t *Triangle) SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool) {
	p0, p1, p2 := t.vertices()
	solidAngle := pmath.SphericalTriangleArea(
		p0.Subtract(ctx.P).Normalize(),
		p1.Subtract(ctx.P).Normalize(),
		p2.Subtract(ctx.P).Normalize(),
	)
	if solidAngle < minSphericalArea || solidAngle > maxSphericalArea || math.IsNaN(solidAngle) {
		ss, ok := t.Sample(u)
		if !ok {
			return ShapeSample{}, false
		}
		wi := ss.SI.Point().Subtract(ctx.P)
		dist2 := wi.LengthSquared()
		if dist2 == 0 {
			return ShapeSample{}, false
		}
		wi = wi.Normalize()
		cosTheta := ss.SI.Normal.AbsDot(wi.Negate())
		if cosTheta == 0 {
			return ShapeSample{}, false
		}
		return ShapeSample{SI: ss.SI, PDF: ss.PDF * dist2 / cosTheta}, true
	}

	pdf := 1.0
	if ctx.Normal != (pmath.Vec3{}) {
		w := t.cornerWeights(ctx, p0, p1, p2)
		u = pmath.SampleBilinear(u, w)
		pdf *= pmath.BilinearPDF(u, w)
	}

	b0, b1, b2, area := pmath.SampleSphericalTriangle(p0, p1, p2, ctx.P, u)
	if area <= 0 {
		return ShapeSample{}, false
	}
	pdf *= 1 / area
	pObj := p0.Multiply(b0).Add(p1.Multiply(b1)).Add(p2.Multiply(b2))
	n := t.geometricNormal().Normalize()
	si := SurfaceInteraction{
		P:         pmath.NewPoint3IntervalWithError(pObj, pmath.Vec3{}),
		Normal:    n,
		ShadingN:  n,
		FrontFace: true,
	}
	return ShapeSample{SI: si, PDF: pdf}, true
}

// cornerWeights weights the [0,1)^2 sample's corners by the cosine
// between ctx.Normal and each vertex direction (at least 0.01),
// following pbrt's Triangle::Sample(ctx,u)
// which maps the triangle's three vertex directions onto the unit
// square's four corners as (0,0)->wi[1], (1,0)->wi[1], (0,1)->wi[0],
// (1,1)->wi[2] before biasing with SampleBilinear/BilinearPDF.
func (t *Triangle) cornerWeights(ctx ShapeSampleContext, p0, p1, p2 pmath.Vec3) [4]float64 {
	wi0 := p0.Subtract(ctx.P).Normalize()
	wi1 := p1.Subtract(ctx.P).Normalize()
	wi2 := p2.Subtract(ctx.P).Normalize()
	return [4]float64{
		math.Max(0.01, ctx.Normal.AbsDot(wi1)),
		math.Max(0.01, ctx.Normal.AbsDot(wi1)),
		math.Max(0.01, ctx.Normal.AbsDot(wi0)),
		math.Max(0.01, ctx.Normal.AbsDot(wi2)),
	}
}

func (t *Triangle) PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64 {
	p0, p1, p2 := t.vertices()
	solidAngle := pmath.SphericalTriangleArea(
		p0.Subtract(ctx.P).Normalize(),
		p1.Subtract(ctx.P).Normalize(),
		p2.Subtract(ctx.P).Normalize(),
	)
	if solidAngle < minSphericalArea || solidAngle > maxSphericalArea || math.IsNaN(solidAngle) {
		ray := pmath.NewRay(ctx.P, wi)
		hit, ok := t.Intersect(ray, 1e-6, math.Inf(1))
		if !ok {
			return 0
		}
		dist2 := hit.SI.Point().Subtract(ctx.P).LengthSquared()
		cosTheta := hit.SI.Normal.AbsDot(wi.Normalize().Negate())
		if cosTheta == 0 {
			return 0
		}
		area := t.Area()
		if area == 0 {
			return 0
		}
		return (1 / area) * dist2 / cosTheta
	}
	pdf := 1 / solidAngle
	if ctx.Normal != (pmath.Vec3{}) {
		w := t.cornerWeights(ctx, p0, p1, p2)
		invU := pmath.InvertSphericalTriangleSample(p0, p1, p2, ctx.P, wi)
		pdf *= pmath.BilinearPDF(invU, w)
	}
	return pdf
}
