package shape

import (
	"fmt"
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
)

// CurveType selects how a curve's width is oriented relative to the
// viewer: Flat always faces the ray, Cylinder synthesizes a normal that
// curves around the tangent the way a true cylindrical strand would,
// and Ribbon interpolates a fixed normal field between the two
// endpoints (for e.g. a flat grass blade that shouldn't twist).
type CurveType int

const (
	CurveFlat CurveType = iota
	CurveCylinder
	CurveRibbon
)

// CurveCommon holds the per-curve-set data shared by every Curve segment
// split from the same original control points, following pbrt's
// CurveCommon/Curve split: subdivision produces many Curve values (one
// per u-range) that all reference one CurveCommon.
type CurveCommon struct {
	Type                     CurveType
	CPObj                    [4]pmath.Vec3
	Width                    [2]float64
	N                        [2]pmath.Vec3 // only meaningful for CurveRibbon
	NormalAngle              float64
	InvSinNormalAngle        float64
	ObjectToWorld            *pmath.Transform
	WorldToObject            *pmath.Transform
	ReverseOrientation       bool
	TransformSwapsHandedness bool
}

// NewCurveCommon builds the shared data for a curve, validating the
// control-point and width counts up front like the mesh constructors.
func NewCurveCommon(objectToWorld *pmath.Transform, cpObj [4]pmath.Vec3, width0, width1 float64, curveType CurveType, n *[2]pmath.Vec3, reverseOrientation bool) (*CurveCommon, error) {
	if width0 <= 0 || width1 <= 0 {
		return nil, fmt.Errorf("shape: curve widths must be positive, got %g, %g", width0, width1)
	}
	if objectToWorld == nil {
		objectToWorld = pmath.Identity()
	}
	cc := &CurveCommon{
		Type:                     curveType,
		CPObj:                    cpObj,
		Width:                    [2]float64{width0, width1},
		ObjectToWorld:            objectToWorld,
		WorldToObject:            objectToWorld.Inverse(),
		ReverseOrientation:       reverseOrientation,
		TransformSwapsHandedness: objectToWorld.SwapsHandedness(),
	}
	if curveType == CurveRibbon {
		if n == nil {
			return nil, fmt.Errorf("shape: ribbon curve requires two normals")
		}
		n0, n1 := n[0].Normalize(), n[1].Normalize()
		cc.N = [2]pmath.Vec3{n0, n1}
		angle := pmath.SafeACos(n0.Dot(n1))
		cc.NormalAngle = angle
		cc.InvSinNormalAngle = 1
		if s := math.Sin(angle); s != 0 {
			cc.InvSinNormalAngle = 1 / s
		}
	}
	return cc, nil
}

// widthAt linearly interpolates the curve's endpoint widths at u.
func (cc *CurveCommon) widthAt(u float64) float64 {
	return cc.Width[0]*(1-u) + cc.Width[1]*u
}

// Curve is one u-range segment of a subdivided cubic Bezier strand.
type Curve struct {
	common     *CurveCommon
	uMin, uMax float64
}

// NewCurve creates the full [0,1] curve segment for a CurveCommon. A
// scene loader that wants pre-split segments (as pbrt's Curve::Create
// does, to bound recursion depth per segment) can construct additional
// Curve values with narrower [uMin,uMax] directly.
func NewCurve(common *CurveCommon) *Curve {
	return &Curve{common: common, uMin: 0, uMax: 1}
}

// NewCurveSegment creates a curve restricted to [uMin, uMax] of the
// same underlying control points.
func NewCurveSegment(common *CurveCommon, uMin, uMax float64) *Curve {
	return &Curve{common: common, uMin: uMin, uMax: uMax}
}

func blossomCubicBezier(p [4]pmath.Vec3, u0, u1, u2 float64) pmath.Vec3 {
	a := [3]pmath.Vec3{
		pmath.Lerp(u0, p[0], p[1]),
		pmath.Lerp(u0, p[1], p[2]),
		pmath.Lerp(u0, p[2], p[3]),
	}
	b := [2]pmath.Vec3{
		pmath.Lerp(u1, a[0], a[1]),
		pmath.Lerp(u1, a[1], a[2]),
	}
	return pmath.Lerp(u2, b[0], b[1])
}

// cpRange returns the four control points of the sub-curve restricted
// to [uMin, uMax], via the blossoming identity for Bezier curves.
func cpRange(cpObj [4]pmath.Vec3, uMin, uMax float64) [4]pmath.Vec3 {
	return [4]pmath.Vec3{
		blossomCubicBezier(cpObj, uMin, uMin, uMin),
		blossomCubicBezier(cpObj, uMin, uMin, uMax),
		blossomCubicBezier(cpObj, uMin, uMax, uMax),
		blossomCubicBezier(cpObj, uMax, uMax, uMax),
	}
}

func evalBezier(cp [4]pmath.Vec3, u float64) (p pmath.Vec3, deriv pmath.Vec3) {
	cp1 := [3]pmath.Vec3{pmath.Lerp(u, cp[0], cp[1]), pmath.Lerp(u, cp[1], cp[2]), pmath.Lerp(u, cp[2], cp[3])}
	cp2 := [2]pmath.Vec3{pmath.Lerp(u, cp1[0], cp1[1]), pmath.Lerp(u, cp1[1], cp1[2])}
	if d := cp2[1].Subtract(cp2[0]); d.LengthSquared() > 0 {
		deriv = d.Multiply(3)
	} else {
		deriv = cp[3].Subtract(cp[0])
	}
	return pmath.Lerp(u, cp2[0], cp2[1]), deriv
}

func (c *Curve) Bounds() pmath.Bounds3 {
	cpObj := cpRange(c.common.CPObj, c.uMin, c.uMax)
	objBounds := pmath.NewBounds3FromPoints(cpObj[0], cpObj[1], cpObj[2], cpObj[3])
	width0 := c.common.widthAt(c.uMin)
	width1 := c.common.widthAt(c.uMax)
	objBounds = objBounds.Expand(0.5 * math.Max(width0, width1))
	p0 := c.common.ObjectToWorld.ApplyPoint(objBounds.Min)
	p1 := c.common.ObjectToWorld.ApplyPoint(objBounds.Max)
	return pmath.NewBounds3FromPoints(p0, p1)
}

func (c *Curve) NormalBounds() pmath.DirectionCone {
	return pmath.EntireSphere()
}

func (c *Curve) Area() float64 {
	cpObj := cpRange(c.common.CPObj, c.uMin, c.uMax)
	const steps = 16
	var length float64
	prev := cpObj[0]
	for i := 1; i <= steps; i++ {
		u := float64(i) / steps
		p, _ := evalBezier(cpObj, u)
		length += p.Subtract(prev).Length()
		prev = p
	}
	width0 := c.common.widthAt(c.uMin)
	width1 := c.common.widthAt(c.uMax)
	return length * 0.5 * (width0 + width1)
}

// intersect follows pbrt's recursive-subdivision algorithm: the ray is
// transformed into a local frame where it lies along +z, the control
// polygon is recursively split in half in u, and each half is culled by
// an axis-aligned bound (grown by the curve's width) in that frame
// before recursing; the recursion depth is capped by the curve's
// straightness the way the spec's clamp(log2(len/(20*width)),0,10)
// formula caps it.
func (c *Curve) intersect(ray pmath.Ray, tMin, tMax float64) (t float64, u, v float64, pHit pmath.Vec3, ok bool) {
	objRay := c.common.WorldToObject.ApplyRay(ray)
	cpObj := cpRange(c.common.CPObj, c.uMin, c.uMax)

	dx := objRay.Direction.Cross(cpObj[3].Subtract(cpObj[0]))
	if dx.LengthSquared() == 0 {
		_, dx = pmath.CoordinateSystem(objRay.Direction.Normalize())
	}
	rayToObject := rayFrame(objRay.Origin, objRay.Direction, dx)
	frameToRay := rayToObject.Inverse()

	var frameCP [4]pmath.Vec3
	for i, p := range cpObj {
		frameCP[i] = frameToRay.ApplyPoint(p)
	}

	maxWidth := math.Max(c.common.Width[0], c.common.Width[1])
	length := frameCP[3].Subtract(frameCP[0]).Length()
	depth := 0
	if maxWidth > 0 && length > 0 {
		depth = int(pmath.Clamp(math.Log2(length/(20*maxWidth)), 0, 10))
	}

	rayLength := objRay.Direction.Length()
	tRayMax := tMax * rayLength

	return c.recursiveIntersect(objRay, frameCP, frameToRay, c.uMin, c.uMax, depth, tMin, tRayMax, rayLength)
}

// rayFrame builds an object-to-ray-space transform with the ray
// direction mapped to +z and dx mapped into the xz-plane, the frame the
// recursive subdivision test is performed in.
func rayFrame(origin, dir, dx pmath.Vec3) *pmath.Transform {
	zAxis := dir.Normalize()
	xAxis := dx.Cross(zAxis)
	if xAxis.LengthSquared() == 0 {
		xAxis, _ = pmath.CoordinateSystem(zAxis)
	} else {
		xAxis = xAxis.Normalize()
	}
	yAxis := zAxis.Cross(xAxis)

	m := pmath.Identity4()
	m[0][0], m[1][0], m[2][0] = xAxis.X, xAxis.Y, xAxis.Z
	m[0][1], m[1][1], m[2][1] = yAxis.X, yAxis.Y, yAxis.Z
	m[0][2], m[1][2], m[2][2] = zAxis.X, zAxis.Y, zAxis.Z
	m[0][3], m[1][3], m[2][3] = origin.X, origin.Y, origin.Z
	return pmath.NewTransform(m).Inverse()
}

func (c *Curve) recursiveIntersect(ray pmath.Ray, cp [4]pmath.Vec3, frameToRay *pmath.Transform, u0, u1 float64, depth int, tMin, tRayMax, rayLength float64) (t, u, v float64, pHit pmath.Vec3, ok bool) {
	bounds := pmath.NewBounds3FromPoints(cp[0], cp[1], cp[2], cp[3])
	maxWidth := math.Max(c.common.Width[0], c.common.Width[1])
	bounds = bounds.Expand(0.5 * maxWidth)

	if bounds.Min.X > 0 || bounds.Max.X < 0 || bounds.Min.Y > 0 || bounds.Max.Y < 0 {
		return 0, 0, 0, pmath.Vec3{}, false
	}
	if bounds.Max.Z < 0 || bounds.Min.Z > tRayMax {
		return 0, 0, 0, pmath.Vec3{}, false
	}

	if depth > 0 {
		uMid := 0.5 * (u0 + u1)
		splitCP := [2][4]pmath.Vec3{{}, {}}
		// De Casteljau split of the frame-space control points.
		a := [3]pmath.Vec3{pmath.Lerp(0.5, cp[0], cp[1]), pmath.Lerp(0.5, cp[1], cp[2]), pmath.Lerp(0.5, cp[2], cp[3])}
		b := [2]pmath.Vec3{pmath.Lerp(0.5, a[0], a[1]), pmath.Lerp(0.5, a[1], a[2])}
		mid := pmath.Lerp(0.5, b[0], b[1])
		splitCP[0] = [4]pmath.Vec3{cp[0], a[0], b[0], mid}
		splitCP[1] = [4]pmath.Vec3{mid, b[1], a[2], cp[3]}

		if t, u, v, pHit, ok = c.recursiveIntersect(ray, splitCP[0], frameToRay, u0, uMid, depth-1, tMin, tRayMax, rayLength); ok {
			return t, u, v, pHit, true
		}
		return c.recursiveIntersect(ray, splitCP[1], frameToRay, uMid, u1, depth-1, tMin, tRayMax, rayLength)
	}

	// Base case: test the (nearly straight) segment as a thin quad
	// along its chord, solving for the closest approach to the z-axis.
	edge0 := (cp[1].Y - cp[0].Y) * -cp[0].Y + cp[0].X*(cp[0].X-cp[1].X)
	if edge0 < 0 {
		return 0, 0, 0, pmath.Vec3{}, false
	}
	edge1 := (cp[2].Y-cp[3].Y)*-cp[3].Y + cp[3].X*(cp[3].X-cp[2].X)
	if edge1 < 0 {
		return 0, 0, 0, pmath.Vec3{}, false
	}

	segDir := cp[3].Subtract(cp[0])
	denom := segDir.X*segDir.X + segDir.Y*segDir.Y
	var w float64
	if denom == 0 {
		w = 0
	} else {
		w = (-cp[0].X*segDir.X - cp[0].Y*segDir.Y) / denom
	}
	uHit := pmath.Clamp(u0+w*(u1-u0), u0, u1)

	widthAtU := c.common.widthAt(uHit)
	pc, _ := evalBezier(cp, pmath.Clamp(w, 0, 1))
	ptCurveDist2 := pc.X*pc.X + pc.Y*pc.Y
	if ptCurveDist2 > widthAtU*widthAtU*0.25 {
		return 0, 0, 0, pmath.Vec3{}, false
	}
	if pc.Z < 0 || pc.Z > tRayMax {
		return 0, 0, 0, pmath.Vec3{}, false
	}

	tHit := pc.Z / rayLength
	if tHit < tMin {
		return 0, 0, 0, pmath.Vec3{}, false
	}

	ptCurveDist := math.Sqrt(ptCurveDist2)
	edgeFunc := pc.X*segDir.Y - pc.Y*segDir.X
	vHit := 0.5
	if edgeFunc > 0 {
		vHit = 0.5 + ptCurveDist/widthAtU
	} else {
		vHit = 0.5 - ptCurveDist/widthAtU
	}
	vHit = pmath.Clamp(vHit, 0, 1)

	worldCPObj := cpRange(c.common.CPObj, u0, u1)
	pObj, _ := evalBezier(worldCPObj, w)
	worldP := c.common.ObjectToWorld.ApplyPoint(pObj)
	return tHit, uHit, vHit, worldP, true
}

func (c *Curve) interactionFromHit(ray pmath.Ray, t, u, v float64, pHit pmath.Vec3) SurfaceInteraction {
	cpObj := cpRange(c.common.CPObj, c.uMin, c.uMax)
	pObjAtU, dpduObj := evalBezier(cpObj, pmath.Clamp((u-c.uMin)/(c.uMax-c.uMin), 0, 1))
	_ = pObjAtU

	dpdu := c.common.ObjectToWorld.ApplyVector(dpduObj)
	width := c.common.widthAt(u)

	var n pmath.Vec3
	switch c.common.Type {
	case CurveRibbon:
		sin0 := math.Sin((1 - u) * c.common.NormalAngle) * c.common.InvSinNormalAngle
		sin1 := math.Sin(u * c.common.NormalAngle) * c.common.InvSinNormalAngle
		ribbonN := c.common.N[0].Multiply(sin0).Add(c.common.N[1].Multiply(sin1))
		n = ribbonN.Cross(dpdu).Normalize()
	default:
		// Flat curves face the incident ray; Cylinder curves start from
		// the same ray-facing normal and rotate it about the tangent by
		// an angle running from -90 to +90 degrees across the width
		// (v from 0 to 1), so the normal sweeps around the strand.
		viewDir := ray.Direction.Negate()
		perp := viewDir.Subtract(dpdu.Multiply(viewDir.Dot(dpdu) / dpdu.LengthSquared()))
		if perp.LengthSquared() == 0 {
			_, perp = pmath.CoordinateSystem(dpdu.Normalize())
		}
		n = perp.Normalize()
		if c.common.Type == CurveCylinder {
			theta := (v - 0.5) * math.Pi
			axis := dpdu.Normalize()
			n = n.Multiply(math.Cos(theta)).Add(axis.Cross(n).Multiply(math.Sin(theta))).Normalize()
		}
	}
	if c.common.ReverseOrientation != c.common.TransformSwapsHandedness {
		n = n.Negate()
	}

	dpdv := dpdu.Cross(n).Normalize().Multiply(width)

	si := SurfaceInteraction{
		P:        pmath.NewPoint3IntervalWithError(pHit, dpdu.Abs().Multiply(pmath.Gamma(3))),
		UV:       pmath.Vec2{X: u, Y: v},
		DPDU:     dpdu,
		DPDV:     dpdv,
		ShadingN: n,
		T:        t,
	}
	si.SetFaceNormal(ray, n)
	si.ShadingN = si.Normal
	return si
}

func (c *Curve) Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool) {
	t, u, v, pHit, ok := c.intersect(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	si := c.interactionFromHit(ray, t, u, v, pHit)
	return &ShapeIntersection{SI: si, TFar: t}, true
}

func (c *Curve) IntersectP(ray pmath.Ray, tMin, tMax float64) bool {
	_, _, _, _, ok := c.intersect(ray, tMin, tMax)
	return ok
}

// Sample picks the curve parameter uniformly in [uMin, uMax] from
// uSample.X and returns the point on the curve's centre line there,
// with a normal perpendicular to the tangent and PDF 1/Area(). The
// parameter is not remapped by arc length, uSample.Y is unused, and no
// offset across the width is applied.
func (c *Curve) Sample(uSample pmath.Vec2) (ShapeSample, bool) {
	area := c.Area()
	if area == 0 {
		return ShapeSample{}, false
	}
	u := c.uMin + uSample.X*(c.uMax-c.uMin)
	cpObj := c.common.CPObj
	pObj, dpduObj := evalBezier(cpObj, u)
	worldP := c.common.ObjectToWorld.ApplyPoint(pObj)
	dpdu := c.common.ObjectToWorld.ApplyVector(dpduObj)

	_, perp := pmath.CoordinateSystem(dpdu.Normalize())
	n := perp.Normalize()
	if c.common.ReverseOrientation != c.common.TransformSwapsHandedness {
		n = n.Negate()
	}

	si := SurfaceInteraction{
		P:         pmath.NewPoint3IntervalWithError(worldP, dpdu.Abs().Multiply(pmath.Gamma(3))),
		Normal:    n,
		ShadingN:  n,
		FrontFace: true,
	}
	return ShapeSample{SI: si, PDF: 1 / area}, true
}

func (c *Curve) PDF(si SurfaceInteraction) float64 {
	area := c.Area()
	if area == 0 {
		return 0
	}
	return 1 / area
}

func (c *Curve) SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool) {
	ss, ok := c.Sample(u)
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

func (c *Curve) PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64 {
	ray := ctx.SpawnRay(wi)
	hit, ok := c.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		return 0
	}
	dist2 := hit.SI.Point().Subtract(ctx.P).LengthSquared()
	cosTheta := hit.SI.Normal.AbsDot(wi.Normalize().Negate())
	area := c.Area()
	if cosTheta == 0 || area == 0 {
		return 0
	}
	return (1 / area) * dist2 / cosTheta
}
