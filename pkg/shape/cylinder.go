package shape

import (
	"fmt"
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
)

// Cylinder is an open (possibly phi-clipped) cylindrical shell around
// the object-space z axis, following the teacher's Cylinder but solved
// with the same interval-arithmetic quadratic as Sphere for a tracked
// error bound, and transformed via an explicit Transform.
type Cylinder struct {
	objectToWorld            *pmath.Transform
	worldToObject            *pmath.Transform
	radius                   float64
	zMin, zMax               float64
	phiMax                   float64
	reverseOrientation       bool
	transformSwapsHandedness bool
}

// CylinderParams collects NewCylinder's optional parameters.
type CylinderParams struct {
	ObjectToWorld      *pmath.Transform
	Radius             float64
	ZMin, ZMax         float64
	PhiMax             float64
	ReverseOrientation bool
}

// NewCylinder creates a cylinder.
func NewCylinder(p CylinderParams) (*Cylinder, error) {
	if p.Radius <= 0 {
		return nil, fmt.Errorf("shape: cylinder radius must be positive, got %g", p.Radius)
	}
	if p.ZMin == p.ZMax {
		return nil, fmt.Errorf("shape: cylinder zMin and zMax must differ")
	}
	if p.ObjectToWorld == nil {
		p.ObjectToWorld = pmath.Identity()
	}
	phiMax := p.PhiMax
	if phiMax <= 0 {
		phiMax = 2 * math.Pi
	}
	phiMax = pmath.Clamp(phiMax, 0, 2*math.Pi)

	return &Cylinder{
		objectToWorld:            p.ObjectToWorld,
		worldToObject:            p.ObjectToWorld.Inverse(),
		radius:                   p.Radius,
		zMin:                     math.Min(p.ZMin, p.ZMax),
		zMax:                     math.Max(p.ZMin, p.ZMax),
		phiMax:                   phiMax,
		reverseOrientation:       p.ReverseOrientation,
		transformSwapsHandedness: p.ObjectToWorld.SwapsHandedness(),
	}, nil
}

func (c *Cylinder) Bounds() pmath.Bounds3 {
	objMin := pmath.Vec3{X: -c.radius, Y: -c.radius, Z: c.zMin}
	objMax := pmath.Vec3{X: c.radius, Y: c.radius, Z: c.zMax}
	p0 := c.objectToWorld.ApplyPoint(objMin)
	p1 := c.objectToWorld.ApplyPoint(objMax)
	return pmath.NewBounds3FromPoints(p0, p1)
}

func (c *Cylinder) NormalBounds() pmath.DirectionCone {
	return pmath.EntireSphere()
}

func (c *Cylinder) Area() float64 {
	return (c.zMax - c.zMin) * c.radius * c.phiMax
}

func (c *Cylinder) basicIntersect(ray pmath.Ray, tMax float64) (t float64, pHit pmath.Vec3, pErr pmath.Vec3, ok bool) {
	oi := c.worldToObject.ApplyPoint3Interval(pmath.NewVec3Interval(ray.Origin))
	di := c.worldToObject.ApplyVec3Interval(pmath.NewVec3Interval(ray.Direction))

	a := di.X.Mul(di.X).Add(di.Y.Mul(di.Y))
	b := oi.X.Mul(di.X).Add(oi.Y.Mul(di.Y)).MulScalar(2)
	cc := oi.X.Mul(oi.X).Add(oi.Y.Mul(oi.Y)).Sub(pmath.NewInterval(c.radius * c.radius))

	// RT-Gems discriminant identity in the xy-plane, same as Sphere.
	f := b.MulScalar(0.5).Div(a)
	fpx := oi.X.Sub(di.X.Mul(f))
	fpy := oi.Y.Sub(di.Y.Mul(f))
	sqrtf := fpx.Mul(fpx).Add(fpy.Mul(fpy)).Sqrt()
	radius := pmath.NewInterval(c.radius)
	discrim := a.MulScalar(4).Mul(radius.Sub(sqrtf)).Mul(radius.Add(sqrtf))
	if discrim.Hi < 0 {
		return 0, pmath.Vec3{}, pmath.Vec3{}, false
	}
	rootDiscrim := discrim.Sqrt()

	var q pmath.Interval
	if b.Midpoint() < 0 {
		q = b.Sub(rootDiscrim).MulScalar(-0.5)
	} else {
		q = b.Add(rootDiscrim).MulScalar(-0.5)
	}
	t0 := q.Div(a)
	t1 := cc.Div(q)
	if t0.Midpoint() > t1.Midpoint() {
		t0, t1 = t1, t0
	}
	if t0.Hi > tMax || t1.Lo <= 0 {
		return 0, pmath.Vec3{}, pmath.Vec3{}, false
	}
	tShapeHit := t0
	if tShapeHit.Lo <= 0 {
		tShapeHit = t1
		if tShapeHit.Hi > tMax {
			return 0, pmath.Vec3{}, pmath.Vec3{}, false
		}
	}

	tHit := tShapeHit.Midpoint()
	oMid := oi.Vec3()
	dMid := di.Vec3()
	hit := oMid.Add(dMid.Multiply(tHit))
	hitRadius := math.Sqrt(hit.X*hit.X + hit.Y*hit.Y)
	hit.X *= c.radius / hitRadius
	hit.Y *= c.radius / hitRadius
	phi := math.Atan2(hit.Y, hit.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}

	valid := func(h pmath.Vec3, p float64) bool {
		return h.Z >= c.zMin && h.Z <= c.zMax && p <= c.phiMax
	}
	if !valid(hit, phi) {
		if tShapeHit == t1 || t1.Hi > tMax {
			return 0, pmath.Vec3{}, pmath.Vec3{}, false
		}
		tShapeHit = t1
		tHit = tShapeHit.Midpoint()
		hit = oMid.Add(dMid.Multiply(tHit))
		hitRadius = math.Sqrt(hit.X*hit.X + hit.Y*hit.Y)
		hit.X *= c.radius / hitRadius
		hit.Y *= c.radius / hitRadius
		phi = math.Atan2(hit.Y, hit.X)
		if phi < 0 {
			phi += 2 * math.Pi
		}
		if !valid(hit, phi) {
			return 0, pmath.Vec3{}, pmath.Vec3{}, false
		}
	}

	pErr = pmath.Vec3{X: math.Abs(hit.X), Y: math.Abs(hit.Y), Z: 0}.Multiply(pmath.Gamma(3))
	return tHit, hit, pErr, true
}

func (c *Cylinder) interactionFromHit(ray pmath.Ray, t float64, pObj, pObjErr pmath.Vec3) SurfaceInteraction {
	phi := math.Atan2(pObj.Y, pObj.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	u := phi / c.phiMax
	v := (pObj.Z - c.zMin) / (c.zMax - c.zMin)

	dpdu := pmath.Vec3{X: -c.phiMax * pObj.Y, Y: c.phiMax * pObj.X, Z: 0}
	dpdv := pmath.Vec3{X: 0, Y: 0, Z: c.zMax - c.zMin}

	n := c.objectToWorld.ApplyNormal(pmath.Vec3{X: pObj.X, Y: pObj.Y, Z: 0}).Normalize()
	if c.reverseOrientation != c.transformSwapsHandedness {
		n = n.Negate()
	}

	worldP := c.objectToWorld.ApplyPoint(pObj)
	worldPErr := c.objectToWorld.ApplyPoint3Interval(pmath.NewPoint3IntervalWithError(pObj, pObjErr))
	worldPErr = pmath.NewPoint3IntervalWithError(worldP, worldPErr.Error())

	si := SurfaceInteraction{
		P:        worldPErr,
		UV:       pmath.Vec2{X: u, Y: v},
		DPDU:     c.objectToWorld.ApplyVector(dpdu),
		DPDV:     c.objectToWorld.ApplyVector(dpdv),
		ShadingN: n,
		T:        t,
	}
	si.SetFaceNormal(ray, n)
	si.ShadingN = si.Normal
	return si
}

func (c *Cylinder) Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool) {
	t, pObj, pErr, ok := c.basicIntersect(ray, tMax)
	if !ok || t < tMin {
		return nil, false
	}
	si := c.interactionFromHit(ray, t, pObj, pErr)
	return &ShapeIntersection{SI: si, TFar: t}, true
}

func (c *Cylinder) IntersectP(ray pmath.Ray, tMin, tMax float64) bool {
	t, _, _, ok := c.basicIntersect(ray, tMax)
	return ok && t >= tMin
}

func (c *Cylinder) Sample(u pmath.Vec2) (ShapeSample, bool) {
	z := pmath.Clamp(u.X, 0, 1)*(c.zMax-c.zMin) + c.zMin
	phi := u.Y * c.phiMax
	pObj := pmath.Vec3{X: c.radius * math.Cos(phi), Y: c.radius * math.Sin(phi), Z: z}

	n := c.objectToWorld.ApplyNormal(pmath.Vec3{X: pObj.X, Y: pObj.Y, Z: 0}).Normalize()
	if c.reverseOrientation != c.transformSwapsHandedness {
		n = n.Negate()
	}
	worldP := c.objectToWorld.ApplyPoint(pObj)
	si := SurfaceInteraction{
		P:         pmath.NewPoint3IntervalWithError(worldP, pObj.Abs().Multiply(pmath.Gamma(3))),
		Normal:    n,
		ShadingN:  n,
		FrontFace: true,
	}
	return ShapeSample{SI: si, PDF: 1 / c.Area()}, true
}

func (c *Cylinder) PDF(si SurfaceInteraction) float64 {
	return 1 / c.Area()
}

func (c *Cylinder) SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool) {
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

func (c *Cylinder) PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64 {
	ray := pmath.NewRay(ctx.P, wi)
	hit, ok := c.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		return 0
	}
	dist2 := hit.SI.Point().Subtract(ctx.P).LengthSquared()
	cosTheta := hit.SI.Normal.AbsDot(wi.Normalize().Negate())
	if cosTheta == 0 {
		return 0
	}
	return (1 / c.Area()) * dist2 / cosTheta
}
