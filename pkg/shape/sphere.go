package shape

import (
	"fmt"
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
)

// Sphere is a (possibly partial, z-clipped and phi-swept) sphere,
// following the teacher's Sphere but generalized to pbrt's full
// parameterization and transformed via an explicit object-to-world
// Transform rather than a bare center point, since a clipped/swept
// sphere's object-space quadric needs its own frame.
type Sphere struct {
	objectToWorld *pmath.Transform
	worldToObject *pmath.Transform
	radius        float64
	zMin, zMax    float64
	thetaZMin     float64
	thetaZMax     float64
	phiMax        float64
	reverseOrientation bool
	transformSwapsHandedness bool
}

// SphereParams collects NewSphere's parameters. Radius must be
// positive; zero ZMin, ZMax and PhiMax give a full unclipped sphere
// swept through the full 2*pi.
type SphereParams struct {
	ObjectToWorld      *pmath.Transform
	Radius             float64
	ZMin, ZMax         float64 // if both zero, defaults to [-Radius, Radius]
	PhiMax             float64 // radians; zero defaults to 2*pi
	ReverseOrientation bool
}

// NewSphere creates a sphere, validating and defaulting parameters the
// way the teacher's constructors validate with fmt.Errorf rather than
// panicking on bad scene data.
func NewSphere(p SphereParams) (*Sphere, error) {
	if p.Radius <= 0 {
		return nil, fmt.Errorf("shape: sphere radius must be positive, got %g", p.Radius)
	}
	if p.ObjectToWorld == nil {
		p.ObjectToWorld = pmath.Identity()
	}
	zMin, zMax := p.ZMin, p.ZMax
	if zMin == 0 && zMax == 0 {
		zMin, zMax = -p.Radius, p.Radius
	}
	zMin, zMax = pmath.Clamp(math.Min(zMin, zMax), -p.Radius, p.Radius), pmath.Clamp(math.Max(zMin, zMax), -p.Radius, p.Radius)
	phiMax := p.PhiMax
	if phiMax <= 0 {
		phiMax = 2 * math.Pi
	}
	phiMax = pmath.Clamp(phiMax, 0, 2*math.Pi)

	return &Sphere{
		objectToWorld:            p.ObjectToWorld,
		worldToObject:            p.ObjectToWorld.Inverse(),
		radius:                   p.Radius,
		zMin:                     zMin,
		zMax:                     zMax,
		thetaZMin:                pmath.SafeACos(zMin / p.Radius),
		thetaZMax:                pmath.SafeACos(zMax / p.Radius),
		phiMax:                   phiMax,
		reverseOrientation:       p.ReverseOrientation,
		transformSwapsHandedness: p.ObjectToWorld.SwapsHandedness(),
	}, nil
}

func (s *Sphere) Bounds() pmath.Bounds3 {
	// Conservative: a clipped sphere's bound is still no larger than the
	// full sphere's, so bounding the object-space box spanning
	// [-radius,radius] in x/y and [zMin,zMax] in z (rather than deriving
	// the tight bound of the swept wedge) stays a safe superset even
	// when phiMax < 2*pi.
	objMin := pmath.Vec3{X: -s.radius, Y: -s.radius, Z: s.zMin}
	objMax := pmath.Vec3{X: s.radius, Y: s.radius, Z: s.zMax}
	p0 := s.objectToWorld.ApplyPoint(objMin)
	p1 := s.objectToWorld.ApplyPoint(objMax)
	return pmath.NewBounds3FromPoints(p0, p1)
}

func (s *Sphere) NormalBounds() pmath.DirectionCone {
	return pmath.EntireSphere()
}

func (s *Sphere) Area() float64 {
	return s.phiMax * s.radius * (s.zMax - s.zMin)
}

// basicIntersect solves the sphere quadratic in object space using
// interval arithmetic so the returned parametric t and hit point carry
// a rigorous floating-point error bound, following the RT-Gems robust
// quadratic identity pbrt's Sphere::BasicIntersect uses instead of the
// textbook b^2-4ac form (which loses precision to catastrophic
// cancellation when b^2 and 4ac are close in magnitude).
func (s *Sphere) basicIntersect(ray pmath.Ray, tMax float64) (t float64, pHit pmath.Vec3, pErr pmath.Vec3, ok bool) {
	oi := s.worldToObject.ApplyPoint3Interval(pmath.NewVec3Interval(ray.Origin))
	di := s.worldToObject.ApplyVec3Interval(pmath.NewVec3Interval(ray.Direction))

	a := di.Dot(di)
	b := oi.Dot(di).MulScalar(2)
	c := oi.Dot(oi).Sub(pmath.NewInterval(s.radius * s.radius))

	// RT-Gems discriminant identity: eliminates c (whose magnitude grows
	// with the squared distance to the origin) from the discriminant, so
	// long or far-missing rays don't collapse b^2-4ac to zero from
	// catastrophic cancellation.
	f := b.MulScalar(0.5).Div(a)
	fp := oi.Sub(pmath.Vec3Interval{X: di.X.Mul(f), Y: di.Y.Mul(f), Z: di.Z.Mul(f)})
	sqrtf := fp.Dot(fp).Sqrt()
	radius := pmath.NewInterval(s.radius)
	discrim := a.MulScalar(4).Mul(radius.Sub(sqrtf)).Mul(radius.Add(sqrtf))
	if discrim.Hi < 0 {
		return 0, pmath.Vec3{}, pmath.Vec3{}, false
	}
	rootDiscrim := discrim.Sqrt()

	q := pmath.NewInterval(-0.5)
	if b.Midpoint() < 0 {
		q = b.Sub(rootDiscrim).MulScalar(-0.5)
	} else {
		q = b.Add(rootDiscrim).MulScalar(-0.5)
	}
	t0 := q.Div(a)
	t1 := c.Div(q)
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
	// Refine hit point to lie exactly on the sphere (RT-Gems reprojection).
	hit = hit.Multiply(s.radius / hit.Length())
	if hit.X == 0 && hit.Y == 0 {
		hit.X = 1e-5 * s.radius
	}
	phi := math.Atan2(hit.Y, hit.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}

	if (s.zMin > -s.radius && hit.Z < s.zMin) || (s.zMax < s.radius && hit.Z > s.zMax) || phi > s.phiMax {
		if tShapeHit == t1 {
			return 0, pmath.Vec3{}, pmath.Vec3{}, false
		}
		if t1.Hi > tMax {
			return 0, pmath.Vec3{}, pmath.Vec3{}, false
		}
		tShapeHit = t1
		tHit = tShapeHit.Midpoint()
		hit = oMid.Add(dMid.Multiply(tHit))
		hit = hit.Multiply(s.radius / hit.Length())
		if hit.X == 0 && hit.Y == 0 {
			hit.X = 1e-5 * s.radius
		}
		phi = math.Atan2(hit.Y, hit.X)
		if phi < 0 {
			phi += 2 * math.Pi
		}
		if (s.zMin > -s.radius && hit.Z < s.zMin) || (s.zMax < s.radius && hit.Z > s.zMax) || phi > s.phiMax {
			return 0, pmath.Vec3{}, pmath.Vec3{}, false
		}
	}

	pErr = hit.Abs().Multiply(pmath.Gamma(5))
	return tHit, hit, pErr, true
}

func (s *Sphere) interactionFromHit(ray pmath.Ray, t float64, pObj, pObjErr pmath.Vec3) SurfaceInteraction {
	phi := math.Atan2(pObj.Y, pObj.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	u := phi / s.phiMax
	cosTheta := pObj.Z / s.radius
	theta := pmath.SafeACos(cosTheta)
	v := (theta - s.thetaZMin) / (s.thetaZMax - s.thetaZMin)

	zRadius := math.Sqrt(pObj.X*pObj.X + pObj.Y*pObj.Y)
	var dpdu, dpdv pmath.Vec3
	if zRadius == 0 {
		dpdu = pmath.Vec3{X: 1, Y: 0, Z: 0}
		dpdv = pmath.Vec3{X: 0, Y: 1, Z: 0}
	} else {
		cosPhi, sinPhi := pObj.X/zRadius, pObj.Y/zRadius
		dpdu = pmath.Vec3{X: -s.phiMax * pObj.Y, Y: s.phiMax * pObj.X, Z: 0}
		sinTheta := pmath.SafeSqrt(1 - cosTheta*cosTheta)
		dpdv = pmath.Vec3{X: pObj.Z * cosPhi, Y: pObj.Z * sinPhi, Z: -s.radius * sinTheta}.Multiply(s.thetaZMax - s.thetaZMin)
	}

	worldP := s.objectToWorld.ApplyPoint(pObj)
	worldPErr := s.objectToWorld.ApplyPoint3Interval(pmath.NewPoint3IntervalWithError(pObj, pObjErr))
	worldPErr = pmath.NewPoint3IntervalWithError(worldP, worldPErr.Error())

	n := s.objectToWorld.ApplyNormal(pObj).Normalize()
	if s.reverseOrientation != s.transformSwapsHandedness {
		n = n.Negate()
	}

	si := SurfaceInteraction{
		P:        worldPErr,
		UV:       pmath.Vec2{X: u, Y: v},
		DPDU:     s.objectToWorld.ApplyVector(dpdu),
		DPDV:     s.objectToWorld.ApplyVector(dpdv),
		ShadingN: n,
		T:        t,
	}
	si.SetFaceNormal(ray, n)
	si.ShadingN = si.Normal
	return si
}

func (s *Sphere) Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool) {
	t, pObj, pErr, ok := s.basicIntersect(ray, tMax)
	if !ok || t < tMin {
		return nil, false
	}
	si := s.interactionFromHit(ray, t, pObj, pErr)
	return &ShapeIntersection{SI: si, TFar: t}, true
}

func (s *Sphere) IntersectP(ray pmath.Ray, tMin, tMax float64) bool {
	t, _, _, ok := s.basicIntersect(ray, tMax)
	return ok && t >= tMin
}

// Sample chooses a point uniformly over the whole sphere of radius
// s.radius. Per the spec's note that a clipped sphere's area sampling
// need not restrict to the visible cap, zMin, zMax and phiMax are
// ignored here, so samples can fall outside the clipped surface; PDF
// still returns 1/Area() of the clipped surface.
func (s *Sphere) Sample(u pmath.Vec2) (ShapeSample, bool) {
	pObj := pmath.SampleUniformSphere(u).Multiply(s.radius)
	pObjErr := pObj.Abs().Multiply(pmath.Gamma(5))
	n := s.objectToWorld.ApplyNormal(pObj).Normalize()
	if s.reverseOrientation != s.transformSwapsHandedness {
		n = n.Negate()
	}
	worldPErr := s.objectToWorld.ApplyPoint3Interval(pmath.NewPoint3IntervalWithError(pObj, pObjErr))
	worldP := s.objectToWorld.ApplyPoint(pObj)
	worldPErr = pmath.NewPoint3IntervalWithError(worldP, worldPErr.Error())

	si := SurfaceInteraction{P: worldPErr, Normal: n, ShadingN: n, FrontFace: true}
	pdf := 1 / s.Area()
	return ShapeSample{SI: si, PDF: pdf}, true
}

func (s *Sphere) PDF(si SurfaceInteraction) float64 {
	return 1 / s.Area()
}

// SampleFrom importance-samples the solid angle subtended by the sphere
// from ctx.P: if ctx.P lies inside the sphere it falls back to uniform
// area sampling (there is no visible cone in that case), otherwise it
// samples a cone toward the sphere's silhouette as the teacher's
// SphereLight.sampleVisible does.
func (s *Sphere) SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool) {
	worldCenter := s.objectToWorld.ApplyPoint(pmath.Vec3{})
	// Approximate world radius: transform of a radius-length vector
	// along an arbitrary axis, adequate for the roughly-uniform scales
	// scene transforms use in this core.
	worldRadius := s.objectToWorld.ApplyVector(pmath.Vec3{X: s.radius, Y: 0, Z: 0}).Length()

	distToCenter2 := ctx.P.Subtract(worldCenter).LengthSquared()
	if distToCenter2 <= worldRadius*worldRadius {
		ss, ok := s.Sample(u)
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
		pdf := ss.PDF * dist2 / cosTheta
		return ShapeSample{SI: ss.SI, PDF: pdf}, true
	}

	distToCenter := math.Sqrt(distToCenter2)
	sinThetaMax := worldRadius / distToCenter
	sinThetaMax2 := sinThetaMax * sinThetaMax
	cosThetaMax := pmath.SafeSqrt(1 - sinThetaMax2)

	w := worldCenter.Subtract(ctx.P).Multiply(1 / distToCenter)
	v1, v2 := pmath.CoordinateSystem(w)

	cosTheta := (1-u.X) + u.X*cosThetaMax
	sinTheta2 := 1 - cosTheta*cosTheta
	if sinThetaMax2 < 0.00068523 { // sin^2(1.5 deg), matches pbrt's small-angle branch
		sinTheta2 = sinThetaMax2 * u.X
		cosTheta = math.Sqrt(1 - sinTheta2)
	}

	cosAlpha := sinTheta2/sinThetaMax + cosTheta*pmath.SafeSqrt(1-sinTheta2/sinThetaMax2)
	sinAlpha := pmath.SafeSqrt(1 - cosAlpha*cosAlpha)
	phi := u.Y * 2 * math.Pi

	n := v1.Multiply(sinAlpha * math.Cos(phi)).Add(v2.Multiply(sinAlpha * math.Sin(phi))).Add(w.Multiply(cosAlpha)).Negate()
	pWorld := worldCenter.Add(n.Multiply(worldRadius))
	pdf := pmath.UniformConePDF(cosThetaMax)
	si := SurfaceInteraction{
		P:        pmath.NewPoint3IntervalWithError(pWorld, pWorld.Abs().Multiply(pmath.Gamma(5))),
		Normal:   n,
		ShadingN: n,
		FrontFace: true,
	}
	return ShapeSample{SI: si, PDF: pdf}, true
}

func (s *Sphere) PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64 {
	worldCenter := s.objectToWorld.ApplyPoint(pmath.Vec3{})
	worldRadius := s.objectToWorld.ApplyVector(pmath.Vec3{X: s.radius, Y: 0, Z: 0}).Length()
	distToCenter2 := ctx.P.Subtract(worldCenter).LengthSquared()

	if distToCenter2 <= worldRadius*worldRadius {
		ray := pmath.NewRay(ctx.P, wi)
		hit, ok := s.Intersect(ray, 1e-6, math.Inf(1))
		if !ok {
			return 0
		}
		dist2 := hit.SI.Point().Subtract(ctx.P).LengthSquared()
		cosTheta := hit.SI.Normal.AbsDot(wi.Normalize().Negate())
		if cosTheta == 0 {
			return 0
		}
		return (1 / s.Area()) * dist2 / cosTheta
	}

	sinThetaMax2 := worldRadius * worldRadius / distToCenter2
	cosThetaMax := pmath.SafeSqrt(1 - sinThetaMax2)
	return pmath.UniformConePDF(cosThetaMax)
}
