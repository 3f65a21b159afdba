package shape

import (
	"fmt"
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
)

// Disk is a flat annulus in the object-space z=height plane, following
// the teacher's Disc but generalized to pbrt's inner-radius/phiMax
// parameterization and transformed via an explicit Transform.
type Disk struct {
	objectToWorld            *pmath.Transform
	worldToObject             *pmath.Transform
	height                    float64
	radius, innerRadius       float64
	phiMax                    float64
	reverseOrientation        bool
	transformSwapsHandedness  bool
}

// DiskParams collects NewDisk's optional parameters.
type DiskParams struct {
	ObjectToWorld      *pmath.Transform
	Height             float64
	Radius             float64
	InnerRadius        float64 // zero for a full disk
	PhiMax             float64 // radians; zero defaults to 2*pi
	ReverseOrientation bool
}

// NewDisk creates a disk.
func NewDisk(p DiskParams) (*Disk, error) {
	if p.Radius <= 0 {
		return nil, fmt.Errorf("shape: disk radius must be positive, got %g", p.Radius)
	}
	if p.InnerRadius < 0 || p.InnerRadius >= p.Radius {
		return nil, fmt.Errorf("shape: disk inner radius %g must be in [0, radius)", p.InnerRadius)
	}
	if p.ObjectToWorld == nil {
		p.ObjectToWorld = pmath.Identity()
	}
	phiMax := p.PhiMax
	if phiMax <= 0 {
		phiMax = 2 * math.Pi
	}
	phiMax = pmath.Clamp(phiMax, 0, 2*math.Pi)

	return &Disk{
		objectToWorld:            p.ObjectToWorld,
		worldToObject:            p.ObjectToWorld.Inverse(),
		height:                   p.Height,
		radius:                   p.Radius,
		innerRadius:              p.InnerRadius,
		phiMax:                   phiMax,
		reverseOrientation:       p.ReverseOrientation,
		transformSwapsHandedness: p.ObjectToWorld.SwapsHandedness(),
	}, nil
}

func (d *Disk) Bounds() pmath.Bounds3 {
	objMin := pmath.Vec3{X: -d.radius, Y: -d.radius, Z: d.height}
	objMax := pmath.Vec3{X: d.radius, Y: d.radius, Z: d.height}
	p0 := d.objectToWorld.ApplyPoint(objMin)
	p1 := d.objectToWorld.ApplyPoint(objMax)
	return pmath.NewBounds3FromPoints(p0, p1).Expand(1e-6)
}

func (d *Disk) NormalBounds() pmath.DirectionCone {
	n := d.objectToWorld.ApplyNormal(pmath.Vec3{X: 0, Y: 0, Z: 1}).Normalize()
	if d.reverseOrientation != d.transformSwapsHandedness {
		n = n.Negate()
	}
	return pmath.NewDirectionCone(n, 1)
}

func (d *Disk) Area() float64 {
	return d.phiMax * 0.5 * (d.radius*d.radius - d.innerRadius*d.innerRadius)
}

func (d *Disk) basicIntersect(ray pmath.Ray, tMin, tMax float64) (t float64, pHit pmath.Vec3, ok bool) {
	oObj := d.worldToObject.ApplyPoint(ray.Origin)
	dObj := d.worldToObject.ApplyVector(ray.Direction)

	if dObj.Z == 0 {
		return 0, pmath.Vec3{}, false
	}
	tShapeHit := (d.height - oObj.Z) / dObj.Z
	if tShapeHit <= tMin || tShapeHit >= tMax {
		return 0, pmath.Vec3{}, false
	}

	pObj := oObj.Add(dObj.Multiply(tShapeHit))
	dist2 := pObj.X*pObj.X + pObj.Y*pObj.Y
	if dist2 > d.radius*d.radius || dist2 < d.innerRadius*d.innerRadius {
		return 0, pmath.Vec3{}, false
	}
	phi := math.Atan2(pObj.Y, pObj.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi > d.phiMax {
		return 0, pmath.Vec3{}, false
	}
	return tShapeHit, pObj, true
}

func (d *Disk) interactionFromHit(ray pmath.Ray, t float64, pObj pmath.Vec3) SurfaceInteraction {
	dist2 := pObj.X*pObj.X + pObj.Y*pObj.Y
	rHit := math.Sqrt(dist2)
	phi := math.Atan2(pObj.Y, pObj.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	u := phi / d.phiMax
	v := (d.radius - rHit) / (d.radius - d.innerRadius)

	dpdu := pmath.Vec3{X: -d.phiMax * pObj.Y, Y: d.phiMax * pObj.X, Z: 0}
	dpdv := pmath.Vec3{X: pObj.X, Y: pObj.Y, Z: 0}
	if rHit != 0 {
		dpdv = dpdv.Multiply((d.innerRadius - d.radius) / rHit)
	}

	n := d.objectToWorld.ApplyNormal(pmath.Vec3{X: 0, Y: 0, Z: 1}).Normalize()
	if d.reverseOrientation != d.transformSwapsHandedness {
		n = n.Negate()
	}

	worldP := d.objectToWorld.ApplyPoint(pObj)
	pErr := pmath.Vec3{}
	si := SurfaceInteraction{
		P:        pmath.NewPoint3IntervalWithError(worldP, pErr),
		UV:       pmath.Vec2{X: u, Y: v},
		DPDU:     d.objectToWorld.ApplyVector(dpdu),
		DPDV:     d.objectToWorld.ApplyVector(dpdv),
		ShadingN: n,
		T:        t,
	}
	si.SetFaceNormal(ray, n)
	si.ShadingN = si.Normal
	return si
}

func (d *Disk) Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool) {
	t, pObj, ok := d.basicIntersect(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	si := d.interactionFromHit(ray, t, pObj)
	return &ShapeIntersection{SI: si, TFar: t}, true
}

func (d *Disk) IntersectP(ray pmath.Ray, tMin, tMax float64) bool {
	_, _, ok := d.basicIntersect(ray, tMin, tMax)
	return ok
}

func (d *Disk) Sample(u pmath.Vec2) (ShapeSample, bool) {
	pd := pmath.SampleUniformDiskConcentric(u)
	pObj := pmath.Vec3{X: pd.X * d.radius, Y: pd.Y * d.radius, Z: d.height}

	n := d.objectToWorld.ApplyNormal(pmath.Vec3{X: 0, Y: 0, Z: 1}).Normalize()
	if d.reverseOrientation != d.transformSwapsHandedness {
		n = n.Negate()
	}
	worldP := d.objectToWorld.ApplyPoint(pObj)
	si := SurfaceInteraction{
		P:         pmath.NewPoint3IntervalWithError(worldP, pmath.Vec3{}),
		Normal:    n,
		ShadingN:  n,
		FrontFace: true,
	}
	return ShapeSample{SI: si, PDF: 1 / d.Area()}, true
}

func (d *Disk) PDF(si SurfaceInteraction) float64 {
	return 1 / d.Area()
}

// SampleFrom falls back to area sampling with the solid-angle Jacobian
// applied, the standard technique for planar shapes since there is no
// cheaper cone construction analogous to the sphere's.
func (d *Disk) SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool) {
	ss, ok := d.Sample(u)
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

func (d *Disk) PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64 {
	ray := pmath.NewRay(ctx.P, wi)
	hit, ok := d.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		return 0
	}
	dist2 := hit.SI.Point().Subtract(ctx.P).LengthSquared()
	cosTheta := hit.SI.Normal.AbsDot(wi.Normalize().Negate())
	if cosTheta == 0 {
		return 0
	}
	return (1 / d.Area()) * dist2 / cosTheta
}
