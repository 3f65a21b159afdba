package shape

import "github.com/df07/go-shape-core/pkg/pmath"

// Kind identifies which concrete shape a ShapeHandle wraps.
type Kind int

const (
	KindSphere Kind = iota
	KindDisk
	KindCylinder
	KindTriangle
	KindBilinearPatch
	KindCurve
)

// ShapeHandle wraps one shape of the closed set of kinds as a tagged
// struct, following pbrt's ShapeHandle tagged-union design: the kind is
// fixed at construction and never grows a new case at runtime. The one
// switch on the kind lives in shape(), which returns the concrete value
// as a Shape; each method then calls it through the Shape interface, so
// every call still goes through an interface method call.
type ShapeHandle struct {
	kind    Kind
	sphere  *Sphere
	disk    *Disk
	cyl     *Cylinder
	tri     *Triangle
	patch   *BilinearPatch
	curve   *Curve
}

func NewSphereHandle(s *Sphere) ShapeHandle     { return ShapeHandle{kind: KindSphere, sphere: s} }
func NewDiskHandle(d *Disk) ShapeHandle         { return ShapeHandle{kind: KindDisk, disk: d} }
func NewCylinderHandle(c *Cylinder) ShapeHandle { return ShapeHandle{kind: KindCylinder, cyl: c} }
func NewTriangleHandle(t *Triangle) ShapeHandle { return ShapeHandle{kind: KindTriangle, tri: t} }
func NewBilinearPatchHandle(p *BilinearPatch) ShapeHandle {
	return ShapeHandle{kind: KindBilinearPatch, patch: p}
}
func NewCurveHandle(c *Curve) ShapeHandle { return ShapeHandle{kind: KindCurve, curve: c} }

// Kind reports which concrete shape this handle wraps.
func (h ShapeHandle) Kind() Kind { return h.kind }

// shape returns the underlying concrete value as the Shape interface,
// the single place the tagged switch lives; every other method on
// ShapeHandle just forwards through this.
func (h ShapeHandle) shape() Shape {
	switch h.kind {
	case KindSphere:
		return h.sphere
	case KindDisk:
		return h.disk
	case KindCylinder:
		return h.cyl
	case KindTriangle:
		return h.tri
	case KindBilinearPatch:
		return h.patch
	case KindCurve:
		return h.curve
	default:
		return nil
	}
}

func (h ShapeHandle) Bounds() pmath.Bounds3 { return h.shape().Bounds() }

func (h ShapeHandle) NormalBounds() pmath.DirectionCone { return h.shape().NormalBounds() }

func (h ShapeHandle) Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool) {
	return h.shape().Intersect(ray, tMin, tMax)
}

func (h ShapeHandle) IntersectP(ray pmath.Ray, tMin, tMax float64) bool {
	return h.shape().IntersectP(ray, tMin, tMax)
}

func (h ShapeHandle) Area() float64 { return h.shape().Area() }

func (h ShapeHandle) Sample(u pmath.Vec2) (ShapeSample, bool) { return h.shape().Sample(u) }

func (h ShapeHandle) PDF(si SurfaceInteraction) float64 { return h.shape().PDF(si) }

func (h ShapeHandle) SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool) {
	return h.shape().SampleFrom(ctx, u)
}

func (h ShapeHandle) PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64 {
	return h.shape().PDFFrom(ctx, wi)
}
