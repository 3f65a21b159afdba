package shape

import "github.com/df07/go-shape-core/pkg/pmath"

// Shape is the common interface every geometric primitive implements:
// bounding, intersection, and area/solid-angle sampling for direct
// lighting. It plays the role of the teacher's geometry.Shape interface,
// widened with the sampling methods the teacher instead bolts on per
// light type (see pkg/lights/sphere_light.go).
type Shape interface {
	// Bounds returns a world-space axis-aligned bounding box.
	Bounds() pmath.Bounds3

	// NormalBounds returns a cone bounding the shape's possible surface
	// normals, used by light-sampling code upstream of this package to
	// cull emitters that can't face a receiving point.
	NormalBounds() pmath.DirectionCone

	// Intersect finds the closest intersection with ray in
	// [tMin, tMax], mirroring the teacher's Hit(ray, tMin, tMax)
	// signature and its (*T, bool) idiom for "found vs not found".
	Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool)

	// IntersectP is a cheaper existence-only test, used by shadow rays
	// that only need to know whether anything blocks the path.
	IntersectP(ray pmath.Ray, tMin, tMax float64) bool

	// Area returns the shape's surface area.
	Area() float64

	// Sample chooses a point on the shape's surface with respect to
	// area, given a uniform sample in [0,1)^2. Returns false if the
	// shape has zero area (degenerate parameters).
	Sample(u pmath.Vec2) (ShapeSample, bool)

	// PDF returns the probability density (w.r.t. area) that Sample
	// would produce a sample at si.Point(). This is 1/Area() for shapes
	// whose Sample is uniform over area; BilinearPatch is the exception,
	// importance-sampling non-planar patches by their surface Jacobian
	// and returning the matching non-constant density.
	PDF(si SurfaceInteraction) float64

	// SampleFrom chooses a direction from ctx.P toward the shape,
	// importance-sampled by solid angle where practical, given a
	// uniform sample in [0,1)^2. Returns false if no point is visible
	// or samplable from ctx.
	SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool)

	// PDFFrom returns the solid-angle probability density that
	// SampleFrom(ctx, ·) produces a sample in direction wi.
	PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64
}
