package pmath

import "math"

// SampleUniformDiskConcentric maps a uniform [0,1)^2 sample onto the unit
// disk using Shirley & Chiu's concentric mapping, which (unlike the naive
// r=sqrt(u), theta=2*pi*v mapping) preserves sample spacing so adjacent
// input samples stay adjacent on the disk.
func SampleUniformDiskConcentric(u Vec2) Vec2 {
	uOffset := Vec2{X: 2*u.X - 1, Y: 2*u.Y - 1}
	if uOffset.X == 0 && uOffset.Y == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = (math.Pi / 4) * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = (math.Pi / 2) - (math.Pi/4)*(uOffset.X/uOffset.Y)
	}
	return Vec2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// SampleUniformSphere maps a uniform [0,1)^2 sample onto the unit sphere.
func SampleUniformSphere(u Vec2) Vec3 {
	z := 1 - 2*u.X
	r := SafeSqrt(1 - z*z)
	phi := 2 * math.Pi * u.Y
	return Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}

// UniformSpherePDF is the constant solid-angle density of
// SampleUniformSphere, 1/(4*pi).
func UniformSpherePDF() float64 {
	return 1 / (4 * math.Pi)
}

// SampleUniformCone maps a uniform [0,1)^2 sample onto a cone of
// directions around +Z with cosine half-angle cosThetaMax, used by
// Sphere.Sample(ctx, u) when a reference point sees the whole sphere
// silhouette rather than the full sphere.
func SampleUniformCone(u Vec2, cosThetaMax float64) Vec3 {
	cosTheta := (1 - u.X) + u.X*cosThetaMax
	sinTheta := SafeSqrt(1 - cosTheta*cosTheta)
	phi := u.Y * 2 * math.Pi
	return SphericalDirection(sinTheta, cosTheta, phi)
}

// UniformConePDF is the constant solid-angle density of SampleUniformCone.
func UniformConePDF(cosThetaMax float64) float64 {
	return 1 / (2 * math.Pi * (1 - cosThetaMax))
}

// SampleUniformTriangle maps a uniform [0,1)^2 sample to barycentric
// coordinates (b0, b1, 1-b0-b1) uniformly distributed over a triangle,
// using the low-distortion square-root-free mapping from Heitz 2019.
func SampleUniformTriangle(u Vec2) (b0, b1 float64) {
	if u.X < u.Y {
		b0 = u.X / 2
		b1 = u.Y - b0
	} else {
		b1 = u.Y / 2
		b0 = u.X - b1
	}
	return b0, b1
}

// SphericalTriangleArea returns the solid angle subtended by a spherical
// triangle whose vertices, as seen from the sampling origin, are the unit
// directions a, b, c (Van Oosterom & Strang's formula, robust for
// arbitrarily small or large triangles unlike summing interior angles
// minus pi).
func SphericalTriangleArea(a, b, c Vec3) float64 {
	numerator := a.Dot(b.Cross(c))
	if numerator == 0 {
		return 0
	}
	denominator := 1 + a.Dot(b) + a.Dot(c) + b.Dot(c)
	return 2 * math.Abs(math.Atan2(numerator, denominator))
}

// SampleSphericalTriangle samples a point uniformly by solid angle within
// the spherical triangle formed by projecting world-space vertices p0,
// p1, p2 onto the unit sphere around origin, following Arvo's spherical
// triangle sampling algorithm as adapted in pbrt's shapes.h. It returns
// the barycentric coordinates of the corresponding point on the planar
// triangle and the triangle's solid angle (the reciprocal of the uniform
// PDF), matching pbrt's SampleSphericalTriangle which likewise returns
// only barycentrics, not the sampled direction itself.
func SampleSphericalTriangle(p0, p1, p2, origin Vec3, u Vec2) (b0, b1, b2, solidAngle float64) {
	a := p0.Subtract(origin).Normalize()
	b := p1.Subtract(origin).Normalize()
	c := p2.Subtract(origin).Normalize()

	axb := a.Cross(b)
	bxc := b.Cross(c)
	cxa := c.Cross(a)
	if axb.LengthSquared() == 0 || bxc.LengthSquared() == 0 || cxa.LengthSquared() == 0 {
		return 0, 0, 0, 0
	}
	axb = axb.Normalize()
	bxc = bxc.Normalize()
	cxa = cxa.Normalize()

	alpha := SafeACos(cxa.Negate().Dot(axb))
	beta := SafeACos(axb.Negate().Dot(bxc))
	gamma := SafeACos(bxc.Negate().Dot(cxa))

	solidAngle = alpha + beta + gamma - math.Pi
	if solidAngle <= 0 {
		return 0, 0, 0, 0
	}

	areaPrime := u.X * solidAngle
	sinPhi := math.Sin(areaPrime-alpha)*math.Cos(alpha) - math.Cos(areaPrime-alpha)*math.Sin(alpha)
	cosPhi := math.Cos(areaPrime-alpha)*math.Cos(alpha) + math.Sin(areaPrime-alpha)*math.Sin(alpha)
	cosAlpha := math.Cos(alpha)
	sinAlpha := math.Sin(alpha)

	uu := cosPhi - cosAlpha
	vv := sinPhi + sinAlpha*a.Dot(b)

	cosBetaP := ((vv*cosPhi - uu*sinPhi) * cosAlpha - vv) / ((vv*sinPhi + uu*cosPhi) * sinAlpha)
	cosBetaP = Clamp(cosBetaP, -1, 1)
	sinBetaP := SafeSqrt(1 - cosBetaP*cosBetaP)

	cPrime := c.Multiply(cosBetaP).Add(orthogonalComponent(c, a, b).Multiply(sinBetaP))

	cosTheta := 1 - u.Y*(1-cPrime.Dot(a))
	sinTheta := SafeSqrt(1 - cosTheta*cosTheta)
	w := cPrime.Subtract(a.Multiply(a.Dot(cPrime))).Normalize()
	dir := a.Multiply(cosTheta).Add(w.Multiply(sinTheta))

	b0, b1, b2 = barycentricFromDirection(p0, p1, p2, origin, dir)
	return b0, b1, b2, solidAngle
}

// orthogonalComponent returns the component of c orthogonal to a, scaled
// to unit length, resolved within the plane spanned by a and b so the
// spherical excess construction in SampleSphericalTriangle stays
// well-defined even when c is nearly parallel to a.
func orthogonalComponent(c, a, b Vec3) Vec3 {
	perp := c.Subtract(a.Multiply(a.Dot(c)))
	if perp.LengthSquared() < 1e-14 {
		perp = b.Subtract(a.Multiply(a.Dot(b)))
	}
	return perp.Normalize()
}

// barycentricFromDirection recovers barycentric coordinates of the point
// where the ray from origin along dir crosses the plane of triangle
// (p0,p1,p2), used to turn a solid-angle sample back into a point on the
// physical triangle for shading and PDF evaluation.
func barycentricFromDirection(p0, p1, p2, origin, dir Vec3) (b0, b1, b2 float64) {
	e1 := p1.Subtract(p0)
	e2 := p2.Subtract(p0)
	pvec := dir.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < 1e-16 {
		return 1.0 / 3, 1.0 / 3, 1.0 / 3
	}
	invDet := 1 / det
	tvec := origin.Subtract(p0)
	u := tvec.Dot(pvec) * invDet
	qvec := tvec.Cross(e1)
	v := dir.Dot(qvec) * invDet
	b1 = u
	b2 = v
	b0 = 1 - u - v
	return b0, b1, b2
}

// InvertSphericalTriangleSample recovers the (u, v) sample that would
// have produced direction dir under SampleSphericalTriangle, needed by
// solid-angle-sampled area lights that must evaluate the PDF of a
// direction chosen by some other strategy (e.g. BSDF sampling then MIS
// weighting against the light's spherical-triangle PDF).
func InvertSphericalTriangleSample(p0, p1, p2, origin, dir Vec3) Vec2 {
	a := p0.Subtract(origin).Normalize()
	b := p1.Subtract(origin).Normalize()
	c := p2.Subtract(origin).Normalize()

	axb := a.Cross(b).Normalize()
	bxc := b.Cross(c).Normalize()
	cxa := c.Cross(a).Normalize()

	alpha := SafeACos(cxa.Negate().Dot(axb))
	beta := SafeACos(axb.Negate().Dot(bxc))
	gamma := SafeACos(bxc.Negate().Dot(cxa))
	solidAngle := alpha + beta + gamma - math.Pi
	if solidAngle <= 0 {
		return Vec2{}
	}

	cosTheta := dir.Dot(a)
	uY := (1 - cosTheta) / (1 - c.Dot(a))
	uY = Clamp(uY, 0, 1)

	// Area swept from vertex a to dir's projection, relative to the
	// triangle's total solid angle, inverts the u.X mapping.
	areaPartial := SphericalTriangleArea(a, b, dir.Normalize())
	uX := Clamp(areaPartial/solidAngle, 0, 1)

	return Vec2{X: uX, Y: uY}
}

// SampleBilinear samples (u, v) in [0,1)^2 with density proportional to a
// bilinear function with corner weights w[0..3] at (0,0), (1,0), (0,1),
// (1,1), used by BilinearPatch.Sample to importance-sample by emitted
// radiance or solid angle when corner weights are non-uniform.
func SampleBilinear(u Vec2, w [4]float64) Vec2 {
	v := sample1DLinear(u.Y, w[0]+w[1], w[2]+w[3])
	uu := sample1DLinear(u.X, lerpScalar(v, w[0], w[2]), lerpScalar(v, w[1], w[3]))
	return Vec2{X: uu, Y: v}
}

// lerpScalar linearly interpolates two float64 values.
func lerpScalar(t, a, b float64) float64 {
	return a*(1-t) + b*t
}

// sample1DLinear samples x in [0,1) with density linearly interpolating
// from a at x=0 to b at x=1.
func sample1DLinear(u, a, b float64) float64 {
	if a == b {
		return u
	}
	x := (a - SafeSqrt(lerpScalar(u, a*a, b*b))) / (a - b)
	return Clamp(x, 0, 1)
}

// BilinearPDF returns the sampling density SampleBilinear places at
// (u, v) given the same four corner weights.
func BilinearPDF(p Vec2, w [4]float64) float64 {
	sum := w[0] + w[1] + w[2] + w[3]
	if sum == 0 {
		return 1
	}
	value := (1-p.X)*(1-p.Y)*w[0] + p.X*(1-p.Y)*w[1] + (1-p.X)*p.Y*w[2] + p.X*p.Y*w[3]
	return 4 * value / sum
}
