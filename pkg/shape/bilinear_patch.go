package shape

import (
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
	"github.com/df07/go-shape-core/pkg/pmesh"
)

// BilinearPatch is a single quadrilateral patch p(u,v) = lerp(u, lerp(v,
// p00,p01), lerp(v,p10,p11)) referencing a shared BilinearPatchMesh by
// handle, mirroring Triangle's mesh-handle layout.
type BilinearPatch struct {
	meshHandle int
	patchIndex int
	area       float64
	// jGrid importance-samples non-planar patches proportional to the
	// surface Jacobian; nil for quads, where parameter-uniform sampling
	// is already area-uniform.
	jGrid *jacobianGrid
}

// jacobianGridN is the resolution of the piecewise-constant grid used both
// to estimate a non-quad patch's area and to importance-sample it by
// Jacobian.
const jacobianGridN = 8

// jacobianGrid is a piecewise-constant approximation of |dp/du x dp/dv|
// over the unit square, used to importance-sample non-planar bilinear
// patches proportional to their surface area element.
type jacobianGrid struct {
	weights [jacobianGridN][jacobianGridN]float64
	rowSums [jacobianGridN]float64
	total   float64
}

// sample inverts the piecewise-constant CDF built from weights: u.X selects
// a row by the marginal (row-sum) distribution, u.Y selects a column within
// that row by the conditional distribution, and both selections are
// rescaled to a continuous position inside the chosen cell. Returns the
// UV-space density at the sampled point.
func (g *jacobianGrid) sample(u pmath.Vec2) (uu, vv, pdf float64) {
	if g.total <= 0 {
		return u.X, u.Y, 1
	}
	target := u.X * g.total
	row := jacobianGridN - 1
	var accum float64
	for i := 0; i < jacobianGridN-1; i++ {
		if target < accum+g.rowSums[i] {
			row = i
			break
		}
		accum += g.rowSums[i]
	}
	rowSum := g.rowSums[row]
	if rowSum <= 0 {
		return u.X, u.Y, 1
	}
	fracU := pmath.Clamp((target-accum)/rowSum, 0, 1)
	uu = (float64(row) + fracU) / jacobianGridN

	target2 := u.Y * rowSum
	col := jacobianGridN - 1
	var accum2 float64
	for j := 0; j < jacobianGridN-1; j++ {
		w := g.weights[row][j]
		if target2 < accum2+w {
			col = j
			break
		}
		accum2 += w
	}
	cellWeight := g.weights[row][col]
	if cellWeight <= 0 {
		return uu, u.Y, 1
	}
	fracV := pmath.Clamp((target2-accum2)/cellWeight, 0, 1)
	vv = (float64(col) + fracV) / jacobianGridN

	pdf = cellWeight * jacobianGridN * jacobianGridN / g.total
	return uu, vv, pdf
}

// densityAt returns the UV-space density sample would have assigned to the
// cell containing (u, v), used by PDF to stay consistent with Sample for
// an arbitrary point rather than only ones just sampled.
func (g *jacobianGrid) densityAt(u, v float64) float64 {
	if g.total <= 0 {
		return 1
	}
	i := int(pmath.Clamp(u, 0, 0.999999) * jacobianGridN)
	j := int(pmath.Clamp(v, 0, 0.999999) * jacobianGridN)
	return g.weights[i][j] * jacobianGridN * jacobianGridN / g.total
}

// NewBilinearPatch wraps patch patchIndex of the mesh registered under
// meshHandle, precomputing its area (closed-form for a planar quad,
// otherwise by fixed-resolution midpoint quadrature over a
// jacobianGridN x jacobianGridN grid that doubles as the
// Jacobian-importance-sampling distribution for Sample).
func NewBilinearPatch(meshHandle, patchIndex int) *BilinearPatch {
	bp := &BilinearPatch{meshHandle: meshHandle, patchIndex: patchIndex}
	if bp.IsQuad() {
		bp.area = bp.closedFormArea()
	} else {
		bp.jGrid = bp.buildJacobianGrid()
		// jGrid.total already sums per-cell area contributions
		// (jacobian * step * step), so it is the area estimate directly.
		bp.area = bp.jGrid.total
	}
	return bp
}

func (bp *BilinearPatch) mesh() *pmesh.BilinearPatchMesh {
	return pmesh.GetBilinearPatchMesh(bp.meshHandle)
}

func (bp *BilinearPatch) corners() (p00, p10, p01, p11 pmath.Vec3) {
	return bp.mesh().PatchVertices(bp.patchIndex)
}

// IsQuad reports whether the four corners form a planar parallelogram,
// the case pbrt special-cases for a closed-form area and for uniform
// parameter-space sampling. A quad's Jacobian is constant, so sampling
// (u,v) uniformly already samples area uniformly and Sample/PDF use the
// cheap 1/Area() path; a non-quad's Jacobian varies across the patch, so
// Sample instead importance-samples proportional to it via jGrid and PDF
// evaluates the matching non-constant density.
func (bp *BilinearPatch) IsQuad() bool {
	p00, p10, p01, p11 := bp.corners()
	oppositeSum := p00.Add(p11)
	otherSum := p10.Add(p01)
	const eps = 1e-7
	return oppositeSum.Subtract(otherSum).LengthSquared() < eps*eps
}

func (bp *BilinearPatch) point(u, v float64) pmath.Vec3 {
	p00, p10, p01, p11 := bp.corners()
	return pmath.Lerp(u, pmath.Lerp(v, p00, p01), pmath.Lerp(v, p10, p11))
}

// dpdu is the patch's partial derivative w.r.t. u at parametric v; it
// depends only on v because the surface is bilinear in each parameter.
func (bp *BilinearPatch) dpdu(v float64) pmath.Vec3 {
	p00, p10, p01, p11 := bp.corners()
	return pmath.Lerp(v, p10, p11).Subtract(pmath.Lerp(v, p00, p01))
}

// dpdv is the patch's partial derivative w.r.t. v at parametric u.
func (bp *BilinearPatch) dpdv(u float64) pmath.Vec3 {
	p00, p10, p01, p11 := bp.corners()
	return pmath.Lerp(u, p01, p11).Subtract(pmath.Lerp(u, p00, p10))
}

// jacobian is the surface area element |dp/du x dp/dv| at (u, v), constant
// over the whole patch only when it is planar.
func (bp *BilinearPatch) jacobian(u, v float64) float64 {
	return bp.dpdu(v).Cross(bp.dpdv(u)).Length()
}

// closedFormArea is the parallelogram area formula valid when IsQuad().
func (bp *BilinearPatch) closedFormArea() float64 {
	p00, p10, p01, p11 := bp.corners()
	return 0.5 * (p10.Subtract(p00).Cross(p01.Subtract(p00)).Length() +
		p10.Subtract(p11).Cross(p01.Subtract(p11)).Length())
}

// buildJacobianGrid integrates the surface area element |dp/du x dp/dv|
// over the unit square with a fixed-resolution grid, adequate for the
// direct-lighting importance weights this core uses area for (unlike
// primary-ray-density estimation, which would want an adaptive scheme).
// The resulting grid doubles as both the area estimate and the
// Jacobian-importance-sampling distribution for non-quad patches.
func (bp *BilinearPatch) buildJacobianGrid() *jacobianGrid {
	g := &jacobianGrid{}
	const step = 1.0 / jacobianGridN
	for i := 0; i < jacobianGridN; i++ {
		u := (float64(i) + 0.5) * step
		var rowSum float64
		for j := 0; j < jacobianGridN; j++ {
			v := (float64(j) + 0.5) * step
			w := bp.jacobian(u, v) * step * step
			g.weights[i][j] = w
			rowSum += w
		}
		g.rowSums[i] = rowSum
		g.total += rowSum
	}
	return g
}

func (bp *BilinearPatch) Bounds() pmath.Bounds3 {
	p00, p10, p01, p11 := bp.corners()
	return pmath.NewBounds3FromPoints(p00, p10, p01, p11)
}

func (bp *BilinearPatch) NormalBounds() pmath.DirectionCone {
	p00, p10, p01, p11 := bp.corners()
	n00 := p10.Subtract(p00).Cross(p01.Subtract(p00)).Normalize()
	n11 := p11.Subtract(p10).Cross(p11.Subtract(p01)).Normalize()
	// A twisted (non-planar) patch's normal varies continuously between
	// its corners; bounding just the two diagonal corner normals with a
	// cone wide enough to cover both is conservative without needing
	// the true swept bound.
	cosTheta := math.Min(1, n00.Dot(n11))
	axis := n00.Add(n11)
	if axis.LengthSquared() == 0 {
		return pmath.EntireSphere()
	}
	return pmath.NewDirectionCone(axis.Normalize(), math.Max(-1, cosTheta-0.5))
}

func (bp *BilinearPatch) Area() float64 {
	return bp.area
}

// intersect implements pbrt's closed-form bilinear patch intersection
// (Ramsey, Hanrahan & Grimm's method): eliminating v from the bilinear
// surface equation leaves a quadratic in u, solved with Viete's formula
// for the numerically stable root pairing.
func (bp *BilinearPatch) intersect(ray pmath.Ray, tMin, tMax float64) (t, u, v float64, ok bool) {
	p00, p10, p01, p11 := bp.corners()

	qn := p10.Subtract(p00).Cross(p01.Subtract(p11))
	e11 := p11.Subtract(p10)
	e00 := p01.Subtract(p00)
	q00 := p00.Subtract(ray.Origin)
	q10 := p10.Subtract(ray.Origin)

	a := q00.Cross(ray.Direction).Dot(e00)
	c := qn.Dot(ray.Direction)
	b := q10.Cross(ray.Direction).Dot(e11)
	b -= a + c

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, 0, false
	}
	sqrtDisc := math.Sqrt(disc)

	var u1, u2 float64
	tBest := tMax
	found := false

	if c == 0 {
		u1 = -a / b
		u2 = -1
	} else {
		u1 = (-b - math.Copysign(sqrtDisc, b)) / 2
		u2 = a / u1
		u1 /= c
	}

	tryRoot := func(uCand float64) {
		if uCand < 0 || uCand > 1 {
			return
		}
		pa := pmath.Lerp(uCand, q00, q10)
		pb := pmath.Lerp(uCand, e00, e11)
		n := ray.Direction.Cross(pb)
		det := n.Dot(n)
		n = n.Cross(pa)
		tCand := n.Dot(pb)
		vCand := n.Dot(ray.Direction)
		if det == 0 {
			return
		}
		tCand /= det
		if tCand > tMin && tCand < tBest && vCand >= 0 && vCand <= det {
			tBest = tCand
			u = uCand
			v = vCand / det
			found = true
		}
	}
	tryRoot(u1)
	tryRoot(u2)

	if !found || tBest >= tMax {
		return 0, 0, 0, false
	}
	return tBest, u, v, true
}

// evalPatch computes position, derivatives, error bound, and unoriented
// geometric/shading normals at parametric (u,v), independent of any
// particular ray — shared by Intersect (which then orients the normal
// against the incoming ray) and Sample (which has no ray to orient
// against and instead trusts the mesh's own orientation flags).
func (bp *BilinearPatch) evalPatch(u, v float64) (pHit, dpdu, dpdv, n, shadingN pmath.Vec3, uv pmath.Vec2, pErr pmath.Vec3) {
	p00, p10, p01, p11 := bp.corners()
	m := bp.mesh()

	pHit = pmath.Lerp(u, pmath.Lerp(v, p00, p01), pmath.Lerp(v, p10, p11))
	dpdu = pmath.Lerp(v, p10, p11).Subtract(pmath.Lerp(v, p00, p01))
	dpdv = pmath.Lerp(u, p01, p11).Subtract(pmath.Lerp(u, p00, p10))

	uv = pmath.Vec2{X: u, Y: v}
	if m.UV != nil {
		uv00, uv10, uv01, uv11 := m.PatchUVs(bp.patchIndex)
		uv = pmath.LerpVec2(u, pmath.LerpVec2(v, uv00, uv01), pmath.LerpVec2(v, uv10, uv11))
	}

	n = dpdu.Cross(dpdv)
	if n.LengthSquared() == 0 {
		n = pmath.Vec3{X: 0, Y: 0, Z: 1}
	} else {
		n = n.Normalize()
	}
	if m.ReverseOrientation != m.TransformSwapsHandedness {
		n = n.Negate()
	}

	maxCorner := p00.Abs().MaxComponent()
	maxCorner = math.Max(maxCorner, p10.Abs().MaxComponent())
	maxCorner = math.Max(maxCorner, p01.Abs().MaxComponent())
	maxCorner = math.Max(maxCorner, p11.Abs().MaxComponent())
	pErr = pmath.Vec3{X: maxCorner, Y: maxCorner, Z: maxCorner}.Multiply(pmath.Gamma(6))

	shadingN = n
	if m.HasNormals() {
		n00, n10, n01, n11 := m.PatchNormals(bp.patchIndex)
		ns := pmath.Lerp(u, pmath.Lerp(v, n00, n01), pmath.Lerp(v, n10, n11))
		if ns.LengthSquared() > 0 {
			shadingN = ns.Normalize()
			n = pmath.FaceForward(n, shadingN)
		}
	}
	return pHit, dpdu, dpdv, n, shadingN, uv, pErr
}

func (bp *BilinearPatch) interactionFromHit(ray pmath.Ray, t, u, v float64) SurfaceInteraction {
	pHit, dpdu, dpdv, n, shadingN, uv, pErr := bp.evalPatch(u, v)
	hasNormals := bp.mesh().HasNormals()

	si := SurfaceInteraction{
		P:        pmath.NewPoint3IntervalWithError(pHit, pErr),
		UV:       uv,
		DPDU:     dpdu,
		DPDV:     dpdv,
		ShadingN: shadingN,
		T:        t,
	}
	si.SetFaceNormal(ray, n)
	if hasNormals {
		si.ShadingN = shadingN
	} else {
		si.ShadingN = si.Normal
	}
	return si
}

func (bp *BilinearPatch) Intersect(ray pmath.Ray, tMin, tMax float64) (*ShapeIntersection, bool) {
	t, u, v, ok := bp.intersect(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	si := bp.interactionFromHit(ray, t, u, v)
	return &ShapeIntersection{SI: si, TFar: t}, true
}

func (bp *BilinearPatch) IntersectP(ray pmath.Ray, tMin, tMax float64) bool {
	_, _, _, ok := bp.intersect(ray, tMin, tMax)
	return ok
}

// Sample chooses a point with respect to area. Quads are planar, so
// parameter-uniform sampling is already area-uniform and uses the cheap
// constant density; general patches importance-sample (u,v) proportional
// to the Jacobian via jGrid and return the corresponding area-measure
// density pdfUV/Jacobian(u,v), which stays exact regardless of the grid's
// piecewise-constant approximation of the true continuous Jacobian.
func (bp *BilinearPatch) Sample(uSample pmath.Vec2) (ShapeSample, bool) {
	if bp.area == 0 {
		return ShapeSample{}, false
	}
	sampleUV := uSample
	pdf := 1 / bp.area
	if bp.jGrid != nil {
		uu, vv, pdfUV := bp.jGrid.sample(uSample)
		j := bp.jacobian(uu, vv)
		if j == 0 {
			return ShapeSample{}, false
		}
		sampleUV = pmath.Vec2{X: uu, Y: vv}
		pdf = pdfUV / j
	}
	pHit, _, _, n, shadingN, _, pErr := bp.evalPatch(sampleUV.X, sampleUV.Y)
	si := SurfaceInteraction{
		P:         pmath.NewPoint3IntervalWithError(pHit, pErr),
		UV:        sampleUV,
		Normal:    n,
		ShadingN:  shadingN,
		FrontFace: true,
	}
	return ShapeSample{SI: si, PDF: pdf}, true
}

// PDF returns the area density Sample would assign to si.Point(), read
// back from si.UV so it stays consistent with Sample's Jacobian-weighted
// distribution for non-quad patches instead of assuming uniform density.
func (bp *BilinearPatch) PDF(si SurfaceInteraction) float64 {
	if bp.area == 0 {
		return 0
	}
	if bp.jGrid == nil {
		return 1 / bp.area
	}
	j := bp.jacobian(si.UV.X, si.UV.Y)
	if j == 0 {
		return 0
	}
	return bp.jGrid.densityAt(si.UV.X, si.UV.Y) / j
}

// cornerWeights weights each corner by the cosine between ctx.Normal and
// the direction from ctx to that corner (at least 0.01), the same
// SampleBilinear/BilinearPDF
// pre-warp Triangle.SampleFrom applies ahead of its own spherical-triangle
// or uniform-area sampling.
func (bp *BilinearPatch) cornerWeights(ctx ShapeSampleContext) [4]float64 {
	p00, p10, p01, p11 := bp.corners()
	dirs := [4]pmath.Vec3{
		p00.Subtract(ctx.P).Normalize(),
		p10.Subtract(ctx.P).Normalize(),
		p01.Subtract(ctx.P).Normalize(),
		p11.Subtract(ctx.P).Normalize(),
	}
	var w [4]float64
	for i, d := range dirs {
		w[i] = math.Max(0.01, ctx.Normal.AbsDot(d))
	}
	return w
}

func (bp *BilinearPatch) SampleFrom(ctx ShapeSampleContext, u pmath.Vec2) (ShapeSample, bool) {
	if bp.area == 0 {
		return ShapeSample{}, false
	}
	sample := u
	pdf := 1.0
	if ctx.Normal != (pmath.Vec3{}) {
		w := bp.cornerWeights(ctx)
		sample = pmath.SampleBilinear(u, w)
		pdf = pmath.BilinearPDF(sample, w)
	}
	ss, ok := bp.Sample(sample)
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
	pdf *= ss.PDF * dist2 / cosTheta
	if math.IsInf(pdf, 1) {
		return ShapeSample{}, false
	}
	return ShapeSample{SI: ss.SI, PDF: pdf}, true
}

func (bp *BilinearPatch) PDFFrom(ctx ShapeSampleContext, wi pmath.Vec3) float64 {
	ray := ctx.SpawnRay(wi)
	hit, ok := bp.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		return 0
	}
	dist2 := hit.SI.Point().Subtract(ctx.P).LengthSquared()
	cosTheta := hit.SI.Normal.AbsDot(wi.Normalize().Negate())
	areaPDF := bp.PDF(hit.SI)
	if cosTheta == 0 || areaPDF == 0 {
		return 0
	}
	pdf := areaPDF * dist2 / cosTheta

	if ctx.Normal != (pmath.Vec3{}) {
		w := bp.cornerWeights(ctx)
		pdf *= pmath.BilinearPDF(hit.SI.UV, w)
	}
	if math.IsInf(pdf, 1) {
		return 0
	}
	return pdf
}
