package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
	"github.com/df07/go-shape-core/pkg/pmesh"
)

func TestTriangleIntersect(t *testing.T) {
	pmesh.ResetRegistries()
	handle, err := pmesh.CreateTriangleMesh(pmesh.TriangleMeshParams{
		P: []pmath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Indices: []int{0, 1, 2},
	})
	if err != nil {
		t.Fatalf("CreateTriangleMesh: %v", err)
	}
	tri := NewTriangle(handle, 0)

	ray := pmath.NewRay(pmath.Vec3{X: 0.2, Y: 0.3, Z: 1}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	hit, ok := tri.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("Intersect returned false")
	}
	if !almostEqual(hit.TFar, 1, 1e-9) {
		t.Errorf("TFar = %v, want 1", hit.TFar)
	}
	wantN := pmath.Vec3{X: 0, Y: 0, Z: 1}
	if !vecAlmostEqual(hit.SI.Normal, wantN, 1e-9) {
		t.Errorf("Normal = %v, want %v", hit.SI.Normal, wantN)
	}
	if !tri.IntersectP(ray, 1e-6, math.Inf(1)) {
		t.Error("IntersectP() = false, want true")
	}
}

func TestTriangleIntersectMiss(t *testing.T) {
	pmesh.ResetRegistries()
	handle, err := pmesh.CreateTriangleMesh(pmesh.TriangleMeshParams{
		P: []pmath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Indices: []int{0, 1, 2},
	})
	if err != nil {
		t.Fatalf("CreateTriangleMesh: %v", err)
	}
	tri := NewTriangle(handle, 0)

	ray := pmath.NewRay(pmath.Vec3{X: 5, Y: 5, Z: 1}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	if _, ok := tri.Intersect(ray, 1e-6, math.Inf(1)); ok {
		t.Error("expected miss outside triangle")
	}
}

func TestTriangleSampleFromAndPDFFrom(t *testing.T) {
	pmesh.ResetRegistries()
	handle, err := pmesh.CreateTriangleMesh(pmesh.TriangleMeshParams{
		P: []pmath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Indices: []int{0, 1, 2},
	})
	if err != nil {
		t.Fatalf("CreateTriangleMesh: %v", err)
	}
	tri := NewTriangle(handle, 0)
	ctx := ShapeSampleContext{P: pmath.Vec3{X: 0.2, Y: 0.2, Z: 5}, Normal: pmath.Vec3{X: 0, Y: 0, Z: -1}}

	ss, ok := tri.SampleFrom(ctx, pmath.Vec2{X: 0.3, Y: 0.7})
	if !ok {
		t.Fatal("SampleFrom returned false")
	}
	if ss.PDF <= 0 {
		t.Errorf("SampleFrom PDF = %v, want > 0", ss.PDF)
	}

	wi := ss.SI.Point().Subtract(ctx.P).Normalize()
	pdf := tri.PDFFrom(ctx, wi)
	if pdf <= 0 {
		t.Errorf("PDFFrom = %v, want > 0", pdf)
	}
}

// TestTriangleSampleFromFallsBackAboveMaxSphericalArea exercises the upper
// solid-angle bound: a reference point very close to the interior of a
// large triangle's plane sees a solid angle approaching the theoretical
// max of 2*pi (~6.283185), comfortably above maxSphericalArea (6.28), so
// SampleFrom/PDFFrom must take the area-sampling fallback rather than
// handing an out-of-range value to the spherical-triangle sampler.
func TestTriangleSampleFromFallsBackAboveMaxSphericalArea(t *testing.T) {
	pmesh.ResetRegistries()
	const r = 1e4
	handle, err := pmesh.CreateTriangleMesh(pmesh.TriangleMeshParams{
		P: []pmath.Vec3{
			{X: r, Y: 0, Z: 0},
			{X: -r / 2, Y: r * math.Sqrt(3) / 2, Z: 0},
			{X: -r / 2, Y: -r * math.Sqrt(3) / 2, Z: 0},
		},
		Indices: []int{0, 1, 2},
	})
	if err != nil {
		t.Fatalf("CreateTriangleMesh: %v", err)
	}
	tri := NewTriangle(handle, 0)
	p0, p1, p2 := tri.vertices()

	ctx := ShapeSampleContext{P: pmath.Vec3{X: 0, Y: 0, Z: 1e-2}}
	solidAngle := pmath.SphericalTriangleArea(
		p0.Subtract(ctx.P).Normalize(),
		p1.Subtract(ctx.P).Normalize(),
		p2.Subtract(ctx.P).Normalize(),
	)
	if solidAngle <= maxSphericalArea {
		t.Fatalf("test geometry solid angle = %v, want > %v (maxSphericalArea) to exercise the fallback", solidAngle, maxSphericalArea)
	}

	ss, ok := tri.SampleFrom(ctx, pmath.Vec2{X: 0.4, Y: 0.6})
	if !ok {
		t.Fatal("SampleFrom returned false")
	}
	if ss.PDF <= 0 || math.IsNaN(ss.PDF) || math.IsInf(ss.PDF, 0) {
		t.Errorf("SampleFrom PDF = %v, want finite and positive", ss.PDF)
	}

	wi := ss.SI.Point().Subtract(ctx.P).Normalize()
	pdf := tri.PDFFrom(ctx, wi)
	if pdf <= 0 || math.IsNaN(pdf) || math.IsInf(pdf, 0) {
		t.Errorf("PDFFrom = %v, want finite and positive", pdf)
	}
}

func TestTriangleArea(t *testing.T) {
	pmesh.ResetRegistries()
	handle, err := pmesh.CreateTriangleMesh(pmesh.TriangleMeshParams{
		P: []pmath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Indices: []int{0, 1, 2},
	})
	if err != nil {
		t.Fatalf("CreateTriangleMesh: %v", err)
	}
	tri := NewTriangle(handle, 0)
	if got := tri.Area(); !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("Area() = %v, want 0.5", got)
	}
}
