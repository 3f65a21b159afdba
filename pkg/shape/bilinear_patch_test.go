package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
	"github.com/df07/go-shape-core/pkg/pmesh"
)

func newUnitSquarePatch(t *testing.T) *BilinearPatch {
	t.Helper()
	pmesh.ResetRegistries()
	handle, err := pmesh.CreateBilinearPatchMesh(pmesh.BilinearPatchMeshParams{
		P: []pmath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 1, Y: 1, Z: 0},
		},
		Indices: []int{0, 1, 2, 3},
	})
	if err != nil {
		t.Fatalf("CreateBilinearPatchMesh: %v", err)
	}
	return NewBilinearPatch(handle, 0)
}

func TestBilinearPatchIsQuadAndArea(t *testing.T) {
	bp := newUnitSquarePatch(t)
	if !bp.IsQuad() {
		t.Error("expected unit square to be detected as a quad")
	}
	if got := bp.Area(); !almostEqual(got, 1, 1e-9) {
		t.Errorf("Area() = %v, want 1", got)
	}
}

func TestBilinearPatchIntersect(t *testing.T) {
	bp := newUnitSquarePatch(t)
	ray := pmath.NewRay(pmath.Vec3{X: 0.5, Y: 0.5, Z: 1}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	hit, ok := bp.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("Intersect returned false")
	}
	if !almostEqual(hit.TFar, 1, 1e-6) {
		t.Errorf("TFar = %v, want 1", hit.TFar)
	}
	wantP := pmath.Vec3{X: 0.5, Y: 0.5, Z: 0}
	if !vecAlmostEqual(hit.SI.Point(), wantP, 1e-6) {
		t.Errorf("Point() = %v, want %v", hit.SI.Point(), wantP)
	}
}

func TestBilinearPatchIntersectMiss(t *testing.T) {
	bp := newUnitSquarePatch(t)
	ray := pmath.NewRay(pmath.Vec3{X: 5, Y: 5, Z: 1}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	if _, ok := bp.Intersect(ray, 1e-6, math.Inf(1)); ok {
		t.Error("expected miss outside patch bounds")
	}
}

func TestBilinearPatchSampleHasUniformAreaPDF(t *testing.T) {
	bp := newUnitSquarePatch(t)
	ss, ok := bp.Sample(pmath.Vec2{X: 0.3, Y: 0.7})
	if !ok {
		t.Fatal("Sample returned false")
	}
	if !almostEqual(ss.PDF, 1, 1e-9) {
		t.Errorf("PDF = %v, want 1 (unit area)", ss.PDF)
	}
}

func newTwistedPatch(t *testing.T) *BilinearPatch {
	t.Helper()
	pmesh.ResetRegistries()
	handle, err := pmesh.CreateBilinearPatchMesh(pmesh.BilinearPatchMeshParams{
		P: []pmath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 1, Y: 1, Z: 1},
		},
		Indices: []int{0, 1, 2, 3},
	})
	if err != nil {
		t.Fatalf("CreateBilinearPatchMesh: %v", err)
	}
	return NewBilinearPatch(handle, 0)
}

func TestBilinearPatchNonQuadIsNotQuad(t *testing.T) {
	bp := newTwistedPatch(t)
	if bp.IsQuad() {
		t.Error("expected corner raised out of plane to fail the quad check")
	}
}

// TestBilinearPatchNonQuadSamplePDFConsistent verifies the Jacobian-weighted
// importance sampling used for non-planar patches returns a PDF consistent
// with the point it actually sampled, per shape.go's PDF contract, rather
// than the constant 1/Area() that would only be correct for a quad.
func TestBilinearPatchNonQuadSamplePDFConsistent(t *testing.T) {
	bp := newTwistedPatch(t)
	samples := []pmath.Vec2{{X: 0.1, Y: 0.2}, {X: 0.5, Y: 0.5}, {X: 0.9, Y: 0.3}}
	for _, u := range samples {
		ss, ok := bp.Sample(u)
		if !ok {
			t.Fatalf("Sample(%v) returned false", u)
		}
		if ss.PDF <= 0 {
			t.Errorf("Sample(%v).PDF = %v, want > 0", u, ss.PDF)
		}
		got := bp.PDF(SurfaceInteraction{UV: ss.SI.UV})
		if !almostEqual(got, ss.PDF, 1e-9) {
			t.Errorf("PDF(sampled point) = %v, want %v (Sample's own pdf)", got, ss.PDF)
		}
	}
}
