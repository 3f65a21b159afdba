package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
	"github.com/df07/go-shape-core/pkg/pmesh"
)

func TestShapeHandleDispatchesSphere(t *testing.T) {
	s, err := NewSphere(SphereParams{Radius: 1})
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	h := NewSphereHandle(s)
	if h.Kind() != KindSphere {
		t.Errorf("Kind() = %v, want KindSphere", h.Kind())
	}

	want := s.Area()
	if got := h.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v", got, want)
	}

	ray := pmath.NewRay(pmath.Vec3{X: 0, Y: 0, Z: -5}, pmath.Vec3{X: 0, Y: 0, Z: 1})
	hit, ok := h.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("Intersect returned false")
	}
	if !almostEqual(hit.TFar, 4, 1e-9) {
		t.Errorf("TFar = %v, want 4", hit.TFar)
	}
	if !h.IntersectP(ray, 1e-6, math.Inf(1)) {
		t.Error("IntersectP() = false, want true")
	}

	wantBounds := s.Bounds()
	gotBounds := h.Bounds()
	if !vecAlmostEqual(gotBounds.Min, wantBounds.Min, 1e-9) || !vecAlmostEqual(gotBounds.Max, wantBounds.Max, 1e-9) {
		t.Errorf("Bounds() = %v, want %v", gotBounds, wantBounds)
	}
}

func TestShapeHandleDispatchesTriangle(t *testing.T) {
	pmesh.ResetRegistries()
	meshHandle, err := pmesh.CreateTriangleMesh(pmesh.TriangleMeshParams{
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
	tri := NewTriangle(meshHandle, 0)
	h := NewTriangleHandle(tri)
	if h.Kind() != KindTriangle {
		t.Errorf("Kind() = %v, want KindTriangle", h.Kind())
	}
	if got := h.Area(); !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("Area() = %v, want 0.5", got)
	}

	ray := pmath.NewRay(pmath.Vec3{X: 0.2, Y: 0.3, Z: 1}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	hit, ok := h.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("Intersect returned false")
	}
	if !almostEqual(hit.TFar, 1, 1e-9) {
		t.Errorf("TFar = %v, want 1", hit.TFar)
	}
}
