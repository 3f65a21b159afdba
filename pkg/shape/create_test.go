package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
	"github.com/df07/go-shape-core/pkg/pmesh"
)

func TestCreateSphereAppliesDefaults(t *testing.T) {
	h, err := CreateSphere(pmath.Identity(), false, ParamSet{})
	if err != nil {
		t.Fatalf("CreateSphere: %v", err)
	}
	if h.Kind() != KindSphere {
		t.Fatalf("Kind() = %v, want KindSphere", h.Kind())
	}
	want := 4 * math.Pi * 1 * 1
	if got := h.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v (unit sphere)", got, want)
	}
}

func TestCreateSphereOverridesRadius(t *testing.T) {
	h, err := CreateSphere(pmath.Identity(), false, ParamSet{"radius": 2.0})
	if err != nil {
		t.Fatalf("CreateSphere: %v", err)
	}
	want := 4 * math.Pi * 4.0
	if got := h.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestCreateDiskAppliesDefaults(t *testing.T) {
	h, err := CreateDisk(pmath.Identity(), false, ParamSet{})
	if err != nil {
		t.Fatalf("CreateDisk: %v", err)
	}
	want := math.Pi * 1 * 1
	if got := h.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestCreateCylinderAppliesDefaults(t *testing.T) {
	h, err := CreateCylinder(pmath.Identity(), false, ParamSet{})
	if err != nil {
		t.Fatalf("CreateCylinder: %v", err)
	}
	want := 2 * 1 * 2 * math.Pi // zmin=-1, zmax=1, radius=1
	if got := h.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestCreateTriangleMeshRequiresP(t *testing.T) {
	pmesh.ResetRegistries()
	if _, err := CreateTriangleMesh(pmath.Identity(), false, ParamSet{"indices": []int{0, 1, 2}}); err == nil {
		t.Error("expected error when P is missing")
	}
}

func TestCreateTriangleMeshBuildsHandles(t *testing.T) {
	pmesh.ResetRegistries()
	ps := ParamSet{
		"P": []pmath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		"indices": []int{0, 1, 2},
	}
	handles, err := CreateTriangleMesh(pmath.Identity(), false, ps)
	if err != nil {
		t.Fatalf("CreateTriangleMesh: %v", err)
	}
	if len(handles) != 1 {
		t.Fatalf("len(handles) = %d, want 1", len(handles))
	}
	if got := handles[0].Area(); !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("Area() = %v, want 0.5", got)
	}
}

func TestCreateCurveRequiresFourControlPoints(t *testing.T) {
	ps := ParamSet{
		"P": []pmath.Vec3{{X: 0}, {X: 1}},
	}
	if _, err := CreateCurve(pmath.Identity(), false, ps); err == nil {
		t.Error("expected error for wrong number of control points")
	}
}

func TestCreateCurveRejectsUnknownType(t *testing.T) {
	ps := ParamSet{
		"P": []pmath.Vec3{{X: -1}, {X: -0.33}, {X: 0.33}, {X: 1}},
		"type": "spline",
	}
	if _, err := CreateCurve(pmath.Identity(), false, ps); err == nil {
		t.Error("expected error for unknown curve type")
	}
}
