package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
)

func TestDiskIntersect(t *testing.T) {
	d, err := NewDisk(DiskParams{Radius: 1})
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	ray := pmath.NewRay(pmath.Vec3{X: 0.3, Y: 0.4, Z: 1}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	hit, ok := d.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("Intersect returned false")
	}
	if !almostEqual(hit.TFar, 1, 1e-9) {
		t.Errorf("TFar = %v, want 1", hit.TFar)
	}
	wantP := pmath.Vec3{X: 0.3, Y: 0.4, Z: 0}
	if !vecAlmostEqual(hit.SI.Point(), wantP, 1e-9) {
		t.Errorf("Point() = %v, want %v", hit.SI.Point(), wantP)
	}
	phi := math.Atan2(0.4, 0.3)
	wantU := phi / (2 * math.Pi)
	if !almostEqual(hit.SI.UV.X, wantU, 1e-6) {
		t.Errorf("UV.X = %v, want %v", hit.SI.UV.X, wantU)
	}
	wantV := 1 - math.Sqrt(0.3*0.3+0.4*0.4)
	if !almostEqual(hit.SI.UV.Y, wantV, 1e-6) {
		t.Errorf("UV.Y = %v, want %v", hit.SI.UV.Y, wantV)
	}
}

func TestDiskIntersectMissesBehindPlane(t *testing.T) {
	d, err := NewDisk(DiskParams{Radius: 1})
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	ray := pmath.NewRay(pmath.Vec3{X: 0, Y: 0, Z: -1}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	if _, ok := d.Intersect(ray, 1e-6, math.Inf(1)); ok {
		t.Error("expected miss for ray pointing away from disk")
	}
}

func TestDiskArea(t *testing.T) {
	d, err := NewDisk(DiskParams{Radius: 2, InnerRadius: 1})
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	want := 2 * math.Pi * 0.5 * (4 - 1)
	if got := d.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestNewDiskRejectsBadInnerRadius(t *testing.T) {
	if _, err := NewDisk(DiskParams{Radius: 1, InnerRadius: 1}); err == nil {
		t.Error("expected error when innerRadius == radius")
	}
	if _, err := NewDisk(DiskParams{Radius: 1, InnerRadius: -0.1}); err == nil {
		t.Error("expected error for negative innerRadius")
	}
}
