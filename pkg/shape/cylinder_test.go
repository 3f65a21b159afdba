package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
)

func TestCylinderIntersect(t *testing.T) {
	c, err := NewCylinder(CylinderParams{Radius: 1, ZMin: -1, ZMax: 1})
	if err != nil {
		t.Fatalf("NewCylinder: %v", err)
	}
	ray := pmath.NewRay(pmath.Vec3{X: -5, Y: 0, Z: 0}, pmath.Vec3{X: 1, Y: 0, Z: 0})
	hit, ok := c.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("Intersect returned false")
	}
	if !almostEqual(hit.TFar, 4, 1e-9) {
		t.Errorf("TFar = %v, want 4", hit.TFar)
	}
	wantP := pmath.Vec3{X: -1, Y: 0, Z: 0}
	if !vecAlmostEqual(hit.SI.Point(), wantP, 1e-9) {
		t.Errorf("Point() = %v, want %v", hit.SI.Point(), wantP)
	}
}

func TestCylinderIntersectMissesOutsideZRange(t *testing.T) {
	c, err := NewCylinder(CylinderParams{Radius: 1, ZMin: -1, ZMax: 1})
	if err != nil {
		t.Fatalf("NewCylinder: %v", err)
	}
	ray := pmath.NewRay(pmath.Vec3{X: -5, Y: 0, Z: 5}, pmath.Vec3{X: 1, Y: 0, Z: 0})
	if _, ok := c.Intersect(ray, 1e-6, math.Inf(1)); ok {
		t.Error("expected miss above cylinder's z range")
	}
}

func TestCylinderArea(t *testing.T) {
	c, err := NewCylinder(CylinderParams{Radius: 1, ZMin: 0, ZMax: 2})
	if err != nil {
		t.Fatalf("NewCylinder: %v", err)
	}
	want := 2 * 1 * 2 * math.Pi
	if got := c.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestNewCylinderRejectsEqualZRange(t *testing.T) {
	if _, err := NewCylinder(CylinderParams{Radius: 1, ZMin: 1, ZMax: 1}); err == nil {
		t.Error("expected error when zMin == zMax")
	}
}
