package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
)

func newStraightCurve(t *testing.T, width float64) *Curve {
	t.Helper()
	cp := [4]pmath.Vec3{
		{X: -1, Y: 0, Z: 0},
		{X: -1.0 / 3, Y: 0, Z: 0},
		{X: 1.0 / 3, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
	}
	common, err := NewCurveCommon(nil, cp, width, width, CurveFlat, nil, false)
	if err != nil {
		t.Fatalf("NewCurveCommon: %v", err)
	}
	return NewCurve(common)
}

func TestCurveIntersectStraightSegment(t *testing.T) {
	c := newStraightCurve(t, 0.2)
	// Ray straight down through the middle of the curve (which runs along
	// the x axis at y=z=0).
	ray := pmath.NewRay(pmath.Vec3{X: 0, Y: 0, Z: 5}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	hit, ok := c.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("Intersect returned false for a ray through the curve's center")
	}
	if hit.TFar <= 0 {
		t.Errorf("TFar = %v, want positive", hit.TFar)
	}
	if math.Abs(hit.SI.UV.X-0.5) > 0.05 {
		t.Errorf("UV.X = %v, want close to 0.5 (ray hits curve midpoint)", hit.SI.UV.X)
	}
}

func TestCurveIntersectMissesFarAway(t *testing.T) {
	c := newStraightCurve(t, 0.2)
	ray := pmath.NewRay(pmath.Vec3{X: 0, Y: 10, Z: 5}, pmath.Vec3{X: 0, Y: 0, Z: -1})
	if _, ok := c.Intersect(ray, 1e-6, math.Inf(1)); ok {
		t.Error("expected miss for ray far from the curve")
	}
}

func TestNewCurveCommonRejectsNonPositiveWidth(t *testing.T) {
	cp := [4]pmath.Vec3{{}, {}, {}, {}}
	if _, err := NewCurveCommon(nil, cp, 0, 1, CurveFlat, nil, false); err == nil {
		t.Error("expected error for zero width0")
	}
}

func TestNewCurveCommonRibbonRequiresNormals(t *testing.T) {
	cp := [4]pmath.Vec3{{}, {}, {}, {}}
	if _, err := NewCurveCommon(nil, cp, 1, 1, CurveRibbon, nil, false); err == nil {
		t.Error("expected error when ribbon curve has no normals")
	}
}
