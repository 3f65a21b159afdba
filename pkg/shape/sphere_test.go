package shape

import (
	"math"
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vecAlmostEqual(a, b pmath.Vec3, eps float64) bool {
	return almostEqual(a.X, b.X, eps) && almostEqual(a.Y, b.Y, eps) && almostEqual(a.Z, b.Z, eps)
}

func TestSphereIntersect(t *testing.T) {
	s, err := NewSphere(SphereParams{Radius: 1})
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}

	tests := []struct {
		name     string
		ray      pmath.Ray
		wantHit  bool
		wantT    float64
		wantP    pmath.Vec3
		wantN    pmath.Vec3
	}{
		{
			name:    "along +z from the -z side",
			ray:     pmath.NewRay(pmath.Vec3{X: 0, Y: 0, Z: -5}, pmath.Vec3{X: 0, Y: 0, Z: 1}),
			wantHit: true,
			wantT:   4,
			// The hit lands on the pole, where Intersect moves x to
			// 1e-5*radius so phi stays defined.
			wantP: pmath.Vec3{X: 1e-5, Y: 0, Z: -1},
			wantN: pmath.Vec3{X: 1e-5, Y: 0, Z: -1},
		},
		{
			name:    "miss",
			ray:     pmath.NewRay(pmath.Vec3{X: 5, Y: 5, Z: -5}, pmath.Vec3{X: 0, Y: 0, Z: 1}),
			wantHit: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := s.Intersect(tt.ray, 1e-6, math.Inf(1))
			if ok != tt.wantHit {
				t.Fatalf("Intersect() ok = %v, want %v", ok, tt.wantHit)
			}
			if !tt.wantHit {
				return
			}
			if !almostEqual(hit.TFar, tt.wantT, 1e-6) {
				t.Errorf("TFar = %v, want %v", hit.TFar, tt.wantT)
			}
			if !vecAlmostEqual(hit.SI.Point(), tt.wantP, 1e-6) {
				t.Errorf("Point() = %v, want %v", hit.SI.Point(), tt.wantP)
			}
			if !vecAlmostEqual(hit.SI.Normal, tt.wantN, 1e-6) {
				t.Errorf("Normal = %v, want %v", hit.SI.Normal, tt.wantN)
			}
		})
	}
}

func TestSphereArea(t *testing.T) {
	s, err := NewSphere(SphereParams{Radius: 2})
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	want := 4 * math.Pi * 4
	if got := s.Area(); !almostEqual(got, want, 1e-9) {
		t.Errorf("Area() = %v, want %v", got, want)
	}
}

func TestSphereSampleFromConePDF(t *testing.T) {
	s, err := NewSphere(SphereParams{Radius: 1})
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	ctx := ShapeSampleContext{P: pmath.Vec3{X: 0, Y: 0, Z: -5}}
	ss, ok := s.SampleFrom(ctx, pmath.Vec2{X: 0.5, Y: 0.25})
	if !ok {
		t.Fatal("SampleFrom returned false")
	}
	// sinThetaMax = radius/dist = 1/5 = 0.2, cosThetaMax = sqrt(1-0.04) = sqrt(0.96)
	wantPDF := 1 / (2 * math.Pi * (1 - math.Sqrt(0.96)))
	if !almostEqual(ss.PDF, wantPDF, 1e-6) {
		t.Errorf("PDF = %v, want %v", ss.PDF, wantPDF)
	}
}

func TestNewSphereRejectsNonPositiveRadius(t *testing.T) {
	if _, err := NewSphere(SphereParams{Radius: 0}); err == nil {
		t.Error("expected error for zero radius")
	}
	if _, err := NewSphere(SphereParams{Radius: -1}); err == nil {
		t.Error("expected error for negative radius")
	}
}
