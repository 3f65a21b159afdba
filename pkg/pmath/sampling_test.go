package pmath

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleUniformDiskConcentricStaysInUnitDisk(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		p := SampleUniformDiskConcentric(Vec2{X: rng.Float64(), Y: rng.Float64()})
		if r2 := p.X*p.X + p.Y*p.Y; r2 > 1+1e-9 {
			t.Fatalf("sample %v has r^2=%v, want <= 1", p, r2)
		}
	}
}

func TestSampleUniformSphereIsUnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		d := SampleUniformSphere(Vec2{X: rng.Float64(), Y: rng.Float64()})
		if !almostEqual(d.Length(), 1, 1e-9) {
			t.Fatalf("sample %v has length %v, want 1", d, d.Length())
		}
	}
}

func TestUniformSpherePDF(t *testing.T) {
	want := 1 / (4 * math.Pi)
	if got := UniformSpherePDF(); !almostEqual(got, want, 1e-12) {
		t.Errorf("UniformSpherePDF() = %v, want %v", got, want)
	}
}

func TestSampleUniformConeAtFullAngleCoversSphere(t *testing.T) {
	// cosThetaMax = -1 means the cone is the entire sphere of directions.
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		d := SampleUniformCone(Vec2{X: rng.Float64(), Y: rng.Float64()}, -1)
		if !almostEqual(d.Length(), 1, 1e-9) {
			t.Fatalf("sample %v has length %v, want 1", d, d.Length())
		}
	}
}

func TestUniformConePDFAtZeroAngleIsDeltaLike(t *testing.T) {
	// As cosThetaMax -> 1 (angle -> 0) the solid angle shrinks to zero, so
	// the density diverges; just check it's finite and increasing as the
	// cone narrows.
	wide := UniformConePDF(0)
	narrow := UniformConePDF(0.999)
	if !(narrow > wide) {
		t.Errorf("expected PDF to increase as cone narrows: wide=%v narrow=%v", wide, narrow)
	}
}

func TestSampleUniformTriangleBarycentricSumsToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 1000; i++ {
		b0, b1 := SampleUniformTriangle(Vec2{X: rng.Float64(), Y: rng.Float64()})
		b2 := 1 - b0 - b1
		if b0 < -1e-9 || b1 < -1e-9 || b2 < -1e-9 {
			t.Fatalf("barycentrics (%v,%v,%v) have a negative component", b0, b1, b2)
		}
	}
}

func TestSphericalTriangleAreaOfOctant(t *testing.T) {
	// The triangle spanning +x, +y, +z on the unit sphere covers exactly
	// one octant, whose solid angle is 4*pi/8 = pi/2.
	a := Vec3{X: 1, Y: 0, Z: 0}
	b := Vec3{X: 0, Y: 1, Z: 0}
	c := Vec3{X: 0, Y: 0, Z: 1}
	got := SphericalTriangleArea(a, b, c)
	want := math.Pi / 2
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("SphericalTriangleArea(octant) = %v, want %v", got, want)
	}
}

func TestSampleBilinearReproducesUniformWhenWeightsEqual(t *testing.T) {
	w := [4]float64{1, 1, 1, 1}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		u := Vec2{X: rng.Float64(), Y: rng.Float64()}
		p := SampleBilinear(u, w)
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Fatalf("SampleBilinear(%v, uniform weights) = %v out of [0,1]^2", u, p)
		}
		if !almostEqual(p.X, u.X, 1e-9) || !almostEqual(p.Y, u.Y, 1e-9) {
			t.Errorf("SampleBilinear with uniform weights should be identity, got %v for input %v", p, u)
		}
	}
}

func TestBilinearPDFIntegratesToOneRoughly(t *testing.T) {
	w := [4]float64{1, 2, 3, 4}
	const n = 200
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p := Vec2{X: (float64(i) + 0.5) / n, Y: (float64(j) + 0.5) / n}
			sum += BilinearPDF(p, w) / (n * n)
		}
	}
	if !almostEqual(sum, 1, 0.02) {
		t.Errorf("BilinearPDF integrated over [0,1]^2 = %v, want ~1", sum)
	}
}
