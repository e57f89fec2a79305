package math3d

import (
	"math"
	"testing"
)

func TestSmoothStep(t *testing.T) {
	tests := []struct {
		name            string
		edge0, edge1, x float64
		expected        float64
	}{
		{"below", 0, 1, -1, 0},
		{"above", 0, 1, 2, 1},
		{"middle", 0, 1, 0.5, 0.5},
		{"descending", 1, 0, 0.25, 0.84375},
		{"degenerate below", 1, 1, 0.5, 0},
		{"degenerate above", 1, 1, 1.5, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SmoothStep(tc.edge0, tc.edge1, tc.x)
			if math.Abs(got-tc.expected) > 1e-12 {
				t.Errorf("SmoothStep(%v, %v, %v) = %v, want %v", tc.edge0, tc.edge1, tc.x, got, tc.expected)
			}
		})
	}
}

func TestDistToInt(t *testing.T) {
	for _, x := range []float64{-3.25, -0.5, 0, 0.1, 0.9, 12.5, 7.75} {
		d := DistToInt(x)
		if d < 0 || d > 0.5 {
			t.Errorf("DistToInt(%v) = %v, want value in [0, 0.5]", x, d)
		}
		if math.Abs(DistToInt(x+3)-d) > 1e-12 {
			t.Errorf("DistToInt should be 1-periodic at %v", x)
		}
	}
}

func TestSafeDiv(t *testing.T) {
	if got := SafeDiv(1, 0); math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("SafeDiv(1, 0) = %v, want finite", got)
	}
	if got := SafeDiv(6, 3); got != 2 {
		t.Errorf("SafeDiv(6, 3) = %v, want 2", got)
	}
}

func TestValueNoiseRangeAndDeterminism(t *testing.T) {
	for i := range 200 {
		x := float64(i)*0.37 - 20
		y := float64(i)*-0.73 + 11
		n := ValueNoise2D(x, y)
		if n < 0 || n >= 1 {
			t.Fatalf("ValueNoise2D(%v, %v) = %v out of [0,1)", x, y, n)
		}
		if n != ValueNoise2D(x, y) {
			t.Fatalf("ValueNoise2D not deterministic at (%v, %v)", x, y)
		}
		f := FBM2D(x, y, 3)
		if f < 0 || f >= 1 {
			t.Fatalf("FBM2D(%v, %v) = %v out of [0,1)", x, y, f)
		}
	}
}

func TestViewFromBasis(t *testing.T) {
	eye := V3(0, 0, 10)
	view := ViewFromBasis(V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, -1), eye)

	if got := view.MulVec3(eye); got.Len() > 1e-12 {
		t.Errorf("eye should map to origin, got %v", got)
	}
	// A point in front of the camera lands on -Z in view space.
	if got := view.MulVec3(V3(0, 0, 0)); math.Abs(got.Z+10) > 1e-12 {
		t.Errorf("target should be at z=-10 in view space, got %v", got)
	}
	if got := view.MulVec3(V3(1, 2, 0)); math.Abs(got.X-1) > 1e-12 || math.Abs(got.Y-2) > 1e-12 {
		t.Errorf("right/up should be preserved, got %v", got)
	}
}

func TestMulAppliesRightFirst(t *testing.T) {
	// Rotate a quarter turn, then translate.
	m := Translate(V3(10, 0, 0)).Mul(RotateZ(math.Pi / 2))
	got := m.MulVec3(V3(1, 0, 0))
	if got.Sub(V3(10, 1, 0)).Len() > 1e-12 {
		t.Errorf("m × (1,0,0) = %v, want (10,1,0)", got)
	}
	if got := m.MulVec3Dir(V3(1, 0, 0)); got.Sub(V3(0, 1, 0)).Len() > 1e-12 {
		t.Errorf("direction picked up translation: %v", got)
	}
	if m.Row(0).W != 10 || m.Column(3).X != 10 {
		t.Errorf("Row/Column disagree on the translation: %v %v", m.Row(0), m.Column(3))
	}
}

func TestPerspectiveClipRange(t *testing.T) {
	p := Perspective(math.Pi/2, 1, 1, 100)
	tests := []struct {
		name string
		z    float64
		want float64
	}{
		{"near", -1, -1},
		{"far", -100, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := p.MulVec3(V3(0, 0, tc.z)).Z
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("depth at z=%v is %v, want %v", tc.z, got, tc.want)
			}
		})
	}
}

func TestRotateZMatchesVec3(t *testing.T) {
	angle := 0.7
	v := V3(3, -1, 2)
	want := RotateZ(angle).MulVec3Dir(v)
	got := v.RotateZ(math.Cos(angle), math.Sin(angle))
	if got.Sub(want).Len() > 1e-12 {
		t.Errorf("Vec3.RotateZ = %v, Mat4 RotateZ = %v", got, want)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateZ(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkValueNoise2D(b *testing.B) {
	for b.Loop() {
		_ = ValueNoise2D(12.34, 56.78)
	}
}
