package render

import (
	"math"
	"testing"

	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
)

func testFrustum() Frustum {
	return FrustumOf(math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 100))
}

func TestPlane(t *testing.T) {
	pl := Plane{N: math3d.V3(0, 0, 2), D: -4}.normalized()
	if !vecNear(pl.N, math3d.AxisZ(), 1e-12) || pl.D != -2 {
		t.Fatalf("normalized = %+v", pl)
	}
	if got := pl.Signed(math3d.V3(3, 1, 5)); math.Abs(got-3) > 1e-12 {
		t.Errorf("Signed = %v, want 3", got)
	}

	degenerate := Plane{D: 1}
	if degenerate.normalized() != degenerate {
		t.Error("zero normal should be left alone")
	}
}

func TestFrustumPlanesAreUnit(t *testing.T) {
	for i, pl := range testFrustum() {
		if math.Abs(pl.N.Len()-1) > 1e-9 {
			t.Errorf("plane %d normal length %v", i, pl.N.Len())
		}
	}
}

func TestFrustumContains(t *testing.T) {
	f := testFrustum()
	tests := []struct {
		name string
		p    math3d.Vec3
		want bool
	}{
		{"in front", math3d.V3(0, 0, -5), true},
		{"off axis", math3d.V3(2, -1, -10), true},
		{"behind", math3d.V3(0, 0, 5), false},
		{"beyond far", math3d.V3(0, 0, -200), false},
		{"too close", math3d.V3(0, 0, -0.05), false},
		{"far right", math3d.V3(100, 0, -5), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestFrustumVisible(t *testing.T) {
	f := testFrustum()
	box := func(x0, y0, z0, x1, y1, z1 float64) Bounds {
		return Bounds{Min: math3d.V3(x0, y0, z0), Max: math3d.V3(x1, y1, z1)}
	}
	tests := []struct {
		name string
		b    Bounds
		want bool
	}{
		{"inside", box(-1, -1, -6, 1, 1, -4), true},
		{"crossing near", box(-1, -1, -1, 1, 1, 1), true},
		{"behind", box(-1, -1, 2, 1, 1, 4), false},
		{"beyond far", box(-1, -1, -300, 1, 1, -200), false},
		{"far right", box(100, -1, -6, 120, 1, -4), false},
		{"containing", box(-1000, -1000, -1000, 1000, 1000, 1000), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Visible(tc.b); got != tc.want {
				t.Errorf("Visible(%+v) = %v, want %v", tc.b, got, tc.want)
			}
		})
	}
}

func TestFrustumFromCamera(t *testing.T) {
	cam := NewCamera(100)
	cam.Yaw = 90
	f := FrustumOf(cam.ViewProjectionMatrix(1))

	if !f.Contains(cam.Target) {
		t.Error("orbit target should be visible")
	}
	behind := cam.Target.Add(cam.Eye().Sub(cam.Target).Scale(2))
	if f.Contains(behind) {
		t.Errorf("point behind the eye %v reported visible", behind)
	}
}

func slab() *models.Mesh {
	m := models.NewMesh("slab")
	n := math3d.AxisZ()
	m.AddVertex(math3d.V3(-2, -1, 0), n)
	m.AddVertex(math3d.V3(2, -1, 0), n)
	m.AddVertex(math3d.V3(2, 1, 1), n)
	m.AddVertex(math3d.V3(-2, 1, 1), n)
	return m
}

func TestBoundsOf(t *testing.T) {
	m := slab()

	b := BoundsOf(m, 0)
	if !vecNear(b.Min, math3d.V3(-2, -1, 0), 1e-12) || !vecNear(b.Max, math3d.V3(2, 1, 1), 1e-12) {
		t.Errorf("computed bounds = %+v", b)
	}
	if m.BoundsMin != m.BoundsMax {
		t.Error("BoundsOf should not write the cached bounds")
	}

	spun := BoundsOf(m, 90)
	if got := spun.Size(); !vecNear(got, math3d.V3(2, 4, 1), 1e-9) {
		t.Errorf("size after a quarter turn = %v, want (2, 4, 1)", got)
	}

	m.CalculateBounds()
	if got := BoundsOf(m, 0); got != (Bounds{Min: m.BoundsMin, Max: m.BoundsMax}) {
		t.Errorf("cached bounds ignored: %+v", got)
	}
}

func BenchmarkFrustumVisible(b *testing.B) {
	f := testFrustum()
	box := Bounds{Min: math3d.V3(-1, -1, -6), Max: math3d.V3(1, 1, -4)}
	for b.Loop() {
		_ = f.Visible(box)
	}
}

func BenchmarkFrustumOf(b *testing.B) {
	cam := NewCamera(100)
	vp := cam.ViewProjectionMatrix(16.0 / 9.0)
	for b.Loop() {
		_ = FrustumOf(vp)
	}
}
