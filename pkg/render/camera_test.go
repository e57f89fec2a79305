package render

import (
	"math"
	"testing"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

func vecNear(a, b math3d.Vec3, tol float64) bool {
	return a.Distance(b) <= tol
}

func TestComputeBasis(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		o          OrientationConfig
		want       Basis
	}{
		{
			name: "front",
			want: Basis{Right: math3d.V3(1, 0, 0), Up: math3d.V3(0, 1, 0), Forward: math3d.V3(0, 0, -1)},
		},
		{
			name: "quarter turn",
			yaw:  90,
			want: Basis{Right: math3d.V3(0, 0, -1), Up: math3d.V3(0, 1, 0), Forward: math3d.V3(-1, 0, 0)},
		},
		{
			name: "invert right",
			o:    OrientationConfig{InvertRight: true},
			want: Basis{Right: math3d.V3(-1, 0, 0), Up: math3d.V3(0, 1, 0), Forward: math3d.V3(0, 0, -1)},
		},
		{
			name: "invert up",
			o:    OrientationConfig{InvertUp: true},
			want: Basis{Right: math3d.V3(1, 0, 0), Up: math3d.V3(0, -1, 0), Forward: math3d.V3(0, 0, -1)},
		},
		{
			name: "invert forward",
			o:    OrientationConfig{InvertForward: true},
			want: Basis{Right: math3d.V3(1, 0, 0), Up: math3d.V3(0, 1, 0), Forward: math3d.V3(0, 0, 1)},
		},
		{
			name: "flip 180",
			o:    OrientationConfig{Flip180: true},
			want: Basis{Right: math3d.V3(-1, 0, 0), Up: math3d.V3(0, 1, 0), Forward: math3d.V3(0, 0, 1)},
		},
		{
			name: "mirror yaw",
			yaw:  90,
			o:    OrientationConfig{MirrorYaw: true},
			want: Basis{Right: math3d.V3(0, 0, 1), Up: math3d.V3(0, 1, 0), Forward: math3d.V3(1, 0, 0)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeBasis(tc.yaw, tc.pitch, tc.o)
			if !vecNear(got.Right, tc.want.Right, 1e-9) ||
				!vecNear(got.Up, tc.want.Up, 1e-9) ||
				!vecNear(got.Forward, tc.want.Forward, 1e-9) {
				t.Errorf("ComputeBasis(%v, %v) = %+v, want %+v", tc.yaw, tc.pitch, got, tc.want)
			}
		})
	}
}

func TestComputeBasisOrthonormal(t *testing.T) {
	for yaw := -180.0; yaw <= 180; yaw += 37 {
		for pitch := -85.0; pitch <= 85; pitch += 17 {
			b := ComputeBasis(yaw, pitch, OrientationConfig{})
			for _, v := range []math3d.Vec3{b.Right, b.Up, b.Forward} {
				if math.Abs(v.Len()-1) > 1e-9 {
					t.Fatalf("yaw %v pitch %v: non-unit axis %v", yaw, pitch, v)
				}
			}
			if math.Abs(b.Right.Dot(b.Up)) > 1e-9 || math.Abs(b.Right.Dot(b.Forward)) > 1e-9 || math.Abs(b.Up.Dot(b.Forward)) > 1e-9 {
				t.Fatalf("yaw %v pitch %v: axes not orthogonal: %+v", yaw, pitch, b)
			}
			if b.Up.Y <= 0 {
				t.Fatalf("yaw %v pitch %v: up points down: %v", yaw, pitch, b.Up)
			}
		}
	}
}

func TestPitchClamp(t *testing.T) {
	clamped := ComputeBasis(30, 120, OrientationConfig{})
	limit := ComputeBasis(30, MaxPitch, OrientationConfig{})
	if !vecNear(clamped.Forward, limit.Forward, 1e-12) {
		t.Errorf("pitch 120 forward = %v, want %v", clamped.Forward, limit.Forward)
	}

	cam := NewCamera(100)
	cam.Orbit(0, 500)
	if cam.Pitch != MaxPitch {
		t.Errorf("Orbit pitch = %v, want %v", cam.Pitch, MaxPitch)
	}
	cam.Orbit(0, -1000)
	if cam.Pitch != -MaxPitch {
		t.Errorf("Orbit pitch = %v, want %v", cam.Pitch, -MaxPitch)
	}
}

func TestEyeIgnoresDebugFlags(t *testing.T) {
	cam := NewCamera(100)
	cam.Yaw = 40
	plain := cam.Eye()
	cam.Orientation = OrientationConfig{InvertRight: true, InvertUp: true, Flip180: true}
	if got := cam.Eye(); !vecNear(got, plain, 1e-12) {
		t.Errorf("eye moved with debug flags: %v vs %v", got, plain)
	}
	if d := plain.Distance(cam.Target); math.Abs(d-cam.Distance) > 1e-9 {
		t.Errorf("eye distance = %v, want %v", d, cam.Distance)
	}
}

func TestViewDepthIsClipW(t *testing.T) {
	cam := NewCamera(100)
	cam.Yaw, cam.Pitch = 25, 15
	b := cam.Basis()
	p := math3d.V3(30, -20, 45)
	clip := cam.ViewProjectionMatrix(1.5).MulVec4(math3d.V4FromV3(p, 1))
	want := p.Sub(cam.Eye()).Dot(b.Forward)
	if math.Abs(clip.W-want) > 1e-9 {
		t.Errorf("clip w = %v, want view depth %v", clip.W, want)
	}
}

func TestProjectRayRoundTrip(t *testing.T) {
	cam := NewCamera(100)
	cam.Target.Z = 30
	cam.Yaw, cam.Pitch = -35, 25
	const w, h = 320, 200

	points := []math3d.Vec3{
		math3d.V3(0, 0, 30),
		math3d.V3(50, -40, 60),
		math3d.V3(-80, 10, 0),
	}
	for _, p := range points {
		x, y, depth, ok := cam.Project(p, w, h)
		if !ok {
			t.Fatalf("Project(%v) not visible", p)
		}
		if depth <= 0 {
			t.Fatalf("Project(%v) depth = %v", p, depth)
		}
		origin, dir := cam.Ray(x, y, w, h)
		toP := p.Sub(origin)
		miss := toP.Sub(dir.Scale(toP.Dot(dir))).Len()
		if miss > 1e-6 {
			t.Errorf("ray through %v misses by %v", p, miss)
		}
	}

	if _, _, _, ok := cam.Project(cam.Eye().Add(cam.Basis().Forward.Scale(-10)), w, h); ok {
		t.Error("point behind the eye reported visible")
	}
}

func TestPickCap(t *testing.T) {
	const frontZ = 60
	cam := NewCamera(100)
	cam.Target.Z = 30
	const w, h = 256, 256

	for _, rot := range []float64{0, 30, -115} {
		obj := math3d.V3(12, -25, frontZ)
		s, c := math.Sincos(rot * math.Pi / 180)
		world := obj.RotateZ(c, s)
		x, y, _, ok := cam.Project(world, w, h)
		if !ok {
			t.Fatalf("cap point not visible at rotation %v", rot)
		}
		origin, dir := cam.Ray(x, y, w, h)
		hit, ok := PickCap(origin, dir, frontZ, rot)
		if !ok {
			t.Fatalf("PickCap missed at rotation %v", rot)
		}
		if hit.Sub(obj.XY()).Len() > 1e-6 {
			t.Errorf("rotation %v: hit %v, want %v", rot, hit, obj.XY())
		}
	}

	if _, ok := PickCap(math3d.V3(0, 0, 100), math3d.V3(1, 0, 0), frontZ, 0); ok {
		t.Error("ray parallel to the cap should miss")
	}
	if _, ok := PickCap(math3d.V3(0, 0, 100), math3d.V3(0, 0, 1), frontZ, 0); ok {
		t.Error("ray pointing away from the cap should miss")
	}
}

func TestZoomAndPixelsPerUnit(t *testing.T) {
	cam := NewCamera(100)
	before := cam.PixelsPerUnit(200)
	cam.Zoom(0.5, 100, 1000)
	if cam.Distance != 210 {
		t.Errorf("distance = %v, want 210", cam.Distance)
	}
	if after := cam.PixelsPerUnit(200); math.Abs(after-2*before) > 1e-9 {
		t.Errorf("ppu after zoom = %v, want %v", after, 2*before)
	}
	cam.Zoom(0.01, 100, 1000)
	if cam.Distance != 100 {
		t.Errorf("distance = %v, want clamp to 100", cam.Distance)
	}
}
