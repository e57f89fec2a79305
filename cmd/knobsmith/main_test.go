package main

import (
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/internal/config"
	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/paint"
	"github.com/taigrr/knobsmith/pkg/render"
	"github.com/taigrr/knobsmith/pkg/render/gpu"
	"github.com/taigrr/knobsmith/pkg/shading"
)

func testState(t *testing.T) *previewState {
	t.Helper()
	cfg := config.Default()
	cfg.Knob.RadialSegments = 32
	cfg.Paint.MaskSize = 32
	st, err := newPreviewState(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newPreviewState: %v", err)
	}
	return st
}

func TestOrbitDecays(t *testing.T) {
	o := newOrbitState(30)
	o.Impulse(3, -2)
	if !o.Moving() {
		t.Fatal("impulse did not move the orbit")
	}
	var yaw, pitch float64
	for range 300 {
		dy, dp := o.Step()
		yaw += dy
		pitch += dp
	}
	if o.Moving() {
		t.Errorf("orbit still moving: %+v", o)
	}
	if yaw <= 3 || pitch >= -2 {
		t.Errorf("travelled yaw %g pitch %g, want beyond the first step", yaw, pitch)
	}
	o.Impulse(1, 1)
	o.Reset()
	if o.Moving() {
		t.Error("Reset kept velocity")
	}
}

func TestActions(t *testing.T) {
	tests := []struct {
		name  string
		act   action
		check func(*testing.T, *previewState)
	}{
		{"turn", actTurnRight, func(t *testing.T, st *previewState) {
			if st.scene.Rotation != turnStep {
				t.Errorf("rotation = %g", st.scene.Rotation)
			}
		}},
		{"next light", actNextLight, func(t *testing.T, st *previewState) {
			if st.scene.SelectedLight != 1 || st.scene.Shadow.SelectedLight != 1 {
				t.Errorf("selected %d shadow %d", st.scene.SelectedLight, st.scene.Shadow.SelectedLight)
			}
		}},
		{"gizmos", actGizmos, func(t *testing.T, st *previewState) {
			if !st.scene.Gizmos {
				t.Error("gizmos not toggled")
			}
		}},
		{"mode", actMode, func(t *testing.T, st *previewState) {
			if st.scene.Mode != shading.ModeArtistic || st.notice == "" {
				t.Errorf("mode %v notice %q", st.scene.Mode, st.notice)
			}
		}},
		{"collar without mesh", actCollar, func(t *testing.T, st *previewState) {
			if st.scene.CollarEnabled || st.notice == "" {
				t.Error("collar enabled without a mesh")
			}
		}},
		{"scratch channel", actScratch, func(t *testing.T, st *previewState) {
			if !st.paint || st.stroke.Channel != paint.Scratch || st.stroke.Tool != paint.ToolScratch {
				t.Errorf("paint %v stroke %+v", st.paint, st.stroke)
			}
		}},
		{"flip", actFlip, func(t *testing.T, st *previewState) {
			if !st.scene.Camera.Orientation.Flip180 {
				t.Error("flip not toggled")
			}
		}},
		{"zoom in", actZoomIn, func(t *testing.T, st *previewState) {
			if st.scene.Camera.Distance >= st.cfg.Camera.Distance {
				t.Errorf("distance %g", st.scene.Camera.Distance)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := testState(t)
			st.dirty = false
			if st.do(tt.act) {
				t.Fatal("action quit the preview")
			}
			tt.check(t, st)
		})
	}

	st := testState(t)
	if !st.do(actQuit) {
		t.Error("quit did not quit")
	}
}

func TestResetRestoresCamera(t *testing.T) {
	st := testState(t)
	st.scene.Camera.Orbit(40, 10)
	st.do(actTurnLeft)
	st.orbit.Impulse(5, 0)
	st.do(actReset)
	if st.scene.Camera != st.cfg.Camera || st.scene.Rotation != st.cfg.Render.Rotation || st.orbit.Moving() {
		t.Errorf("reset left camera %+v rotation %g", st.scene.Camera, st.scene.Rotation)
	}
}

func TestDragOrbits(t *testing.T) {
	st := testState(t)
	v := view{width: 80, height: 48, supersample: 1}
	yaw := st.scene.Camera.Yaw
	st.press(10, 10, v)
	st.motion(20, 10, v)
	st.release()
	for range 5 {
		st.tick()
	}
	if st.scene.Camera.Yaw <= yaw {
		t.Errorf("drag right did not increase yaw: %g -> %g", yaw, st.scene.Camera.Yaw)
	}
}

func TestPaintOnCap(t *testing.T) {
	st := testState(t)
	st.do(actRust)
	st.stroke.Radius = 0.2

	const w, h = 160, 96
	v := view{width: w, height: h, supersample: 1}
	p := st.scene.Knob.Sanitized()
	px, py, _, ok := st.scene.Camera.Project(math3d.V3(0, 0, p.Height), w, h)
	if !ok {
		t.Fatal("cap centre not visible")
	}
	cx, cy := int(px), int(py/2)

	st.press(cx, cy, v)
	if st.mask.Pending() == 0 {
		t.Fatal("press on the cap queued no stamps")
	}
	st.release()
	if !st.tick() {
		t.Error("applying paint did not mark the frame dirty")
	}
	if st.mask.Pending() != 0 {
		t.Error("stamps left pending after tick")
	}
	if got := st.mask.SampleBilinear(0.5, 0.5).Rust; got <= 0 {
		t.Errorf("rust at cap centre = %g", got)
	}

	// Off the knob nothing is queued.
	st.press(0, 0, v)
	if st.mask.Pending() != 0 {
		t.Error("press off the cap queued stamps")
	}
}

func TestViewPixel(t *testing.T) {
	x, y := view{supersample: 2}.pixel(3, 4)
	if x != 7 || y != 18 {
		t.Errorf("pixel = (%g, %g), want (7, 18)", x, y)
	}
}

func TestApplyConfigKeepsInteraction(t *testing.T) {
	st := testState(t)
	st.scene.Camera.Orbit(30, 0)
	st.do(actTurnRight)
	st.mask.Queue(paint.Stamp{U: 0.5, V: 0.5, Radius: 0.2, Channel: paint.Wear, Strength: 1})
	st.mask.Apply()
	mask := st.mask
	camera := st.scene.Camera

	next := config.Default()
	next.Knob.RadialSegments = 32
	next.Paint.MaskSize = 32
	next.Material.Roughness = 0.9
	next.Render.Backend = render.PainterName
	if err := st.applyConfig(next); err != nil {
		t.Fatal(err)
	}
	if st.scene.Camera != camera {
		t.Error("reload reset the interactive camera")
	}
	if st.scene.Rotation != turnStep {
		t.Errorf("reload reset the knob turn: %g", st.scene.Rotation)
	}
	if st.mask != mask || st.scene.Paint != mask {
		t.Error("reload dropped the painted mask")
	}
	if st.scene.Material.Roughness != 0.9 {
		t.Error("reloaded material not applied")
	}

	moved := config.Default()
	moved.Knob.RadialSegments = 32
	moved.Paint.MaskSize = 32
	moved.Camera.Yaw = 90
	if err := st.applyConfig(moved); err != nil {
		t.Fatal(err)
	}
	if st.scene.Camera.Yaw != 90 {
		t.Errorf("changed camera in file not applied: yaw %g", st.scene.Camera.Yaw)
	}
}

func TestDrawSupersampled(t *testing.T) {
	st := testState(t)
	fb := render.NewFramebuffer(40, 40)
	hi := render.NewFramebuffer(0, 0)
	if err := st.draw(fb, hi, 2); err != nil {
		t.Fatal(err)
	}
	if hi.Width != 80 || hi.Height != 80 {
		t.Errorf("hi-res target %dx%d", hi.Width, hi.Height)
	}
	if st.dirty {
		t.Error("frame still dirty after drawing")
	}
	if fb.GetPixel(20, 20) == st.scene.Background {
		t.Error("knob missing from the downscaled frame")
	}
	if st.stats().Drawn == 0 {
		t.Error("no stats from the painter")
	}
}

func TestPNGSink(t *testing.T) {
	dir := t.TempDir()
	sink := pngSink(dir, "knob")
	if err := sink(7, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "knob_007.png")); err != nil {
		t.Errorf("frame not written: %v", err)
	}
}

func TestNewBackendHonoursNormalMapSize(t *testing.T) {
	for _, name := range []string{render.PainterName, gpu.Name} {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Render.Backend = name
			cfg.Render.NormalMapSize = 64

			b, err := newBackend(cfg, zap.NewNop())
			if err != nil {
				t.Fatalf("newBackend: %v", err)
			}
			defer closeBackend(b)
			if b.Name() != name {
				t.Errorf("backend = %q, want %q", b.Name(), name)
			}
			pb, ok := b.(interface{ Pipeline() *render.Pipeline })
			if !ok {
				t.Fatalf("%T does not expose its pipeline", b)
			}
			if got := pb.Pipeline().Baker().Size(); got != 64 {
				t.Errorf("normal map size = %d, want 64", got)
			}
		})
	}
}

func TestRunExportWritesFrames(t *testing.T) {
	cfg := config.Default()
	cfg.Knob.RadialSegments = 24
	cfg.Render.NormalMapSize = 32
	cfg.Export.Dir = filepath.Join(t.TempDir(), "frames")
	cfg.Export.Frames = 2
	cfg.Export.Width, cfg.Export.Height = 24, 24
	cfg.Export.Supersample = 1

	if err := runExport(cfg); err != nil {
		t.Fatalf("runExport: %v", err)
	}
	for i := range 2 {
		if _, err := os.Stat(framePath(cfg.Export.Dir, cfg.Export.Prefix, i)); err != nil {
			t.Errorf("frame %d missing: %v", i, err)
		}
	}
}

func TestConfigWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("render:\n  fps: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := newConfigWatcher(path, zap.NewNop())
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("render:\n  fps: 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	var nilWatcher *configWatcher
	if nilWatcher.Changed() != nil || nilWatcher.Close() != nil {
		t.Error("nil watcher should be inert")
	}
}

func TestFrameInterval(t *testing.T) {
	if got := frameInterval(0); got != time.Second {
		t.Errorf("frameInterval(0) = %v", got)
	}
	if got := frameInterval(50); math.Abs(float64(got-20*time.Millisecond)) > 1 {
		t.Errorf("frameInterval(50) = %v", got)
	}
}
