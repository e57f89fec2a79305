package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/internal/config"
	"github.com/taigrr/knobsmith/pkg/paint"
	"github.com/taigrr/knobsmith/pkg/render"
	"github.com/taigrr/knobsmith/pkg/render/gpu"
	"github.com/taigrr/knobsmith/pkg/shading"
)

// Interaction tuning.
const (
	dragDegreesPerCell = 0.6
	keyImpulse         = 1.5  // Degrees per frame
	turnStep           = 15.0 // Knob rotation per key press, degrees
	zoomStep           = 1.1
)

type action int

const (
	actNone action = iota
	actQuit
	actYawLeft
	actYawRight
	actPitchUp
	actPitchDown
	actTurnLeft
	actTurnRight
	actZoomIn
	actZoomOut
	actNextLight
	actGizmos
	actShadows
	actMode
	actCollar
	actPaint
	actRust
	actWear
	actGunk
	actScratch
	actErase
	actFlip
	actMirror
	actReset
	actHUD
)

// keyBindings maps key names to actions, first match wins.
var keyBindings = []struct {
	keys []string
	act  action
}{
	{[]string{"escape", "ctrl+c"}, actQuit},
	{[]string{"a", "left"}, actYawLeft},
	{[]string{"d", "right"}, actYawRight},
	{[]string{"w", "up"}, actPitchUp},
	{[]string{"s", "down"}, actPitchDown},
	{[]string{"["}, actTurnLeft},
	{[]string{"]"}, actTurnRight},
	{[]string{"+", "="}, actZoomIn},
	{[]string{"-", "_"}, actZoomOut},
	{[]string{"tab"}, actNextLight},
	{[]string{"g"}, actGizmos},
	{[]string{"h"}, actShadows},
	{[]string{"m"}, actMode},
	{[]string{"c"}, actCollar},
	{[]string{"p"}, actPaint},
	{[]string{"1"}, actRust},
	{[]string{"2"}, actWear},
	{[]string{"3"}, actGunk},
	{[]string{"4"}, actScratch},
	{[]string{"e"}, actErase},
	{[]string{"f"}, actFlip},
	{[]string{"y"}, actMirror},
	{[]string{"r"}, actReset},
	{[]string{"?", "shift+/"}, actHUD},
}

// previewState is everything the preview loop mutates. Only the loop
// goroutine touches it.
type previewState struct {
	cfg     *config.Config
	scene   *render.Scene
	mask    *paint.Mask
	backend render.Backend
	orbit   *orbitState
	log     *zap.Logger

	paint    bool
	painting bool
	stroke   paint.Stroke

	dragging     bool
	lastX, lastY int

	showHUD bool
	dirty   bool
	notice  string
}

func newPreviewState(cfg *config.Config, log *zap.Logger) (*previewState, error) {
	scene, mask, err := cfg.Scene()
	if err != nil {
		return nil, err
	}
	backend, err := newBackend(cfg, log)
	if err != nil {
		return nil, err
	}
	return &previewState{
		cfg:     cfg,
		scene:   scene,
		mask:    mask,
		backend: backend,
		orbit:   newOrbitState(cfg.Render.FPS),
		log:     log,
		stroke: paint.Stroke{
			Tool:     paint.ToolBrush,
			Channel:  paint.Rust,
			Radius:   cfg.Paint.BrushRadius,
			Strength: cfg.Paint.BrushStrength,
		},
		dirty: true,
	}, nil
}

func newBackend(cfg *config.Config, log *zap.Logger) (render.Backend, error) {
	return render.NewBackend(cfg.Render.Backend, render.BackendOptions{
		Log:           log.Named(cfg.Render.Backend),
		NormalMapSize: cfg.Render.NormalMapSize,
	})
}

// do applies one action. It reports whether the preview should quit.
func (st *previewState) do(a action) bool {
	s := st.scene
	switch a {
	case actNone:
		return false
	case actQuit:
		return true
	case actYawLeft:
		st.orbit.Impulse(-keyImpulse, 0)
	case actYawRight:
		st.orbit.Impulse(keyImpulse, 0)
	case actPitchUp:
		st.orbit.Impulse(0, keyImpulse)
	case actPitchDown:
		st.orbit.Impulse(0, -keyImpulse)
	case actTurnLeft:
		s.Rotation -= turnStep
	case actTurnRight:
		s.Rotation += turnStep
	case actZoomIn:
		st.zoom(1 / zoomStep)
	case actZoomOut:
		st.zoom(zoomStep)
	case actNextLight:
		if len(s.Lights) > 0 {
			s.SelectedLight = (s.SelectedLight + 1) % len(s.Lights)
			s.Shadow.SelectedLight = s.SelectedLight
		}
	case actGizmos:
		s.Gizmos = !s.Gizmos
	case actShadows:
		s.Shadow.Enabled = !s.Shadow.Enabled
	case actMode:
		s.Mode = (s.Mode + 1) % (shading.ModeBoth + 1)
		st.notice = fmt.Sprintf("shading: %s", s.Mode)
	case actCollar:
		if s.Collar == nil {
			st.notice = "no collar loaded"
			return false
		}
		s.CollarEnabled = !s.CollarEnabled
	case actPaint:
		st.paint = !st.paint
		st.endStroke()
	case actRust, actWear, actGunk, actScratch:
		st.stroke.Channel = paint.Channel(a - actRust)
		st.stroke.Tool = paint.ToolBrush
		if st.stroke.Channel == paint.Scratch {
			st.stroke.Tool = paint.ToolScratch
		}
		st.paint = true
	case actErase:
		st.stroke.Erase = !st.stroke.Erase
	case actFlip:
		s.Camera.Orientation.Flip180 = !s.Camera.Orientation.Flip180
	case actMirror:
		s.Camera.Orientation.MirrorYaw = !s.Camera.Orientation.MirrorYaw
	case actReset:
		st.orbit.Reset()
		s.Camera = st.cfg.Camera
		s.Rotation = st.cfg.Render.Rotation
	case actHUD:
		st.showHUD = !st.showHUD
	}
	st.dirty = true
	return false
}

func (st *previewState) zoom(factor float64) {
	r := st.scene.Knob.Radius
	st.scene.Camera.Zoom(factor, r*1.5, r*20)
	st.dirty = true
}

// view maps terminal cells onto the rendered frame.
type view struct {
	width, height int // Rendered pixels
	supersample   int
}

// pixel returns the frame pixel at the centre of cell (x, y). Each cell
// covers two pixel rows.
func (v view) pixel(x, y int) (float64, float64) {
	ss := float64(max(v.supersample, 1))
	return (float64(x) + 0.5) * ss, (float64(2*y) + 1) * ss
}

func (st *previewState) press(x, y int, v view) {
	if st.paint {
		st.painting = true
		st.paintAt(x, y, v)
		return
	}
	st.dragging = true
	st.lastX, st.lastY = x, y
}

func (st *previewState) motion(x, y int, v view) {
	switch {
	case st.painting:
		st.paintAt(x, y, v)
	case st.dragging:
		st.orbit.Impulse(float64(x-st.lastX)*dragDegreesPerCell, float64(st.lastY-y)*dragDegreesPerCell)
		st.lastX, st.lastY = x, y
		st.dirty = true
	}
}

func (st *previewState) release() {
	st.dragging = false
	st.endStroke()
}

func (st *previewState) endStroke() {
	st.painting = false
	st.stroke.End()
}

// paintAt queues stamps where the cell's ray meets the front cap. They are
// applied together before the next frame.
func (st *previewState) paintAt(x, y int, v view) {
	s := st.scene
	p := s.Knob.Sanitized()
	sx, sy := v.pixel(x, y)
	origin, dir := s.Camera.Ray(sx, sy, v.width, v.height)
	hit, ok := render.PickCap(origin, dir, p.Height, s.Rotation)
	if !ok {
		st.stroke.End()
		return
	}
	u, w := paint.UV(hit.X, hit.Y, p.Radius)
	if !paint.InRange(u, w) {
		st.stroke.End()
		return
	}
	st.mask.Queue(st.stroke.MoveTo(u, w)...)
}

// tick advances the orbit and pending paint. It reports whether a redraw
// is due.
func (st *previewState) tick() bool {
	if st.orbit.Moving() {
		dYaw, dPitch := st.orbit.Step()
		st.scene.Camera.Orbit(dYaw, dPitch)
		st.dirty = true
	}
	if st.mask.Pending() > 0 {
		st.mask.Apply()
		st.dirty = true
	}
	return st.dirty
}

// applyConfig swaps in a reloaded config. The interactive camera, knob
// turn and painted mask survive unless the file changed them.
func (st *previewState) applyConfig(cfg *config.Config) error {
	scene, mask, err := cfg.Scene()
	if err != nil {
		return err
	}
	old := st.cfg
	if cfg.Camera == old.Camera {
		scene.Camera = st.scene.Camera
	}
	if cfg.Render.Rotation == old.Render.Rotation {
		scene.Rotation = st.scene.Rotation
	}
	if cfg.Paint.MaskImage == old.Paint.MaskImage && cfg.Paint.MaskSize == old.Paint.MaskSize {
		mask = st.mask
		scene.Paint = mask
	}

	if cfg.Render.Backend != old.Render.Backend || cfg.Render.NormalMapSize != old.Render.NormalMapSize {
		backend, err := newBackend(cfg, st.log)
		if err != nil {
			return err
		}
		closeBackend(st.backend)
		st.backend = backend
	}
	if cfg.Render.FPS != old.Render.FPS {
		st.orbit = newOrbitState(cfg.Render.FPS)
	}

	st.cfg = cfg
	st.scene = scene
	st.mask = mask
	st.stroke.Radius = cfg.Paint.BrushRadius
	st.stroke.Strength = cfg.Paint.BrushStrength
	st.dirty = true
	return nil
}

// draw renders the scene into fb, supersampling through hi when asked.
// A skipped GPU frame keeps the state dirty so the next tick retries.
func (st *previewState) draw(fb, hi *render.Framebuffer, supersample int) error {
	target := fb
	if supersample > 1 {
		hi.Resize(fb.Width*supersample, fb.Height*supersample)
		target = hi
	}
	if err := st.backend.RenderFrame(st.scene, target); err != nil {
		if errors.Is(err, gpu.ErrFrameSkipped) {
			return nil
		}
		return err
	}
	if target == hi {
		small := render.Downscale(hi.ToImage(), fb.Width, fb.Height)
		for y := range fb.Height {
			for x := range fb.Width {
				fb.SetPixel(x, y, small.RGBAAt(x, y))
			}
		}
	}
	st.dirty = false
	return nil
}

// stats returns the last frame's counters when the backend keeps them.
func (st *previewState) stats() render.FrameStats {
	switch b := st.backend.(type) {
	case *render.Painter:
		return b.Stats
	case *gpu.Renderer:
		return b.Stats
	}
	return render.FrameStats{}
}
