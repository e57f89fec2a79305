package render

import (
	"image/color"
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/shading"
)

var (
	gizmoHighlight = RGB(255, 220, 60)
	axisRed        = RGB(230, 70, 70)
	axisGreen      = RGB(80, 220, 90)
	axisBlue       = RGB(80, 130, 255)
)

// Wireframe draws line overlays for a prepared frame.
type Wireframe struct {
	frame *Frame
	fb    *Framebuffer
}

// NewWireframe creates an overlay drawer projecting through the frame's
// camera.
func NewWireframe(f *Frame, fb *Framebuffer) *Wireframe {
	return &Wireframe{frame: f, fb: fb}
}

// DrawLine3D draws a line in 3D space.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, c color.RGBA) {
	a := project(w.frame.ViewProj, p1, w.fb.Width, w.fb.Height)
	b := project(w.frame.ViewProj, p2, w.fb.Width, w.fb.Height)

	// Only draw when both endpoints are in front of the camera
	// (proper line clipping would be more complex)
	if a.W <= 0 || b.W <= 0 {
		return
	}
	w.fb.DrawLine(int(a.X), int(a.Y), int(b.X), int(b.Y), c)
}

// DrawAxes draws the world axes at origin.
func (w *Wireframe) DrawAxes(origin math3d.Vec3, length float64) {
	w.DrawLine3D(origin, origin.Add(math3d.V3(length, 0, 0)), axisRed)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, length, 0)), axisGreen)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, 0, length)), axisBlue)
}

// DrawPoint draws a point as a small cross.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, c color.RGBA) {
	h := size / 2
	w.DrawLine3D(math3d.V3(pos.X-h, pos.Y, pos.Z), math3d.V3(pos.X+h, pos.Y, pos.Z), c)
	w.DrawLine3D(math3d.V3(pos.X, pos.Y-h, pos.Z), math3d.V3(pos.X, pos.Y+h, pos.Z), c)
	w.DrawLine3D(math3d.V3(pos.X, pos.Y, pos.Z-h), math3d.V3(pos.X, pos.Y, pos.Z+h), c)
}

// LightMarker is where a light gizmo lands on screen.
type LightMarker struct {
	Light    int // Index into the scene lights
	X, Y     int
	Radius   int
	Selected bool
}

// LightMarkers places a marker per light. Point lights sit at their
// projection; directional lights sit on a ray from the anchor toward the
// light's screen direction.
func LightMarkers(f *Frame, lights []shading.Light, selected int) []LightMarker {
	out := make([]LightMarker, 0, len(lights))
	radius := max(2, int(f.ScreenRadius*0.08))
	for i, l := range lights {
		m := LightMarker{Light: i, Radius: radius, Selected: i == selected}
		if l.Type == shading.LightPoint {
			p := project(f.ViewProj, l.Position, f.Width, f.Height)
			if p.W <= 0 {
				continue
			}
			m.X, m.Y = int(math.Round(p.X)), int(math.Round(p.Y))
		} else {
			dir, _ := l.Direction(math3d.Vec3{}, 1)
			d := math3d.V2(dir.Dot(f.Basis.Right), -dir.Dot(f.Basis.Up))
			if d.Len() < math3d.Epsilon {
				d = math3d.V2(0, -1)
			}
			d = d.Normalize().Scale(f.ScreenRadius * 1.6)
			m.X = int(math.Round(f.Anchor.X + d.X))
			m.Y = int(math.Round(f.Anchor.Y + d.Y))
		}
		out = append(out, m)
	}
	return out
}

// DrawGizmos overlays the light markers and, while any debug orientation
// flag is set, the world axes.
func DrawGizmos(fb *Framebuffer, f *Frame, s *Scene) {
	ax, ay := int(math.Round(f.Anchor.X)), int(math.Round(f.Anchor.Y))
	for _, m := range LightMarkers(f, s.Lights, s.SelectedLight) {
		c := RGB8(s.Lights[m.Light].Color)
		if m.Selected {
			fb.DrawLine(ax, ay, m.X, m.Y, gizmoHighlight)
			fb.DrawCircle(m.X, m.Y, m.Radius+1, gizmoHighlight)
		}
		fb.DrawCircle(m.X, m.Y, m.Radius, c)
		fb.SetPixel(m.X, m.Y, c)
	}

	if s.Camera.Orientation != (OrientationConfig{}) {
		w := NewWireframe(f, fb)
		w.DrawAxes(s.Camera.Target, s.Knob.Radius*1.5)
		w.DrawPoint(s.Camera.Target, s.Knob.Radius*0.2, gizmoHighlight)
	}
}
