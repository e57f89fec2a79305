package render

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// MaxPitch bounds the orbit pitch in degrees.
const MaxPitch = 85.0

// OrientationConfig holds the debug axis flips. It is passed explicitly to
// every basis computation.
type OrientationConfig struct {
	InvertRight   bool `yaml:"invert_right"`
	InvertUp      bool `yaml:"invert_up"`
	InvertForward bool `yaml:"invert_forward"`
	MirrorYaw     bool `yaml:"mirror_yaw"`
	Flip180       bool `yaml:"flip_180"`
}

// Basis is the camera frame in world space. Forward points from the camera
// toward the target.
type Basis struct {
	Right, Up, Forward math3d.Vec3
}

var worldUp = math3d.V3(0, 1, 0)

// orbitDirection is the unit vector from the target toward the camera.
func orbitDirection(yawDeg, pitchDeg float64, o OrientationConfig) math3d.Vec3 {
	if o.MirrorYaw {
		yawDeg = -yawDeg
	}
	pitchDeg = math3d.Clamp(pitchDeg, -MaxPitch, MaxPitch)
	sy, cy := math.Sincos(yawDeg * math.Pi / 180)
	sp, cp := math.Sincos(pitchDeg * math.Pi / 180)
	return math3d.V3(sy*cp, sp, cy*cp)
}

// ComputeBasis derives the orbit camera frame for yaw and pitch in degrees.
// At yaw = pitch = 0 the camera sits on +Z looking toward -Z.
func ComputeBasis(yawDeg, pitchDeg float64, o OrientationConfig) Basis {
	forward := orbitDirection(yawDeg, pitchDeg, o).Negate()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward)

	if o.InvertRight {
		right = right.Negate()
	}
	if o.InvertUp {
		up = up.Negate()
	}
	if o.InvertForward {
		forward = forward.Negate()
	}
	if o.Flip180 {
		right = right.Negate()
		forward = forward.Negate()
	}
	return Basis{Right: right, Up: up, Forward: forward}
}

// Camera is an orbit camera around Target. It is a plain value so callers
// can snapshot and restore it.
type Camera struct {
	Yaw      float64 `yaml:"yaw"`   // Degrees
	Pitch    float64 `yaml:"pitch"` // Degrees
	Distance float64 `yaml:"distance"`
	FOV      float64 `yaml:"fov"` // Vertical, degrees
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`

	Target      math3d.Vec3       `yaml:"target"`
	Orientation OrientationConfig `yaml:"orientation"`
}

// NewCamera returns a camera framing a knob of the given reference radius.
func NewCamera(radius float64) Camera {
	radius = max(radius, 1)
	return Camera{
		Yaw:      0,
		Pitch:    20,
		Distance: radius * 4.2,
		FOV:      35,
		Near:     radius * 0.05,
		Far:      radius * 40,
	}
}

// Basis returns the camera frame.
func (c Camera) Basis() Basis {
	return ComputeBasis(c.Yaw, c.Pitch, c.Orientation)
}

// Eye returns the camera position. The debug flips change the frame, not
// where the camera sits.
func (c Camera) Eye() math3d.Vec3 {
	return c.Target.Add(orbitDirection(c.Yaw, c.Pitch, c.Orientation).Scale(c.Distance))
}

// ViewMatrix returns the world-to-view transform.
func (c Camera) ViewMatrix() math3d.Mat4 {
	b := c.Basis()
	return math3d.ViewFromBasis(b.Right, b.Up, b.Forward, c.Eye())
}

// ProjectionMatrix returns the perspective projection for the aspect ratio.
func (c Camera) ProjectionMatrix(aspect float64) math3d.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return math3d.Perspective(c.FOV*math.Pi/180, aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection × view.
func (c Camera) ViewProjectionMatrix(aspect float64) math3d.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// Orbit rotates the camera by the given deltas in degrees, clamping pitch.
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 360)
	c.Pitch = math3d.Clamp(c.Pitch+dPitch, -MaxPitch, MaxPitch)
}

// Zoom scales the orbit distance, keeping it between min and max.
func (c *Camera) Zoom(factor, minDist, maxDist float64) {
	c.Distance = math3d.Clamp(c.Distance*factor, minDist, maxDist)
}

// PixelsPerUnit is the screen scale at the target for a viewport height in
// pixels.
func (c Camera) PixelsPerUnit(height int) float64 {
	half := math.Tan(c.FOV * math.Pi / 360)
	if half <= 0 || c.Distance <= 0 {
		return 0
	}
	return float64(height) / 2 / half / c.Distance
}

// projected is a vertex in screen space. Depth is the view-space distance
// along the forward axis.
type projected struct {
	X, Y, Depth float64
	W           float64
}

func project(viewProj math3d.Mat4, world math3d.Vec3, w, h int) projected {
	clip := viewProj.MulVec4(math3d.V4FromV3(world, 1))
	p := projected{W: clip.W, Depth: clip.W}
	if clip.W == 0 {
		return p
	}
	inv := 1 / clip.W
	p.X = (clip.X*inv + 1) * 0.5 * float64(w)
	p.Y = (1 - clip.Y*inv) * 0.5 * float64(h) // Y is flipped
	return p
}

// Project maps a world point to screen coordinates for a w×h viewport.
// ok is false behind the camera or outside the view volume.
func (c Camera) Project(world math3d.Vec3, w, h int) (x, y, depth float64, ok bool) {
	aspect := float64(w) / float64(max(h, 1))
	clip := c.ViewProjectionMatrix(aspect).MulVec4(math3d.V4FromV3(world, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * float64(w)
	y = (1 - ndc.Y) * 0.5 * float64(h)
	return x, y, clip.W, true
}

// Ray returns the world-space ray through screen point (sx, sy).
func (c Camera) Ray(sx, sy float64, w, h int) (origin, dir math3d.Vec3) {
	b := c.Basis()
	aspect := float64(w) / float64(max(h, 1))
	half := math.Tan(c.FOV * math.Pi / 360)
	nx := (2*sx/float64(max(w, 1)) - 1) * half * aspect
	ny := (1 - 2*sy/float64(max(h, 1))) * half
	dir = b.Forward.Add(b.Right.Scale(nx)).Add(b.Up.Scale(ny)).Normalize()
	return c.Eye(), dir
}

// PickCap intersects a world ray with the knob's front cap plane z = frontZ.
// rotation is the knob's spin in degrees; the hit is returned in object
// space.
func PickCap(origin, dir math3d.Vec3, frontZ, rotation float64) (math3d.Vec2, bool) {
	if math.Abs(dir.Z) < math3d.Epsilon {
		return math3d.Vec2{}, false
	}
	t := (frontZ - origin.Z) / dir.Z
	if t <= 0 {
		return math3d.Vec2{}, false
	}
	hit := origin.Add(dir.Scale(t))
	s, c := math.Sincos(-rotation * math.Pi / 180)
	obj := hit.RotateZ(c, s)
	return obj.XY(), true
}
