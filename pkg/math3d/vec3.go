// Package math3d provides the vector, matrix and scalar helpers shared by the
// knob mesh builder, the shading model and the rasterizer backends.
//
// Object space is right-handed with the knob axis on +Z (the front cap faces
// +Z); the camera orbits around world up (+Y).
package math3d

import "math"

// Vec3 is a point, direction or linear RGB colour.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the zero vector.
func Zero3() Vec3 {
	return Vec3{}
}

// AxisZ returns the knob revolution axis (0, 0, 1).
func AxisZ() Vec3 {
	return Vec3{0, 0, 1}
}

func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul multiplies component-wise; shading uses it to tint colours.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns a × b, right-handed.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LenSq() float64 {
	return a.Dot(a)
}

func (a Vec3) Len() float64 {
	return math.Sqrt(a.LenSq())
}

func (a Vec3) Distance(b Vec3) float64 {
	return a.Sub(b).Len()
}

// Normalize returns the unit vector along a, or zero for a zero vector.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Lerp moves from a toward b by t; t is not clamped.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// Min and Max are component-wise, for bounds.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

// XY drops Z, giving the position in the cap plane.
func (a Vec3) XY() Vec2 {
	return Vec2{a.X, a.Y}
}

// Clamp01 clamps every component into [0, 1].
func (a Vec3) Clamp01() Vec3 {
	return Vec3{Clamp01(a.X), Clamp01(a.Y), Clamp01(a.Z)}
}

// IsFinite reports whether no component is NaN or infinite.
func (a Vec3) IsFinite() bool {
	s := a.X + a.Y + a.Z
	return !math.IsNaN(s) && !math.IsInf(s, 0)
}

// RotateZ rotates the vector around +Z given the cosine and sine of the angle.
func (a Vec3) RotateZ(c, s float64) Vec3 {
	return Vec3{a.X*c - a.Y*s, a.X*s + a.Y*c, a.Z}
}
