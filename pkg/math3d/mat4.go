package math3d

import "math"

// Mat4 is a 4×4 matrix in column-major order: element (row r, column c) is
// m[c*4+r], so the last column holds the translation.
type Mat4 [16]float64

// columns assembles a matrix from its four columns.
func columns(c0, c1, c2, c3 Vec4) Mat4 {
	return Mat4{
		c0.X, c0.Y, c0.Z, c0.W,
		c1.X, c1.Y, c1.Z, c1.W,
		c2.X, c2.Y, c2.Z, c2.W,
		c3.X, c3.Y, c3.Z, c3.W,
	}
}

// Column returns column c.
func (m Mat4) Column(c int) Vec4 {
	return Vec4{m[c*4], m[c*4+1], m[c*4+2], m[c*4+3]}
}

// Row returns row r.
func (m Mat4) Row(r int) Vec4 {
	return Vec4{m[r], m[4+r], m[8+r], m[12+r]}
}

// Translate moves points by t.
func Translate(t Vec3) Mat4 {
	return columns(
		Vec4{1, 0, 0, 0},
		Vec4{0, 1, 0, 0},
		Vec4{0, 0, 1, 0},
		V4FromV3(t, 1),
	)
}

// RotateZ turns counter-clockwise about the knob axis by angle radians.
func RotateZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	return columns(
		Vec4{c, s, 0, 0},
		Vec4{-s, c, 0, 0},
		Vec4{0, 0, 1, 0},
		Vec4{0, 0, 0, 1},
	)
}

// Perspective is a right-handed projection onto the [-1, 1] clip cube
// looking down -Z. fovy is the vertical field of view in radians.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	focal := 1 / math.Tan(fovy/2)
	depth := near - far
	return columns(
		Vec4{focal / aspect, 0, 0, 0},
		Vec4{0, focal, 0, 0},
		Vec4{0, 0, (far + near) / depth, -1},
		Vec4{0, 0, 2 * far * near / depth, 0},
	)
}

// ViewFromBasis builds the world-to-view transform for a camera frame at
// eye. The basis is used as given, so inverted debug frames keep their
// handedness.
func ViewFromBasis(right, up, forward, eye Vec3) Mat4 {
	back := forward.Negate()
	return columns(
		Vec4{right.X, up.X, back.X, 0},
		Vec4{right.Y, up.Y, back.Y, 0},
		Vec4{right.Z, up.Z, back.Z, 0},
		Vec4{-right.Dot(eye), -up.Dot(eye), -back.Dot(eye), 1},
	)
}

// Mul returns m × n, applying n first.
func (m Mat4) Mul(n Mat4) Mat4 {
	return columns(
		m.MulVec4(n.Column(0)),
		m.MulVec4(n.Column(1)),
		m.MulVec4(n.Column(2)),
		m.MulVec4(n.Column(3)),
	)
}

// MulVec4 returns m × v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return m.Column(0).Scale(v.X).
		Add(m.Column(1).Scale(v.Y)).
		Add(m.Column(2).Scale(v.Z)).
		Add(m.Column(3).Scale(v.W))
}

// MulVec3 transforms a point, dividing by w when it is not zero.
func (m Mat4) MulVec3(p Vec3) Vec3 {
	return m.MulVec4(V4FromV3(p, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms a direction; translation does not apply.
func (m Mat4) MulVec3Dir(d Vec3) Vec3 {
	return m.MulVec4(V4FromV3(d, 0)).Vec3()
}
