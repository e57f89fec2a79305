package math3d

// Vec4 is a homogeneous clip-space position or a matrix row or column.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 extends v with w.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W}
}

func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W}
}

func (a Vec4) Scale(s float64) Vec4 {
	return Vec4{a.X * s, a.Y * s, a.Z * s, a.W * s}
}

// Vec3 drops W.
func (a Vec4) Vec3() Vec3 {
	return Vec3{a.X, a.Y, a.Z}
}

// PerspectiveDivide maps clip space to normalized device coordinates. A
// zero W returns XYZ unchanged.
func (a Vec4) PerspectiveDivide() Vec3 {
	if a.W == 0 {
		return a.Vec3()
	}
	inv := 1 / a.W
	return Vec3{a.X * inv, a.Y * inv, a.Z * inv}
}
