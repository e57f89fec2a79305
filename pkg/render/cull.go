package render

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
)

// Plane is the half-space N·p + D ≥ 0.
type Plane struct {
	N math3d.Vec3
	D float64
}

// Signed returns the signed distance of p, positive on the inside. The
// plane must be normalized for the value to be a distance.
func (pl Plane) Signed(p math3d.Vec3) float64 {
	return pl.N.Dot(p) + pl.D
}

func (pl Plane) normalized() Plane {
	l := pl.N.Len()
	if l < math3d.Epsilon {
		return pl
	}
	return Plane{N: pl.N.Scale(1 / l), D: pl.D / l}
}

// Frustum is the view volume as six inward-facing planes: left, right,
// bottom, top, near, far.
type Frustum [6]Plane

// FrustumOf extracts the view volume of a projection × view matrix. Each
// clip-space bound -w ≤ c ≤ w becomes the plane row3 ± row(c).
func FrustumOf(viewProj math3d.Mat4) Frustum {
	var f Frustum
	w := viewProj.Row(3)
	for axis := range 3 {
		r := viewProj.Row(axis)
		f[2*axis] = plane(w.Add(r)).normalized()
		f[2*axis+1] = plane(w.Sub(r)).normalized()
	}
	return f
}

func plane(v math3d.Vec4) Plane {
	return Plane{N: v.Vec3(), D: v.W}
}

// Contains reports whether p lies inside every plane.
func (f Frustum) Contains(p math3d.Vec3) bool {
	for _, pl := range f {
		if pl.Signed(p) < 0 {
			return false
		}
	}
	return true
}

// Visible is a conservative box test: false only when the box lies wholly
// outside one plane.
func (f Frustum) Visible(b Bounds) bool {
	for _, pl := range f {
		// Box corner furthest along the plane normal.
		far := b.Min
		if pl.N.X >= 0 {
			far.X = b.Max.X
		}
		if pl.N.Y >= 0 {
			far.Y = b.Max.Y
		}
		if pl.N.Z >= 0 {
			far.Z = b.Max.Z
		}
		if pl.Signed(far) < 0 {
			return false
		}
	}
	return true
}

// Bounds is an axis-aligned box in world space.
type Bounds struct {
	Min, Max math3d.Vec3
}

// Size returns the box extent.
func (b Bounds) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Bounds) extend(p math3d.Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// spin returns the box bounding b after turning it about the knob axis.
func (b Bounds) spin(c, s float64) Bounds {
	xs := [2]float64{b.Min.X, b.Max.X}
	ys := [2]float64{b.Min.Y, b.Max.Y}
	first := true
	var out Bounds
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range [2]float64{b.Min.Z, b.Max.Z} {
				p := math3d.V3(x, y, z).RotateZ(c, s)
				if first {
					out, first = Bounds{Min: p, Max: p}, false
					continue
				}
				out = out.extend(p)
			}
		}
	}
	return out
}

// BoundsOf returns the world bounds of mesh spun by rotation degrees about
// the knob axis. Missing cached bounds are computed without touching the
// mesh.
func BoundsOf(mesh *models.Mesh, rotation float64) Bounds {
	b := Bounds{Min: mesh.BoundsMin, Max: mesh.BoundsMax}
	if b.Min == b.Max && len(mesh.Positions) > 0 {
		b = Bounds{Min: mesh.Positions[0], Max: mesh.Positions[0]}
		for _, p := range mesh.Positions[1:] {
			b = b.extend(p)
		}
	}
	if rotation == 0 {
		return b
	}
	s, c := math.Sincos(rotation * math.Pi / 180)
	return b.spin(c, s)
}
