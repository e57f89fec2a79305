package gpu

import (
	"image/color"

	"github.com/chewxy/math32"

	"github.com/taigrr/knobsmith/pkg/render"
)

// VertexStride is the float count per packed vertex:
// position (x, y pixels) then color (r, g, b, a in 0-1).
const VertexStride = 6

// UniformSize is the float count of the frame uniform block:
// viewport (w, h), padding, shadow gray (r, g, b, a).
const UniformSize = 8

// Packed is a frame's draw list flattened for upload.
type Packed struct {
	Vertices []float32
	// CollarVertices counts vertices that came from collar triangles.
	CollarVertices int
}

// VertexCount is the number of packed vertices.
func (p Packed) VertexCount() int {
	return len(p.Vertices) / VertexStride
}

// PackFrame flattens the draw list in order into a triangle list. dst is
// reused when large enough.
func PackFrame(f *render.Frame, dst []float32) Packed {
	n := len(f.DrawList) * 3 * VertexStride
	if cap(dst) < n {
		dst = make([]float32, 0, n)
	}
	out := Packed{Vertices: dst[:0]}
	for _, t := range f.DrawList {
		for _, v := range f.Screen(t) {
			out.Vertices = append(out.Vertices,
				finite(v.X), finite(v.Y),
				unorm(v.Color.R), unorm(v.Color.G), unorm(v.Color.B), unorm(v.Color.A),
			)
		}
		if t.Collar {
			out.CollarVertices += 3
		}
	}
	return out
}

// PackUniforms builds the frame uniform block.
func PackUniforms(f *render.Frame) []float32 {
	g := f.ShadowGray
	return []float32{
		float32(f.Width), float32(f.Height), 0, 0,
		unorm(g.R), unorm(g.G), unorm(g.B), 1,
	}
}

// UnpackVertex reads vertex i of a packed buffer back into screen space.
func UnpackVertex(data []float32, i int) render.ScreenVertex {
	d := data[i*VertexStride : (i+1)*VertexStride]
	return render.ScreenVertex{
		X: float64(d[0]),
		Y: float64(d[1]),
		Color: color.RGBA{
			R: quantize(d[2]), G: quantize(d[3]), B: quantize(d[4]), A: quantize(d[5]),
		},
	}
}

func finite(v float64) float32 {
	f := float32(v)
	if math32.IsNaN(f) || math32.IsInf(f, 0) {
		return 0
	}
	return f
}

func unorm(c uint8) float32 {
	return float32(c) / 255
}

func quantize(v float32) uint8 {
	return uint8(math32.Floor(math32.Max(0, math32.Min(1, v))*255 + 0.5))
}
