package render

import (
	"image/color"
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// ScreenVertex is a projected vertex in pixel coordinates carrying its final
// shaded color.
type ScreenVertex struct {
	X, Y  float64
	Color color.RGBA
}

// edgeCoeffs returns A, B, C for edge(x,y) = A*x + B*y + C, the signed
// area of the parallelogram spanned by the edge and the point.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates edge function at point (x, y)
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// rasterize walks the pixel centres covered by the triangle, clipped to a
// w×h target, and calls fn with the barycentric weights of each. Either
// winding is accepted.
func rasterize(v [3]ScreenVertex, w, h int, fn func(x, y int, b0, b1, b2 float64)) {
	area2 := (v[1].X-v[0].X)*(v[2].Y-v[0].Y) - (v[1].Y-v[0].Y)*(v[2].X-v[0].X)
	if area2 == 0 || math.IsNaN(area2) {
		return
	}
	if area2 < 0 {
		v[1], v[2] = v[2], v[1]
		area2 = -area2
	}

	minX := int(math.Max(0, math.Floor(min3(v[0].X, v[1].X, v[2].X))))
	maxX := int(math.Min(float64(w-1), math.Ceil(max3(v[0].X, v[1].X, v[2].X))))
	minY := int(math.Max(0, math.Floor(min3(v[0].Y, v[1].Y, v[2].Y))))
	maxY := int(math.Min(float64(h-1), math.Ceil(max3(v[0].Y, v[1].Y, v[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(v[1].X, v[1].Y, v[2].X, v[2].Y)
	A1, B1, C1 := edgeCoeffs(v[2].X, v[2].Y, v[0].X, v[0].Y)
	A2, B2, C2 := edgeCoeffs(v[0].X, v[0].Y, v[1].X, v[1].Y)

	invArea := 1.0 / area2

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				fn(x, y, w0*invArea, w1*invArea, w2*invArea)
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// RasterizeTriangle fills a triangle with per-vertex colors interpolated
// across it. There is no depth test: callers draw back to front.
func RasterizeTriangle(fb *Framebuffer, v [3]ScreenVertex) {
	r0, g0, b0 := float64(v[0].Color.R), float64(v[0].Color.G), float64(v[0].Color.B)
	r1, g1, b1 := float64(v[1].Color.R), float64(v[1].Color.G), float64(v[1].Color.B)
	r2, g2, b2 := float64(v[2].Color.R), float64(v[2].Color.G), float64(v[2].Color.B)
	width := fb.Width

	rasterize(v, fb.Width, fb.Height, func(x, y int, bc0, bc1, bc2 float64) {
		fb.Pixels[y*width+x] = color.RGBA{
			R: channel(r0*bc0 + r1*bc1 + r2*bc2),
			G: channel(g0*bc0 + g1*bc1 + g2*bc2),
			B: channel(b0*bc0 + b1*bc1 + b2*bc2),
			A: 255,
		}
	})
}

// RasterizeCoverage marks the pixels a triangle covers in a w×h mask.
func RasterizeCoverage(mask []bool, w, h int, v [3]ScreenVertex) {
	rasterize(v, w, h, func(x, y int, _, _, _ float64) {
		mask[y*w+x] = true
	})
}

func channel(v float64) uint8 {
	return uint8(math3d.Clamp(v+0.5, 0, 255))
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
