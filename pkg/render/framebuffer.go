// Package render turns a knob scene into pixels. It owns the orbit camera,
// the framebuffer, the CPU painter backend with its contact-shadow and gizmo
// passes, turntable export and terminal presentation.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Framebuffer is a row-major RGBA pixel grid. The terminal presenter packs
// two vertically stacked pixels into each cell, so Height is twice the row
// count there.
type Framebuffer struct {
	Width, Height int
	Pixels        []color.RGBA
}

// NewFramebuffer allocates a cleared framebuffer. Negative sizes are
// treated as zero.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the pixel storage when the dimensions change.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if fb.Pixels != nil && width == fb.Width && height == fb.Height {
		return
	}
	fb.Width, fb.Height = width, height
	fb.Pixels = make([]color.RGBA, width*height)
}

// index returns the slice offset of (x, y), or false when it is off the
// buffer.
func (fb *Framebuffer) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return 0, false
	}
	return y*fb.Width + x, true
}

// Clear fills every pixel with c.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel writes c at (x, y); off-buffer writes are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if i, ok := fb.index(x, y); ok {
		fb.Pixels[i] = c
	}
}

// GetPixel reads (x, y), returning transparent black off the buffer.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if i, ok := fb.index(x, y); ok {
		return fb.Pixels[i]
	}
	return color.RGBA{}
}

// BlendPixel mixes c over the pixel at (x, y) with opacity alpha in [0, 1].
func (fb *Framebuffer) BlendPixel(x, y int, c color.RGBA, alpha float64) {
	i, ok := fb.index(x, y)
	if !ok || alpha <= 0 {
		return
	}
	alpha = min(alpha, 1)
	dst := fb.Pixels[i]
	mix := func(d, s uint8) uint8 {
		return uint8(float64(d) + (float64(s)-float64(d))*alpha + 0.5)
	}
	fb.Pixels[i] = color.RGBA{R: mix(dst.R, c.R), G: mix(dst.G, c.G), B: mix(dst.B, c.B), A: max(dst.A, c.A)}
}

// DrawLine rasterizes the segment (x0, y0)-(x1, y1) with integer
// Bresenham steps; both endpoints are drawn.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx, stepX := abs(x1-x0), sign(x1-x0)
	dy, stepY := -abs(y1-y0), sign(y1-y0)
	e := dx + dy
	x, y := x0, y0
	fb.SetPixel(x, y, c)
	for x != x1 || y != y1 {
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += stepX
		}
		if e2 <= dx {
			e += dx
			y += stepY
		}
		fb.SetPixel(x, y, c)
	}
}

// DrawCircle draws a circle outline of radius r using the midpoint method.
func (fb *Framebuffer) DrawCircle(cx, cy, r int, c color.RGBA) {
	if r <= 0 {
		fb.SetPixel(cx, cy, c)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			fb.SetPixel(cx+p[0], cy+p[1], c)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func abs(x int) int {
	return max(x, -x)
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// ToImage copies the pixels into an image.RGBA for encoding.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pixels {
		img.Pix[4*i], img.Pix[4*i+1], img.Pix[4*i+2], img.Pix[4*i+3] = p.R, p.G, p.B, p.A
	}
	return img
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
