package render

import (
	"image"
	"image/color"
	"math"

	"github.com/taigrr/knobsmith/pkg/shading"
)

// Coverage is the silhouette of a frame's draw list: which pixels the model
// covers. It is reused across frames.
type Coverage struct {
	Width, Height int
	Mask          []bool
	// Bounds is the covered pixel rectangle, empty when nothing is covered.
	Bounds image.Rectangle
}

// Build rasterizes every triangle of the frame into the mask.
func (c *Coverage) Build(f *Frame) {
	n := f.Width * f.Height
	if cap(c.Mask) < n {
		c.Mask = make([]bool, n)
	}
	c.Mask = c.Mask[:n]
	clear(c.Mask)
	c.Width, c.Height = f.Width, f.Height
	c.Bounds = image.Rectangle{}

	for _, t := range f.DrawList {
		v := f.Screen(t)
		RasterizeCoverage(c.Mask, c.Width, c.Height, v)
		r := image.Rect(
			int(math.Floor(min3(v[0].X, v[1].X, v[2].X))),
			int(math.Floor(min3(v[0].Y, v[1].Y, v[2].Y))),
			int(math.Ceil(max3(v[0].X, v[1].X, v[2].X)))+1,
			int(math.Ceil(max3(v[0].Y, v[1].Y, v[2].Y)))+1,
		)
		c.Bounds = c.Bounds.Union(r)
	}
	c.Bounds = c.Bounds.Intersect(image.Rect(0, 0, c.Width, c.Height))
}

// At reports whether pixel (x, y) is covered. Out-of-range pixels are not.
func (c *Coverage) At(x, y int) bool {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return false
	}
	return c.Mask[y*c.Width+x]
}

// ShadowAlpha writes the combined shadow opacity of every pixel of the
// frame into dst, which must hold Width×Height values. Each pass shifts the
// silhouette by its offset and blurs it with its kernel; passes combine as
// stacked layers of the same gray. It reports whether any pixel is shaded.
func ShadowAlpha(cov *Coverage, f *Frame, dst []float32) bool {
	clear(dst)
	if cov.Bounds.Empty() {
		return false
	}
	shaded := false
	for _, pass := range f.Shadows {
		if !pass.Enabled || pass.Alpha <= 0 {
			continue
		}
		shaded = accumulatePass(cov, f, pass, dst) || shaded
	}
	return shaded
}

func accumulatePass(cov *Coverage, f *Frame, pass shading.ShadowPassConfig, dst []float32) bool {
	// Offsets are in units of the projected reference radius; screen y
	// grows downward.
	ox := pass.Offset.X * f.ScreenRadius
	oy := -pass.Offset.Y * f.ScreenRadius
	soft := pass.SoftRadius.Scale(f.ScreenRadius)
	taps := shading.ShadowKernel(pass.Samples)

	gx, gy := int(math.Ceil(soft.X))+1, int(math.Ceil(soft.Y))+1
	area := cov.Bounds.
		Add(image.Pt(int(math.Round(ox)), int(math.Round(oy))))
	area = image.Rect(area.Min.X-gx, area.Min.Y-gy, area.Max.X+gx, area.Max.Y+gy).
		Intersect(image.Rect(0, 0, f.Width, f.Height))

	hit := false
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			var occ float64
			for _, tap := range taps {
				sx := int(math.Round(float64(x) - ox - tap.Offset.X*soft.X))
				sy := int(math.Round(float64(y) - oy + tap.Offset.Y*soft.Y))
				if cov.At(sx, sy) {
					occ += tap.Weight
				}
			}
			if occ > 0 {
				i := y*f.Width + x
				a := min(pass.Alpha*occ, 1)
				dst[i] = float32(1 - (1-float64(dst[i]))*(1-a))
				hit = true
			}
		}
	}
	return hit
}

// CompositeShadows darkens fb toward the frame's shadow gray by the shadow
// mask. It runs before the model is drawn so the model covers its own
// shadow. mask is scratch space, reallocated when too small, and returned.
func CompositeShadows(fb *Framebuffer, cov *Coverage, f *Frame, mask []float32) []float32 {
	n := f.Width * f.Height
	if cap(mask) < n {
		mask = make([]float32, n)
	}
	mask = mask[:n]
	if !ShadowAlpha(cov, f, mask) {
		return mask
	}
	BlendMask(fb, mask, f.ShadowGray)
	return mask
}

// BlendMask mixes c over fb with per-pixel opacity from mask.
func BlendMask(fb *Framebuffer, mask []float32, c color.RGBA) {
	for i, a := range mask {
		if a > 0 {
			fb.BlendPixel(i%fb.Width, i/fb.Width, c, float64(a))
		}
	}
}
