// Package paint holds the hand-painted weathering mask: four channels (rust,
// wear, gunk, scratch) over the knob's object-space UV square, painted with
// batched stamps and read back with bilinear sampling.
package paint

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// Channel names one weathering layer.
type Channel int

const (
	Rust Channel = iota
	Wear
	Gunk
	Scratch
	channelCount
)

var channelNames = [channelCount]string{"rust", "wear", "gunk", "scratch"}

func (c Channel) String() string {
	if c < 0 || c >= channelCount {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Sample is the weathering coverage at one point, each channel in [0, 1].
type Sample struct {
	Rust, Wear, Gunk, Scratch float64
}

// Get returns one channel of the sample.
func (s Sample) Get(c Channel) float64 {
	switch c {
	case Rust:
		return s.Rust
	case Wear:
		return s.Wear
	case Gunk:
		return s.Gunk
	case Scratch:
		return s.Scratch
	}
	return 0
}

// Sampler reads the mask. u and v are in [0, 1] across a square of side
// 2·referenceRadius centred on the knob axis; callers must not sample outside
// that range.
type Sampler interface {
	SampleBilinear(u, v float64) Sample
}

// UV maps an object-space position to mask coordinates.
func UV(x, y, referenceRadius float64) (u, v float64) {
	d := 2 * referenceRadius
	if d <= math3d.Epsilon {
		return -1, -1
	}
	return (x + referenceRadius) / d, (y + referenceRadius) / d
}

// InRange reports whether (u, v) lies on the mask.
func InRange(u, v float64) bool {
	return u >= 0 && u <= 1 && v >= 0 && v <= 1
}

// Mask is an in-memory square weathering mask. Row 0 is v = 0.
//
// Stamps are queued while painting and composited together by Apply, so
// readers never observe a partially applied stroke.
type Mask struct {
	Size   int
	texels [][channelCount]float32

	pending []Stamp
}

// NewMask creates a clean size×size mask.
func NewMask(size int) *Mask {
	size = max(size, 1)
	return &Mask{
		Size:   size,
		texels: make([][channelCount]float32, size*size),
	}
}

// At returns the texel at (x, y), clamped to the edge.
func (m *Mask) At(x, y int) Sample {
	x = min(max(x, 0), m.Size-1)
	y = min(max(y, 0), m.Size-1)
	t := m.texels[y*m.Size+x]
	return Sample{
		Rust:    float64(t[Rust]),
		Wear:    float64(t[Wear]),
		Gunk:    float64(t[Gunk]),
		Scratch: float64(t[Scratch]),
	}
}

// Set writes one texel. Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, s Sample) {
	if x < 0 || x >= m.Size || y < 0 || y >= m.Size {
		return
	}
	m.texels[y*m.Size+x] = [channelCount]float32{
		float32(math3d.Clamp01(s.Rust)),
		float32(math3d.Clamp01(s.Wear)),
		float32(math3d.Clamp01(s.Gunk)),
		float32(math3d.Clamp01(s.Scratch)),
	}
}

// Fill sets every texel of one channel.
func (m *Mask) Fill(c Channel, value float64) {
	v := float32(math3d.Clamp01(value))
	for i := range m.texels {
		m.texels[i][c] = v
	}
}

// Clear resets every channel and drops queued stamps.
func (m *Mask) Clear() {
	clear(m.texels)
	m.pending = m.pending[:0]
}

// SampleBilinear interpolates the four nearest texels, clamping at the edge.
func (m *Mask) SampleBilinear(u, v float64) Sample {
	fx := math3d.Clamp01(u)*float64(m.Size) - 0.5
	fy := math3d.Clamp01(v)*float64(m.Size) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := m.At(x0, y0)
	c10 := m.At(x0+1, y0)
	c01 := m.At(x0, y0+1)
	c11 := m.At(x0+1, y0+1)

	top := lerpSample(c00, c10, tx)
	bot := lerpSample(c01, c11, tx)
	return lerpSample(top, bot, ty)
}

func lerpSample(a, b Sample, t float64) Sample {
	return Sample{
		Rust:    math3d.Lerp(a.Rust, b.Rust, t),
		Wear:    math3d.Lerp(a.Wear, b.Wear, t),
		Gunk:    math3d.Lerp(a.Gunk, b.Gunk, t),
		Scratch: math3d.Lerp(a.Scratch, b.Scratch, t),
	}
}

// FromImage builds a size×size mask from an image, reading red as rust,
// green as wear, blue as gunk and alpha as scratch. The image is sampled with
// nearest-neighbour lookup and flipped so the image bottom is v = 0.
func FromImage(img image.Image, size int) *Mask {
	m := NewMask(size)
	b := img.Bounds()
	if b.Empty() {
		return m
	}
	for y := range m.Size {
		sy := b.Max.Y - 1 - (y*b.Dy())/m.Size
		for x := range m.Size {
			sx := b.Min.X + (x*b.Dx())/m.Size
			c := color.NRGBAModel.Convert(img.At(sx, sy)).(color.NRGBA)
			m.texels[y*m.Size+x] = [channelCount]float32{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			}
		}
	}
	return m
}

// LoadMask decodes a PNG or JPEG weathering mask.
func LoadMask(path string, size int) (*Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask: %w", err)
	}
	return FromImage(img, size), nil
}

// ToImage encodes the mask with the same channel layout FromImage reads.
func (m *Mask) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Size, m.Size))
	for y := range m.Size {
		for x := range m.Size {
			t := m.texels[y*m.Size+x]
			img.SetNRGBA(x, m.Size-1-y, color.NRGBA{
				R: uint8(math.Round(float64(t[Rust]) * 255)),
				G: uint8(math.Round(float64(t[Wear]) * 255)),
				B: uint8(math.Round(float64(t[Gunk]) * 255)),
				A: uint8(math.Round(float64(t[Scratch]) * 255)),
			})
		}
	}
	return img
}
