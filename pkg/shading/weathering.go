package shading

import (
	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/paint"
)

// Weathering tints.
var (
	rustDark   = math3d.V3(0.18, 0.07, 0.03)
	rustMid    = math3d.V3(0.45, 0.18, 0.07)
	rustOrange = math3d.V3(0.72, 0.33, 0.10)
	gunkColor  = math3d.V3(0.12, 0.10, 0.07)
	bareMetal  = math3d.V3(0.78, 0.76, 0.72)
)

// WeatherNoise carries the two procedural noise values that break up rust:
// Splotch modulates coverage and Hue drives the dark-to-orange ramp.
type WeatherNoise struct {
	Splotch, Hue float64
}

// WeatherNoiseAt samples the rust noise at an object-space cap position,
// normalized by the reference radius so the pattern scales with the knob.
func WeatherNoiseAt(x, y, referenceRadius float64) WeatherNoise {
	r := max(referenceRadius, math3d.Epsilon)
	nx, ny := x/r, y/r
	return WeatherNoise{
		Splotch: math3d.FBM2D(nx*4+11.7, ny*4-3.3, 3),
		Hue:     math3d.FBM2D(nx*9-7.1, ny*9+2.9, 2),
	}
}

// RustRamp maps t in [0, 1] through dark, mid and orange rust.
func RustRamp(t float64) math3d.Vec3 {
	t = math3d.Clamp01(t)
	if t < 0.5 {
		return rustDark.Lerp(rustMid, t*2)
	}
	return rustMid.Lerp(rustOrange, (t-0.5)*2)
}

// WeatherMasks are the effective per-channel coverages after amounts and
// gain are applied.
type WeatherMasks struct {
	Rust, Wear, Gunk, Scratch float64
}

// Masks scales a paint sample by the material amounts and the brush
// darkness gain. Rust is further broken up by the splotch noise.
func Masks(s paint.Sample, m Material, gain float64, n WeatherNoise) WeatherMasks {
	gain = max(0, gain)
	return WeatherMasks{
		Rust:    math3d.Clamp01(s.Rust*m.RustAmount*gain) * (0.75 + 0.25*n.Splotch),
		Wear:    math3d.Clamp01(s.Wear * m.WearAmount * gain),
		Gunk:    math3d.Clamp01(s.Gunk * m.GunkAmount * gain),
		Scratch: math3d.Clamp01(s.Scratch * m.WearAmount * gain),
	}
}

// ApplyWeathering modulates the surface by the weathering masks. Rust and
// gunk roughen and de-metal the surface; scratches expose bright metal.
func ApplyWeathering(s Surface, w WeatherMasks, n WeatherNoise) Surface {
	c := s.Color

	if w.Wear > 0 {
		worn := c.Scale(1.35).Add(math3d.V3(0.05, 0.05, 0.05)).Clamp01()
		c = c.Lerp(worn, 0.6*w.Wear)
	}
	if w.Scratch > 0 {
		c = c.Lerp(bareMetal, 0.7*w.Scratch)
		s.Metallic = math3d.Lerp(s.Metallic, 1, 0.3*w.Scratch)
	}
	if w.Rust > 0 {
		c = c.Lerp(RustRamp(n.Hue), w.Rust)
		s.Metallic *= 1 - 0.95*w.Rust
		s.Roughness += 0.5 * w.Rust
	}
	if w.Gunk > 0 {
		c = c.Lerp(gunkColor, 0.85*w.Gunk)
		s.Metallic *= 1 - 0.6*w.Gunk
		s.Roughness += 0.35 * w.Gunk
	}

	grime := 1 - 0.35*math3d.Clamp01(0.5*w.Rust+0.7*w.Gunk+0.2*w.Wear)
	s.Color = c.Scale(grime)
	s.Metallic = math3d.Clamp01(s.Metallic)
	s.Roughness = math3d.Clamp(s.Roughness, 0.02, 1)
	return s
}
