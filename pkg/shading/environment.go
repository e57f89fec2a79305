package shading

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// Environment is a two-colour vertical gradient sky with a horizon glow and
// a view-aligned hotspot.
type Environment struct {
	Top    RGB `yaml:"top"`
	Bottom RGB `yaml:"bottom"`

	HorizonGlow         RGB     `yaml:"horizon_glow"`
	HorizonGlowStrength float64 `yaml:"horizon_glow_strength"`

	HotspotStrength float64 `yaml:"hotspot_strength"`
	HotspotPower    float64 `yaml:"hotspot_power"`

	Intensity float64 `yaml:"intensity"`
	Exposure  float64 `yaml:"exposure"`
}

// DefaultEnvironment is a soft studio gradient.
func DefaultEnvironment() Environment {
	return Environment{
		Top:                 RGB{0.85, 0.88, 0.95},
		Bottom:              RGB{0.07, 0.065, 0.06},
		HorizonGlow:         RGB{1, 0.86, 0.68},
		HorizonGlowStrength: 0.45,
		HotspotStrength:     0.35,
		HotspotPower:        24,
		Intensity:           0.8,
		Exposure:            1.1,
	}
}

// horizonWidth is the vertical extent of the glow band.
const horizonWidth = 0.12

// Gradient returns the sky colour in direction dir (world +Y is up).
func (e Environment) Gradient(dir math3d.Vec3) math3d.Vec3 {
	t := math3d.Clamp01(0.5 + 0.5*dir.Y)
	c := e.Bottom.Vec3().Lerp(e.Top.Vec3(), t)
	g := dir.Y / horizonWidth
	glow := math.Exp(-g * g)
	return c.Add(e.HorizonGlow.Vec3().Scale(max(0, e.HorizonGlowStrength) * glow))
}

// Reflection is the gradient plus the hotspot for reflection vector r seen
// from view direction v.
func (e Environment) Reflection(r, v math3d.Vec3) math3d.Vec3 {
	c := e.Gradient(r)
	if e.HotspotStrength > 0 {
		h := math.Pow(max(0, r.Dot(v)), max(1, e.HotspotPower))
		c = c.Add(math3d.V3(1, 1, 1).Scale(e.HotspotStrength * h))
	}
	return c
}
