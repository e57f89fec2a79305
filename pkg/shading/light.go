package shading

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// LightType selects how a light's direction is derived.
type LightType int

const (
	LightPoint LightType = iota
	LightDirectional
)

func (t LightType) String() string {
	if t == LightDirectional {
		return "directional"
	}
	return "point"
}

// MarshalText implements encoding.TextMarshaler.
func (t LightType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *LightType) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "point":
		*t = LightPoint
	case "directional":
		*t = LightDirectional
	default:
		return fmt.Errorf("unknown light type %q", b)
	}
	return nil
}

// Light is one scene light in world space.
type Light struct {
	Type LightType `yaml:"type"`
	// Position of a point light.
	Position math3d.Vec3 `yaml:"position"`
	// Angle (degrees, in the view plane) and ZSeed encode a directional
	// light's direction as normalize(cos, sin, ZSeed).
	Angle float64 `yaml:"angle"`
	ZSeed float64 `yaml:"z_seed"`

	Color     [3]uint8 `yaml:"color"`
	Intensity float64  `yaml:"intensity"`
	Falloff   float64  `yaml:"falloff"`

	DiffuseBoost  float64 `yaml:"diffuse_boost"`
	SpecularBoost float64 `yaml:"specular_boost"`
	SpecularPower float64 `yaml:"specular_power"`
}

// DefaultLights is a key light above-left and a cool fill from the right.
func DefaultLights() []Light {
	return []Light{
		{
			Type:          LightPoint,
			Position:      math3d.V3(-180, 220, 260),
			Color:         [3]uint8{255, 246, 232},
			Intensity:     2.2,
			Falloff:       0.05,
			DiffuseBoost:  1,
			SpecularBoost: 1,
			SpecularPower: 48,
		},
		{
			Type:          LightDirectional,
			Angle:         -20,
			ZSeed:         0.6,
			Color:         [3]uint8{170, 190, 255},
			Intensity:     0.6,
			DiffuseBoost:  1,
			SpecularBoost: 0.8,
			SpecularPower: 24,
		},
	}
}

// DefaultLight fills the fields a configured light leaves out: a white
// overhead point light with neutral boosts.
func DefaultLight() Light {
	return Light{
		Type:          LightPoint,
		Position:      math3d.V3(0, 0, 300),
		ZSeed:         0.6,
		Color:         [3]uint8{255, 255, 255},
		Intensity:     1,
		Falloff:       0.05,
		DiffuseBoost:  1,
		SpecularBoost: 1,
		SpecularPower: 32,
	}
}

// Radiance is the light colour scaled by its intensity.
func (l Light) Radiance() math3d.Vec3 {
	return RGB8(l.Color).Scale(max(0, l.Intensity))
}

// Luminance of the light colour, 0-1.
func (l Light) Luminance() float64 {
	return luminance(RGB8(l.Color))
}

func luminance(c math3d.Vec3) float64 {
	return 0.2126*c.X + 0.7152*c.Y + 0.0722*c.Z
}

// Direction returns the unit vector from p toward the light and the
// distance attenuation at p. referenceRadius normalizes point-light falloff.
func (l Light) Direction(p math3d.Vec3, referenceRadius float64) (math3d.Vec3, float64) {
	if l.Type == LightDirectional {
		s, c := math.Sincos(l.Angle * math.Pi / 180)
		return math3d.V3(c, s, l.ZSeed).Normalize(), 1
	}
	d := l.Position.Sub(p)
	dist := d.Len()
	if dist <= math3d.Epsilon {
		return math3d.AxisZ(), 1
	}
	k := dist / max(referenceRadius, math3d.Epsilon)
	return d.Scale(1 / dist), 1 / (1 + max(0, l.Falloff)*k*k)
}
