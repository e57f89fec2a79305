// Package shading evaluates the knob surface colour: an anisotropic
// Cook-Torrance BRDF over a list of lights, a gradient environment term,
// procedural micro-detail, paint-mask weathering and tone mapping. It also
// resolves the contact-shadow passes drawn beneath the knob.
//
// Every backend shades through this package so the CPU and GPU paths share
// one set of formulas.
package shading

import (
	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
)

// RGB is a linear colour with channels in [0, 1].
type RGB [3]float64

// Vec3 converts the colour to a vector.
func (c RGB) Vec3() math3d.Vec3 {
	return math3d.V3(c[0], c[1], c[2])
}

// RGB8 converts an 8-bit colour to linear [0, 1].
func RGB8(c [3]uint8) math3d.Vec3 {
	return math3d.V3(float64(c[0])/255, float64(c[1])/255, float64(c[2])/255)
}

// PartOverride replaces the material on one region of the knob.
type PartOverride struct {
	Enabled   bool    `yaml:"enabled"`
	Color     RGB     `yaml:"color"`
	Metallic  float64 `yaml:"metallic"`
	Roughness float64 `yaml:"roughness"`
}

// Material is the knob surface description.
type Material struct {
	BaseColor    RGB     `yaml:"base_color"`
	Metallic     float64 `yaml:"metallic"`
	Roughness    float64 `yaml:"roughness"`
	Pearlescence float64 `yaml:"pearlescence"`

	RustAmount float64 `yaml:"rust_amount"`
	WearAmount float64 `yaml:"wear_amount"`
	GunkAmount float64 `yaml:"gunk_amount"`

	DiffuseStrength  float64 `yaml:"diffuse_strength"`
	SpecularStrength float64 `yaml:"specular_strength"`

	// Radial brushing of the cap.
	BrushStrength float64 `yaml:"brush_strength"`
	BrushDensity  float64 `yaml:"brush_density"`
	// SurfaceCharacter sharpens the cap mask and the brushing anisotropy.
	SurfaceCharacter float64 `yaml:"surface_character"`

	Top   PartOverride `yaml:"top"`
	Bevel PartOverride `yaml:"bevel"`
	Side  PartOverride `yaml:"side"`
}

// DefaultMaterial is brushed aluminium.
func DefaultMaterial() Material {
	return Material{
		BaseColor:        RGB{0.78, 0.78, 0.8},
		Metallic:         0.9,
		Roughness:        0.32,
		DiffuseStrength:  1,
		SpecularStrength: 1,
		BrushStrength:    0.6,
		BrushDensity:     0.5,
		SurfaceCharacter: 1,
		RustAmount:       1,
		WearAmount:       1,
		GunkAmount:       1,
	}
}

// Sanitized clamps every field into range.
func (m Material) Sanitized() Material {
	q := m
	for i := range q.BaseColor {
		q.BaseColor[i] = math3d.Clamp01(q.BaseColor[i])
	}
	q.Metallic = math3d.Clamp01(q.Metallic)
	q.Roughness = math3d.Clamp(q.Roughness, 0.02, 1)
	q.Pearlescence = math3d.Clamp01(q.Pearlescence)
	q.RustAmount = math3d.Clamp(q.RustAmount, 0, 2)
	q.WearAmount = math3d.Clamp(q.WearAmount, 0, 2)
	q.GunkAmount = math3d.Clamp(q.GunkAmount, 0, 2)
	q.DiffuseStrength = math3d.Clamp(q.DiffuseStrength, 0, 4)
	q.SpecularStrength = math3d.Clamp(q.SpecularStrength, 0, 4)
	q.BrushStrength = math3d.Clamp01(q.BrushStrength)
	q.BrushDensity = math3d.Clamp01(q.BrushDensity)
	q.SurfaceCharacter = math3d.Clamp(q.SurfaceCharacter, 0.25, 4)
	for _, o := range []*PartOverride{&q.Top, &q.Bevel, &q.Side} {
		for i := range o.Color {
			o.Color[i] = math3d.Clamp01(o.Color[i])
		}
		o.Metallic = math3d.Clamp01(o.Metallic)
		o.Roughness = math3d.Clamp(o.Roughness, 0.02, 1)
	}
	return q
}

// Surface is the material state at one fragment, after overrides and
// weathering.
type Surface struct {
	Color     math3d.Vec3
	Metallic  float64
	Roughness float64
}

// SurfaceFor returns the base surface for a mesh part.
func (m Material) SurfaceFor(part models.Part) Surface {
	s := Surface{Color: m.BaseColor.Vec3(), Metallic: m.Metallic, Roughness: m.Roughness}
	var o PartOverride
	switch part {
	case models.PartFrontCap, models.PartWall:
		o = m.Top
	case models.PartChamfer:
		o = m.Bevel
	case models.PartSide, models.PartBackCap:
		o = m.Side
	}
	if o.Enabled {
		s = Surface{Color: o.Color.Vec3(), Metallic: o.Metallic, Roughness: o.Roughness}
	}
	return s
}
