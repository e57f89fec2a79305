package knob

import "github.com/taigrr/knobsmith/pkg/math3d"

// KeyPrecision is the number of decimals kept for float fields in a MeshKey.
const KeyPrecision = 3

// MeshKey identifies a mesh build. Two parameter sets with equal keys produce
// the same mesh.
type MeshKey struct {
	p KnobParameters
}

// MeshKeyOf sanitizes p, drops the fields that do not affect geometry and
// rounds the rest to KeyPrecision decimals.
func MeshKeyOf(p KnobParameters) MeshKey {
	q := p.Sanitized()

	// Shading-only fields.
	q.Indicator.Color = [3]uint8{}
	q.Indicator.ColorBlend = 0

	r := func(v *float64) { *v = math3d.Round(*v, KeyPrecision) }
	for _, v := range []*float64{
		&q.Radius, &q.Height, &q.BevelRadius, &q.TopScale,
		&q.CrownProfile, &q.CrownExponent, &q.BevelCurve, &q.Taper, &q.Bulge,
		&q.Spiral.Height, &q.Spiral.Width, &q.Spiral.Turns,
		&q.Grip.Density, &q.Grip.Pitch, &q.Grip.Depth, &q.Grip.Width,
		&q.Grip.Sharpness, &q.Grip.Start, &q.Grip.Height,
		&q.Indicator.Width, &q.Indicator.Length, &q.Indicator.Position,
		&q.Indicator.Thickness, &q.Indicator.Roundness,
	} {
		r(v)
	}
	return MeshKey{p: q}
}

// Parameters returns the rounded parameter snapshot the key stands for.
// Builds use this snapshot so a cache hit and a rebuild agree exactly.
func (k MeshKey) Parameters() KnobParameters {
	return k.p
}
