package knob

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// sqrt3 scales the axial coordinate of the hex lattice.
const sqrt3 = 1.7320508075688772

// tent is a periodic ridge mask: 1 on the crest around each integer, falling
// linearly to 0 at the half-integer groove. width is the groove fraction.
func tent(x, width float64) float64 {
	return math3d.Clamp01((1 - 2*math3d.DistToInt(x)) / width)
}

// GripPattern evaluates the knurl height field in pattern space. u counts
// repeats around the circumference and v counts repeats along the axis. The
// result is 1 on the uncut surface and 0 at the bottom of a groove.
func GripPattern(t GripType, u, v, width, sharpness float64) float64 {
	var pat float64
	switch t {
	case GripFlutes:
		pat = tent(u, width)
	case GripDiamond:
		pat = tent(u+v, width) * tent(u-v, width)
	case GripSquare:
		pat = tent(u, width) * tent(v, width)
	case GripHex:
		// Doubling u keeps every lattice direction integer-periodic in u.
		s := 2 * u
		a := tent(s, width)
		b := tent(0.5*s+sqrt3*v, width)
		c := tent(-0.5*s+sqrt3*v, width)
		pat = (a*b + b*c + a*c) / 3
	default:
		return 1
	}
	return math.Pow(pat, sharpness)
}

// gripBandFade confines the knurl to its band with soft edges. t is the
// normalized position along the side.
func gripBandFade(g GripParams, t float64) float64 {
	start, end := g.Start, g.Start+g.Height
	if t < start || t > end {
		return 0
	}
	f := min(0.1, g.Height*0.25)
	return math3d.SmoothStep(start, start+f, t) * (1 - math3d.SmoothStep(end-f, end, t))
}

// gripOffset is the radial displacement (always <= 0) at angular sample i of
// segments and side position t, height z.
func gripOffset(p KnobParameters, i int, t, z, bandStartZ float64) float64 {
	if !p.GripEnabled() {
		return 0
	}
	g := p.Grip
	fade := gripBandFade(g, t)
	if fade <= 0 {
		return 0
	}
	u := g.Density * float64(i) / float64(p.RadialSegments)
	v := (z - bandStartZ) / g.Pitch
	pat := GripPattern(g.Type, u, v, g.Width, g.Sharpness)
	return g.Depth * (pat - 1) * fade
}
