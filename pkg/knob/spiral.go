package knob

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// Spiral ridge shaping constants.
const (
	spiralPhaseJitter  = 0.15  // Ring boundary jitter, turns
	spiralWidthJitter  = 0.08  // Relative half-width jitter
	spiralHeightJitter = 0.04  // Relative height jitter
	spiralAmplitude    = 0.072 // Ridge height scale
	SpiralAmplitudeCap = 0.075 // Hard cap on |offset| / height
	spiralRimFadeStart = 0.975 // Fraction of top radius
)

// ComputeSpiralRidgeOffset returns the height of the machined spiral ridge at
// cap position (x, y), r = hypot(x, y). The ridge has turns rings between the
// centre and the rim; width is the ridge width as a fraction of ring spacing.
// Degenerate inputs return 0.
func ComputeSpiralRidgeOffset(x, y, r, topRadius, height, width, turns float64) float64 {
	if height <= 0 || width <= 0 || topRadius <= math3d.Epsilon || turns <= math3d.Epsilon {
		return 0
	}
	rNorm := r / topRadius
	if rNorm > 1 {
		return 0
	}

	nx, ny := x/topRadius, y/topRadius
	theta := math.Atan2(y, x)
	phase := spiralPhaseJitter * (2*math3d.ValueNoise2D(nx*6+17.3, ny*6-4.1) - 1)
	u := rNorm*turns + theta/(2*math.Pi) + phase

	jw := 1 + spiralWidthJitter*(2*math3d.ValueNoise2D(u*0.37+3.1, rNorm*9.7)-1)
	half := 0.5 * width * jw
	d := math3d.DistToInt(u)
	if d >= half {
		return 0
	}

	k := d / half
	fall := (1 - k*k) * (1 - k*k)
	jh := 1 + spiralHeightJitter*(2*math3d.ValueNoise2D(nx*11+5.7, ny*11+1.3)-1)
	rim := 1 - math3d.SmoothStep(spiralRimFadeStart, 1, rNorm)

	off := height * spiralAmplitude * jh * fall * rim
	limit := height * SpiralAmplitudeCap
	return math3d.Clamp(off, -limit, limit)
}

// spiralOffset evaluates the ridge for the given parameters.
func spiralOffset(p KnobParameters, x, y, topRadius float64) float64 {
	if !p.SpiralEnabled() {
		return 0
	}
	s := p.Spiral
	return ComputeSpiralRidgeOffset(x, y, math.Hypot(x, y), topRadius, s.Height, s.Width, s.Turns)
}
