package math3d

import "math"

// Epsilon guards divisions throughout the geometry and shading code.
const Epsilon = 1e-6

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 limits x to [0, 1].
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// SmoothStep is the Hermite step used by shader languages. Reversed edges
// (edge0 > edge1) produce a descending step.
func SmoothStep(edge0, edge1, x float64) float64 {
	d := edge1 - edge0
	if math.Abs(d) < Epsilon {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp01((x - edge0) / d)
	return t * t * (3 - 2*t)
}

// DistToInt returns the distance from x to the nearest integer, in [0, 0.5].
func DistToInt(x float64) float64 {
	return math.Abs(x - math.Round(x))
}

// SafeDiv divides a by b, substituting Epsilon for denominators that are
// too close to zero (sign preserved).
func SafeDiv(a, b float64) float64 {
	if math.Abs(b) < Epsilon {
		if b < 0 {
			return a / -Epsilon
		}
		return a / Epsilon
	}
	return a / b
}

// Sign returns -1, 0 or 1.
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Round rounds x to the given number of decimal places.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
