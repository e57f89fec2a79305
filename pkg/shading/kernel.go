package shading

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// KernelTap is one weighted offset in the unit disk.
type KernelTap struct {
	Offset math3d.Vec2
	Weight float64
}

// poissonDisk is a fixed 16-point Poisson-like distribution, ordered so any
// prefix covers the disk reasonably evenly.
var poissonDisk = [maxShadowSamples]math3d.Vec2{
	{X: 0, Y: 0},
	{X: 0.5278, Y: 0.2465},
	{X: -0.3781, Y: 0.4582},
	{X: -0.2940, Y: -0.5517},
	{X: 0.3326, Y: -0.4870},
	{X: 0.8921, Y: -0.1823},
	{X: -0.8457, Y: -0.0960},
	{X: 0.1204, Y: 0.8893},
	{X: -0.6712, Y: 0.6418},
	{X: 0.6530, Y: 0.6741},
	{X: -0.0826, Y: -0.9322},
	{X: 0.7705, Y: -0.6037},
	{X: -0.7201, Y: -0.6389},
	{X: 0.1953, Y: 0.3627},
	{X: -0.3962, Y: 0.0284},
	{X: 0.2071, Y: -0.1605},
}

// ShadowKernel returns the first n taps of the disk with Gaussian weights
// exp(-2.5·r²), normalized to sum to 1. n is clamped to [1, 16].
func ShadowKernel(n int) []KernelTap {
	n = min(max(n, 1), maxShadowSamples)
	taps := make([]KernelTap, n)
	var sum float64
	for i := range taps {
		p := poissonDisk[i]
		w := math.Exp(-2.5 * p.Dot(p))
		taps[i] = KernelTap{Offset: p, Weight: w}
		sum += w
	}
	for i := range taps {
		taps[i].Weight /= sum
	}
	return taps
}
