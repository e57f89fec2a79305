package knob

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

type sampleKind int

const (
	sampleBack sampleKind = iota
	sampleSide
	sampleChamfer
)

// profilePoint is one (radius, z) sample of the generatrix.
type profilePoint struct {
	r, z float64
	kind sampleKind
	t    float64 // Position along its section, 0-1
}

// profile is the 2-D outline revolved around Z to form the body.
type profile struct {
	points []profilePoint

	sideStartZ, sideEndZ float64
	sideEndRadius        float64
	topRadius            float64
}

const (
	minSideSamples = 24
	maxSideSamples = 256
	chamferSamples = 8
)

// arch is the bulge weight along the side, 0 at both ends and 1 mid-way.
func arch(t float64) float64 {
	u := 2*t - 1
	return 1 - u*u
}

// sideSampleCount resolves the knurl with several rings per axial repeat.
func sideSampleCount(p KnobParameters, sideLen float64) int {
	n := minSideSamples
	if p.GripEnabled() && p.Grip.Type != GripFlutes {
		n = max(n, int(math.Ceil(sideLen/p.Grip.Pitch*8)))
	}
	return min(n, maxSideSamples)
}

// buildProfile samples the generatrix from the back rim up to the cap edge.
func buildProfile(p KnobParameters) profile {
	R, H, b := p.Radius, p.Height, p.BevelRadius

	pr := profile{
		sideStartZ:    b * 0.5,
		sideEndZ:      H - b,
		sideEndRadius: p.SideEndRadius(),
		topRadius:     p.TopRadius(),
	}
	if pr.sideEndZ <= pr.sideStartZ {
		pr.sideEndZ = pr.sideStartZ + math3d.Epsilon
	}

	pr.points = append(pr.points, profilePoint{r: R - b*0.5, z: 0, kind: sampleBack})

	sideLen := pr.sideEndZ - pr.sideStartZ
	n := sideSampleCount(p, sideLen)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		r := math3d.Lerp(R, pr.sideEndRadius, t) + p.Bulge*R*arch(t)
		z := math3d.Lerp(pr.sideStartZ, pr.sideEndZ, t)
		pr.points = append(pr.points, profilePoint{r: r, z: z, kind: sampleSide, t: t})
	}

	// No chamfer ring when the side already meets the cap edge.
	if b <= math3d.Epsilon && math.Abs(pr.topRadius-pr.sideEndRadius) <= math3d.Epsilon {
		return pr
	}
	for i := 1; i <= chamferSamples; i++ {
		t := float64(i) / chamferSamples
		r := math3d.Lerp(pr.sideEndRadius, pr.topRadius, math.Pow(t, p.BevelCurve))
		z := math3d.Lerp(pr.sideEndZ, H, t)
		pr.points = append(pr.points, profilePoint{r: r, z: z, kind: sampleChamfer, t: t})
	}
	return pr
}

// crownOffset is the dome (or dish) height at normalized cap radius rNorm.
func crownOffset(p KnobParameters, rNorm float64) float64 {
	c := p.CrownProfile
	if c == 0 {
		return 0
	}
	maxAmp := 0.08 * min(p.Radius, p.Height)
	fall := math.Pow(math3d.Clamp01(1-rNorm), p.CrownExponent)
	return math3d.Sign(c) * maxAmp * math.Abs(c) * fall
}
