package shading

import "github.com/taigrr/knobsmith/pkg/math3d"

// LODSettings bound the micro-detail fade. Footprints are measured in screen
// pixels per normal-map texel.
type LODSettings struct {
	FadeStart float64 `yaml:"fade_start"`
	FadeEnd   float64 `yaml:"fade_end"`
}

// DefaultLOD fades the ridge out as a texel shrinks below about one pixel.
func DefaultLOD() LODSettings {
	return LODSettings{FadeStart: 0.35, FadeEnd: 1}
}

// LODVisibility is how much micro-detail survives at the given footprint:
// 0 when a texel covers far less than a pixel, 1 when it is well resolved.
func LODVisibility(footprint, fadeStart, fadeEnd float64) float64 {
	return math3d.SmoothStep(fadeStart, fadeEnd, footprint)
}

// Footprint converts a texel size (object units) and the screen scale
// (pixels per object unit at the knob) into pixels per texel.
func Footprint(texelSize, pixelsPerUnit float64) float64 {
	return max(0, texelSize*pixelsPerUnit)
}

// Micro-detail shaping constants.
const (
	brushDensityFull = 0.25 // Density at which brushing is fully visible
	lodRoughBoost    = 0.25 // Roughness added when detail is fully faded
)

// MicroDetail is the outcome of the micro-detail gating for one fragment.
type MicroDetail struct {
	Blend      float64 // Weight of the micro-normal
	Flatten    float64 // Pull of the cap normal toward +Z
	RoughBoost float64 // Roughness added to stand in for lost detail
}

// GateMicroDetail combines brush settings, masks and LOD visibility.
func GateMicroDetail(m Material, capMask, indicatorMask, visibility float64) MicroDetail {
	density := math3d.Clamp01(m.BrushDensity / brushDensityFull)
	fade := (1 - visibility) * capMask
	return MicroDetail{
		Blend:      m.BrushStrength * density * capMask * (1 - indicatorMask) * visibility,
		Flatten:    fade,
		RoughBoost: fade * lodRoughBoost,
	}
}
