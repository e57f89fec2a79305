package shading

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// MaxShadowPassLights caps the passes the weighted mode emits.
const MaxShadowPassLights = 4

// ShadowMode picks which lights cast the contact shadow.
type ShadowMode int

const (
	ShadowSelected ShadowMode = iota
	ShadowDominant
	ShadowWeighted
)

var shadowModeNames = []string{"selected", "dominant", "weighted"}

func (m ShadowMode) String() string {
	if m < 0 || int(m) >= len(shadowModeNames) {
		return fmt.Sprintf("ShadowMode(%d)", int(m))
	}
	return shadowModeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m ShadowMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ShadowMode) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range shadowModeNames {
		if n == s {
			*m = ShadowMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shadow mode %q", s)
}

// ShadowSettings control the contact shadow.
type ShadowSettings struct {
	Enabled       bool       `yaml:"enabled"`
	Mode          ShadowMode `yaml:"mode"`
	SelectedLight int        `yaml:"selected_light"`
	// Strength is the darkening budget in [0, 1].
	Strength float64 `yaml:"strength"`
	// Distance is the screen offset, as a fraction of the knob's screen
	// radius, for a light lying in the view plane.
	Distance float64 `yaml:"distance"`
	Softness float64 `yaml:"softness"`
	// Quality in [0, 1] selects 1 to 16 kernel samples.
	Quality float64 `yaml:"quality"`
	// Gray is the shadow colour level in [0, 1].
	Gray float64 `yaml:"gray"`
}

// DefaultShadow is a soft dominant-light shadow.
func DefaultShadow() ShadowSettings {
	return ShadowSettings{
		Enabled:  true,
		Mode:     ShadowDominant,
		Strength: 0.55,
		Distance: 0.12,
		Softness: 0.08,
		Quality:  0.5,
	}
}

// ShadowPassConfig is one shadow draw. Offset and SoftRadius are in units of
// the knob's screen radius; screen +Y is up. SoftRadius stretches the blur
// along the axis the shadow is cast on.
type ShadowPassConfig struct {
	Enabled       bool
	Light         int
	Offset        math3d.Vec2
	DistanceScale float64
	Alpha         float64
	Gray          float64
	SoftRadius    math3d.Vec2
	Samples       int
}

const (
	minShadowAlpha     = 1e-5
	minShadowIntensity = 1e-5
	minShadowDir       = 1e-6
	maxShadowSamples   = 16
)

type shadowCandidate struct {
	light  int
	weight float64
	dir    math3d.Vec2
}

// shadowCandidates returns eligible lights with their weight and screen
// direction. anchor is the world point the shadow hangs from, used for
// point lights.
func shadowCandidates(lights []Light, right, up, anchor math3d.Vec3) []shadowCandidate {
	var out []shadowCandidate
	for i, l := range lights {
		if l.Intensity <= minShadowIntensity {
			continue
		}
		dir, _ := l.Direction(anchor, 1)
		d2 := math3d.V2(-dir.Dot(right), -dir.Dot(up))
		if d2.Len() < minShadowDir {
			continue
		}
		w := l.Luminance() * l.Intensity * max(0, l.DiffuseBoost)
		if w <= 0 {
			continue
		}
		out = append(out, shadowCandidate{light: i, weight: w, dir: d2})
	}
	return out
}

// SampleCount maps the quality slider to a kernel size in [1, 16].
func SampleCount(quality float64) int {
	return 1 + int(math.Round(math3d.Clamp01(quality)*(maxShadowSamples-1)))
}

func (s ShadowSettings) pass(c shadowCandidate, alpha float64) ShadowPassConfig {
	scale := c.dir.Len()
	return ShadowPassConfig{
		Enabled:       alpha > minShadowAlpha,
		Light:         c.light,
		Offset:        c.dir.Scale(s.Distance),
		DistanceScale: scale,
		Alpha:         alpha,
		Gray:          math3d.Clamp01(s.Gray),
		SoftRadius:    softRadius(s.Softness, c.dir),
		Samples:       SampleCount(s.Quality),
	}
}

// softRadius grows the blur on each screen axis with the shadow's reach
// along it, so a grazing light smears the shadow in the cast direction.
func softRadius(softness float64, dir math3d.Vec2) math3d.Vec2 {
	s := max(0, softness)
	return math3d.V2(s*(0.5+math.Abs(dir.X)), s*(0.5+math.Abs(dir.Y)))
}

// ResolveShadowPasses computes the contact shadow passes for the camera
// basis right/up. Passes whose alpha would be negligible are omitted, so the
// result may be empty.
func ResolveShadowPasses(lights []Light, right, up, anchor math3d.Vec3, s ShadowSettings) []ShadowPassConfig {
	strength := math3d.Clamp01(s.Strength)
	if !s.Enabled || strength <= 0 {
		return nil
	}
	cands := shadowCandidates(lights, right, up, anchor)
	if len(cands) == 0 {
		return nil
	}

	var passes []ShadowPassConfig
	add := func(p ShadowPassConfig) {
		if p.Enabled {
			passes = append(passes, p)
		}
	}

	switch s.Mode {
	case ShadowSelected:
		for _, c := range cands {
			if c.light == s.SelectedLight {
				add(s.pass(c, strength*(1-math.Exp(-c.weight))))
			}
		}
	case ShadowDominant:
		best := cands[0]
		for _, c := range cands[1:] {
			if c.weight > best.weight {
				best = c
			}
		}
		add(s.pass(best, strength*(1-math.Exp(-best.weight))))
	case ShadowWeighted:
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].weight > cands[j].weight })
		var total float64
		for _, c := range cands {
			total += c.weight
		}
		budget := strength * (1 - math.Exp(-total))
		if len(cands) > MaxShadowPassLights {
			cands = cands[:MaxShadowPassLights]
		}
		var kept float64
		for _, c := range cands {
			kept += c.weight
		}
		for _, c := range cands {
			add(s.pass(c, budget*c.weight/kept))
		}
	}
	return passes
}
