// Package knob builds procedural rotary-knob meshes: a revolved body profile
// with knurled grip, a crowned front cap carrying a spiral ridge and an
// indicator mark, and the matching micro-normal map for the cap.
//
// Object space has the knob axis on +Z with the front cap facing +Z and the
// back cap resting on z = 0.
package knob

import (
	"fmt"
	"strings"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// Segment count limits.
const (
	MinRadialSegments = 12
	MaxRadialSegments = 180
)

// GripType selects the knurl family cut into the side wall.
type GripType int

const (
	GripNone GripType = iota
	GripFlutes
	GripDiamond
	GripSquare
	GripHex
)

var gripNames = []string{"none", "flutes", "diamond", "square", "hex"}

func (g GripType) String() string {
	if g < 0 || int(g) >= len(gripNames) {
		return fmt.Sprintf("GripType(%d)", int(g))
	}
	return gripNames[g]
}

// MarshalText implements encoding.TextMarshaler.
func (g GripType) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GripType) UnmarshalText(b []byte) error {
	v, err := parseEnum("grip type", string(b), gripNames)
	if err != nil {
		return err
	}
	*g = GripType(v)
	return nil
}

// IndicatorShape selects the outline of the indicator mark.
type IndicatorShape int

const (
	ShapeBar IndicatorShape = iota
	ShapeTapered
	ShapeNeedle
	ShapeTriangle
	ShapeDiamond
	ShapeCapsule
	ShapeDot
)

var shapeNames = []string{"bar", "tapered", "needle", "triangle", "diamond", "capsule", "dot"}

func (s IndicatorShape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("IndicatorShape(%d)", int(s))
	}
	return shapeNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s IndicatorShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *IndicatorShape) UnmarshalText(b []byte) error {
	v, err := parseEnum("indicator shape", string(b), shapeNames)
	if err != nil {
		return err
	}
	*s = IndicatorShape(v)
	return nil
}

// IndicatorProfile controls how the indicator edge falls off.
type IndicatorProfile int

const (
	ProfileStraight IndicatorProfile = iota
	ProfileRounded
	ProfileConvex
	ProfileConcave
)

var profileNames = []string{"straight", "rounded", "convex", "concave"}

func (p IndicatorProfile) String() string {
	if p < 0 || int(p) >= len(profileNames) {
		return fmt.Sprintf("IndicatorProfile(%d)", int(p))
	}
	return profileNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p IndicatorProfile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *IndicatorProfile) UnmarshalText(b []byte) error {
	v, err := parseEnum("indicator profile", string(b), profileNames)
	if err != nil {
		return err
	}
	*p = IndicatorProfile(v)
	return nil
}

// IndicatorRelief says whether the indicator stands proud of the cap or is
// sunk into it.
type IndicatorRelief int

const (
	ReliefRaised IndicatorRelief = iota
	ReliefInset
)

var reliefNames = []string{"raised", "inset"}

func (r IndicatorRelief) String() string {
	if r < 0 || int(r) >= len(reliefNames) {
		return fmt.Sprintf("IndicatorRelief(%d)", int(r))
	}
	return reliefNames[r]
}

// Sign returns +1 for raised and -1 for inset.
func (r IndicatorRelief) Sign() float64 {
	if r == ReliefInset {
		return -1
	}
	return 1
}

// MarshalText implements encoding.TextMarshaler.
func (r IndicatorRelief) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *IndicatorRelief) UnmarshalText(b []byte) error {
	v, err := parseEnum("indicator relief", string(b), reliefNames)
	if err != nil {
		return err
	}
	*r = IndicatorRelief(v)
	return nil
}

func parseEnum(kind, s string, names []string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}

// SpiralParams describes the machined spiral ridge on the front cap.
type SpiralParams struct {
	Height float64 `yaml:"height"` // Ridge height scale, object units
	Width  float64 `yaml:"width"`  // Fraction of the ring spacing, 0-1
	Turns  float64 `yaml:"turns"`  // Ring count from centre to rim
}

// GripParams describes the knurl band on the side wall.
type GripParams struct {
	Type      GripType `yaml:"type"`
	Density   float64  `yaml:"density"`   // Repeats around the circumference
	Pitch     float64  `yaml:"pitch"`     // Axial repeat length, object units
	Depth     float64  `yaml:"depth"`     // Cut depth, object units
	Width     float64  `yaml:"width"`     // Groove width fraction, 0-1
	Sharpness float64  `yaml:"sharpness"` // Shaping exponent
	Start     float64  `yaml:"start"`     // Band start along the side, 0-1
	Height    float64  `yaml:"height"`    // Band height along the side, 0-1
}

// IndicatorParams describes the pointer mark on the front cap.
type IndicatorParams struct {
	Enabled    bool             `yaml:"enabled"`
	Shape      IndicatorShape   `yaml:"shape"`
	Relief     IndicatorRelief  `yaml:"relief"`
	Profile    IndicatorProfile `yaml:"profile"`
	Width      float64          `yaml:"width"`     // Fraction of the top radius
	Length     float64          `yaml:"length"`    // Fraction of the top radius
	Position   float64          `yaml:"position"`  // Start, fraction of the top radius
	Thickness  float64          `yaml:"thickness"` // Relief depth, 0-1
	Roundness  float64          `yaml:"roundness"` // Edge softness, 0-1
	Color      [3]uint8         `yaml:"color"`
	ColorBlend float64          `yaml:"color_blend"`
	HardWall   bool             `yaml:"hard_wall"`
}

// KnobParameters is the full geometric description of a knob.
type KnobParameters struct {
	Radius         float64 `yaml:"radius"`
	Height         float64 `yaml:"height"`
	BevelRadius    float64 `yaml:"bevel_radius"`
	TopScale       float64 `yaml:"top_scale"`
	RadialSegments int     `yaml:"radial_segments"`
	CrownProfile   float64 `yaml:"crown_profile"`  // -1 (dished) to 1 (domed)
	CrownExponent  float64 `yaml:"crown_exponent"` // Falloff toward the rim
	BevelCurve     float64 `yaml:"bevel_curve"`    // Chamfer curvature exponent
	Taper          float64 `yaml:"taper"`          // Top radius reduction, 0-0.5
	Bulge          float64 `yaml:"bulge"`          // Side arch, fraction of radius

	Spiral    SpiralParams    `yaml:"spiral"`
	Grip      GripParams      `yaml:"grip"`
	Indicator IndicatorParams `yaml:"indicator"`
}

// DefaultParameters returns a machined aluminium-style knob.
func DefaultParameters() KnobParameters {
	return KnobParameters{
		Radius:         100,
		Height:         60,
		BevelRadius:    5,
		TopScale:       0.92,
		RadialSegments: 96,
		CrownProfile:   0.15,
		CrownExponent:  2,
		BevelCurve:     1,
		Spiral: SpiralParams{
			Height: 10,
			Width:  0.6,
			Turns:  48,
		},
		Grip: GripParams{
			Type:      GripFlutes,
			Density:   48,
			Pitch:     6,
			Depth:     2.5,
			Width:     0.45,
			Sharpness: 1,
			Start:     0.15,
			Height:    0.7,
		},
		Indicator: IndicatorParams{
			Enabled:    true,
			Shape:      ShapeBar,
			Profile:    ProfileRounded,
			Width:      0.06,
			Length:     0.45,
			Position:   0.45,
			Thickness:  0.3,
			Roundness:  0.5,
			Color:      [3]uint8{235, 235, 235},
			ColorBlend: 0.9,
		},
	}
}

// Sanitized returns a copy with every field clamped into its legal range and
// the grip density snapped to a divisor of the segment count.
func (p KnobParameters) Sanitized() KnobParameters {
	q := p
	q.Radius = math3d.Clamp(q.Radius, 1, 10000)
	q.Height = math3d.Clamp(q.Height, 0.5, 10000)
	q.BevelRadius = math3d.Clamp(q.BevelRadius, 0, 0.5*min(q.Radius, q.Height))
	q.TopScale = math3d.Clamp(q.TopScale, 0.2, 1.25)
	q.RadialSegments = min(max(q.RadialSegments, MinRadialSegments), MaxRadialSegments)
	q.CrownProfile = math3d.Clamp(q.CrownProfile, -1, 1)
	q.CrownExponent = math3d.Clamp(q.CrownExponent, 0.25, 8)
	q.BevelCurve = math3d.Clamp(q.BevelCurve, 0.25, 4)
	q.Taper = math3d.Clamp(q.Taper, 0, 0.5)
	q.Bulge = math3d.Clamp(q.Bulge, -0.2, 0.2)

	s := &q.Spiral
	s.Height = math3d.Clamp(s.Height, 0, 100)
	s.Width = math3d.Clamp01(s.Width)
	s.Turns = math3d.Clamp(s.Turns, 0, 400)

	g := &q.Grip
	if g.Type < GripNone || g.Type > GripHex {
		g.Type = GripNone
	}
	g.Density = float64(QuantizeDensity(g.Density, q.RadialSegments))
	g.Pitch = math3d.Clamp(g.Pitch, 0.1, q.Height)
	g.Depth = math3d.Clamp(g.Depth, 0, 0.25*q.Radius)
	g.Width = math3d.Clamp(g.Width, 0.02, 1)
	g.Sharpness = math3d.Clamp(g.Sharpness, 0.1, 8)
	g.Start = math3d.Clamp01(g.Start)
	g.Height = math3d.Clamp(g.Height, 0, 1-g.Start)

	ind := &q.Indicator
	if ind.Shape < ShapeBar || ind.Shape > ShapeDot {
		ind.Shape = ShapeBar
	}
	if ind.Profile < ProfileStraight || ind.Profile > ProfileConcave {
		ind.Profile = ProfileStraight
	}
	if ind.Relief != ReliefInset {
		ind.Relief = ReliefRaised
	}
	ind.Width = math3d.Clamp(ind.Width, 0, 0.5)
	ind.Position = math3d.Clamp01(ind.Position)
	ind.Length = math3d.Clamp(ind.Length, 0, 1-ind.Position)
	ind.Thickness = math3d.Clamp01(ind.Thickness)
	ind.Roundness = math3d.Clamp01(ind.Roundness)
	ind.ColorBlend = math3d.Clamp01(ind.ColorBlend)
	return q
}

// SideEndRadius is the body radius where the side meets the chamfer.
func (p KnobParameters) SideEndRadius() float64 {
	return p.Radius * (1 - p.Taper)
}

// TopRadius is the radius of the flat front cap.
func (p KnobParameters) TopRadius() float64 {
	return max(math3d.Epsilon, p.SideEndRadius()*p.TopScale-p.BevelRadius)
}

// GripEnabled reports whether the side carries a knurl band.
func (p KnobParameters) GripEnabled() bool {
	g := p.Grip
	return g.Type != GripNone && g.Depth > 0 && g.Height > 0 && g.Density >= 1
}

// SpiralEnabled reports whether the cap carries a spiral ridge.
func (p KnobParameters) SpiralEnabled() bool {
	s := p.Spiral
	return s.Height > 0 && s.Width > 0 && s.Turns > math3d.Epsilon
}

// IndicatorEnabled reports whether the cap carries an indicator mark at all.
func (p KnobParameters) IndicatorEnabled() bool {
	ind := p.Indicator
	if !ind.Enabled || ind.Width <= 0 {
		return false
	}
	return ind.Shape == ShapeDot || ind.Length > 0
}

// IndicatorDisplaced reports whether the indicator moves cap geometry.
func (p KnobParameters) IndicatorDisplaced() bool {
	return p.IndicatorEnabled() && p.Indicator.Thickness > 0
}

// HardWallsEnabled reports whether vertical walls are extruded around the
// indicator outline.
func (p KnobParameters) HardWallsEnabled() bool {
	ind := p.Indicator
	return ind.HardWall && ind.Profile == ProfileStraight && p.IndicatorDisplaced()
}

// QuantizeDensity snaps density to the nearest exact divisor of segments so
// the knurl pattern wraps without a seam. Ties go to the larger divisor.
func QuantizeDensity(density float64, segments int) int {
	if segments < 1 {
		return 1
	}
	best, bestDist := 1, -1.0
	for d := 1; d <= segments; d++ {
		if segments%d != 0 {
			continue
		}
		dist := density - float64(d)
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist <= bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}
