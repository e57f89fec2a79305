package shading

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// Mode selects how light contributions are shaped.
type Mode int

const (
	ModeRealistic Mode = iota
	ModeArtistic
	ModeBoth
)

var modeNames = []string{"realistic", "artistic", "both"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range modeNames {
		if n == s {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shading mode %q", s)
}

const minAlpha = 0.002

// Frame is an orthonormal shading frame.
type Frame struct {
	T, B, N math3d.Vec3
}

// DistributionGGXAniso is the anisotropic GGX normal distribution for half
// vector h in frame f with roughnesses ax (along T) and ay (along B).
func DistributionGGXAniso(f Frame, h math3d.Vec3, ax, ay float64) float64 {
	ht := h.Dot(f.T) / ax
	hb := h.Dot(f.B) / ay
	hn := h.Dot(f.N)
	d := ht*ht + hb*hb + hn*hn
	return 1 / (math.Pi * ax * ay * d * d)
}

// GeometrySchlickGGX is the Schlick-GGX masking term.
func GeometrySchlickGGX(cosTheta, roughness float64) float64 {
	r := roughness + 1
	k := r * r / 8
	return cosTheta / (cosTheta*(1-k) + k)
}

// GeometrySmith combines masking for the view and light directions.
func GeometrySmith(ndv, ndl, roughness float64) float64 {
	return GeometrySchlickGGX(ndv, roughness) * GeometrySchlickGGX(ndl, roughness)
}

// FresnelSchlick is Schlick's approximation per channel.
func FresnelSchlick(cosTheta float64, f0 math3d.Vec3) math3d.Vec3 {
	k := math.Pow(math3d.Clamp01(1-cosTheta), 5)
	return f0.Add(math3d.V3(1, 1, 1).Sub(f0).Scale(k))
}

// FresnelSchlickRoughness damps the grazing boost on rough surfaces, for the
// environment term.
func FresnelSchlickRoughness(cosTheta float64, f0 math3d.Vec3, roughness float64) math3d.Vec3 {
	k := math.Pow(math3d.Clamp01(1-cosTheta), 5)
	g := 1 - roughness
	return f0.Add(math3d.V3(max(g, f0.X), max(g, f0.Y), max(g, f0.Z)).Sub(f0).Scale(k))
}

// anisoRoughness widens alpha along the brush direction and narrows it
// across.
func anisoRoughness(roughness, aniso float64) (ax, ay float64) {
	a := roughness * roughness
	return max(a*(1+aniso), minAlpha), max(a*(1-aniso), minAlpha)
}

// lightTerms is one light's diffuse and specular contribution before mode
// shaping.
type lightTerms struct {
	diffuse  math3d.Vec3
	specular math3d.Vec3
	ndl, ndh float64
	fresnel  math3d.Vec3
}

// evalLight evaluates the anisotropic Cook-Torrance lobe and the Lambert
// term for unit light direction l and view direction v.
func evalLight(f Frame, v, l math3d.Vec3, s Surface, aniso float64) (lightTerms, bool) {
	ndl := f.N.Dot(l)
	if ndl <= 0 {
		return lightTerms{}, false
	}
	h := v.Add(l).Normalize()
	ndv := max(f.N.Dot(v), 1e-4)
	ndh := max(f.N.Dot(h), 0)

	f0 := math3d.V3(0.04, 0.04, 0.04).Lerp(s.Color, s.Metallic)
	ax, ay := anisoRoughness(s.Roughness, aniso)
	D := DistributionGGXAniso(f, h, ax, ay)
	G := GeometrySmith(ndv, ndl, s.Roughness)
	F := FresnelSchlick(max(h.Dot(v), 0), f0)

	spec := F.Scale(D * G / max(4*ndv*ndl, 1e-4) * ndl)
	kd := math3d.V3(1, 1, 1).Sub(F).Scale(1 - s.Metallic)
	diff := kd.Mul(s.Color).Scale(ndl)
	return lightTerms{diffuse: diff, specular: spec, ndl: ndl, ndh: ndh, fresnel: F}, true
}

// shape applies the artistic curves and per-light boosts.
func (t lightTerms) shape(mode Mode, l Light) (diffuse, specular math3d.Vec3) {
	switch mode {
	case ModeArtistic:
		return t.artistic(l)
	case ModeBoth:
		ad, as := t.artistic(l)
		return t.diffuse.Add(ad).Scale(0.5), t.specular.Add(as).Scale(0.5)
	}
	return t.diffuse, t.specular
}

func (t lightTerms) artistic(l Light) (diffuse, specular math3d.Vec3) {
	wrap := math.Pow(t.ndl, 0.75) / t.ndl
	diffuse = t.diffuse.Scale(wrap * max(0, l.DiffuseBoost))

	power := max(1, l.SpecularPower)
	glint := t.fresnel.Scale(0.5 * math.Pow(t.ndh, power) * (power + 2) / (8 * math.Pi))
	specular = t.specular.Add(glint).Scale(max(0, l.SpecularBoost))
	return diffuse, specular
}
