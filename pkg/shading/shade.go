package shading

import (
	"image/color"
	"math"

	"github.com/taigrr/knobsmith/pkg/knob"
	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
	"github.com/taigrr/knobsmith/pkg/paint"
)

// Context is everything Shade needs for one frame. It is a snapshot: the
// caller must not mutate the slices or the paint mask while shading.
type Context struct {
	Params          knob.KnobParameters
	ReferenceRadius float64
	TopRadius       float64
	FrontZ          float64

	// NormalMap is the baked spiral ridge; nil disables micro-detail.
	NormalMap *knob.SpiralNormalMap

	Material    Material
	Lights      []Light
	Environment Environment
	Mode        Mode

	// Paint is optional.
	Paint paint.Sampler
	// BrushDarkness is the global gain applied to every weathering channel.
	BrushDarkness float64

	// Knob rotation about its axis, object to world.
	RotCos, RotSin float64

	LOD LODSettings
	// Footprint is screen pixels per normal-map texel at the knob.
	Footprint float64
}

// NewContext fills a context for mesh with default lighting, no rotation and
// a fully resolved micro-detail footprint.
func NewContext(p knob.KnobParameters, mesh *models.Mesh) Context {
	p = p.Sanitized()
	ctx := Context{
		Params:          p,
		ReferenceRadius: p.Radius,
		TopRadius:       p.TopRadius(),
		FrontZ:          p.Height,
		Material:        DefaultMaterial(),
		Lights:          DefaultLights(),
		Environment:     DefaultEnvironment(),
		BrushDarkness:   1,
		RotCos:          1,
		LOD:             DefaultLOD(),
		Footprint:       math.Inf(1),
	}
	if mesh != nil {
		ctx.ReferenceRadius = mesh.ReferenceRadius
		ctx.TopRadius = mesh.TopRadius
		ctx.FrontZ = mesh.FrontZ
	}
	return ctx
}

// Fragment is one shading sample. Position and Normal are in object space;
// View is the world-space unit vector from the fragment toward the eye.
type Fragment struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	View     math3d.Vec3
	Part     models.Part
}

// Cap and anisotropy shaping.
const (
	capMaskLow  = 0.6
	capMaskHigh = 0.9
	anisoGain   = 0.8
	anisoMax    = 0.9
	pearlGain   = 0.3
	pearlBands  = 3
)

// CapMask is 1 on the flat cap and fades out toward the side, sharpened by
// the surface character exponent.
func CapMask(normalZ, character float64) float64 {
	m := math3d.SmoothStep(capMaskLow, capMaskHigh, math.Abs(normalZ))
	return math.Pow(m, max(character, 0.01))
}

// Anisotropy is the brushing strength of the specular lobe.
func Anisotropy(m Material, capMask float64) float64 {
	return math3d.Clamp(anisoGain*m.BrushStrength*capMask*m.SurfaceCharacter, 0, anisoMax)
}

// tangentFrame builds a frame around n whose T follows object +X, matching
// the normal map's axes.
func tangentFrame(n math3d.Vec3) Frame {
	t := math3d.V3(1, 0, 0)
	t = t.Sub(n.Scale(n.Dot(t)))
	if t.LenSq() < 1e-8 {
		t = math3d.V3(0, 1, 0)
		t = t.Sub(n.Scale(n.Dot(t)))
	}
	t = t.Normalize()
	return Frame{T: t, B: n.Cross(t), N: n}
}

// brushFrame aligns T with the circumferential direction at p so the lobe
// stretches around the axis like a lathe-brushed finish.
func brushFrame(p, n math3d.Vec3) Frame {
	t := math3d.V3(-p.Y, p.X, 0)
	t = t.Sub(n.Scale(n.Dot(t)))
	if t.LenSq() < 1e-8 {
		return tangentFrame(n)
	}
	t = t.Normalize()
	return Frame{T: t, B: n.Cross(t), N: n}
}

func (f Frame) rotateZ(c, s float64) Frame {
	return Frame{T: f.T.RotateZ(c, s), B: f.B.RotateZ(c, s), N: f.N.RotateZ(c, s)}
}

// indicatorMask is 1 inside the indicator on the cap and on its walls.
func (ctx *Context) indicatorMask(f Fragment) float64 {
	if !ctx.Params.IndicatorEnabled() {
		return 0
	}
	switch f.Part {
	case models.PartWall:
		return 1
	case models.PartFrontCap:
		m, _ := knob.IndicatorField(ctx.Params, f.Position.X, f.Position.Y, ctx.TopRadius)
		return m
	}
	return 0
}

// ShadeLinear returns the pre-tonemap linear colour. Every channel is finite
// and non-negative.
func ShadeLinear(ctx *Context, f Fragment) math3d.Vec3 {
	mat := ctx.Material
	p := f.Position
	n := f.Normal.Normalize()
	if n == (math3d.Vec3{}) {
		n = math3d.AxisZ()
	}

	capMask := 0.0
	if f.Part != models.PartBackCap {
		capMask = CapMask(n.Z, mat.SurfaceCharacter)
	}
	indMask := ctx.indicatorMask(f)

	var detail MicroDetail
	if nm := ctx.NormalMap; nm != nil && capMask > 0 {
		u, v := nm.UV(p.X, p.Y)
		if paint.InRange(u, v) {
			vis := LODVisibility(ctx.Footprint, ctx.LOD.FadeStart, ctx.LOD.FadeEnd)
			detail = GateMicroDetail(mat, capMask, indMask, vis)
			if detail.Blend > 0 {
				tf := tangentFrame(n)
				m := nm.Sample(u, v)
				micro := tf.T.Scale(m.X).Add(tf.B.Scale(m.Y)).Add(tf.N.Scale(m.Z))
				n = n.Lerp(micro, detail.Blend).Normalize()
			}
			if detail.Flatten > 0 {
				n = n.Lerp(math3d.AxisZ(), detail.Flatten).Normalize()
			}
		}
	}

	s := mat.SurfaceFor(f.Part)
	s.Roughness = math3d.Clamp(s.Roughness+detail.RoughBoost, 0.02, 1)
	if indMask > 0 {
		ind := ctx.Params.Indicator
		s.Color = s.Color.Lerp(RGB8(ind.Color), math3d.Clamp01(ind.ColorBlend*indMask))
	}

	if ctx.Paint != nil {
		if u, v := paint.UV(p.X, p.Y, ctx.ReferenceRadius); paint.InRange(u, v) {
			noise := WeatherNoiseAt(p.X, p.Y, ctx.ReferenceRadius)
			masks := Masks(ctx.Paint.SampleBilinear(u, v), mat, ctx.BrushDarkness, noise)
			s = ApplyWeathering(s, masks, noise)
		}
	}

	frame := brushFrame(p, n).rotateZ(ctx.RotCos, ctx.RotSin)
	aniso := Anisotropy(mat, capMask)
	wp := p.RotateZ(ctx.RotCos, ctx.RotSin)
	v := f.View.Normalize()
	if v == (math3d.Vec3{}) {
		v = frame.N
	}

	var out math3d.Vec3
	for _, l := range ctx.Lights {
		if l.Intensity <= 0 {
			continue
		}
		dir, atten := l.Direction(wp, ctx.ReferenceRadius)
		terms, ok := evalLight(frame, v, dir, s, aniso)
		if !ok {
			continue
		}
		diff, spec := terms.shape(ctx.Mode, l)
		rad := l.Radiance().Scale(atten)
		out = out.Add(diff.Mul(rad).Scale(mat.DiffuseStrength))
		out = out.Add(spec.Mul(rad).Scale(mat.SpecularStrength))
	}

	out = out.Add(environmentTerm(ctx.Environment, frame.N, v, s))

	if mat.Pearlescence > 0 {
		out = out.Add(pearl(frame.N, v, mat.Pearlescence))
	}

	return sanitizeColor(out)
}

// environmentTerm is the gradient-sky image-based light. The specular share
// is damped on rough surfaces to stand in for energy lost to blur.
func environmentTerm(env Environment, n, v math3d.Vec3, s Surface) math3d.Vec3 {
	if env.Intensity <= 0 {
		return math3d.Vec3{}
	}
	ndv := max(n.Dot(v), 1e-4)
	r := n.Scale(2 * ndv).Sub(v).Normalize()

	f0 := math3d.V3(0.04, 0.04, 0.04).Lerp(s.Color, s.Metallic)
	F := FresnelSchlickRoughness(ndv, f0, s.Roughness)
	kd := math3d.V3(1, 1, 1).Sub(F).Scale(1 - s.Metallic)

	diffuse := env.Gradient(n).Mul(s.Color).Mul(kd)
	g := 1 - s.Roughness
	compensation := 0.25 + 0.75*g*g
	specular := env.Reflection(r, v).Mul(F).Scale((0.15 + 0.85*s.Metallic) * compensation)
	return diffuse.Add(specular).Scale(env.Intensity)
}

// pearl is a thin-film style tint: three phase-shifted cosines over the
// half vector between reflection and view.
func pearl(n, v math3d.Vec3, amount float64) math3d.Vec3 {
	ndv := n.Dot(v)
	r := n.Scale(2 * ndv).Sub(v)
	h := r.Add(v).Normalize()
	c := h.Dot(n)
	band := func(phase float64) float64 {
		return 0.5 + 0.5*math.Cos(2*math.Pi*(pearlBands*c+phase))
	}
	return math3d.V3(band(0), band(0.33), band(0.67)).Scale(amount * pearlGain)
}

func sanitizeColor(c math3d.Vec3) math3d.Vec3 {
	fix := func(x float64) float64 {
		if math.IsNaN(x) || x < 0 {
			return 0
		}
		if math.IsInf(x, 1) {
			return math.MaxFloat64
		}
		return x
	}
	return math3d.V3(fix(c.X), fix(c.Y), fix(c.Z))
}

// ToneMap applies exposure and the Reinhard curve, returning channels in
// [0, 1].
func ToneMap(c math3d.Vec3, exposure float64) math3d.Vec3 {
	exposure = max(0, exposure)
	reinhard := func(x float64) float64 {
		x *= exposure
		if math.IsInf(x, 1) {
			return 1
		}
		return math3d.Clamp01(x / (1 + x))
	}
	return math3d.V3(reinhard(c.X), reinhard(c.Y), reinhard(c.Z))
}

// Quantize rounds a [0, 1] colour to opaque 8-bit RGBA.
func Quantize(c math3d.Vec3) color.RGBA {
	q := func(x float64) uint8 {
		return uint8(math.Round(math3d.Clamp01(x) * 255))
	}
	return color.RGBA{R: q(c.X), G: q(c.Y), B: q(c.Z), A: 255}
}

// Shade evaluates the fragment and returns its display colour.
func Shade(ctx *Context, f Fragment) color.RGBA {
	return Quantize(ToneMap(ShadeLinear(ctx, f), ctx.Environment.Exposure))
}
