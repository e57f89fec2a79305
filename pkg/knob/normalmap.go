package knob

import (
	"math"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/pkg/math3d"
)

// DefaultNormalMapSize is the default texel count along each side.
const DefaultNormalMapSize = 128

// SpiralNormalMap is a square grid of unit normals covering
// [-TopRadius, TopRadius] on both cap axes. Row 0 is y = -TopRadius.
type SpiralNormalMap struct {
	Size      int
	TopRadius float64
	Normals   []math3d.Vec3
}

// BakeSpiralNormalMap derives the ridge normals by central differences of
// the spiral height field.
func BakeSpiralNormalMap(p KnobParameters, size int) *SpiralNormalMap {
	p = p.Sanitized()
	if !p.SpiralEnabled() {
		return nil
	}
	size = max(size, 2)
	topR := p.TopRadius()
	texel := 2 * topR / float64(size)
	s := p.Spiral

	h := func(x, y float64) float64 {
		return ComputeSpiralRidgeOffset(x, y, math.Hypot(x, y), topR, s.Height, s.Width, s.Turns)
	}

	nm := &SpiralNormalMap{
		Size:      size,
		TopRadius: topR,
		Normals:   make([]math3d.Vec3, size*size),
	}
	for j := range size {
		y := -topR + (float64(j)+0.5)*texel
		for i := range size {
			x := -topR + (float64(i)+0.5)*texel
			dx := (h(x+texel, y) - h(x-texel, y)) / (2 * texel)
			dy := (h(x, y+texel) - h(x, y-texel)) / (2 * texel)
			nm.Normals[j*size+i] = math3d.V3(-dx, -dy, 1).Normalize()
		}
	}
	return nm
}

// TexelSize is the object-space width of one texel.
func (nm *SpiralNormalMap) TexelSize() float64 {
	return 2 * nm.TopRadius / float64(nm.Size)
}

// UV maps a cap position to map coordinates in [0, 1].
func (nm *SpiralNormalMap) UV(x, y float64) (u, v float64) {
	d := 2 * nm.TopRadius
	return (x + nm.TopRadius) / d, (y + nm.TopRadius) / d
}

// Sample bilinearly interpolates the map at (u, v), clamping to the edge,
// and renormalizes the result.
func (nm *SpiralNormalMap) Sample(u, v float64) math3d.Vec3 {
	fx := u*float64(nm.Size) - 0.5
	fy := v*float64(nm.Size) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	at := func(x, y int) math3d.Vec3 {
		x = min(max(x, 0), nm.Size-1)
		y = min(max(y, 0), nm.Size-1)
		return nm.Normals[y*nm.Size+x]
	}
	top := at(x0, y0).Lerp(at(x0+1, y0), tx)
	bottom := at(x0, y0+1).Lerp(at(x0+1, y0+1), tx)
	n := top.Lerp(bottom, ty).Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.AxisZ()
	}
	return n
}

// NormalMapKey identifies a baked normal map. TopRadius is included because
// taper and bevel move the cap edge too.
type NormalMapKey struct {
	ReferenceRadius float64
	TopScale        float64
	TopRadius       float64
	RidgeHeight     float64
	RidgeWidth      float64
	Turns           float64
	Size            int
}

func normalMapKeyOf(p KnobParameters, size int) NormalMapKey {
	k := MeshKeyOf(p).Parameters()
	return NormalMapKey{
		ReferenceRadius: k.Radius,
		TopScale:        k.TopScale,
		TopRadius:       math3d.Round(k.TopRadius(), KeyPrecision),
		RidgeHeight:     k.Spiral.Height,
		RidgeWidth:      k.Spiral.Width,
		Turns:           k.Spiral.Turns,
		Size:            size,
	}
}

// NormalMapBaker caches the most recently baked normal map.
type NormalMapBaker struct {
	size int
	log  *zap.Logger

	key    NormalMapKey
	valid  bool
	cached *SpiralNormalMap
	bakes  int
}

// NewNormalMapBaker creates a baker producing size×size maps.
func NewNormalMapBaker(size int, log *zap.Logger) *NormalMapBaker {
	if size <= 0 {
		size = DefaultNormalMapSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NormalMapBaker{size: size, log: log}
}

// Bake returns the normal map for p, or nil when the ridge is disabled.
func (b *NormalMapBaker) Bake(p KnobParameters) *SpiralNormalMap {
	key := normalMapKeyOf(p, b.size)
	if b.valid && key == b.key {
		return b.cached
	}
	b.key, b.valid = key, true
	b.cached = BakeSpiralNormalMap(MeshKeyOf(p).Parameters(), b.size)
	b.bakes++
	b.log.Debug("baked spiral normal map",
		zap.Int("size", b.size),
		zap.Bool("empty", b.cached == nil),
	)
	return b.cached
}

// Size is the edge length of baked maps in texels.
func (b *NormalMapBaker) Size() int {
	return b.size
}

// Bakes returns how many times Bake missed the cache.
func (b *NormalMapBaker) Bakes() int {
	return b.bakes
}
