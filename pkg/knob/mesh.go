package knob

import (
	"math"

	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
)

// Front cap ring counts by enabled feature.
const (
	capRingsPlain     = 6
	capRingsSpiral    = 32
	capRingsIndicator = 20
)

// capNormalStep is the finite-difference step for cap normals, relative to
// the top radius.
const capNormalStep = 0.002

// BuildMesh generates the knob mesh for p without caching.
func BuildMesh(p KnobParameters) *models.Mesh {
	return buildMesh(MeshKeyOf(p).Parameters())
}

func buildMesh(p KnobParameters) *models.Mesh {
	pr := buildProfile(p)
	m := models.NewMesh("knob")
	m.ReferenceRadius = p.Radius
	m.TopRadius = pr.topRadius
	m.FrontZ = p.Height

	m.Side, m.Chamfer = buildSide(m, p, pr)
	m.FrontCap = buildFrontCap(m, p, pr)
	m.BackCap = buildBackCap(m, p, pr)
	m.Walls = buildWalls(m, p, pr)

	m.CalculateBounds()
	return m
}

// capHeight is the front cap displacement above FrontZ at (x, y).
func capHeight(p KnobParameters, x, y, topRadius float64) float64 {
	rNorm := math.Hypot(x, y) / topRadius
	_, ind := IndicatorField(p, x, y, topRadius)
	return crownOffset(p, rNorm) + spiralOffset(p, x, y, topRadius) + ind
}

func buildSide(m *models.Mesh, p KnobParameters, pr profile) (side, chamfer models.Range) {
	segs := p.RadialSegments
	rings := len(pr.points)
	sideLen := pr.sideEndZ - pr.sideStartZ
	bandStartZ := pr.sideStartZ + p.Grip.Start*sideLen

	sin, cos := angleTable(segs)
	pos := make([]math3d.Vec3, rings*segs)
	for j, pt := range pr.points {
		for i := range segs {
			r := pt.r
			if pt.kind == sampleSide {
				r += gripOffset(p, i, pt.t, pt.z, bandStartZ)
			}
			pos[j*segs+i] = math3d.V3(r*cos[i], r*sin[i], pt.z)
		}
	}

	start := len(m.Positions)
	at := func(j, i int) math3d.Vec3 {
		j = min(max(j, 0), rings-1)
		i = (i%segs + segs) % segs
		return pos[j*segs+i]
	}
	for j := range rings {
		for i := range segs {
			c := at(j, i)
			dTheta := at(j, i+1).Sub(at(j, i-1))
			dProfile := at(j+1, i).Sub(at(j-1, i))
			n := dTheta.Cross(dProfile).Normalize()
			if n.Dot(math3d.V3(c.X, c.Y, 0)) < 0 {
				n = n.Negate()
			}
			m.AddVertex(c, n)
		}
	}

	for j := 0; j+1 < rings; j++ {
		for i := range segs {
			a := uint32(start + j*segs + i)
			b := uint32(start + j*segs + (i+1)%segs)
			c := uint32(start + (j+1)*segs + (i+1)%segs)
			d := uint32(start + (j+1)*segs + i)
			m.AddTriangle(a, b, c)
			m.AddTriangle(a, c, d)
		}
	}
	side = models.Range{Start: start, End: len(m.Positions)}
	chamfer = models.Range{Start: side.End, End: side.End}
	for j, pt := range pr.points {
		if pt.kind == sampleChamfer {
			chamfer.Start = start + j*segs
			break
		}
	}
	return side, chamfer
}

func capRingCount(p KnobParameters) int {
	n := capRingsPlain
	if p.SpiralEnabled() {
		n = max(n, capRingsSpiral)
	}
	if p.IndicatorDisplaced() {
		n = max(n, capRingsIndicator)
	}
	return n
}

// capNormal derives the cap normal from central differences of capHeight
// along the axes a and b.
func capNormal(p KnobParameters, x, y, topRadius float64, a, b math3d.Vec2) math3d.Vec3 {
	d := topRadius * capNormalStep
	h := func(o math3d.Vec2) float64 { return capHeight(p, x+o.X, y+o.Y, topRadius) }
	ha := h(a.Scale(d)) - h(a.Scale(-d))
	hb := h(b.Scale(d)) - h(b.Scale(-d))
	da := math3d.V3(2*d*a.X, 2*d*a.Y, ha)
	db := math3d.V3(2*d*b.X, 2*d*b.Y, hb)
	n := da.Cross(db).Normalize()
	if n.Z < 0 {
		n = n.Negate()
	}
	return n
}

func buildFrontCap(m *models.Mesh, p KnobParameters, pr profile) models.Range {
	segs := p.RadialSegments
	rings := capRingCount(p)
	topR := pr.topRadius
	sin, cos := angleTable(segs)

	start := len(m.Positions)
	apex := m.AddVertex(
		math3d.V3(0, 0, p.Height+capHeight(p, 0, 0, topR)),
		capNormal(p, 0, 0, topR, math3d.V2(1, 0), math3d.V2(0, 1)),
	)
	for k := 1; k <= rings; k++ {
		r := topR * float64(k) / float64(rings)
		for i := range segs {
			x, y := r*cos[i], r*sin[i]
			radial := math3d.V2(cos[i], sin[i])
			tangent := math3d.V2(-sin[i], cos[i])
			m.AddVertex(
				math3d.V3(x, y, p.Height+capHeight(p, x, y, topR)),
				capNormal(p, x, y, topR, radial, tangent),
			)
		}
	}

	ring := func(k, i int) uint32 {
		return apex + 1 + uint32((k-1)*segs+i%segs)
	}
	for i := range segs {
		m.AddTriangle(apex, ring(1, i), ring(1, i+1))
	}
	for k := 1; k < rings; k++ {
		for i := range segs {
			m.AddTriangle(ring(k, i), ring(k+1, i), ring(k+1, i+1))
			m.AddTriangle(ring(k, i), ring(k+1, i+1), ring(k, i+1))
		}
	}
	return models.Range{Start: start, End: len(m.Positions)}
}

func buildBackCap(m *models.Mesh, p KnobParameters, pr profile) models.Range {
	segs := p.RadialSegments
	back := pr.points[0]
	sin, cos := angleTable(segs)
	down := math3d.V3(0, 0, -1)

	start := len(m.Positions)
	apex := m.AddVertex(math3d.V3(0, 0, back.z), down)
	for i := range segs {
		m.AddVertex(math3d.V3(back.r*cos[i], back.r*sin[i], back.z), down)
	}
	for i := range segs {
		a := apex + 1 + uint32(i)
		b := apex + 1 + uint32((i+1)%segs)
		m.AddTriangle(apex, b, a)
	}
	return models.Range{Start: start, End: len(m.Positions)}
}

// buildWalls extrudes vertical quads around the indicator outline so a
// straight-profile indicator reads as a machined step.
func buildWalls(m *models.Mesh, p KnobParameters, pr profile) models.Range {
	start := len(m.Positions)
	if !p.HardWallsEnabled() {
		return models.Range{Start: start, End: start}
	}

	topR := pr.topRadius
	depth := IndicatorDepth(p)
	sign := p.Indicator.Relief.Sign()
	contour := IndicatorContour(p.Indicator)

	base := func(v math3d.Vec2) math3d.Vec3 {
		x, y := v.X*topR, v.Y*topR
		rNorm := math.Hypot(x, y) / topR
		return math3d.V3(x, y, p.Height+crownOffset(p, rNorm)+spiralOffset(p, x, y, topR))
	}

	for i := range contour {
		a, b := contour[i], contour[(i+1)%len(contour)]
		edge := b.Sub(a)
		if edge.Len() < math3d.Epsilon {
			continue
		}
		out := edge.Perp().Normalize().Scale(sign)
		n := math3d.V3(out.X, out.Y, 0)

		a0, b0 := base(a), base(b)
		a1 := a0.Add(math3d.V3(0, 0, depth))
		b1 := b0.Add(math3d.V3(0, 0, depth))

		i0 := m.AddVertex(a0, n)
		i1 := m.AddVertex(b0, n)
		i2 := m.AddVertex(b1, n)
		i3 := m.AddVertex(a1, n)

		face := b0.Sub(a0).Cross(b1.Sub(a0))
		if face.Dot(n) >= 0 {
			m.AddTriangle(i0, i1, i2)
			m.AddTriangle(i0, i2, i3)
		} else {
			m.AddTriangle(i0, i2, i1)
			m.AddTriangle(i0, i3, i2)
		}
	}
	return models.Range{Start: start, End: len(m.Positions)}
}

func angleTable(segs int) (sin, cos []float64) {
	sin = make([]float64, segs)
	cos = make([]float64, segs)
	for i := range segs {
		sin[i], cos[i] = math.Sincos(2 * math.Pi * float64(i) / float64(segs))
	}
	return sin, cos
}
