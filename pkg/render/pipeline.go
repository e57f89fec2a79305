package render

import (
	"image/color"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/pkg/knob"
	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
	"github.com/taigrr/knobsmith/pkg/shading"
)

// minScreenArea drops triangles smaller than this many square pixels.
const minScreenArea = 0.01

// FrameVertex is one shaded, projected vertex.
type FrameVertex struct {
	World  math3d.Vec3
	Screen ScreenVertex
	W      float64 // Clip w, the view depth
}

// Triangle indexes three frame vertices.
type Triangle struct {
	V      [3]int
	Depth  float64 // Average view depth
	Collar bool
}

// FrameStats counts what happened to the triangles of one frame.
type FrameStats struct {
	Triangles  int
	Culled     int
	Degenerate int
	Drawn      int
	Collar     int // Collar triangles in the draw list
}

// Frame is a scene prepared for a viewport: every vertex shaded through
// pkg/shading and projected, the culled and depth-sorted draw list, the
// shadow passes and the gizmo anchors. Backends only rasterize it.
type Frame struct {
	Width, Height int
	Basis         Basis
	Eye           math3d.Vec3
	ViewProj      math3d.Mat4

	Vertices []FrameVertex
	DrawList []Triangle
	Stats    FrameStats

	// Anchor is the projected knob centre and ScreenRadius the projected
	// reference radius, both in pixels.
	Anchor       math3d.Vec2
	ScreenRadius float64
	Shadows      []shading.ShadowPassConfig
	ShadowGray   color.RGBA

	// CollarReady is set when an enabled collar put triangles in the draw
	// list. Backends must draw them.
	CollarReady bool
}

// Pipeline owns the mesh and normal-map caches and turns scenes into
// frames. It is not safe for concurrent use.
type Pipeline struct {
	log     *zap.Logger
	builder *knob.Builder
	baker   *knob.NormalMapBaker
}

// NewPipeline creates a pipeline baking normal maps of the given size.
func NewPipeline(log *zap.Logger, normalMapSize int) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		log:     log,
		builder: knob.NewBuilder(knob.WithLogger(log)),
		baker:   knob.NewNormalMapBaker(normalMapSize, log),
	}
}

// Builder exposes the mesh cache.
func (pl *Pipeline) Builder() *knob.Builder {
	return pl.builder
}

// Baker exposes the normal-map cache.
func (pl *Pipeline) Baker() *knob.NormalMapBaker {
	return pl.baker
}

// Mesh returns the cached knob mesh for the scene.
func (pl *Pipeline) Mesh(s *Scene) *models.Mesh {
	return pl.builder.Build(s.Knob)
}

// ShadingContext builds the per-frame shading snapshot for a viewport
// height in pixels.
func (pl *Pipeline) ShadingContext(s *Scene, mesh *models.Mesh, height int) shading.Context {
	p := s.Knob.Sanitized()
	ctx := shading.NewContext(p, mesh)
	ctx.NormalMap = pl.baker.Bake(p)
	ctx.Material = s.Material.Sanitized()
	ctx.Lights = s.Lights
	ctx.Environment = s.Environment
	ctx.Mode = s.Mode
	ctx.Paint = s.Paint
	ctx.BrushDarkness = s.BrushDarkness
	ctx.LOD = s.LOD
	sin, cos := math.Sincos(s.Rotation * math.Pi / 180)
	ctx.RotCos, ctx.RotSin = cos, sin
	if ctx.NormalMap != nil {
		ctx.Footprint = shading.Footprint(ctx.NormalMap.TexelSize(), s.Camera.PixelsPerUnit(height))
	}
	return ctx
}

// Prepare shades and projects the scene for a w×h viewport.
func (pl *Pipeline) Prepare(s *Scene, w, h int) *Frame {
	aspect := float64(w) / float64(max(h, 1))
	f := &Frame{
		Width:    w,
		Height:   h,
		Basis:    s.Camera.Basis(),
		Eye:      s.Camera.Eye(),
		ViewProj: s.Camera.ViewProjectionMatrix(aspect),
	}

	mesh := pl.Mesh(s)
	ctx := pl.ShadingContext(s, mesh, h)

	positions := mesh.Positions
	if ctx.NormalMap != nil {
		vis := shading.LODVisibility(ctx.Footprint, ctx.LOD.FadeStart, ctx.LOD.FadeEnd)
		if vis < 1 {
			positions = knob.FlattenCap(mesh, ctx.Params, 1-vis)
		}
	}
	frustum := FrustumOf(f.ViewProj)
	if frustum.Visible(BoundsOf(mesh, s.Rotation)) {
		f.appendMesh(&ctx, mesh, positions)
	} else {
		f.Stats.Triangles += mesh.TriangleCount()
		f.Stats.Culled += mesh.TriangleCount()
	}
	knobTris := len(f.DrawList)

	if s.CollarEnabled && s.Collar != nil && s.Collar.TriangleCount() > 0 {
		if frustum.Visible(BoundsOf(s.Collar, s.Rotation)) {
			cc := collarContext(ctx, s.Collar)
			f.appendMesh(&cc, s.Collar, s.Collar.Positions)
			for i := knobTris; i < len(f.DrawList); i++ {
				f.DrawList[i].Collar = true
			}
		} else {
			f.Stats.Triangles += s.Collar.TriangleCount()
			f.Stats.Culled += s.Collar.TriangleCount()
		}
		f.Stats.Collar = len(f.DrawList) - knobTris
		f.CollarReady = f.Stats.Collar > 0
	}

	sort.SliceStable(f.DrawList, func(i, j int) bool {
		return f.DrawList[i].Depth > f.DrawList[j].Depth
	})
	f.Stats.Drawn = len(f.DrawList)

	anchor := math3d.V3(0, 0, ctx.FrontZ/2)
	a := project(f.ViewProj, anchor, w, h)
	f.Anchor = math3d.V2(a.X, a.Y)
	f.ScreenRadius = ctx.ReferenceRadius * s.Camera.PixelsPerUnit(h)
	f.Shadows = shading.ResolveShadowPasses(s.Lights, f.Basis.Right, f.Basis.Up, anchor, s.Shadow)
	g := uint8(math.Round(math3d.Clamp01(s.Shadow.Gray) * 255))
	f.ShadowGray = RGB(g, g, g)
	return f
}

// collarContext shades the collar with its own material and without knob
// surface features.
func collarContext(ctx shading.Context, collar *models.Mesh) shading.Context {
	ctx.NormalMap = nil
	ctx.Paint = nil
	ctx.Params.Indicator.Enabled = false
	if m := collar.Material; m != nil {
		ctx.Material.BaseColor = shading.RGB{m.BaseColor[0], m.BaseColor[1], m.BaseColor[2]}
		ctx.Material.Metallic = m.Metallic
		ctx.Material.Roughness = m.Roughness
		ctx.Material = ctx.Material.Sanitized()
	}
	ctx.Material.Top.Enabled = false
	ctx.Material.Bevel.Enabled = false
	ctx.Material.Side.Enabled = false
	ctx.Material.BrushStrength = 0
	return ctx
}

// appendMesh shades and projects every vertex of mesh and appends its
// visible triangles to the draw list.
func (f *Frame) appendMesh(ctx *shading.Context, mesh *models.Mesh, positions []math3d.Vec3) {
	base := len(f.Vertices)
	for i, obj := range positions {
		world := obj.RotateZ(ctx.RotCos, ctx.RotSin)
		frag := shading.Fragment{
			Position: obj,
			Normal:   mesh.Normals[i],
			View:     f.Eye.Sub(world).Normalize(),
			Part:     mesh.PartOf(i),
		}
		pr := project(f.ViewProj, world, f.Width, f.Height)
		f.Vertices = append(f.Vertices, FrameVertex{
			World:  world,
			Screen: ScreenVertex{X: pr.X, Y: pr.Y, Color: shading.Shade(ctx, frag)},
			W:      pr.W,
		})
	}

	view := f.Basis.Forward.Negate()
	for t := range mesh.TriangleCount() {
		f.Stats.Triangles++
		face := mesh.Face(t)
		a, b, c := &f.Vertices[base+face[0]], &f.Vertices[base+face[1]], &f.Vertices[base+face[2]]
		if a.W <= 0 || b.W <= 0 || c.W <= 0 {
			f.Stats.Culled++
			continue
		}
		n := b.World.Sub(a.World).Cross(c.World.Sub(a.World))
		if n.Normalize().Dot(view) <= 0 {
			f.Stats.Culled++
			continue
		}
		if math.Abs(signedArea(a.Screen, b.Screen, c.Screen)) < minScreenArea {
			f.Stats.Degenerate++
			continue
		}
		f.DrawList = append(f.DrawList, Triangle{
			V:     [3]int{base + face[0], base + face[1], base + face[2]},
			Depth: (a.W + b.W + c.W) / 3,
		})
	}
}

// Screen returns the screen vertices of a draw-list triangle.
func (f *Frame) Screen(t Triangle) [3]ScreenVertex {
	return [3]ScreenVertex{
		f.Vertices[t.V[0]].Screen,
		f.Vertices[t.V[1]].Screen,
		f.Vertices[t.V[2]].Screen,
	}
}

// signedArea is half the screen-space cross product of the triangle edges.
func signedArea(a, b, c ScreenVertex) float64 {
	return 0.5 * ((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X))
}

// VertexColors shades every knob vertex as seen from the scene camera, in
// mesh order, for baking into exported meshes. height sets the texel
// footprint the normal-map LOD sees.
func (pl *Pipeline) VertexColors(s *Scene, height int) (*models.Mesh, [][4]uint8) {
	mesh := pl.Mesh(s)
	ctx := pl.ShadingContext(s, mesh, height)
	eye := s.Camera.Eye()
	colors := make([][4]uint8, mesh.VertexCount())
	for i, obj := range mesh.Positions {
		world := obj.RotateZ(ctx.RotCos, ctx.RotSin)
		c := shading.Shade(&ctx, shading.Fragment{
			Position: obj,
			Normal:   mesh.Normals[i],
			View:     eye.Sub(world).Normalize(),
			Part:     mesh.PartOf(i),
		})
		colors[i] = [4]uint8{c.R, c.G, c.B, c.A}
	}
	return mesh, colors
}
