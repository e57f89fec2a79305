package render

import (
	"errors"
	"image/color"
	"math"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/pkg/knob"
	"github.com/taigrr/knobsmith/pkg/math3d"
	"github.com/taigrr/knobsmith/pkg/models"
	"github.com/taigrr/knobsmith/pkg/shading"
)

func testScene() *Scene {
	s := DefaultScene()
	s.Knob.RadialSegments = 32
	s.Gizmos = false
	return s
}

func countDiffering(fb *Framebuffer, c color.RGBA) int {
	n := 0
	for _, p := range fb.Pixels {
		if p != c {
			n++
		}
	}
	return n
}

func TestBlendPixel(t *testing.T) {
	fb := NewFramebuffer(2, 1)
	fb.Clear(RGB(100, 100, 100))

	tests := []struct {
		name  string
		alpha float64
		want  color.RGBA
	}{
		{"none", 0, RGB(100, 100, 100)},
		{"half", 0.5, RGB(50, 50, 50)},
		{"full", 1, RGB(0, 0, 0)},
		{"over", 3, RGB(0, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb.SetPixel(0, 0, RGB(100, 100, 100))
			fb.BlendPixel(0, 0, RGB(0, 0, 0), tc.alpha)
			if got := fb.GetPixel(0, 0); got != tc.want {
				t.Errorf("BlendPixel alpha %v = %v, want %v", tc.alpha, got, tc.want)
			}
		})
	}

	fb.BlendPixel(5, 5, RGB(0, 0, 0), 1) // out of range is ignored
}

func TestDrawCircle(t *testing.T) {
	fb := NewFramebuffer(21, 21)
	fb.DrawCircle(10, 10, 5, RGB(255, 0, 0))
	for _, p := range [][2]int{{15, 10}, {5, 10}, {10, 15}, {10, 5}} {
		if fb.GetPixel(p[0], p[1]) != RGB(255, 0, 0) {
			t.Errorf("pixel %v not on circle", p)
		}
	}
	if fb.GetPixel(10, 10) != (color.RGBA{}) {
		t.Error("circle centre should stay empty")
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Resize(8, 2)
	if fb.Width != 8 || fb.Height != 2 || len(fb.Pixels) != 16 {
		t.Errorf("resize = %dx%d (%d pixels)", fb.Width, fb.Height, len(fb.Pixels))
	}
	fb.Resize(-1, 3)
	if fb.Width != 0 || len(fb.Pixels) != 0 {
		t.Errorf("negative resize = %dx%d", fb.Width, fb.Height)
	}
}

type fakeScreen struct {
	uv.Screen
	cells map[[2]int]*uv.Cell
}

func (s *fakeScreen) SetCell(x, y int, c *uv.Cell) {
	s.cells[[2]int{x, y}] = c
}

func TestFramebufferDrawHalfBlocks(t *testing.T) {
	fb := NewFramebuffer(2, 4)
	top, bottom := RGB(255, 0, 0), RGB(0, 0, 255)
	for x := range 2 {
		fb.SetPixel(x, 0, top)
		fb.SetPixel(x, 1, bottom)
	}

	scr := &fakeScreen{cells: map[[2]int]*uv.Cell{}}
	fb.Draw(scr, uv.Rect(3, 1, 2, 2))

	if len(scr.cells) != 4 {
		t.Fatalf("drew %d cells, want 4", len(scr.cells))
	}
	c := scr.cells[[2]int{3, 1}]
	if c == nil {
		t.Fatal("no cell at the area origin")
	}
	if c.Content != "▀" || c.Style.Fg != top || c.Style.Bg != bottom {
		t.Errorf("cell = %q fg %v bg %v", c.Content, c.Style.Fg, c.Style.Bg)
	}
	if c := scr.cells[[2]int{4, 2}]; c == nil || c.Style.Fg != nil {
		t.Errorf("transparent pixels should have no color, got %+v", c)
	}
}

func TestTerminalRendererSize(t *testing.T) {
	r := NewTerminalRenderer(&fakeScreen{cells: map[[2]int]*uv.Cell{}}, 40, 12)
	if w, h := r.FramebufferSize(); w != 40 || h != 24 {
		t.Errorf("FramebufferSize = %dx%d, want 40x24", w, h)
	}
	if err := r.Flush(); err != nil {
		t.Errorf("Flush on an unbuffered screen: %v", err)
	}
}

func TestRasterizeTriangleWindings(t *testing.T) {
	red := RGB(200, 0, 0)
	ccw := [3]ScreenVertex{{2, 2, red}, {18, 2, red}, {2, 18, red}}
	cw := [3]ScreenVertex{ccw[0], ccw[2], ccw[1]}

	var counts [2]int
	for i, tri := range [][3]ScreenVertex{ccw, cw} {
		fb := NewFramebuffer(20, 20)
		RasterizeTriangle(fb, tri)
		counts[i] = countDiffering(fb, color.RGBA{})
	}
	if counts[0] == 0 || counts[0] != counts[1] {
		t.Errorf("pixel counts by winding = %v, want equal and non-zero", counts)
	}
}

func TestRasterizeTriangleInterpolates(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	RasterizeTriangle(fb, [3]ScreenVertex{
		{0, 0, RGB(255, 0, 0)},
		{64, 0, RGB(0, 255, 0)},
		{0, 64, RGB(0, 0, 255)},
	})
	near := fb.GetPixel(1, 1)
	if near.R < 240 || near.G > 15 || near.B > 15 {
		t.Errorf("pixel near red vertex = %v", near)
	}
	mid := fb.GetPixel(21, 21)
	if absDiff(mid.R, mid.G) > 12 || absDiff(mid.G, mid.B) > 12 {
		t.Errorf("pixel near centroid = %v, want roughly equal channels", mid)
	}
	if fb.GetPixel(60, 60) != (color.RGBA{}) {
		t.Error("pixel outside the triangle was written")
	}
}

func TestRasterizeOffscreen(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	c := RGB(1, 2, 3)
	RasterizeTriangle(fb, [3]ScreenVertex{{-50, -50, c}, {-40, -50, c}, {-50, -40, c}})
	RasterizeTriangle(fb, [3]ScreenVertex{{1, 1, c}, {1, 1, c}, {1, 1, c}})
	if n := countDiffering(fb, color.RGBA{}); n != 0 {
		t.Errorf("%d pixels written by invisible triangles", n)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestPainterRendersKnob(t *testing.T) {
	s := testScene()
	p := NewPainter()
	fb := NewFramebuffer(96, 96)

	if err := p.RenderFrame(s, fb); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if n := countDiffering(fb, s.Background); n < 96*96/20 {
		t.Errorf("only %d pixels differ from the background", n)
	}
	st := p.Stats
	if st.Drawn == 0 || st.Culled == 0 {
		t.Errorf("stats = %+v, want drawn and back-face culled triangles", st)
	}
	if st.Drawn+st.Culled+st.Degenerate != st.Triangles {
		t.Errorf("stats do not add up: %+v", st)
	}

	again := NewFramebuffer(96, 96)
	if err := p.RenderFrame(s, again); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	for i := range fb.Pixels {
		if fb.Pixels[i] != again.Pixels[i] {
			t.Fatalf("pixel %d differs between identical frames", i)
		}
	}
}

func TestPainterEmptyTarget(t *testing.T) {
	if err := NewPainter().RenderFrame(testScene(), NewFramebuffer(0, 0)); err != nil {
		t.Errorf("RenderFrame on empty target: %v", err)
	}
}

func TestPrepareDropsDegenerateTriangles(t *testing.T) {
	pl := NewPipeline(zap.NewNop(), 32)
	f := pl.Prepare(testScene(), 4, 4)
	if f.Stats.Degenerate == 0 {
		t.Errorf("stats = %+v, want sub-pixel triangles dropped", f.Stats)
	}
	for _, tri := range f.DrawList {
		v := f.Screen(tri)
		if a := signedArea(v[0], v[1], v[2]); a > -minScreenArea && a < minScreenArea {
			t.Fatalf("degenerate triangle in draw list: area %v", a)
		}
	}
}

func TestPrepareSortsBackToFront(t *testing.T) {
	pl := NewPipeline(nil, 32)
	f := pl.Prepare(testScene(), 64, 64)
	for i := 1; i < len(f.DrawList); i++ {
		if f.DrawList[i].Depth > f.DrawList[i-1].Depth {
			t.Fatalf("draw list not sorted at %d: %v > %v", i, f.DrawList[i].Depth, f.DrawList[i-1].Depth)
		}
	}
}

func TestPrepareFrustumCull(t *testing.T) {
	s := testScene()
	s.Camera.Target = math3d.V3(5000, 0, 0)
	f := NewPipeline(nil, 32).Prepare(s, 64, 64)
	if f.Stats.Drawn != 0 || f.Stats.Culled != f.Stats.Triangles || f.Stats.Triangles == 0 {
		t.Errorf("stats = %+v, want the whole knob culled", f.Stats)
	}
}

func TestPainterShadowsDarkenBackground(t *testing.T) {
	lit := testScene()
	lit.Shadow.Strength = 1
	lit.Shadow.Gray = 0
	plain := lit.Clone()
	plain.Shadow.Enabled = false

	render := func(s *Scene) *Framebuffer {
		fb := NewFramebuffer(128, 128)
		if err := NewPainter().RenderFrame(s, fb); err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
		return fb
	}
	a, b := render(lit), render(plain)

	darker := 0
	for i := range a.Pixels {
		sa := int(a.Pixels[i].R) + int(a.Pixels[i].G) + int(a.Pixels[i].B)
		sb := int(b.Pixels[i].R) + int(b.Pixels[i].G) + int(b.Pixels[i].B)
		if sa > sb {
			t.Fatalf("pixel %d brighter with shadows: %v vs %v", i, a.Pixels[i], b.Pixels[i])
		}
		if sa < sb {
			darker++
		}
	}
	if darker == 0 {
		t.Error("shadow pass darkened nothing")
	}
}

func TestCoverageBuild(t *testing.T) {
	f := &Frame{
		Width:  10,
		Height: 10,
		Vertices: []FrameVertex{
			{Screen: ScreenVertex{X: 1, Y: 1}},
			{Screen: ScreenVertex{X: 6, Y: 1}},
			{Screen: ScreenVertex{X: 1, Y: 6}},
		},
		DrawList: []Triangle{{V: [3]int{0, 1, 2}}},
	}
	var c Coverage
	c.Build(f)
	if !c.At(2, 2) || c.At(8, 8) || c.At(-1, 0) {
		t.Error("coverage mask wrong")
	}
	if c.Bounds.Empty() || c.Bounds.Max.X > 10 {
		t.Errorf("bounds = %v", c.Bounds)
	}

	f.DrawList = nil
	c.Build(f)
	if !c.Bounds.Empty() || c.At(2, 2) {
		t.Error("rebuild did not reset coverage")
	}
}

func TestShadowAlphaAnisotropicBlur(t *testing.T) {
	f := &Frame{
		Width:        40,
		Height:       40,
		ScreenRadius: 10,
		Vertices: []FrameVertex{
			{Screen: ScreenVertex{X: 18, Y: 18}},
			{Screen: ScreenVertex{X: 23, Y: 18}},
			{Screen: ScreenVertex{X: 18, Y: 23}},
		},
		DrawList: []Triangle{{V: [3]int{0, 1, 2}}},
		Shadows: []shading.ShadowPassConfig{{
			Enabled:    true,
			Alpha:      1,
			SoftRadius: math3d.V2(1, 0),
			Samples:    16,
		}},
	}
	var cov Coverage
	cov.Build(f)
	dst := make([]float32, f.Width*f.Height)
	if !ShadowAlpha(&cov, f, dst) {
		t.Fatal("nothing shaded")
	}

	left := false
	for y := range f.Height {
		for x := range f.Width {
			if dst[y*f.Width+x] == 0 {
				continue
			}
			if y < cov.Bounds.Min.Y || y >= cov.Bounds.Max.Y {
				t.Fatalf("pixel (%d, %d) shaded outside the covered rows %v", x, y, cov.Bounds)
			}
			if x < cov.Bounds.Min.X {
				left = true
			}
		}
	}
	if !left {
		t.Error("horizontal soft radius did not spread the shadow sideways")
	}
}

func TestLightMarkers(t *testing.T) {
	s := testScene()
	f := NewPipeline(nil, 32).Prepare(s, 128, 128)
	markers := LightMarkers(f, s.Lights, 1)
	if len(markers) != len(s.Lights) {
		t.Fatalf("got %d markers, want %d", len(markers), len(s.Lights))
	}
	for i, m := range markers {
		if m.Light != i || m.Selected != (i == 1) {
			t.Errorf("marker %d = %+v", i, m)
		}
	}
}

func TestGizmosDrawOnTop(t *testing.T) {
	s := testScene()
	off := NewFramebuffer(128, 128)
	if err := NewPainter().RenderFrame(s, off); err != nil {
		t.Fatal(err)
	}
	s.Gizmos = true
	on := NewFramebuffer(128, 128)
	if err := NewPainter().RenderFrame(s, on); err != nil {
		t.Fatal(err)
	}
	changed := 0
	for i := range on.Pixels {
		if on.Pixels[i] != off.Pixels[i] {
			changed++
		}
	}
	if changed == 0 {
		t.Error("gizmos changed no pixels")
	}
}

func TestBackendRegistry(t *testing.T) {
	b, err := NewBackend(PainterName, BackendOptions{NormalMapSize: 48})
	if err != nil {
		t.Fatalf("NewBackend(cpu): %v", err)
	}
	if b.Name() != PainterName {
		t.Errorf("Name = %q", b.Name())
	}
	if got := b.(*Painter).Pipeline().Baker().Size(); got != 48 {
		t.Errorf("normal map size = %d, want 48", got)
	}
	if b, _ := NewBackend(PainterName, BackendOptions{}); b.(*Painter).Pipeline().Baker().Size() != knob.DefaultNormalMapSize {
		t.Error("zero size should fall back to the default")
	}

	if _, err := NewBackend("vulkan-on-a-toaster", BackendOptions{}); !errors.Is(err, ErrNoBackend) {
		t.Errorf("unknown backend error = %v, want ErrNoBackend", err)
	}

	RegisterBackend("test-null", func(BackendOptions) (Backend, error) { return NewPainter(), nil })
	found := false
	for _, n := range Backends() {
		found = found || n == "test-null"
	}
	if !found {
		t.Errorf("Backends() = %v, missing test-null", Backends())
	}
}

// ringCollar is a flat +Z-facing annulus around the knob base.
func ringCollar(inner, outer float64, segments int) *models.Mesh {
	m := models.NewMesh("collar")
	up := math3d.AxisZ()
	for i := range segments {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		m.AddVertex(math3d.V3(inner*c, inner*s, 0), up)
		m.AddVertex(math3d.V3(outer*c, outer*s, 0), up)
	}
	for i := range segments {
		j := (i + 1) % segments
		in0, out0 := uint32(2*i), uint32(2*i+1)
		in1, out1 := uint32(2*j), uint32(2*j+1)
		m.AddTriangle(in0, out0, out1)
		m.AddTriangle(in0, out1, in1)
	}
	m.Material = &models.Material{BaseColor: [4]float64{0.2, 0.2, 0.22, 1}, Metallic: 1, Roughness: 0.4}
	return m
}

func TestPrepareCollar(t *testing.T) {
	s := testScene()
	s.Collar = ringCollar(110, 150, 24)

	f := NewPipeline(nil, 32).Prepare(s, 96, 96)
	if f.CollarReady || f.Stats.Collar != 0 {
		t.Errorf("disabled collar was prepared: %+v", f.Stats)
	}

	s.CollarEnabled = true
	f = NewPipeline(nil, 32).Prepare(s, 96, 96)
	if !f.CollarReady || f.Stats.Collar == 0 {
		t.Fatalf("collar not prepared: ready %v stats %+v", f.CollarReady, f.Stats)
	}
	n := 0
	for _, tri := range f.DrawList {
		if tri.Collar {
			n++
		}
	}
	if n != f.Stats.Collar {
		t.Errorf("%d collar triangles tagged, stats say %d", n, f.Stats.Collar)
	}
}

func TestVertexColorsMatchFrame(t *testing.T) {
	s := testScene()
	pl := NewPipeline(nil, 32)
	mesh, colors := pl.VertexColors(s, 128)
	if len(colors) != mesh.VertexCount() {
		t.Fatalf("%d colours for %d vertices", len(colors), mesh.VertexCount())
	}

	// The frame shades the same vertices first, so baked colours agree
	// wherever LOD flattening left the mesh alone.
	f := pl.Prepare(s, 128, 128)
	checked := 0
	for i, c := range colors {
		if i >= len(f.Vertices) {
			break
		}
		if f.Vertices[i].World.Distance(mesh.Positions[i].RotateZ(1, 0)) > 1e-9 {
			continue
		}
		got := f.Vertices[i].Screen.Color
		if got != (color.RGBA{c[0], c[1], c[2], c[3]}) {
			t.Fatalf("vertex %d baked %v, frame shaded %v", i, c, got)
		}
		checked++
	}
	if checked == 0 {
		t.Error("no vertices compared")
	}
}
