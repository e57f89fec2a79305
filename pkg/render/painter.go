package render

import (
	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/pkg/knob"
)

// PainterName is the registry name of the CPU backend.
const PainterName = "cpu"

// Painter is the CPU backend. It paints the depth-sorted draw list back to
// front over the contact shadows, then the gizmo overlay.
type Painter struct {
	pipeline *Pipeline
	log      *zap.Logger
	coverage Coverage
	mask     []float32

	normalMapSize int

	// Stats describes the most recent frame.
	Stats FrameStats
}

// PainterOption configures a Painter.
type PainterOption func(*Painter)

// WithPainterLogger sets the diagnostic logger.
func WithPainterLogger(log *zap.Logger) PainterOption {
	return func(p *Painter) {
		if log != nil {
			p.log = log
		}
	}
}

// WithNormalMapSize sets the baked micro-normal map resolution.
func WithNormalMapSize(size int) PainterOption {
	return func(p *Painter) {
		p.normalMapSize = size
	}
}

// NewPainter creates a CPU backend.
func NewPainter(opts ...PainterOption) *Painter {
	p := &Painter{
		log:           zap.NewNop(),
		normalMapSize: knob.DefaultNormalMapSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.pipeline = NewPipeline(p.log, p.normalMapSize)
	return p
}

// Name implements Backend.
func (p *Painter) Name() string {
	return PainterName
}

// Pipeline exposes the painter's caches.
func (p *Painter) Pipeline() *Pipeline {
	return p.pipeline
}

// RenderFrame implements Backend.
func (p *Painter) RenderFrame(s *Scene, fb *Framebuffer) error {
	fb.Clear(s.Background)
	if fb.Width == 0 || fb.Height == 0 {
		return nil
	}

	f := p.pipeline.Prepare(s, fb.Width, fb.Height)
	p.Stats = f.Stats

	if len(f.Shadows) > 0 && len(f.DrawList) > 0 {
		p.coverage.Build(f)
		p.mask = CompositeShadows(fb, &p.coverage, f, p.mask)
	}
	for _, t := range f.DrawList {
		RasterizeTriangle(fb, f.Screen(t))
	}
	if s.Gizmos {
		DrawGizmos(fb, f, s)
	}

	p.log.Debug("painted frame",
		zap.Int("triangles", f.Stats.Triangles),
		zap.Int("drawn", f.Stats.Drawn),
		zap.Int("culled", f.Stats.Culled),
		zap.Int("degenerate", f.Stats.Degenerate),
		zap.Int("shadow_passes", len(f.Shadows)),
	)
	return nil
}
