// Package gpu is the GPU render backend. Frames are prepared by the shared
// render pipeline, so every vertex color comes from pkg/shading; the device
// only projects, interpolates and composites. Two WGSL passes run per frame:
// the overlay pass composites the contact shadow mask over the background
// and the model pass draws the packed triangle list on top.
package gpu

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/pkg/knob"
	"github.com/taigrr/knobsmith/pkg/render"
)

// Name is the registry name of the GPU backend.
const Name = "gpu"

// ErrFrameSkipped is returned when the device could not provide a resource.
// The renderer stays usable and retries on the next frame.
var ErrFrameSkipped = errors.New("gpu frame skipped")

func init() {
	render.RegisterBackend(Name, func(opts render.BackendOptions) (render.Backend, error) {
		return NewRenderer(NewSoftDevice(),
			WithLogger(opts.Log),
			WithNormalMapSize(opts.NormalMapSize),
		), nil
	})
}

var passOrder = []string{PassModel, PassOverlay}

// Renderer is the GPU backend. It is not safe for concurrent use.
type Renderer struct {
	dev      Device
	log      *zap.Logger
	pipeline *render.Pipeline

	shaders map[string]Resource

	coverage render.Coverage
	mask     []float32
	verts    []float32

	normalMapSize int

	// Stats describes the most recent frame.
	Stats render.FrameStats
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithNormalMapSize sets the baked micro-normal map resolution.
func WithNormalMapSize(size int) Option {
	return func(r *Renderer) {
		r.normalMapSize = size
	}
}

// NewRenderer creates a GPU backend on dev. Shaders are compiled on the
// first frame.
func NewRenderer(dev Device, opts ...Option) *Renderer {
	r := &Renderer{
		dev:           dev,
		log:           zap.NewNop(),
		normalMapSize: knob.DefaultNormalMapSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.pipeline = render.NewPipeline(r.log, r.normalMapSize)
	return r
}

// Name implements render.Backend.
func (r *Renderer) Name() string {
	return Name
}

// Pipeline exposes the renderer's caches.
func (r *Renderer) Pipeline() *render.Pipeline {
	return r.pipeline
}

// ensureShaders compiles and uploads both pass shaders once. A failure
// leaves nothing half-built.
func (r *Renderer) ensureShaders() error {
	if r.shaders != nil {
		return nil
	}
	res := resourceSet{dev: r.dev}
	shaders := make(map[string]Resource, len(passOrder))
	for _, name := range passOrder {
		src, _ := ShaderSource(name)
		words, err := CompileWGSL(src)
		if err != nil {
			res.release()
			return fmt.Errorf("%s shader: %w", name, err)
		}
		mod, err := r.dev.CreateShaderModule(name, words)
		if err != nil {
			res.release()
			return fmt.Errorf("%s shader module: %w", name, err)
		}
		shaders[name] = res.add(mod)
	}
	r.shaders = shaders
	return nil
}

// Close releases the persistent shader modules.
func (r *Renderer) Close() {
	for i := len(passOrder) - 1; i >= 0; i-- {
		if mod, ok := r.shaders[passOrder[i]]; ok {
			r.dev.Destroy(mod)
		}
	}
	r.shaders = nil
}

func (r *Renderer) skip(stage string, err error) error {
	r.log.Warn("gpu frame skipped", zap.String("stage", stage), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrFrameSkipped, stage, err)
}

// RenderFrame implements render.Backend. On resource failure fb keeps its
// previous contents and ErrFrameSkipped is returned.
func (r *Renderer) RenderFrame(s *render.Scene, fb *render.Framebuffer) error {
	if fb.Width == 0 || fb.Height == 0 {
		return nil
	}
	if err := r.ensureShaders(); err != nil {
		return r.skip("shaders", err)
	}

	f := r.pipeline.Prepare(s, fb.Width, fb.Height)
	r.Stats = f.Stats
	packed := PackFrame(f, r.verts)
	r.verts = packed.Vertices

	res := resourceSet{dev: r.dev}
	defer res.release()

	target, err := r.dev.CreateRenderTarget("frame", fb.Width, fb.Height)
	if err != nil {
		return r.skip("render target", err)
	}
	res.add(target)
	uniforms, err := r.dev.CreateUniformBuffer("frame uniforms", PackUniforms(f))
	if err != nil {
		return r.skip("uniforms", err)
	}
	res.add(uniforms)

	bg := s.Background
	var passes []Pass
	if len(f.Shadows) > 0 && len(f.DrawList) > 0 {
		r.coverage.Build(f)
		n := f.Width * f.Height
		if cap(r.mask) < n {
			r.mask = make([]float32, n)
		}
		r.mask = r.mask[:n]
		if render.ShadowAlpha(&r.coverage, f, r.mask) {
			tex, err := r.dev.CreateMaskTexture("shadow mask", f.Width, f.Height, r.mask)
			if err != nil {
				return r.skip("shadow mask", err)
			}
			res.add(tex)
			passes = append(passes, Pass{
				Name:     PassOverlay,
				Shader:   r.shaders[PassOverlay],
				Target:   target,
				Uniforms: uniforms,
				Mask:     tex,
			})
		}
	}

	model := Pass{
		Name:        PassModel,
		Shader:      r.shaders[PassModel],
		Target:      target,
		Uniforms:    uniforms,
		VertexCount: packed.VertexCount(),
	}
	if model.VertexCount > 0 {
		vb, err := r.dev.CreateVertexBuffer("model vertices", packed.Vertices)
		if err != nil {
			return r.skip("vertex buffer", err)
		}
		model.Vertices = res.add(vb)
	}
	passes = append(passes, model)
	passes[0].Clear = &bg

	if err := r.dev.Submit(passes); err != nil {
		return r.skip("submit", err)
	}
	if err := r.dev.ReadPixels(target, fb); err != nil {
		return r.skip("readback", err)
	}
	if s.Gizmos {
		render.DrawGizmos(fb, f, s)
	}

	r.log.Debug("gpu frame",
		zap.Int("vertices", packed.VertexCount()),
		zap.Int("collar_vertices", packed.CollarVertices),
		zap.Int("passes", len(passes)),
	)
	return nil
}
