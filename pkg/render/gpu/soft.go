package gpu

import (
	"errors"
	"fmt"

	"github.com/taigrr/knobsmith/pkg/render"
)

var errForeignResource = errors.New("resource not owned by this device")

type softKind int

const (
	softShader softKind = iota
	softVertices
	softUniforms
	softMask
	softTarget
)

type softResource struct {
	label string
	kind  softKind
	spirv []uint32
	data  []float32
	w, h  int
	fb    *render.Framebuffer
}

func (r *softResource) Label() string { return r.label }

// SoftDevice executes the model and overlay passes on the CPU with the same
// rasterizer and blend the painter uses. It is the reference Device.
type SoftDevice struct {
	live map[*softResource]struct{}
}

// NewSoftDevice creates an empty reference device.
func NewSoftDevice() *SoftDevice {
	return &SoftDevice{live: make(map[*softResource]struct{})}
}

// Live is the number of resources not yet destroyed.
func (d *SoftDevice) Live() int {
	return len(d.live)
}

func (d *SoftDevice) track(r *softResource) Resource {
	d.live[r] = struct{}{}
	return r
}

func (d *SoftDevice) lookup(r Resource, kind softKind) (*softResource, error) {
	sr, ok := r.(*softResource)
	if !ok {
		return nil, errForeignResource
	}
	if _, ok := d.live[sr]; !ok {
		return nil, fmt.Errorf("%s: use after destroy", sr.label)
	}
	if sr.kind != kind {
		return nil, fmt.Errorf("%s: wrong resource kind", sr.label)
	}
	return sr, nil
}

// CreateShaderModule implements Device.
func (d *SoftDevice) CreateShaderModule(label string, spirv []uint32) (Resource, error) {
	if len(spirv) == 0 {
		return nil, fmt.Errorf("%s: empty SPIR-V", label)
	}
	return d.track(&softResource{label: label, kind: softShader, spirv: spirv}), nil
}

// CreateVertexBuffer implements Device.
func (d *SoftDevice) CreateVertexBuffer(label string, data []float32) (Resource, error) {
	if len(data)%VertexStride != 0 {
		return nil, fmt.Errorf("%s: %d floats is not a whole number of vertices", label, len(data))
	}
	return d.track(&softResource{label: label, kind: softVertices, data: append([]float32(nil), data...)}), nil
}

// CreateUniformBuffer implements Device.
func (d *SoftDevice) CreateUniformBuffer(label string, data []float32) (Resource, error) {
	if len(data) < UniformSize {
		return nil, fmt.Errorf("%s: uniform block too small", label)
	}
	return d.track(&softResource{label: label, kind: softUniforms, data: append([]float32(nil), data...)}), nil
}

// CreateMaskTexture implements Device.
func (d *SoftDevice) CreateMaskTexture(label string, width, height int, data []float32) (Resource, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, fmt.Errorf("%s: bad texture size %dx%d", label, width, height)
	}
	return d.track(&softResource{label: label, kind: softMask, w: width, h: height, data: append([]float32(nil), data...)}), nil
}

// CreateRenderTarget implements Device.
func (d *SoftDevice) CreateRenderTarget(label string, width, height int) (Resource, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s: bad target size %dx%d", label, width, height)
	}
	return d.track(&softResource{label: label, kind: softTarget, w: width, h: height, fb: render.NewFramebuffer(width, height)}), nil
}

// Submit implements Device.
func (d *SoftDevice) Submit(passes []Pass) error {
	for _, p := range passes {
		if err := d.run(p); err != nil {
			return fmt.Errorf("pass %s: %w", p.Name, err)
		}
	}
	return nil
}

func (d *SoftDevice) run(p Pass) error {
	if _, err := d.lookup(p.Shader, softShader); err != nil {
		return err
	}
	target, err := d.lookup(p.Target, softTarget)
	if err != nil {
		return err
	}
	uniforms, err := d.lookup(p.Uniforms, softUniforms)
	if err != nil {
		return err
	}
	fb := target.fb
	if p.Clear != nil {
		fb.Clear(*p.Clear)
	}

	switch p.Name {
	case PassModel:
		if p.VertexCount == 0 {
			return nil
		}
		verts, err := d.lookup(p.Vertices, softVertices)
		if err != nil {
			return err
		}
		if p.VertexCount*VertexStride > len(verts.data) {
			return fmt.Errorf("draw of %d vertices overruns %s", p.VertexCount, verts.label)
		}
		for i := 0; i+3 <= p.VertexCount; i += 3 {
			render.RasterizeTriangle(fb, [3]render.ScreenVertex{
				UnpackVertex(verts.data, i),
				UnpackVertex(verts.data, i+1),
				UnpackVertex(verts.data, i+2),
			})
		}
	case PassOverlay:
		mask, err := d.lookup(p.Mask, softMask)
		if err != nil {
			return err
		}
		if mask.w != fb.Width || mask.h != fb.Height {
			return fmt.Errorf("mask %dx%d does not match target %dx%d", mask.w, mask.h, fb.Width, fb.Height)
		}
		u := uniforms.data
		gray := render.RGB(quantize(u[4]), quantize(u[5]), quantize(u[6]))
		render.BlendMask(fb, mask.data, gray)
	default:
		return fmt.Errorf("unknown pass %q", p.Name)
	}
	return nil
}

// ReadPixels implements Device.
func (d *SoftDevice) ReadPixels(target Resource, dst *render.Framebuffer) error {
	t, err := d.lookup(target, softTarget)
	if err != nil {
		return err
	}
	dst.Resize(t.w, t.h)
	copy(dst.Pixels, t.fb.Pixels)
	return nil
}

// Destroy implements Device. Destroying twice is a no-op.
func (d *SoftDevice) Destroy(r Resource) {
	if sr, ok := r.(*softResource); ok {
		delete(d.live, sr)
	}
}
