package gpu

import (
	"image/color"

	"github.com/taigrr/knobsmith/pkg/render"
)

// Pass names.
const (
	PassModel   = "model"
	PassOverlay = "overlay"
)

// Resource is a device-owned object: a shader module, buffer, texture or
// render target.
type Resource interface {
	Label() string
}

// Device is the seam to a graphics API. Implementations own every resource
// they hand out until Destroy is called on it.
type Device interface {
	CreateShaderModule(label string, spirv []uint32) (Resource, error)
	// CreateVertexBuffer uploads interleaved vertices of VertexStride floats.
	CreateVertexBuffer(label string, data []float32) (Resource, error)
	CreateUniformBuffer(label string, data []float32) (Resource, error)
	// CreateMaskTexture uploads a single-channel width×height texture.
	CreateMaskTexture(label string, width, height int, data []float32) (Resource, error)
	CreateRenderTarget(label string, width, height int) (Resource, error)

	// Submit executes the passes in order.
	Submit(passes []Pass) error
	// ReadPixels copies a render target into dst.
	ReadPixels(target Resource, dst *render.Framebuffer) error
	Destroy(r Resource)
}

// Pass is one draw into a render target.
type Pass struct {
	Name     string
	Shader   Resource
	Target   Resource
	Uniforms Resource
	// Vertices is nil for the full-screen overlay pass.
	Vertices    Resource
	VertexCount int
	// Mask is the texture sampled by the overlay pass.
	Mask Resource
	// Clear fills the target before drawing when non-nil.
	Clear *color.RGBA
}

// resourceSet collects per-frame resources for release.
type resourceSet struct {
	dev      Device
	acquired []Resource
}

func (s *resourceSet) add(r Resource) Resource {
	s.acquired = append(s.acquired, r)
	return r
}

// release destroys the resources in reverse acquisition order. Calling it
// again is a no-op.
func (s *resourceSet) release() {
	for i := len(s.acquired) - 1; i >= 0; i-- {
		if r := s.acquired[i]; r != nil {
			s.dev.Destroy(r)
		}
	}
	s.acquired = nil
}
