package knob

import (
	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/pkg/models"
)

// Builder caches the most recently built mesh. It is not safe for concurrent
// use; each renderer owns its own Builder.
type Builder struct {
	log *zap.Logger

	key      MeshKey
	mesh     *models.Mesh
	rebuilds int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for rebuild diagnostics.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBuilder creates a builder with an empty cache.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the mesh for p, reusing the cached mesh when the key matches.
// The returned mesh is shared and must not be modified.
func (b *Builder) Build(p KnobParameters) *models.Mesh {
	key := MeshKeyOf(p)
	if b.mesh != nil && key == b.key {
		return b.mesh
	}

	mesh := buildMesh(key.Parameters())
	b.key, b.mesh = key, mesh
	b.rebuilds++
	b.log.Debug("rebuilt knob mesh",
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("rebuilds", b.rebuilds),
	)
	return mesh
}

// Rebuilds returns how many times Build missed the cache.
func (b *Builder) Rebuilds() int {
	return b.rebuilds
}

// Invalidate drops the cached mesh.
func (b *Builder) Invalidate() {
	b.mesh = nil
	b.key = MeshKey{}
}
