package render

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/pkg/knob"
	"github.com/taigrr/knobsmith/pkg/models"
	"github.com/taigrr/knobsmith/pkg/paint"
	"github.com/taigrr/knobsmith/pkg/shading"
)

// ErrNoBackend is returned when a backend name is not registered.
var ErrNoBackend = errors.New("no such render backend")

// Scene is everything one frame depends on. Backends treat it as read-only
// for the duration of RenderFrame.
type Scene struct {
	Knob        knob.KnobParameters
	Material    shading.Material
	Lights      []shading.Light
	Environment shading.Environment
	Mode        shading.Mode
	Shadow      shading.ShadowSettings
	LOD         shading.LODSettings

	// Paint is optional.
	Paint         paint.Sampler
	BrushDarkness float64

	Camera Camera
	// Rotation spins the knob about its axis, in degrees.
	Rotation   float64
	Background color.RGBA

	// Collar is drawn when non-nil and CollarEnabled is set.
	Collar        *models.Mesh
	CollarEnabled bool

	// Gizmos draws the light markers, highlighting SelectedLight.
	Gizmos        bool
	SelectedLight int
}

// DefaultScene frames the default knob under the default lights.
func DefaultScene() *Scene {
	p := knob.DefaultParameters()
	cam := NewCamera(p.Radius)
	cam.Target.Z = p.Height / 2
	return &Scene{
		Knob:          p,
		Material:      shading.DefaultMaterial(),
		Lights:        shading.DefaultLights(),
		Environment:   shading.DefaultEnvironment(),
		Shadow:        shading.DefaultShadow(),
		LOD:           shading.DefaultLOD(),
		BrushDarkness: 1,
		Camera:        cam,
		Background:    RGB(30, 30, 40),
	}
}

// Clone copies the scene so the copy's lights can be edited independently.
// The paint sampler and collar mesh are shared.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Lights = append([]shading.Light(nil), s.Lights...)
	return &c
}

// Backend renders scenes into framebuffers.
type Backend interface {
	Name() string
	RenderFrame(scene *Scene, target *Framebuffer) error
}

// BackendOptions are the settings every registered backend honours.
type BackendOptions struct {
	Log *zap.Logger
	// NormalMapSize is the baked micro-normal map resolution; zero picks
	// the default.
	NormalMapSize int
}

// BackendFactory constructs a backend.
type BackendFactory func(opts BackendOptions) (Backend, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendFactory{
		PainterName: func(opts BackendOptions) (Backend, error) {
			return NewPainter(
				WithPainterLogger(opts.Log),
				WithNormalMapSize(opts.NormalMapSize),
			), nil
		},
	}
)

// RegisterBackend makes a backend available to NewBackend. Registering a
// name twice replaces the earlier factory.
func RegisterBackend(name string, f BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = f
}

// Backends lists the registered backend names.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewBackend constructs the named backend.
func NewBackend(name string, opts BackendOptions) (Backend, error) {
	backendsMu.RLock()
	f, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoBackend, name)
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return f(opts)
}
