// Package config handles knobsmith configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/taigrr/knobsmith/internal/logger"
	"github.com/taigrr/knobsmith/pkg/knob"
	"github.com/taigrr/knobsmith/pkg/render"
	"github.com/taigrr/knobsmith/pkg/shading"
)

// Config holds all application and scene settings.
type Config struct {
	Logging     LoggingConfig          `yaml:"logging"`
	Render      RenderConfig           `yaml:"render"`
	Camera      render.Camera          `yaml:"camera"`
	Knob        knob.KnobParameters    `yaml:"knob"`
	Material    shading.Material       `yaml:"material"`
	Lights      LightList              `yaml:"lights"`
	Environment shading.Environment    `yaml:"environment"`
	Shadow      shading.ShadowSettings `yaml:"shadow"`
	LOD         shading.LODSettings    `yaml:"lod"`
	Paint       PaintConfig            `yaml:"paint"`
	Export      ExportConfig           `yaml:"export"`
	Collar      CollarConfig           `yaml:"collar"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string            `yaml:"level"`
	File  logger.FileConfig `yaml:"file"`
}

// RenderConfig holds preview and backend settings.
type RenderConfig struct {
	Backend string `yaml:"backend"`
	// Width and Height size offscreen renders; the terminal preview uses
	// the window size instead.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
	// Supersample renders the preview at this multiple of the terminal
	// resolution before downscaling.
	Supersample   int          `yaml:"supersample"`
	Background    [3]uint8     `yaml:"background"`
	Mode          shading.Mode `yaml:"mode"`
	Rotation      float64      `yaml:"rotation"`
	NormalMapSize int          `yaml:"normal_map_size"`
	Gizmos        bool         `yaml:"gizmos"`
}

// PaintConfig holds weathering mask settings.
type PaintConfig struct {
	MaskSize int `yaml:"mask_size"`
	// MaskImage optionally seeds the mask from an image, one channel per
	// colour component.
	MaskImage     string  `yaml:"mask_image"`
	BrushDarkness float64 `yaml:"brush_darkness"`
	BrushRadius   float64 `yaml:"brush_radius"` // Mask UV units
	BrushStrength float64 `yaml:"brush_strength"`
}

// ExportConfig holds turntable and mesh export settings.
type ExportConfig struct {
	render.ExportOptions `yaml:",inline"`

	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	GLB    string `yaml:"glb"`
	// BakeColors writes the shaded vertex colours into exported meshes.
	BakeColors bool `yaml:"bake_colors"`
}

// CollarConfig holds the optional collar mesh.
type CollarConfig struct {
	Path    string  `yaml:"path"`
	Enabled bool    `yaml:"enabled"`
	Scale   float64 `yaml:"scale"` // Outer radius as a multiple of the knob radius
}

// Default returns a Config with sensible default values.
func Default() *Config {
	s := render.DefaultScene()
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Render: RenderConfig{
			Backend:       render.PainterName,
			Width:         512,
			Height:        512,
			FPS:           30,
			Supersample:   1,
			Background:    [3]uint8{s.Background.R, s.Background.G, s.Background.B},
			Mode:          s.Mode,
			NormalMapSize: knob.DefaultNormalMapSize,
		},
		Camera:      s.Camera,
		Knob:        s.Knob,
		Material:    s.Material,
		Lights:      s.Lights,
		Environment: s.Environment,
		Shadow:      s.Shadow,
		LOD:         s.LOD,
		Paint: PaintConfig{
			MaskSize:      256,
			BrushDarkness: s.BrushDarkness,
			BrushRadius:   0.03,
			BrushStrength: 0.5,
		},
		Export: ExportConfig{
			ExportOptions: render.DefaultExportOptions(),
			Dir:           "frames",
			Prefix:        "knob",
			GLB:           "knob.glb",
			BakeColors:    true,
		},
		Collar: CollarConfig{
			Scale: 1.3,
		},
	}
}

// Validate rejects settings the application cannot run with. Scene values
// are clamped at use and are not checked here.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if !slices.Contains(render.Backends(), c.Render.Backend) {
		errs = append(errs, fmt.Errorf("render: unknown backend %q (have %v)", c.Render.Backend, render.Backends()))
	}
	positive := []struct {
		name string
		v    int
	}{
		{"render.width", c.Render.Width},
		{"render.height", c.Render.Height},
		{"render.fps", c.Render.FPS},
		{"render.supersample", c.Render.Supersample},
		{"render.normal_map_size", c.Render.NormalMapSize},
		{"paint.mask_size", c.Paint.MaskSize},
		{"export.frames", c.Export.Frames},
		{"export.width", c.Export.Width},
		{"export.height", c.Export.Height},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.v))
		}
	}
	if c.Collar.Enabled && c.Collar.Path == "" {
		errs = append(errs, errors.New("collar: enabled without a path"))
	}
	if c.Collar.Scale <= 0 {
		errs = append(errs, fmt.Errorf("collar.scale must be positive, got %g", c.Collar.Scale))
	}
	return errors.Join(errs...)
}
