package config

import (
	"fmt"

	"github.com/taigrr/knobsmith/pkg/models"
	"github.com/taigrr/knobsmith/pkg/paint"
	"github.com/taigrr/knobsmith/pkg/render"
)

// Scene builds the render scene the config describes. The weathering mask
// is always allocated so the preview can paint on it; it is seeded from
// Paint.MaskImage when set. The collar mesh is loaded when configured.
func (c *Config) Scene() (*render.Scene, *paint.Mask, error) {
	s := render.DefaultScene()
	s.Knob = c.Knob
	s.Material = c.Material
	s.Lights = append(s.Lights[:0:0], c.Lights...)
	s.Environment = c.Environment
	s.Mode = c.Render.Mode
	s.Shadow = c.Shadow
	s.LOD = c.LOD
	s.Camera = c.Camera
	s.Rotation = c.Render.Rotation
	s.Background = render.RGB(c.Render.Background[0], c.Render.Background[1], c.Render.Background[2])
	s.BrushDarkness = c.Paint.BrushDarkness
	s.Gizmos = c.Render.Gizmos
	s.SelectedLight = c.Shadow.SelectedLight

	mask := paint.NewMask(c.Paint.MaskSize)
	if c.Paint.MaskImage != "" {
		loaded, err := paint.LoadMask(c.Paint.MaskImage, c.Paint.MaskSize)
		if err != nil {
			return nil, nil, err
		}
		mask = loaded
	}
	s.Paint = mask

	if c.Collar.Path != "" {
		collar, err := models.LoadCollar(c.Collar.Path, models.CollarFit{
			Radius: c.Knob.Radius * c.Collar.Scale,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("collar %s: %w", c.Collar.Path, err)
		}
		s.Collar = collar
		s.CollarEnabled = c.Collar.Enabled
	}
	return s, mask, nil
}
