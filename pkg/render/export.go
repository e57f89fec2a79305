package render

import (
	"context"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ExportOptions describes a turntable sequence.
type ExportOptions struct {
	Frames int `yaml:"frames"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Supersample renders each frame at this multiple of the output size
	// and downscales it. Values below 2 disable it.
	Supersample int `yaml:"supersample"`
	// Sweep is the total yaw covered by the sequence in degrees; 0 means a
	// full turn.
	Sweep float64 `yaml:"sweep"`
}

// DefaultExportOptions is a 36-frame full turn at 256×256.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Frames: 36, Width: 256, Height: 256, Supersample: 2}
}

// FrameSink receives each finished frame. The image is owned by the sink.
type FrameSink func(index int, img *image.RGBA) error

var errBadExport = errors.New("invalid export options")

// ExportTurntable renders opts.Frames frames stepping the camera yaw around
// the knob and hands each to sink. The scene's camera is restored on every
// return path. ctx is checked between frames; on cancellation ctx.Err() is
// returned and no further frames are produced.
func ExportTurntable(ctx context.Context, b Backend, s *Scene, opts ExportOptions, sink FrameSink) (err error) {
	if opts.Frames <= 0 || opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("%w: %d frames at %dx%d", errBadExport, opts.Frames, opts.Width, opts.Height)
	}
	ss := max(opts.Supersample, 1)
	sweep := opts.Sweep
	if sweep == 0 {
		sweep = 360
	}

	saved := s.Camera
	defer func() { s.Camera = saved }()

	fb := NewFramebuffer(opts.Width*ss, opts.Height*ss)
	step := sweep / float64(opts.Frames)
	for i := range opts.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Camera = saved
		s.Camera.Yaw = saved.Yaw + step*float64(i)

		if err := b.RenderFrame(s, fb); err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
		img := fb.ToImage()
		if ss > 1 {
			img = Downscale(img, opts.Width, opts.Height)
		}
		if err := sink(i, img); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}

// Downscale resamples src to w×h with a Catmull-Rom filter.
func Downscale(src *image.RGBA, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
