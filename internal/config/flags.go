package config

import "flag"

// Flags holds command-line overrides. Zero values leave the file and
// default settings alone.
type Flags struct {
	Config  string
	Debug   bool
	LogFile string
	Backend string
	Width   int
	Height  int
	FPS     int
	Frames  int
	Out     string
	Collar  string
	Mask    string
}

// Register defines the flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log", "", "Write logs to this file")
	fs.StringVar(&f.Backend, "backend", "", "Render backend (cpu, gpu)")
	fs.IntVar(&f.Width, "width", 0, "Output width in pixels")
	fs.IntVar(&f.Height, "height", 0, "Output height in pixels")
	fs.IntVar(&f.FPS, "fps", 0, "Preview frame rate")
	fs.IntVar(&f.Frames, "frames", 0, "Turntable frame count")
	fs.StringVar(&f.Out, "o", "", "Output directory (export) or file (glb)")
	fs.StringVar(&f.Collar, "collar", "", "Collar GLB to draw under the knob")
	fs.StringVar(&f.Mask, "mask", "", "Weathering mask image")
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.File.Path = f.LogFile
	}
	if f.Backend != "" {
		cfg.Render.Backend = f.Backend
	}
	if f.Width > 0 {
		cfg.Render.Width = f.Width
		cfg.Export.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
		cfg.Export.Height = f.Height
	}
	if f.FPS > 0 {
		cfg.Render.FPS = f.FPS
	}
	if f.Frames > 0 {
		cfg.Export.Frames = f.Frames
	}
	if f.Out != "" {
		cfg.Export.Dir = f.Out
		cfg.Export.GLB = f.Out
	}
	if f.Collar != "" {
		cfg.Collar.Path = f.Collar
		cfg.Collar.Enabled = true
	}
	if f.Mask != "" {
		cfg.Paint.MaskImage = f.Mask
	}
}
