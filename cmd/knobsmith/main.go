// knobsmith - Procedural Knob Designer
// Build, shade and preview control knobs in your terminal, then export
// turntable frames or the mesh itself.
//
// Commands:
//
//	preview  - Interactive terminal preview (default)
//	export   - Render a turntable PNG sequence
//	glb      - Write the knob mesh as binary glTF
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/internal/config"
	"github.com/taigrr/knobsmith/internal/logger"
	_ "github.com/taigrr/knobsmith/pkg/render/gpu" // Register the gpu backend
)

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "knobsmith - Procedural Knob Designer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: knobsmith [options] [preview|export|glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPreview controls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit camera (paints in paint mode)\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(os.Stderr, "  [ / ]       - Turn the knob\n")
		fmt.Fprintf(os.Stderr, "  Tab         - Select next light\n")
		fmt.Fprintf(os.Stderr, "  G           - Toggle light gizmos\n")
		fmt.Fprintf(os.Stderr, "  H           - Toggle contact shadows\n")
		fmt.Fprintf(os.Stderr, "  M           - Cycle shading mode\n")
		fmt.Fprintf(os.Stderr, "  C           - Toggle collar\n")
		fmt.Fprintf(os.Stderr, "  P           - Toggle paint mode\n")
		fmt.Fprintf(os.Stderr, "  1-4         - Paint rust, wear, gunk, scratch\n")
		fmt.Fprintf(os.Stderr, "  E           - Toggle erase\n")
		fmt.Fprintf(os.Stderr, "  F/Y         - Flip 180 / mirror yaw\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
}

func main() {
	var flags config.Flags
	fs := flag.NewFlagSet("knobsmith", flag.ExitOnError)
	flags.Register(fs)
	fs.Usage = usage(fs)
	fs.Parse(os.Args[1:])

	cmd := "preview"
	if fs.NArg() > 0 {
		cmd = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(2)
	}

	if err := run(cmd, &flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, flags *config.Flags) error {
	cfg, path, err := config.Load(flags)
	if err != nil {
		return err
	}

	// The preview owns the terminal, so it only logs to the file.
	console := cmd != "preview"
	if err := logger.InitWithFileConfig(cfg.Logging.Level, cfg.Logging.File, console); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	if path != "" {
		logger.Debug("config loaded", zap.String("path", path))
	}

	switch cmd {
	case "preview":
		return runPreview(cfg, path, flags)
	case "export":
		return runExport(cfg)
	case "glb":
		return runGLB(cfg)
	}
	return fmt.Errorf("unknown command %q (want preview, export or glb)", cmd)
}
