package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/internal/config"
	"github.com/taigrr/knobsmith/internal/logger"
	"github.com/taigrr/knobsmith/pkg/models"
	"github.com/taigrr/knobsmith/pkg/render"
)

// framePath names turntable frame i.
func framePath(dir, prefix string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%03d.png", prefix, i))
}

// pngSink writes each frame into dir.
func pngSink(dir, prefix string) render.FrameSink {
	return func(i int, img *image.RGBA) error {
		return render.SavePNG(framePath(dir, prefix, i), img)
	}
}

func runExport(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scene, _, err := cfg.Scene()
	if err != nil {
		return err
	}
	backend, err := newBackend(cfg, logger.Named("render"))
	if err != nil {
		return err
	}
	defer closeBackend(backend)

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	start := time.Now()
	err = render.ExportTurntable(ctx, backend, scene, cfg.Export.ExportOptions, pngSink(cfg.Export.Dir, cfg.Export.Prefix))
	if err != nil {
		return fmt.Errorf("export turntable: %w", err)
	}
	logger.Info("turntable exported",
		zap.String("dir", cfg.Export.Dir),
		zap.Int("frames", cfg.Export.Frames),
		zap.String("backend", backend.Name()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func runGLB(cfg *config.Config) error {
	scene, _, err := cfg.Scene()
	if err != nil {
		return err
	}
	pl := render.NewPipeline(logger.Named("pipeline"), cfg.Render.NormalMapSize)
	opts := models.ExportOptions{Generator: "knobsmith"}

	var mesh *models.Mesh
	if cfg.Export.BakeColors {
		mesh, opts.Colors = pl.VertexColors(scene, cfg.Render.Height)
	} else {
		mesh = pl.Mesh(scene)
	}
	if err := models.SaveGLB(cfg.Export.GLB, mesh, opts); err != nil {
		return fmt.Errorf("export mesh: %w", err)
	}
	logger.Info("mesh exported",
		zap.String("path", cfg.Export.GLB),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Bool("colors", opts.Colors != nil),
	)
	return nil
}

// closeBackend releases backends that hold device resources.
func closeBackend(b render.Backend) {
	if c, ok := b.(interface{ Close() }); ok {
		c.Close()
	}
}
