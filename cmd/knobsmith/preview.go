package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/knobsmith/internal/config"
	"github.com/taigrr/knobsmith/internal/logger"
	"github.com/taigrr/knobsmith/pkg/render"
)

func frameInterval(fps int) time.Duration {
	return time.Second / time.Duration(max(fps, 1))
}

// handleKey maps a key press to its action.
func handleKey(ev uv.KeyPressEvent) action {
	for _, b := range keyBindings {
		if ev.MatchString(b.keys...) {
			return b.act
		}
	}
	return actNone
}

func runPreview(cfg *config.Config, path string, flags *config.Flags) error {
	log := logger.Named("preview")
	st, err := newPreviewState(cfg, log)
	if err != nil {
		return err
	}
	defer func() { closeBackend(st.backend) }()

	var watcher *configWatcher
	if path != "" {
		watcher, err = newConfigWatcher(path, log)
		if err != nil {
			log.Warn("config hot reload disabled", zap.String("path", path), zap.Error(err))
		}
	}
	defer watcher.Close()

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Terminal events are forwarded to the frame loop, which alone mutates
	// preview state.
	events := make(chan any, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	tr := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := tr.FramebufferSize()
	fb := render.NewFramebuffer(fbWidth, fbHeight)
	hi := render.NewFramebuffer(0, 0)
	overlay := newHUD()

	ticker := time.NewTicker(frameInterval(st.cfg.Render.FPS))
	defer ticker.Stop()

	log.Info("preview started",
		zap.String("backend", st.backend.Name()),
		zap.Int("width", fbWidth),
		zap.Int("height", fbHeight),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			ss := st.cfg.Render.Supersample
			v := view{width: fb.Width * ss, height: fb.Height * ss, supersample: ss}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				tr = render.NewTerminalRenderer(term, width, height)
				fbWidth, fbHeight = tr.FramebufferSize()
				fb.Resize(fbWidth, fbHeight)
				st.dirty = true
			case uv.KeyPressEvent:
				if st.do(handleKey(ev)) {
					return nil
				}
			case uv.MouseClickEvent:
				st.press(ev.X, ev.Y, v)
			case uv.MouseReleaseEvent:
				st.release()
			case uv.MouseMotionEvent:
				st.motion(ev.X, ev.Y, v)
			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					st.zoom(1 / zoomStep)
				case uv.MouseWheelDown:
					st.zoom(zoomStep)
				}
			}

		case <-watcher.Changed():
			next, err := config.LoadFile(path, flags)
			if err == nil {
				err = st.applyConfig(next)
			}
			if err != nil {
				log.Warn("config reload failed", zap.Error(err))
				overlay.Flash("config error, keeping previous settings")
				continue
			}
			ticker.Reset(frameInterval(next.Render.FPS))
			log.Info("config reloaded", zap.String("path", path))
			overlay.Flash("config reloaded")

		case <-ticker.C:
			if st.notice != "" {
				overlay.Flash(st.notice)
				st.notice = ""
				st.dirty = true
			}
			if !st.tick() {
				continue
			}
			if err := st.draw(fb, hi, st.cfg.Render.Supersample); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			tr.Render(fb)
			if err := tr.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
			overlay.Tick()
			overlay.Render(os.Stdout, width, height, st, st.stats())
		}
	}
}
