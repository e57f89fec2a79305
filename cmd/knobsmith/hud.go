package main

import (
	"fmt"
	"io"
	"time"

	"github.com/taigrr/knobsmith/pkg/render"
)

// hud renders a status overlay with ANSI escapes over the preview.
type hud struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	message   string
	msgUntil  time.Time
}

func newHUD() *hud {
	return &hud{fpsTime: time.Now()}
}

// Tick updates the FPS counter; call once per rendered frame.
func (h *hud) Tick() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Flash shows msg on the bottom row for a few seconds, even with the HUD
// hidden.
func (h *hud) Flash(msg string) {
	h.message = msg
	h.msgUntil = time.Now().Add(3 * time.Second)
}

// Render draws the HUD rows. The rows are cleared first so toggling the HUD
// off leaves no residue.
func (h *hud) Render(w io.Writer, width, height int, st *previewState, stats render.FrameStats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	fmt.Fprint(w, moveTo(1, 1)+clearLine)
	fmt.Fprint(w, moveTo(height, 1)+clearLine)

	if h.message != "" && time.Now().Before(h.msgUntil) {
		fmt.Fprintf(w, "%s%s%s%s %s %s", moveTo(height, 1), bgBlack, bold, fgYellow, h.message, reset)
		return
	}
	if st.paint {
		erase := ""
		if st.stroke.Erase {
			erase = " (erase)"
		}
		msg := fmt.Sprintf(" PAINT %s%s - drag on the cap, P to leave ", st.stroke.Channel, erase)
		fmt.Fprintf(w, "%s%s%s%s%s%s", moveTo(height, max((width-len(msg))/2, 1)), bgBlack, bold, fgYellow, msg, reset)
		return
	}
	if !st.showHUD {
		return
	}

	fmt.Fprintf(w, "%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)
	title := fmt.Sprintf("knobsmith · %s", st.backend.Name())
	fmt.Fprintf(w, "%s%s%s%s %s %s", moveTo(1, max((width-len(title)-2)/2, 1)), bold, bgBlack, fgWhite, title, reset)
	tris := fmt.Sprintf(" %d/%d tris ", stats.Drawn, stats.Triangles)
	fmt.Fprintf(w, "%s%s%s%s%s%s", moveTo(1, max(width-len(tris), 1)), bgBlack, fgCyan, bold, tris, reset)

	s := st.scene
	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modes := fmt.Sprintf("%s%s %s Shadows  %s Gizmos  %s Collar  mode %s ",
		bgBlack, fgWhite, check(s.Shadow.Enabled), check(s.Gizmos), check(s.CollarEnabled), s.Mode)
	fmt.Fprint(w, moveTo(height, 1)+modes+reset)

	light := fmt.Sprintf(" light %d/%d ", s.SelectedLight+1, len(s.Lights))
	fmt.Fprintf(w, "%s%s%s%s%s", moveTo(height, max(width-len(light), 1)), bgBlack, dim, fgYellow, light+reset)
}
