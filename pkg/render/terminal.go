package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// halfBlock shows the top pixel as foreground and the bottom as background.
const halfBlock = "▀"

// Draw paints fb into area, two pixel rows per cell row. Pixels outside fb
// are left transparent.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cols := min(area.Dx(), fb.Width)
	for row := range area.Dy() {
		for x := range cols {
			scr.SetCell(area.Min.X+x, area.Min.Y+row, &uv.Cell{
				Content: halfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, 2*row)),
					Bg: cellColor(fb.GetPixel(x, 2*row+1)),
				},
			})
		}
	}
}

// cellColor maps fully transparent pixels to the terminal default.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// TerminalRenderer presents framebuffers on a terminal screen.
type TerminalRenderer struct {
	scr           uv.Screen
	width, height int
}

// NewTerminalRenderer creates a renderer for a width×height cell area.
func NewTerminalRenderer(scr uv.Screen, width, height int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, width: max(width, 0), height: max(height, 0)}
}

// FramebufferSize is the pixel size that fills the cell area.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render draws fb over the whole cell area.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, uv.Rect(0, 0, t.width, t.height))
}

// Flush pushes pending cells to the terminal when the screen buffers output.
func (t *TerminalRenderer) Flush() error {
	if d, ok := t.scr.(interface{ Display() error }); ok {
		return d.Display()
	}
	return nil
}

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGB8 converts an 8-bit triple to an opaque color.
func RGB8(c [3]uint8) color.RGBA {
	return RGB(c[0], c[1], c[2])
}
