package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"pianoscape/hal"
	"pianoscape/studio/fonts"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// maxStackLines bounds the stack printed on the diagnostic screen.
const maxStackLines = 24

// recovered logs a frame panic and paints it over the framebuffer. The full
// stack is logged for the first panic only.
func (a *App) recovered(v any) {
	a.panics++
	stack := debug.Stack()
	if a.log != nil {
		a.log.WriteLineString(fmt.Sprintf("app: panic in frame (%d): %v", a.panics, v))
		if a.panics == 1 {
			for _, line := range strings.Split(string(stack), "\n") {
				if line != "" {
					a.log.WriteLineString(line)
				}
			}
		}
	}

	fb := a.dir.Framebuffer()
	if fb == nil {
		return
	}
	lines := []string{
		"pianoscape: frame panic",
		fmt.Sprintf("count: %d", a.panics),
		fmt.Sprintf("panic: %v", v),
		"stack:",
	}
	for i, line := range strings.Split(string(stack), "\n") {
		if i >= maxStackLines {
			break
		}
		if line != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	paintDiagnostic(fb, lines)
	_ = fb.Present()
}

// paintDiagnostic clears fb to white and draws lines in black, wrapped to
// the screen width.
func paintDiagnostic(fb hal.Framebuffer, lines []string) {
	font := &proggy.TinySZ8pt7b
	fontHeight, fontOffset, err := fonts.TerminalMetrics(font)
	if err != nil {
		return
	}
	fontWidth := fonts.Advance(font, '0')
	if fontWidth <= 0 || fontHeight <= 0 {
		return
	}

	fb.ClearRGB(255, 255, 255)
	d := fbDisplay{fb: fb}
	fg := color.RGBA{A: 255}

	cols := max(int16(fb.Width())/fontWidth, 1)
	maxH := int16(fb.Height())
	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+fontHeight > maxH {
				return
			}
			chunk, rest := takeRunes(line, cols)
			x := int16(0)
			for _, r := range chunk {
				tinyfont.DrawChar(d, font, x, y+fontOffset, r, fg)
				x += fontWidth
			}
			y += fontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
}

// fbDisplay lets tinyfont draw straight into an RGB565 framebuffer.
type fbDisplay struct {
	fb hal.Framebuffer
}

func (d fbDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	pixel := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d fbDisplay) Display() error { return nil }

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	i := 0
	for count := int16(0); i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
