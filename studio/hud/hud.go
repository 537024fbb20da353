// Package hud draws a small text console over the rendered scene: frame
// rate, particle and triangle counts, and the most recent note events.
package hud

import (
	"errors"
	"fmt"
	"strings"

	"pianoscape/hal"
	"pianoscape/studio/director"
	"pianoscape/studio/fonts"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	defaultCols   = 28
	defaultRows   = 6
	defaultMargin = 4

	// fpsWindow is the tick span, in milliseconds, the frame rate is averaged over.
	fpsWindow = 500
)

// Config sizes the console. Zero values pick the defaults.
type Config struct {
	Font   *tinyfont.Font
	Cols   int
	Rows   int
	Margin int
}

// HUD implements director.Overlay.
type HUD struct {
	cfg    Config
	font   *tinyfont.Font
	height int16
	offset int16

	panel *panel
	notes []string

	fps         float64
	sampleFrame uint64
	sampleTick  uint64
	sampled     bool

	text     string
	repaints int
}

var _ director.Overlay = (*HUD)(nil)

// New measures the font and allocates the panel.
func New(cfg Config) (*HUD, error) {
	if cfg.Font == nil {
		cfg.Font = &proggy.TinySZ8pt7b
	}
	if cfg.Cols <= 0 {
		cfg.Cols = defaultCols
	}
	if cfg.Rows <= 0 {
		cfg.Rows = defaultRows
	}
	if cfg.Margin < 0 {
		cfg.Margin = 0
	} else if cfg.Margin == 0 {
		cfg.Margin = defaultMargin
	}

	height, offset, err := fonts.TerminalMetrics(cfg.Font)
	if err != nil {
		return nil, fmt.Errorf("hud: font metrics: %w", err)
	}
	cell := int(fonts.Advance(cfg.Font, '0'))
	if cell <= 0 {
		return nil, errors.New("hud: font has no digit glyphs")
	}
	return &HUD{
		cfg:    cfg,
		font:   cfg.Font,
		height: height,
		offset: offset,
		panel:  newPanel(cfg.Cols*cell, cfg.Rows*int(height)),
	}, nil
}

// Note records a key event in the log shown below the counters.
func (h *HUD) Note(note string, on bool) {
	state := "up"
	if on {
		state = "down"
	}
	h.notes = append(h.notes, note+" "+state)
	if keep := h.cfg.Rows - 2; len(h.notes) > keep {
		h.notes = h.notes[len(h.notes)-keep:]
	}
}

// FPS is the frame rate measured over the last full window.
func (h *HUD) FPS() float64 { return h.fps }

func (h *HUD) measure(info director.FrameInfo) {
	if !h.sampled || info.Tick < h.sampleTick {
		h.sampleFrame, h.sampleTick, h.sampled = info.Frame, info.Tick, true
		return
	}
	span := info.Tick - h.sampleTick
	if span < fpsWindow {
		return
	}
	h.fps = float64(info.Frame-h.sampleFrame) * 1000 / float64(span)
	h.sampleFrame, h.sampleTick = info.Frame, info.Tick
}

// Lines returns the console content for info.
func (h *HUD) Lines(info director.FrameInfo) []string {
	lines := []string{
		fmt.Sprintf("fps %.1f frame %d", h.fps, info.Frame),
		fmt.Sprintf("circles %d tris %d", info.Particles, info.Render.Triangles),
	}
	for i := len(h.notes) - 1; i >= 0; i-- {
		lines = append(lines, h.notes[i])
	}
	for i, l := range lines {
		if len(l) > h.cfg.Cols {
			lines[i] = l[:h.cfg.Cols]
		}
	}
	return lines
}

func (h *HUD) repaint(lines []string) {
	_ = h.panel.FillRectangle(0, 0, int16(h.panel.w), int16(h.panel.h), black)
	t := tinyterm.NewTerminal(h.panel)
	t.Configure(&tinyterm.Config{
		Font:       h.font,
		FontHeight: h.height,
		FontOffset: h.offset,
	})
	_, _ = t.Write([]byte(strings.Join(lines, "\n")))
	h.repaints++
}

// Draw updates the console when its text changed and composites it onto fb
// at the top-left corner. Background pixels are left transparent.
func (h *HUD) Draw(fb hal.Framebuffer, info director.FrameInfo) {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	h.measure(info)
	lines := h.Lines(info)
	if text := strings.Join(lines, "\n"); text != h.text {
		h.repaint(lines)
		h.text = text
	}
	h.blit(fb)
}

func (h *HUD) blit(fb hal.Framebuffer) {
	buf := fb.Buffer()
	stride := fb.StrideBytes()
	m := h.cfg.Margin
	w := min(h.panel.w, fb.Width()-m)
	rows := min(h.panel.h, fb.Height()-m)
	for y := 0; y < rows; y++ {
		src := h.panel.buf[y*h.panel.w*2:]
		row := (y+m)*stride + m*2
		for x := 0; x < w; x++ {
			lo, hi := src[x*2], src[x*2+1]
			if lo == 0 && hi == 0 {
				continue
			}
			off := row + x*2
			if off+1 >= len(buf) {
				return
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}
