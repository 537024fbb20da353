package fonts

import (
	"errors"
	"fmt"

	"tinygo.org/x/tinyfont"
)

// LineMetrics scans the glyph extents of font and returns the cell height
// and the baseline offset from the top of the cell.
func LineMetrics(font *tinyfont.Font) (height, offset int16, err error) {
	if font == nil {
		return 0, 0, errors.New("nil font")
	}
	minY, maxY := 0, 0
	first := true
	for _, g := range font.Glyphs {
		if g.Height == 0 {
			continue
		}
		top := int(g.YOffset)
		bottom := top + int(g.Height)
		if first {
			minY, maxY = top, bottom
			first = false
			continue
		}
		minY = min(minY, top)
		maxY = max(maxY, bottom)
	}
	if first {
		return 0, 0, errors.New("no glyphs")
	}

	h := maxY - minY
	off := -minY
	if h <= 0 || off < 0 {
		return 0, 0, fmt.Errorf("invalid metrics: height=%d offset=%d", h, off)
	}
	if h > 127 || off > 127 {
		return 0, 0, fmt.Errorf("metrics too large: height=%d offset=%d", h, off)
	}
	return int16(h), int16(off), nil
}

// TerminalMetrics returns the line height and baseline offset for console
// rendering: YAdvance as the line height, with the glyph box centred in it.
func TerminalMetrics(font *tinyfont.Font) (height, offset int16, err error) {
	boxH, boxOff, err := LineMetrics(font)
	if err != nil {
		return 0, 0, err
	}
	h := int16(font.YAdvance)
	if h <= 0 {
		h = boxH
	}
	minY := -boxOff
	maxY := boxH - boxOff
	off := (h - maxY - minY) / 2
	off = max(0, min(off, h))
	return h, off, nil
}

// Advance returns the x advance of r, or 0 if the font has no such glyph.
func Advance(font tinyfont.Fonter, r rune) int16 {
	if font == nil {
		return 0
	}
	_, w := tinyfont.LineWidth(font, string(r))
	return int16(w)
}
