package quarkgl

import (
	"image/color"
	"math"

	"tinygo.org/x/tinyfont"
)

// glyphCapture is a drivers.Displayer that records which pixels a tinyfont
// draw call touches.
type glyphCapture struct {
	set  map[[2]int16]struct{}
	minX int16
	minY int16
	maxX int16
	maxY int16
}

func newGlyphCapture() *glyphCapture {
	return &glyphCapture{
		set:  make(map[[2]int16]struct{}),
		minX: math.MaxInt16, minY: math.MaxInt16,
		maxX: math.MinInt16, maxY: math.MinInt16,
	}
}

func (c *glyphCapture) Size() (x, y int16) { return math.MaxInt16, math.MaxInt16 }

func (c *glyphCapture) SetPixel(x, y int16, col color.RGBA) {
	if col.A == 0 {
		return
	}
	c.set[[2]int16{x, y}] = struct{}{}
	c.minX = min(c.minX, x)
	c.minY = min(c.minY, y)
	c.maxX = max(c.maxX, x)
	c.maxY = max(c.maxY, y)
}

func (c *glyphCapture) Display() error { return nil }

func (c *glyphCapture) has(x, y int16) bool {
	_, ok := c.set[[2]int16{x, y}]
	return ok
}

// NewTextGeometry extrudes text drawn with font into a solid of the given
// depth. Each lit glyph pixel becomes a cell; cells are scaled so the inked
// height of the text equals size. The origin is the bottom-left corner of the
// inked area and the front face sits at z = depth.
//
// It returns nil when font is nil or the text draws no pixels.
func NewTextGeometry(font tinyfont.Fonter, text string, size, depth Scalar) *Geometry {
	if font == nil || text == "" {
		return nil
	}
	capture := newGlyphCapture()
	// Draw on a baseline well inside the positive range so glyphs with negative
	// offsets stay addressable.
	tinyfont.WriteLine(capture, font, 64, 128, text, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	if len(capture.set) == 0 {
		return nil
	}

	rows := Scalar(capture.maxY - capture.minY + 1)
	cell := size / rows
	g := &Geometry{}
	for py := capture.minY; py <= capture.maxY; py++ {
		for px := capture.minX; px <= capture.maxX; px++ {
			if !capture.has(px, py) {
				continue
			}
			var skip uint8
			if capture.has(px+1, py) {
				skip |= faceRight
			}
			if capture.has(px-1, py) {
				skip |= faceLeft
			}
			if capture.has(px, py-1) {
				skip |= faceTop
			}
			if capture.has(px, py+1) {
				skip |= faceBottom
			}
			// Screen rows grow downwards; world Y grows upwards.
			x0 := Scalar(px-capture.minX) * cell
			y0 := Scalar(capture.maxY-py) * cell
			lo := V3(x0, y0, 0)
			hi := V3(x0+cell, y0+cell, depth)
			if !g.appendCuboid(lo, hi, skip) {
				return g
			}
		}
	}
	return g
}
