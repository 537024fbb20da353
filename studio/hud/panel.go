package hud

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// panel is an offscreen RGB565 surface the console draws into. It is
// composited onto the frame after the scene has been rendered.
type panel struct {
	w, h int
	buf  []byte
}

func newPanel(w, h int) *panel {
	return &panel{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (p *panel) Size() (x, y int16) { return int16(p.w), int16(p.h) }

func (p *panel) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= p.w || iy < 0 || iy >= p.h {
		return
	}
	px := rgb565(c)
	off := (iy*p.w + ix) * 2
	p.buf[off] = byte(px)
	p.buf[off+1] = byte(px >> 8)
}

func (p *panel) Display() error { return nil }

func (p *panel) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clamp(int(x), 0, p.w)
	y0 := clamp(int(y), 0, p.h)
	x1 := clamp(int(x)+int(width), 0, p.w)
	y1 := clamp(int(y)+int(height), 0, p.h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	px := rgb565(c)
	lo, hi := byte(px), byte(px>>8)
	for py := y0; py < y1; py++ {
		row := py * p.w * 2
		for off := row + x0*2; off < row+x1*2; off += 2 {
			p.buf[off] = lo
			p.buf[off+1] = hi
		}
	}
	return nil
}

// ScrollUp moves the content up by lines rows and clears the bottom.
func (p *panel) ScrollUp(lines int16, bg color.RGBA) error {
	n := int(lines)
	if n <= 0 {
		return nil
	}
	if n >= p.h {
		return p.FillRectangle(0, 0, int16(p.w), int16(p.h), bg)
	}
	stride := p.w * 2
	copy(p.buf, p.buf[n*stride:])
	return p.FillRectangle(0, int16(p.h-n), int16(p.w), int16(n), bg)
}

func (p *panel) SetScroll(line int16) {}

func (p *panel) SetRotation(drivers.Rotation) error { return nil }

var _ drivers.Displayer = (*panel)(nil)

func rgb565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

var black = color.RGBA{A: 0xFF}
