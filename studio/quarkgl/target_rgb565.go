package quarkgl

// RGB565Target renders into a little-endian RGB565 buffer laid out by the
// caller (Stride is bytes per row).
type RGB565Target struct {
	Buf    []byte
	Stride int
	W      int
	H      int
}

func (t *RGB565Target) Size() (w, h int) { return t.W, t.H }

func (t *RGB565Target) valid() bool {
	return t != nil && t.Buf != nil && t.Stride > 0 && t.W > 0 && t.H > 0
}

func (t *RGB565Target) Clear(c Color) {
	if !t.valid() {
		return
	}
	p := RGB565From888(c.R, c.G, c.B)
	lo := byte(p)
	hi := byte(p >> 8)
	for y := 0; y < t.H; y++ {
		row := y * t.Stride
		for x := 0; x < t.W; x++ {
			off := row + x*2
			if off < 0 || off+1 >= len(t.Buf) {
				continue
			}
			t.Buf[off] = lo
			t.Buf[off+1] = hi
		}
	}
}

func (t *RGB565Target) offset(x, y int) (int, bool) {
	if !t.valid() || x < 0 || y < 0 || x >= t.W || y >= t.H {
		return 0, false
	}
	off := y*t.Stride + x*2
	if off < 0 || off+1 >= len(t.Buf) {
		return 0, false
	}
	return off, true
}

func (t *RGB565Target) SetPixel(x, y int, c Color) {
	off, ok := t.offset(x, y)
	if !ok {
		return
	}
	p := RGB565From888(c.R, c.G, c.B)
	t.Buf[off] = byte(p)
	t.Buf[off+1] = byte(p >> 8)
}

// Pixel reads back a pixel, expanding it to 8-bit channels.
func (t *RGB565Target) Pixel(x, y int) Color {
	off, ok := t.offset(x, y)
	if !ok {
		return Color{}
	}
	r, g, b := RGB888From565(uint16(t.Buf[off]) | uint16(t.Buf[off+1])<<8)
	return RGB(r, g, b)
}

func RGB565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func RGB888From565(p uint16) (r, g, b uint8) {
	r5 := uint8((p >> 11) & 0x1F)
	g6 := uint8((p >> 5) & 0x3F)
	b5 := uint8(p & 0x1F)
	return (r5 << 3) | (r5 >> 2), (g6 << 2) | (g6 >> 4), (b5 << 3) | (b5 >> 2)
}
