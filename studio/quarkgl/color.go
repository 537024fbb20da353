package quarkgl

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex24 builds an opaque color from a 0xRRGGBB value.
func Hex24(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// ParseHex parses "#rrggbb" (or "rrggbb") into an opaque color.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("quarkgl: bad hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("quarkgl: bad hex color %q: %w", s, err)
	}
	return Hex24(uint32(v)), nil
}

// MustParseHex is ParseHex for package-level constants.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MulScalar(s Scalar) Color {
	t := uint32(Clamp01(s) * 255)
	mul := func(ch uint8) uint8 {
		return uint8((uint32(ch) * t) / 255)
	}
	return Color{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

// Over composites c over dst using c.A as coverage.
func (c Color) Over(dst Color) Color {
	a := uint32(c.A)
	if a == 0xFF {
		return c
	}
	if a == 0 {
		return dst
	}
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a) + 127) / 255)
	}
	return Color{R: mix(c.R, dst.R), G: mix(c.G, dst.G), B: mix(c.B, dst.B), A: 0xFF}
}
