package quarkgl

// Target is a minimal pixel target for software rendering.
//
// Implementations should clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// PixelReader is implemented by targets that can read pixels back. The
// renderer blends transparent materials only over such targets; on other
// targets transparent pixels are written when their opacity is at least half.
type PixelReader interface {
	Pixel(x, y int) Color
}

// RenderMode selects the rasterization mode.
type RenderMode uint8

const (
	RenderWireframe RenderMode = iota
	RenderSolidFlat
	RenderSolidVertexColor
)
