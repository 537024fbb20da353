package hal

import "sync"

type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	f := &hostFramebuffer{}
	f.Resize(width, height)
	return f
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.buf }
func (f *hostFramebuffer) Present() error      { return nil }

// Resize reallocates the buffer; contents are cleared to black.
func (f *hostFramebuffer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width = width
	f.height = height
	f.stride = width * 2
	f.buf = make([]byte, f.stride*height)
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// snapshotRGB565 copies the current frame into dst and returns its size.
func (f *hostFramebuffer) snapshotRGB565(dst []byte) (w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
	return f.width, f.height
}
