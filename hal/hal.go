package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// ErrQuit is returned by App.Step to end a host runner without error.
var ErrQuit = errors.New("quit")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// ResizableFramebuffer is a framebuffer whose size follows the host surface.
// Buffer must be re-fetched after Resize.
type ResizableFramebuffer interface {
	Framebuffer
	Resize(width, height int)
}

// KeyCode is a minimal key identifier. Printable keys carry KeyUnknown and
// a Rune.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
)

// KeyEvent is a keyboard event.
//
// Repeat marks a press generated while the key was already held (OS key
// repeat, or a terminal that cannot report key-up).
type KeyEvent struct {
	Code   KeyCode
	Press  bool
	Rune   rune
	Repeat bool
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Time provides a base tick stream of 1ms ticks.
type Time interface {
	Ticks() <-chan uint64
}

// Voice plays one decoded sample. Start always plays from the beginning;
// Stop is idempotent. Both return immediately.
type Voice interface {
	Start()
	Stop()
}

// Audio creates voices from 16-bit little-endian stereo PCM at SampleRate.
type Audio interface {
	SampleRate() int
	NewVoice(pcm []byte) (Voice, error)
}

// SilentVoice is a Voice that plays nothing.
type SilentVoice struct{}

func (SilentVoice) Start() {}
func (SilentVoice) Stop()  {}

// HAL provides the only contact point between the app and the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Time() Time
	Audio() Audio
}

// App is what the host runners drive: Step once per frame on the render
// goroutine. An App that also implements Resizer is told about surface size
// changes before the next Step.
type App interface {
	Step() error
}

// Resizer receives framebuffer size changes from the host.
type Resizer interface {
	Resize(width, height int)
}

// StepFunc adapts a plain step function to App.
type StepFunc func() error

func (f StepFunc) Step() error { return f() }
