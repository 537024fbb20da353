package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// HostConfig sizes the host surface.
type HostConfig struct {
	// Width and Height are the framebuffer size in pixels.
	Width  int
	Height int
	// Scale is the window pixel scale (window backend only).
	Scale int
	// Title is the window title.
	Title string
	// SampleRate is the audio output rate in Hz.
	SampleRate int
	// Log receives log lines; stderr when nil.
	Log io.Writer
}

const (
	DefaultWidth      = 480
	DefaultHeight     = 320
	DefaultSampleRate = 44100
)

func (c HostConfig) withDefaults() HostConfig {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.Title == "" {
		c.Title = "pianoscape"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Log == nil {
		c.Log = os.Stderr
	}
	return c
}

type hostHAL struct {
	cfg    HostConfig
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	aud    Audio
}

// New returns a host HAL implementation. Audio is live only with the window
// backend (cgo); otherwise voices are silent.
func New(cfg HostConfig) HAL {
	return newHost(cfg, true)
}

func newHost(cfg HostConfig, liveAudio bool) *hostHAL {
	cfg = cfg.withDefaults()
	h := &hostHAL{
		cfg:    cfg,
		logger: &hostLogger{w: cfg.Log},
		fb:     newHostFramebuffer(cfg.Width, cfg.Height),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
	}
	if liveAudio {
		h.aud = newHostAudio(cfg.SampleRate)
	} else {
		h.aud = silentAudio{rate: cfg.SampleRate}
	}
	return h
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Audio() Audio     { return h.aud }

// resize updates the framebuffer and tells app, if it cares.
func (h *hostHAL) resize(app App, w, hgt int) {
	if w <= 0 || hgt <= 0 || (w == h.fb.Width() && hgt == h.fb.Height()) {
		return
	}
	h.fb.Resize(w, hgt)
	if r, ok := app.(Resizer); ok {
		r.Resize(w, hgt)
	}
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// NewLogger returns a Logger writing lines to w, for tools that run without
// a HAL.
func NewLogger(w io.Writer) Logger {
	return &hostLogger{w: w}
}

type silentAudio struct {
	rate int
}

func (a silentAudio) SampleRate() int                 { return a.rate }
func (a silentAudio) NewVoice(_ []byte) (Voice, error) { return SilentVoice{}, nil }
