package hal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

type resizeRecorder struct {
	w, h  int
	calls int
}

func (r *resizeRecorder) Step() error { return nil }

func (r *resizeRecorder) Resize(w, h int) {
	r.w, r.h = w, h
	r.calls++
}

func TestFramebufferResize(t *testing.T) {
	fb := newHostFramebuffer(4, 3)
	if got, want := len(fb.Buffer()), 4*3*2; got != want {
		t.Fatalf("len(Buffer()) = %d, want %d", got, want)
	}
	fb.ClearRGB(0xff, 0xff, 0xff)

	fb.Resize(10, 5)
	if fb.Width() != 10 || fb.Height() != 5 || fb.StrideBytes() != 20 {
		t.Fatalf("size = %dx%d stride %d, want 10x5 stride 20", fb.Width(), fb.Height(), fb.StrideBytes())
	}
	for i, b := range fb.Buffer() {
		if b != 0 {
			t.Fatalf("Buffer()[%d] = %#x after Resize, want 0", i, b)
		}
	}

	fb.Resize(0, -1)
	if fb.Width() != 1 || fb.Height() != 1 {
		t.Fatalf("size = %dx%d, want 1x1", fb.Width(), fb.Height())
	}
}

func TestHostResizeNotifiesApp(t *testing.T) {
	h := newHost(HostConfig{Width: 8, Height: 8, Log: &bytes.Buffer{}}, false)
	app := &resizeRecorder{}

	h.resize(app, 8, 8)
	if app.calls != 0 {
		t.Fatalf("Resize called %d times for an unchanged size", app.calls)
	}
	h.resize(app, 0, 12)
	if app.calls != 0 {
		t.Fatalf("Resize called for a zero width")
	}

	h.resize(app, 16, 12)
	if app.calls != 1 || app.w != 16 || app.h != 12 {
		t.Fatalf("Resize = (%d, %d) x%d, want (16, 12) x1", app.w, app.h, app.calls)
	}
	if h.fb.Width() != 16 || h.fb.Height() != 12 {
		t.Fatalf("framebuffer = %dx%d, want 16x12", h.fb.Width(), h.fb.Height())
	}

	// Apps without Resize are fine.
	h.resize(StepFunc(func() error { return nil }), 20, 20)
	if h.fb.Width() != 20 {
		t.Fatalf("framebuffer width = %d, want 20", h.fb.Width())
	}
}

func TestHostConfigDefaults(t *testing.T) {
	cfg := HostConfig{}.withDefaults()
	if cfg.Width != DefaultWidth || cfg.Height != DefaultHeight {
		t.Fatalf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, DefaultWidth, DefaultHeight)
	}
	if cfg.SampleRate != DefaultSampleRate || cfg.Scale != 2 || cfg.Log == nil {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLatestTick(t *testing.T) {
	ht := newHostTime()
	if got := LatestTick(ht.Ticks(), 7); got != 7 {
		t.Fatalf("LatestTick(empty) = %d, want 7", got)
	}

	ht.stepFixed(5 * time.Millisecond)
	ht.stepFixed(3 * time.Millisecond)
	if got := LatestTick(ht.Ticks(), 0); got != 8 {
		t.Fatalf("LatestTick() = %d, want 8", got)
	}

	ch := make(chan uint64, 2)
	ch <- 3
	close(ch)
	if got := LatestTick(ch, 5); got != 5 {
		t.Fatalf("LatestTick(stale) = %d, want 5", got)
	}
}

func TestLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.WriteLineString("a")
	l.WriteLineBytes([]byte("b"))
	if got := buf.String(); got != "a\nb\n" {
		t.Fatalf("log = %q, want %q", got, "a\nb\n")
	}
}

func TestRunHeadlessScript(t *testing.T) {
	var (
		frames int
		got    []KeyEvent
		ticks  uint64
	)
	newApp := func(h HAL) (App, error) {
		kbd := h.Input().Keyboard()
		return StepFunc(func() error {
			frames++
		drain:
			for {
				select {
				case ev := <-kbd.Events():
					got = append(got, ev)
				default:
					break drain
				}
			}
			ticks = LatestTick(h.Time().Ticks(), ticks)
			return nil
		}), nil
	}

	hcfg := HeadlessConfig{
		Hz:        1000,
		Ticks:     5,
		FixedStep: true,
		Script: []ScriptedKey{
			{Frame: 2, Event: KeyEvent{Rune: 'q', Press: true}},
			{Frame: 4, Event: KeyEvent{Rune: 'q'}},
		},
	}
	err := RunHeadless(context.Background(), HostConfig{Log: &bytes.Buffer{}}, hcfg, newApp)
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if frames != 5 {
		t.Fatalf("frames = %d, want 5", frames)
	}
	if len(got) != 2 || !got[0].Press || got[1].Press || got[0].Rune != 'q' {
		t.Fatalf("events = %+v, want press q then release q", got)
	}
	if ticks != 5 {
		t.Fatalf("ticks = %d, want 5", ticks)
	}
}

func TestRunHeadlessQuit(t *testing.T) {
	n := 0
	newApp := func(HAL) (App, error) {
		return StepFunc(func() error {
			n++
			if n == 3 {
				return ErrQuit
			}
			return nil
		}), nil
	}
	if err := RunHeadless(context.Background(), HostConfig{Log: &bytes.Buffer{}}, HeadlessConfig{Hz: 1000}, newApp); err != nil {
		t.Fatalf("RunHeadless = %v, want nil", err)
	}
	if n != 3 {
		t.Fatalf("steps = %d, want 3", n)
	}
}

func TestRunHeadlessPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	newApp := func(HAL) (App, error) {
		return StepFunc(func() error { return boom }), nil
	}
	err := RunHeadless(context.Background(), HostConfig{Log: &bytes.Buffer{}}, HeadlessConfig{Hz: 1000}, newApp)
	if !errors.Is(err, boom) {
		t.Fatalf("RunHeadless = %v, want boom", err)
	}
}

func TestHeadlessAudioIsSilent(t *testing.T) {
	a := newHost(HostConfig{SampleRate: 22050, Log: &bytes.Buffer{}}, false).Audio()
	if a.SampleRate() != 22050 {
		t.Fatalf("SampleRate() = %d, want 22050", a.SampleRate())
	}
	v, err := a.NewVoice(nil)
	if err != nil {
		t.Fatalf("NewVoice: %v", err)
	}
	v.Start()
	v.Stop()
	v.Stop()
}

func TestRunHeadlessContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	newApp := func(HAL) (App, error) {
		return StepFunc(func() error { return nil }), nil
	}
	err := RunHeadless(ctx, HostConfig{Log: &bytes.Buffer{}}, HeadlessConfig{Hz: 10}, newApp)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunHeadless = %v, want context.Canceled", err)
	}
}
