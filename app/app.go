// Package app wires the host to the piano scene: it builds the director and
// the keyboard, routes input, and keeps the frame loop alive.
package app

import (
	"context"
	"fmt"
	"time"

	"pianoscape/hal"
	"pianoscape/kernel"
	"pianoscape/studio/director"
	"pianoscape/studio/fonts"
	"pianoscape/studio/hud"
	"pianoscape/studio/midi"
	"pianoscape/studio/piano"
	"pianoscape/studio/quarkgl"
	"pianoscape/studio/samples"

	"tinygo.org/x/tinyfont"
)

const (
	inboxSize = 256

	orbitStep = 0.05
	zoomStep  = 8
)

// Config selects the optional parts of the app.
type Config struct {
	// SamplesDir holds <note>.mp3 or <note>.wav files. Empty means silent keys.
	SamplesDir string
	// Font names the label font; empty picks fonts.Default.
	Font string
	// Labels shows note labels once the font has loaded.
	Labels bool
	// StopOnRelease cuts the sample when its key is released.
	StopOnRelease bool
	// AutoStop caps how long a sample plays; zero keeps the keyboard default.
	AutoStop time.Duration
	// HUD shows the frame counters and the note log.
	HUD bool
	// MIDI connects the first MIDI input found.
	MIDI bool
	// Seed feeds the particle spawner.
	Seed uint64
}

// App is driven by a host runner. Step and Resize run on the render
// goroutine; Post may be called from anywhere.
type App struct {
	cfg Config
	log hal.Logger

	dir    *director.Director
	kb     *piano.Keyboard
	hud    *hud.HUD
	router Router
	inbox  *kernel.Mailbox[func()]
	keys   <-chan hal.KeyEvent

	font   tinyfont.Fonter
	labels bool
	quit   bool
	panics int

	stopMIDI context.CancelFunc
}

// New builds the scene on h and starts the font load.
func New(h hal.HAL, cfg Config) (*App, error) {
	a := &App{
		cfg:    cfg,
		log:    h.Logger(),
		inbox:  kernel.NewMailbox[func()](inboxSize),
		labels: cfg.Labels,
	}

	dcfg := director.Config{Time: h.Time(), Seed: cfg.Seed}
	if cfg.HUD {
		o, err := hud.New(hud.Config{})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.hud = o
		dcfg.Overlay = o
	}
	a.dir = director.New(h.Display(), dcfg, a.log)
	if err := a.dir.Setup(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	opts := piano.Options{
		KeyOptions: piano.KeyOptions{
			Timers:        a.dir.Timers(),
			AutoStop:      cfg.AutoStop,
			StopOnRelease: cfg.StopOnRelease,
		},
	}
	if aud := h.Audio(); aud != nil && cfg.SamplesDir != "" {
		bank := samples.NewBank(cfg.SamplesDir, aud, a.log)
		notes := make([]string, 0, len(piano.FlatLayout)+len(piano.NaturalLayout))
		for _, l := range append(append([]piano.Layout(nil), piano.FlatLayout...), piano.NaturalLayout...) {
			notes = append(notes, l.Note)
		}
		if silent := bank.Preload(notes); silent > 0 {
			a.logf("%d of %d keys have no sample", silent, len(notes))
		}
		opts.Voices = bank
	}
	kb, err := piano.NewKeyboard(opts)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.kb = kb
	a.dir.Attach(kb.Group())

	a.router.Handle(a.playNote)
	a.router.Handle(a.dir.SpawnHandler())
	a.router.Handle(a.control)

	if in := h.Input(); in != nil {
		if k := in.Keyboard(); k != nil {
			a.keys = k.Events()
		}
	}

	font := cfg.Font
	if font == "" {
		font = fonts.Default
	}
	fonts.NewLoader(a.inbox.Send, a.log).Load(font, a.fontLoaded)

	if cfg.MIDI {
		a.startMIDI()
	}
	return a, nil
}

func (a *App) logf(format string, args ...any) {
	if a.log != nil {
		a.log.WriteLineString(fmt.Sprintf("app: "+format, args...))
	}
}

// Post queues fn to run on the render goroutine before the next frame. It
// reports false when the queue is full.
func (a *App) Post(fn func()) bool { return a.inbox.TrySend(fn) }

// Dispatch routes ev as if the host had delivered it.
func (a *App) Dispatch(ev hal.KeyEvent) { a.router.Dispatch(ev) }

func (a *App) startMIDI() {
	drv, err := midi.OpenDriver()
	if err != nil {
		a.logf("midi disabled: %v", err)
		return
	}
	w := midi.NewWatcher(drv, midi.Config{
		Sink: func(ev hal.KeyEvent) {
			if !a.Post(func() { a.router.Dispatch(ev) }) {
				a.logf("inbox full, midi event dropped")
			}
		},
		OnDisconnect: func() { a.Post(func() { a.kb.ReleaseAll() }) },
		Log:          a.log,
	})
	ctx, cancel := context.WithCancel(context.Background())
	a.stopMIDI = cancel
	go w.Run(ctx)
}

// Close stops background input.
func (a *App) Close() {
	if a.stopMIDI != nil {
		a.stopMIDI()
		a.stopMIDI = nil
	}
}

func (a *App) fontLoaded(f tinyfont.Fonter) {
	a.font = f
	if a.labels {
		a.kb.SetAllLabelsVisible(f, true)
	}
}

func (a *App) playNote(ev hal.KeyEvent) {
	if ev.Repeat || ev.Code != hal.KeyUnknown {
		return
	}
	k := a.kb.KeyForSymbol(ev.Rune)
	if k == nil {
		return
	}
	if ev.Press {
		a.kb.DispatchPress(ev.Rune)
	} else {
		a.kb.DispatchRelease(ev.Rune)
	}
	if a.hud != nil {
		a.hud.Note(k.Note(), ev.Press)
	}
}

func (a *App) control(ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	orbit := a.dir.Orbit()
	switch ev.Code {
	case hal.KeyLeft:
		orbit.Rotate(-orbitStep, 0)
	case hal.KeyRight:
		orbit.Rotate(orbitStep, 0)
	case hal.KeyUp:
		orbit.Rotate(0, -orbitStep)
	case hal.KeyDown:
		orbit.Rotate(0, orbitStep)
	case hal.KeyPageUp:
		orbit.Zoom(-zoomStep)
	case hal.KeyPageDown:
		orbit.Zoom(zoomStep)
	case hal.KeyHome:
		orbit.Reset(quarkgl.Scalar(director.CameraDistance))
	case hal.KeyF1:
		if ev.Repeat {
			return
		}
		a.labels = !a.labels
		a.kb.SetAllLabelsVisible(a.font, a.labels)
	case hal.KeyF2:
		if !ev.Repeat {
			a.dir.SetOverlayVisible(!a.dir.OverlayVisible())
		}
	case hal.KeyEscape:
		a.quit = true
	}
}

func (a *App) drainKeys() {
	for a.keys != nil {
		select {
		case ev, ok := <-a.keys:
			if !ok {
				a.keys = nil
				return
			}
			a.router.Dispatch(ev)
		default:
			return
		}
	}
}

// Step handles pending input and posted work, then renders one frame. A
// panic inside the frame is logged and painted; the loop keeps running.
func (a *App) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.recovered(r)
			err = nil
		}
	}()

	a.drainKeys()
	a.inbox.Drain(func(fn func()) { fn() })
	if a.quit {
		a.Close()
		return hal.ErrQuit
	}
	return a.dir.Tick()
}

// Resize follows the host surface.
func (a *App) Resize(width, height int) { a.dir.OnResize(width, height) }

func (a *App) Director() *director.Director { return a.dir }

func (a *App) Keyboard() *piano.Keyboard { return a.kb }

// LabelsVisible reports whether labels are requested; they appear once the
// font has loaded.
func (a *App) LabelsVisible() bool { return a.labels }

var _ hal.Resizer = (*App)(nil)
