// Package midi connects a MIDI keyboard and turns its note messages into
// the same key events the computer keyboard produces.
package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pianoscape/hal"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrUnavailable is returned by OpenDriver on builds without a MIDI backend.
var ErrUnavailable = errors.New("midi: no driver in this build")

const rescanInterval = time.Second

// Ports that are never connected automatically.
var defaultExclude = []string{"Midi Through", "Through Port", "Dummy"}

// Config wires a Watcher.
type Config struct {
	// Prefer lists name fragments tried in order before falling back to
	// the only remaining input.
	Prefer []string
	// Exclude lists name fragments that are never connected. Nil picks
	// virtual through ports.
	Exclude []string
	// Sink receives key events. It is called from the driver goroutine.
	Sink func(hal.KeyEvent)
	// OnDisconnect runs when the connected device goes away.
	OnDisconnect func()
	Log          hal.Logger
}

// Watcher keeps one input connected, following devices as they come and go.
type Watcher struct {
	mu   sync.Mutex
	drv  drivers.Driver
	cfg  Config
	in   drivers.In
	stop func()
	name string
}

// NewWatcher returns a watcher over drv. Nothing is opened until Rescan.
func NewWatcher(drv drivers.Driver, cfg Config) *Watcher {
	if cfg.Exclude == nil {
		cfg.Exclude = defaultExclude
	}
	return &Watcher{drv: drv, cfg: cfg}
}

func (w *Watcher) logf(format string, args ...any) {
	if w.cfg.Log != nil {
		w.cfg.Log.WriteLineString(fmt.Sprintf("midi: "+format, args...))
	}
}

// Connected returns the name of the open input, or "".
func (w *Watcher) Connected() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.name
}

// Run rescans once per second until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	t := time.NewTicker(rescanInterval)
	defer t.Stop()
	defer w.Close()
	for {
		w.Rescan()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Rescan drops a vanished device and connects a new one when idle.
func (w *Watcher) Rescan() {
	w.mu.Lock()
	defer w.mu.Unlock()

	inputs := w.inputs()
	if w.in != nil {
		for _, name := range inputs {
			if name == w.name {
				return
			}
		}
		w.logf("device disappeared name=%q", w.name)
		w.lost()
		return
	}
	name, ok := PickInput(inputs, w.cfg.Prefer)
	if !ok {
		return
	}
	if err := w.open(name); err != nil {
		w.logf("connect %q: %v", name, err)
	}
}

// Close disconnects and shuts the driver down.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeConn()
	if w.drv != nil {
		_ = w.drv.Close()
	}
}

func (w *Watcher) inputs() []string {
	ins, err := w.drv.Ins()
	if err != nil {
		w.logf("list inputs: %v", err)
		return nil
	}
	var names []string
	for _, in := range ins {
		if name := in.String(); !matchesAny(name, w.cfg.Exclude) {
			names = append(names, name)
		}
	}
	return names
}

// PickInput chooses the first input matching a preferred fragment, or the
// only input when there is exactly one.
func PickInput(inputs, prefer []string) (string, bool) {
	for _, pat := range prefer {
		for _, name := range inputs {
			if containsFold(name, pat) {
				return name, true
			}
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (w *Watcher) open(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	stop, err := gomidi.ListenTo(found, func(msg gomidi.Message, _ int32) {
		w.handle(msg)
	}, gomidi.HandleError(func(err error) {
		w.logf("listen %q: %v", name, err)
		// The listener goroutine must not close its own port while holding
		// the lock Close waits on.
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.name == name {
				w.lost()
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen: %w", err)
	}
	w.in, w.stop, w.name = found, stop, name
	w.logf("connected name=%q", name)
	return nil
}

// lost closes the connection and reports it. Called with mu held.
func (w *Watcher) lost() {
	w.closeConn()
	if w.cfg.OnDisconnect != nil {
		go w.cfg.OnDisconnect()
	}
}

func (w *Watcher) closeConn() {
	if w.stop != nil {
		w.stop()
		w.stop = nil
	}
	if w.in != nil {
		_ = w.in.Close()
		w.in = nil
	}
	w.name = ""
}

func (w *Watcher) handle(msg gomidi.Message) {
	if ev, ok := Translate(msg); ok && w.cfg.Sink != nil {
		w.cfg.Sink(ev)
	}
}

// Translate turns a note-on or note-off in the keyboard's range into a key
// event. A note-on with zero velocity is a release.
func Translate(msg gomidi.Message) (hal.KeyEvent, bool) {
	var ch, key, vel uint8
	press := false
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		press = true
	case msg.GetNoteEnd(&ch, &key):
	default:
		return hal.KeyEvent{}, false
	}
	r, ok := SymbolForNote(key)
	if !ok {
		return hal.KeyEvent{}, false
	}
	return hal.KeyEvent{Rune: r, Press: press}, true
}

func matchesAny(s string, pats []string) bool {
	for _, p := range pats {
		if containsFold(s, p) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
