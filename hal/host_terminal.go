package hal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode"

	"pianoscape/kernel"

	"github.com/gdamore/tcell/v2"
)

// TerminalConfig controls the tcell runner.
type TerminalConfig struct {
	Hz int
	// HoldTimeout is how long a key stays down after its last press or
	// repeat. Terminals never report key-up, so the release is synthesised.
	HoldTimeout time.Duration
}

const (
	defaultTerminalHz   = 30
	defaultHoldTimeout  = 600 * time.Millisecond
	terminalEventsSlots = 256
)

// RunTerminal draws the framebuffer into the terminal with half-block cells
// (two pixels per cell) until ctx ends, Ctrl-C is pressed or the app returns
// ErrQuit. Audio is silent.
//
// Log lines are held in memory while the screen is active and written to
// stderr after it is torn down, unless cfg.Log is set.
func RunTerminal(ctx context.Context, cfg HostConfig, tcfg TerminalConfig, newApp func(HAL) (App, error)) error {
	if tcfg.Hz <= 0 {
		tcfg.Hz = defaultTerminalHz
	}
	if tcfg.HoldTimeout <= 0 {
		tcfg.HoldTimeout = defaultHoldTimeout
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}

	var held *bytes.Buffer
	if cfg.Log == nil {
		held = &bytes.Buffer{}
		cfg.Log = held
	}
	defer func() {
		if held != nil && held.Len() > 0 {
			os.Stderr.Write(held.Bytes())
		}
	}()
	defer screen.Fini()

	return runTerminalScreen(ctx, screen, cfg, tcfg, newApp)
}

func runTerminalScreen(ctx context.Context, screen tcell.Screen, cfg HostConfig, tcfg TerminalConfig, newApp func(HAL) (App, error)) error {
	screen.HideCursor()
	screen.Clear()

	cols, rows := screen.Size()
	cfg.Width, cfg.Height = cols, rows*2
	h := newHost(cfg, false)
	app, err := newApp(h)
	if err != nil {
		return err
	}

	events := kernel.NewMailbox[tcell.Event](terminalEventsSlots)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case <-quit:
				return
			default:
			}
			// A full mailbox drops the event rather than stalling the poller.
			events.TrySend(ev)
		}
	}()

	d := time.Second / time.Duration(tcfg.Hz)
	t := time.NewTicker(d)
	defer t.Stop()

	keys := newTermKeys(tcfg.HoldTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			stop := false
			events.Drain(func(ev tcell.Event) {
				switch ev := ev.(type) {
				case *tcell.EventKey:
					if ev.Key() == tcell.KeyCtrlC {
						stop = true
						return
					}
					if ke, ok := translateTermKey(ev); ok {
						h.kbd.emit(keys.press(ke, now))
					}
				case *tcell.EventResize:
					screen.Sync()
					w, r := ev.Size()
					h.resize(app, w, r*2)
				}
			})
			if stop {
				return nil
			}
			for _, ke := range keys.expire(now) {
				h.kbd.emit(ke)
			}

			h.t.step()
			if err := app.Step(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			blitHalfBlocks(screen, h.fb)
			screen.Show()
		}
	}
}

// blitHalfBlocks paints each terminal cell with the upper pixel as the
// foreground of '▀' and the lower pixel as its background.
func blitHalfBlocks(screen tcell.Screen, fb *hostFramebuffer) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	cols, rows := screen.Size()
	w := min(cols, fb.width)
	for y := 0; y < rows && y*2 < fb.height; y++ {
		for x := 0; x < w; x++ {
			tr, tg, tb := pixelAt(fb.buf, fb.stride, x, y*2)
			br, bg, bb := tr, tg, tb
			if y*2+1 < fb.height {
				br, bg, bb = pixelAt(fb.buf, fb.stride, x, y*2+1)
			}
			screen.SetContent(x, y, '▀', nil, tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(tr), int32(tg), int32(tb))).
				Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb))))
		}
	}
}

func translateTermKey(ev *tcell.EventKey) (KeyEvent, bool) {
	code := KeyUnknown
	switch ev.Key() {
	case tcell.KeyRune:
		r := unicode.ToLower(ev.Rune())
		return KeyEvent{Press: true, Rune: r}, true
	case tcell.KeyUp:
		code = KeyUp
	case tcell.KeyDown:
		code = KeyDown
	case tcell.KeyLeft:
		code = KeyLeft
	case tcell.KeyRight:
		code = KeyRight
	case tcell.KeyEnter:
		code = KeyEnter
	case tcell.KeyEscape:
		code = KeyEscape
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		code = KeyBackspace
	case tcell.KeyTab:
		code = KeyTab
	case tcell.KeyDelete:
		code = KeyDelete
	case tcell.KeyHome:
		code = KeyHome
	case tcell.KeyEnd:
		code = KeyEnd
	case tcell.KeyPgUp:
		code = KeyPageUp
	case tcell.KeyPgDn:
		code = KeyPageDown
	case tcell.KeyF1:
		code = KeyF1
	case tcell.KeyF2:
		code = KeyF2
	case tcell.KeyF3:
		code = KeyF3
	default:
		return KeyEvent{}, false
	}
	return KeyEvent{Code: code, Press: true}, true
}

type termKey struct {
	code KeyCode
	r    rune
}

// termKeys turns a stream of terminal presses into press/repeat/release.
type termKeys struct {
	hold time.Duration
	down map[termKey]time.Time
}

func newTermKeys(hold time.Duration) *termKeys {
	return &termKeys{hold: hold, down: make(map[termKey]time.Time)}
}

func (k *termKeys) press(ev KeyEvent, now time.Time) KeyEvent {
	id := termKey{code: ev.Code, r: ev.Rune}
	_, ev.Repeat = k.down[id]
	k.down[id] = now
	ev.Press = true
	return ev
}

// expire returns releases for keys not seen within the hold timeout.
func (k *termKeys) expire(now time.Time) []KeyEvent {
	var out []KeyEvent
	for id, last := range k.down {
		if now.Sub(last) < k.hold {
			continue
		}
		delete(k.down, id)
		out = append(out, KeyEvent{Code: id.code, Rune: id.r})
	}
	return out
}
