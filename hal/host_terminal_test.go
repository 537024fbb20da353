package hal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestBlitHalfBlocks(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(2, 1)

	fb := newHostFramebuffer(2, 2)
	red := rgb565(0xff, 0, 0)
	blue := rgb565(0, 0, 0xff)
	put := func(x, y int, p uint16) {
		off := y*fb.stride + x*2
		fb.buf[off] = byte(p)
		fb.buf[off+1] = byte(p >> 8)
	}
	put(0, 0, red)
	put(0, 1, blue)

	blitHalfBlocks(screen, fb)

	r, _, style, _ := screen.GetContent(0, 0)
	if r != '▀' {
		t.Fatalf("cell rune = %q, want '▀'", r)
	}
	fg, bg, _ := style.Decompose()
	if got, want := fg, tcell.NewRGBColor(0xff, 0, 0); got != want {
		t.Fatalf("foreground = %v, want %v", got, want)
	}
	if got, want := bg, tcell.NewRGBColor(0, 0, 0xff); got != want {
		t.Fatalf("background = %v, want %v", got, want)
	}

	_, _, style, _ = screen.GetContent(1, 0)
	fg, bg, _ = style.Decompose()
	black := tcell.NewRGBColor(0, 0, 0)
	if fg != black || bg != black {
		t.Fatalf("cell (1,0) = %v/%v, want black", fg, bg)
	}
}

func TestTermKeysSynthesiseRelease(t *testing.T) {
	k := newTermKeys(100 * time.Millisecond)
	t0 := time.Unix(0, 0)
	q := KeyEvent{Rune: 'q', Press: true}

	ev := k.press(q, t0)
	if !ev.Press || ev.Repeat {
		t.Fatalf("first press = %+v, want non-repeat press", ev)
	}
	ev = k.press(q, t0.Add(50*time.Millisecond))
	if !ev.Repeat {
		t.Fatalf("second press = %+v, want repeat", ev)
	}

	if rel := k.expire(t0.Add(120 * time.Millisecond)); len(rel) != 0 {
		t.Fatalf("expire before timeout = %+v, want none", rel)
	}
	rel := k.expire(t0.Add(150 * time.Millisecond))
	if len(rel) != 1 || rel[0].Press || rel[0].Rune != 'q' {
		t.Fatalf("expire = %+v, want release of q", rel)
	}

	ev = k.press(q, t0.Add(200*time.Millisecond))
	if ev.Repeat {
		t.Fatalf("press after release = %+v, want fresh press", ev)
	}
}

func TestTranslateTermKey(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want KeyEvent
		ok   bool
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'Q', tcell.ModShift), KeyEvent{Rune: 'q', Press: true}, true},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), KeyEvent{Code: KeyLeft, Press: true}, true},
		{tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), KeyEvent{Code: KeyPageUp, Press: true}, true},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), KeyEvent{Code: KeyEscape, Press: true}, true},
		{tcell.NewEventKey(tcell.KeyF2, 0, tcell.ModNone), KeyEvent{Code: KeyF2, Press: true}, true},
		{tcell.NewEventKey(tcell.KeyF12, 0, tcell.ModNone), KeyEvent{}, false},
	}
	for _, tt := range tests {
		got, ok := translateTermKey(tt.ev)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("translateTermKey(%v) = %+v, %v; want %+v, %v", tt.ev.Name(), got, ok, tt.want, tt.ok)
		}
	}
}
