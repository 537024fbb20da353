//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type hostKeyboard struct {
	ch   chan KeyEvent
	keys []ebiten.Key
	held map[ebiten.Key]KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{
		ch:   make(chan KeyEvent, 64),
		held: make(map[ebiten.Key]KeyEvent),
	}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) emit(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}

// poll translates this frame's key transitions into events. Letter and digit
// keys are reported by position (lower-case rune) so a held Shift does not
// change which piano key sounds.
func (k *hostKeyboard) poll() {
	if !ebiten.IsFocused() {
		// Key-up events are lost while unfocused; release everything held.
		for key, ev := range k.held {
			ev.Press = false
			k.emit(ev)
			delete(k.held, key)
		}
		return
	}

	k.keys = inpututil.AppendJustReleasedKeys(k.keys[:0])
	for _, key := range k.keys {
		ev, ok := k.held[key]
		if !ok {
			continue
		}
		delete(k.held, key)
		ev.Press = false
		k.emit(ev)
	}

	k.keys = inpututil.AppendJustPressedKeys(k.keys[:0])
	for _, key := range k.keys {
		ev, ok := translateKey(key)
		if !ok {
			continue
		}
		ev.Press = true
		k.held[key] = ev
		k.emit(ev)
	}
}

func translateKey(key ebiten.Key) (KeyEvent, bool) {
	if r, ok := keyRunes[key]; ok {
		return KeyEvent{Rune: r}, true
	}
	if c, ok := keyCodes[key]; ok {
		return KeyEvent{Code: c}, true
	}
	return KeyEvent{}, false
}

var keyCodes = map[ebiten.Key]KeyCode{
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyBackspace:  KeyBackspace,
	ebiten.KeyTab:        KeyTab,
	ebiten.KeyDelete:     KeyDelete,
	ebiten.KeyHome:       KeyHome,
	ebiten.KeyEnd:        KeyEnd,
	ebiten.KeyPageUp:     KeyPageUp,
	ebiten.KeyPageDown:   KeyPageDown,
	ebiten.KeyF1:         KeyF1,
	ebiten.KeyF2:         KeyF2,
	ebiten.KeyF3:         KeyF3,
}

var keyRunes = map[ebiten.Key]rune{
	ebiten.KeyA: 'a', ebiten.KeyB: 'b', ebiten.KeyC: 'c', ebiten.KeyD: 'd',
	ebiten.KeyE: 'e', ebiten.KeyF: 'f', ebiten.KeyG: 'g', ebiten.KeyH: 'h',
	ebiten.KeyI: 'i', ebiten.KeyJ: 'j', ebiten.KeyK: 'k', ebiten.KeyL: 'l',
	ebiten.KeyM: 'm', ebiten.KeyN: 'n', ebiten.KeyO: 'o', ebiten.KeyP: 'p',
	ebiten.KeyQ: 'q', ebiten.KeyR: 'r', ebiten.KeyS: 's', ebiten.KeyT: 't',
	ebiten.KeyU: 'u', ebiten.KeyV: 'v', ebiten.KeyW: 'w', ebiten.KeyX: 'x',
	ebiten.KeyY: 'y', ebiten.KeyZ: 'z',
	ebiten.KeyDigit0: '0', ebiten.KeyDigit1: '1', ebiten.KeyDigit2: '2',
	ebiten.KeyDigit3: '3', ebiten.KeyDigit4: '4', ebiten.KeyDigit5: '5',
	ebiten.KeyDigit6: '6', ebiten.KeyDigit7: '7', ebiten.KeyDigit8: '8',
	ebiten.KeyDigit9: '9',
	ebiten.KeySpace:  ' ',
	ebiten.KeyMinus:  '-',
	ebiten.KeyEqual:  '=',
	ebiten.KeyComma:  ',',
	ebiten.KeyPeriod: '.',
	ebiten.KeySlash:  '/',
}
